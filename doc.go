/*
 * doc.go, part of chemvtk.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*
Package chem is the main package of chemvtk. It provides the atom and molecule structures
used to turn a molecular trajectory into a series of VTK line-geometry files.

	**chem Capabilities**

	Atom, Bond, Topology and Molecule types. A Molecule holds one
	set of coordinates (a conformer) per frame of the trajectory.

	Reads multi-MODEL PDB files, including the CONECT records, optionally
	compressed with gzip or zstd.

	Assigns bonds from interatomic distances and covalent radii when the
	input doesn't provide them.

	Tags backbone atoms of standard aminoacidic and nucleotidic residues.

	Error types that carry the kind of failure (input, topology, fitting or
	output) and a decoration trail of the functions the error went through.

The trajectory readers are in the traj subpackages, the curve fitting in spline,
the geometry in linegeom and the VTK output in vtk. The convert package puts it all together
and cmd/traj2vtk is the command line program.
*/
package chem

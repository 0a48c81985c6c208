/*
 * doc.go, part of chemvtk.
 *
 * Copyright 2021 Raul Mera <rauldotmeraatusachdotcl>
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

/*
Package stf reads and writes the simple trajectory format (STF), a compressed text
trajectory format that is easy to read and write from any language.

Format

A STF file contains only ASCII symbols, and is compressed. The compression is given by the
last letter of the extension: .stf and .sts files are compressed with z-standard, .stz with gzip,
.str with deflate and .stl with lzw.

The file starts with a header. Each line of the header is a pair key=value. The header ends
with a line that starts with "**" followed by one or more spaces and the number of atoms per frame.
The key "prec" gives the precision, a positive integer. If it is absent or invalid, the
precision is 2.

After the header, the file has one line per atom, per frame. Each line contains 3 integers,
the x, y and z coordinates in Angstrom multiplied by 10 to the power of the precision and
rounded.

Each frame ends with a line starting with the character "*", optionally followed by one or more
spaces and 9 floating point numbers separated by spaces: the vectors defining the simulation box,
in Angstrom. The "**" sequence can only be used to end the header.
*/
package stf

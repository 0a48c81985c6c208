/*
 * errors.go, part of chemvtk.
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

package chem

import (
	"errors"
	"fmt"
)

// Kind classifies the fatal errors of a conversion.
type Kind int

const (
	KindUnknown  Kind = iota
	KindInput         //the input can't be read or parsed
	KindTopology      //the molecule has no usable backbone
	KindFitting       //the backbone curve can't be interpolated
	KindOutput        //an output file can't be written
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindTopology:
		return "topology"
	case KindFitting:
		return "fitting"
	case KindOutput:
		return "output"
	default:
		return "unknown"
	}
}

// CError is the error type of the chem package and of the packages built on it.
// It implements Error and TrajError.
type CError struct {
	msg      string
	filename string //the file that has problems, or empty string if none.
	deco     []string
	critical bool
	kind     Kind
	cause    error
}

// NewError returns a critical error of the given kind. If callers are given, they are
// used as the first decorations of the error.
func NewError(kind Kind, filename, msg string, callers ...string) *CError {
	err := &CError{msg: msg, filename: filename, critical: true, kind: kind}
	for _, c := range callers {
		err.Decorate(c)
	}
	return err
}

// WrapError is like NewError, but it keeps cause, which can be recovered with errors.Unwrap.
func WrapError(kind Kind, filename string, cause error, callers ...string) *CError {
	err := NewError(kind, filename, cause.Error(), callers...)
	err.cause = cause
	return err
}

// Error returns a string with an error message.
func (err *CError) Error() string {
	if err.filename == "" {
		return err.msg
	}
	return fmt.Sprintf("%s: %s", err.filename, err.msg)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err *CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err *CError) Critical() bool { return err.critical }

// FileName returns the file associated to the error, if any.
func (err *CError) FileName() string { return err.filename }

// Format returns the format of the file associated to the error.
func (err *CError) Format() string { return "" }

// Kind returns the kind of the error.
func (err *CError) Kind() Kind { return err.kind }

// Unwrap returns the error that caused err, or nil.
func (err *CError) Unwrap() error { return err.cause }

type kinder interface {
	Kind() Kind
}

// KindOf returns the Kind of the first error in err's chain that has one,
// or KindUnknown.
func KindOf(err error) Kind {
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

// errDecorate is a helper function that asserts that the error
// implements chem.Error and decorates the error with the caller's name before returning it.
// Errors not implementing Error are returned unchanged.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var err2 Error
	if errors.As(err, &err2) {
		err2.Decorate(caller)
	}
	return err
}

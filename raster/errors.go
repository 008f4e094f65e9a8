package raster

import (
	"errors"
	"fmt"
	"strings"
)

// GeometryError reports a region that does not intersect a raster's
// extent, or a region that could not be reprojected.
type GeometryError struct {
	Err error
}

func (e *GeometryError) Error() string { return "geometry error: " + e.Err.Error() }
func (e *GeometryError) Unwrap() error { return e.Err }

// ProductError reports a requested band that is absent from a product
// or a product container with an unexpected structure.
type ProductError struct {
	Err error
}

func (e *ProductError) Error() string { return "product error: " + e.Err.Error() }
func (e *ProductError) Unwrap() error { return e.Err }

// InputError reports a missing or out of range parameter.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return "input error: " + e.Err.Error() }
func (e *InputError) Unwrap() error { return e.Err }

func GeometryErrorf(format string, a ...interface{}) error {
	return &GeometryError{fmt.Errorf(format, a...)}
}

func ProductErrorf(format string, a ...interface{}) error {
	return &ProductError{fmt.Errorf(format, a...)}
}

func InputErrorf(format string, a ...interface{}) error {
	return &InputError{fmt.Errorf(format, a...)}
}

func IsGeometryError(err error) bool {
	var e *GeometryError
	return errors.As(err, &e)
}

func IsProductError(err error) bool {
	var e *ProductError
	return errors.As(err, &e)
}

func IsInputError(err error) bool {
	var e *InputError
	return errors.As(err, &e)
}

// Error kinds as they travel across process boundaries.
const (
	KindGeometry = "geometry"
	KindProduct  = "product"
	KindInput    = "input"
)

// ErrorKind returns the wire name of err's kind, or "" for errors
// outside the taxonomy.
func ErrorKind(err error) string {
	switch {
	case IsGeometryError(err):
		return KindGeometry
	case IsProductError(err):
		return KindProduct
	case IsInputError(err):
		return KindInput
	}
	return ""
}

// ErrorFromKind rebuilds a typed error from its wire form.
func ErrorFromKind(kind, msg string) error {
	inner := errors.New(strings.TrimPrefix(msg, kind+" error: "))
	switch kind {
	case KindGeometry:
		return &GeometryError{inner}
	case KindProduct:
		return &ProductError{inner}
	case KindInput:
		return &InputError{inner}
	}
	return inner
}

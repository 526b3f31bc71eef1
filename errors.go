package addrlib

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/addrlib/equation"
)

var (
	// ErrInvalidParams is returned when caller-supplied data violates a documented precondition
	ErrInvalidParams = errors.New("invalid parameters")
	// ErrParamSizeMismatch is returned when FillSizeFields is set and an input or output struct
	// carries a Size that does not match this library's struct size
	ErrParamSizeMismatch = errors.New("parameter struct size mismatch")
	// ErrNotSupported is returned when an operation does not apply to the chip generation
	ErrNotSupported = errors.New("not supported")
	// ErrNotImplemented is returned for operations the chip generation has not implemented
	ErrNotImplemented = errors.New("not implemented")
	ErrOutOfMemory    = errors.New("out of memory")
	// ErrInvalidGbRegValues is returned by Create when the global register values are inconsistent
	ErrInvalidGbRegValues = errors.New("invalid global register values")
	// ErrInternal marks a violated internal consistency check
	ErrInternal = errors.New("internal consistency failure")
)

// ReturnCode is the numeric result code corresponding to an error
type ReturnCode int32

const (
	Ok ReturnCode = iota
	Error
	OutOfMemory
	InvalidParams
	NotSupported
	NotImplemented
	ParamSizeMismatch
	InvalidGbRegValues
)

var returnCodeMapping = map[ReturnCode]string{
	Ok:                 "ADDR_OK",
	Error:              "ADDR_ERROR",
	OutOfMemory:        "ADDR_OUTOFMEMORY",
	InvalidParams:      "ADDR_INVALIDPARAMS",
	NotSupported:       "ADDR_NOTSUPPORTED",
	NotImplemented:     "ADDR_NOTIMPLEMENTED",
	ParamSizeMismatch:  "ADDR_PARAMSIZEMISMATCH",
	InvalidGbRegValues: "ADDR_INVALIDGBREGVALUES",
}

func (c ReturnCode) String() string {
	return returnCodeMapping[c]
}

// ReturnCodeOf maps an error returned by this package to its ReturnCode. nil maps to Ok and errors
// that carry no known marker map to Error.
func ReturnCodeOf(err error) ReturnCode {
	switch {
	case err == nil:
		return Ok
	case errors.Is(err, ErrInvalidParams), errors.Is(err, equation.ErrInvalidParams):
		return InvalidParams
	case errors.Is(err, ErrParamSizeMismatch):
		return ParamSizeMismatch
	case errors.Is(err, ErrNotSupported), errors.Is(err, equation.ErrNotSupported):
		return NotSupported
	case errors.Is(err, ErrNotImplemented):
		return NotImplemented
	case errors.Is(err, ErrOutOfMemory):
		return OutOfMemory
	case errors.Is(err, ErrInvalidGbRegValues):
		return InvalidGbRegValues
	}
	return Error
}

// internalErrorf reports a violated invariant. The result satisfies errors.Is(err, ErrInternal).
func internalErrorf(format string, args ...any) error {
	return errors.Mark(errors.AssertionFailedf(format, args...), ErrInternal)
}

func errInvalidf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidParams, format, args...)
}

package addrutil

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// BitRangeError is the error returned from CheckBitRange if a bit field does not fit in a 32-bit word
var BitRangeError error = errors.New("bit field does not fit in 32 bits")

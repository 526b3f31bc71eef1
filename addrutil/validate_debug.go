//go:build debug_addrlib

package addrutil

// DebugChecks reports whether the debug_addrlib build tag is present
const DebugChecks = true

// DebugCheckPow2 will verify that the numerical value passed in is a power of two, and panics if it is not.
// This method no-ops unless the debug_addrlib build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
	err := CheckPow2[T](value, name)
	if err != nil {
		panic(err)
	}
}

// DebugCheckBitRange will verify that an n-bit field starting at start fits in 32 bits, and panics if it
// does not. This method no-ops unless the debug_addrlib build tag is present.
func DebugCheckBitRange(start, n uint32) {
	err := CheckBitRange(start, n)
	if err != nil {
		panic(err)
	}
}

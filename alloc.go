package addrlib

//go:generate mockgen -source alloc.go -destination ./mocks/alloc.go -package mock_addrlib

// SysMemCallbacks is the system memory allocator a Lib draws its instance memory from. The library
// never allocates instance memory any other way.
type SysMemCallbacks interface {
	// Alloc returns a zeroed buffer of at least size bytes, or nil if the allocation failed
	Alloc(size int) []byte
	// Free releases a buffer returned by Alloc
	Free(buffer []byte)
}

package sysmem

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/addrlib/addrutil"
	"golang.org/x/exp/slog"
)

const (
	// DebugMargin is the number of bytes placed after every buffer when corruption detection is on
	DebugMargin int = 16
	// corruptionDetectionMagicValue is repeated across the margin after each buffer
	corruptionDetectionMagicValue uint32 = 0x7F84E666
)

// ErrCorruption is returned from Validate when a buffer margin was overwritten or a buffer was freed
// that this allocator never handed out
var ErrCorruption = errors.New("system memory corruption detected")

type optionalMutex struct {
	mutex    sync.Mutex
	useMutex bool
}

func (m *optionalMutex) Lock() {
	if m.useMutex {
		m.mutex.Lock()
	}
}

func (m *optionalMutex) Unlock() {
	if m.useMutex {
		m.mutex.Unlock()
	}
}

// CreateOptions configures an Allocator
type CreateOptions struct {
	// MaxBytes caps the bytes handed out at once. Zero means no cap.
	MaxBytes int
	// ExternallySynchronized skips locking when the caller guarantees one goroutine at a time
	ExternallySynchronized bool
	// DetectCorruption places a marker after every buffer and checks it on Free. It is always on
	// with the debug_addrlib build tag.
	DetectCorruption bool
	Logger           *slog.Logger
}

type allocation struct {
	// buffer includes the margin
	buffer []byte
	size   int
}

// Allocator hands out instance memory for address libraries and keeps statistics on it. It
// satisfies the library's system memory callback interface.
type Allocator struct {
	logger   *slog.Logger
	mutex    optionalMutex
	maxBytes int
	margin   int

	live         *swiss.Map[*byte, allocation]
	stats        DetailedStatistics
	invalidFrees int
	corruptions  int
}

func New(options CreateOptions) *Allocator {
	a := &Allocator{
		logger:   addrutil.LoggerOrDiscard(options.Logger),
		mutex:    optionalMutex{useMutex: !options.ExternallySynchronized},
		maxBytes: options.MaxBytes,
		live:     swiss.NewMap[*byte, allocation](8),
	}
	if options.DetectCorruption || addrutil.DebugChecks {
		a.margin = DebugMargin
	}
	a.stats.Clear()
	return a
}

func (a *Allocator) Alloc(size int) []byte {
	if size <= 0 {
		return nil
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.maxBytes > 0 && a.stats.AllocationBytes+size > a.maxBytes {
		a.stats.FailedAllocations++
		a.logger.Debug("sysmem::Alloc over budget",
			slog.Int("Size", size),
			slog.Int("AllocationBytes", a.stats.AllocationBytes),
			slog.Int("MaxBytes", a.maxBytes),
		)
		return nil
	}

	buffer := make([]byte, size+a.margin)
	writeMagicValue(buffer[size:])

	a.live.Put(&buffer[0], allocation{buffer: buffer, size: size})
	a.stats.AddAllocation(size)
	a.stats.MarginBytes += a.margin
	a.stats.PeakBytes = max(a.stats.PeakBytes, a.stats.AllocationBytes)

	return buffer[:size:size]
}

func (a *Allocator) Free(buffer []byte) {
	if len(buffer) == 0 {
		return
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	key := &buffer[0]
	alloc, ok := a.live.Get(key)
	if !ok {
		a.invalidFrees++
		a.logger.Error("sysmem::Free of unknown buffer", slog.Int("Size", len(buffer)))
		return
	}

	if !validateMagicValue(alloc.buffer[alloc.size:]) {
		a.corruptions++
		a.logger.Error("sysmem::Free found an overwritten margin", slog.Int("Size", alloc.size))
	}

	a.live.Delete(key)
	a.stats.AllocationCount--
	a.stats.AllocationBytes -= alloc.size
	a.stats.MarginBytes -= a.margin
}

// CalculateStatistics fills stats with the allocator's current statistics
func (a *Allocator) CalculateStatistics(stats *DetailedStatistics) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	*stats = a.stats
}

// Validate checks the bookkeeping and the margins of every live buffer
func (a *Allocator) Validate() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.invalidFrees > 0 {
		return errors.Wrapf(ErrCorruption, "%d frees of buffers that were not allocated here", a.invalidFrees)
	}

	declaredCount := a.stats.AllocationCount
	actualCount := a.live.Count()
	if declaredCount != actualCount {
		return errors.Errorf("the allocator counts %d live buffers but tracks %d", declaredCount, actualCount)
	}

	corruptions := a.corruptions
	actualBytes := 0
	a.live.Iter(func(_ *byte, alloc allocation) bool {
		actualBytes += alloc.size
		if !validateMagicValue(alloc.buffer[alloc.size:]) {
			corruptions++
		}
		return false
	})

	if actualBytes != a.stats.AllocationBytes {
		return errors.Errorf("the allocator counts %d live bytes but tracks %d", a.stats.AllocationBytes, actualBytes)
	}
	if corruptions > 0 {
		return errors.Wrapf(ErrCorruption, "%d buffer margins were overwritten", corruptions)
	}
	return nil
}

// PrintDetailedMap writes the statistics and the size of every live buffer
func (a *Allocator) PrintDetailedMap(writer *jwriter.Writer) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	obj := writer.Object()
	defer obj.End()

	stats := obj.Name("Stats").Object()
	a.stats.printParameters(&stats)
	stats.End()

	sizes := make([]int, 0, a.live.Count())
	a.live.Iter(func(_ *byte, alloc allocation) bool {
		sizes = append(sizes, alloc.size)
		return false
	})
	sort.Ints(sizes)

	allocations := obj.Name("Allocations").Array()
	for _, size := range sizes {
		allocations.Int(size)
	}
	allocations.End()
}

func (a *Allocator) BuildStatsString() string {
	writer := jwriter.NewWriter()
	a.PrintDetailedMap(&writer)
	return string(writer.Bytes())
}

func writeMagicValue(margin []byte) {
	for len(margin) >= 4 {
		binary.LittleEndian.PutUint32(margin, corruptionDetectionMagicValue)
		margin = margin[4:]
	}
}

func validateMagicValue(margin []byte) bool {
	for len(margin) >= 4 {
		if binary.LittleEndian.Uint32(margin) != corruptionDetectionMagicValue {
			return false
		}
		margin = margin[4:]
	}
	return true
}

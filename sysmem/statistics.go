package sysmem

import (
	"math"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Statistics counts the buffers an Allocator has handed out and not yet taken back
type Statistics struct {
	AllocationCount int
	AllocationBytes int
	// MarginBytes is the space spent on corruption detection margins
	MarginBytes int
}

func (s *Statistics) Clear() {
	s.AllocationCount = 0
	s.AllocationBytes = 0
	s.MarginBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.AllocationCount += other.AllocationCount
	s.AllocationBytes += other.AllocationBytes
	s.MarginBytes += other.MarginBytes
}

type DetailedStatistics struct {
	Statistics
	AllocationSizeMin int
	AllocationSizeMax int
	// FailedAllocations counts requests refused by the budget
	FailedAllocations int
	// PeakBytes is the highest AllocationBytes seen over the allocator's lifetime
	PeakBytes int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.FailedAllocations = 0
	s.PeakBytes = 0
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocationBytes += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

func (s *DetailedStatistics) printParameters(json *jwriter.ObjectState) {
	json.Name("AllocationCount").Int(s.AllocationCount)
	json.Name("AllocationBytes").Int(s.AllocationBytes)
	json.Name("MarginBytes").Int(s.MarginBytes)
	json.Name("PeakBytes").Int(s.PeakBytes)
	json.Name("FailedAllocations").Int(s.FailedAllocations)
	if s.AllocationCount > 0 {
		json.Name("AllocationSizeMin").Int(s.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(s.AllocationSizeMax)
	}
}

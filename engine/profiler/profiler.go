// Package profiler reports frame rate, memory and renderer counters at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-globe/common"
)

// Sample is one interval of statistics.
type Sample struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	// Counters holds the values of every registered counter, keyed by name.
	Counters map[string]int
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now      func() time.Time
	counters []counter
	onSample func(Sample)
}

type counter struct {
	name  string
	value func() int
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// AddCounter registers a value sampled at every report, such as the number of cached
// programs or executing network requests.
//
// Parameters:
//   - name: the log attribute name
//   - value: returns the current value; called from the goroutine that calls Tick
func (p *Profiler) AddCounter(name string, value func() int) {
	p.counters = append(p.counters, counter{name: name, value: value})
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	s := Sample{
		FPS:      float64(p.frameCount) / elapsed.Seconds(),
		Counters: make(map[string]int, len(p.counters)),
	}

	runtime.ReadMemStats(&p.memStats)
	s.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	s.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	s.GCCount = p.memStats.NumGC
	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if s.GCCount-startIdx > 256 {
			startIdx = s.GCCount - 256
		}
		for i := startIdx; i < s.GCCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	attrs := []any{
		"fps", s.FPS,
		"heapMB", s.HeapMB,
		"allocRateMB", s.AllocRateMB,
		"gc", s.GCCount,
		"lastPauseUs", s.LastPauseUs,
		"maxPauseUs", s.MaxPauseUs,
		"sysMB", s.SysMB,
	}
	for _, c := range p.counters {
		v := c.value()
		s.Counters[c.name] = v
		attrs = append(attrs, c.name, v)
	}
	common.Logger().Info("profiler", attrs...)
	if p.onSample != nil {
		p.onSample(s)
	}

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

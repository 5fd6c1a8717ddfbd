// Package sysmetrics measures the CPU time and memory a run consumed.
package sysmetrics

import (
	"log/slog"
	"math"
	"runtime"
	"syscall"
	"time"
)

// Sample is a point-in-time reading of wall clock and process CPU time.
type Sample struct {
	wall time.Time
	cpu  time.Duration
}

// Now takes a sample.
func Now() Sample {
	return Sample{wall: time.Now(), cpu: cpuTime()}
}

// Usage is the resource use between a Sample and a later reading.
type Usage struct {
	Elapsed     time.Duration
	CPU         time.Duration
	MemoryInuse int64
}

// Since returns the usage from s until now.
func (s Sample) Since() Usage {
	return Usage{
		Elapsed:     time.Since(s.wall),
		CPU:         max(cpuTime()-s.cpu, 0),
		MemoryInuse: MemoryInuse(),
	}
}

// CPUPercent is CPU time over wall time. Multi-core runs can exceed 100.
func (u Usage) CPUPercent() float64 {
	if u.Elapsed <= 0 {
		return 0
	}
	return float64(u.CPU) / float64(u.Elapsed) * 100.0
}

// LogValue implements slog.LogValuer.
func (u Usage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("elapsed", u.Elapsed),
		slog.Duration("cpu", u.CPU),
		slog.Float64("cpu_pct", math.Round(u.CPUPercent()*10)/10),
		slog.Int64("memory_inuse", u.MemoryInuse),
	)
}

// MemoryInuse returns the memory actively in use by the Go runtime, in
// bytes. This is HeapInuse (live heap spans) plus StackInuse (goroutine
// stacks), excluding virtual address space reserved but not committed.
func MemoryInuse() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.HeapInuse + m.StackInuse)
}

func cpuTime() time.Duration {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	return time.Duration(rusage.Utime.Nano()) + time.Duration(rusage.Stime.Nano())
}

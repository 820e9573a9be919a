package engine

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/emberworks/stoker/errors"
)

// SystemMetrics is a host-level snapshot reported alongside job metrics so
// operators can correlate scheduler behavior with machine pressure.
type SystemMetrics struct {
	CPUPercent     float64
	Load1          float64
	MemUsedPercent float64
	MemUsedBytes   uint64
	MemTotalBytes  uint64
	CollectedAt    time.Time
}

// CollectSystemMetrics samples CPU, load, and memory. CPU sampling blocks
// for a short interval; callers on hot paths should cache the result.
func CollectSystemMetrics() (*SystemMetrics, error) {
	metrics := &SystemMetrics{CollectedAt: time.Now()}

	cpuPercents, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sample cpu usage")
	}
	if len(cpuPercents) > 0 {
		metrics.CPUPercent = cpuPercents[0]
	}

	if avg, err := load.Avg(); err == nil {
		metrics.Load1 = avg.Load1
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read memory stats")
	}
	metrics.MemUsedPercent = vm.UsedPercent
	metrics.MemUsedBytes = vm.Used
	metrics.MemTotalBytes = vm.Total

	return metrics, nil
}

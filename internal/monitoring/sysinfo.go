// internal/monitoring/sysinfo.go
package monitoring

import (
    "context"
    "fmt"

    "github.com/shirou/gopsutil/v3/cpu"
    "github.com/shirou/gopsutil/v3/disk"
    "github.com/shirou/gopsutil/v3/mem"
)

// SystemSample holds host resource usage percentages in [0,100].
type SystemSample struct {
    CPUUsage    float64 `json:"cpu_usage"`
    MemoryUsage float64 `json:"memory_usage"`
    DiskUsage   float64 `json:"disk_usage"`
}

// Sampler reads host resource usage. Swapped out in tests.
type Sampler func(ctx context.Context) (SystemSample, error)

// SampleSystem reads CPU, memory and disk usage from the host. CPU usage is
// measured since the previous call, so the first cycle reports zero.
func SampleSystem(ctx context.Context) (SystemSample, error) {
    var sample SystemSample

    cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
    if err != nil {
        return sample, fmt.Errorf("failed to sample cpu: %w", err)
    }
    if len(cpuPercents) > 0 {
        sample.CPUUsage = cpuPercents[0]
    }

    vm, err := mem.VirtualMemoryWithContext(ctx)
    if err != nil {
        return sample, fmt.Errorf("failed to sample memory: %w", err)
    }
    sample.MemoryUsage = vm.UsedPercent

    usage, err := disk.UsageWithContext(ctx, "/")
    if err != nil {
        return sample, fmt.Errorf("failed to sample disk: %w", err)
    }
    sample.DiskUsage = usage.UsedPercent

    return sample, nil
}

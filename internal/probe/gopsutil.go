package probe

import (
	"context"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	gnet "github.com/shirou/gopsutil/v4/net"
)

// GopsutilProbe is the default Probe implementation, backed by gopsutil.
// It reports cpu/memory/swap/load/network/disk; it never reports
// processes/docker/file_serving, since this core has no component that
// consumes those categories.
type GopsutilProbe struct{}

// NewGopsutilProbe constructs the default probe.
func NewGopsutilProbe() *GopsutilProbe {
	return &GopsutilProbe{}
}

func (p *GopsutilProbe) Capabilities() Capabilities {
	return Capabilities{
		CPU:         true,
		Memory:      true,
		Swap:        true,
		LoadAverage: true,
		Network:     true,
		Disk:        true,
	}
}

func (p *GopsutilProbe) Sample(ctx context.Context) (Sample, error) {
	now := time.Now().Unix()

	cpuPct, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return Sample{}, err
	}
	var cpuAvg float64
	if len(cpuPct) > 0 {
		cpuAvg = cpuPct[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Sample{}, err
	}
	sw, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return Sample{}, err
	}

	loadAvg, err := load.AvgWithContext(ctx)
	if err != nil {
		return Sample{}, err
	}

	netIO, err := gnet.IOCountersWithContext(ctx, true)
	if err != nil {
		return Sample{}, err
	}
	interfaces := make([]NetIO, 0, len(netIO))
	for _, io := range netIO {
		if isVirtualInterface(strings.ToLower(io.Name)) {
			continue
		}
		interfaces = append(interfaces, NetIO{Name: io.Name, Rx: io.BytesRecv, Tx: io.BytesSent})
	}

	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return Sample{}, err
	}
	diskIOCounters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		diskIOCounters = nil
	}
	disks := make([]DiskIO, 0, len(partitions))
	for _, part := range partitions {
		usage, err := disk.UsageWithContext(ctx, part.Mountpoint)
		if err != nil {
			continue
		}
		var readBytes, writeBytes uint64
		if counters, ok := diskIOCounters[deviceBaseName(part.Device)]; ok {
			readBytes = counters.ReadBytes
			writeBytes = counters.WriteBytes
		}
		disks = append(disks, DiskIO{
			MountPoint: part.Mountpoint,
			Total:      usage.Total,
			Free:       usage.Free,
			ReadBytes:  readBytes,
			WriteBytes: writeBytes,
		})
	}

	return Sample{
		Timestamp:  now,
		CPUAvgPct:  cpuAvg,
		MemUsed:    vm.Used,
		MemTotal:   vm.Total,
		SwapUsed:   sw.Used,
		SwapTotal:  sw.Total,
		LoadAvg1:   loadAvg.Load1,
		LoadAvg5:   loadAvg.Load5,
		LoadAvg15:  loadAvg.Load15,
		Interfaces: interfaces,
		Disks:      disks,
	}, nil
}

func deviceBaseName(device string) string {
	idx := strings.LastIndex(device, "/")
	if idx < 0 {
		return device
	}
	return device[idx+1:]
}

func isVirtualInterface(name string) bool {
	return name == "lo" || name == "lo0" ||
		strings.HasPrefix(name, "veth") ||
		strings.HasPrefix(name, "docker") ||
		strings.HasPrefix(name, "br-") ||
		strings.HasPrefix(name, "virbr") ||
		strings.HasPrefix(name, "utun") ||
		strings.HasPrefix(name, "awdl") ||
		strings.HasPrefix(name, "llw")
}

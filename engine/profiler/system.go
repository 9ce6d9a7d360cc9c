package profiler

import (
	"fmt"
	"os"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// System describes the host the engine runs on.
type System struct {
	CPUModel    string
	Cores       int
	TotalMemory uint64 // bytes
}

// ReadSystem queries the CPU model and installed memory.
func ReadSystem() (System, error) {
	sys := System{Cores: NumCPU()}
	infos, err := cpu.Info()
	if err != nil {
		return sys, fmt.Errorf("cpu info: %w", err)
	}
	if len(infos) > 0 {
		sys.CPUModel = infos[0].ModelName
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return sys, fmt.Errorf("memory info: %w", err)
	}
	sys.TotalMemory = vm.Total
	return sys, nil
}

// CPUPercent returns the CPU usage of the whole host, averaged over all
// cores, since the previous call. The first call returns 0.
func CPUPercent() float64 {
	usage, err := cpu.Percent(0, false)
	if err != nil || len(usage) == 0 {
		return 0
	}
	return usage[0]
}

var self = sync.OnceValues(func() (*process.Process, error) {
	return process.NewProcess(int32(os.Getpid()))
})

// ProcessCPUPercent returns the CPU usage of this process since the
// previous call, where 100 is one fully busy core. The first call returns 0.
func ProcessCPUPercent() float64 {
	p, err := self()
	if err != nil {
		return 0
	}
	usage, err := p.Percent(0)
	if err != nil {
		return 0
	}
	return usage
}

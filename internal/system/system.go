package system

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read open file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not raise open file limit: %v", err)
	}
}

// GetBestH264Encoder probes the local ffmpeg for hardware H.264 encoders.
// Priority: VideoToolbox (macOS), NVENC (NVIDIA), then software libx264.
func GetBestH264Encoder() string {
	encoders := []string{"h264_videotoolbox", "h264_nvenc"}

	cmd := exec.Command("ffmpeg", "-hide_banner", "-encoders")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, enc := range encoders {
		if strings.Contains(string(out), enc) {
			return enc
		}
	}
	return "libx264"
}

var (
	filterListOnce sync.Once
	filterList     string
)

// CheckFilterSupport reports whether the local ffmpeg build carries the
// named filter (drawtext is absent in minimal builds).
func CheckFilterSupport(name string) bool {
	filterListOnce.Do(func() {
		out, err := exec.Command("ffmpeg", "-hide_banner", "-filters").CombinedOutput()
		if err == nil {
			filterList = string(out)
		}
	})
	return strings.Contains(filterList, " "+name+" ")
}

// HostSummary describes the machine a run executed on, for the
// performance report.
func HostSummary() string {
	cores, err := cpu.Counts(true)
	if err != nil {
		cores = runtime.NumCPU()
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Sprintf("%s/%s, %d cores", runtime.GOOS, runtime.GOARCH, cores)
	}
	return fmt.Sprintf("%s/%s, %d cores, %.1f GiB RAM (%.0f%% used)",
		runtime.GOOS, runtime.GOARCH, cores,
		float64(vm.Total)/(1<<30), vm.UsedPercent)
}

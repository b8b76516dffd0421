// Description:
// Package sysinfo gathers the host information attached to every crash
// report: operating system, kernel, CPU count, memory figures and details of
// the Go runtime the crashed program was built with.
//
// Features:
// - Concurrent data collection.
// - Memory statistics from /proc/meminfo in human-readable units.
// - Errors from individual probes are collected and returned with the partial
//   result, so a report is never lost because one probe failed.
//
// Note:
// - Kernel and memory probes are designed for Linux-like systems with `uname`
//   and `/proc/meminfo`; elsewhere they report errors and are left empty.
//

// Package sysinfo provides system information for crash reports.
package sysinfo

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
)

// procMeminfo defines the path to the system's memory information file.
var procMeminfo = "/proc/meminfo"

// osRelease defines the path to the OS release file.
var osRelease = "/etc/os-release"

// SysInfo contains system and runtime information.
type SysInfo struct {
	// OS is the operating system name.
	OS string `json:"os" yaml:"os"`

	// Architecture is the system's CPU architecture.
	Architecture string `json:"architecture" yaml:"architecture"`

	// Hostname is the system's network name.
	Hostname string `json:"hostname" yaml:"hostname"`

	// Kernel is the kernel name and release.
	Kernel string `json:"kernel" yaml:"kernel"`

	// OSVersion is the detailed operating system version information.
	OSVersion string `json:"os_version" yaml:"os_version"`

	// CPUs is the number of CPU cores available in the system.
	CPUs int `json:"cpus" yaml:"cpus"`

	// MemoryStats contains memory-related statistics including total, free,
	// available, cached, and buffer memory in human-readable format.
	MemoryStats map[string]string `json:"memory_stats" yaml:"memory_stats"`

	// GoVersion is the Go release the program was built with.
	GoVersion string `json:"go_version" yaml:"go_version"`

	// Goroutines is the number of goroutines alive at collection time.
	Goroutines int `json:"goroutines" yaml:"goroutines"`
}

// getHostname returns the system's network hostname.
func getHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("hostname: failed to retrieve hostname: %w", err)
	}
	return hostname, nil
}

// getKernelVersion returns the kernel name and release from 'uname -sr'.
func getKernelVersion() (string, error) {
	output, err := cmdExecutor.Execute("uname", "-sr")
	if err != nil {
		return "", fmt.Errorf("kernel: failed to retrieve version: %w", err)
	}
	kernel := strings.TrimSpace(string(output))
	if kernel == "" {
		return "", fmt.Errorf("kernel: uname returned no output")
	}
	return kernel, nil
}

// getOSVersion returns the PRETTY_NAME field of the os-release file, or
// "unknown" when the field is missing.
func getOSVersion() (string, error) {
	output, err := os.ReadFile(osRelease)
	if err != nil {
		return "", fmt.Errorf("os-release: failed to read file: %w", err)
	}
	for _, line := range strings.Split(string(output), "\n") {
		if value, ok := strings.CutPrefix(line, "PRETTY_NAME="); ok {
			return strings.Trim(value, `"`), nil
		}
	}
	return "unknown", nil
}

// getReadableMemoryStats returns MemTotal, MemFree, MemAvailable, Cached and
// Buffers from /proc/meminfo in human-readable units.
func getReadableMemoryStats() (map[string]string, error) {
	output, err := os.ReadFile(procMeminfo)
	if err != nil {
		return nil, fmt.Errorf("meminfo: failed to read file: %w", err)
	}

	memoryStats := make(map[string]string)
	for _, line := range strings.Split(string(output), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		key := strings.TrimSuffix(fields[0], ":")
		switch key {
		case "MemTotal", "MemFree", "MemAvailable", "Cached", "Buffers":
			memoryStats[key] = humanizeSize(fields[1])
		}
	}
	return memoryStats, nil
}

// humanizeSize converts a size in kilobytes to IEC units. Input that is not an
// integer is returned unchanged.
func humanizeSize(kb string) string {
	n, err := strconv.ParseUint(kb, 10, 64)
	if err != nil {
		return kb
	}
	return humanize.IBytes(n * 1024)
}

// Collect gathers system information concurrently. Probes that fail leave
// their fields empty and contribute an error; the result is always usable.
func Collect() (SysInfo, []error) {
	var wg sync.WaitGroup
	var mu sync.Mutex

	info := SysInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		CPUs:         runtime.NumCPU(),
		GoVersion:    runtime.Version(),
		Goroutines:   runtime.NumGoroutine(),
	}
	var errs []error
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		if hostname, err := getHostname(); err == nil {
			info.Hostname = hostname
		} else {
			fail(err)
		}
	}()
	go func() {
		defer wg.Done()
		if kernel, err := getKernelVersion(); err == nil {
			info.Kernel = kernel
		} else {
			fail(err)
		}
	}()
	go func() {
		defer wg.Done()
		if osVersion, err := getOSVersion(); err == nil {
			info.OSVersion = osVersion
		} else {
			fail(err)
		}
	}()
	go func() {
		defer wg.Done()
		if memStats, err := getReadableMemoryStats(); err == nil {
			info.MemoryStats = memStats
		} else {
			info.MemoryStats = map[string]string{"error": err.Error()}
			fail(err)
		}
	}()
	wg.Wait()

	return info, errs
}

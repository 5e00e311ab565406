// Package sysinfo reports host memory and disk usage for the admin system page.
package sysinfo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const gb = 1024 * 1024 * 1024

// Metrics describes the machine the dashboard runs on
type Metrics struct {
	CPUCount        int     `json:"cpu_count"`
	MemoryTotalGB   float64 `json:"memory_total_gb"`
	MemoryUsedGB    float64 `json:"memory_used_gb"`
	MemoryFreeGB    float64 `json:"memory_free_gb"`
	DiskTotalGB     float64 `json:"disk_total_gb"`
	DiskUsedGB      float64 `json:"disk_used_gb"`
	DiskAvailableGB float64 `json:"disk_available_gb"`
	DiskUsedPercent float64 `json:"disk_used_percent"`
}

// GetMetrics collects memory figures and disk usage for the filesystem holding
// path. Whatever could be read is returned alongside the first error.
func GetMetrics(path string) (Metrics, error) {
	metrics := Metrics{CPUCount: runtime.NumCPU()}

	var firstErr error
	if file, err := os.Open("/proc/meminfo"); err != nil {
		firstErr = fmt.Errorf("failed to open /proc/meminfo: %w", err)
	} else {
		err = readMemInfo(file, &metrics)
		file.Close()
		if err != nil {
			firstErr = err
		}
	}

	if err := readDiskUsage(path, &metrics); err != nil && firstErr == nil {
		firstErr = err
	}

	return metrics, firstErr
}

// readMemInfo parses /proc/meminfo formatted input
func readMemInfo(r io.Reader, metrics *Metrics) error {
	var memTotal, memAvailable float64
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			memTotal = value / (1024 * 1024) // KB to GB
		case strings.HasPrefix(line, "MemAvailable:"):
			memAvailable = value / (1024 * 1024) // KB to GB
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading meminfo: %w", err)
	}

	metrics.MemoryTotalGB = memTotal
	metrics.MemoryFreeGB = memAvailable
	metrics.MemoryUsedGB = memTotal - memAvailable
	return nil
}

// DataDir returns the directory of a SQLite DSN such as
// "file:data/plateadmin.sqlite?_pragma=..." or "plateadmin.sqlite".
// In-memory databases resolve to the working directory.
func DataDir(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return "."
	}
	return filepath.Dir(path)
}

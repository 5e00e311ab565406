//go:build linux || darwin

package sysinfo

import (
	"fmt"
	"syscall"
)

// readDiskUsage fills the disk fields from statfs on path's directory
func readDiskUsage(path string, metrics *Metrics) error {
	dir := DataDir(path)

	var st syscall.Statfs_t
	if err := syscall.Statfs(dir, &st); err != nil {
		return fmt.Errorf("failed to stat filesystem for %s: %w", dir, err)
	}

	blockSize := uint64(st.Bsize)
	metrics.DiskTotalGB = float64(st.Blocks*blockSize) / gb
	metrics.DiskAvailableGB = float64(st.Bavail*blockSize) / gb
	metrics.DiskUsedGB = float64((st.Blocks-st.Bfree)*blockSize) / gb
	if metrics.DiskTotalGB > 0 {
		metrics.DiskUsedPercent = (metrics.DiskUsedGB / metrics.DiskTotalGB) * 100
	}
	return nil
}

//go:build !linux && !darwin

package sysinfo

import (
	"fmt"
	"runtime"
)

func readDiskUsage(path string, metrics *Metrics) error {
	return fmt.Errorf("disk usage is not supported on %s", runtime.GOOS)
}

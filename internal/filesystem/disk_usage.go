package filesystem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// unixStatfsProvider defines Statfs methods needed for disk usage checking.
type unixStatfsProvider interface {
	Statfs(path string, buf *unix.Statfs_t) error
}

// UnixStatfs is the [unixStatfsProvider] of the operating system.
type UnixStatfs struct{}

// Statfs wraps [unix.Statfs].
func (UnixStatfs) Statfs(path string, buf *unix.Statfs_t) error {
	return unix.Statfs(path, buf) //nolint:wrapcheck
}

// DiskStats holds disk usage information. It is meant to be passed by value.
type DiskStats struct {
	TotalSize uint64
	FreeSpace uint64
}

// DiskUsage reports the usage of the filesystems paths are located on.
type DiskUsage struct {
	unixHandler unixStatfsProvider
}

// NewDiskUsage returns a pointer to a new [DiskUsage].
func NewDiskUsage(unixHandler unixStatfsProvider) *DiskUsage {
	return &DiskUsage{
		unixHandler: unixHandler,
	}
}

// Stats returns the [DiskStats] of the filesystem containing path.
func (d *DiskUsage) Stats(path string) (DiskStats, error) {
	var stat unix.Statfs_t
	if err := d.unixHandler.Statfs(path, &stat); err != nil {
		return DiskStats{}, fmt.Errorf("(fs-diskstats) failed to statfs: %w", err)
	}

	bsize := uint64(max(stat.Bsize, 0)) //nolint:gosec

	return DiskStats{
		TotalSize: stat.Blocks * bsize,
		FreeSpace: stat.Bavail * bsize,
	}, nil
}

// HasEnoughFreeSpace checks if the filesystem containing path can house
// size more bytes.
func (d *DiskUsage) HasEnoughFreeSpace(path string, size uint64) (bool, error) {
	stats, err := d.Stats(path)
	if err != nil {
		return false, err
	}

	return stats.FreeSpace > size, nil
}

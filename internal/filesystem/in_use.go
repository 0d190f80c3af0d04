package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// CheckerInterval is the interval at which the [InUseChecker] is updated.
	CheckerInterval = 5 * time.Second

	procRoot = "/proc"
)

// osReadsProvider defines methods needed to read the process table of the
// operating system.
type osReadsProvider interface {
	ReadDir(name string) ([]os.FileInfo, error)
	Readlink(name string) (string, error)
}

// InUseChecker caches paths which are currently held open by another process
// of the operating system, so that sources can be checked before they are
// moved without scanning /proc for every single path.
type InUseChecker struct {
	sync.RWMutex
	osHandler  osReadsProvider
	inUsePaths map[string]struct{}
	isUpdating atomic.Bool
}

// NewInUseChecker returns a pointer to a new [InUseChecker]. The cache is
// filled once and then refreshed every [CheckerInterval] until ctx is done.
func NewInUseChecker(ctx context.Context, osHandler osReadsProvider) (*InUseChecker, error) {
	checker := &InUseChecker{
		osHandler:  osHandler,
		inUsePaths: make(map[string]struct{}),
	}

	if err := checker.Update(); err != nil {
		return nil, err
	}

	go checker.periodicUpdate(ctx)

	return checker, nil
}

// IsInUse checks (the cache) if a path, or any path below it, is currently in
// use by another process of the operating system.
func (c *InUseChecker) IsInUse(path string) bool {
	c.RLock()
	defer c.RUnlock()

	if _, exists := c.inUsePaths[path]; exists {
		return true
	}

	prefix := path + string(filepath.Separator)
	for p := range c.inUsePaths {
		if len(p) > len(prefix) && p[:len(prefix)] == prefix {
			return true
		}
	}

	return false
}

func (c *InUseChecker) periodicUpdate(ctx context.Context) {
	ticker := time.NewTicker(CheckerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Update()
		}
	}
}

// Update queries the operating system for all in-use paths and stores them in
// the [InUseChecker] cache. The call is a no-op while another update is in
// progress.
func (c *InUseChecker) Update() error {
	if !c.isUpdating.CompareAndSwap(false, true) {
		return nil
	}
	defer c.isUpdating.Store(false)

	procEntries, err := c.osHandler.ReadDir(procRoot)
	if err != nil {
		return fmt.Errorf("(fs-inuse) failed to read %s: %w", procRoot, err)
	}

	inUse := make(map[string]struct{})

	for _, procEntry := range procEntries {
		pid, err := strconv.Atoi(procEntry.Name())
		if err != nil {
			continue
		}

		fdPath := filepath.Join(procRoot, strconv.Itoa(pid), "fd")

		fdEntries, err := c.osHandler.ReadDir(fdPath)
		if err != nil {
			continue
		}

		for _, fdEntry := range fdEntries {
			linkTarget, err := c.osHandler.Readlink(filepath.Join(fdPath, fdEntry.Name()))
			if err != nil {
				continue
			}

			inUse[linkTarget] = struct{}{}
		}
	}

	c.Lock()
	c.inUsePaths = inUse
	c.Unlock()

	return nil
}

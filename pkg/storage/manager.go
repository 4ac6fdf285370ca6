package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/thali/pkg/workerpool"
)

// Manager holds the named disks and which one is the default.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultDisk string
}

func NewManager(defaultDisk string) *Manager {
	return &Manager{disks: map[string]Disk{}, defaultDisk: defaultDisk}
}

func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	m.disks[name] = d
	m.mu.Unlock()
}

// Use returns the named disk.
func (m *Manager) Use(name string) (Disk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the default disk, falling back to "local" when the
// configured default was never registered.
func (m *Manager) Default() (Disk, error) {
	d, err := m.Use(m.defaultDisk)
	if err == nil {
		return d, nil
	}
	if local, lerr := m.Use("local"); lerr == nil {
		return local, nil
	}
	return nil, err
}

// URL returns the public URL of path on the default disk, or "" when no disk
// is available.
func (m *Manager) URL(path string) string {
	d, err := m.Default()
	if err != nil {
		return ""
	}
	return d.URL(path)
}

// Copy copies path from one disk to another unless it already exists there.
// It reports whether a copy was made.
func (m *Manager) Copy(ctx context.Context, from, to, path string) (bool, error) {
	src, err := m.Use(from)
	if err != nil {
		return false, err
	}
	dst, err := m.Use(to)
	if err != nil {
		return false, err
	}

	exists, err := dst.Exists(ctx, path)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	data, err := src.Get(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("storage: %s missing on %s: %w", path, from, err)
	}
	if err != nil {
		return false, err
	}
	return true, dst.Put(ctx, path, data)
}

// CopyResult is the outcome of one path in Publish.
type CopyResult struct {
	Path   string
	Copied bool
}

// Publish copies every path from one disk to another using at most workers
// concurrent transfers. Results keep the order of paths; the error joins
// every failed copy.
func (m *Manager) Publish(ctx context.Context, from, to string, paths []string, workers int) ([]CopyResult, error) {
	if _, err := m.Use(from); err != nil {
		return nil, err
	}
	if _, err := m.Use(to); err != nil {
		return nil, err
	}

	results := make([]CopyResult, len(paths))
	pool := workerpool.New(ctx, workers)
	for i, p := range paths {
		results[i].Path = p
		err := pool.Submit(func(ctx context.Context) error {
			copied, err := m.Copy(ctx, from, to, p)
			results[i].Copied = copied
			return err
		})
		if err != nil {
			break
		}
	}
	err := pool.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = errors.Join(err, ctxErr)
	}
	return results, err
}

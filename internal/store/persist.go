package store

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/muurk/kisan/internal/config"
)

// Persister stores the snapshot between runs.
type Persister interface {
	// Load returns the stored snapshot, or nil when nothing was stored yet.
	Load() (*Snapshot, error)
	Save(Snapshot) error
}

// FilePersister keeps the snapshot in a YAML file.
type FilePersister struct {
	Path string
}

// NewFilePersister creates a persister for path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{Path: path}
}

// Load reads the snapshot file. A missing file is not an error.
func (p *FilePersister) Load() (*Snapshot, error) {
	data, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, nil
}

// Save writes the snapshot atomically.
func (p *FilePersister) Save(snap Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return config.WriteFileAtomic(p.Path, data, 0600)
}

// Remove deletes the snapshot file. A missing file is not an error.
func (p *FilePersister) Remove() error {
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}

// MemoryPersister keeps the snapshot in memory. It is used by tests and by
// one-shot commands that must not touch the user's files.
type MemoryPersister struct {
	mu    sync.Mutex
	snap  *Snapshot
	saves int
	// Err, when set, is returned by Save.
	Err error
}

// NewMemoryPersister returns a persister seeded with snap, which may be nil.
func NewMemoryPersister(snap *Snapshot) *MemoryPersister {
	return &MemoryPersister{snap: snap}
}

// Load returns the stored snapshot.
func (p *MemoryPersister) Load() (*Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snap == nil {
		return nil, nil
	}
	s := *p.snap
	s.SelectedCrops = append([]string{}, p.snap.SelectedCrops...)
	return &s, nil
}

// Save stores snap unless Err is set.
func (p *MemoryPersister) Save(snap Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.snap = &snap
	p.saves++
	return nil
}

// Saves returns how many snapshots were stored.
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

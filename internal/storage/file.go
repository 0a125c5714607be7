package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// FileBackend keeps one JSON document per route under <dataDir>/routes.
type FileBackend struct {
	dir string
	log zerolog.Logger
	mu  sync.RWMutex
}

// NewFileBackend creates the routes directory if needed.
func NewFileBackend(dataDir string, log zerolog.Logger) (*FileBackend, error) {
	dir := filepath.Join(dataDir, "routes")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create routes directory: %w", err)
	}
	return &FileBackend{dir: dir, log: log}, nil
}

func (b *FileBackend) path(id string) string {
	return filepath.Join(b.dir, id+".json")
}

func (b *FileBackend) Save(_ context.Context, snap Snapshot) error {
	snap, err := normalize(snap)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// write then rename so readers never see a partial file
	tmp, err := os.CreateTemp(b.dir, snap.RouteID+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), b.path(snap.RouteID))
}

func (b *FileBackend) Load(_ context.Context, routeID string) (Snapshot, error) {
	if err := ValidateID(routeID); err != nil {
		return Snapshot{}, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.read(b.path(routeID))
}

func (b *FileBackend) read(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSuffix(filepath.Base(path), ".json"))
		}
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return snap, nil
}

func (b *FileBackend) List(_ context.Context) ([]Info, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, err
	}

	infos := []Info{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		snap, err := b.read(filepath.Join(b.dir, entry.Name()))
		if err != nil {
			b.log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unreadable snapshot")
			continue
		}
		infos = append(infos, snap.Info())
	}
	sortInfos(infos)
	return infos, nil
}

func (b *FileBackend) Delete(_ context.Context, routeID string) error {
	if err := ValidateID(routeID); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.path(routeID)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, routeID)
		}
		return err
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }

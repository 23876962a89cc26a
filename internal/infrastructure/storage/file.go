// Package storage provides file and in-memory implementations of the
// patient persistence gateway.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/vitalcare/patient-registry/internal/domain/patient"
)

// FileGateway persists the record set as a single JSON document mapping
// record ID to record, rewritten wholesale on every save. Saves go through
// a temp file and rename so a crash mid-write leaves the prior state
// intact. Missing or corrupt state loads as an empty set; availability is
// preferred over failure visibility here, callers needing durability
// guarantees must monitor the file independently.
type FileGateway struct {
	path   string
	logger *zap.Logger
}

// NewFileGateway creates a gateway backed by the given file path.
func NewFileGateway(path string, logger *zap.Logger) *FileGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileGateway{path: path, logger: logger}
}

// Load reads the current record set. It never returns an error: unreadable
// or unparsable state yields an empty set.
func (g *FileGateway) Load(ctx context.Context) (patient.RecordSet, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			g.logger.Warn("record file unreadable, starting empty",
				zap.String("path", g.path), zap.Error(err))
		}
		return patient.RecordSet{}, nil
	}

	var set patient.RecordSet
	if err := json.Unmarshal(data, &set); err != nil {
		g.logger.Warn("record file corrupt, starting empty",
			zap.String("path", g.path), zap.Error(err))
		return patient.RecordSet{}, nil
	}

	// The map key is the authoritative identifier.
	for id, rec := range set {
		rec.ID = id
		set[id] = rec
	}
	return set, nil
}

// Save replaces the stored state with the given set.
func (g *FileGateway) Save(ctx context.Context, set patient.RecordSet) error {
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record set: %w", err)
	}

	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".patients-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write record set: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync record set: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), g.path); err != nil {
		return fmt.Errorf("replace record file: %w", err)
	}
	return nil
}

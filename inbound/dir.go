package inbound

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// DirIngestor writes each message to its own .eml file in Dir.
type DirIngestor struct {
	Dir string
}

// Ingest writes message to Dir/<uuid>.eml.
func (d DirIngestor) Ingest(_ context.Context, message []byte) error {
	if err := os.MkdirAll(d.Dir, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.Dir, err)
	}
	path := filepath.Join(d.Dir, uuid.NewString()+".eml")
	if err := os.WriteFile(path, message, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

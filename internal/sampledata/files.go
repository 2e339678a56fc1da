package sampledata

import (
	"context"
	"fmt"

	"github.com/okian/survival/internal/domain/table"
)

// TableWriter persists a table at a destination.
type TableWriter interface {
	WriteTable(destination string, t *table.Table) error
}

// WriteFiles generates both manifests and writes them with w.
func WriteFiles(ctx context.Context, w TableWriter, cfg Config, trainPath, testPath string) error {
	train, test, err := Generate(ctx, cfg)
	if err != nil {
		return err
	}
	if err := w.WriteTable(trainPath, train); err != nil {
		return fmt.Errorf("write training manifest: %w", err)
	}
	if err := w.WriteTable(testPath, test); err != nil {
		return fmt.Errorf("write test manifest: %w", err)
	}
	return nil
}

package sheets

import (
	"context"
	"io"

	"painel/internal/core"
)

// Ports for outbound adapters.
type (
	// SnapshotReader loads every sheet of the workbook plus its summary.
	SnapshotReader interface {
		ReadSnapshot(ctx context.Context) (core.Snapshot, error)
	}

	// DocumentOpener opens a named document relative to some base location.
	DocumentOpener interface {
		Open(ctx context.Context, name string) (io.ReadCloser, error)
	}
)

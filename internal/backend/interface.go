package backend

import (
	"context"

	"painel/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// SourceResult contains the snapshot source and optional cleanup function
type SourceResult struct {
	Source  sheets.SnapshotReader
	Type    SourceType
	Cleanup CleanupFunc
}

// Factory creates snapshot sources based on configuration
type Factory interface {
	// CreateSource creates a source instance based on the provided config
	CreateSource(ctx context.Context, config Config) (*SourceResult, error)
}

// SourceType represents the type of data source
type SourceType string

const (
	FilesSource  SourceType = "files"
	HTTPSource   SourceType = "http"
	SheetsSource SourceType = "sheets"
	XLSXSource   SourceType = "xlsx"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is valid
func (st SourceType) IsValid() bool {
	switch st {
	case FilesSource, HTTPSource, SheetsSource, XLSXSource:
		return true
	default:
		return false
	}
}

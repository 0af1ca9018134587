package backend

import (
	"context"
	"fmt"

	"painel/internal/log"
	gsheet "painel/internal/sheets/google"
	"painel/internal/sheets/jsondoc"
	"painel/internal/sheets/workbook"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new source factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*SourceResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FilesSource:
		return f.createFilesSource(config)
	case HTTPSource:
		return f.createHTTPSource(config)
	case SheetsSource:
		return f.createSheetsSource(ctx, config)
	case XLSXSource:
		return f.createXLSXSource(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFilesSource(config Config) (*SourceResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	reader := jsondoc.New(jsondoc.NewDirOpener(dataDir),
		jsondoc.WithDocuments(config.StructuredDoc, config.VerificationDoc))

	f.logger.Info("Initialized files backend", "data_directory", dataDir)

	return &SourceResult{Source: reader, Type: FilesSource}, nil
}

func (f *DefaultFactory) createHTTPSource(config Config) (*SourceResult, error) {
	opener, err := jsondoc.NewHTTPOpener(config.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize http backend: %w", err)
	}
	reader := jsondoc.New(opener, jsondoc.WithDocuments(config.StructuredDoc, config.VerificationDoc))

	f.logger.Info("Initialized http backend", "base_url", config.BaseURL)

	return &SourceResult{Source: reader, Type: HTTPSource}, nil
}

func (f *DefaultFactory) createSheetsSource(ctx context.Context, config Config) (*SourceResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		CredentialsFile: config.GoogleCredentialsFile,
		CredentialsJSON: config.GoogleCredentialsJSON,
		OAuthClientFile: config.GoogleOAuthClientFile,
		OAuthClientJSON: config.GoogleOAuthClientJSON,
		OAuthTokenFile:  config.GoogleOAuthTokenFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)

	return &SourceResult{Source: cli, Type: SheetsSource}, nil
}

func (f *DefaultFactory) createXLSXSource(config Config) (*SourceResult, error) {
	f.logger.Info("Initialized xlsx backend", "workbook", config.WorkbookPath)

	return &SourceResult{Source: workbook.New(config.WorkbookPath), Type: XLSXSource}, nil
}

package backend

import (
	"fmt"

	"painel/internal/config"
)

// Config holds configuration for source creation
type Config struct {
	Type SourceType

	// files and http sources
	DataDirectory   string
	BaseURL         string
	StructuredDoc   string
	VerificationDoc string

	// xlsx source
	WorkbookPath string

	// sheets source
	GoogleSpreadsheetID   string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
	GoogleOAuthClientFile string
	GoogleOAuthClientJSON string
	GoogleOAuthTokenFile  string
}

// FromAppConfig converts the application config to source config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	sourceType := SourceType(appConfig.DataBackend)
	if !sourceType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: sourceType,

		DataDirectory:   appConfig.DataDir,
		BaseURL:         appConfig.DataBaseURL,
		StructuredDoc:   appConfig.StructuredDoc,
		VerificationDoc: appConfig.VerificationDoc,

		WorkbookPath: appConfig.WorkbookPath,

		GoogleSpreadsheetID:   appConfig.GoogleSpreadsheetID,
		GoogleCredentialsFile: appConfig.GoogleCredentialsFile,
		GoogleCredentialsJSON: appConfig.GoogleCredentialsJSON,
		GoogleOAuthClientFile: appConfig.GoogleOAuthClientFile,
		GoogleOAuthClientJSON: appConfig.GoogleOAuthClientJSON,
		GoogleOAuthTokenFile:  appConfig.GoogleOAuthTokenFile,
	}, nil
}

// Validate validates the source configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case HTTPSource:
		if c.BaseURL == "" {
			return fmt.Errorf("base URL is required for http backend")
		}
	case XLSXSource:
		if c.WorkbookPath == "" {
			return fmt.Errorf("workbook path is required for xlsx backend")
		}
	case SheetsSource:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
		if c.GoogleCredentialsFile == "" && c.GoogleCredentialsJSON == "" && c.GoogleOAuthTokenFile == "" {
			return fmt.Errorf("Google credentials are required for sheets backend")
		}
	case FilesSource:
		// DataDirectory defaults to "data" when empty
	}

	return nil
}

// GetSourceTypes returns all valid source types
func GetSourceTypes() []SourceType {
	return []SourceType{FilesSource, HTTPSource, SheetsSource, XLSXSource}
}

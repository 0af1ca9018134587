package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"painel/internal/core"
	"painel/internal/log"
	ports "painel/internal/sheets"
)

// Config selects the spreadsheet and how to authenticate against it. A
// service account key wins over an OAuth client with a saved user token.
type Config struct {
	SpreadsheetID   string
	CredentialsFile string
	CredentialsJSON string
	OAuthClientFile string
	OAuthClientJSON string
	OAuthTokenFile  string
	// Tabs defaults to the sheet of every category.
	Tabs []string
}

// ValuesGetter fetches the cell grid of one A1 range.
type ValuesGetter interface {
	Get(ctx context.Context, spreadsheetID, readRange string) ([][]any, error)
}

type Client struct {
	values        ValuesGetter
	spreadsheetID string
	tabs          []string
	logger        *log.Logger
}

var _ ports.SnapshotReader = (*Client)(nil)

// New creates a read-only Sheets client.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithGetter(serviceGetter{svc: svc}, cfg, logger), nil
}

// NewWithGetter builds a client over an arbitrary values source.
func NewWithGetter(values ValuesGetter, cfg Config, logger *log.Logger) *Client {
	tabs := cfg.Tabs
	if len(tabs) == 0 {
		for _, c := range core.Categories() {
			tabs = append(tabs, c.SheetName())
		}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		values:        values,
		spreadsheetID: cfg.SpreadsheetID,
		tabs:          tabs,
		logger:        logger.WithComponent(log.ComponentSource),
	}
}

// ReadSnapshot reads every configured tab and computes the verification locally.
func (c *Client) ReadSnapshot(ctx context.Context) (core.Snapshot, error) {
	sheets := make([]core.Sheet, 0, len(c.tabs))
	for _, tab := range c.tabs {
		start := time.Now()
		grid, err := c.values.Get(ctx, c.spreadsheetID, quoteSheet(tab))
		if err != nil {
			return core.Snapshot{}, fmt.Errorf("read sheet %q: %w", tab, err)
		}
		sheet := ports.FromGrid(tab, grid)
		c.logger.DebugContext(ctx, "Sheet fetched",
			log.FieldSheet, tab,
			log.FieldRows, len(sheet.Records),
			log.FieldDuration, time.Since(start).Milliseconds())
		sheets = append(sheets, sheet)
	}
	return core.Snapshot{Sheets: sheets, Summary: ports.Summarize(sheets)}, nil
}

// quoteSheet turns a sheet name into an A1 range covering the whole sheet.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

type serviceGetter struct {
	svc *gsheet.Service
}

func (g serviceGetter) Get(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// newSheetsService authenticates with a service account key, or else with an
// OAuth client and the user token saved by oauth-init.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())

	credentialsJSON, err := readSecret(cfg.CredentialsJSON, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	if credentialsJSON != nil {
		jwt, err := googleoauth.JWTConfigFromJSON(credentialsJSON, gsheet.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("parse service account key: %w", err)
		}
		return gsheet.NewService(ctx, goption.WithHTTPClient(jwt.Client(ctx)))
	}

	oauthCfg, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(cfg.OAuthTokenFile)
	if err != nil {
		return nil, err
	}
	return gsheet.NewService(ctx, goption.WithHTTPClient(oauthCfg.Client(ctx, tok)))
}

// OAuthConfig builds the OAuth client configuration for read-only spreadsheet access.
func OAuthConfig(cfg Config) (*oauth2.Config, error) {
	clientJSON, err := readSecret(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client file: %w", err)
	}
	if clientJSON == nil {
		return nil, errors.New("missing credentials (set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_OAUTH_CLIENT_FILE)")
	}
	oauthCfg, err := googleoauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}
	return oauthCfg, nil
}

// LoadToken reads a user token saved by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("missing oauth token file (run painel oauth-init)")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read oauth token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}
	return &tok, nil
}

// SaveToken writes tok to path, readable by the owner only.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// readSecret returns the inline value, else the file contents, else nil.
func readSecret(inline, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case strings.TrimSpace(file) != "":
		return os.ReadFile(file)
	}
	return nil, nil
}

// newHTTPClientWithPooling creates an HTTP client tuned for the Sheets API.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

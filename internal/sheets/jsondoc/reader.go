// Package jsondoc reads the workbook from the two JSON documents produced by
// the spreadsheet extraction: the structured rows per sheet and the
// line-by-line verification summary.
package jsondoc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"painel/internal/core"
	ports "painel/internal/sheets"
)

// Default document names, relative to the opener's base.
const (
	StructuredDocument   = "dados_estruturados_para_site.json"
	VerificationDocument = "verificacao_completa_linha_por_linha.json"
)

// Reader loads a snapshot from two documents.
type Reader struct {
	opener       ports.DocumentOpener
	structured   string
	verification string
}

var _ ports.SnapshotReader = (*Reader)(nil)

// Option customizes a Reader.
type Option func(*Reader)

// WithDocuments overrides the document names. Empty names keep the defaults.
func WithDocuments(structured, verification string) Option {
	return func(r *Reader) {
		if structured != "" {
			r.structured = structured
		}
		if verification != "" {
			r.verification = verification
		}
	}
}

func New(opener ports.DocumentOpener, opts ...Option) *Reader {
	r := &Reader{
		opener:       opener,
		structured:   StructuredDocument,
		verification: VerificationDocument,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadSnapshot reads the structured document, then the summary. Either failing fails the read.
func (r *Reader) ReadSnapshot(ctx context.Context) (core.Snapshot, error) {
	sheets, err := readDocument(ctx, r.opener, r.structured, DecodeStructured)
	if err != nil {
		return core.Snapshot{}, err
	}
	summary, err := readDocument(ctx, r.opener, r.verification, DecodeSummary)
	if err != nil {
		return core.Snapshot{}, err
	}
	return core.Snapshot{Sheets: sheets, Summary: summary}, nil
}

func readDocument[T any](ctx context.Context, opener ports.DocumentOpener, name string, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	rc, err := opener.Open(ctx, name)
	if err != nil {
		return zero, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	v, err := decode(rc)
	if err != nil {
		return zero, fmt.Errorf("decode %s: %w", name, err)
	}
	return v, nil
}

// DirOpener opens documents from a local directory.
type DirOpener struct {
	dir string
}

func NewDirOpener(dir string) *DirOpener {
	return &DirOpener{dir: dir}
}

func (o *DirOpener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.DirFS(o.dir).Open(name)
}

// HTTPOpener fetches documents relative to a base URL.
type HTTPOpener struct {
	base   *url.URL
	client *http.Client
}

func NewHTTPOpener(baseURL string, client *http.Client) (*HTTPOpener, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPOpener{base: u, client: client}, nil
}

func (o *HTTPOpener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	u := *o.base
	u.Path = path.Join(u.Path, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %d", u.String(), resp.StatusCode)
	}
	return resp.Body, nil
}

package export

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Charset selects the byte encoding of CSV downloads.
type Charset string

const (
	UTF8        Charset = "utf-8"
	Windows1252 Charset = "windows-1252"
)

// ParseCharset accepts the charset names offered on the export links.
func ParseCharset(s string) (Charset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return UTF8, nil
	case "windows-1252", "cp1252", "latin1", "excel":
		return Windows1252, nil
	}
	return "", fmt.Errorf("unsupported charset %q", s)
}

// ContentType is the Content-Type header for a CSV in this charset.
func (c Charset) ContentType() string {
	return "text/csv; charset=" + string(c)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// NewWriter wraps w so that text written to it is encoded in c. Runes the
// charset cannot represent are replaced. Close flushes the encoder.
func NewWriter(w io.Writer, c Charset) io.WriteCloser {
	if c != Windows1252 {
		return nopCloser{w}
	}
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	return transform.NewWriter(w, enc)
}

package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"painel/internal/core"
)

// legacySheetsKey holds the sheets in the first-generation document layout.
const legacySheetsKey = "abas"

type entry struct {
	Line lineNumber  `json:"linha_original"`
	Data core.Fields `json:"dados"`
}

// lineNumber accepts the line as an integer, a float such as 6.0, a numeric
// string or null.
type lineNumber int

func (n *lineNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("linha_original %s: not a number", data)
	}
	*n = lineNumber(d.IntPart())
	return nil
}

type legacySheet struct {
	RawData []core.Fields `json:"raw_data"`
}

// DecodeStructured reads the structured document in sheet order. Two layouts are accepted:
//
//	{"<sheet>": [{"linha_original": 5, "dados": {...}}, ...], ...}
//	{"abas": {"<sheet>": {"raw_data": [{...}, ...]}, ...}}
//
// Top-level keys whose value is not a list are ignored. A list holding
// malformed entries fails the whole decode.
func DecodeStructured(r io.Reader) ([]core.Sheet, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var sheets []core.Sheet
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if name == legacySheetsKey {
			legacy, err := decodeLegacy(dec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", legacySheetsKey, err)
			}
			sheets = append(sheets, legacy...)
			continue
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
			continue
		}
		var entries []entry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		sheet := core.Sheet{Name: name, Records: make([]core.Record, 0, len(entries))}
		for _, e := range entries {
			sheet.Records = append(sheet.Records, core.Record{Line: int(e.Line), Fields: e.Data})
		}
		sheets = append(sheets, sheet)
	}
	return sheets, expectDelim(dec, '}')
}

func decodeLegacy(dec *json.Decoder) ([]core.Sheet, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var sheets []core.Sheet
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		var ls legacySheet
		if err := dec.Decode(&ls); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		sheet := core.Sheet{Name: name, Records: make([]core.Record, 0, len(ls.RawData))}
		for i, fields := range ls.RawData {
			sheet.Records = append(sheet.Records, core.Record{Line: i + 1, Fields: fields})
		}
		sheets = append(sheets, sheet)
	}
	return sheets, expectDelim(dec, '}')
}

// DecodeSummary reads the verification or executive summary document.
func DecodeSummary(r io.Reader) (core.Summary, error) {
	var s core.Summary
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return core.Summary{}, err
	}
	return s, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

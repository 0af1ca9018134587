package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"painel/internal/core"
	"painel/internal/export"
	"painel/internal/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport serves /export/{table}.csv and /export/{table}.xlsx. The
// download holds the records behind the rows the table shows for q and mes.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(file), "."))
	t, err := core.ParseTable(strings.TrimSuffix(file, path.Ext(file)))
	if err != nil || (ext != "csv" && ext != "xlsx") {
		NotFoundError("Exportação desconhecida").Write(w)
		return
	}

	q := r.URL.Query()
	charset, err := export.ParseCharset(q.Get("charset"))
	if err != nil {
		BadRequestError("Codificação não suportada").Write(w)
		return
	}
	term := sanitizeInput(q.Get("q"))
	month := sanitizeInput(q.Get("mes"))
	recs := s.filtered(t, term, month).Records

	var buf bytes.Buffer
	contentType := xlsxContentType
	switch {
	case ext == "xlsx":
		err = export.WriteRowsXLSX(&buf, recs, "")
	case isTruthyParam(q.Get("raw")):
		contentType = charset.ContentType()
		err = writeCSV(&buf, charset, export.WriteRawCSV, recs)
	default:
		contentType = charset.ContentType()
		err = writeCSV(&buf, charset, export.WriteRowsCSV, recs)
	}

	if errors.Is(err, export.ErrNothingToExport) {
		NewHTMXResponse().
			Status(http.StatusNoContent).
			TriggerWarningNotification("Nenhum dado para exportar").
			Write(w)
		return
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Export failed",
			log.FieldError, err,
			log.FieldTable, string(t),
			log.FieldFormat, ext,
			log.FieldOperation, log.OpExport)
		InternalServerError("Erro ao gerar o arquivo").Write(w)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Table exported",
		log.FieldTable, string(t),
		log.FieldFormat, ext,
		log.FieldRows, len(recs))

	name := export.Filename(t.ExportFilename(), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeCSV(buf *bytes.Buffer, c export.Charset, write func(io.Writer, []core.Record) error, recs []core.Record) error {
	enc := export.NewWriter(buf, c)
	if err := write(enc, recs); err != nil {
		return err
	}
	return enc.Close()
}

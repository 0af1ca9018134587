package http

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"painel/internal/aggregate"
	"painel/internal/core"
	"painel/internal/log"
	"painel/internal/rows"
	"painel/internal/table"
)

// filtered returns the rows of t matching term and month, cached until the next load.
func (s *Server) filtered(t core.Table, term, month string) filteredTable {
	key := string(t) + "|" + core.Lower(term) + "|" + core.Lower(month)
	if ft, ok := s.tableCache.Get(key); ok {
		return ft
	}
	recs := s.store.TableRecords(t)
	all := rows.NormalizeAll(recs)
	idx := table.FilterIndexes(all, term, table.MonthPredicate(month))
	ft := filteredTable{
		Rows:    make([]core.Row, len(idx)),
		Records: make([]core.Record, len(idx)),
		Index:   idx,
	}
	for i, j := range idx {
		ft.Rows[i] = all[j]
		ft.Records[i] = recs[j]
	}
	if s.store.Loaded() {
		s.tableCache.Set(key, ft)
	}
	return ft
}

func (s *Server) buildTable(ctx context.Context, t core.Table, page int, term, month string) tableView {
	ft := s.filtered(t, term, month)
	total := table.TotalPages(len(ft.Rows), s.pageSize)

	view := tableView{
		Key:        string(t),
		Title:      t.Title(),
		Matches:    len(ft.Rows),
		TotalValue: core.FormatBRL(aggregate.Total(ft.Rows)),
		Window:     table.NewWindow(page, total, table.MaxPageButtons),
		Term:       term,
		Month:      month,
		Loaded:     s.store.Loaded(),
	}

	if shown := table.Page(ft.Rows, page, s.pageSize); len(shown) > 0 {
		start := page * s.pageSize
		for i, r := range shown {
			view.Rows = append(view.Rows, newRowView(t, ft.Index[start+i], r))
		}
	}

	s.logger.DebugContext(ctx, "Table rendered",
		log.NewFields().WithTable(string(t), page, term, month).ToSlice()...)
	return view
}

// handleTable renders one table page. Without a page parameter the last page
// shown for the table is kept, unless a filter was given.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	t, err := core.ParseTable(r.PathValue("key"))
	if err != nil {
		NotFoundError("Tabela desconhecida").Write(w)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	term := sanitizeInput(q.Get("q"))
	month := sanitizeInput(q.Get("mes"))

	page, ok := parsePage(q.Get("page"))
	switch {
	case ok:
		if page < 0 {
			page = 0
		}
		s.pager.Set(string(t), page)
	case term != "" || month != "":
		page = 0
		s.pager.Reset(string(t))
	default:
		page = s.pager.Get(string(t))
	}

	view := s.buildTable(r.Context(), t, page, term, month)
	s.renderPartial(w, r, "table", view, `<div class="placeholder">Erro ao renderizar a tabela</div>`)
}

// handleRowDetail renders the detail modal of one row. The index is the row's
// position in the unfiltered table.
func (s *Server) handleRowDetail(w http.ResponseWriter, r *http.Request) {
	t, err := core.ParseTable(r.PathValue("key"))
	if err != nil {
		NotFoundError("Tabela desconhecida").Write(w)
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		BadRequestError("Índice de linha inválido").Write(w)
		return
	}
	all := s.store.TableRows(t)
	if index >= len(all) {
		NotFoundError("Linha não encontrada").Write(w)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	s.renderPartial(w, r, "row_detail", newRowDetailView(t, index, all[index]),
		`<div class="placeholder">Erro ao renderizar o detalhe</div>`)
}

// renderPartial executes an HTMX partial into a buffer, so a failing template
// never leaves half a fragment on the page. On failure the fallback is sent.
func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any, fallback string) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Partial template execution failed",
			log.FieldError, err,
			log.FieldTemplate, name)
		NewHTMXResponse().BodyString(fallback).
			Header("Content-Type", "text/html; charset=utf-8").
			Write(w)
		return
	}
	NewHTMXResponse().
		Header("Content-Type", "text/html; charset=utf-8").
		Body(buf.Bytes()).
		Write(w)
}

package dataset

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painel/internal/core"
	"painel/internal/sheets/memory"
)

func str(k, v string) core.Field { return core.Field{Key: k, Value: core.StringValue(v)} }
func num(k string, v int64) core.Field {
	return core.Field{Key: k, Value: core.IntValue(v)}
}

func sampleSheets() []core.Sheet {
	return []core.Sheet{
		{Name: "PLANILHA ATRAS. JAN. A JUL 2025", Records: []core.Record{
			{Line: 2, Fields: core.Fields{str("col_0", "Energia elétrica"), num("col_1", 300), str("col_2", "05/2025")}},
			{Line: 3, Fields: core.Fields{str("col_0", "Aluguel sede"), num("col_1", 1200)}},
		}},
		{Name: "PLANILHA PAGTOS JULHO 2025", Records: []core.Record{
			{Line: 2, Fields: core.Fields{str("col_0", "ENTRADA SUS"), num("col_1", 5000)}},
		}},
		{Name: "PLANILHA ACORDO", Records: []core.Record{
			{Line: 2, Fields: core.Fields{str("col_0", "ACORDO FORNECEDOR X"), num("col_1", 1500), str("col_2", "10/2025")}},
		}},
		{Name: "PLANILHA PAGTOS ACORDOS FORN.", Records: []core.Record{
			{Line: 2, Fields: core.Fields{str("col_0", "Parcela acordo Y"), num("col_1", 250)}},
		}},
	}
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 7, 31, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestStoreBeforeLoad(t *testing.T) {
	s := New(memory.NewFromSheets(sampleSheets()...))
	assert.False(t, s.Loaded())
	assert.Nil(t, s.Overdue())
	assert.Equal(t, core.Metrics{}, s.Metrics())
	_, err := s.Snapshot()
	assert.ErrorIs(t, err, core.ErrNotLoaded)
	_, ok := s.LoadedAt()
	assert.False(t, ok)
}

func TestStoreLoadAndAccessors(t *testing.T) {
	s := New(memory.NewFromSheets(sampleSheets()...), WithClock(fixedClock()))
	res, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Sheets)
	assert.Equal(t, 5, res.Records)

	assert.True(t, s.Loaded())
	at, ok := s.LoadedAt()
	require.True(t, ok)
	assert.Equal(t, 2025, at.Year())

	assert.Len(t, s.Overdue(), 2)
	assert.Len(t, s.JulyPayments(), 1)
	// "PLANILHA ACORDO " resolves to the trimmed sheet name
	assert.Len(t, s.Agreements(), 1)
	assert.Len(t, s.SupplierAgreements(), 1)
	assert.Len(t, s.TableRecords(core.TableAgreements), 2)

	tableRows := s.TableRows(core.TableAgreements)
	require.Len(t, tableRows, 2)
	assert.Equal(t, "ACORDO FORNECEDOR X", tableRows[0].Description)

	m := s.Metrics()
	assert.Equal(t, 2, m.Overdue)
	assert.Equal(t, 1, m.JulyPayments)
	assert.Equal(t, 2, m.ActiveAgreements)
	assert.Equal(t, 5, m.NumericValues)
	assert.True(t, m.GrandTotal.Equal(decimal.NewFromInt(8250)))

	in := s.ChartInput()
	assert.True(t, in.OverdueTotal.Equal(decimal.NewFromInt(1500)))
	assert.True(t, in.JulyTotal.Equal(decimal.NewFromInt(5000)))
	assert.True(t, in.AgreementsTotal.Equal(decimal.NewFromInt(1750)))
	require.Len(t, in.Sheets, 4)
	assert.Equal(t, 2, in.Sheets[0].Lines)

	detailed := s.DetailedSummary()
	assert.Len(t, detailed.Totals, 4)
	assert.Contains(t, detailed.Sheets, "PLANILHA PAGTOS JULHO 2025")
}

func TestStoreReturnsCopies(t *testing.T) {
	s := New(memory.NewFromSheets(sampleSheets()...))
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	recs := s.Overdue()
	recs[0] = core.Record{Line: 99}
	assert.Equal(t, 2, s.Overdue()[0].Line)
}

func TestStoreFailedLoadKeepsPreviousState(t *testing.T) {
	src := memory.NewFromSheets(sampleSheets()...)
	s := New(src)

	var mu sync.Mutex
	var hookErrs []error
	s.OnLoad(func(_ context.Context, _ LoadResult, err error) {
		mu.Lock()
		hookErrs = append(hookErrs, err)
		mu.Unlock()
	})

	_, err := s.Load(context.Background())
	require.NoError(t, err)

	src.Fail(errors.New("connection refused"))
	_, err = s.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDataLoad)

	assert.True(t, s.Loaded())
	assert.Len(t, s.Overdue(), 2)

	require.Len(t, hookErrs, 2)
	assert.NoError(t, hookErrs[0])
	assert.ErrorIs(t, hookErrs[1], core.ErrDataLoad)
}

func TestStoreFirstLoadFailure(t *testing.T) {
	src := memory.NewFromSheets(sampleSheets()...)
	src.Fail(errors.New("malformed json"))
	s := New(src)

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, core.ErrDataLoad)
	assert.False(t, s.Loaded())
}

type slowSource struct {
	mu    sync.Mutex
	calls int
	gate  chan struct{}
	snap  core.Snapshot
}

func (s *slowSource) ReadSnapshot(ctx context.Context) (core.Snapshot, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	select {
	case <-s.gate:
		return s.snap, nil
	case <-ctx.Done():
		return core.Snapshot{}, ctx.Err()
	}
}

func TestStoreCoalescesConcurrentLoads(t *testing.T) {
	src := &slowSource{gate: make(chan struct{}), snap: core.Snapshot{Sheets: sampleSheets()}}
	s := New(src)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Load(context.Background())
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.LessOrEqual(t, src.calls, 5)
	assert.GreaterOrEqual(t, src.calls, 1)
	assert.True(t, s.Loaded())
}

func TestStoreLoadTimeout(t *testing.T) {
	src := &slowSource{gate: make(chan struct{})}
	s := New(src, WithLoadTimeout(20*time.Millisecond))

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDataLoad)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSheetLookup(t *testing.T) {
	sheets := []core.Sheet{
		{Name: "PLANILHA ATRASADOS JAN A JUL 2025", Records: []core.Record{{Line: 2}}},
		{Name: "PLANILHA PAGTOS JULHO 2025 ", Records: []core.Record{{Line: 2}, {Line: 3}}},
		{Name: "PLANILHA PAGTOS ACORDOS FORN.", Records: []core.Record{{Line: 2}}},
	}
	s := New(memory.NewFromSheets(sheets...))
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	recs, ok := s.Sheet("PLANILHA PAGTOS ACORDOS FORN.")
	require.True(t, ok)
	assert.Len(t, recs, 1)

	recs, ok = s.Sheet("PLANILHA PAGTOS JULHO 2025")
	require.True(t, ok)
	assert.Len(t, recs, 2)

	assert.Len(t, s.Overdue(), 1, "renamed overdue sheet found by fuzzy match")
	assert.Len(t, s.SupplierAgreements(), 1)
	assert.Nil(t, s.Agreements(), "supplier sheet is already claimed")

	_, ok = s.Sheet("RESUMO")
	assert.False(t, ok)
	assert.Equal(t, []string{"PLANILHA ATRASADOS JAN A JUL 2025", "PLANILHA PAGTOS JULHO 2025 ", "PLANILHA PAGTOS ACORDOS FORN."}, s.SheetNames())
}

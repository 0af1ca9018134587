package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painel/internal/core"
)

func TestStore(t *testing.T) {
	sheet := core.Sheet{Name: "A", Records: []core.Record{
		{Line: 2, Fields: core.Fields{{Key: "col_0", Value: core.IntValue(3)}}},
	}}
	s := NewFromSheets(sheet)

	snap, err := s.ReadSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Sheets, 1)
	assert.Equal(t, 1, snap.Summary.General.RowsWithData)

	snap.Sheets[0].Records[0].Line = 99
	again, _ := s.ReadSnapshot(context.Background())
	assert.Equal(t, 2, again.Sheets[0].Records[0].Line)

	boom := errors.New("boom")
	s.Fail(boom)
	_, err = s.ReadSnapshot(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, s.Reads())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.ReadSnapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painel/internal/core"
	"painel/internal/dataset"
	"painel/internal/sheets/memory"
)

type published struct {
	exchange, key string
	msg           amqp091.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	published  []published
	declareErr error
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestLoadMessageJSON(t *testing.T) {
	at := time.Date(2025, 7, 31, 12, 0, 0, 0, time.UTC)
	body, err := NewLoadFailedMessage(errors.New("boom"), at).ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"failed","rows":0,"error":"boom","timestamp":"2025-07-31T12:00:00Z"}`, string(body))

	msg, err := LoadMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, TypeLoadFailed, msg.Type)
	assert.Equal(t, "boom", msg.Error)

	body, err = NewLoadedMessage(12, at).ToJSON()
	require.NoError(t, err)
	msg, err = LoadMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, TypeLoaded, msg.Type)
	assert.Equal(t, 12, msg.Rows)
}

func TestClientPublish(t *testing.T) {
	ch := &fakeChannel{}
	c, err := newClient(ch, "painel", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"painel:direct"}, ch.declared)

	require.NoError(t, c.Publish(context.Background(), NewLoadedMessage(3, time.Now())))
	require.Len(t, ch.published, 1)
	p := ch.published[0]
	assert.Equal(t, "painel", p.exchange)
	assert.Equal(t, TypeLoaded, p.key)
	assert.Equal(t, "application/json", p.msg.ContentType)
	assert.Contains(t, string(p.msg.Body), `"rows":3`)

	require.NoError(t, c.Close())
	assert.True(t, ch.closed)
}

func TestClientSetupFailure(t *testing.T) {
	_, err := newClient(&fakeChannel{declareErr: errors.New("access refused")}, "painel", nil)
	assert.ErrorContains(t, err, "declare exchange")
}

func TestLoadHookPublishesOutcome(t *testing.T) {
	ch := &fakeChannel{}
	c, err := newClient(ch, "painel", nil)
	require.NoError(t, err)

	src := memory.NewFromSheets(core.Sheet{Name: "PLANILHA PAGTOS JULHO 2025", Records: []core.Record{{Line: 2}, {Line: 3}}})
	store := dataset.New(src)
	store.OnLoad(LoadHook(c, nil))

	_, err = store.Load(context.Background())
	require.NoError(t, err)
	src.Fail(errors.New("unreachable"))
	_, err = store.Load(context.Background())
	require.Error(t, err)

	require.Len(t, ch.published, 2)
	assert.Equal(t, TypeLoaded, ch.published[0].key)
	assert.Contains(t, string(ch.published[0].msg.Body), `"rows":2`)
	assert.Equal(t, TypeLoadFailed, ch.published[1].key)
	assert.Contains(t, string(ch.published[1].msg.Body), "unreachable")
}

func TestLoadHookSwallowsPublishErrors(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	c, err := newClient(ch, "painel", nil)
	require.NoError(t, err)

	hook := LoadHook(c, nil)
	assert.NotPanics(t, func() {
		hook(context.Background(), dataset.LoadResult{Records: 1}, nil)
	})
}

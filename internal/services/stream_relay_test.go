package services

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

type chunkReader struct {
	chunks []string
	err    error
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks = c.chunks[1:]
	return n, nil
}

func TestRelayStreamCopiesAndCloses(t *testing.T) {
	rec := httptest.NewRecorder()
	body := &trackedBody{Reader: &chunkReader{chunks: []string{"data: 1\n\n", "data: 2\n\n"}}}

	n, err := RelayStream(context.Background(), rec, body)
	require.NoError(t, err)
	assert.EqualValues(t, len("data: 1\n\ndata: 2\n\n"), n)
	assert.Equal(t, "data: 1\n\ndata: 2\n\n", rec.Body.String())
	assert.True(t, rec.Flushed)
	assert.True(t, body.closed)
}

func TestRelayStreamStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	body := &trackedBody{Reader: strings.NewReader("data: never\n\n")}
	rec := httptest.NewRecorder()

	_, err := RelayStream(ctx, rec, body)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Body.String())
	assert.True(t, body.closed)
}

func TestRelayStreamReportsUpstreamError(t *testing.T) {
	boom := errors.New("connection reset")
	body := &trackedBody{Reader: &chunkReader{chunks: []string{"data: 1\n\n"}, err: boom}}
	rec := httptest.NewRecorder()

	_, err := RelayStream(context.Background(), rec, body)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "data: 1\n\n", rec.Body.String())
}

func TestSetEventStreamHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SetEventStreamHeaders(rec)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
}

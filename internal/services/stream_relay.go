package services

import (
	"context"
	"errors"
	"io"
	"net/http"
)

const relayBufferSize = 4096

// RelayStream copies body to w unmodified, flushing after every read, until
// the upstream ends or ctx is cancelled. body is always closed.
func RelayStream(ctx context.Context, w http.ResponseWriter, body io.ReadCloser) (int64, error) {
	defer body.Close()
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, relayBufferSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, rerr := body.Read(buf)
		if n > 0 {
			m, werr := w.Write(buf[:n])
			written += int64(m)
			if werr != nil {
				return written, werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return written, nil
			}
			return written, rerr
		}
	}
}

// SetEventStreamHeaders prepares w for a server-sent event relay.
func SetEventStreamHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Type string `json:"type"`
}

func connect(t *testing.T, srv *httptest.Server, query string) *bufio.Reader {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+query, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)
	_, _ = r.ReadString('\n')
	return r
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.ClientCount() == n }, time.Second, 5*time.Millisecond)
}

func TestHubBroadcast(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	defer srv.Close()

	all := connect(t, srv, "")
	scoped := connect(t, srv, "?session=s1")
	waitForClients(t, h, 2)

	h.Broadcast("s2", testEvent{Type: "node_created"})
	h.Broadcast("s1", testEvent{Type: "link_toggled"})

	line, err := all.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, `data: {"type":"node_created"}`, strings.TrimSpace(line))

	// the scoped client never sees the s2 event
	line, err = scoped.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, `data: {"type":"link_toggled"}`, strings.TrimSpace(line))
}

func TestHubShutdownClosesStreams(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(h)
	defer srv.Close()

	r := connect(t, srv, "")
	waitForClients(t, h, 1)

	cancel()
	<-done
	assert.Equal(t, 0, h.ClientCount())

	_, err := r.ReadString('\n')
	assert.Error(t, err)
}

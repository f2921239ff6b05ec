package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err   error
	calls int
}

func (p *stubPinger) Ping(ctx context.Context) error {
	p.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("probe without deadline")
	}
	return p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServer_Run_ProbeFailureNeverListens(t *testing.T) {
	pinger := &stubPinger{err: errors.New("connection refused")}
	srv := New(Config{Addr: "127.0.0.1:0", ProbeTimeout: time.Second}, http.NotFoundHandler(), pinger, discardLogger())

	listened := false
	srv.listen = func(network, address string) (net.Listener, error) {
		listened = true
		return net.Listen(network, address)
	}

	err := srv.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProbeFailed)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, listened)
	assert.Equal(t, 1, pinger.calls)
}

func TestServer_Run_ServesUntilCancelled(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	})
	srv := New(Config{Addr: "127.0.0.1:0", ProbeTimeout: time.Second}, handler, &stubPinger{}, discardLogger())

	var (
		mu   sync.Mutex
		addr string
	)
	bound := make(chan struct{})
	srv.listen = func(network, address string) (net.Listener, error) {
		ln, err := net.Listen(network, address)
		if err == nil {
			mu.Lock()
			addr = ln.Addr().String()
			mu.Unlock()
			close(bound)
		}
		return ln, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	select {
	case <-bound:
	case err := <-done:
		t.Fatalf("Run returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server never bound")
	}

	mu.Lock()
	url := "http://" + addr + "/"
	mu.Unlock()

	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get(url)
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_Run_ListenError(t *testing.T) {
	srv := New(Config{Addr: "127.0.0.1:0"}, http.NotFoundHandler(), &stubPinger{}, discardLogger())
	srv.cfg.ProbeTimeout = time.Second
	srv.listen = func(network, address string) (net.Listener, error) {
		return nil, errors.New("address in use")
	}

	err := srv.Run(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProbeFailed)
	assert.Contains(t, err.Error(), "address in use")
}

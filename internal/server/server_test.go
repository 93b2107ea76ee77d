package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-blog/internal/config"
	"github.com/MKhiriev/go-blog/internal/handler"
	myGRPC "github.com/MKhiriev/go-blog/internal/handler/grpc"
	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okChecker struct{}

func (okChecker) Ping(context.Context) error { return nil }

// stoppedWorker records that it ran until its context was cancelled.
type stoppedWorker struct {
	stopped atomic.Bool
}

func (w *stoppedWorker) Run(ctx context.Context) {
	<-ctx.Done()
	w.stopped.Store(true)
}

func TestNewServer_NoServers(t *testing.T) {
	_, err := NewServer(&handler.Handlers{}, nil, config.Server{}, logger.Nop())

	assert.ErrorIs(t, err, errNoServersAreCreated)
}

func TestNewServer_GRPCListenFailure(t *testing.T) {
	handlers := &handler.Handlers{GRPC: myGRPC.NewHandler(okChecker{}, logger.Nop())}

	_, err := NewServer(handlers, nil, config.Server{GRPCAddress: "256.0.0.1:1"}, logger.Nop())

	assert.Error(t, err)
}

func TestRun_StopsServersAndWorkersOnCancel(t *testing.T) {
	handlers := &handler.Handlers{GRPC: myGRPC.NewHandler(okChecker{}, logger.Nop())}
	worker := &stoppedWorker{}

	srv, err := NewServer(handlers, workers.NewWorkers(worker), config.Server{GRPCAddress: "127.0.0.1:0"}, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.(*server).run(ctx) }()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, worker.stopped.Load())
}

func TestRun_WithoutServers(t *testing.T) {
	s := &server{logger: logger.Nop()}

	assert.Error(t, s.run(context.Background()))
}

func TestNewHTTPServer_Config(t *testing.T) {
	router := http.NewServeMux()
	s := newHTTPServer(router, config.Server{HTTPAddress: "127.0.0.1:8080"}, logger.Nop())

	assert.Equal(t, "127.0.0.1:8080", s.server.Addr)
	assert.Equal(t, router, s.server.Handler)
	assert.NotZero(t, s.server.ReadHeaderTimeout)
}

package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServeHTTP_PortInUse(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	srv := &http.Server{Addr: busy.Addr().String(), Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = serveHTTP(ctx, srv, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
	assert.NoError(t, ctx.Err(), "returned on the listener error, not the deadline")
}

func TestServeHTTP_StopsOnSignal(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, serveHTTP(ctx, srv, zap.NewNop()))
	assert.NoError(t, srv.Shutdown(context.Background()))
}

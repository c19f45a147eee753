package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeAddr(t *testing.T) {
	testEnv(t)
	viper.Set("serve.addr", "0.0.0.0")
	viper.Set("serve.port", 9000)

	assert.Equal(t, "0.0.0.0:9000", serveAddr())
}

func TestServeListener_ServesAndShutsDown(t *testing.T) {
	testEnv(t)
	ctx := context.Background()

	s, err := getStore(ctx)
	require.NoError(t, err)
	srv, router, err := newServer(s)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- serveListener(runCtx, ln, srv, router) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/api/v1/projects", ln.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, _, err = srv.Sessions().Open(ctx, "773096cf-9680-4a2a-9f4b-28e1db909392", nil)
	require.NoError(t, err)
	require.Equal(t, 1, srv.Sessions().Len())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Equal(t, 0, srv.Sessions().Len())
}

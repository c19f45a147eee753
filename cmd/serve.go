package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/board/internal/api"
	"github.com/joescharf/board/internal/store"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start an HTTP server with the board pages and the JSON API.

By default it listens on localhost:8080. Use --addr and --port to change it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals()...)
		defer stop()
		return serveRun(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "localhost", "address to listen on")
	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("serve.port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

func serveAddr() string {
	return net.JoinHostPort(viper.GetString("serve.addr"), strconv.Itoa(viper.GetInt("serve.port")))
}

func serveRun(ctx context.Context) error {
	s, err := getStore(ctx)
	if err != nil {
		return err
	}

	srv, router, err := newServer(s)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", serveAddr())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return serveListener(ctx, ln, srv, router)
}

func newServer(s store.Store) (*api.Server, http.Handler, error) {
	srv, err := api.NewServer(s, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init server: %w", err)
	}
	router, err := srv.Router()
	if err != nil {
		return nil, nil, fmt.Errorf("init router: %w", err)
	}
	return srv, router, nil
}

// serveListener serves on ln until ctx is done, then shuts down and
// cancels any open edit sessions.
func serveListener(ctx context.Context, ln net.Listener, srv *api.Server, handler http.Handler) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	ui.Success("Serving board at http://%s", ln.Addr())
	logger.Info("server started", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	open := srv.Sessions().Len()
	srv.Sessions().CancelAll()
	logger.Info("server stopped", "cancelled_sessions", open)
	return nil
}

package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/fxtools/calculator"
	"github.com/rustyeddy/fxtools/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the calculator API and quote relay",
	Long: `Serve the HTTP calculator API alongside the quote relay.

Routes:
  POST   /api              relay to the upstream quote API
  GET    /health           liveness
  GET    /health/upstream  quote API health check
  POST   /calc/position    position size calculator
  POST   /calc/pip         pip value calculator
  GET    /calc/pairs       pair catalog
  GET    /calc/stats       cache and rate limit stats
  DELETE /calc/cache       clear the quote cache
  GET    /calc/log         recent calculations (?limit=, ?since=&until=)
  GET    /calc/log/{id}    one calculation

Example:
  PORT=8080 fxcalc serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config, env PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}

	deps := a.deps()
	cfg := server.Config{
		Port:            port,
		UpstreamURL:     a.cfg.Server.UpstreamURL,
		RelayTimeout:    a.cfg.RequestTimeout(),
		Log:             a.log,
		Catalog:         a.catalog,
		Position:        calculator.NewPositionCalculator(deps, a.log),
		Pip:             calculator.NewPipCalculator(deps, a.log),
		Quotes:          a.client,
		AccountCurrency: a.cfg.Account.Currency,
	}
	if a.journal != nil {
		cfg.Journal = a.journal
	}
	if a.health != nil {
		cfg.Upstream = a.health
	}
	srv := server.New(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.log.Info().Msg("Server stopped")
	return nil
}

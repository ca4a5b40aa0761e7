package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/mig"
	"github.com/iov-one/mig/api"
	"github.com/iov-one/mig/app"
	"github.com/iov-one/mig/errors"
	"github.com/iov-one/mig/metrics"
	"github.com/iov-one/mig/store/iavl"
)

const (
	// DBName is the name of the state database in db_path.
	DBName = "state"

	shutdownTimeout = 5 * time.Second
)

// StartCmd runs the daemon until it receives an interrupt.
func StartCmd(logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the HTTP API over the persistent state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, cfg, logger)
		},
	}
}

// Run opens the state database, applies the genesis file on the first
// start and serves the API until ctx is cancelled. Delivered operations
// are committed every commit interval and once more on shutdown.
func Run(ctx context.Context, cfg *Config, logger log.Logger) error {
	db, err := iavl.NewCommitStore(cfg.DBPath, DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	a, err := app.NewApplication("migd", db, mig.SystemClock{}, logger)
	if err != nil {
		return err
	}
	if err := ensureGenesis(a, cfg, logger); err != nil {
		return err
	}

	metrics.Init()
	srv := api.NewServer(a, logger.With("module", "api")).HTTPServer(cfg.HTTPAddress)
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP API", "address", cfg.HTTPAddress)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	ticker := time.NewTicker(cfg.CommitInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := commit(a, logger); err != nil {
				_ = srv.Close()
				return err
			}
		case err, ok := <-serveErr:
			if ok {
				return errors.Wrapf(errors.ErrInvalidState, "http server: %s", err)
			}
			return nil
		case <-ctx.Done():
			logger.Info("Shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			err := srv.Shutdown(sctx)
			cancel()
			if err != nil {
				logger.Error("HTTP shutdown", "err", err)
			}
			return commit(a, logger)
		}
	}
}

// ensureGenesis loads the genesis file into an empty state. A state
// that is already initialized must belong to the configured chain.
func ensureGenesis(a *app.Application, cfg *Config, logger log.Logger) error {
	if id := a.ChainID(); id != "" {
		if cfg.ChainID != "" && cfg.ChainID != id {
			return errors.Wrapf(errors.ErrInvalidState, "state belongs to chain %q, not %q", id, cfg.ChainID)
		}
		logger.Info("Resuming chain", "chain_id", id)
		return nil
	}

	gen, err := app.LoadGenesis(cfg.Genesis)
	if err != nil {
		return err
	}
	if cfg.ChainID != "" && cfg.ChainID != gen.ChainID {
		return errors.Wrapf(errors.ErrInvalidInput, "genesis is for chain %q, not %q", gen.ChainID, cfg.ChainID)
	}
	if err := a.LoadGenesis(gen); err != nil {
		return err
	}
	logger.Info("Genesis loaded", "chain_id", gen.ChainID, "path", cfg.Genesis)
	return commit(a, logger)
}

func commit(a *app.Application, logger log.Logger) error {
	id, err := a.Commit()
	if err != nil {
		logger.Error("Commit failed", "err", err)
		return err
	}
	logger.Debug("Committed", "version", id.Version)
	return nil
}

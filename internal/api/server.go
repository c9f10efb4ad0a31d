package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/lp-farming/farming-core/internal/config"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	httpServer *http.Server
}

func New(cfg *config.ServerConfig, ledger Ledger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      NewRouter(ledger),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// NewRouter mounts the ledger api.
func NewRouter(ledger Ledger) http.Handler {
	h := &handler{ledger: ledger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(traceRequest)
	r.Use(recordDuration)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/farm", h.getFarm)

		r.Route("/pools", func(r chi.Router) {
			r.Get("/", h.listPools)
			r.Post("/", h.addPool)
			r.Post("/checkpoint", h.checkpointAll)

			r.Route("/{pid}", func(r chi.Router) {
				r.Get("/", h.getPool)
				r.Post("/alloc", h.setAllocPoint)
				r.Post("/checkpoint", h.checkpoint)
				r.Post("/deposit", h.deposit)
				r.Post("/withdraw", h.withdraw)
				r.Post("/emergency-withdraw", h.emergencyWithdraw)
				r.Get("/users/{addr}", h.getPosition)
				r.Get("/users/{addr}/pending", h.getPending)
			})
		})

		r.Get("/reservoir", h.getReservoir)
		r.Post("/reservoir/bind", h.bindReservoir)

		r.Route("/tokens/{symbol}", func(r chi.Router) {
			r.Get("/balances/{addr}", h.getBalance)
			r.Get("/allowances/{owner}/{spender}", h.getAllowance)
			r.Post("/mint", h.mint)
			r.Post("/transfer", h.transfer)
			r.Post("/approve", h.approve)
		})

		r.Get("/users/{addr}/events", h.listUserEvents)
	})

	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting api server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info().Msg("Shutting down api server")
	return s.httpServer.Shutdown(shutdownCtx)
}

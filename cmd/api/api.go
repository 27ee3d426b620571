package main

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devphaseX/voltvista-payments/internal/payment"
	"github.com/devphaseX/voltvista-payments/internal/settings"
	"github.com/devphaseX/voltvista-payments/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/form/v4"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"
)

type application struct {
	cfg          settings.Settings
	logger       *zap.SugaredLogger
	store        *store.Storage
	payments     *payment.Orchestrator
	formDecoder  *form.Decoder
	pages        *template.Template
	limiterStore limiter.Store
	rate         limiter.Rate
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Get("/healthz", app.healthcheckHandler)

	rateLimit := app.rateLimitMiddleware()

	r.Route("/payments", func(r chi.Router) {
		r.Get("/", app.paymentOptionsHandler)
		r.Get("/result", app.paymentResultHandler)

		r.Route("/card", func(r chi.Router) {
			r.With(rateLimit).Post("/checkout", app.createCardCheckoutHandler)
			r.Post("/webhook", app.cardWebhookHandler)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: []string{app.cfg.BaseURL},
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type"},
				MaxAge:         300,
			}))

			r.With(rateLimit).Post("/create", app.createWalletOrderHandler)
			r.Get("/return", app.walletReturnHandler)
		})
	})

	return r
}

func (app *application) serve() error {
	srv := &http.Server{
		Addr:         app.cfg.Addr,
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		s := <-quit

		app.logger.Infow("caught signal", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started",
		"addr", app.cfg.Addr,
		"env", app.cfg.Env,
		"card", app.payments.Enabled(store.CardProvider),
		"wallet", app.payments.Enabled(store.WalletProvider),
	)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.cfg.Addr, "env", app.cfg.Env)
	return nil
}

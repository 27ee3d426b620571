package main

import (
	"context"
	"net/http"

	"github.com/devphaseX/voltvista-payments/internal/db"
	"github.com/devphaseX/voltvista-payments/internal/mailer"
	"github.com/devphaseX/voltvista-payments/internal/payment"
	"github.com/devphaseX/voltvista-payments/internal/ratelimiter"
	"github.com/devphaseX/voltvista-payments/internal/settings"
	"github.com/devphaseX/voltvista-payments/internal/store"
	"github.com/devphaseX/voltvista-payments/internal/validator"
	"github.com/devphaseX/voltvista-payments/worker"
	"github.com/go-playground/form/v4"
	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"
)

var validate = validator.New()

func main() {
	cfg := settings.Load()

	logger := newLogger(cfg.Env)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatalw("invalid configuration", "error", err)
	}

	var storage *store.Storage
	if cfg.DB.DSN != "" {
		conn, err := db.New(cfg.DB.DSN, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.MaxIdleTime)
		if err != nil {
			logger.Fatalw("failed to connect to database", "error", err)
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(context.Background(), store.QueryTimeoutDuration)
		err = store.EnsureSchema(ctx, conn)
		cancel()
		if err != nil {
			logger.Fatalw("failed to prepare schema", "error", err)
		}

		storage = store.NewStorage(conn)
		logger.Info("database connection pool established")
	} else {
		storage = store.NewMemoryStorage()
		logger.Warn("DB_DSN is not set, payment records are kept in memory")
	}

	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}

	var card payment.CardGateway
	if cfg.Stripe.Enabled() {
		card = payment.NewStripePayment(cfg.AppName, cfg.Stripe, httpClient, logger)
	} else {
		logger.Warn("card provider disabled: STRIPE_SECRET_KEY or STRIPE_WEBHOOK_SECRET missing")
	}

	var wallet payment.WalletGateway
	if cfg.PayPal.Enabled() {
		gw, err := payment.NewPayPalPayment(cfg.AppName, cfg.PayPal, httpClient, logger)
		if err != nil {
			logger.Fatalw("failed to configure wallet provider", "error", err)
		}
		wallet = gw
	} else {
		logger.Warn("wallet provider disabled: PAYPAL_CLIENT_ID or PAYPAL_CLIENT_SECRET missing")
	}

	var (
		redisClient redis.UniversalClient
		opts        []payment.Option
	)

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		redisClient = client

		if cfg.SMTP.Enabled() {
			redisOpt := asynq.RedisClientOpt{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			}
			workerLogger := worker.NewLogger(logger)

			distributor := worker.NewTaskDistributor(redisOpt, workerLogger)
			defer distributor.Close()

			mailClient := mailer.NewSMTPClient(cfg.SMTP.From, cfg.SMTP.Host, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Port, logger)

			processor := worker.NewRedisTaskProcessor(redisOpt, storage, mailClient, cfg.AppName, cfg.SMTP.OwnerAddress, workerLogger)
			if err := processor.Start(); err != nil {
				logger.Fatalw("failed to start task processor", "error", err)
			}
			defer processor.Close()

			opts = append(opts, payment.WithNotifier(distributor))
		}
	}

	if len(opts) == 0 {
		logger.Info("payment notifications disabled: REDIS_ADDR or SMTP settings missing")
	}

	limiterStore, err := ratelimiter.NewStore(redisClient)
	if err != nil {
		logger.Fatalw("failed to create rate limit store", "error", err)
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Fatalw("invalid RATE_LIMIT", "value", cfg.RateLimit, "error", err)
	}

	app := &application{
		cfg:          cfg,
		logger:       logger,
		store:        storage,
		payments:     payment.NewOrchestrator(cfg, card, wallet, storage.Payments, logger, opts...),
		formDecoder:  form.NewDecoder(),
		pages:        mustParsePages(),
		limiterStore: limiterStore,
		rate:         rate,
	}

	if err := app.serve(); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}

func newLogger(env string) *zap.SugaredLogger {
	if env == "production" {
		return zap.Must(zap.NewProduction()).Sugar()
	}

	return zap.Must(zap.NewDevelopment()).Sugar()
}

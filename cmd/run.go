package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"clanwallet/cache"
	"clanwallet/config"
	"clanwallet/database"
	"clanwallet/events"
	"clanwallet/handlers"
	"clanwallet/infrastructure"
	"clanwallet/jobs"
	"clanwallet/observability"
	"clanwallet/paystack"
	"clanwallet/repository"
	"clanwallet/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting clan wallet service...")

	cfg := config.Get()

	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.WithField("addr", cfg.RedisAddr).Info("Redis connection established")

	eventBus := events.NewBus()
	metrics.SubscribeBalanceChanges(eventBus)
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Domain events and push requests go to NATS when enabled and are dropped otherwise
	mapper := infrastructure.NewEventSubjectMapper()
	var publisher infrastructure.MessagePublisher = infrastructure.NewNoopPublisher()
	if cfg.NATSEnabled {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return err
		}
		defer natsClient.Close()

		if err := infrastructure.EnsureStreams(natsClient, mapper); err != nil {
			return err
		}
		publisher = natsClient
		log.WithField("servers", cfg.NATSServers).Info("NATS event publishing enabled")
	} else {
		log.Info("NATS disabled, domain events stay in-process")
	}
	natsPublisher := infrastructure.NewNATSEventPublisher(publisher, mapper, metrics)
	natsPublisher.Attach(eventBus)

	if cfg.DiscordWebhookID != "" {
		announcer, err := infrastructure.NewDiscordAnnouncer(cfg.DiscordWebhookID, cfg.DiscordWebhookToken)
		if err != nil {
			return err
		}
		announcer.Attach(eventBus)
		log.Info("Discord giveaway announcements enabled")
	}

	gateway := paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey, cfg.PaystackTimeout).WithObserver(metrics)

	walletService := service.NewWalletService(uowFactory, gateway)
	withdrawalService := service.NewWithdrawalService(uowFactory, gateway, cfg.ReconcileGrace)
	notificationService := service.NewNotificationService(uowFactory, natsPublisher)
	giveawayService := service.NewGiveawayService(uowFactory, cache.NewCooldownStore(redisClient), notificationService, cfg.RedeemCooldown)
	taxService := service.NewTaxService(uowFactory)
	earningsService := service.NewEarningsService(uowFactory, gateway)

	loc, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.RouterConfig{
		JWTSecret:         cfg.JWTSecret,
		ServiceRoleKey:    cfg.ServiceRoleKey,
		RateLimiter:       cache.NewRateLimiter(redisClient),
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		Metrics:           metrics,
	},
		handlers.NewWalletHandler(walletService, withdrawalService),
		handlers.NewWebhookHandler(walletService, cfg.PaystackSecretKey),
		handlers.NewGiveawayHandler(giveawayService),
		handlers.NewAdminHandler(taxService, earningsService, notificationService, loc),
	)

	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.PaystackTimeout + 15*time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(log.Fields{
			"port":        cfg.Port,
			"environment": cfg.Environment,
		}).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	if cfg.SchedulerEnabled {
		scheduler, err := jobs.NewScheduler(cfg, taxService, giveawayService, withdrawalService, metrics)
		if err != nil {
			return err
		}
		if err := scheduler.Start(gctx); err != nil {
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			scheduler.Stop()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	})

	err = g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if mErr := observability.ShutdownGlobalMetrics(shutdownCtx); mErr != nil {
		log.WithError(mErr).Warn("Failed to flush metrics")
	}

	log.Info("Shutdown completed")
	return err
}

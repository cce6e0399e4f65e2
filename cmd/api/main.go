package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/catalog"
	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/email"
	accountHandler "github.com/jwalitptl/clinic-api/internal/handler/account"
	appointmentHandler "github.com/jwalitptl/clinic-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/clinic-api/internal/handler/auth"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	medicineHandler "github.com/jwalitptl/clinic-api/internal/handler/medicine"
	patientHandler "github.com/jwalitptl/clinic-api/internal/handler/patient"
	prescriptionHandler "github.com/jwalitptl/clinic-api/internal/handler/prescription"
	queueHandler "github.com/jwalitptl/clinic-api/internal/handler/queue"
	"github.com/jwalitptl/clinic-api/internal/identity"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/repository/document"
	memoryRepo "github.com/jwalitptl/clinic-api/internal/repository/memory"
	postgresRepo "github.com/jwalitptl/clinic-api/internal/repository/postgres"
	"github.com/jwalitptl/clinic-api/internal/router"
	appointmentService "github.com/jwalitptl/clinic-api/internal/service/appointment"
	"github.com/jwalitptl/clinic-api/internal/service/prescription"
	queueService "github.com/jwalitptl/clinic-api/internal/service/queue"
	"github.com/jwalitptl/clinic-api/internal/session"
	"github.com/jwalitptl/clinic-api/internal/store"
	memoryStore "github.com/jwalitptl/clinic-api/internal/store/memory"
	postgresStore "github.com/jwalitptl/clinic-api/internal/store/postgres"
	"github.com/jwalitptl/clinic-api/internal/worker"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	memoryBroker "github.com/jwalitptl/clinic-api/pkg/messaging/memory"
	redisBroker "github.com/jwalitptl/clinic-api/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

const metricsNamespace = "clinic"

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-api",
		Short: "Clinic front desk and prescription API",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return cfg, nil
}

// backend is the persistence side shared by every command
type backend struct {
	broker   messaging.Broker
	gateway  store.Gateway
	db       *sqlx.DB
	accounts repository.AccountRepository
	pingers  map[string]health.Pinger
}

func openBackend(cfg *config.Config, m *metrics.Metrics) (*backend, error) {
	b := &backend{pingers: map[string]health.Pinger{}}

	switch cfg.Broker.Driver {
	case "redis":
		broker, err := redisBroker.NewRedisBroker(redisBroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, log.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		b.broker = broker
		if p, ok := broker.(health.Pinger); ok {
			b.pingers["redis"] = p
		}
	case "memory", "":
		b.broker = memoryBroker.NewBroker()
	default:
		return nil, fmt.Errorf("unknown broker driver %q", cfg.Broker.Driver)
	}

	switch cfg.Store.Driver {
	case "postgres":
		db, err := postgresStore.NewDB(cfg.Database)
		if err != nil {
			b.broker.Close()
			return nil, err
		}
		b.db = db
		b.gateway = postgresStore.NewGateway(db, b.broker, m)
		b.accounts = postgresRepo.NewAccountRepository(db)
		b.pingers["postgres"] = db
	case "memory", "":
		b.gateway = memoryStore.NewGateway(b.broker)
		b.accounts = memoryRepo.NewAccountRepository()
	default:
		b.broker.Close()
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	return b, nil
}

func (b *backend) Close() {
	if err := b.broker.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close broker")
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(metricsNamespace, registry)

	b, err := openBackend(cfg, m)
	if err != nil {
		return err
	}
	defer b.Close()

	// Repositories
	staffRepo := document.NewStaffRepository(b.gateway)
	appointmentRepo := document.NewAppointmentRepository(b.gateway)
	medicineRepo := document.NewMedicineRepository(b.gateway)
	prescriptionRepo := document.NewPrescriptionRepository(b.gateway)

	// An in-memory store starts empty, so give doctors something to search
	if cfg.Store.Driver != "postgres" {
		if _, err := catalog.Seed(ctx, medicineRepo); err != nil {
			return err
		}
	}

	var mailer email.Service
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPService(cfg.SMTP)
	} else {
		mailer = email.NewLogService()
	}

	// Services
	accounts := identity.NewService(b.accounts, security.NewBcryptHasher(cfg.Auth.BcryptCost), mailer, identity.Config{
		Secret:          cfg.Auth.JWTSecret,
		PublicURL:       cfg.Server.PublicURL,
		VerificationTTL: cfg.Auth.VerificationTTL,
		ResetTTL:        cfg.Auth.ResetTTL,
	})
	sessions := session.NewStore(accounts, staffRepo, m, session.StoreConfig{
		Secret:      cfg.Auth.JWTSecret,
		SessionTTL:  cfg.Auth.SessionTTL,
		TokenTTL:    cfg.Auth.TokenTTL,
		CallbackURL: cfg.Server.PublicURL + "/login",
	})
	drafts := prescription.NewRegistry(medicineRepo, prescriptionRepo, m, cfg.Drafts.TTL)
	defer drafts.Close()

	appointmentSvc := appointmentService.NewService(appointmentRepo)
	queueSvc := queueService.NewService(appointmentRepo)
	prescriptionSvc := prescription.NewService(drafts, appointmentRepo, prescriptionRepo)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	changes := worker.NewChangeLogger(b.broker, m,
		store.CollectionStaff,
		store.CollectionAppointments,
		store.CollectionMedicines,
		store.CollectionPrescriptions,
	)
	if err := changes.Start(workerCtx); err != nil {
		return err
	}

	// Handlers
	if err := middleware.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}
	authMiddleware := middleware.NewAuthMiddleware(sessions)

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins

	r := router.NewRouter(authMiddleware, router.Handlers{
		Health:       health.NewHandler(b.pingers, registry),
		Auth:         authHandler.NewHandler(sessions, accounts, staffRepo, authMiddleware),
		Queue:        queueHandler.NewHandler(queueSvc),
		Account:      accountHandler.NewHandler(staffRepo),
		Appointment:  appointmentHandler.NewHandler(appointmentSvc, queueSvc),
		Patient:      patientHandler.NewHandler(prescriptionSvc),
		Medicine:     medicineHandler.NewHandler(medicineRepo),
		Prescription: prescriptionHandler.NewHandler(prescriptionSvc),
	}, router.RouterConfig{
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		CORSConfig:       corsConfig,
		MetricsPrefix:    metricsNamespace + "_http",
		Registerer:       registry,
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("store", cfg.Store.Driver).
			Str("broker", cfg.Broker.Driver).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Store.Driver != "postgres" {
				return fmt.Errorf("migrate needs store.driver=postgres, got %q", cfg.Store.Driver)
			}

			db, err := postgresStore.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgresStore.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Info().Msg("schema applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the starter medicine catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Store.Driver != "postgres" {
				return fmt.Errorf("seed needs a persistent store, got %q", cfg.Store.Driver)
			}

			b, err := openBackend(cfg, metrics.New(metricsNamespace, nil))
			if err != nil {
				return err
			}
			defer b.Close()

			_, err = catalog.Seed(cmd.Context(), document.NewMedicineRepository(b.gateway))
			return err
		},
	}
}

// @title           Chatbot Platform API
// @version         1.0
// @description     Public chatbot invocation, knowledge documents and email verification.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/containers"
	"github.com/akolanti/ChatbotAPI/internal/customHttpClient"
	"github.com/akolanti/ChatbotAPI/internal/data/redisStore"
	"github.com/akolanti/ChatbotAPI/internal/data/store"
	"github.com/akolanti/ChatbotAPI/internal/domain/documentModel"
	"github.com/akolanti/ChatbotAPI/internal/domain/jobModel"
	"github.com/akolanti/ChatbotAPI/internal/domain/keyModel"
	"github.com/akolanti/ChatbotAPI/internal/domain/otpModel"
	"github.com/akolanti/ChatbotAPI/internal/email"
	"github.com/akolanti/ChatbotAPI/internal/handlers"
	"github.com/akolanti/ChatbotAPI/internal/invocation"
	"github.com/akolanti/ChatbotAPI/internal/job"
	"github.com/akolanti/ChatbotAPI/internal/liveness"
	"github.com/akolanti/ChatbotAPI/internal/mcpServer"
	"github.com/akolanti/ChatbotAPI/internal/middleware"
	"github.com/akolanti/ChatbotAPI/internal/otp"
	"github.com/akolanti/ChatbotAPI/internal/server"
	"github.com/akolanti/ChatbotAPI/internal/worker"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
	"github.com/joho/godotenv"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	logger_i.Init(cfg.IsProd)
	var logger = logger_i.NewLogger("main")
	startTime := time.Now()

	//config
	flag.StringVar(&listenAddr, "listen-addr", cfg.ListenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	registry := redisStore.NewRegistry(redisStore.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	closers := []func(){registry.Close, customHttpClient.CloseIdleConnections}

	//documents
	documentStore, err := openDocumentStore(cfg)
	if err != nil {
		logger.Error("Could not open document store", "backend", cfg.DocumentBackend, "error", err)
		return
	}
	closers = append(closers, func() {
		if err := documentStore.Close(); err != nil {
			logger.Error("Error closing document store", "error", err)
		}
	})

	//api keys
	keyStore, closeKeys := openKeyStore(serviceContext, cfg, registry, logger)
	if closeKeys != nil {
		closers = append(closers, closeKeys)
	}

	//init buffered job channel
	jobChannel := make(chan jobModel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		DocumentStore:     documentStore,
	}
	if redisJobs := store.GetRedisJobStore(serviceContext, registry); redisJobs != nil {
		serviceConfig.JobStore = redisJobs
	} else {
		logger.Error("Redis job store is offline, using in-memory store")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
	}
	logger.Info("Starting job service")
	jobService := job.InitJobService(serviceConfig)

	//init worker pool
	pool := worker.NewPool(worker.PoolConfig{
		JobService:        jobService,
		StopWorkerChannel: stopWorkerChannel,
		WaitGroup:         &workerWaitGroup,
	})
	pool.Start()

	invocationService := invocation.NewService(invocation.ServiceConfig{
		Manager: containers.NewHTTPManager(containers.ManagerConfig{
			BaseURL: cfg.ContainerManagerURL,
			Timeout: cfg.ContainerTimeout,
		}),
		KeyStore:         keyStore,
		StrictUsageTouch: cfg.UsageTouchStrict,
	})

	otpService := otp.NewService(otp.ServiceConfig{
		Store: openOTPStore(serviceContext, registry, logger),
		Sender: email.NewResendClient(email.ResendConfig{
			URL:    cfg.EmailProviderURL,
			APIKey: cfg.EmailAPIKey,
			From:   cfg.EmailFrom,
		}),
	})

	h := handlers.NewHandlers(handlers.HandlerConfig{
		Documents:  documentStore,
		Invocation: invocationService,
		Jobs:       jobService,
		OTP:        otpService,
		UploadDir:  cfg.UploadDir,
		StartTime:  startTime,
	})
	mw := middleware.New(middleware.Config{
		KeyStore:     keyStore,
		AdminToken:   cfg.AdminToken,
		NoAuthBypass: cfg.NoAuthBypass,
	})
	router := server.NewRouter(server.RouteDeps{
		Handlers:   h,
		Middleware: mw,
		MCP:        mcpServer.NewServer(documentStore).Handler(),
	})

	pingers := startPingers(serviceContext, cfg, logger)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	srv := server.New(listenAddr, router)
	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		Pingers:          pingers,
		Closers:          closers,
		CloseServices:    closeExternalServices,
	}
	go srv.ShutDownHandler(shutdownParams)

	listenFailed := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			listenFailed <- err
			select {
			case gracefulShutdown <- syscall.SIGTERM:
			default:
			}
		}
	}()

	<-stopExecution
	select {
	case err := <-listenFailed:
		logger.Error("Server stopped after listener failure", "error", err)
		os.Exit(1)
	default:
	}
	logger.Info("Server stopped")
}

func openDocumentStore(cfg config.Config) (documentModel.DocumentStore, error) {
	switch cfg.DocumentBackend {
	case config.DocumentBackendSQLite:
		return store.NewSqliteDocumentStore(cfg.SQLitePath)
	default:
		return store.NewJsonDocumentStore(cfg.DocumentsPath)
	}
}

// openKeyStore falls back to an in-memory store seeded from SEED_API_KEYS when the
// configured backend is unreachable.
func openKeyStore(ctx context.Context, cfg config.Config, registry *redisStore.Registry, logger *logger_i.Logger) (keyModel.KeyStore, func()) {
	seeds := cfg.SeededKeys()
	switch cfg.KeyBackend {
	case config.KeyBackendPostgres:
		pg, err := store.NewPostgresKeyStore(ctx, cfg.PostgresURL)
		if err == nil {
			logger.Info("Using postgres key store")
			return pg, pg.Close
		}
		logger.Error("Postgres key store is offline, using in-memory store", "error", err)

	case config.KeyBackendRedis:
		redisKeys := store.GetRedisKeyStore(ctx, registry)
		if redisKeys != nil {
			for apiKey, containerID := range seeds {
				if _, err := redisKeys.ResolveKey(ctx, apiKey); err == nil {
					continue
				}
				record := keyModel.APIKeyRecord{ID: store.HashAPIKey(apiKey)[:16], ContainerID: containerID, Active: true}
				if err := redisKeys.PutKey(ctx, apiKey, record); err != nil {
					logger.Error("Could not seed api key", "containerId", containerID, "error", err)
				}
			}
			return redisKeys, nil
		}
		logger.Error("Redis key store is offline, using in-memory store")
	}
	return store.InitInMemoryKeyStore(seeds), nil
}

func openOTPStore(ctx context.Context, registry *redisStore.Registry, logger *logger_i.Logger) otpModel.OTPStore {
	if redisOTP := store.GetRedisOTPStore(ctx, registry); redisOTP != nil {
		return redisOTP
	}
	logger.Error("Redis otp store is offline, using in-memory store")
	return store.InitInMemoryOTPStore()
}

func startPingers(ctx context.Context, cfg config.Config, logger *logger_i.Logger) []*liveness.Pinger {
	if cfg.KeepAliveURL == "" {
		if cfg.EnableKeepAlive || cfg.EnablePingPoller {
			logger.Warn("KEEPALIVE_URL is empty, pollers not started")
		}
		return nil
	}
	var pingers []*liveness.Pinger
	if cfg.EnableKeepAlive {
		pingers = append(pingers, liveness.NewPinger(liveness.KeepAliveConfig(cfg.KeepAliveURL)))
	}
	if cfg.EnablePingPoller {
		pingers = append(pingers, liveness.NewPinger(liveness.PingConfig(cfg.KeepAliveURL)))
	}
	for _, p := range pingers {
		p.Start(ctx)
	}
	return pingers
}

package handler

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/voicedesk/receptionist-service/internal/config"
	"github.com/voicedesk/receptionist-service/internal/core/task"
	"github.com/voicedesk/receptionist-service/internal/repository"
	"github.com/voicedesk/receptionist-service/internal/services/dispatch"
	"github.com/voicedesk/receptionist-service/internal/services/notify"
	"github.com/voicedesk/receptionist-service/internal/services/summary"
	"github.com/voicedesk/receptionist-service/pkg/logger"
	"github.com/voicedesk/receptionist-service/pkg/redis"
	"github.com/voicedesk/receptionist-service/pkg/twilio"
	"github.com/voicedesk/receptionist-service/pkg/vapi"
)

// HandlerManager manages all handlers and their initialization
type HandlerManager struct {
	config      *config.ServiceConfig
	repoManager repository.RepositoryManager
	redisSvc    redis.ServiceInterface
	taskBus     task.Bus
	dispatcher  *dispatch.Dispatcher
	summarySvc  *summary.Service
	vapiClient  *vapi.Client
}

// NewHandlerManager creates and initializes all handlers and services
func NewHandlerManager(cfg *config.ServiceConfig) (*HandlerManager, error) {
	repoManager, err := repository.NewRepositoryManager()
	if err != nil {
		logger.Base().Error("failed to connect to database", zap.Error(err))
		return nil, err
	}

	// Redis is optional. Without it rate limits fall back to in-process
	// counters and summarization runs in a local goroutine.
	redisHost := os.Getenv("REDIS_HOST")
	redisPort := os.Getenv("REDIS_PORT")
	if redisPort == "" {
		redisPort = "6379"
	}
	var redisSvc redis.ServiceInterface
	var taskBus task.Bus
	if redisHost != "" {
		svc, err := redis.NewService(&redis.RedisConfig{
			Host:     redisHost,
			Port:     redisPort,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		})
		if err != nil {
			logger.Base().Warn("failed to initialize redis, running without task bus", zap.Error(err))
		} else {
			redisSvc = svc
			taskBus = task.NewRedisBus(svc)
		}
	}

	messaging := twilio.NewMessagingService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	notifier := notify.NewService(messaging, notify.EmailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, cfg.AppURL)

	llm := summary.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey)
	summarySvc := summary.NewService(repoManager, llm, notifier)

	dispatcher := dispatch.NewDispatcher(repoManager, taskBus, summarySvc)

	return &HandlerManager{
		config:      cfg,
		repoManager: repoManager,
		redisSvc:    redisSvc,
		taskBus:     taskBus,
		dispatcher:  dispatcher,
		summarySvc:  summarySvc,
		vapiClient:  vapi.NewClient(cfg.VapiAPIURL, cfg.VapiAPIKey),
	}, nil
}

// StartTaskProcessor subscribes the summary service to the task bus, if
// one is configured.
func (hm *HandlerManager) StartTaskProcessor(ctx context.Context) error {
	if hm.taskBus == nil {
		logger.Base().Info("no task bus configured, summaries run inline")
		return nil
	}
	return hm.summarySvc.StartProcessor(ctx, hm.taskBus)
}

// SetupAllRoutes sets up all routes with middleware
func (hm *HandlerManager) SetupAllRoutes(router *mux.Router) {
	router.Use(CORSMiddleware(hm.config.AppURL))
	router.Use(LoggingMiddleware)

	router.HandleFunc("/health", hm.HandleHealth).Methods("GET")

	hm.SetupWebhookRoutes(router)
	hm.SetupAPIRoutes(router)

	logger.Base().Info("all application routes registered")
}

// SetupWebhookRoutes sets up the voice platform webhook routes
func (hm *HandlerManager) SetupWebhookRoutes(router *mux.Router) {
	window := time.Duration(hm.config.RateLimitWindowSecs) * time.Second
	limiter := NewRateLimiter("webhook", hm.config.WebhookRateLimit, window, hm.redisSvc)

	webhookRouter := router.PathPrefix("/webhooks").Subrouter()
	webhookRouter.Use(limiter.Middleware)

	webhookHandler := NewWebhookHandler(hm.dispatcher)
	webhookHandler.SetupWebhookRoutes(webhookRouter)

	logger.Base().Info("webhook routes registered")
}

// SetupAPIRoutes sets up all authenticated CRUD API routes and middleware
func (hm *HandlerManager) SetupAPIRoutes(router *mux.Router) {
	window := time.Duration(hm.config.RateLimitWindowSecs) * time.Second
	limiter := NewRateLimiter("api", hm.config.APIRateLimit, window, hm.redisSvc)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(limiter.Middleware)
	apiRouter.Use(AuthMiddleware(hm.config.ClerkSecretKey))

	businessHandler := NewBusinessHandler(hm.repoManager.Users(), hm.repoManager.Businesses(), hm.repoManager.Calls())
	businessHandler.SetupBusinessRoutes(apiRouter)

	callHandler := NewCallHandler(hm.repoManager.Businesses(), hm.repoManager.Calls())
	callHandler.SetupCallRoutes(apiRouter)

	vapiProxyHandler := NewVapiProxyHandler(hm.vapiClient, hm.repoManager.Businesses())
	vapiProxyHandler.SetupVapiProxyRoutes(apiRouter)

	logger.Base().Info("authenticated api routes registered")
}

// HandleHealth reports liveness plus database reachability.
func (hm *HandlerManager) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	if err := hm.repoManager.Ping(r.Context()); err != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		code = http.StatusServiceUnavailable
	}
	sendJSONResponse(w, code, status)
}

// GetRepoManager returns the repository manager
func (hm *HandlerManager) GetRepoManager() repository.RepositoryManager {
	return hm.repoManager
}

// Close releases the database connection.
func (hm *HandlerManager) Close() error {
	return hm.repoManager.Close()
}

package server

import (
	"fmt"
	"os"
	"sync"
	"time"

	"news-notifier/internal/config"
	"news-notifier/internal/vault"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// NewServerBuilder creates a new server builder
func NewServerBuilder() *ServerBuilder {
	return &ServerBuilder{
		logger: log.With().Str("component", "server-builder").Logger(),
	}
}

// Build creates and configures a new server instance
func (sb *ServerBuilder) Build() (*Server, error) {
	if err := sb.setupLogging(); err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	// Initialize Vault client
	vaultClient, err := sb.initializeVault()
	if err != nil {
		sb.logger.Warn().Err(err).Msg("Failed to initialize Vault client, falling back to environment variables")
	}

	// Load configuration
	cfg, err := config.NewManager().Load(vaultClient)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	server, err := sb.buildServer(cfg, vaultClient)
	if err != nil {
		return nil, fmt.Errorf("failed to build server: %w", err)
	}

	return server, nil
}

// setupLogging configures the logging system
func (sb *ServerBuilder) setupLogging() error {
	zerolog.TimeFieldFormat = time.RFC3339

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	})

	return nil
}

// initializeVault creates and initializes the Vault client
func (sb *ServerBuilder) initializeVault() (*vault.VaultClient, error) {
	return vault.NewClient()
}

// buildServer constructs the server with all components
func (sb *ServerBuilder) buildServer(cfg *config.Config, vaultClient *vault.VaultClient) (*Server, error) {
	router := sb.initializeRouter()

	server := &Server{
		Router:      router,
		Logger:      log.With().Str("component", "server").Logger(),
		Runs:        make(map[string]*Run),
		RunQueue:    make(chan *Run, 100),
		RunMutex:    sync.RWMutex{},
		RateLimiter: rate.NewLimiter(rate.Every(time.Second), cfg.RateLimit),
		VaultClient: vaultClient,
		Config:      cfg,
	}

	server.Processor = NewRunProcessor(server)
	server.registerRoutes()

	// Background processing
	for i := 0; i < cfg.WorkerCount; i++ {
		go server.Processor.ProcessRuns()
	}
	server.startRetentionSweep()

	return server, nil
}

// initializeRouter creates and configures the Gin router
func (sb *ServerBuilder) initializeRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	return router
}

// New builds a server with the default builder
func New() (*Server, error) {
	builder := NewServerBuilder()
	return builder.Build()
}

// Server methods
func (s *Server) registerRoutes() {
	r := s.Router

	r.Use(s.requestLogger())
	r.Use(gin.Recovery())

	r.GET("/api/health", s.handleHealth)
	r.POST("/api/runs", s.handleDispatch)
	r.GET("/api/runs", s.handleRuns)
	r.GET("/api/runs/:run_id", s.handleRunStatus)
	r.POST("/api/runs/:run_id/retry", s.handleRunRetry)
}

// requestLogger middleware logs all HTTP requests with structured data
func (s *Server) requestLogger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		s.Logger.Info().
			Str("method", param.Method).
			Str("path", param.Path).
			Str("remote_addr", param.ClientIP).
			Str("user_agent", param.Request.UserAgent()).
			Int("status", param.StatusCode).
			Int("body_size", param.BodySize).
			Dur("latency", param.Latency).
			Str("error", param.ErrorMessage).
			Msg("HTTP request")

		// Return empty string since we're handling logging ourselves
		return ""
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime)
		s.Logger.Debug().
			Str("endpoint", "/api/health").
			Str("method", c.Request.Method).
			Str("remote_addr", c.ClientIP()).
			Dur("duration", duration).
			Msg("Health check completed")
	}()

	c.JSON(200, gin.H{"status": "healthy", "version": "1.0.0"})
}

// handleDispatch queues a run on manual request. Dispatch takes no
// parameters; each call creates an independent run.
func (s *Server) handleDispatch(c *gin.Context) {
	startTime := time.Now()

	reqLogger := s.Logger.With().
		Str("endpoint", "/api/runs").
		Str("method", c.Request.Method).
		Str("remote_addr", c.ClientIP()).
		Logger()

	defer func() {
		duration := time.Since(startTime)
		reqLogger.Info().
			Dur("duration", duration).
			Msg("Dispatch request completed")
	}()

	reqLogger.Info().Msg("Received manual dispatch request")

	if !s.RateLimiter.Allow() {
		reqLogger.Warn().Msg("Rate limit exceeded")
		c.JSON(429, gin.H{"error": "Too many requests"})
		return
	}

	run := s.DispatchRun(TriggerManual, "")

	reqLogger.Info().
		Str("run_id", run.ID).
		Msg("Run queued successfully")

	c.JSON(202, gin.H{"status": "queued", "run_id": run.ID})
}

// DispatchRun creates a run and adds it to the processing queue. The
// scheduler calls this on every cron fire.
func (s *Server) DispatchRun(trigger, retryOf string) *Run {
	run := s.createRun(trigger, retryOf)
	s.queueRun(run)
	return run
}

func (s *Server) createRun(trigger, retryOf string) *Run {
	runID := uuid.NewString()
	s.Logger.Debug().
		Str("run_id", runID).
		Str("trigger", trigger).
		Msg("Creating new run")

	return &Run{
		ID:        runID,
		Status:    StatusQueued,
		Trigger:   trigger,
		StartTime: time.Now(),
		RetryOf:   retryOf,
	}
}

func (s *Server) queueRun(run *Run) {
	s.RunMutex.Lock()
	s.Runs[run.ID] = run
	runCount := len(s.Runs)
	s.RunMutex.Unlock()

	s.RunQueue <- run

	s.Logger.Debug().
		Str("run_id", run.ID).
		Int("total_runs", runCount).
		Int("queue_size", len(s.RunQueue)).
		Msg("Run added to queue")
}

func (s *Server) handleRuns(c *gin.Context) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime)
		s.Logger.Debug().
			Str("endpoint", "/api/runs").
			Str("method", c.Request.Method).
			Str("remote_addr", c.ClientIP()).
			Dur("duration", duration).
			Msg("Runs list request completed")
	}()

	s.RunMutex.RLock()
	runs := make(map[string]*Run, len(s.Runs))
	for id, run := range s.Runs {
		runs[id] = run
	}
	s.RunMutex.RUnlock()

	c.JSON(200, runs)
}

func (s *Server) handleRunStatus(c *gin.Context) {
	runID := c.Param("run_id")
	startTime := time.Now()

	reqLogger := s.Logger.With().
		Str("run_id", runID).
		Str("endpoint", "/api/runs/:run_id").
		Str("method", c.Request.Method).
		Str("remote_addr", c.ClientIP()).
		Logger()

	defer func() {
		duration := time.Since(startTime)
		reqLogger.Debug().Dur("duration", duration).Msg("Run status request completed")
	}()

	s.RunMutex.RLock()
	run, exists := s.Runs[runID]
	s.RunMutex.RUnlock()

	if !exists {
		reqLogger.Warn().Msg("Run not found")
		c.JSON(404, gin.H{"error": "Run not found"})
		return
	}

	reqLogger.Debug().
		Str("run_status", run.Status).
		Time("start_time", run.StartTime).
		Msg("Run status retrieved")

	c.JSON(200, run)
}

func (s *Server) handleRunRetry(c *gin.Context) {
	runID := c.Param("run_id")
	startTime := time.Now()

	reqLogger := s.Logger.With().
		Str("original_run_id", runID).
		Str("endpoint", "/api/runs/:run_id/retry").
		Str("method", c.Request.Method).
		Str("remote_addr", c.ClientIP()).
		Logger()

	defer func() {
		duration := time.Since(startTime)
		reqLogger.Debug().Dur("duration", duration).Msg("Run retry request completed")
	}()

	reqLogger.Info().Msg("Run retry request received")

	s.RunMutex.RLock()
	origRun, exists := s.Runs[runID]
	s.RunMutex.RUnlock()

	if !exists {
		reqLogger.Warn().Msg("Original run not found for retry")
		c.JSON(404, gin.H{"error": "Run not found"})
		return
	}

	if origRun.Status == StatusQueued || origRun.Status == StatusRunning {
		reqLogger.Warn().Str("status", origRun.Status).Msg("Run is not finished")
		c.JSON(409, gin.H{"error": "Run is still " + origRun.Status})
		return
	}

	newRun := s.DispatchRun(TriggerRetry, runID)

	reqLogger.Info().
		Str("new_run_id", newRun.ID).
		Msg("Retry run created and queued")

	c.JSON(202, gin.H{"status": "queued", "run_id": newRun.ID, "retry_of": runID})
}

func (s *Server) Start() error {
	s.Logger.Info().Str("addr", ":"+s.Config.ServerPort).Msg("Starting server")
	return s.Router.Run(":" + s.Config.ServerPort)
}

func (s *Server) Stop() error {
	if s.VaultClient != nil {
		s.VaultClient = nil
	}
	return nil
}

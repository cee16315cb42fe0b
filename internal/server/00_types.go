package server

import (
	"sync"
	"time"

	"news-notifier/internal/config"
	"news-notifier/internal/vault"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Run statuses. Each run moves through them once: queued → running →
// completed or failed.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run triggers
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerRetry    = "retry"
)

type Server struct {
	Router      *gin.Engine
	Logger      zerolog.Logger
	Runs        map[string]*Run
	RunMutex    sync.RWMutex
	RunQueue    chan *Run
	RateLimiter *rate.Limiter
	VaultClient *vault.VaultClient
	Config      *config.Config
	Processor   *RunProcessor
}

// Run represents one notification run.
type Run struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Trigger   string    `json:"trigger"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	ItemCount int       `json:"item_count"`
	Error     string    `json:"error"`
	RetryOf   string    `json:"retry_of,omitempty"`
}

// ServerBuilder handles server construction and initialization
type ServerBuilder struct {
	logger zerolog.Logger
}

// RunProcessor executes queued runs
type RunProcessor struct {
	server *Server
}

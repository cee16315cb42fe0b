package server

import (
	"context"
	"fmt"
	"time"

	"news-notifier/internal/feeds"
	"news-notifier/internal/githubapp"
	"news-notifier/internal/news"
	"news-notifier/internal/slack"
	"news-notifier/internal/translate"

	"github.com/rs/zerolog"
)

// NewRunProcessor creates a new RunProcessor instance
func NewRunProcessor(server *Server) *RunProcessor {
	return &RunProcessor{
		server: server,
	}
}

// ProcessRuns continuously processes runs from the queue
func (p *RunProcessor) ProcessRuns() {
	for run := range p.server.RunQueue {
		p.processRun(run)
	}
}

// processRun executes a single run to completion
func (p *RunProcessor) processRun(run *Run) {
	runLogger := p.server.Logger.With().
		Str("run_id", run.ID).
		Str("trigger", run.Trigger).
		Logger()

	runLogger.Info().Msg("Starting run")

	p.server.RunMutex.Lock()
	run.Status = StatusRunning
	p.server.RunMutex.Unlock()

	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime)
		runLogger.Info().
			Dur("duration", duration).
			Str("final_status", run.Status).
			Msg("Run completed")
	}()

	itemCount, err := p.executeRun(context.Background(), runLogger)
	if err != nil {
		runLogger.Error().Err(err).Msg("Run failed")
		p.updateRunStatus(run, StatusFailed, itemCount, err.Error())
		return
	}

	p.updateRunStatus(run, StatusCompleted, itemCount, "")
}

// executeRun performs the fetch, translate, and post steps in order.
// Secret resolution and feed materialization fail fast: nothing is
// collected or delivered once either breaks. Per-feed and per-headline
// errors inside collection and translation only degrade the digest.
func (p *RunProcessor) executeRun(ctx context.Context, runLogger zerolog.Logger) (int, error) {
	cfg := p.server.Config

	webhookURL, apiKey, err := p.resolveSecrets()
	if err != nil {
		return 0, err
	}

	registry, err := p.materializeRegistry(runLogger)
	if err != nil {
		return 0, fmt.Errorf("failed to materialize feed registry: %w", err)
	}

	lookback := time.Duration(cfg.LookbackHours) * time.Hour

	collector := news.NewCollector(lookback, cfg.MaxItemsPerFeed, runLogger)
	items := collector.Collect(ctx, registry)

	if len(registry.Releases) > 0 {
		watcher := news.NewReleaseWatcher(ctx, cfg.GithubToken, lookback, runLogger)
		items = append(items, watcher.Collect(ctx, registry.Releases)...)
	}

	translator := translate.New(apiKey, cfg.DeepLAPIURL, runLogger)
	for i := range items {
		if items[i].Translate {
			items[i].Title = translator.Translate(ctx, items[i].Title)
		}
	}

	runLogger.Info().Int("item_count", len(items)).Msg("Collection finished, delivering digest")

	message := slack.BuildDigest(items)
	webhook := slack.NewWebhookClient(webhookURL, runLogger)
	if err := webhook.Post(ctx, message); err != nil {
		return len(items), err
	}

	return len(items), nil
}

// resolveSecrets returns the webhook URL and DeepL key, consulting Vault
// for anything the startup configuration left empty. Both are required,
// matching the job's environment contract.
func (p *RunProcessor) resolveSecrets() (webhookURL, apiKey string, err error) {
	cfg := p.server.Config

	webhookURL = cfg.SlackWebhookURL
	if webhookURL == "" && p.server.VaultClient != nil {
		webhookURL, _ = p.server.VaultClient.GetWebhookURL()
	}

	apiKey = cfg.DeepLAPIKey
	if apiKey == "" && p.server.VaultClient != nil {
		apiKey, _ = p.server.VaultClient.GetTranslatorKey()
	}

	if webhookURL == "" || apiKey == "" {
		return "", "", fmt.Errorf("SLACK_WEBHOOK_URL and DEEPL_API_KEY must be set")
	}

	return webhookURL, apiKey, nil
}

// materializeRegistry resolves the feed registry freshly for this run
func (p *RunProcessor) materializeRegistry(runLogger zerolog.Logger) (*feeds.Registry, error) {
	cfg := p.server.Config

	var auth *githubapp.AuthConfig
	if cfg.GithubAppID != 0 {
		auth = &githubapp.AuthConfig{
			AppID:          cfg.GithubAppID,
			InstallationID: cfg.GithubInstallationID,
			PrivateKey:     cfg.GithubPrivateKey,
			APIBaseURL:     cfg.GithubAPIBaseURL,
		}
	}

	materializer := feeds.NewMaterializer(cfg.FeedsRepoURL, cfg.FeedsFile, auth, runLogger)
	return materializer.Materialize()
}

// updateRunStatus updates the status of a run
func (p *RunProcessor) updateRunStatus(run *Run, status string, itemCount int, errMsg string) {
	p.server.RunMutex.Lock()
	defer p.server.RunMutex.Unlock()

	run.Status = status
	run.ItemCount = itemCount
	run.Error = errMsg
	run.EndTime = time.Now()
}

// RunOnce executes a single run synchronously, bypassing the queue. Used
// by the one-shot binary, whose exit code mirrors the run status.
func (s *Server) RunOnce() *Run {
	run := s.createRun(TriggerManual, "")

	s.RunMutex.Lock()
	s.Runs[run.ID] = run
	s.RunMutex.Unlock()

	s.Processor.processRun(run)
	return run
}

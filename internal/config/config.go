package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"news-notifier/internal/vault"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	slackVaultPath    = "notifier/slack"
	deeplVaultPath    = "notifier/deepl"
	notifierVaultPath = "notifier/api"

	// Weekday mornings, 09:00 KST
	defaultSchedule = "0 0 * * 1-5"
)

// Manager handles configuration loading and management
type Manager struct {
	logger zerolog.Logger
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		logger: log.With().Str("component", "config").Logger(),
	}
}

// Load loads configuration from multiple sources: Vault first, then
// environment variables, then defaults for anything still unset.
func (m *Manager) Load(vaultClient *vault.VaultClient) (*Config, error) {
	config := &Config{}

	if err := m.loadFromVault(vaultClient, config); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to load configuration from Vault")
	}

	m.loadFromEnvironment(config)
	m.setDefaults(config)

	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromVault loads secrets and settings from Vault
func (m *Manager) loadFromVault(vaultClient *vault.VaultClient, config *Config) error {
	if vaultClient == nil {
		return fmt.Errorf("vault client is nil")
	}

	if webhookURL, err := vaultClient.GetWebhookURL(); err == nil {
		config.SlackWebhookURL = webhookURL
	} else {
		m.logger.Info().Err(err).Msg("Slack webhook not found in Vault")
	}

	if apiKey, err := vaultClient.GetTranslatorKey(); err == nil {
		config.DeepLAPIKey = apiKey
	} else {
		m.logger.Info().Err(err).Msg("DeepL key not found in Vault")
	}

	if apiConfig, err := vaultClient.GetSecret(notifierVaultPath); err == nil {
		for key, value := range apiConfig {
			config.setIntValue(key, value)
			config.setStringValue(key, value)
		}
	} else {
		m.logger.Info().Err(err).Msg("Notifier configuration not found in Vault")
	}

	return nil
}

// setIntValue sets an integer field from a Vault key/value pair
func (c *Config) setIntValue(key string, value interface{}) {
	if str, ok := value.(string); ok {
		if intVal, err := strconv.Atoi(str); err == nil {
			switch key {
			case "app_id":
				c.GithubAppID = intVal
			case "installation_id":
				c.GithubInstallationID = intVal
			case "lookback_hours":
				c.LookbackHours = intVal
			case "max_items_per_feed":
				c.MaxItemsPerFeed = intVal
			case "worker_count":
				c.WorkerCount = intVal
			case "retention_hours":
				c.RetentionHours = intVal
			case "rate_limit":
				c.RateLimit = intVal
			}
		}
	}
}

// setStringValue sets a string field from a Vault key/value pair
func (c *Config) setStringValue(key string, value interface{}) {
	if str, ok := value.(string); ok {
		switch key {
		case "schedule":
			c.Schedule = str
		case "feeds_file":
			c.FeedsFile = str
		case "feeds_repo_url":
			c.FeedsRepoURL = str
		case "port":
			c.ServerPort = str
		case "github_token":
			c.GithubToken = str
		case "private_key":
			c.GithubPrivateKey = str
		case "api_base_url":
			c.GithubAPIBaseURL = str
		}
	}
}

// loadFromEnvironment loads configuration from environment variables,
// keeping values already set from Vault.
func (m *Manager) loadFromEnvironment(config *Config) {
	m.setStringFromEnv(&config.SlackWebhookURL, "SLACK_WEBHOOK_URL")
	m.setStringFromEnv(&config.DeepLAPIKey, "DEEPL_API_KEY")
	m.setStringFromEnv(&config.DeepLAPIURL, "DEEPL_API_URL")
	m.setStringFromEnv(&config.Schedule, "DIGEST_SCHEDULE")
	m.setStringFromEnv(&config.FeedsFile, "FEEDS_FILE")
	m.setStringFromEnv(&config.FeedsRepoURL, "FEEDS_REPO_URL")
	m.setStringFromEnv(&config.ServerPort, "PORT")
	m.setStringFromEnv(&config.GithubToken, "GITHUB_TOKEN")
	m.setStringFromEnv(&config.GithubPrivateKey, "GITHUB_PRIVATE_KEY")
	m.setStringFromEnv(&config.GithubAPIBaseURL, "GITHUB_API_BASE_URL")

	m.setIntFromEnv(&config.LookbackHours, "LOOKBACK_HOURS")
	m.setIntFromEnv(&config.MaxItemsPerFeed, "MAX_ITEMS_PER_FEED")
	m.setIntFromEnv(&config.WorkerCount, "WORKER_COUNT")
	m.setIntFromEnv(&config.RetentionHours, "RETENTION_HOURS")
	m.setIntFromEnv(&config.RateLimit, "RATE_LIMIT_REQUESTS_PER_SECOND")
	m.setIntFromEnv(&config.GithubAppID, "GITHUB_APP_ID")
	m.setIntFromEnv(&config.GithubInstallationID, "GITHUB_INSTALLATION_ID")
}

// setIntFromEnv sets an integer field from environment variable if not already set
func (m *Manager) setIntFromEnv(field *int, name string) {
	value := os.Getenv(name)
	if value == "" || *field != 0 {
		return
	}
	if intVal, err := strconv.Atoi(value); err == nil {
		*field = intVal
	} else {
		m.logger.Warn().Str("var", name).Str("value", value).Msg("Ignoring non-integer environment value")
	}
}

// setStringFromEnv sets a string field from environment variable if not already set
func (m *Manager) setStringFromEnv(field *string, name string) {
	if value := os.Getenv(name); value != "" && *field == "" {
		*field = value
	}
}

// setDefaults sets default values for configuration fields
func (m *Manager) setDefaults(config *Config) {
	if config.Schedule == "" {
		config.Schedule = defaultSchedule
	}
	if config.LookbackHours == 0 {
		config.LookbackHours = 24
	}
	if config.MaxItemsPerFeed == 0 {
		config.MaxItemsPerFeed = 2
	}
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}
	if config.WorkerCount == 0 {
		config.WorkerCount = 1
	}
	if config.RetentionHours == 0 {
		config.RetentionHours = 24
	}
	if config.RateLimit == 0 {
		config.RateLimit = 10
	}
	if config.GithubAPIBaseURL == "" {
		config.GithubAPIBaseURL = "https://api.github.com"
	}
}

// Validate checks the assembled configuration. The webhook URL shape is
// enforced when present; presence itself is checked per run, since a
// missing secret fails the run rather than the process.
func Validate(config *Config) error {
	v := validator.New()

	slackWebhookRegex := regexp.MustCompile(`^https://hooks\.slack\.com/services/[A-Za-z0-9/]+$`)
	if err := v.RegisterValidation("slackwebhook", func(fl validator.FieldLevel) bool {
		return slackWebhookRegex.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}

	return v.Struct(config)
}

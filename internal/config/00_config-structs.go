package config

type Config struct {
	// Secrets, resolved from Vault with environment fallback
	SlackWebhookURL string `json:"slack_webhook_url" validate:"omitempty,slackwebhook"`
	DeepLAPIKey     string `json:"deepl_api_key"`
	DeepLAPIURL     string `json:"deepl_api_url"`

	// Trigger and pipeline settings
	Schedule        string `json:"schedule" validate:"required"`
	LookbackHours   int    `json:"lookback_hours" validate:"gt=0"`
	MaxItemsPerFeed int    `json:"max_items_per_feed" validate:"gt=0"`
	FeedsFile       string `json:"feeds_file"`
	FeedsRepoURL    string `json:"feeds_repo_url"`

	// Server settings
	ServerPort     string `json:"port"`
	WorkerCount    int    `json:"worker_count"`
	RetentionHours int    `json:"retention_hours"`
	RateLimit      int    `json:"rate_limit"`

	// GitHub access for the release watcher and private feeds repo
	GithubToken          string `json:"github_token"`
	GithubAppID          int    `json:"app_id"`
	GithubInstallationID int    `json:"installation_id"`
	GithubPrivateKey     string `json:"private_key"`
	GithubAPIBaseURL     string `json:"api_base_url"`
}

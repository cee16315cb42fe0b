package githubapp

// AuthConfig holds GitHub App authentication configuration for the
// private feeds repository.
type AuthConfig struct {
	AppID          int
	InstallationID int
	PrivateKey     string
	APIBaseURL     string
}

type AuthError struct {
	Op  string
	Err error
}

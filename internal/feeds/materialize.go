package feeds

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"news-notifier/internal/githubapp"

	"github.com/rs/zerolog"
	"gopkg.in/src-d/go-git.v4"
)

// Materializer produces a fresh Registry for each run. When a repository
// URL is configured the repo is cloned into a new temp dir, feeds.yaml is
// read from it, and the checkout is discarded; no state survives between
// runs.
type Materializer struct {
	RepoURL  string
	FilePath string
	Auth     *githubapp.AuthConfig
	Logger   zerolog.Logger
	authFunc githubapp.GithubAuthenticator
}

// NewMaterializer creates a Materializer. repoURL and filePath may both be
// empty, in which case the built-in defaults are used.
func NewMaterializer(repoURL, filePath string, auth *githubapp.AuthConfig, logger zerolog.Logger) *Materializer {
	return &Materializer{
		RepoURL:  repoURL,
		FilePath: filePath,
		Auth:     auth,
		Logger:   logger.With().Str("component", "feeds").Logger(),
		authFunc: &githubapp.DefaultAuthenticator{},
	}
}

// Materialize resolves the feed registry for one run
func (m *Materializer) Materialize() (*Registry, error) {
	if m.RepoURL != "" {
		return m.materializeFromRepo()
	}

	if m.FilePath != "" {
		m.Logger.Debug().Str("path", m.FilePath).Msg("Loading feeds from local file")
		return Load(m.FilePath)
	}

	m.Logger.Debug().Msg("No feeds source configured, using built-in defaults")
	return Default(), nil
}

// materializeFromRepo clones the feeds repository into a temp dir and
// loads feeds.yaml from its root
func (m *Materializer) materializeFromRepo() (*Registry, error) {
	tmpDir, err := os.MkdirTemp("", "feeds")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			m.Logger.Error().Err(err).Msg("Failed to remove temporary directory")
		}
	}()

	cloneURL := m.RepoURL
	if m.Auth != nil && m.Auth.AppID != 0 {
		m.Logger.Info().Msg("Attempting to authenticate with GitHub")
		token, err := m.authFunc.GetInstallationToken(*m.Auth)
		if err != nil {
			return nil, fmt.Errorf("GitHub App authentication failed: %w", err)
		}
		cloneURL = githubapp.BuildCloneURL(token, extractRepoPath(m.RepoURL), extractHost(m.RepoURL))
	}

	m.Logger.Info().Str("clone_url", maskTokenInURL(cloneURL)).Msg("Cloning feeds repository")

	// Custom writer to capture and format Git output
	gitOutput := &gitOutputWriter{logger: m.Logger.With().Str("component", "git").Logger()}
	_, err = git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:      cloneURL,
		Progress: gitOutput,
		Depth:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone feeds repository: %w", err)
	}

	return Load(filepath.Join(tmpDir, RegistryFileName))
}

// extractRepoPath extracts the repository path from a full URL
func extractRepoPath(fullURL string) string {
	u, err := url.Parse(fullURL)
	if err != nil {
		return fullURL // fallback
	}
	return strings.TrimPrefix(u.Path, "/")
}

// extractHost extracts the host from a repository URL
func extractHost(repoURL string) string {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "github.com" // fallback to github.com if parsing fails
	}
	return u.Host
}

// maskTokenInURL masks the token in a URL for logging
func maskTokenInURL(cloneURL string) string {
	u, err := url.Parse(cloneURL)
	if err != nil || u.User == nil {
		return cloneURL
	}
	username := u.User.Username()
	if _, hasToken := u.User.Password(); hasToken {
		u.User = url.UserPassword(username, "****")
		return u.String()
	}
	return cloneURL
}

// gitOutputWriter is a custom writer to capture and format Git output
type gitOutputWriter struct {
	logger zerolog.Logger
}

func (w *gitOutputWriter) Write(p []byte) (n int, err error) {
	output := strings.TrimSpace(string(p))
	if output != "" {
		w.logger.Info().Str("progress", output).Msg("Git clone progress")
	}
	return len(p), nil
}

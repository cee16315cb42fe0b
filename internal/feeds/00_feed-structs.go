package feeds

// Feed is a single RSS/Atom source. Translate marks feeds whose titles
// are translated to Korean before delivery.
type Feed struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	Lang      string `yaml:"lang"`
	Translate bool   `yaml:"translate"`
}

// ReleaseWatch names a GitHub repository whose recent releases are
// included in the digest.
type ReleaseWatch struct {
	Repo string `yaml:"repo"`
}

// Registry is the full feed configuration, normally loaded from a
// feeds.yaml file.
type Registry struct {
	Feeds    []Feed         `yaml:"feeds"`
	Releases []ReleaseWatch `yaml:"releases"`
}

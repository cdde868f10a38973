package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// APIKeyEnv overrides api_key from the config file when set.
const APIKeyEnv = "HEADLINES_API_KEY"

const defaultConfigTmpl = `# Headlines configuration file.

# NewsAPI key. Leave empty and set HEADLINES_API_KEY instead to keep it out
# of this file.
api_key = ""

# Top-headlines endpoint and the country to request headlines for.
endpoint = "https://newsapi.org/v2/top-headlines"
country = "us"

# Headlines fetched per page.
page_size = 10

# Text browser used to display articles inside the app.
viewer = "w3m"

# Where diagnostics are written.
log_file = %q
`

type Config struct {
	APIKey   string `toml:"api_key"`
	Endpoint string `toml:"endpoint"`
	Country  string `toml:"country"`
	PageSize int    `toml:"page_size"`
	Viewer   string `toml:"viewer"`
	LogFile  string `toml:"log_file"`
}

// Dir returns the headlines configuration directory (~/.headlines).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".headlines"), nil
}

// Path returns the path to the default config file.
func Path() string {
	dir, _ := Dir()
	return filepath.Join(dir, "headlines.toml")
}

// Load reads the config at path, or ~/.headlines/headlines.toml if path is
// empty, creating a default config file if one doesn't exist.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Config{}, fmt.Errorf("could not create config directory: %w", err)
		}
		defaultLogFile := filepath.Join(dir, "headlines.log")
		contents := fmt.Sprintf(defaultConfigTmpl, defaultLogFile)
		if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
			return Config{}, fmt.Errorf("could not write default config: %w", err)
		}
	}

	cfg := Config{
		Endpoint: "https://newsapi.org/v2/top-headlines",
		Country:  "us",
		PageSize: 10,
		Viewer:   "w3m",
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse %s: %w", path, err)
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.APIKey = key
	}

	// Expand ~ in log_file.
	if strings.HasPrefix(cfg.LogFile, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("could not determine home directory: %w", err)
		}
		cfg.LogFile = filepath.Join(home, cfg.LogFile[2:])
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint scheme must be http or https, got %q", u.Scheme)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be at least 1, got %d", c.PageSize)
	}
	if c.Country == "" {
		return fmt.Errorf("country is required")
	}
	return nil
}

package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Survey  Survey                       `yaml:"survey"`
	Labels  map[string]map[string]string `yaml:"labels"`
	Table   Table                        `yaml:"table"`
	Avatars Avatars                      `yaml:"avatars"`
	Images  Images                       `yaml:"images"`
	Output  Output                       `yaml:"output"`
}

type Survey struct {
	URL           string        `yaml:"url"`
	APIKeyEnv     string        `yaml:"api_key_env"`
	CompletedOnly bool          `yaml:"completed_only"`
	Timeout       time.Duration `yaml:"timeout"`
}

type Table struct {
	Backend         string `yaml:"backend"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SpreadsheetName string `yaml:"spreadsheet_name"`
	Sheet           string `yaml:"sheet"`
	CredentialsFile string `yaml:"credentials_file"`
	SQLitePath      string `yaml:"sqlite_path"`
	Verify          bool   `yaml:"verify"`
}

type Avatars struct {
	Dir            string        `yaml:"dir"`
	PlaceholderURL string        `yaml:"placeholder_url"`
	Timeout        time.Duration `yaml:"timeout"`
	FollowHTML     bool          `yaml:"follow_html"`
}

type Images struct {
	Command string `yaml:"command"`
	Sizes   []int  `yaml:"sizes"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

// ConfigDir returns the XDG config directory for cfpsync.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "cfpsync")
}

// DataDir returns the XDG data directory for cfpsync.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "cfpsync")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/cfpsync/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'cfpsync init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file. A .env file sitting next to the
// config is loaded into the environment first; variables already set win.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := loadEnvFile(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	return parse(data)
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Survey: Survey{
			APIKeyEnv:     "TYPEFORM_KEY",
			CompletedOnly: true,
			Timeout:       30 * time.Second,
		},
		Table: Table{
			Backend:         "sheets",
			Sheet:           "Sessions",
			CredentialsFile: filepath.Join(ConfigDir(), "credentials.json"),
		},
		Avatars: Avatars{
			Dir:     "avatars",
			Timeout: 15 * time.Second,
		},
		Images: Images{
			Command: "convert",
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.Table.Backend {
	case "sheets", "sqlite":
	default:
		return nil, fmt.Errorf("unknown table backend %q (want sheets or sqlite)", cfg.Table.Backend)
	}
	cfg.Table.CredentialsFile = expandHome(cfg.Table.CredentialsFile)

	return cfg, nil
}

// SurveyKey returns the survey API key from the configured environment variable.
func (c *Config) SurveyKey() string {
	return os.Getenv(c.Survey.APIKeyEnv)
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return expandHome(c.Output.DataDir)
	}
	return DataDir()
}

// TablePath returns the SQLite file used by the sqlite table backend.
func (c *Config) TablePath() string {
	if c.Table.SQLitePath != "" {
		return expandHome(c.Table.SQLitePath)
	}
	return filepath.Join(c.GetDataDir(), "tables.db")
}

func expandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved bookclub configuration.
type Config struct {
	OllamaURL          string
	OllamaModel        string
	Theme              string
	OpenLibraryURL     string
	SearchLimit        int
	DescriptionWorkers int
	LogDir             string

	// Path is the config file that was read, empty when none existed.
	Path string
	// EnvFile is the .env file that was read, empty when none existed.
	EnvFile string
}

const (
	defaultConfigPath         = "~/.config/bookclub/config.toml"
	defaultEnvFile            = ".env"
	defaultLogDir             = "~/.local/state/bookclub"
	defaultOllamaURL          = "http://localhost:11434/api/generate"
	defaultOllamaModel        = "phi3:mini"
	defaultOpenLibraryURL     = "https://openlibrary.org"
	defaultSearchLimit        = 20
	defaultDescriptionWorkers = 4
)

// Environment variable names.
const (
	EnvOllamaURL          = "OLLAMA_URL"
	EnvOllamaModel        = "OLLAMA_MODEL"
	EnvTheme              = "BOOKCLUB_THEME"
	EnvOpenLibraryURL     = "OPEN_LIBRARY_URL"
	EnvSearchLimit        = "BOOKCLUB_SEARCH_LIMIT"
	EnvDescriptionWorkers = "BOOKCLUB_DESCRIPTION_WORKERS"
	EnvLogDir             = "BOOKCLUB_LOG_DIR"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OllamaURL:          defaultOllamaURL,
		OllamaModel:        defaultOllamaModel,
		OpenLibraryURL:     defaultOpenLibraryURL,
		SearchLimit:        defaultSearchLimit,
		DescriptionWorkers: defaultDescriptionWorkers,
		LogDir:             mustExpand(defaultLogDir),
	}
}

// Load resolves configuration from defaults, the TOML file at path, the
// .env file in the working directory, and the process environment, each
// overriding the one before.
func Load(path string) (Config, error) {
	return LoadFiles(path, defaultEnvFile)
}

// LoadFiles is Load with an explicit .env location. An empty envFile skips
// the .env step.
func LoadFiles(path, envFile string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := cfg.applyFile(resolved); err != nil {
		return Config{}, err
	}

	dotenv := map[string]string{}
	if strings.TrimSpace(envFile) != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = vals
			cfg.EnvFile = envFile
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read env file: %w", err)
		}
	}
	if err := cfg.applyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}); err != nil {
		return Config{}, err
	}

	cfg.LogDir = mustExpand(cfg.LogDir)
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		OllamaURL          string `toml:"ollama_url"`
		OllamaModel        string `toml:"ollama_model"`
		Theme              string `toml:"theme"`
		OpenLibraryURL     string `toml:"open_library_url"`
		SearchLimit        int    `toml:"search_limit"`
		DescriptionWorkers int    `toml:"description_workers"`
		LogDir             string `toml:"log_dir"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	c.Path = path
	setString(&c.OllamaURL, raw.OllamaURL)
	setString(&c.OllamaModel, raw.OllamaModel)
	setString(&c.Theme, raw.Theme)
	setString(&c.OpenLibraryURL, raw.OpenLibraryURL)
	setString(&c.LogDir, raw.LogDir)
	if raw.SearchLimit > 0 {
		c.SearchLimit = raw.SearchLimit
	}
	if raw.DescriptionWorkers > 0 {
		c.DescriptionWorkers = raw.DescriptionWorkers
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	setString(&c.OllamaURL, get(EnvOllamaURL))
	setString(&c.OllamaModel, get(EnvOllamaModel))
	setString(&c.Theme, get(EnvTheme))
	setString(&c.OpenLibraryURL, get(EnvOpenLibraryURL))
	setString(&c.LogDir, get(EnvLogDir))
	if err := setPositive(&c.SearchLimit, EnvSearchLimit, get(EnvSearchLimit)); err != nil {
		return err
	}
	return setPositive(&c.DescriptionWorkers, EnvDescriptionWorkers, get(EnvDescriptionWorkers))
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setPositive(dst *int, key, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("parse %s: want a positive integer, got %q", key, v)
	}
	*dst = n
	return nil
}

// LogPath returns the path to the bookclub log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/bookclub.log")
	}
	return filepath.Join(c.LogDir, "bookclub.log")
}

// DefaultPath returns the default config file location, unexpanded.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// Config holds the YAML configuration tree with `${VAR}` values replaced
// from the environment. Missing or malformed files fall back to defaults
// with a warning, never an error.
type Config struct {
	path   string
	values map[string]any
}

func NewConfig(path string) *Config {
	loadEnvFiles()

	if path == "" {
		path = filepath.Join("config", "config.yaml")
	}
	cfg := &Config{path: path, values: defaultValues()}

	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("can't read config file, using defaults", "path", path, "error", err)
		return cfg
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		slog.Warn("can't parse config file, using defaults", "path", path, "error", err)
		return cfg
	}
	if values != nil {
		cfg.values = substituteEnv(values).(map[string]any)
	}
	return cfg
}

// Shared environment first, project environment second; the project file
// overrides the shared one.
func loadEnvFiles() {
	if err := godotenv.Load(filepath.Join("..", ".env")); err == nil {
		slog.Debug("loaded shared environment", "path", filepath.Join("..", ".env"))
	}
	if err := godotenv.Overload(".env"); err == nil {
		slog.Debug("loaded project environment", "path", ".env")
	}
}

func defaultValues() map[string]any {
	return map[string]any{
		"app": map[string]any{
			"name":  "icsgen",
			"debug": false,
		},
		"calendar": map[string]any{
			"name":     "Generated Calendar",
			"timezone": "UTC",
		},
		"logging": map[string]any{
			"level": "info",
		},
	}
}

// Replace `${VAR}` with the environment value throughout the tree; unknown
// variables are left verbatim.
func substituteEnv(value any) any {
	switch value := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, v := range value {
			out[k] = substituteEnv(v)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, v := range value {
			out[i] = substituteEnv(v)
		}
		return out
	case string:
		return envVarRe.ReplaceAllStringFunc(value, func(match string) string {
			if env, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
				return env
			}
			return match
		})
	default:
		return value
	}
}

// Get a value by dot-notation key ("calendar.name"), or fallback when the
// key is absent.
func (c *Config) Get(key string, fallback any) any {
	value := any(c.values)
	for _, part := range strings.Split(key, ".") {
		m, ok := value.(map[string]any)
		if !ok {
			return fallback
		}
		if value, ok = m[part]; !ok {
			return fallback
		}
	}
	return value
}

func (c *Config) GetString(key string, fallback string) string {
	if s, ok := c.Get(key, fallback).(string); ok {
		return s
	}
	return fallback
}

func (c *Config) GetBool(key string, fallback bool) bool {
	if b, ok := c.Get(key, fallback).(bool); ok {
		return b
	}
	return fallback
}

// StringMap flattens a section of string values ("field_mappings") into a
// map[string]string, skipping non-string entries.
func (c *Config) StringMap(key string) map[string]string {
	section, ok := c.Get(key, nil).(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(section))
	for k, v := range section {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// Set a value by dot-notation key, creating intermediate sections as
// needed.
func (c *Config) Set(key string, value any) {
	parts := strings.Split(key, ".")
	section := c.values
	for _, part := range parts[:len(parts)-1] {
		next, ok := section[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			section[part] = next
		}
		section = next
	}
	section[parts[len(parts)-1]] = value
}

// Save writes the current configuration tree back to its file.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	raw, err := yaml.Marshal(c.values)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, raw, 0644)
}

// Package config resolves runtime settings from defaults, an optional
// config file, an optional .env file, COURSEFLOW_* environment variables
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/courseflow/internal/llm"
)

// EnvPrefix is prepended to every environment variable key.
const EnvPrefix = "COURSEFLOW"

// Config is the resolved application configuration.
type Config struct {
	DBPath      string
	CatalogPath string
	StudentID   string

	LogMode  string
	LogLevel string
	LogFile  string

	FeedbackEnabled bool
	LLM             llm.Config
}

// Load reads configuration. configFile may be empty, in which case
// courseflow.yaml is looked up in the working directory and the XDG
// config directory. flags, when non-nil, are bound onto matching keys.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("courseflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "courseflow"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	return fromViper(v), nil
}

// flagBindings maps config keys to persistent flag names.
var flagBindings = map[string]string{
	"db":        "db",
	"catalog":   "catalog",
	"student":   "student",
	"log.level": "log-level",
}

func setDefaults(v *viper.Viper) {
	def := llm.DefaultConfig()

	v.SetDefault("db", "")
	v.SetDefault("catalog", "courses.json")
	v.SetDefault("student", defaultStudent())
	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("feedback.enabled", false)

	v.SetDefault("llm.provider", def.Provider)
	v.SetDefault("llm.timeout", def.Timeout)
	v.SetDefault("llm.anthropic.model", def.Anthropic.Model)
	v.SetDefault("llm.openai.model", def.OpenAI.Model)
	v.SetDefault("llm.gemini.model", def.Gemini.Model)
	v.SetDefault("llm.openrouter.model", def.OpenRouter.Model)
	v.SetDefault("llm.retry.max_attempts", def.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", def.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", def.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", def.Retry.Multiplier)

	// AutomaticEnv only resolves keys viper already knows about.
	for _, k := range []string{
		"llm.anthropic.api_key",
		"llm.openai.api_key", "llm.openai.base_url",
		"llm.gemini.api_key",
		"llm.openrouter.api_key", "llm.openrouter.base_url",
	} {
		v.SetDefault(k, "")
	}
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		DBPath:          v.GetString("db"),
		CatalogPath:     v.GetString("catalog"),
		StudentID:       v.GetString("student"),
		LogMode:         v.GetString("log.mode"),
		LogLevel:        v.GetString("log.level"),
		LogFile:         v.GetString("log.file"),
		FeedbackEnabled: v.GetBool("feedback.enabled"),
		LLM: llm.Config{
			Provider: v.GetString("llm.provider"),
			Timeout:  v.GetDuration("llm.timeout"),
			Anthropic: llm.ProviderConfig{
				APIKey: v.GetString("llm.anthropic.api_key"),
				Model:  v.GetString("llm.anthropic.model"),
			},
			OpenAI: llm.ProviderConfig{
				APIKey:  v.GetString("llm.openai.api_key"),
				Model:   v.GetString("llm.openai.model"),
				BaseURL: v.GetString("llm.openai.base_url"),
			},
			Gemini: llm.ProviderConfig{
				APIKey: v.GetString("llm.gemini.api_key"),
				Model:  v.GetString("llm.gemini.model"),
			},
			OpenRouter: llm.ProviderConfig{
				APIKey:  v.GetString("llm.openrouter.api_key"),
				Model:   v.GetString("llm.openrouter.model"),
				BaseURL: v.GetString("llm.openrouter.base_url"),
			},
			Retry: llm.RetryConfig{
				MaxAttempts: v.GetInt("llm.retry.max_attempts"),
				InitialWait: v.GetDuration("llm.retry.initial_wait"),
				MaxWait:     v.GetDuration("llm.retry.max_wait"),
				Multiplier:  v.GetFloat64("llm.retry.multiplier"),
			},
		},
	}
}

// loadDotEnv loads path into the process environment if it exists.
// Variables already set are not overridden.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func defaultStudent() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "student"
}

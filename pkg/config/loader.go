package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/tryflow/pkg/gitmetrics"
)

// configName is the config file name without extension.
const configName = ".tryflow"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for tryflow settings.
const envPrefix = "TRYFLOW"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		repositoryHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// ignored.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("repositories", []any{})

	viperCfg.SetDefault("github.token", "")
	viperCfg.SetDefault("github.base_url", "")
	viperCfg.SetDefault("github.timeout", DefaultGitHubTimeout)
	viperCfg.SetDefault("github.page_size", DefaultGitHubPageSize)
	viperCfg.SetDefault("github.max_pages", DefaultGitHubMaxPages)
	viperCfg.SetDefault("github.sample_size", DefaultGitHubSampleSize)

	viperCfg.SetDefault("cache.dir", DefaultCacheDir)
	viperCfg.SetDefault("cache.compress", DefaultCacheCompress)
	viperCfg.SetDefault("cache.memory_entries", DefaultCacheMemoryEntries)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
}

// repositoryHook lets a repositories entry be a bare string.
func repositoryHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(gitmetrics.Repository{}) {
		return data, nil
	}

	return gitmetrics.Repository{Path: data.(string)}, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

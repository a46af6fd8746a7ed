// Package config loads configuration structs from YAML files and
// environment variables, with optional .env support.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Options holds loader overrides.
type Options struct {
	// ConfigFile is an explicit YAML file path. Empty means search
	// ./config.yml and ./config.yaml.
	ConfigFile string
	// EnvFile is an explicit .env file path. Empty means ./.env when
	// present.
	EnvFile string
}

// Option customizes a Load call.
type Option func(*Options)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) Option {
	return func(o *Options) { o.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) Option {
	return func(o *Options) { o.EnvFile = path }
}

// Load populates cfg from an optional YAML file, an optional .env
// file, and environment variables prefixed with the upper-cased name
// (e.g. name "apikit" binds APIKIT_BASE_URL to the "base_url" key).
// Precedence: environment over file.
func Load(name string, cfg any, opts ...Option) error {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	if o.EnvFile == "" && exists(".env") {
		o.EnvFile = ".env"
	}
	if o.EnvFile != "" {
		if err := godotenv.Load(o.EnvFile); err != nil {
			return fmt.Errorf("config: load env file %s: %w", o.EnvFile, err)
		}
	}

	v := viper.New()

	if o.ConfigFile == "" {
		for _, candidate := range []string{"./config.yml", "./config.yaml"} {
			if exists(candidate) {
				o.ConfigFile = candidate
				break
			}
		}
	}
	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", o.ConfigFile, err)
		}
	}

	bindPrefixedEnv(v, name)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal %s: %w", name, err)
	}
	return nil
}

// bindPrefixedEnv sets every NAME_* environment variable as a viper
// key. Viper's AutomaticEnv does not surface unknown keys to
// Unmarshal, so the keys are set explicitly.
func bindPrefixedEnv(v *viper.Viper, name string) {
	prefix := strings.ToUpper(name) + "_"
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], prefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(pair[0], prefix))
		v.Set(key, pair[1])
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Package config loads layered YAML + environment configuration through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config gives read access to loaded settings.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetDuration(key string) time.Duration
	IsSet(key string) bool
	Unmarshal(out interface{}) error
}

type viperConfig struct {
	v *viper.Viper
}

func (c *viperConfig) GetString(key string) string          { return c.v.GetString(key) }
func (c *viperConfig) GetInt(key string) int                { return c.v.GetInt(key) }
func (c *viperConfig) GetBool(key string) bool              { return c.v.GetBool(key) }
func (c *viperConfig) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }
func (c *viperConfig) IsSet(key string) bool                { return c.v.IsSet(key) }
func (c *viperConfig) Unmarshal(out interface{}) error      { return c.v.Unmarshal(out) }

const configDir = "configs"

// Options tune Load. Zero values fall back to APP_ENV / CONFIG_PATH.
type Options struct {
	// Env selects configs/<env>/. Defaults to APP_ENV or dev.
	Env string
	// Path overrides the config directory entirely. Defaults to CONFIG_PATH.
	Path string
	// Defaults are registered before reading so every key can be overridden from
	// the environment even when the file omits it.
	Defaults map[string]interface{}
}

// Load reads <serviceName>.yaml from configs/<env>/ (falling back to
// configs/example/) and overlays environment variables prefixed with the upper
// cased service name, e.g. ANALYZER_RAZORPAY_KEY_SECRET for razorpay.key_secret.
func Load(serviceName string, opts Options) (Config, error) {
	v := viper.New()

	env := opts.Env
	if env == "" {
		env = os.Getenv("APP_ENV")
	}
	if env == "" {
		env = "dev"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix(strings.ToUpper(serviceName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range opts.Defaults {
		v.SetDefault(key, value)
	}

	configPath := opts.Path
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		configPath = filepath.Join(configDir, env)
	}

	v.SetConfigName(serviceName)
	v.AddConfigPath(configPath)
	v.AddConfigPath(filepath.Join(configDir, "example"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Running purely from defaults and environment is allowed.
	}

	return &viperConfig{v: v}, nil
}

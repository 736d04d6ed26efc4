package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, dir, name string, content map[string]interface{}) {
	t.Helper()
	raw, err := yaml.Marshal(content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), raw, 0o600))
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "svc", map[string]interface{}{
		"server":   map[string]interface{}{"port": 8080},
		"razorpay": map[string]interface{}{"key_id": "rzp_test_123"},
	})
	t.Setenv("SVC_RAZORPAY_KEY_SECRET", "from-env")

	cfg, err := Load("svc", Options{
		Path:     dir,
		Defaults: map[string]interface{}{"razorpay.key_secret": ""},
	})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.GetInt("server.port"))
	assert.Equal(t, "rzp_test_123", cfg.GetString("razorpay.key_id"))
	assert.Equal(t, "from-env", cfg.GetString("razorpay.key_secret"))

	var out struct {
		Razorpay struct {
			KeyID     string `mapstructure:"key_id"`
			KeySecret string `mapstructure:"key_secret"`
		} `mapstructure:"razorpay"`
	}
	require.NoError(t, cfg.Unmarshal(&out))
	assert.Equal(t, "rzp_test_123", out.Razorpay.KeyID)
	assert.Equal(t, "from-env", out.Razorpay.KeySecret)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("svc", Options{
		Path:     t.TempDir(),
		Defaults: map[string]interface{}{"server.port": 9090},
	})
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.GetInt("server.port"))
}

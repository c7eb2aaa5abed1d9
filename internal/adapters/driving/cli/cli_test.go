package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configfile "github.com/custodia-labs/veritas/internal/adapters/driven/config/file"
)

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "veritas version test-version-1.0.0")
}

func TestSuggestCmd_RequiresProjectAndUser(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"suggest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	assert.Error(t, err)
}

func TestLoadConfig_UsesFlagPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nlisten = \":7070\"\n"), 0600))

	originalConfig := flagConfig
	flagConfig = path
	defer func() { flagConfig = originalConfig }()

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Listen)
}

func TestBuildPipeline_RequiresConfiguration(t *testing.T) {
	tests := []struct {
		name string
		cfg  configfile.Config
		want string
	}{
		{"missing base url", configfile.Config{}, "ml.base_url"},
		{
			"missing dsn",
			configfile.Config{ML: configfile.MLConfig{BaseURL: "https://example.com"}},
			"dsn",
		},
		{
			"missing credentials",
			configfile.Config{
				ML:       configfile.MLConfig{BaseURL: "https://example.com"},
				Database: configfile.DatabaseConfig{DSN: "postgres://localhost/veritas"},
			},
			"credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildPipeline(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

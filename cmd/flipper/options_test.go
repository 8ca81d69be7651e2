package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-flipper/internal/config"
	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

type OptionsTestSuite struct {
	suite.Suite
	dir string
}

func TestOptionsSuite(t *testing.T) {
	suite.Run(t, new(OptionsTestSuite))
}

func (suite *OptionsTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()

	for _, key := range []string{config.EnvPriceAPIURL, config.EnvPolygonAPIKey, config.EnvStorePath, config.EnvLogLevel} {
		suite.T().Setenv(key, "")
		os.Unsetenv(key)
	}
}

func (suite *OptionsTestSuite) write(name string, content string) string {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *OptionsTestSuite) TestDefaults() {
	cfg, err := resolveConfig(runOptions{})
	suite.Require().NoError(err)
	suite.Equal(config.Default().StorePath(), cfg.StorePath())
	suite.Equal("info", cfg.Logging.Level)
	suite.Empty(cfg.Lists)
}

func (suite *OptionsTestSuite) TestLayering() {
	configPath := suite.write("config.yaml", `
store:
  path: from-file.db
logging:
  level: debug
portfolio:
  selection_method: best
lists:
  - Large Cap Stockholm
`)
	envPath := suite.write(".env", "FLIPPER_STORE_PATH=from-env.db\nPRICE_API_URL=http://prices:4000/graphql\n")

	tests := []struct {
		name      string
		opts      runOptions
		storePath string
		logLevel  string
		lists     []string
	}{
		{
			name:      "file only",
			opts:      runOptions{ConfigPath: configPath},
			storePath: "from-file.db",
			logLevel:  "debug",
			lists:     []string{"Large Cap Stockholm"},
		},
		{
			name:      "environment overrides file",
			opts:      runOptions{ConfigPath: configPath, EnvFile: envPath},
			storePath: "from-env.db",
			logLevel:  "debug",
			lists:     []string{"Large Cap Stockholm"},
		},
		{
			name:      "flags override environment",
			opts:      runOptions{ConfigPath: configPath, EnvFile: envPath, StorePath: "from-flag.db", LogLevel: "error", Lists: []string{"Mid Cap Stockholm"}},
			storePath: "from-flag.db",
			logLevel:  "error",
			lists:     []string{"Mid Cap Stockholm"},
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			cfg, err := resolveConfig(tc.opts)
			suite.Require().NoError(err)
			suite.Equal(tc.storePath, cfg.StorePath())
			suite.Equal(tc.logLevel, cfg.Logging.Level)
			suite.Equal(tc.lists, cfg.Lists)
			suite.Equal(types.SelectionBest, cfg.Portfolio.SelectionMethod)
		})
	}

	cfg, err := resolveConfig(runOptions{EnvFile: envPath})
	suite.Require().NoError(err)
	suite.Equal("http://prices:4000/graphql", cfg.DataSource.URL)
}

func (suite *OptionsTestSuite) TestMissingEnvFileIsSkipped() {
	cfg, err := resolveConfig(runOptions{EnvFile: filepath.Join(suite.dir, "missing.env")})
	suite.Require().NoError(err)
	suite.Equal(config.DefaultStorePath, cfg.StorePath())
}

func (suite *OptionsTestSuite) TestInvalidLogLevelFlag() {
	_, err := resolveConfig(runOptions{LogLevel: "loud"})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *OptionsTestSuite) TestMissingConfigFile() {
	_, err := resolveConfig(runOptions{ConfigPath: filepath.Join(suite.dir, "missing.yaml")})
	suite.Error(err)
}

func (suite *OptionsTestSuite) TestNewLogger() {
	cfg := config.Default()
	cfg.Logging.Level = "warn"

	log, err := newLogger(cfg)
	suite.Require().NoError(err)
	suite.NotNil(log)
}

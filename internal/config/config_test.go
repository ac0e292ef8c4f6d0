package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fhtsuite/domain/fht"
	"fhtsuite/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FHT_CONFIG", "FHT_ALPHA", "FHT_BETA", "FHT_EPSILON", "FHT_SEED", "FHT_WORKERS",
		"FHT_SIZES", "FHT_PATTERNS", "DB_DRIVER", "DATABASE_URL", "PORT", "GIN_MODE",
		"OUTPUT_DIR", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, fht.DefaultParameters(), cfg.Transform)
	assert.Equal(t, int64(42), cfg.Suite.Seed)
	assert.Equal(t, []int{1000, 10000, 50000}, cfg.Suite.Sizes)
	assert.Equal(t, []string{"fibonacci", "golden_ratio", "prime_modulo", "random"}, cfg.Suite.Patterns)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FHT_ALPHA", "2")
	t.Setenv("FHT_EPSILON", "1e-9")
	t.Setenv("FHT_SEED", "7")
	t.Setenv("FHT_WORKERS", "4")
	t.Setenv("FHT_SIZES", "100, 10")
	t.Setenv("FHT_PATTERNS", "fractal, linear")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/fht?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Transform.Alpha)
	assert.Equal(t, 1e-9, cfg.Transform.Epsilon)
	assert.Equal(t, int64(7), cfg.Suite.Seed)
	assert.Equal(t, 4, cfg.Suite.Workers)
	assert.Equal(t, []int{100, 10}, cfg.Suite.Sizes)
	assert.Equal(t, []string{"fractal", "linear"}, cfg.Suite.Patterns)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoad_PostgresURLSelectsDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgresql://localhost/fht")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoad_InvalidEpsilon(t *testing.T) {
	clearEnv(t)

	t.Setenv("FHT_EPSILON", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	t.Setenv("FHT_EPSILON", "tiny")
	_, err = Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "fht.yaml")
	content := `
transform:
  alpha: 1.5
  beta: 3
  epsilon: 0.5
suite:
  seed: 9
  sizes: [10, 20]
  patterns: [random]
output:
  dir: out
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("FHT_CONFIG", path)
	t.Setenv("FHT_SEED", "11")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, fht.Parameters{Alpha: 1.5, Beta: 3, Epsilon: 0.5}, cfg.Transform)
	assert.Equal(t, int64(11), cfg.Suite.Seed)
	assert.Equal(t, []int{10, 20}, cfg.Suite.Sizes)
	assert.Equal(t, []string{"random"}, cfg.Suite.Patterns)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, 1, cfg.Suite.Workers)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("suite:\n  sizes: [0]\n"), 0o644))
	_, err = LoadFile(path)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestValidate_Driver(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())
}

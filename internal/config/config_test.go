package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, ":3000", cfg.Server.Addr())
	assert.Equal(t, StorageFile, cfg.Storage.Driver)
	assert.Equal(t, "./data", cfg.Storage.DataDir)
	assert.Equal(t, "inline", cfg.Upload.Storage)
	assert.True(t, cfg.Import.Strict)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	yaml := `
server:
  port: 8080
storage:
  driver: redis
import:
  strict: false
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_HOST", "cache")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, StorageRedis, cfg.Storage.Driver)
	assert.False(t, cfg.Import.Strict)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{Driver: "sqlite"},
		Upload:  UploadConfig{Storage: "inline"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = StorageMySQL
	assert.NoError(t, cfg.Validate())

	cfg.Upload.Storage = "minio"
	assert.Error(t, cfg.Validate())
	cfg.MinIO.Endpoint = "localhost:9000"
	assert.NoError(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "bms", SSLMode: "disable"}
	assert.Contains(t, db.DSN(), "host=db port=5432 user=u password=p dbname=bms sslmode=disable")
	db.Port = 3306
	assert.Equal(t, "u:p@tcp(db:3306)/bms?charset=utf8mb4&parseTime=True&loc=Local", db.MySQLDSN())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

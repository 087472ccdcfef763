package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileKVInitCreatesDataFiles(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)

	repos := NewRepositories(kv, zap.NewNop())
	require.NoError(t, repos.Init(context.Background()))

	raw, err := os.ReadFile(filepath.Join(dir, "batteries.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	_, err = os.Stat(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)

	settings, err := repos.Settings.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultSettings(), settings)
}

func TestFileKVRoundTrip(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	key := ImageKey("before", "BT/001")
	require.NoError(t, kv.Put(ctx, key, []byte(`[{"id":"1"}]`)))
	got, err := kv.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(got))

	require.NoError(t, kv.Delete(ctx, key))
	require.NoError(t, kv.Delete(ctx, key))
	_, err = kv.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettingsMalformedFallsBackToDefaults(t *testing.T) {
	kv := NewMemoryKV()
	repo := NewSettingsRepository(kv, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, KeySettings, []byte("oops")))

	settings, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultSettings(), settings)
}

func TestSettingsWrongShapeReturnsError(t *testing.T) {
	kv := NewMemoryKV()
	repo := NewSettingsRepository(kv, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, KeySettings, []byte(`{"batteryModels":"K174"}`)))

	_, err := repo.Get(ctx)
	assert.Error(t, err)
}

func TestSettingsMissingListFilledFromDefaults(t *testing.T) {
	kv := NewMemoryKV()
	repo := NewSettingsRepository(kv, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, KeySettings, []byte(`{"batteryModels":[{"id":1,"code":"K179","name":"K179","createdAt":"2024-01-01"}]}`)))

	settings, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Len(t, settings.BatteryModels, 1)
	assert.Equal(t, "K179", settings.BatteryModels[0].Code)
	assert.Len(t, settings.ReturnReasons, 10)
}

func TestImageRepository(t *testing.T) {
	repo := NewImageRepository(NewMemoryKV(), zap.NewNop())
	ctx := context.Background()

	images, err := repo.Get(ctx, "after", "BT1")
	require.NoError(t, err)
	assert.Empty(t, images)

	want := []entity.Image{{ID: "1", Name: "a.png", Size: 3, Data: "data:image/png;base64,AAA", Type: "image/png"}}
	require.NoError(t, repo.Save(ctx, "after", "BT1", want))
	images, err = repo.Get(ctx, "after", "BT1")
	require.NoError(t, err)
	assert.Equal(t, want, images)

	require.NoError(t, repo.Save(ctx, "after", "BT1", nil))
	images, err = repo.Get(ctx, "after", "BT1")
	require.NoError(t, err)
	assert.Empty(t, images)
}

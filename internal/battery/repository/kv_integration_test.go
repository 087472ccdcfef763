package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/repository"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func exerciseStore(t *testing.T, kv repository.KVStore) {
	t.Helper()
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, kv.Put(ctx, "k", []byte(`[1]`)))
	require.NoError(t, kv.Put(ctx, "k", []byte(`[1,2]`)))
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(got))

	require.NoError(t, kv.Delete(ctx, "k"))
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	repos := repository.NewRepositories(kv, zap.NewNop())
	require.NoError(t, repos.Init(ctx))
	created, err := repos.Record.Create(ctx, entity.Record{BatteryBtCode: "BT1"})
	require.NoError(t, err)
	fetched, err := repos.Record.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "BT1", fetched.BatteryBtCode)
}

func TestGormKV(t *testing.T) {
	db := testutil.SetupTestDB(t)
	kv := repository.NewGormKV(db)
	require.NoError(t, kv.Migrate())
	exerciseStore(t, kv)
}

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	prefix := "bms_test:" + t.Name() + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := rdb.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			rdb.Del(ctx, keys...)
		}
	})
	exerciseStore(t, repository.NewRedisKV(rdb, prefix))
}

func TestMemoryKV(t *testing.T) {
	exerciseStore(t, repository.NewMemoryKV())
}

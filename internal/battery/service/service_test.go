package service

import (
	"context"
	"testing"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/repository"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/sse"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServices(t *testing.T, opts Options) (*Services, *sse.Hub) {
	t.Helper()
	logger := zap.NewNop()
	repos := repository.NewRepositories(repository.NewMemoryKV(), logger)
	require.NoError(t, repos.Init(context.Background()))
	hub := sse.NewHub(logger)
	return NewServices(repos, hub, opts, logger), hub
}

func subscribe(t *testing.T, hub *sse.Hub) *sse.Client {
	t.Helper()
	client := &sse.Client{ID: t.Name(), Events: make(chan sse.Event, 16)}
	hub.Register(client)
	t.Cleanup(func() { hub.Unregister(client.ID) })
	return client
}

func record(btCode, model, status string) entity.Record {
	rec := entity.Record{
		BatteryBtCode: btCode,
		BatteryModel:  model,
		RepairStatus:  status,
	}
	rec.Normalize()
	return rec
}

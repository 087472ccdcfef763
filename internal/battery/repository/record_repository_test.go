package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fakeRecord() entity.Record {
	return entity.Record{
		BatteryBtCode:  "BT" + gofakeit.Numerify("##########"),
		BMSNumber:      gofakeit.Numerify("#############"),
		BatteryModel:   gofakeit.RandomString([]string{"K174", "K175", "K176"}),
		CycleCount:     gofakeit.Numerify("###"),
		ReturnReason:   "高低温报警",
		ReturnDate:     "2024-03-01",
		ReturnArea:     gofakeit.City(),
		RepairStatus:   entity.StatusRepairing,
		RepairCost:     "130",
		ShippingCost:   "25",
		LaborCost:      "20",
		Responsibility: "日升质",
		BeforeImages:   []entity.Image{},
		AfterImages:    []entity.Image{},
	}
}

func newRecordRepo(t *testing.T) (*RecordRepository, *MemoryKV) {
	t.Helper()
	kv := NewMemoryKV()
	repos := NewRepositories(kv, zap.NewNop())
	require.NoError(t, repos.Init(context.Background()))
	return repos.Record, kv
}

func TestRecordCreateThenGetByID(t *testing.T) {
	repo, _ := newRecordRepo(t)
	ctx := context.Background()

	input := fakeRecord()
	created, err := repo.Create(ctx, input)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	expected := input
	expected.ID = created.ID
	assert.Equal(t, expected, *got)
}

func TestRecordIDsAreUniqueWithinSameMillisecond(t *testing.T) {
	repo, _ := newRecordRepo(t)
	fixed := time.UnixMilli(1700000000000)
	repo.SetClock(func() time.Time { return fixed })
	ctx := context.Background()

	a, err := repo.Create(ctx, fakeRecord())
	require.NoError(t, err)
	b, err := repo.Create(ctx, fakeRecord())
	require.NoError(t, err)

	assert.Equal(t, "1700000000000", a.ID)
	assert.Equal(t, "1700000000001", b.ID)
}

func TestRecordDeleteMissingLeavesCollectionUnchanged(t *testing.T) {
	repo, _ := newRecordRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, fakeRecord())
		require.NoError(t, err)
	}
	before, err := repo.GetAll(ctx)
	require.NoError(t, err)

	err = repo.Delete(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)

	after, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
	assert.Equal(t, before, after)
}

func TestRecordDelete(t *testing.T) {
	repo, _ := newRecordRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, fakeRecord())
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordUpdateShallowMerge(t *testing.T) {
	repo, _ := newRecordRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, fakeRecord())
	require.NoError(t, err)

	patch := map[string]json.RawMessage{
		"id":           json.RawMessage(`"hijack"`),
		"repairStatus": json.RawMessage(`"已维修"`),
		"repairDate":   json.RawMessage(`"2024-03-05"`),
		"unknownField": json.RawMessage(`123`),
	}
	updated, err := repo.Update(ctx, created.ID, patch)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, entity.StatusRepaired, updated.RepairStatus)
	assert.Equal(t, "2024-03-05", updated.RepairDate)
	assert.Equal(t, created.BatteryBtCode, updated.BatteryBtCode)
	assert.Equal(t, created.RepairCost, updated.RepairCost)

	_, err = repo.Update(ctx, "missing", patch)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Update(ctx, created.ID, map[string]json.RawMessage{"repairCost": json.RawMessage(`{"x":1}`)})
	assert.ErrorIs(t, err, ErrInvalidPatch)
}

func TestRecordMalformedDataIsEmpty(t *testing.T) {
	repo, kv := newRecordRepo(t)
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, KeyBatteries, []byte("{not json")))

	records, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordNumericFieldsLoad(t *testing.T) {
	repo, kv := newRecordRepo(t)
	ctx := context.Background()
	stored := `[{"id":"1","batteryBtCode":"BT1","cycleCount":111,"repairCost":130,` +
		`"shippingCost":12.5,"laborCost":null,"repairStatus":"已维修"}]`
	require.NoError(t, kv.Put(ctx, KeyBatteries, []byte(stored)))

	records, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "111", records[0].CycleCount)
	assert.Equal(t, "130", records[0].RepairCost)
	assert.Equal(t, "12.5", records[0].ShippingCost)
	assert.Empty(t, records[0].LaborCost)
	assert.Equal(t, []entity.Image{}, records[0].BeforeImages)

	_, err = repo.Create(ctx, fakeRecord())
	require.NoError(t, err)
	records, err = repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "BT1", records[0].BatteryBtCode)
}

func TestRecordWrongShapeIsNotOverwritten(t *testing.T) {
	repo, kv := newRecordRepo(t)
	ctx := context.Background()
	stored := []byte(`[{"id":"1","batteryBtCode":{"nested":true}}]`)
	require.NoError(t, kv.Put(ctx, KeyBatteries, stored))

	_, err := repo.GetAll(ctx)
	require.Error(t, err)

	_, err = repo.Create(ctx, fakeRecord())
	require.Error(t, err)

	data, err := kv.Get(ctx, KeyBatteries)
	require.NoError(t, err)
	assert.Equal(t, stored, data)
}

func TestRecordUpdateTrimsValues(t *testing.T) {
	repo, _ := newRecordRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, fakeRecord())
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, map[string]json.RawMessage{
		"batteryModel": json.RawMessage(`"  K179 "`),
		"repairCost":   json.RawMessage(`88`),
	})
	require.NoError(t, err)
	assert.Equal(t, "K179", updated.BatteryModel)
	assert.Equal(t, "88", updated.RepairCost)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "K179", got.BatteryModel)
}

func TestRecordAppendAndReplace(t *testing.T) {
	repo, _ := newRecordRepo(t)
	ctx := context.Background()

	existing, err := repo.Create(ctx, fakeRecord())
	require.NoError(t, err)

	dup := fakeRecord()
	dup.ID = existing.ID
	added, err := repo.Append(ctx, []entity.Record{fakeRecord(), dup})
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.NotEqual(t, existing.ID, added[1].ID)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	replaced, err := repo.ReplaceAll(ctx, []entity.Record{fakeRecord()})
	require.NoError(t, err)
	all, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, replaced, all)
}

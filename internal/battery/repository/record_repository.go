package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrInvalidPatch 更新内容无法合并到记录
var ErrInvalidPatch = errors.New("invalid record patch")

// RecordRepository 维修记录仓库
// 每次修改都读取完整列表、修改后整体写回
type RecordRepository struct {
	kv     KVStore
	logger *zap.Logger
	mu     sync.Mutex
	now    func() time.Time
}

// NewRecordRepository 创建维修记录仓库
func NewRecordRepository(kv KVStore, logger *zap.Logger) *RecordRepository {
	return &RecordRepository{kv: kv, logger: logger, now: time.Now}
}

// SetClock 替换时钟（测试用）
func (r *RecordRepository) SetClock(now func() time.Time) {
	r.now = now
}

func (r *RecordRepository) ensure(ctx context.Context) error {
	if _, err := r.kv.Get(ctx, KeyBatteries); errors.Is(err, ErrNotFound) {
		return r.save(ctx, []entity.Record{})
	} else if err != nil {
		return err
	}
	return nil
}

func (r *RecordRepository) load(ctx context.Context) ([]entity.Record, error) {
	data, err := r.kv.Get(ctx, KeyBatteries)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []entity.Record{}, nil
		}
		return nil, err
	}

	var records []entity.Record
	if err := json.Unmarshal(data, &records); err != nil {
		if !json.Valid(data) {
			r.logger.Warn("Malformed battery data, treating as empty", zap.Error(err))
			return []entity.Record{}, nil
		}
		// 合法JSON但结构不符：拒绝读写，避免后续写入覆盖原数据
		return nil, fmt.Errorf("decode batteries: %w", err)
	}
	for i := range records {
		if records[i].BeforeImages == nil {
			records[i].BeforeImages = []entity.Image{}
		}
		if records[i].AfterImages == nil {
			records[i].AfterImages = []entity.Image{}
		}
	}
	if records == nil {
		records = []entity.Record{}
	}
	return records, nil
}

func (r *RecordRepository) save(ctx context.Context, records []entity.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal batteries: %w", err)
	}
	return r.kv.Put(ctx, KeyBatteries, data)
}

// nextID 以毫秒时间戳作为ID，同一毫秒内冲突时顺延
func (r *RecordRepository) nextID(used map[string]struct{}) string {
	ms := r.now().UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if _, ok := used[id]; !ok {
			used[id] = struct{}{}
			return id
		}
		ms++
	}
}

func usedIDs(records []entity.Record) map[string]struct{} {
	return lo.SliceToMap(records, func(rec entity.Record) (string, struct{}) {
		return rec.ID, struct{}{}
	})
}

// GetAll 获取全部记录
func (r *RecordRepository) GetAll(ctx context.Context) ([]entity.Record, error) {
	return r.load(ctx)
}

// GetByID 根据ID获取记录
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*entity.Record, error) {
	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := lo.Find(records, func(rec entity.Record) bool { return rec.ID == id })
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// Create 创建记录并分配ID
func (r *RecordRepository) Create(ctx context.Context, rec entity.Record) (*entity.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	rec.ID = r.nextID(usedIDs(records))
	records = append(records, rec)
	if err := r.save(ctx, records); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update 浅合并：patch 中出现的字段覆盖原值，ID 不可修改
func (r *RecordRepository) Update(ctx context.Context, id string, patch map[string]json.RawMessage) (*entity.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	_, index, ok := lo.FindIndexOf(records, func(rec entity.Record) bool { return rec.ID == id })
	if !ok {
		return nil, ErrNotFound
	}

	merged, err := mergeRecord(records[index], patch)
	if err != nil {
		return nil, err
	}
	records[index] = merged
	if err := r.save(ctx, records); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Delete 删除记录，不存在时返回 ErrNotFound 且不写入
func (r *RecordRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return err
	}
	filtered := lo.Reject(records, func(rec entity.Record, _ int) bool { return rec.ID == id })
	if len(filtered) == len(records) {
		return ErrNotFound
	}
	return r.save(ctx, filtered)
}

// Append 追加多条记录（导入），缺少或重复的ID重新分配
func (r *RecordRepository) Append(ctx context.Context, recs []entity.Record) ([]entity.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	added := r.assignIDs(usedIDs(records), recs)
	if err := r.save(ctx, append(records, added...)); err != nil {
		return nil, err
	}
	return added, nil
}

// ReplaceAll 用给定记录替换全部数据（恢复备份、覆盖导入）
func (r *RecordRepository) ReplaceAll(ctx context.Context, recs []entity.Record) ([]entity.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := r.assignIDs(make(map[string]struct{}), recs)
	if err := r.save(ctx, replaced); err != nil {
		return nil, err
	}
	return replaced, nil
}

func (r *RecordRepository) assignIDs(used map[string]struct{}, recs []entity.Record) []entity.Record {
	out := make([]entity.Record, 0, len(recs))
	for _, rec := range recs {
		if _, dup := used[rec.ID]; rec.ID == "" || dup {
			rec.ID = r.nextID(used)
		} else {
			used[rec.ID] = struct{}{}
		}
		if rec.BeforeImages == nil {
			rec.BeforeImages = []entity.Image{}
		}
		if rec.AfterImages == nil {
			rec.AfterImages = []entity.Image{}
		}
		out = append(out, rec)
	}
	return out
}

func mergeRecord(old entity.Record, patch map[string]json.RawMessage) (entity.Record, error) {
	base, err := json.Marshal(old)
	if err != nil {
		return old, fmt.Errorf("marshal record: %w", err)
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(base, &fields); err != nil {
		return old, fmt.Errorf("unmarshal record: %w", err)
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return old, fmt.Errorf("marshal record: %w", err)
	}
	var out entity.Record
	if err := json.Unmarshal(merged, &out); err != nil {
		return old, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	out.ID = old.ID
	out.Normalize()
	return out, nil
}

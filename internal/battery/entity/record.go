package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotScalar 字段值不是字符串/数字/布尔/null
var ErrNotScalar = errors.New("expected a scalar value")

// 维修状态
const (
	StatusPending      = "待维修"
	StatusRepairing    = "维修中"
	StatusRepaired     = "已维修"
	StatusUnrepairable = "无法维修"
)

// Statuses 维修状态（展示顺序）
var Statuses = []string{StatusPending, StatusRepairing, StatusRepaired, StatusUnrepairable}

// Image 维修前/后图片
type Image struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Data string `json:"data"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// Record 电池返厂维修记录
type Record struct {
	ID             string  `json:"id"`
	BatteryBtCode  string  `json:"batteryBtCode"`
	BMSNumber      string  `json:"bmsNumber"`
	BatteryModel   string  `json:"batteryModel"`
	CycleCount     string  `json:"cycleCount"`
	ReturnReason   string  `json:"returnReason"`
	ReturnDate     string  `json:"returnDate"`
	ReturnArea     string  `json:"returnArea"`
	RepairStatus   string  `json:"repairStatus"`
	RepairItem     string  `json:"repairItem"`
	RepairCost     string  `json:"repairCost"`
	RepairDate     string  `json:"repairDate"`
	ExpressCompany string  `json:"expressCompany"`
	ShippingCost   string  `json:"shippingCost"`
	Responsibility string  `json:"responsibility"`
	LaborCost      string  `json:"laborCost"`
	CauseAnalysis  string  `json:"causeAnalysis"`
	Improvements   string  `json:"improvements"`
	RepairMeasures string  `json:"repairMeasures"`
	BeforeImages   []Image `json:"beforeRepairImages"`
	AfterImages    []Image `json:"afterRepairImages"`
}

// NewRecord 按规范字段创建记录，并补齐默认值
func NewRecord(fields map[string]string) Record {
	var r Record
	for _, f := range CanonicalFields {
		if v, ok := fields[f.Header]; ok {
			f.set(&r, v)
		}
	}
	r.Normalize()
	return r
}

// Normalize 去除首尾空白，图片列表不为nil
func (r *Record) Normalize() {
	for _, f := range CanonicalFields {
		f.set(r, strings.TrimSpace(f.get(r)))
	}
	if r.BeforeImages == nil {
		r.BeforeImages = []Image{}
	}
	if r.AfterImages == nil {
		r.AfterImages = []Image{}
	}
}

// Value 按中文表头取字段值
func (r *Record) Value(header string) string {
	if f, ok := fieldByHeader[header]; ok {
		return f.get(r)
	}
	return ""
}

// Values 按规范表头顺序导出字段值
func (r *Record) Values() []string {
	out := make([]string, len(CanonicalFields))
	for i, f := range CanonicalFields {
		out[i] = f.get(r)
	}
	return out
}

// Status 维修状态，未填写视为待维修
func (r *Record) Status() string {
	if r.RepairStatus == "" {
		return StatusPending
	}
	return r.RepairStatus
}

// IsRepaired 是否已维修
func (r *Record) IsRepaired() bool {
	return r.Status() == StatusRepaired
}

// UnmarshalJSON 宽松解析：ID 和规范字段接受字符串、数字、布尔或 null，一律转为字符串。
// 旧数据中的 cycleCount、repairCost 等可能以数字保存。
func (r *Record) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Record
	var err error
	if v, ok := raw["id"]; ok {
		if out.ID, err = scalarString(v); err != nil {
			return fmt.Errorf("id: %w", err)
		}
	}
	for _, f := range CanonicalFields {
		v, ok := raw[f.Key]
		if !ok {
			continue
		}
		s, err := scalarString(v)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Key, err)
		}
		f.set(&out, s)
	}
	if out.BeforeImages, err = decodeImages(raw["beforeRepairImages"]); err != nil {
		return fmt.Errorf("beforeRepairImages: %w", err)
	}
	if out.AfterImages, err = decodeImages(raw["afterRepairImages"]); err != nil {
		return fmt.Errorf("afterRepairImages: %w", err)
	}
	*r = out
	return nil
}

func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case 'n':
		return "", nil
	case '{', '[':
		return "", ErrNotScalar
	}
	// 数字和布尔保留原文
	return string(raw), nil
}

func decodeImages(raw json.RawMessage) ([]Image, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var images []Image
	if err := json.Unmarshal(raw, &images); err != nil {
		return nil, err
	}
	return images, nil
}

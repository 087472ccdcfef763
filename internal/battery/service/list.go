package service

import (
	"strings"
	"time"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/samber/lo"
)

// 分页默认值
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery 记录列表查询条件
type ListQuery struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	DateRange string `form:"dateRange"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListResult 分页结果
type ListResult struct {
	Items      []entity.Record `json:"items"`
	Pagination Pagination      `json:"pagination"`
}

// FilterRecords 按关键字（BT码/型号/BMS编号，不区分大小写）、状态、返厂日期范围过滤
func FilterRecords(records []entity.Record, q ListQuery) []entity.Record {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	dateRange := strings.TrimSpace(q.DateRange)

	return lo.Filter(records, func(rec entity.Record, _ int) bool {
		if search != "" &&
			!strings.Contains(strings.ToLower(rec.BatteryBtCode), search) &&
			!strings.Contains(strings.ToLower(rec.BatteryModel), search) &&
			!strings.Contains(strings.ToLower(rec.BMSNumber), search) {
			return false
		}
		if q.Status != "" && rec.RepairStatus != q.Status {
			return false
		}
		if dateRange != "" && rec.ReturnDate != "" && !DateInRange(rec.ReturnDate, dateRange) {
			return false
		}
		return true
	})
}

// DateInRange 判断日期是否落在 "YYYY-MM-DD ~ YYYY-MM-DD" 范围内（含两端）
func DateInRange(date, dateRange string) bool {
	d, ok := ParseDate(date, time.Local)
	if !ok {
		return false
	}
	parts := strings.Split(dateRange, "~")
	if len(parts) != 2 {
		return false
	}
	start, ok1 := ParseDate(strings.TrimSpace(parts[0]), time.Local)
	end, ok2 := ParseDate(strings.TrimSpace(parts[1]), time.Local)
	if !ok1 || !ok2 {
		return false
	}
	return !d.Before(start) && !d.After(end)
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "2006-1-2", "2006/1/2", "2006.01.02", time.RFC3339}

// ParseDate 解析日期，只保留年月日
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			t = t.In(loc)
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
		}
	}
	return time.Time{}, false
}

// Paginate 分页，page 从1开始
func Paginate(records []entity.Record, page, pageSize int) *ListResult {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	items := []entity.Record{}
	if start < total {
		items = records[start:min(start+pageSize, total)]
	}
	return &ListResult{
		Items: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

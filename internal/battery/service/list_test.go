package service

import (
	"testing"
	"time"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/stretchr/testify/assert"
)

func TestFilterRecords(t *testing.T) {
	a := record("BT-ABC-1", "K174", entity.StatusPending)
	a.BMSNumber = "BMS001"
	a.ReturnDate = "2024-03-10"
	b := record("BT-XYZ-2", "K175", entity.StatusRepaired)
	b.ReturnDate = "2024-04-01"
	c := record("BT-XYZ-3", "K174", "")
	records := []entity.Record{a, b, c}

	codes := func(rs []entity.Record) []string {
		out := []string{}
		for _, r := range rs {
			out = append(out, r.BatteryBtCode)
		}
		return out
	}

	tests := []struct {
		name string
		q    ListQuery
		want []string
	}{
		{"no filter", ListQuery{}, []string{"BT-ABC-1", "BT-XYZ-2", "BT-XYZ-3"}},
		{"search is case-insensitive", ListQuery{Search: "abc"}, []string{"BT-ABC-1"}},
		{"search model", ListQuery{Search: "k175"}, []string{"BT-XYZ-2"}},
		{"search bms", ListQuery{Search: "bms001"}, []string{"BT-ABC-1"}},
		{"status", ListQuery{Status: entity.StatusRepaired}, []string{"BT-XYZ-2"}},
		{"date range inclusive", ListQuery{DateRange: "2024-03-01 ~ 2024-03-10"}, []string{"BT-ABC-1", "BT-XYZ-3"}},
		{"malformed range", ListQuery{DateRange: "sometime"}, []string{"BT-XYZ-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(FilterRecords(records, tt.q)))
		})
	}
}

func TestPaginate(t *testing.T) {
	records := make([]entity.Record, 45)

	res := Paginate(records, 0, 0)
	assert.Len(t, res.Items, DefaultPageSize)
	assert.Equal(t, Pagination{Page: 1, PageSize: 20, Total: 45, TotalPages: 3}, res.Pagination)

	res = Paginate(records, 3, 20)
	assert.Len(t, res.Items, 5)

	res = Paginate(records, 9, 20)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)

	res = Paginate(records, 1, 1000)
	assert.Equal(t, MaxPageSize, res.Pagination.PageSize)
	assert.Len(t, res.Items, 45)
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2024-03-05", "2024/03/05", "2024/3/5", "2024-3-5", "2024.03.05"} {
		d, ok := ParseDate(s, time.Local)
		if assert.True(t, ok, s) {
			assert.Equal(t, "2024-03-05", d.Format("2006-01-02"))
		}
	}
	_, ok := ParseDate("", time.Local)
	assert.False(t, ok)
}

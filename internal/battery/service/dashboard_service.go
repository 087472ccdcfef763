package service

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/Chenxiaohui126/battery-management-system/internal/battery/repository"
	"github.com/samber/lo"
)

// 看板分组常量
const (
	ModelOther           = "其他"
	UnknownReason        = "未知原因"
	UnknownArea          = "未知地区"
	UnknownResponsibility = "未确定"

	topReasons      = 5
	topAreas        = 15
	overdueWarnDays = 7
	overdueCritDays = 15
	undatedDays     = 30
)

// DashboardModels 图表中单独展示的电池型号，其余归入“其他”
var DashboardModels = []string{"K174", "K175", "K179"}

// DashboardService 数据看板服务
type DashboardService struct {
	repo *repository.RecordRepository
	now  func() time.Time
}

// NewDashboardService 创建看板服务
func NewDashboardService(repo *repository.RecordRepository) *DashboardService {
	return &DashboardService{repo: repo, now: time.Now}
}

// Costs 费用合计
type Costs struct {
	Repair   float64 `json:"repair"`
	Shipping float64 `json:"shipping"`
	Labor    float64 `json:"labor"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

func (c *Costs) add(rec *entity.Record) {
	repair := ParseCost(rec.RepairCost)
	shipping := ParseCost(rec.ShippingCost)
	labor := ParseCost(rec.LaborCost)
	c.Repair += repair
	c.Shipping += shipping
	c.Labor += labor
	c.Total += repair + shipping + labor
	c.Count++
}

// ModelCosts 按型号统计的费用
type ModelCosts struct {
	Model string `json:"model"`
	Costs
}

// MonthlyCosts 按月统计的费用
type MonthlyCosts struct {
	Month string `json:"month"`
	Costs
}

// Count 名称 + 数量
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Breakdown 带型号分布的计数
type Breakdown struct {
	Name    string         `json:"name"`
	Count   int            `json:"count"`
	ByModel map[string]int `json:"byModel"`
}

// OverdueRecord 超期未修复记录
type OverdueRecord struct {
	ID            string `json:"id"`
	BatteryBtCode string `json:"batteryBtCode"`
	BatteryModel  string `json:"batteryModel"`
	ReturnDate    string `json:"returnDate"`
	RepairStatus  string `json:"repairStatus"`
	Days          int    `json:"days"`
}

// Dashboard 看板数据
type Dashboard struct {
	Total          int                       `json:"total"`
	StatusCounts   map[string]int            `json:"statusCounts"`
	CompletionRate float64                   `json:"completionRate"`
	ModelCounts    []Count                   `json:"modelCounts"`
	ModelCosts     []ModelCosts              `json:"modelCosts"`
	MonthlyCosts   []MonthlyCosts            `json:"monthlyCosts"`
	Reasons        []Breakdown               `json:"reasons"`
	Areas          []Breakdown               `json:"areas"`
	Responsibility []Count                   `json:"responsibility"`
	StatusByModel  map[string]map[string]int `json:"statusByModel"`
	Overdue7       []OverdueRecord           `json:"overdue7"`
	Overdue15      []OverdueRecord           `json:"overdue15"`
}

// Get 基于当前全部记录计算看板
func (s *DashboardService) Get(ctx context.Context) (*Dashboard, error) {
	records, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return BuildDashboard(records, s.now()), nil
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseCost 解析费用：取开头的数字部分，无法解析时为0
func ParseCost(s string) float64 {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// ModelGroup 型号归组
func ModelGroup(model string) string {
	if lo.Contains(DashboardModels, model) {
		return model
	}
	return ModelOther
}

func modelBuckets() map[string]int {
	m := make(map[string]int, len(DashboardModels)+1)
	for _, model := range DashboardModels {
		m[model] = 0
	}
	m[ModelOther] = 0
	return m
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// BuildDashboard 对记录做一次内存归约
func BuildDashboard(records []entity.Record, now time.Time) *Dashboard {
	d := &Dashboard{
		Total:          len(records),
		StatusCounts:   make(map[string]int, len(entity.Statuses)),
		ModelCounts:    []Count{},
		ModelCosts:     []ModelCosts{},
		MonthlyCosts:   []MonthlyCosts{},
		Reasons:        []Breakdown{},
		Areas:          []Breakdown{},
		Responsibility: []Count{},
		StatusByModel:  make(map[string]map[string]int, len(entity.Statuses)),
		Overdue7:       []OverdueRecord{},
		Overdue15:      []OverdueRecord{},
	}
	for _, status := range entity.Statuses {
		d.StatusCounts[status] = 0
		d.StatusByModel[status] = modelBuckets()
	}

	modelCosts := map[string]*ModelCosts{}
	var modelOrder []string
	monthly := map[string]*MonthlyCosts{}
	reasons := map[string]*Breakdown{}
	var reasonOrder []string
	areas := map[string]*Breakdown{}
	var areaOrder []string
	resp := map[string]int{}
	var respOrder []string

	for i := range records {
		rec := &records[i]
		status := rec.Status()
		group := ModelGroup(rec.BatteryModel)

		d.StatusCounts[status]++
		if _, ok := d.StatusByModel[status]; !ok {
			d.StatusByModel[status] = modelBuckets()
		}
		d.StatusByModel[status][group]++

		model := orDefault(rec.BatteryModel, ModelOther)
		mc, ok := modelCosts[model]
		if !ok {
			mc = &ModelCosts{Model: model}
			modelCosts[model] = mc
			modelOrder = append(modelOrder, model)
		}
		mc.add(rec)

		month := recordMonth(rec, now)
		mo, ok := monthly[month]
		if !ok {
			mo = &MonthlyCosts{Month: month}
			monthly[month] = mo
		}
		mo.add(rec)

		reason := orDefault(rec.ReturnReason, UnknownReason)
		rb, ok := reasons[reason]
		if !ok {
			rb = &Breakdown{Name: reason, ByModel: modelBuckets()}
			reasons[reason] = rb
			reasonOrder = append(reasonOrder, reason)
		}
		rb.Count++
		rb.ByModel[group]++

		area := orDefault(rec.ReturnArea, UnknownArea)
		ab, ok := areas[area]
		if !ok {
			ab = &Breakdown{Name: area, ByModel: modelBuckets()}
			areas[area] = ab
			areaOrder = append(areaOrder, area)
		}
		ab.Count++
		ab.ByModel[group]++

		r := orDefault(rec.Responsibility, UnknownResponsibility)
		if _, ok := resp[r]; !ok {
			respOrder = append(respOrder, r)
		}
		resp[r]++

		if days, ok := overdueDays(rec, now); ok && !rec.IsRepaired() {
			o := OverdueRecord{
				ID:            rec.ID,
				BatteryBtCode: rec.BatteryBtCode,
				BatteryModel:  rec.BatteryModel,
				ReturnDate:    rec.ReturnDate,
				RepairStatus:  rec.RepairStatus,
				Days:          days,
			}
			if days >= overdueWarnDays {
				d.Overdue7 = append(d.Overdue7, o)
			}
			if days >= overdueCritDays {
				d.Overdue15 = append(d.Overdue15, o)
			}
		}
	}

	if d.Total > 0 {
		d.CompletionRate = math.Round(float64(d.StatusCounts[entity.StatusRepaired])/float64(d.Total)*1000) / 10
	}

	for _, model := range modelOrder {
		d.ModelCosts = append(d.ModelCosts, *modelCosts[model])
		d.ModelCounts = append(d.ModelCounts, Count{Name: model, Count: modelCosts[model].Count})
	}

	months := lo.Keys(monthly)
	sort.Strings(months)
	for _, m := range months {
		d.MonthlyCosts = append(d.MonthlyCosts, *monthly[m])
	}

	d.Reasons = topBreakdowns(reasonOrder, reasons, topReasons)
	d.Areas = topBreakdowns(areaOrder, areas, topAreas)

	d.Responsibility = lo.Map(respOrder, func(name string, _ int) Count {
		return Count{Name: name, Count: resp[name]}
	})
	sort.SliceStable(d.Responsibility, func(i, j int) bool {
		return d.Responsibility[i].Count > d.Responsibility[j].Count
	})

	byDays := func(list []OverdueRecord) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Days > list[j].Days })
	}
	byDays(d.Overdue7)
	byDays(d.Overdue15)

	return d
}

func topBreakdowns(order []string, m map[string]*Breakdown, n int) []Breakdown {
	out := lo.Map(order, func(name string, _ int) Breakdown { return *m[name] })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// recordMonth 统计月份：优先维修日期，其次返厂日期，都没有或无法解析时按当前月
func recordMonth(rec *entity.Record, now time.Time) string {
	date := rec.RepairDate
	if date == "" {
		date = rec.ReturnDate
	}
	if t, ok := ParseDate(date, now.Location()); ok {
		return t.Format("2006-01")
	}
	return now.Format("2006-01")
}

// 日期控件未选择时遗留的占位文本，视同未填写
var placeholderDates = []string{"请选择时间", "yyyy/mm/日"}

// overdueDays 距返厂日期的天数（向上取整）；没有返厂日期按30天计
func overdueDays(rec *entity.Record, now time.Time) (int, bool) {
	if rec.ReturnDate == "" || lo.Contains(placeholderDates, rec.ReturnDate) {
		return undatedDays, true
	}
	t, ok := ParseDate(rec.ReturnDate, now.Location())
	if !ok {
		return 0, false
	}
	return int(math.Ceil(now.Sub(t).Hours() / 24)), true
}

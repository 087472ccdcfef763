package entity

// 设置列表名称（与JSON键一致）
const (
	ListBatteryModels    = "batteryModels"
	ListRepairItems      = "repairItems"
	ListReturnReasons    = "returnReasons"
	ListResponsibilities = "responsibilities"
	ListExpressCompanies = "expressCompanies"
)

// SettingsLists 所有设置列表名称
var SettingsLists = []string{
	ListBatteryModels, ListRepairItems, ListReturnReasons, ListResponsibilities, ListExpressCompanies,
}

// SettingsEntry 设置条目
type SettingsEntry struct {
	ID           int    `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// Settings 系统设置：五个独立的参考列表
type Settings struct {
	BatteryModels    []SettingsEntry `json:"batteryModels"`
	RepairItems      []SettingsEntry `json:"repairItems"`
	ReturnReasons    []SettingsEntry `json:"returnReasons"`
	Responsibilities []SettingsEntry `json:"responsibilities"`
	ExpressCompanies []SettingsEntry `json:"expressCompanies"`
}

// List 按名称取列表指针，未知名称返回nil
func (s *Settings) List(name string) *[]SettingsEntry {
	switch name {
	case ListBatteryModels:
		return &s.BatteryModels
	case ListRepairItems:
		return &s.RepairItems
	case ListReturnReasons:
		return &s.ReturnReasons
	case ListResponsibilities:
		return &s.Responsibilities
	case ListExpressCompanies:
		return &s.ExpressCompanies
	}
	return nil
}

// FillDefaults 缺失的列表用默认值补齐
func (s *Settings) FillDefaults() {
	d := DefaultSettings()
	for _, name := range SettingsLists {
		if l := s.List(name); *l == nil {
			*l = *d.List(name)
		}
	}
}

// DefaultSettings 默认设置
func DefaultSettings() *Settings {
	return &Settings{
		BatteryModels: []SettingsEntry{
			{ID: 1, Code: "K174", Name: "K174标准电池", Description: "标准容量电池，适用于XX型号车型", CreatedAt: "2023-06-01"},
			{ID: 2, Code: "K175", Name: "K175增强版电池", Description: "大容量电池，适用于XX型号车型", CreatedAt: "2023-07-15"},
			{ID: 3, Code: "K176", Name: "K176高性能电池", Description: "高性能电池，适用于XX型号车型", CreatedAt: "2023-09-10"},
		},
		RepairItems: []SettingsEntry{
			{ID: 1, Code: "RI001", Name: "BMS维修", Description: "电池管理系统相关维修", CreatedAt: "2023-06-01"},
			{ID: 2, Code: "RI002", Name: "电芯更换", Description: "电池电芯更换维修", CreatedAt: "2023-07-15"},
			{ID: 3, Code: "RI003", Name: "外壳维修", Description: "电池外壳相关维修", CreatedAt: "2023-08-01"},
			{ID: 4, Code: "RI004", Name: "锁扣更换", Description: "电池锁扣更换维修", CreatedAt: "2023-09-01"},
			{ID: 5, Code: "RI005", Name: "其他", Description: "其他类型维修", CreatedAt: "2023-09-10"},
		},
		ReturnReasons: []SettingsEntry{
			{ID: 1, Code: "R001", Name: "高低温报警", Description: "电池温度超过正常范围报警", CreatedAt: "2023-06-01"},
			{ID: 2, Code: "R002", Name: "漏胶", Description: "电池外壳漏胶问题", CreatedAt: "2023-07-15"},
			{ID: 3, Code: "R003", Name: "上壳镭雕错误", Description: "电池上壳体镭雕信息错误", CreatedAt: "2023-09-10"},
			{ID: 4, Code: "R004", Name: "电池不识别", Description: "电池无法被设备识别", CreatedAt: "2023-10-01"},
			{ID: 5, Code: "R005", Name: "锁扣损坏", Description: "电池锁扣损坏或断裂", CreatedAt: "2023-10-15"},
			{ID: 6, Code: "R006", Name: "电池离线", Description: "电池连接异常离线", CreatedAt: "2023-11-01"},
			{ID: 7, Code: "R007", Name: "压差大", Description: "电池单体压差过大", CreatedAt: "2023-11-15"},
			{ID: 8, Code: "R008", Name: "MOS异常", Description: "MOS管异常故障", CreatedAt: "2023-12-01"},
			{ID: 9, Code: "R009", Name: "单体二级欠压保护", Description: "单体电池二级欠压保护", CreatedAt: "2023-12-15"},
			{ID: 10, Code: "R010", Name: "其他", Description: "其他返厂原因", CreatedAt: "2024-01-01"},
		},
		Responsibilities: []SettingsEntry{
			{ID: 1, Code: "RS01", Name: "日升质", Description: "日升质生产问题", CreatedAt: "2023-06-01"},
			{ID: 2, Code: "RS02", Name: "菲尼基", Description: "菲尼基生产问题", CreatedAt: "2023-07-15"},
			{ID: 3, Code: "RS03", Name: "用户", Description: "用户使用不当", CreatedAt: "2023-09-10"},
			{ID: 4, Code: "RS04", Name: "立方", Description: "立方责任问题", CreatedAt: "2023-10-05"},
		},
		ExpressCompanies: []SettingsEntry{
			{ID: 1, Code: "EX01", Name: "跨越", ContactPhone: "95338", CreatedAt: "2023-06-01"},
			{ID: 2, Code: "EX02", Name: "顺丰", ContactPhone: "95338", CreatedAt: "2023-07-15"},
			{ID: 3, Code: "EX03", Name: "中通", ContactPhone: "95311", CreatedAt: "2023-09-10"},
			{ID: 4, Code: "EX04", Name: "圆通", ContactPhone: "95554", CreatedAt: "2023-10-05"},
			{ID: 5, Code: "EX05", Name: "韵达", ContactPhone: "95546", CreatedAt: "2023-11-03"},
		},
	}
}

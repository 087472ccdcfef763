package entity

// Field 规范字段：中文表头与记录属性的对应关系
type Field struct {
	Header  string
	Key     string
	Numeric bool // 费用类字段，表格导入缺失时记为 "0"
	get     func(*Record) string
	set     func(*Record, string)
}

// CanonicalFields 导入/导出共用的18个规范字段，顺序固定
var CanonicalFields = []Field{
	{Header: "电池BT码", Key: "batteryBtCode",
		get: func(r *Record) string { return r.BatteryBtCode }, set: func(r *Record, v string) { r.BatteryBtCode = v }},
	{Header: "BMS编号", Key: "bmsNumber",
		get: func(r *Record) string { return r.BMSNumber }, set: func(r *Record, v string) { r.BMSNumber = v }},
	{Header: "电池型号", Key: "batteryModel",
		get: func(r *Record) string { return r.BatteryModel }, set: func(r *Record, v string) { r.BatteryModel = v }},
	{Header: "循环次数", Key: "cycleCount",
		get: func(r *Record) string { return r.CycleCount }, set: func(r *Record, v string) { r.CycleCount = v }},
	{Header: "返厂原因", Key: "returnReason",
		get: func(r *Record) string { return r.ReturnReason }, set: func(r *Record, v string) { r.ReturnReason = v }},
	{Header: "返厂时间", Key: "returnDate",
		get: func(r *Record) string { return r.ReturnDate }, set: func(r *Record, v string) { r.ReturnDate = v }},
	{Header: "客退地区", Key: "returnArea",
		get: func(r *Record) string { return r.ReturnArea }, set: func(r *Record, v string) { r.ReturnArea = v }},
	{Header: "维修状态", Key: "repairStatus",
		get: func(r *Record) string { return r.RepairStatus }, set: func(r *Record, v string) { r.RepairStatus = v }},
	{Header: "维修项目", Key: "repairItem",
		get: func(r *Record) string { return r.RepairItem }, set: func(r *Record, v string) { r.RepairItem = v }},
	{Header: "维修费用", Key: "repairCost", Numeric: true,
		get: func(r *Record) string { return r.RepairCost }, set: func(r *Record, v string) { r.RepairCost = v }},
	{Header: "维修时间", Key: "repairDate",
		get: func(r *Record) string { return r.RepairDate }, set: func(r *Record, v string) { r.RepairDate = v }},
	{Header: "快递公司", Key: "expressCompany",
		get: func(r *Record) string { return r.ExpressCompany }, set: func(r *Record, v string) { r.ExpressCompany = v }},
	{Header: "运费金额", Key: "shippingCost", Numeric: true,
		get: func(r *Record) string { return r.ShippingCost }, set: func(r *Record, v string) { r.ShippingCost = v }},
	{Header: "责任归属", Key: "responsibility",
		get: func(r *Record) string { return r.Responsibility }, set: func(r *Record, v string) { r.Responsibility = v }},
	{Header: "维修工时费", Key: "laborCost", Numeric: true,
		get: func(r *Record) string { return r.LaborCost }, set: func(r *Record, v string) { r.LaborCost = v }},
	{Header: "原因分析", Key: "causeAnalysis",
		get: func(r *Record) string { return r.CauseAnalysis }, set: func(r *Record, v string) { r.CauseAnalysis = v }},
	{Header: "改善措施", Key: "improvements",
		get: func(r *Record) string { return r.Improvements }, set: func(r *Record, v string) { r.Improvements = v }},
	{Header: "维修措施", Key: "repairMeasures",
		get: func(r *Record) string { return r.RepairMeasures }, set: func(r *Record, v string) { r.RepairMeasures = v }},
}

var fieldByHeader = func() map[string]Field {
	m := make(map[string]Field, len(CanonicalFields))
	for _, f := range CanonicalFields {
		m[f.Header] = f
	}
	return m
}()

// CanonicalHeaders 规范表头
func CanonicalHeaders() []string {
	out := make([]string, len(CanonicalFields))
	for i, f := range CanonicalFields {
		out[i] = f.Header
	}
	return out
}

// Set 按中文表头写入字段值，未知表头忽略
func (r *Record) Set(header, value string) {
	if f, ok := fieldByHeader[header]; ok {
		f.set(r, value)
	}
}

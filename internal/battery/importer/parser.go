// Package importer 将CSV/Excel内容解析为维修记录。
//
// 表头按规范字段做双向子串模糊匹配：表头包含规范名或规范名包含表头即视为匹配，
// 每个表头取规范顺序中第一个匹配的字段，不做打分；多个表头落到同一字段时后出现的列生效。
package importer

import (
	"errors"
	"strings"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
)

// ErrEmptyInput 文件中没有任何内容
var ErrEmptyInput = errors.New("文件内容为空")

// Result 解析结果
type Result struct {
	Headers []string
	// Columns 规范表头 → 列下标
	Columns map[string]int
	// Missing 没有任何表头匹配的规范字段（按规范顺序）
	Missing []string
	Records []entity.Record
}

// Complete 所有规范字段都找到了对应的列
func (r *Result) Complete() bool {
	return len(r.Missing) == 0
}

// SplitRows 按 \r?\n 拆分行，跳过空行；引号内的换行不拆分
func SplitRows(text string) []string {
	var rows []string
	var b strings.Builder
	inQuotes := false

	flush := func() {
		row := strings.TrimSuffix(b.String(), "\r")
		if strings.TrimSpace(row) != "" {
			rows = append(rows, row)
		}
		b.Reset()
	}

	for _, ch := range text {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
			b.WriteRune(ch)
		case ch == '\n' && !inQuotes:
			flush()
		default:
			b.WriteRune(ch)
		}
	}
	flush()
	return rows
}

// ParseLine 拆分一行CSV：引号切换引号状态，引号内的 "" 还原为一个 "，
// 仅在引号外的逗号处分隔
func ParseLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	runes := []rune(line)

	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				cur.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(ch)
		}
	}
	return append(fields, cur.String())
}

// MapHeaders 建立规范表头到列下标的映射。
// 空表头跳过但仍占用列下标；同一规范字段被多列匹配时取最后一列。
func MapHeaders(headers []string) map[string]int {
	columns := make(map[string]int, len(entity.CanonicalFields))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		for _, f := range entity.CanonicalFields {
			if headerMatches(h, f.Header) {
				columns[f.Header] = i
				break
			}
		}
	}
	return columns
}

// MissingHeaders 没有任何表头能匹配上的规范字段（按规范顺序）
func MissingHeaders(headers []string) []string {
	var missing []string
	for _, f := range entity.CanonicalFields {
		found := false
		for _, h := range headers {
			if h = strings.TrimSpace(h); h != "" && headerMatches(h, f.Header) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, f.Header)
		}
	}
	return missing
}

func headerMatches(header, canonical string) bool {
	return strings.Contains(header, canonical) || strings.Contains(canonical, header)
}

// ParseCSV 解析CSV文本，第一行为表头
func ParseCSV(text string) (*Result, error) {
	text = strings.TrimPrefix(text, "\uFEFF")
	lines := SplitRows(text)
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = ParseLine(line)
	}
	return build(rows, false), nil
}

// ParseRows 解析表格的行列矩阵（Excel），第一行为表头。
// 费用类字段缺失时记为 "0"。
func ParseRows(rows [][]string) (*Result, error) {
	var nonBlank [][]string
	for _, row := range rows {
		if !blankRow(row) {
			nonBlank = append(nonBlank, row)
		}
	}
	if len(nonBlank) == 0 {
		return nil, ErrEmptyInput
	}
	return build(nonBlank, true), nil
}

func build(rows [][]string, sheet bool) *Result {
	headers := rows[0]
	columns := MapHeaders(headers)
	result := &Result{
		Headers: headers,
		Columns: columns,
		Missing: MissingHeaders(headers),
		Records: make([]entity.Record, 0, len(rows)-1),
	}

	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := entity.Record{
			BeforeImages: []entity.Image{},
			AfterImages:  []entity.Image{},
		}
		for _, f := range entity.CanonicalFields {
			value := ""
			if idx, ok := columns[f.Header]; ok && idx < len(row) {
				value = strings.TrimSpace(row[idx])
			}
			if sheet && f.Numeric && value == "" {
				value = "0"
			}
			rec.Set(f.Header, value)
		}
		result.Records = append(result.Records, rec)
	}
	return result
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

package exporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/xuri/excelize/v2"
)

// SheetName 导出工作表名称
const SheetName = "电池维修记录"

// 导出格式
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var columnWidths = map[string]float64{
	"电池BT码": 28,
	"BMS编号": 18,
	"原因分析": 30,
	"改善措施": 30,
	"维修措施": 30,
}

// FileName 导出文件名：电池维修记录_YYYY-MM-DD.<ext>
func FileName(format string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SheetName, now.Format("2006-01-02"), format)
}

// EscapeCSV 包含逗号、引号或换行的值用引号包裹，内部引号加倍
func EscapeCSV(value string) string {
	if strings.ContainsAny(value, ",\"\n\r") {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}

// WriteCSV 写出UTF-8（带BOM，便于Excel识别）CSV，表头为18个规范字段
func WriteCSV(w io.Writer, records []entity.Record) error {
	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return err
	}
	if err := writeCSVLine(w, entity.CanonicalHeaders()); err != nil {
		return err
	}
	for i := range records {
		if err := writeCSVLine(w, records[i].Values()); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVLine(w io.Writer, values []string) error {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = EscapeCSV(v)
	}
	_, err := io.WriteString(w, strings.Join(escaped, ",")+"\n")
	return err
}

// BuildWorkbook 生成xlsx：表头加粗并填充底色
func BuildWorkbook(records []entity.Record) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", SheetName)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create style: %w", err)
	}

	for i, h := range entity.CanonicalHeaders() {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(SheetName, col+"1", h)
		f.SetCellStyle(SheetName, col+"1", col+"1", headerStyle)
		width := 14.0
		if w, ok := columnWidths[h]; ok {
			width = w
		}
		f.SetColWidth(SheetName, col, col, width)
	}

	for r := range records {
		for c, v := range records[r].Values() {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(SheetName, cell, v)
		}
	}
	return f, nil
}

// Template 导入模板（仅表头）
func Template(w io.Writer, format string) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, nil)
	case FormatXLSX:
		f, err := BuildWorkbook(nil)
		if err != nil {
			return err
		}
		defer f.Close()
		return f.Write(w)
	}
	return fmt.Errorf("unsupported format: %s", format)
}

package importer

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText 将CSV字节解码为文本：UTF-8（去掉BOM），否则按GBK解码
// （中文Windows下Excel另存为CSV的默认编码）
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}

	// GBK → UTF-8
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), simplifiedchinese.GBK.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("decode gbk: %w", err)
	}
	return string(out), nil
}

// ReadWorkbook 读取Excel第一个工作表的全部行，单元格均为字符串
func ReadWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read excel: %w", err)
	}
	return rows, nil
}

// ParseCSVBytes 解码并解析CSV文件内容
func ParseCSVBytes(data []byte) (*Result, error) {
	text, err := DecodeText(data)
	if err != nil {
		return nil, err
	}
	return ParseCSV(text)
}

// ParseWorkbook 读取并解析Excel文件
func ParseWorkbook(r io.Reader) (*Result, error) {
	rows, err := ReadWorkbook(r)
	if err != nil {
		return nil, err
	}
	return ParseRows(rows)
}

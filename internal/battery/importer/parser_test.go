package importer

import (
	"testing"

	"github.com/Chenxiaohui126/battery-management-system/internal/battery/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestParseLineQuotedField(t *testing.T) {
	fields := ParseLine(`"a,b""c"`)
	assert.Equal(t, []string{`a,b"c`}, fields)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"trailing empty", "a,,", []string{"a", "", ""}},
		{"quoted comma", `x,"y,z",w`, []string{"x", "y,z", "w"}},
		{"escaped quote", `"say ""hi""",1`, []string{`say "hi"`, "1"}},
		{"empty", "", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLine(tt.line))
		})
	}
}

func TestSplitRows(t *testing.T) {
	rows := SplitRows("h1,h2\r\na,b\n\n  \nc,\"d\ne\"\n")
	assert.Equal(t, []string{"h1,h2", "a,b", "c,\"d\ne\""}, rows)
}

func TestParseCSVPartialHeader(t *testing.T) {
	result, err := ParseCSV("电池BT码,BMS编号,电池型号\nBT1,BMS1,K174\n")
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.Equal(t, "BT1", rec.BatteryBtCode)
	assert.Equal(t, "BMS1", rec.BMSNumber)
	assert.Equal(t, "K174", rec.BatteryModel)
	for _, f := range entity.CanonicalFields[3:] {
		assert.Empty(t, rec.Value(f.Header), f.Header)
	}
	assert.Len(t, result.Missing, 15)
	assert.False(t, result.Complete())
}

func TestMapHeadersFuzzyAndReordered(t *testing.T) {
	headers := []string{"备注", "", "型号", "电池BT码(必填)", "BMS编号"}
	columns := MapHeaders(headers)

	assert.Equal(t, 3, columns["电池BT码"])
	assert.Equal(t, 4, columns["BMS编号"])
	// "型号" 是 "电池型号" 的子串
	assert.Equal(t, 2, columns["电池型号"])
	_, ok := columns["维修状态"]
	assert.False(t, ok)
}

func TestMapHeadersFirstMatchWins(t *testing.T) {
	// "维修" 同时被 维修状态/维修项目/维修费用 包含，按规范顺序取第一个
	columns := MapHeaders([]string{"维修"})
	assert.Equal(t, map[string]int{"维修状态": 0}, columns)
}

func TestMapHeadersDuplicateHeaderLastColumnWins(t *testing.T) {
	columns := MapHeaders([]string{"维修", "维修状态"})
	assert.Equal(t, map[string]int{"维修状态": 1}, columns)
}

func TestParseCSVAmbiguousDuplicateHeader(t *testing.T) {
	result, err := ParseCSV("电池,电池\nA,B\n")
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	// 两列都只匹配 电池BT码，不会顺延到 电池型号
	assert.Equal(t, map[string]int{"电池BT码": 1}, result.Columns)
	assert.Equal(t, "B", result.Records[0].BatteryBtCode)
	assert.Empty(t, result.Records[0].BatteryModel)
	// "电池" 也能匹配 电池型号，预扫描不把它算作缺失
	assert.NotContains(t, result.Missing, "电池型号")
	assert.Contains(t, result.Missing, "BMS编号")
}

func TestMissingHeadersSkipsBlankHeaders(t *testing.T) {
	missing := MissingHeaders(append(entity.CanonicalHeaders(), "", "  "))
	assert.Empty(t, missing)

	missing = MissingHeaders([]string{"", "电池BT码"})
	assert.Len(t, missing, len(entity.CanonicalFields)-1)
	assert.NotContains(t, missing, "电池BT码")
}

func TestParseRowsDefaultsCostsToZero(t *testing.T) {
	rows := [][]string{
		{"电池BT码", "维修费用", "运费金额"},
		{"BT9", "", "12.5"},
		{"", "", ""},
	}
	result, err := ParseRows(rows)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.Equal(t, "0", rec.RepairCost)
	assert.Equal(t, "12.5", rec.ShippingCost)
	assert.Equal(t, "0", rec.LaborCost)
	assert.Empty(t, rec.CauseAnalysis)
}

func TestParseEmptyInput(t *testing.T) {
	_, err := ParseCSV("\n\r\n")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = ParseRows(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestDecodeTextGBK(t *testing.T) {
	src := "电池BT码,电池型号\nBT1,K174\n"
	gbk, err := simplifiedchinese.GBK.NewEncoder().String(src)
	require.NoError(t, err)

	text, err := DecodeText([]byte(gbk))
	require.NoError(t, err)
	assert.Equal(t, src, text)

	text, err = DecodeText(append([]byte{0xEF, 0xBB, 0xBF}, []byte(src)...))
	require.NoError(t, err)
	assert.Equal(t, src, text)
}

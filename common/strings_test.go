package common

import "testing"

func TestByteLengthBounds(t *testing.T) {
	tests := []struct {
		name  string
		src   int64
		lower int64
		upper int64
	}{
		{name: "varchar30", src: 30, lower: 45, upper: 75},
		{name: "varchar1", src: 1, lower: 2, upper: 3},
		{name: "varchar4000", src: 4000, lower: 6000, upper: 10000},
		{name: "varchar7", src: 7, lower: 11, upper: 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ByteLengthLowerBound(tt.src); got != tt.lower {
				t.Errorf("ByteLengthLowerBound(%d) = %d, want %d", tt.src, got, tt.lower)
			}
			if got := ByteLengthUpperBound(tt.src); got != tt.upper {
				t.Errorf("ByteLengthUpperBound(%d) = %d, want %d", tt.src, got, tt.upper)
			}
		})
	}
}

func TestIsOracleHiddenColumnName(t *testing.T) {
	tests := []struct {
		name string
		col  string
		want bool
	}{
		{name: "hidden", col: "SYS_NC00005$", want: true},
		{name: "hidden lower", col: "sys_nc00009$", want: true},
		{name: "normal", col: "ORDER_ID", want: false},
		{name: "sysname prefix only", col: "SYS_NC_ROWINFO$X", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOracleHiddenColumnName(tt.col); got != tt.want {
				t.Errorf("IsOracleHiddenColumnName(%s) = %v, want %v", tt.col, got, tt.want)
			}
		})
	}
}

func TestNormalizeExpression(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{name: "whitespace and case", expr: `  status   in ('A','B')`, want: `STATUS IN ('A','B')`},
		{name: "redundant parens", expr: `(("QTY" > 0))`, want: `QTY > 0`},
		{name: "non redundant parens", expr: `(A > 0) AND (B > 0)`, want: `(A > 0) AND (B > 0)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeExpression(tt.expr); got != tt.want {
				t.Errorf("NormalizeExpression(%s) = %s, want %s", tt.expr, got, tt.want)
			}
		})
	}
}

func TestFilterStringItems(t *testing.T) {
	origin := []string{"a", "B", "c"}
	exclude := []string{"b"}
	diff := FilterDifferenceStringItems(origin, exclude)
	if len(diff) != 2 {
		t.Errorf("FilterDifferenceStringItems() = %v, want 2 items", diff)
	}
	inter := FilterIntersectionStringItems(origin, []string{"C", "d"})
	if len(inter) != 1 || inter[0] != "C" {
		t.Errorf("FilterIntersectionStringItems() = %v, want [C]", inter)
	}
}

func TestCharsetConvert(t *testing.T) {
	data := []byte("ALTER TABLE OB_SALES.ORDERS ADD COLUMN MEMO VARCHAR(45); -- 订单备注")

	same, err := CharsetConvert(data, CharsetUTF8MB4, CharsetUTF8MB4)
	if err != nil || string(same) != string(data) {
		t.Fatalf("CharsetConvert(utf8mb4->utf8mb4) = %v, %v", same, err)
	}

	gbk, err := CharsetConvert(data, CharsetUTF8MB4, CharsetGBK)
	if err != nil {
		t.Fatalf("CharsetConvert(utf8mb4->gbk) error: %v", err)
	}
	if len(gbk) >= len(data) {
		t.Errorf("gbk encoded text expect shorter than utf8, got %d >= %d", len(gbk), len(data))
	}

	if _, err = CharsetConvert(data, CharsetGBK, CharsetBIG5); err == nil {
		t.Error("CharsetConvert(gbk->big5) expect unsupported error")
	}
}

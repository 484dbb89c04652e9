/*
Copyright © 2020 Marvin

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package compare

import (
	"testing"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
)

func reasons(findings []Finding) []string {
	var rs []string
	for _, f := range findings {
		rs = append(rs, f.Reason)
	}
	return rs
}

func varcharCol(name, charUsed, length string) model.Column {
	return model.Column{
		ColumnName: name,
		DataType:   "VARCHAR2",
		CharUsed:   charUsed,
		CharLength: length,
		Nullable:   "Y",
	}
}

func TestCompareTableColumnsByteSemantics(t *testing.T) {
	for _, tc := range []struct {
		name       string
		tgtLength  string
		wantReason string
	}{
		{name: "below lower bound", tgtLength: "30", wantReason: common.ReasonColumnLength},
		{name: "at lower bound", tgtLength: "45", wantReason: ""},
		{name: "inside window", tgtLength: "60", wantReason: ""},
		{name: "at upper bound", tgtLength: "75", wantReason: ""},
		{name: "oversize warning", tgtLength: "80", wantReason: common.ReasonColumnOversize},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := &model.Table{
				SchemaName: "APP", TableName: "ORDERS",
				Columns: []model.Column{varcharCol("MEMO", "B", "30")},
			}
			tgt := &model.Table{
				SchemaName: "OB_SALES", TableName: "ORDERS",
				Columns: []model.Column{varcharCol("MEMO", "B", tc.tgtLength)},
			}
			findings := CompareTableColumns(src, tgt)
			if tc.wantReason == "" {
				if len(findings) != 0 {
					t.Fatalf("findings expect empty, actual %v", findings)
				}
				return
			}
			if len(findings) != 1 || findings[0].Reason != tc.wantReason {
				t.Fatalf("findings expect [%s], actual %v", tc.wantReason, reasons(findings))
			}
		})
	}
}

func TestCompareTableColumnsCharSemantics(t *testing.T) {
	src := &model.Table{
		SchemaName: "APP", TableName: "ORDERS",
		Columns: []model.Column{varcharCol("CODE", "C", "10")},
	}
	tgtExact := &model.Table{Columns: []model.Column{varcharCol("CODE", "C", "10")}}
	if findings := CompareTableColumns(src, tgtExact); len(findings) != 0 {
		t.Fatalf("char exact length expect ok, actual %v", findings)
	}
	tgtExpanded := &model.Table{Columns: []model.Column{varcharCol("CODE", "C", "15")}}
	findings := CompareTableColumns(src, tgtExpanded)
	if len(findings) != 1 || findings[0].Reason != common.ReasonColumnLength {
		t.Fatalf("char semantics expect exact length mismatch, actual %v", reasons(findings))
	}
}

func TestCompareTableColumnsLongEquivalence(t *testing.T) {
	src := &model.Table{
		Columns: []model.Column{
			{ColumnName: "DOC", DataType: "LONG"},
			{ColumnName: "BIN", DataType: "LONG RAW"},
		},
	}
	tgt := &model.Table{
		Columns: []model.Column{
			{ColumnName: "DOC", DataType: "CLOB"},
			{ColumnName: "BIN", DataType: "BLOB"},
		},
	}
	if findings := CompareTableColumns(src, tgt); len(findings) != 0 {
		t.Fatalf("long equivalence expect ok, actual %v", findings)
	}
}

func TestCompareTableColumnsExclusions(t *testing.T) {
	src := &model.Table{
		IsTemporary: true,
		Columns: []model.Column{
			{ColumnName: "C1", DataType: "NUMBER"},
			{ColumnName: "SYS_NC00005$", DataType: "RAW"},
			{ColumnName: "HID", DataType: "NUMBER", HiddenColumn: "YES"},
		},
	}
	tgt := &model.Table{
		Columns: []model.Column{
			{ColumnName: "C1", DataType: "NUMBER"},
			{ColumnName: "__PK_INCREMENT", DataType: "BIGINT"},
			{ColumnName: "__SESSION_ID", DataType: "BIGINT"},
		},
	}
	if findings := CompareTableColumns(src, tgt); len(findings) != 0 {
		t.Fatalf("hidden and injected columns expect excluded, actual %v", findings)
	}
}

func TestCompareTableColumnsMissingAndExtra(t *testing.T) {
	src := &model.Table{
		Columns: []model.Column{
			{ColumnName: "C1", DataType: "NUMBER"},
			{ColumnName: "C2", DataType: "NUMBER"},
		},
	}
	tgt := &model.Table{
		Columns: []model.Column{
			{ColumnName: "C1", DataType: "NUMBER"},
			{ColumnName: "C3", DataType: "NUMBER"},
		},
	}
	findings := CompareTableColumns(src, tgt)
	got := reasons(findings)
	if len(got) != 2 || got[0] != common.ReasonColumnMissing || got[1] != common.ReasonColumnExtra {
		t.Fatalf("findings expect [missing extra], actual %v", got)
	}
}

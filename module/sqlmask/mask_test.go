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
package sqlmask

import (
	"testing"
)

func kinds(spans []Span) []SpanKind {
	var ks []SpanKind
	for _, s := range spans {
		ks = append(ks, s.Kind)
	}
	return ks
}

func TestMask(t *testing.T) {
	for _, tc := range []struct {
		name      string
		sql       string
		wantKinds []SpanKind
	}{
		{
			name:      "plain code",
			sql:       "SELECT 1 FROM DUAL",
			wantKinds: []SpanKind{SpanCode},
		},
		{
			name:      "string literal",
			sql:       "SELECT 'APP.ORDERS' FROM DUAL",
			wantKinds: []SpanKind{SpanCode, SpanString, SpanCode},
		},
		{
			name:      "escaped quote inside string",
			sql:       "SELECT 'it''s APP.T' FROM DUAL",
			wantKinds: []SpanKind{SpanCode, SpanString, SpanCode},
		},
		{
			name:      "line comment",
			sql:       "SELECT 1 -- APP.ORDERS note\nFROM DUAL",
			wantKinds: []SpanKind{SpanCode, SpanComment, SpanCode},
		},
		{
			name:      "block comment",
			sql:       "SELECT /* APP.ORDERS */ 1 FROM DUAL",
			wantKinds: []SpanKind{SpanCode, SpanComment, SpanCode},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			spans, err := Mask(tc.sql)
			if err != nil {
				t.Fatalf("mask failed: %v", err)
			}
			got := kinds(spans)
			if len(got) != len(tc.wantKinds) {
				t.Fatalf("span kinds expect %v, actual %v", tc.wantKinds, got)
			}
			for i := range got {
				if got[i] != tc.wantKinds[i] {
					t.Fatalf("span %d expect %s, actual %s", i, tc.wantKinds[i], got[i])
				}
			}
			// 区间必须无缝覆盖全文
			offset := 0
			for _, s := range spans {
				if s.Start != offset {
					t.Fatalf("span gap at offset %d", offset)
				}
				offset = s.End
			}
			if offset != len(tc.sql) {
				t.Fatalf("spans end at %d, sql length %d", offset, len(tc.sql))
			}
		})
	}
}

func TestMaskUnterminated(t *testing.T) {
	for _, tc := range []struct {
		name string
		sql  string
	}{
		{name: "unterminated string", sql: "SELECT 'abc FROM DUAL"},
		{name: "unterminated block comment", sql: "SELECT /* abc FROM DUAL"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Mask(tc.sql); err == nil {
				t.Fatalf("sql [%s] expect mask error", tc.sql)
			}
		})
	}
}

func TestRewrite(t *testing.T) {
	repls := []Replacement{
		{Old: "APP.ORDERS", New: "OB_SALES.ORDERS"},
		{Old: "APP.ORDERS_HIST", New: "OB_SALES.ORDERS_HIST"},
	}

	for _, tc := range []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "code rewritten",
			sql:  "SELECT * FROM APP.ORDERS",
			want: "SELECT * FROM OB_SALES.ORDERS",
		},
		{
			name: "string untouched",
			sql:  "SELECT 'APP.ORDERS' FROM APP.ORDERS",
			want: "SELECT 'APP.ORDERS' FROM OB_SALES.ORDERS",
		},
		{
			name: "comment untouched",
			sql:  "SELECT 1 /* APP.ORDERS */ FROM APP.ORDERS",
			want: "SELECT 1 /* APP.ORDERS */ FROM OB_SALES.ORDERS",
		},
		{
			name: "word boundary safe",
			sql:  "SELECT * FROM APP.ORDERS_HIST JOIN APP.ORDERS2 ON 1=1",
			want: "SELECT * FROM OB_SALES.ORDERS_HIST JOIN APP.ORDERS2 ON 1=1",
		},
		{
			name: "case insensitive",
			sql:  "select * from app.orders",
			want: "select * from OB_SALES.ORDERS",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Rewrite(tc.sql, repls)
			if err != nil {
				t.Fatalf("rewrite failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("rewrite expect [%s], actual [%s]", tc.want, got)
			}
		})
	}
}

func TestRewriteQuotedIdentifiers(t *testing.T) {
	repls := []Replacement{
		{Old: "APP.ORDERS", New: "OB_SALES.ORDERS"},
	}

	for _, tc := range []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "dbms_metadata quoted ddl",
			sql:  `CREATE TABLE "APP"."ORDERS" ("ORDER_ID" NUMBER(10,0))`,
			want: `CREATE TABLE OB_SALES.ORDERS ("ORDER_ID" NUMBER(10,0))`,
		},
		{
			name: "mixed quoted and bare",
			sql:  `GRANT SELECT ON "APP".ORDERS TO RPT`,
			want: `GRANT SELECT ON OB_SALES.ORDERS TO RPT`,
		},
		{
			name: "spaces around dot",
			sql:  "SELECT * FROM \"APP\" . \"ORDERS\"",
			want: "SELECT * FROM OB_SALES.ORDERS",
		},
		{
			name: "quoted word boundary safe",
			sql:  `CREATE TABLE "XAPP"."ORDERS" ("ID" NUMBER)`,
			want: `CREATE TABLE "XAPP"."ORDERS" ("ID" NUMBER)`,
		},
		{
			name: "quoted name suffix untouched",
			sql:  `CREATE TABLE "APP"."ORDERS_HIST" ("ID" NUMBER)`,
			want: `CREATE TABLE "APP"."ORDERS_HIST" ("ID" NUMBER)`,
		},
		{
			name: "string literal untouched",
			sql:  `SELECT '"APP"."ORDERS"' FROM "APP"."ORDERS"`,
			want: `SELECT '"APP"."ORDERS"' FROM OB_SALES.ORDERS`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Rewrite(tc.sql, repls)
			if err != nil {
				t.Fatalf("rewrite failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("rewrite expect [%s], actual [%s]", tc.want, got)
			}
		})
	}
}

func TestRewriteUnterminatedKeepsOriginal(t *testing.T) {
	sql := "SELECT 'abc FROM APP.ORDERS"
	got, err := Rewrite(sql, []Replacement{{Old: "APP.ORDERS", New: "OB_SALES.ORDERS"}})
	if err == nil {
		t.Fatal("unterminated string expect error")
	}
	if got != sql {
		t.Fatalf("original sql expect kept, actual [%s]", got)
	}
}

func TestRewriteEndName(t *testing.T) {
	sql := "CREATE OR REPLACE PROCEDURE OB_SALES.PROC_NEW AS\nBEGIN\n  NULL;\nEND PROC_OLD;"
	got, err := RewriteEndName(sql, "PROC_OLD", "PROC_NEW")
	if err != nil {
		t.Fatalf("rewrite end name failed: %v", err)
	}
	want := "CREATE OR REPLACE PROCEDURE OB_SALES.PROC_NEW AS\nBEGIN\n  NULL;\nEND PROC_NEW;"
	if got != want {
		t.Fatalf("rewrite end name expect [%s], actual [%s]", want, got)
	}
}

func TestRewriteTriggerOnClause(t *testing.T) {
	sql := "CREATE OR REPLACE TRIGGER TRG_BI BEFORE INSERT ON APP.ORDERS FOR EACH ROW\nBEGIN\n  NULL;\nEND;"
	got, err := RewriteTriggerOnClause(sql, "APP", "ORDERS", "OB_SALES", "ORDERS")
	if err != nil {
		t.Fatalf("rewrite trigger on clause failed: %v", err)
	}
	want := "CREATE OR REPLACE TRIGGER TRG_BI BEFORE INSERT ON OB_SALES.ORDERS FOR EACH ROW\nBEGIN\n  NULL;\nEND;"
	if got != want {
		t.Fatalf("rewrite trigger expect [%s], actual [%s]", want, got)
	}
}

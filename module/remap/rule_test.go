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
package remap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
)

func TestParseRuleFile(t *testing.T) {
	content := `# remap rules
app.orders = ob_sales.orders

APP.PKG_BILLING BODY = OB_SALES.PKG_BILLING BODY
`
	ruleFile := filepath.Join(t.TempDir(), "remap.rules")
	if err := os.WriteFile(ruleFile, []byte(content), 0644); err != nil {
		t.Fatalf("write rule file failed: %v", err)
	}

	rules, err := ParseRuleFile(ruleFile)
	if err != nil {
		t.Fatalf("parse rule file failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("rules expect 2, actual %d", len(rules))
	}
	if rules[0].SourceSchema != "APP" || rules[0].TargetSchema != "OB_SALES" || rules[0].IsBody {
		t.Fatalf("first rule parse error: %+v", rules[0])
	}
	if !rules[1].IsBody || rules[1].SourceName != "PKG_BILLING" {
		t.Fatalf("body rule parse error: %+v", rules[1])
	}
}

func TestParseRuleLineError(t *testing.T) {
	for _, tc := range []struct {
		name string
		line string
	}{
		{name: "missing equals", line: "APP.ORDERS OB_SALES.ORDERS"},
		{name: "missing schema", line: "ORDERS = OB_SALES.ORDERS"},
		{name: "body one side only", line: "APP.PKG BODY = OB_SALES.PKG"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseRuleLine(tc.line, 1); err == nil {
				t.Fatalf("line [%s] expect parse error", tc.line)
			}
		})
	}
}

func TestRuleSetExtraneous(t *testing.T) {
	source := model.NewSideMeta()
	source.AddTable(&model.Table{SchemaName: "APP", TableName: "ORDERS"})

	rules := []Rule{
		{SourceSchema: "APP", SourceName: "ORDERS", TargetSchema: "OB_SALES", TargetName: "ORDERS", Raw: "APP.ORDERS = OB_SALES.ORDERS"},
		{SourceSchema: "APP", SourceName: "NOT_EXIST", TargetSchema: "OB_SALES", TargetName: "NOT_EXIST", Raw: "APP.NOT_EXIST = OB_SALES.NOT_EXIST"},
	}
	rs := NewRuleSet(rules, source)

	if len(rs.Extraneous) != 1 || rs.Extraneous[0].SourceName != "NOT_EXIST" {
		t.Fatalf("extraneous rules expect [NOT_EXIST], actual %+v", rs.Extraneous)
	}
	if _, ok := rs.Lookup(model.NewObjectIdentity("APP", "ORDERS", common.ObjectTypeTable)); !ok {
		t.Fatal("valid rule expect matched")
	}
	if _, ok := rs.Lookup(model.NewObjectIdentity("APP", "NOT_EXIST", common.ObjectTypeTable)); ok {
		t.Fatal("extraneous rule expect never matched")
	}
}

func TestRuleSetBodyLookup(t *testing.T) {
	source := model.NewSideMeta()
	source.AddObject(model.NewObjectIdentity("APP", "PKG_BILLING", common.ObjectTypePackage))
	source.AddObject(model.NewObjectIdentity("APP", "PKG_BILLING", common.ObjectTypePackageBody))

	rules := []Rule{
		{SourceSchema: "APP", SourceName: "PKG_BILLING", TargetSchema: "OB_SALES", TargetName: "PKG_BILLING"},
		{SourceSchema: "APP", SourceName: "PKG_BILLING", TargetSchema: "OB_BILL", TargetName: "PKG_BILLING", IsBody: true},
	}
	rs := NewRuleSet(rules, source)

	spec, ok := rs.Lookup(model.NewObjectIdentity("APP", "PKG_BILLING", common.ObjectTypePackage))
	if !ok || spec.TargetSchema != "OB_SALES" {
		t.Fatalf("package spec expect OB_SALES rule, actual %+v", spec)
	}
	body, ok := rs.Lookup(model.NewObjectIdentity("APP", "PKG_BILLING", common.ObjectTypePackageBody))
	if !ok || body.TargetSchema != "OB_BILL" {
		t.Fatalf("package body expect OB_BILL rule, actual %+v", body)
	}
}

func TestSchemaMappingResolve(t *testing.T) {
	tableRules := []Rule{
		{SourceSchema: "APP1", SourceName: "T1", TargetSchema: "OB_SALES", TargetName: "T1"},
		{SourceSchema: "APP1", SourceName: "T2", TargetSchema: "OB_SALES", TargetName: "T2"},
		{SourceSchema: "APP2", SourceName: "T3", TargetSchema: "OB_SALES", TargetName: "T3"},
		{SourceSchema: "SPLIT", SourceName: "T4", TargetSchema: "OB_A", TargetName: "T4"},
		{SourceSchema: "SPLIT", SourceName: "T5", TargetSchema: "OB_B", TargetName: "T5"},
	}
	sm := NewSchemaMapping(tableRules)

	for _, tc := range []struct {
		name      string
		srcSchema string
		want      string
		wantOK    bool
	}{
		{name: "single candidate", srcSchema: "APP1", want: "OB_SALES", wantOK: true},
		{name: "merge candidate", srcSchema: "APP2", want: "OB_SALES", wantOK: true},
		{name: "split ambiguous", srcSchema: "SPLIT", want: "", wantOK: false},
		{name: "unmapped identity", srcSchema: "OTHER", want: "OTHER", wantOK: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := sm.Resolve(tc.srcSchema)
			if got != tc.want || ok != tc.wantOK {
				t.Fatalf("resolve %s expect (%s,%v), actual (%s,%v)", tc.srcSchema, tc.want, tc.wantOK, got, ok)
			}
		})
	}
}

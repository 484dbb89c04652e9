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
package model

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Minorli/ob-comparator-sub002/common"
)

const dumpSourceJSON = `{
  "objects": [
    {"schema": "APP", "name": "ORDERS", "type": "TABLE"},
    {"schema": "APP", "name": "TRG_ORDERS_BI", "type": "TRIGGER"},
    {"schema": "APP", "name": "SEQ_ORDERS", "type": "SEQUENCE"}
  ],
  "tables": [
    {
      "schema_name": "APP",
      "table_name": "ORDERS",
      "is_temporary": false,
      "columns": [
        {"column_name": "ORDER_ID", "data_type": "NUMBER", "data_precision": "10", "data_scale": "0", "nullable": "N"},
        {"column_name": "ORDER_NO", "data_type": "VARCHAR2", "char_used": "B", "data_length": "30", "nullable": "Y"}
      ],
      "indexes": [
        {"index_name": "IDX_ORDERS_NO", "uniqueness": "NONUNIQUE", "index_type": "NORMAL", "index_columns": ["ORDER_NO"]}
      ],
      "pu_constraints": [
        {"constraint_name": "PK_ORDERS", "constraint_type": "PK", "columns": ["ORDER_ID"], "deferrable": "NOT DEFERRABLE"}
      ],
      "foreign_constraints": [
        {"constraint_name": "FK_ORDERS_CUST", "columns": ["CUST_ID"], "referenced_schema": "APP", "referenced_table": "CUSTOMERS", "referenced_columns": ["CUST_ID"], "delete_rule": "NO ACTION", "deferrable": "NOT DEFERRABLE"}
      ],
      "check_constraints": [
        {"constraint_name": "CK_ORDERS_ST", "expression": "STATUS IN ('N','P','D')", "generated": "USER NAME", "deferrable": "NOT DEFERRABLE"}
      ]
    }
  ],
  "sequences": [
    {"schema_name": "APP", "sequence_name": "SEQ_ORDERS", "min_value": "1", "max_value": "9999999999999999999999999999", "increment_by": "1", "cycle_flag": "N", "cache_size": "20"}
  ],
  "triggers": [
    {"schema_name": "APP", "trigger_name": "TRG_ORDERS_BI", "table_owner": "APP", "table_name": "ORDERS", "status": "ENABLED", "validity": "VALID"}
  ],
  "synonyms": [
    {"owner": "PUBLIC", "synonym_name": "ORDERS", "table_owner": "APP", "table_name": "ORDERS"}
  ],
  "dependencies": [
    {"owner": "APP", "name": "TRG_ORDERS_BI", "type": "TRIGGER", "referenced_owner": "APP", "referenced_name": "SEQ_ORDERS", "referenced_type": "SEQUENCE"}
  ]
}`

const dumpTargetJSON = `{
  "objects": [
    {"schema": "OB_SALES", "name": "ORDERS", "type": "TABLE"}
  ],
  "tables": [
    {
      "schema_name": "OB_SALES",
      "table_name": "ORDERS",
      "columns": [
        {"column_name": "ORDER_ID", "data_type": "DECIMAL", "data_precision": "10", "data_scale": "0", "nullable": "N"}
      ]
    }
  ]
}`

func writeDumpDir(t *testing.T, sourceJSON, targetJSON string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "source.json"), []byte(sourceJSON), 0644); err != nil {
		t.Fatalf("write source dump failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "target.json"), []byte(targetJSON), 0644); err != nil {
		t.Fatalf("write target dump failed: %v", err)
	}
	return dir
}

func TestLoadSnapshotFromDump(t *testing.T) {
	dir := writeDumpDir(t, dumpSourceJSON, dumpTargetJSON)

	snapshot, err := LoadSnapshotFromDump(dir)
	if err != nil {
		t.Fatalf("load snapshot failed: %v", err)
	}

	if !snapshot.Source.ExistObject("APP", "ORDERS", common.ObjectTypeTable) {
		t.Fatal("source object APP.ORDERS expect loaded")
	}
	if snapshot.Source.ObjectTotals() != 3 {
		t.Fatalf("source object totals expect 3, actual %d", snapshot.Source.ObjectTotals())
	}

	table, ok := snapshot.Source.GetTable("APP", "ORDERS")
	if !ok {
		t.Fatal("source table APP.ORDERS expect loaded")
	}
	if len(table.Columns) != 2 || table.Columns[1].ColumnName != "ORDER_NO" || table.Columns[1].DataLength != "30" {
		t.Fatalf("table columns load mismatched: %+v", table.Columns)
	}
	if len(table.Indexes) != 1 || !reflect.DeepEqual(table.Indexes[0].IndexColumns, []string{"ORDER_NO"}) {
		t.Fatalf("table indexes load mismatched: %+v", table.Indexes)
	}
	if len(table.PUConstraints) != 1 || table.PUConstraints[0].ConstraintType != "PK" {
		t.Fatalf("pu constraints load mismatched: %+v", table.PUConstraints)
	}
	if len(table.ForeignConstraints) != 1 || table.ForeignConstraints[0].ReferencedTable != "CUSTOMERS" {
		t.Fatalf("foreign constraints load mismatched: %+v", table.ForeignConstraints)
	}
	if len(table.CheckConstraints) != 1 || table.CheckConstraints[0].Expression != "STATUS IN ('N','P','D')" {
		t.Fatalf("check constraints load mismatched: %+v", table.CheckConstraints)
	}

	seq, ok := snapshot.Source.GetSequence("APP", "SEQ_ORDERS")
	if !ok || seq.CacheSize != "20" {
		t.Fatalf("sequence load mismatched: %+v", seq)
	}
	trg, ok := snapshot.Source.GetTrigger("APP", "TRG_ORDERS_BI")
	if !ok || trg.TableName != "ORDERS" || trg.Status != "ENABLED" {
		t.Fatalf("trigger load mismatched: %+v", trg)
	}

	edges := snapshot.Source.FindReferenced(NewObjectIdentity("APP", "TRG_ORDERS_BI", common.ObjectTypeTrigger))
	if len(edges) != 1 || edges[0].Referenced.Name != "SEQ_ORDERS" {
		t.Fatalf("dependency edges load mismatched: %+v", edges)
	}

	if _, ok = snapshot.Target.GetTable("OB_SALES", "ORDERS"); !ok {
		t.Fatal("target table OB_SALES.ORDERS expect loaded")
	}
}

func TestLoadSnapshotFromDumpMissingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "source.json"), []byte(dumpSourceJSON), 0644); err != nil {
		t.Fatalf("write source dump failed: %v", err)
	}

	if _, err := LoadSnapshotFromDump(dir); err == nil {
		t.Fatal("missing target.json expect error")
	}
}

func TestLoadSnapshotFromDumpBadJSON(t *testing.T) {
	dir := writeDumpDir(t, "{not-json", dumpTargetJSON)

	if _, err := LoadSnapshotFromDump(dir); err == nil {
		t.Fatal("malformed source.json expect error")
	}
}

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
package fixup

import (
	"reflect"
	"testing"

	"github.com/Minorli/ob-comparator-sub002/model"
)

func TestBuildTableAlters(t *testing.T) {
	src := &model.Table{
		SchemaName: "APP", TableName: "ORDERS",
		Columns: []model.Column{
			{ColumnName: "AMOUNT", DataType: "NUMBER", DataPrecision: "10", DataScale: "2", Nullable: "N"},
			{ColumnName: "MEMO", DataType: "VARCHAR2", CharUsed: "B", CharLength: "30", Nullable: "Y"},
			{ColumnName: "CODE", DataType: "CHAR", CharUsed: "C", CharLength: "4", Nullable: "Y"},
			{ColumnName: "SYS_NC00004$", DataType: "RAW"},
		},
	}
	tgt := &model.Table{
		SchemaName: "OB_SALES", TableName: "ORDERS",
		Columns: []model.Column{
			{ColumnName: "MEMO", DataType: "VARCHAR", CharLength: "30"},
			{ColumnName: "CODE", DataType: "CHAR", CharLength: "4"},
		},
	}

	alters := BuildTableAlters(src, tgt, "OB_SALES", "ORDERS")
	want := []string{
		"ALTER TABLE OB_SALES.ORDERS ADD COLUMN AMOUNT NUMBER(10,2) NOT NULL;",
		"ALTER TABLE OB_SALES.ORDERS MODIFY COLUMN MEMO VARCHAR(45);",
	}
	if !reflect.DeepEqual(alters, want) {
		t.Fatalf("alters expect %v, actual %v", want, alters)
	}
}

func TestBuildTableAltersOversizeNotGenerated(t *testing.T) {
	src := &model.Table{
		SchemaName: "APP", TableName: "ORDERS",
		Columns: []model.Column{
			{ColumnName: "MEMO", DataType: "VARCHAR2", CharUsed: "B", CharLength: "30"},
		},
	}
	tgt := &model.Table{
		SchemaName: "OB_SALES", TableName: "ORDERS",
		Columns: []model.Column{
			{ColumnName: "MEMO", DataType: "VARCHAR", CharLength: "200"},
		},
	}
	if alters := BuildTableAlters(src, tgt, "OB_SALES", "ORDERS"); len(alters) != 0 {
		t.Fatalf("oversize column expect no alter, actual %v", alters)
	}
}

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
	"fmt"
	"os"
	"path/filepath"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/valyala/fastjson"
)

// 离线元数据快照装载
// dbcat/obclient 批量导出的 JSON 文件，单次读入构建快照，不回源查询
// 目录布局固定 source.json / target.json
func LoadSnapshotFromDump(dumpDir string) (*Snapshot, error) {
	snapshot := NewSnapshot()

	sourceMeta, err := loadSideFromDump(filepath.Join(dumpDir, "source.json"))
	if err != nil {
		return nil, fmt.Errorf("load source dump failed: %v", err)
	}
	targetMeta, err := loadSideFromDump(filepath.Join(dumpDir, "target.json"))
	if err != nil {
		return nil, fmt.Errorf("load target dump failed: %v", err)
	}
	snapshot.Source = sourceMeta
	snapshot.Target = targetMeta
	return snapshot, nil
}

func loadSideFromDump(dumpFile string) (*SideMeta, error) {
	data, err := os.ReadFile(dumpFile)
	if err != nil {
		return nil, err
	}

	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse dump file [%s] failed: %v", dumpFile, err)
	}

	side := NewSideMeta()

	for _, o := range v.GetArray("objects") {
		side.AddObject(NewObjectIdentity(
			string(o.GetStringBytes("schema")),
			string(o.GetStringBytes("name")),
			common.ObjectType(o.GetStringBytes("type"))))
	}

	for _, t := range v.GetArray("tables") {
		table := &Table{
			SchemaName:  string(t.GetStringBytes("schema_name")),
			TableName:   string(t.GetStringBytes("table_name")),
			IsTemporary: t.GetBool("is_temporary"),
		}
		for _, c := range t.GetArray("columns") {
			table.Columns = append(table.Columns, Column{
				ColumnName:    string(c.GetStringBytes("column_name")),
				DataType:      string(c.GetStringBytes("data_type")),
				CharUsed:      string(c.GetStringBytes("char_used")),
				CharLength:    string(c.GetStringBytes("char_length")),
				DataLength:    string(c.GetStringBytes("data_length")),
				DataPrecision: string(c.GetStringBytes("data_precision")),
				DataScale:     string(c.GetStringBytes("data_scale")),
				Nullable:      string(c.GetStringBytes("nullable")),
				DataDefault:   string(c.GetStringBytes("data_default")),
				HiddenColumn:  string(c.GetStringBytes("hidden_column")),
			})
		}
		for _, idx := range t.GetArray("indexes") {
			table.Indexes = append(table.Indexes, Index{
				IndexName:    string(idx.GetStringBytes("index_name")),
				Uniqueness:   string(idx.GetStringBytes("uniqueness")),
				IndexType:    string(idx.GetStringBytes("index_type")),
				IndexColumns: stringArray(idx, "index_columns"),
			})
		}
		for _, pu := range t.GetArray("pu_constraints") {
			table.PUConstraints = append(table.PUConstraints, ConstraintPUKey{
				ConstraintName: string(pu.GetStringBytes("constraint_name")),
				ConstraintType: string(pu.GetStringBytes("constraint_type")),
				Columns:        stringArray(pu, "columns"),
				Deferrable:     string(pu.GetStringBytes("deferrable")),
			})
		}
		for _, fk := range t.GetArray("foreign_constraints") {
			table.ForeignConstraints = append(table.ForeignConstraints, ConstraintForeign{
				ConstraintName:   string(fk.GetStringBytes("constraint_name")),
				Columns:          stringArray(fk, "columns"),
				ReferencedSchema: string(fk.GetStringBytes("referenced_schema")),
				ReferencedTable:  string(fk.GetStringBytes("referenced_table")),
				ReferencedCols:   stringArray(fk, "referenced_columns"),
				DeleteRule:       string(fk.GetStringBytes("delete_rule")),
				Deferrable:       string(fk.GetStringBytes("deferrable")),
			})
		}
		for _, ck := range t.GetArray("check_constraints") {
			table.CheckConstraints = append(table.CheckConstraints, ConstraintCheck{
				ConstraintName: string(ck.GetStringBytes("constraint_name")),
				Expression:     string(ck.GetStringBytes("expression")),
				Generated:      string(ck.GetStringBytes("generated")),
				Deferrable:     string(ck.GetStringBytes("deferrable")),
			})
		}
		side.AddTable(table)
	}

	for _, s := range v.GetArray("sequences") {
		side.AddSequence(&Sequence{
			SchemaName:   string(s.GetStringBytes("schema_name")),
			SequenceName: string(s.GetStringBytes("sequence_name")),
			MinValue:     string(s.GetStringBytes("min_value")),
			MaxValue:     string(s.GetStringBytes("max_value")),
			IncrementBy:  string(s.GetStringBytes("increment_by")),
			CycleFlag:    string(s.GetStringBytes("cycle_flag")),
			CacheSize:    string(s.GetStringBytes("cache_size")),
		})
	}

	for _, trg := range v.GetArray("triggers") {
		side.AddTrigger(&Trigger{
			SchemaName:  string(trg.GetStringBytes("schema_name")),
			TriggerName: string(trg.GetStringBytes("trigger_name")),
			TableOwner:  string(trg.GetStringBytes("table_owner")),
			TableName:   string(trg.GetStringBytes("table_name")),
			Status:      string(trg.GetStringBytes("status")),
			Validity:    string(trg.GetStringBytes("validity")),
		})
	}

	for _, syn := range v.GetArray("synonyms") {
		side.AddSynonym(&Synonym{
			Owner:       string(syn.GetStringBytes("owner")),
			SynonymName: string(syn.GetStringBytes("synonym_name")),
			TableOwner:  string(syn.GetStringBytes("table_owner")),
			TableName:   string(syn.GetStringBytes("table_name")),
		})
	}

	for _, dep := range v.GetArray("dependencies") {
		side.AddDependency(DependencyEdge{
			Dependent: NewObjectIdentity(
				string(dep.GetStringBytes("owner")),
				string(dep.GetStringBytes("name")),
				common.ObjectType(dep.GetStringBytes("type"))),
			Referenced: NewObjectIdentity(
				string(dep.GetStringBytes("referenced_owner")),
				string(dep.GetStringBytes("referenced_name")),
				common.ObjectType(dep.GetStringBytes("referenced_type"))),
		})
	}

	return side, nil
}

func stringArray(v *fastjson.Value, key string) []string {
	var items []string
	for _, item := range v.GetArray(key) {
		items = append(items, string(item.GetStringBytes()))
	}
	return items
}

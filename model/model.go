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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Minorli/ob-comparator-sub002/common"
)

// 对象标识，加载完成后只读
type ObjectIdentity struct {
	Schema string            `json:"schema"`
	Name   string            `json:"name"`
	Type   common.ObjectType `json:"type"`
}

func NewObjectIdentity(schema, name string, objType common.ObjectType) ObjectIdentity {
	return ObjectIdentity{
		Schema: strings.ToUpper(schema),
		Name:   strings.ToUpper(name),
		Type:   objType,
	}
}

// Key schema.name 标识，规则匹配使用
func (i ObjectIdentity) Key() string {
	return common.StringsBuilder(i.Schema, ".", i.Name)
}

// TypedKey schema.name.type 全局唯一标识
func (i ObjectIdentity) TypedKey() string {
	return common.StringsBuilder(i.Schema, ".", i.Name, ".", string(i.Type))
}

func (i ObjectIdentity) String() string {
	return fmt.Sprintf("%s.%s[%s]", i.Schema, i.Name, i.Type)
}

func (i ObjectIdentity) IsZero() bool {
	return i.Schema == "" && i.Name == ""
}

// 表字段元数据
type Column struct {
	ColumnName    string `json:"column_name"`
	DataType      string `json:"data_type"`
	CharUsed      string `json:"char_used"` // B/C BYTE 或 CHAR 语义
	CharLength    string `json:"char_length"`
	DataLength    string `json:"data_length"`
	DataPrecision string `json:"data_precision"`
	DataScale     string `json:"data_scale"`
	Nullable      string `json:"nullable"`
	DataDefault   string `json:"data_default"`
	HiddenColumn  string `json:"hidden_column"` // YES/NO
}

// 索引元数据，字段顺序敏感
type Index struct {
	IndexName    string   `json:"index_name"`
	Uniqueness   string   `json:"uniqueness"` // UNIQUE/NONUNIQUE
	IndexType    string   `json:"index_type"`
	IndexColumns []string `json:"index_columns"`
}

// 主键/唯一约束
type ConstraintPUKey struct {
	ConstraintName string   `json:"constraint_name"`
	ConstraintType string   `json:"constraint_type"` // PK/UK
	Columns        []string `json:"columns"`
	Deferrable     string   `json:"deferrable"` // DEFERRABLE/NOT DEFERRABLE
}

// 外键约束
type ConstraintForeign struct {
	ConstraintName   string   `json:"constraint_name"`
	Columns          []string `json:"columns"`
	ReferencedSchema string   `json:"referenced_schema"`
	ReferencedTable  string   `json:"referenced_table"`
	ReferencedCols   []string `json:"referenced_columns"`
	DeleteRule       string   `json:"delete_rule"`
	Deferrable       string   `json:"deferrable"`
}

// CHECK 约束
type ConstraintCheck struct {
	ConstraintName string `json:"constraint_name"`
	Expression     string `json:"expression"`
	Generated      string `json:"generated"` // GENERATED NAME/USER NAME
	Deferrable     string `json:"deferrable"`
}

// 表元数据
type Table struct {
	SchemaName         string              `json:"schema_name"`
	TableName          string              `json:"table_name"`
	IsTemporary        bool                `json:"is_temporary"`
	Columns            []Column            `json:"columns"`
	Indexes            []Index             `json:"indexes"`
	PUConstraints      []ConstraintPUKey   `json:"pu_constraints"`
	ForeignConstraints []ConstraintForeign `json:"foreign_constraints"`
	CheckConstraints   []ConstraintCheck   `json:"check_constraints"`
}

// 序列元数据，NUMBER(38) 边界值超 int64，保留字符串由比对侧走 decimal
type Sequence struct {
	SchemaName   string `json:"schema_name"`
	SequenceName string `json:"sequence_name"`
	MinValue     string `json:"min_value"`
	MaxValue     string `json:"max_value"`
	IncrementBy  string `json:"increment_by"`
	CycleFlag    string `json:"cycle_flag"`
	CacheSize    string `json:"cache_size"`
}

// 触发器元数据
type Trigger struct {
	SchemaName  string `json:"schema_name"`
	TriggerName string `json:"trigger_name"`
	TableOwner  string `json:"table_owner"`
	TableName   string `json:"table_name"`
	Status      string `json:"status"`   // ENABLED/DISABLED
	Validity    string `json:"validity"` // VALID/INVALID
}

// 同义词元数据
type Synonym struct {
	Owner       string `json:"owner"`
	SynonymName string `json:"synonym_name"`
	TableOwner  string `json:"table_owner"`
	TableName   string `json:"table_name"`
}

// 依赖关系，方向固定为 dependent 依赖 referenced
type DependencyEdge struct {
	Dependent  ObjectIdentity `json:"dependent"`
	Referenced ObjectIdentity `json:"referenced"`
}

func (e DependencyEdge) String() string {
	jsonStr, _ := json.Marshal(e)
	return string(jsonStr)
}

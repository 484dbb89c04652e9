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
package oracle

import (
	"fmt"
	"strings"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
)

// GetSchemaObjects 查询 schema 下全部对象标识
// 回收站对象与系统生成 LOB 段不参与
func (o *Oracle) GetSchemaObjects(schemaName string) ([]model.ObjectIdentity, error) {
	querySQL := fmt.Sprintf(`SELECT OWNER, OBJECT_NAME, OBJECT_TYPE
  FROM DBA_OBJECTS
 WHERE OWNER = '%s'
   AND OBJECT_TYPE IN ('TABLE','VIEW','MATERIALIZED VIEW','INDEX','SEQUENCE','TRIGGER','PROCEDURE','FUNCTION','PACKAGE','PACKAGE BODY','TYPE','TYPE BODY','SYNONYM','DATABASE LINK','JOB')
   AND OBJECT_NAME NOT LIKE 'BIN$%%'
   AND OBJECT_NAME NOT LIKE 'SYS_LOB%%'
 ORDER BY OBJECT_TYPE, OBJECT_NAME`, strings.ToUpper(schemaName))

	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return nil, err
	}

	var objs []model.ObjectIdentity
	for _, r := range res {
		objs = append(objs, model.NewObjectIdentity(r["OWNER"], r["OBJECT_NAME"], common.ObjectType(r["OBJECT_TYPE"])))
	}
	return objs, nil
}

// GetSchemaConstraintNames 约束对象标识，DBA_OBJECTS 不含约束需单独查询
func (o *Oracle) GetSchemaConstraintNames(schemaName string) ([]model.ObjectIdentity, error) {
	querySQL := fmt.Sprintf(`SELECT OWNER, CONSTRAINT_NAME
  FROM DBA_CONSTRAINTS
 WHERE OWNER = '%s'
   AND CONSTRAINT_TYPE IN ('P','U','R','C')
   AND GENERATED = 'USER NAME'
 ORDER BY CONSTRAINT_NAME`, strings.ToUpper(schemaName))

	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return nil, err
	}

	var objs []model.ObjectIdentity
	for _, r := range res {
		objs = append(objs, model.NewObjectIdentity(r["OWNER"], r["CONSTRAINT_NAME"], common.ObjectTypeConstraint))
	}
	return objs, nil
}

// GetSchemaTable 单表全量元数据，字段/索引/约束一次装配
func (o *Oracle) GetSchemaTable(schemaName, tableName string) (*model.Table, error) {
	table := &model.Table{
		SchemaName: strings.ToUpper(schemaName),
		TableName:  strings.ToUpper(tableName),
	}

	temporary, err := o.getTableTemporary(schemaName, tableName)
	if err != nil {
		return nil, err
	}
	table.IsTemporary = temporary

	if table.Columns, err = o.getTableColumns(schemaName, tableName); err != nil {
		return nil, err
	}
	if table.Indexes, err = o.getTableIndexes(schemaName, tableName); err != nil {
		return nil, err
	}
	if table.PUConstraints, err = o.getTablePUConstraints(schemaName, tableName); err != nil {
		return nil, err
	}
	if table.ForeignConstraints, err = o.getTableForeignConstraints(schemaName, tableName); err != nil {
		return nil, err
	}
	if table.CheckConstraints, err = o.getTableCheckConstraints(schemaName, tableName); err != nil {
		return nil, err
	}
	return table, nil
}

func (o *Oracle) getTableTemporary(schemaName, tableName string) (bool, error) {
	querySQL := fmt.Sprintf(`SELECT TEMPORARY FROM DBA_TABLES WHERE OWNER = '%s' AND TABLE_NAME = '%s'`,
		strings.ToUpper(schemaName), strings.ToUpper(tableName))
	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return false, err
	}
	if len(res) == 0 {
		return false, nil
	}
	return strings.EqualFold(res[0]["TEMPORARY"], "Y"), nil
}

func (o *Oracle) getTableColumns(schemaName, tableName string) ([]model.Column, error) {
	querySQL := fmt.Sprintf(`SELECT T.COLUMN_NAME,
       T.DATA_TYPE,
       T.CHAR_USED,
       T.CHAR_LENGTH,
       T.DATA_LENGTH,
       T.DATA_PRECISION,
       T.DATA_SCALE,
       T.NULLABLE,
       T.DATA_DEFAULT,
       T.HIDDEN_COLUMN
  FROM DBA_TAB_COLS T
 WHERE T.OWNER = '%s'
   AND T.TABLE_NAME = '%s'
 ORDER BY T.COLUMN_ID`, strings.ToUpper(schemaName), strings.ToUpper(tableName))

	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return nil, err
	}

	var columns []model.Column
	for _, r := range res {
		columns = append(columns, model.Column{
			ColumnName:    r["COLUMN_NAME"],
			DataType:      r["DATA_TYPE"],
			CharUsed:      r["CHAR_USED"],
			CharLength:    r["CHAR_LENGTH"],
			DataLength:    r["DATA_LENGTH"],
			DataPrecision: r["DATA_PRECISION"],
			DataScale:     r["DATA_SCALE"],
			Nullable:      r["NULLABLE"],
			DataDefault:   r["DATA_DEFAULT"],
			HiddenColumn:  r["HIDDEN_COLUMN"],
		})
	}
	return columns, nil
}

func (o *Oracle) getTableIndexes(schemaName, tableName string) ([]model.Index, error) {
	querySQL := fmt.Sprintf(`SELECT I.INDEX_NAME,
       I.UNIQUENESS,
       I.INDEX_TYPE,
       LISTAGG(C.COLUMN_NAME, ',') WITHIN GROUP(ORDER BY C.COLUMN_POSITION) AS INDEX_COLUMNS
  FROM DBA_INDEXES I, DBA_IND_COLUMNS C
 WHERE I.OWNER = C.INDEX_OWNER
   AND I.INDEX_NAME = C.INDEX_NAME
   AND I.TABLE_OWNER = '%s'
   AND I.TABLE_NAME = '%s'
 GROUP BY I.INDEX_NAME, I.UNIQUENESS, I.INDEX_TYPE
 ORDER BY I.INDEX_NAME`, strings.ToUpper(schemaName), strings.ToUpper(tableName))

	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return nil, err
	}

	var indexes []model.Index
	for _, r := range res {
		indexes = append(indexes, model.Index{
			IndexName:    r["INDEX_NAME"],
			Uniqueness:   r["UNIQUENESS"],
			IndexType:    r["INDEX_TYPE"],
			IndexColumns: strings.Split(r["INDEX_COLUMNS"], ","),
		})
	}
	return indexes, nil
}

func (o *Oracle) getTablePUConstraints(schemaName, tableName string) ([]model.ConstraintPUKey, error) {
	querySQL := fmt.Sprintf(`SELECT CU.CONSTRAINT_NAME,
       DECODE(CU.CONSTRAINT_TYPE, 'P', 'PK', 'U', 'UK') AS CONSTRAINT_TYPE,
       CU.DEFERRABLE,
       LISTAGG(CC.COLUMN_NAME, ',') WITHIN GROUP(ORDER BY CC.POSITION) AS CONSTRAINT_COLUMNS
  FROM DBA_CONSTRAINTS CU, DBA_CONS_COLUMNS CC
 WHERE CU.CONSTRAINT_NAME = CC.CONSTRAINT_NAME
   AND CU.OWNER = CC.OWNER
   AND CU.CONSTRAINT_TYPE IN ('P','U')
   AND CU.OWNER = '%s'
   AND CU.TABLE_NAME = '%s'
 GROUP BY CU.CONSTRAINT_NAME, CU.CONSTRAINT_TYPE, CU.DEFERRABLE
 ORDER BY CU.CONSTRAINT_NAME`, strings.ToUpper(schemaName), strings.ToUpper(tableName))

	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return nil, err
	}

	var constraints []model.ConstraintPUKey
	for _, r := range res {
		constraints = append(constraints, model.ConstraintPUKey{
			ConstraintName: r["CONSTRAINT_NAME"],
			ConstraintType: r["CONSTRAINT_TYPE"],
			Columns:        strings.Split(r["CONSTRAINT_COLUMNS"], ","),
			Deferrable:     r["DEFERRABLE"],
		})
	}
	return constraints, nil
}

func (o *Oracle) getTableForeignConstraints(schemaName, tableName string) ([]model.ConstraintForeign, error) {
	querySQL := fmt.Sprintf(`SELECT T.CONSTRAINT_NAME,
       T.DEFERRABLE,
       T.DELETE_RULE,
       LISTAGG(C.COLUMN_NAME, ',') WITHIN GROUP(ORDER BY C.POSITION) AS CONSTRAINT_COLUMNS,
       R.OWNER      AS R_OWNER,
       R.TABLE_NAME AS R_TABLE_NAME,
       LISTAGG(RC.COLUMN_NAME, ',') WITHIN GROUP(ORDER BY RC.POSITION) AS R_COLUMNS
  FROM DBA_CONSTRAINTS T, DBA_CONS_COLUMNS C, DBA_CONSTRAINTS R, DBA_CONS_COLUMNS RC
 WHERE T.CONSTRAINT_NAME = C.CONSTRAINT_NAME
   AND T.OWNER = C.OWNER
   AND T.R_CONSTRAINT_NAME = R.CONSTRAINT_NAME
   AND T.R_OWNER = R.OWNER
   AND R.CONSTRAINT_NAME = RC.CONSTRAINT_NAME
   AND R.OWNER = RC.OWNER
   AND T.CONSTRAINT_TYPE = 'R'
   AND T.OWNER = '%s'
   AND T.TABLE_NAME = '%s'
 GROUP BY T.CONSTRAINT_NAME, T.DEFERRABLE, T.DELETE_RULE, R.OWNER, R.TABLE_NAME
 ORDER BY T.CONSTRAINT_NAME`, strings.ToUpper(schemaName), strings.ToUpper(tableName))

	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return nil, err
	}

	var constraints []model.ConstraintForeign
	for _, r := range res {
		constraints = append(constraints, model.ConstraintForeign{
			ConstraintName:   r["CONSTRAINT_NAME"],
			Columns:          strings.Split(r["CONSTRAINT_COLUMNS"], ","),
			ReferencedSchema: r["R_OWNER"],
			ReferencedTable:  r["R_TABLE_NAME"],
			ReferencedCols:   strings.Split(r["R_COLUMNS"], ","),
			DeleteRule:       r["DELETE_RULE"],
			Deferrable:       r["DEFERRABLE"],
		})
	}
	return constraints, nil
}

func (o *Oracle) getTableCheckConstraints(schemaName, tableName string) ([]model.ConstraintCheck, error) {
	querySQL := fmt.Sprintf(`SELECT CONSTRAINT_NAME, SEARCH_CONDITION, GENERATED, DEFERRABLE
  FROM DBA_CONSTRAINTS
 WHERE CONSTRAINT_TYPE = 'C'
   AND OWNER = '%s'
   AND TABLE_NAME = '%s'
 ORDER BY CONSTRAINT_NAME`, strings.ToUpper(schemaName), strings.ToUpper(tableName))

	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return nil, err
	}

	var constraints []model.ConstraintCheck
	for _, r := range res {
		constraints = append(constraints, model.ConstraintCheck{
			ConstraintName: r["CONSTRAINT_NAME"],
			Expression:     r["SEARCH_CONDITION"],
			Generated:      r["GENERATED"],
			Deferrable:     r["DEFERRABLE"],
		})
	}
	return constraints, nil
}

// GetSchemaSequences 序列属性，NUMBER(38) 边界值保留字符串
func (o *Oracle) GetSchemaSequences(schemaName string) ([]*model.Sequence, error) {
	querySQL := fmt.Sprintf(`SELECT SEQUENCE_OWNER,
       SEQUENCE_NAME,
       TO_CHAR(MIN_VALUE) AS MIN_VALUE,
       TO_CHAR(MAX_VALUE) AS MAX_VALUE,
       TO_CHAR(INCREMENT_BY) AS INCREMENT_BY,
       CYCLE_FLAG,
       TO_CHAR(CACHE_SIZE) AS CACHE_SIZE
  FROM DBA_SEQUENCES
 WHERE SEQUENCE_OWNER = '%s'
 ORDER BY SEQUENCE_NAME`, strings.ToUpper(schemaName))

	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return nil, err
	}

	var sequences []*model.Sequence
	for _, r := range res {
		sequences = append(sequences, &model.Sequence{
			SchemaName:   r["SEQUENCE_OWNER"],
			SequenceName: r["SEQUENCE_NAME"],
			MinValue:     r["MIN_VALUE"],
			MaxValue:     r["MAX_VALUE"],
			IncrementBy:  r["INCREMENT_BY"],
			CycleFlag:    r["CYCLE_FLAG"],
			CacheSize:    r["CACHE_SIZE"],
		})
	}
	return sequences, nil
}

// GetSchemaTriggers 触发器状态元组
func (o *Oracle) GetSchemaTriggers(schemaName string) ([]*model.Trigger, error) {
	querySQL := fmt.Sprintf(`SELECT T.OWNER,
       T.TRIGGER_NAME,
       T.TABLE_OWNER,
       T.TABLE_NAME,
       T.STATUS,
       DECODE(O.STATUS, 'VALID', 'VALID', 'INVALID') AS VALIDITY
  FROM DBA_TRIGGERS T, DBA_OBJECTS O
 WHERE T.OWNER = O.OWNER
   AND T.TRIGGER_NAME = O.OBJECT_NAME
   AND O.OBJECT_TYPE = 'TRIGGER'
   AND T.OWNER = '%s'
 ORDER BY T.TRIGGER_NAME`, strings.ToUpper(schemaName))

	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return nil, err
	}

	var triggers []*model.Trigger
	for _, r := range res {
		triggers = append(triggers, &model.Trigger{
			SchemaName:  r["OWNER"],
			TriggerName: r["TRIGGER_NAME"],
			TableOwner:  r["TABLE_OWNER"],
			TableName:   r["TABLE_NAME"],
			Status:      r["STATUS"],
			Validity:    r["VALIDITY"],
		})
	}
	return triggers, nil
}

// GetSchemaSynonyms 同义词，含 PUBLIC 属主指向该 schema 的部分
func (o *Oracle) GetSchemaSynonyms(schemaName string) ([]*model.Synonym, error) {
	querySQL := fmt.Sprintf(`SELECT OWNER, SYNONYM_NAME, TABLE_OWNER, TABLE_NAME
  FROM DBA_SYNONYMS
 WHERE OWNER = '%s'
    OR (OWNER = 'PUBLIC' AND TABLE_OWNER = '%s')
 ORDER BY OWNER, SYNONYM_NAME`, strings.ToUpper(schemaName), strings.ToUpper(schemaName))

	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return nil, err
	}

	var synonyms []*model.Synonym
	for _, r := range res {
		synonyms = append(synonyms, &model.Synonym{
			Owner:       r["OWNER"],
			SynonymName: r["SYNONYM_NAME"],
			TableOwner:  r["TABLE_OWNER"],
			TableName:   r["TABLE_NAME"],
		})
	}
	return synonyms, nil
}

// GetSchemaDependencies 依赖边，方向 dependent 依赖 referenced
func (o *Oracle) GetSchemaDependencies(schemaName string) ([]model.DependencyEdge, error) {
	querySQL := fmt.Sprintf(`SELECT OWNER, NAME, TYPE, REFERENCED_OWNER, REFERENCED_NAME, REFERENCED_TYPE
  FROM DBA_DEPENDENCIES
 WHERE OWNER = '%s'
   AND REFERENCED_OWNER NOT IN ('SYS','SYSTEM','PUBLIC')
   AND REFERENCED_TYPE <> 'NON-EXISTENT'
 ORDER BY NAME, REFERENCED_NAME`, strings.ToUpper(schemaName))

	_, res, err := Query(o.Ctx, o.OracleDB, querySQL)
	if err != nil {
		return nil, err
	}

	var edges []model.DependencyEdge
	for _, r := range res {
		edges = append(edges, model.DependencyEdge{
			Dependent:  model.NewObjectIdentity(r["OWNER"], r["NAME"], common.ObjectType(r["TYPE"])),
			Referenced: model.NewObjectIdentity(r["REFERENCED_OWNER"], r["REFERENCED_NAME"], common.ObjectType(r["REFERENCED_TYPE"])),
		})
	}
	return edges, nil
}

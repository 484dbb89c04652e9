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
package oceanbase

import (
	"fmt"
	"strings"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
	"go.uber.org/zap"
)

// GetSchemaObjects 目标端对象标识，表/视图/存储程序/触发器
func (ob *OceanBase) GetSchemaObjects(schemaName string) ([]model.ObjectIdentity, error) {
	var objs []model.ObjectIdentity

	querySQL := fmt.Sprintf(`SELECT TABLE_NAME, TABLE_TYPE
  FROM INFORMATION_SCHEMA.TABLES
 WHERE TABLE_SCHEMA = '%s'
 ORDER BY TABLE_NAME`, strings.ToUpper(schemaName))
	_, res, err := Query(ob.Ctx, ob.OBDB, querySQL)
	if err != nil {
		return nil, err
	}
	for _, r := range res {
		objType := common.ObjectTypeTable
		if strings.EqualFold(r["TABLE_TYPE"], "VIEW") {
			objType = common.ObjectTypeView
		}
		objs = append(objs, model.NewObjectIdentity(schemaName, r["TABLE_NAME"], objType))
	}

	querySQL = fmt.Sprintf(`SELECT ROUTINE_NAME, ROUTINE_TYPE
  FROM INFORMATION_SCHEMA.ROUTINES
 WHERE ROUTINE_SCHEMA = '%s'
 ORDER BY ROUTINE_NAME`, strings.ToUpper(schemaName))
	_, res, err = Query(ob.Ctx, ob.OBDB, querySQL)
	if err != nil {
		return nil, err
	}
	for _, r := range res {
		objType := common.ObjectTypeProcedure
		if strings.EqualFold(r["ROUTINE_TYPE"], "FUNCTION") {
			objType = common.ObjectTypeFunction
		}
		objs = append(objs, model.NewObjectIdentity(schemaName, r["ROUTINE_NAME"], objType))
	}

	triggers, err := ob.GetSchemaTriggers(schemaName)
	if err != nil {
		return nil, err
	}
	for _, trg := range triggers {
		objs = append(objs, model.NewObjectIdentity(trg.SchemaName, trg.TriggerName, common.ObjectTypeTrigger))
	}
	return objs, nil
}

// GetSchemaTable 目标端单表全量元数据
func (ob *OceanBase) GetSchemaTable(schemaName, tableName string) (*model.Table, error) {
	table := &model.Table{
		SchemaName: strings.ToUpper(schemaName),
		TableName:  strings.ToUpper(tableName),
	}

	var err error
	if table.Columns, err = ob.getTableColumns(schemaName, tableName); err != nil {
		return nil, err
	}
	if table.Indexes, err = ob.getTableIndexes(schemaName, tableName); err != nil {
		return nil, err
	}
	if table.PUConstraints, err = ob.getTablePUConstraints(schemaName, tableName); err != nil {
		return nil, err
	}
	if table.ForeignConstraints, err = ob.getTableForeignConstraints(schemaName, tableName); err != nil {
		return nil, err
	}
	if table.CheckConstraints, err = ob.getTableCheckConstraints(schemaName, tableName); err != nil {
		return nil, err
	}
	return table, nil
}

func (ob *OceanBase) getTableColumns(schemaName, tableName string) ([]model.Column, error) {
	querySQL := fmt.Sprintf(`SELECT COLUMN_NAME,
       UPPER(DATA_TYPE) AS DATA_TYPE,
       IFNULL(CHARACTER_MAXIMUM_LENGTH, 0) AS CHAR_LENGTH,
       IFNULL(NUMERIC_PRECISION, '') AS DATA_PRECISION,
       IFNULL(NUMERIC_SCALE, '') AS DATA_SCALE,
       IF(IS_NULLABLE = 'YES', 'Y', 'N') AS NULLABLE,
       IFNULL(COLUMN_DEFAULT, '') AS DATA_DEFAULT
  FROM INFORMATION_SCHEMA.COLUMNS
 WHERE TABLE_SCHEMA = '%s'
   AND TABLE_NAME = '%s'
 ORDER BY ORDINAL_POSITION`, strings.ToUpper(schemaName), strings.ToUpper(tableName))

	_, res, err := Query(ob.Ctx, ob.OBDB, querySQL)
	if err != nil {
		return nil, err
	}

	var columns []model.Column
	for _, r := range res {
		columns = append(columns, model.Column{
			ColumnName:    r["COLUMN_NAME"],
			DataType:      r["DATA_TYPE"],
			CharLength:    r["CHAR_LENGTH"],
			DataLength:    r["CHAR_LENGTH"],
			DataPrecision: r["DATA_PRECISION"],
			DataScale:     r["DATA_SCALE"],
			Nullable:      r["NULLABLE"],
			DataDefault:   r["DATA_DEFAULT"],
		})
	}
	return columns, nil
}

func (ob *OceanBase) getTableIndexes(schemaName, tableName string) ([]model.Index, error) {
	querySQL := fmt.Sprintf(`SELECT INDEX_NAME,
       IF(NON_UNIQUE = 0, 'UNIQUE', 'NONUNIQUE') AS UNIQUENESS,
       INDEX_TYPE,
       GROUP_CONCAT(COLUMN_NAME ORDER BY SEQ_IN_INDEX SEPARATOR ',') AS INDEX_COLUMNS
  FROM INFORMATION_SCHEMA.STATISTICS
 WHERE TABLE_SCHEMA = '%s'
   AND TABLE_NAME = '%s'
 GROUP BY INDEX_NAME, NON_UNIQUE, INDEX_TYPE
 ORDER BY INDEX_NAME`, strings.ToUpper(schemaName), strings.ToUpper(tableName))

	_, res, err := Query(ob.Ctx, ob.OBDB, querySQL)
	if err != nil {
		return nil, err
	}

	var indexes []model.Index
	for _, r := range res {
		// PRIMARY 伪索引由主键约束覆盖
		if strings.EqualFold(r["INDEX_NAME"], "PRIMARY") {
			continue
		}
		indexes = append(indexes, model.Index{
			IndexName:    r["INDEX_NAME"],
			Uniqueness:   r["UNIQUENESS"],
			IndexType:    r["INDEX_TYPE"],
			IndexColumns: strings.Split(r["INDEX_COLUMNS"], ","),
		})
	}
	return indexes, nil
}

func (ob *OceanBase) getTablePUConstraints(schemaName, tableName string) ([]model.ConstraintPUKey, error) {
	querySQL := fmt.Sprintf(`SELECT TC.CONSTRAINT_NAME,
       IF(TC.CONSTRAINT_TYPE = 'PRIMARY KEY', 'PK', 'UK') AS CONSTRAINT_TYPE,
       GROUP_CONCAT(KCU.COLUMN_NAME ORDER BY KCU.ORDINAL_POSITION SEPARATOR ',') AS CONSTRAINT_COLUMNS
  FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS TC,
       INFORMATION_SCHEMA.KEY_COLUMN_USAGE KCU
 WHERE TC.CONSTRAINT_NAME = KCU.CONSTRAINT_NAME
   AND TC.TABLE_SCHEMA = KCU.TABLE_SCHEMA
   AND TC.TABLE_NAME = KCU.TABLE_NAME
   AND TC.CONSTRAINT_TYPE IN ('PRIMARY KEY','UNIQUE')
   AND TC.TABLE_SCHEMA = '%s'
   AND TC.TABLE_NAME = '%s'
 GROUP BY TC.CONSTRAINT_NAME, TC.CONSTRAINT_TYPE
 ORDER BY TC.CONSTRAINT_NAME`, strings.ToUpper(schemaName), strings.ToUpper(tableName))

	_, res, err := Query(ob.Ctx, ob.OBDB, querySQL)
	if err != nil {
		return nil, err
	}

	var constraints []model.ConstraintPUKey
	for _, r := range res {
		constraints = append(constraints, model.ConstraintPUKey{
			ConstraintName: r["CONSTRAINT_NAME"],
			ConstraintType: r["CONSTRAINT_TYPE"],
			Columns:        strings.Split(r["CONSTRAINT_COLUMNS"], ","),
		})
	}
	return constraints, nil
}

func (ob *OceanBase) getTableForeignConstraints(schemaName, tableName string) ([]model.ConstraintForeign, error) {
	querySQL := fmt.Sprintf(`SELECT KCU.CONSTRAINT_NAME,
       GROUP_CONCAT(KCU.COLUMN_NAME ORDER BY KCU.ORDINAL_POSITION SEPARATOR ',') AS CONSTRAINT_COLUMNS,
       KCU.REFERENCED_TABLE_SCHEMA,
       KCU.REFERENCED_TABLE_NAME,
       GROUP_CONCAT(KCU.REFERENCED_COLUMN_NAME ORDER BY KCU.ORDINAL_POSITION SEPARATOR ',') AS R_COLUMNS,
       RC.DELETE_RULE
  FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE KCU,
       INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS RC
 WHERE KCU.CONSTRAINT_NAME = RC.CONSTRAINT_NAME
   AND KCU.TABLE_SCHEMA = RC.CONSTRAINT_SCHEMA
   AND KCU.REFERENCED_TABLE_NAME IS NOT NULL
   AND KCU.TABLE_SCHEMA = '%s'
   AND KCU.TABLE_NAME = '%s'
 GROUP BY KCU.CONSTRAINT_NAME, KCU.REFERENCED_TABLE_SCHEMA, KCU.REFERENCED_TABLE_NAME, RC.DELETE_RULE
 ORDER BY KCU.CONSTRAINT_NAME`, strings.ToUpper(schemaName), strings.ToUpper(tableName))

	_, res, err := Query(ob.Ctx, ob.OBDB, querySQL)
	if err != nil {
		return nil, err
	}

	var constraints []model.ConstraintForeign
	for _, r := range res {
		constraints = append(constraints, model.ConstraintForeign{
			ConstraintName:   r["CONSTRAINT_NAME"],
			Columns:          strings.Split(r["CONSTRAINT_COLUMNS"], ","),
			ReferencedSchema: r["REFERENCED_TABLE_SCHEMA"],
			ReferencedTable:  r["REFERENCED_TABLE_NAME"],
			ReferencedCols:   strings.Split(r["R_COLUMNS"], ","),
			DeleteRule:       r["DELETE_RULE"],
		})
	}
	return constraints, nil
}

func (ob *OceanBase) getTableCheckConstraints(schemaName, tableName string) ([]model.ConstraintCheck, error) {
	querySQL := fmt.Sprintf(`SELECT TC.CONSTRAINT_NAME, CC.CHECK_CLAUSE
  FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS TC,
       INFORMATION_SCHEMA.CHECK_CONSTRAINTS CC
 WHERE TC.CONSTRAINT_NAME = CC.CONSTRAINT_NAME
   AND TC.CONSTRAINT_TYPE = 'CHECK'
   AND TC.TABLE_SCHEMA = '%s'
   AND TC.TABLE_NAME = '%s'
 ORDER BY TC.CONSTRAINT_NAME`, strings.ToUpper(schemaName), strings.ToUpper(tableName))

	_, res, err := Query(ob.Ctx, ob.OBDB, querySQL)
	if err != nil {
		// 低版本租户无 CHECK_CONSTRAINTS 视图，按无检查约束处理
		zap.L().Warn("query check constraints failed, treated as empty",
			zap.String("schema", schemaName),
			zap.String("table", tableName),
			zap.Error(err))
		return nil, nil
	}

	var constraints []model.ConstraintCheck
	for _, r := range res {
		constraints = append(constraints, model.ConstraintCheck{
			ConstraintName: r["CONSTRAINT_NAME"],
			Expression:     r["CHECK_CLAUSE"],
		})
	}
	return constraints, nil
}

// GetSchemaSequences 目标端序列，低版本租户无序列视图按空处理
func (ob *OceanBase) GetSchemaSequences(schemaName string) ([]*model.Sequence, error) {
	querySQL := fmt.Sprintf(`SELECT SEQUENCE_SCHEMA,
       SEQUENCE_NAME,
       MINIMUM_VALUE AS MIN_VALUE,
       MAXIMUM_VALUE AS MAX_VALUE,
       INCREMENT AS INCREMENT_BY,
       IF(CYCLE_OPTION = 'YES', 'Y', 'N') AS CYCLE_FLAG
  FROM INFORMATION_SCHEMA.SEQUENCES
 WHERE SEQUENCE_SCHEMA = '%s'
 ORDER BY SEQUENCE_NAME`, strings.ToUpper(schemaName))

	_, res, err := Query(ob.Ctx, ob.OBDB, querySQL)
	if err != nil {
		zap.L().Warn("query sequences failed, treated as empty",
			zap.String("schema", schemaName),
			zap.Error(err))
		return nil, nil
	}

	var sequences []*model.Sequence
	for _, r := range res {
		sequences = append(sequences, &model.Sequence{
			SchemaName:   r["SEQUENCE_SCHEMA"],
			SequenceName: r["SEQUENCE_NAME"],
			MinValue:     r["MIN_VALUE"],
			MaxValue:     r["MAX_VALUE"],
			IncrementBy:  r["INCREMENT_BY"],
			CycleFlag:    r["CYCLE_FLAG"],
		})
	}
	return sequences, nil
}

// GetSchemaTriggers 目标端触发器，OB MySQL 租户触发器恒为启用态
func (ob *OceanBase) GetSchemaTriggers(schemaName string) ([]*model.Trigger, error) {
	querySQL := fmt.Sprintf(`SELECT TRIGGER_SCHEMA,
       TRIGGER_NAME,
       EVENT_OBJECT_SCHEMA,
       EVENT_OBJECT_TABLE
  FROM INFORMATION_SCHEMA.TRIGGERS
 WHERE TRIGGER_SCHEMA = '%s'
 ORDER BY TRIGGER_NAME`, strings.ToUpper(schemaName))

	_, res, err := Query(ob.Ctx, ob.OBDB, querySQL)
	if err != nil {
		return nil, err
	}

	var triggers []*model.Trigger
	for _, r := range res {
		triggers = append(triggers, &model.Trigger{
			SchemaName:  r["TRIGGER_SCHEMA"],
			TriggerName: r["TRIGGER_NAME"],
			TableOwner:  r["EVENT_OBJECT_SCHEMA"],
			TableName:   r["EVENT_OBJECT_TABLE"],
			Status:      "ENABLED",
			Validity:    "VALID",
		})
	}
	return triggers, nil
}

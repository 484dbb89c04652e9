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
	"fmt"
	"sort"
	"strings"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
	"go.uber.org/zap"
)

// BuildTableAlters 既有表的字段级 ALTER 语句
// 缺失字段补 ADD COLUMN，BYTE 语义长度不足补到下界 ceil(L*1.5)
// 超界字段仅告警不生成语句，多余字段不做删除
func BuildTableAlters(src, tgt *model.Table, targetSchema, targetTable string) []string {
	var alters []string

	tgtCols := make(map[string]model.Column)
	for _, c := range tgt.Columns {
		tgtCols[strings.ToUpper(c.ColumnName)] = c
	}

	var names []string
	srcCols := make(map[string]model.Column)
	for _, c := range src.Columns {
		name := strings.ToUpper(c.ColumnName)
		if c.HiddenColumn == "YES" || common.IsOracleHiddenColumnName(name) {
			continue
		}
		srcCols[name] = c
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		srcCol := srcCols[name]
		tgtCol, ok := tgtCols[name]
		if !ok {
			alters = append(alters, fmt.Sprintf("ALTER TABLE %s.%s ADD COLUMN %s %s;",
				targetSchema, targetTable, name, targetColumnDef(srcCol)))
			continue
		}
		if alter, ok := buildLengthAlter(srcCol, tgtCol, targetSchema, targetTable, name); ok {
			alters = append(alters, alter)
		}
	}
	return alters
}

func buildLengthAlter(srcCol, tgtCol model.Column, targetSchema, targetTable, name string) (string, bool) {
	srcType := strings.ToUpper(srcCol.DataType)
	switch srcType {
	case "VARCHAR2", "VARCHAR", "NVARCHAR2", "CHAR", "NCHAR":
	default:
		return "", false
	}

	srcLen, err := columnLengthValue(srcCol)
	if err != nil {
		return "", false
	}
	tgtLen, err := columnLengthValue(tgtCol)
	if err != nil {
		return "", false
	}

	isChar := srcType == "CHAR" || srcType == "NCHAR" || strings.ToUpper(srcCol.CharUsed) == "C"
	if isChar {
		if srcLen != tgtLen {
			return fmt.Sprintf("ALTER TABLE %s.%s MODIFY COLUMN %s %s;",
				targetSchema, targetTable, name, targetColumnDef(srcCol)), true
		}
		return "", false
	}

	lower := common.ByteLengthLowerBound(srcLen)
	if tgtLen < lower {
		return fmt.Sprintf("ALTER TABLE %s.%s MODIFY COLUMN %s VARCHAR(%d);",
			targetSchema, targetTable, name, lower), true
	}
	if tgtLen > common.ByteLengthUpperBound(srcLen) {
		zap.L().Warn("column length oversize, alter isn't generated",
			zap.String("table", common.StringsBuilder(targetSchema, ".", targetTable)),
			zap.String("column", name),
			zap.Int64("source length", srcLen),
			zap.Int64("target length", tgtLen))
	}
	return "", false
}

// 源端字段元数据推导目标字段定义
func targetColumnDef(c model.Column) string {
	srcType := strings.ToUpper(c.DataType)

	if equivalent, ok := common.LongTypeEquivalentMap[srcType]; ok {
		srcType = equivalent
	}

	var def string
	switch srcType {
	case "VARCHAR2", "VARCHAR", "NVARCHAR2":
		length, err := columnLengthValue(c)
		if err != nil {
			def = "VARCHAR(255)"
			break
		}
		if strings.ToUpper(c.CharUsed) == "C" {
			def = fmt.Sprintf("VARCHAR(%d)", length)
		} else {
			def = fmt.Sprintf("VARCHAR(%d)", common.ByteLengthLowerBound(length))
		}
	case "CHAR", "NCHAR":
		length, err := columnLengthValue(c)
		if err != nil {
			def = "CHAR(1)"
			break
		}
		def = fmt.Sprintf("CHAR(%d)", length)
	case "NUMBER":
		switch {
		case common.IsEmptyString(c.DataPrecision):
			def = "NUMBER"
		case common.IsEmptyString(c.DataScale) || c.DataScale == "0":
			def = fmt.Sprintf("NUMBER(%s)", c.DataPrecision)
		default:
			def = fmt.Sprintf("NUMBER(%s,%s)", c.DataPrecision, c.DataScale)
		}
	default:
		def = srcType
	}

	if strings.ToUpper(c.Nullable) == "N" {
		def = def + " NOT NULL"
	}
	if !common.IsEmptyString(c.DataDefault) {
		def = def + " DEFAULT " + strings.TrimSpace(c.DataDefault)
	}
	return def
}

func columnLengthValue(c model.Column) (int64, error) {
	if !common.IsEmptyString(c.CharLength) && c.CharLength != "0" {
		return common.StrconvIntBitSize(c.CharLength, 64)
	}
	return common.StrconvIntBitSize(c.DataLength, 64)
}

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
	"fmt"
	"sort"
	"strings"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
	"go.uber.org/zap"
)

// CompareTableColumns 字段集合与长度语义比对
// 源端剔除 Oracle 隐藏字段，目标端剔除 OceanBase 平台注入字段
// BYTE 语义 VARCHAR 目标长度须落在 [ceil(L*1.5), ceil(L*2.5)] 区间
// 超上界仅告警不参与修复，CHAR 语义要求精确相等
func CompareTableColumns(src, tgt *model.Table) []Finding {
	var findings []Finding

	srcCols := make(map[string]model.Column)
	for _, c := range src.Columns {
		name := strings.ToUpper(c.ColumnName)
		if c.HiddenColumn == "YES" || common.IsOracleHiddenColumnName(name) {
			continue
		}
		srcCols[name] = c
	}

	tgtCols := make(map[string]model.Column)
	for _, c := range tgt.Columns {
		name := strings.ToUpper(c.ColumnName)
		if common.IsContainString(common.OceanBaseInjectedColumns, name) {
			continue
		}
		// 全局临时表仿真的判别字段由平台注入
		if src.IsTemporary && name == common.TempTableDiscriminatorColumn {
			continue
		}
		tgtCols[name] = c
	}

	var names []string
	for name := range srcCols {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		srcCol := srcCols[name]
		tgtCol, ok := tgtCols[name]
		if !ok {
			findings = append(findings, Finding{
				Reason: common.ReasonColumnMissing,
				Detail: fmt.Sprintf("column [%s] isn't exist in target table", name),
			})
			continue
		}
		findings = append(findings, compareColumnPair(name, srcCol, tgtCol)...)
	}

	var extraNames []string
	for name := range tgtCols {
		if _, ok := srcCols[name]; !ok {
			extraNames = append(extraNames, name)
		}
	}
	sort.Strings(extraNames)
	for _, name := range extraNames {
		findings = append(findings, Finding{
			Reason: common.ReasonColumnExtra,
			Detail: fmt.Sprintf("column [%s] isn't exist in source table", name),
		})
	}
	return findings
}

func compareColumnPair(name string, srcCol, tgtCol model.Column) []Finding {
	var findings []Finding

	srcType := strings.ToUpper(srcCol.DataType)
	tgtType := strings.ToUpper(tgtCol.DataType)

	// LONG/LONG RAW 视作 CLOB/BLOB 等价，不判类型差异
	if equivalent, ok := common.LongTypeEquivalentMap[srcType]; ok {
		if tgtType == equivalent || tgtType == srcType {
			return nil
		}
		return []Finding{{
			Reason: common.ReasonColumnType,
			Detail: fmt.Sprintf("column [%s] type expect %s or %s, actual %s", name, srcType, equivalent, tgtType),
		}}
	}

	switch srcType {
	case "VARCHAR2", "VARCHAR", "NVARCHAR2":
		findings = append(findings, compareVarcharLength(name, srcCol, tgtCol)...)
	case "CHAR", "NCHAR":
		findings = append(findings, compareCharLength(name, srcCol, tgtCol)...)
	}
	return findings
}

func compareVarcharLength(name string, srcCol, tgtCol model.Column) []Finding {
	srcLen, tgtLen, ok := columnLengths(name, srcCol, tgtCol)
	if !ok {
		return nil
	}

	// CHAR 语义长度精确，BYTE 语义走扩容区间
	if strings.ToUpper(srcCol.CharUsed) == "C" {
		if srcLen != tgtLen {
			return []Finding{{
				Reason: common.ReasonColumnLength,
				Detail: fmt.Sprintf("column [%s] char semantics length expect %d, actual %d", name, srcLen, tgtLen),
			}}
		}
		return nil
	}

	lower := common.ByteLengthLowerBound(srcLen)
	upper := common.ByteLengthUpperBound(srcLen)
	if tgtLen < lower {
		return []Finding{{
			Reason: common.ReasonColumnLength,
			Detail: fmt.Sprintf("column [%s] byte semantics length expect >= %d, actual %d", name, lower, tgtLen),
		}}
	}
	if tgtLen > upper {
		return []Finding{{
			Reason: common.ReasonColumnOversize,
			Detail: fmt.Sprintf("column [%s] byte semantics length expect <= %d, actual %d, oversize isn't auto fixed", name, upper, tgtLen),
		}}
	}
	return nil
}

func compareCharLength(name string, srcCol, tgtCol model.Column) []Finding {
	srcLen, tgtLen, ok := columnLengths(name, srcCol, tgtCol)
	if !ok {
		return nil
	}
	if srcLen != tgtLen {
		return []Finding{{
			Reason: common.ReasonColumnLength,
			Detail: fmt.Sprintf("column [%s] length expect %d, actual %d", name, srcLen, tgtLen),
		}}
	}
	return nil
}

func columnLengths(name string, srcCol, tgtCol model.Column) (int64, int64, bool) {
	srcLen, err := columnLength(srcCol)
	if err != nil {
		zap.L().Warn("source column length isn't numeric, length compare skipped",
			zap.String("column", name), zap.Error(err))
		return 0, 0, false
	}
	tgtLen, err := columnLength(tgtCol)
	if err != nil {
		zap.L().Warn("target column length isn't numeric, length compare skipped",
			zap.String("column", name), zap.Error(err))
		return 0, 0, false
	}
	return srcLen, tgtLen, true
}

func columnLength(c model.Column) (int64, error) {
	if !common.IsEmptyString(c.CharLength) && c.CharLength != "0" {
		return common.StrconvIntBitSize(c.CharLength, 64)
	}
	return common.StrconvIntBitSize(c.DataLength, 64)
}

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
	"strings"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
)

// IndexFingerprint 索引指纹 (uniqueness, 有序字段列表)，与索引名无关
// 系统生成隐藏字段名规范化为占位符，平台隐藏字段命名差异不产生伪差异
// 全局临时表仿真场景剥离前导判别字段
func IndexFingerprint(idx model.Index, isTemporary bool) string {
	cols := canonicalizeIndexColumns(idx.IndexColumns, isTemporary)
	return common.StringsBuilder(strings.ToUpper(idx.Uniqueness), "(", strings.Join(cols, ","), ")")
}

// 指纹字段部分，唯一性无关的字段元组匹配使用
func indexColumnsKey(idx model.Index, isTemporary bool) string {
	return strings.Join(canonicalizeIndexColumns(idx.IndexColumns, isTemporary), ",")
}

func canonicalizeIndexColumns(columns []string, isTemporary bool) []string {
	var cols []string
	for i, col := range columns {
		c := common.ReplaceQuotesString(strings.ToUpper(strings.TrimSpace(col)))
		if isTemporary && i == 0 && c == common.TempTableDiscriminatorColumn {
			continue
		}
		if common.IsOracleHiddenColumnName(c) {
			c = common.HiddenColumnPlaceholder
		}
		cols = append(cols, c)
	}
	return cols
}

// IsHousekeepingIndex OceanBase 内部维护索引判断，直接排除不参与比对
func IsHousekeepingIndex(indexName string) bool {
	upper := strings.ToUpper(indexName)
	for _, prefix := range common.OceanBaseHousekeepingIndexPrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// MatchIndex 源端索引在目标表上寻找指纹匹配
// 源端 NONUNIQUE 被目标 UNIQUE 覆盖时，若目标存在同字段 PK/UK 约束则接受
// 唯一性由约束解释，不算差异
func MatchIndex(src model.Index, srcTemporary bool, tgt *model.Table) bool {
	srcPrint := IndexFingerprint(src, srcTemporary)
	srcColsKey := indexColumnsKey(src, srcTemporary)

	for _, tgtIdx := range tgt.Indexes {
		if IsHousekeepingIndex(tgtIdx.IndexName) {
			continue
		}
		if IndexFingerprint(tgtIdx, srcTemporary) == srcPrint {
			return true
		}
		if strings.ToUpper(src.Uniqueness) == "NONUNIQUE" &&
			strings.ToUpper(tgtIdx.Uniqueness) == "UNIQUE" &&
			indexColumnsKey(tgtIdx, srcTemporary) == srcColsKey &&
			hasPUConstraintOnColumns(tgt, canonicalizeIndexColumns(src.IndexColumns, srcTemporary)) {
			return true
		}
	}
	return false
}

func hasPUConstraintOnColumns(t *model.Table, cols []string) bool {
	want := strings.Join(cols, ",")
	for _, pu := range t.PUConstraints {
		if strings.Join(canonicalizeIndexColumns(pu.Columns, false), ",") == want {
			return true
		}
	}
	return false
}

// ExtraIndexes 目标表上未被任何源端指纹覆盖的索引
// 指纹对称性保证同一索引不会同时判 MISSING 与 EXTRA
func ExtraIndexes(src, tgt *model.Table) []model.Index {
	srcPrints := make(map[string]struct{})
	srcColKeys := make(map[string]struct{})
	for _, idx := range src.Indexes {
		srcPrints[IndexFingerprint(idx, src.IsTemporary)] = struct{}{}
		srcColKeys[indexColumnsKey(idx, src.IsTemporary)] = struct{}{}
	}

	var extras []model.Index
	for _, tgtIdx := range tgt.Indexes {
		if IsHousekeepingIndex(tgtIdx.IndexName) {
			continue
		}
		if _, ok := srcPrints[IndexFingerprint(tgtIdx, src.IsTemporary)]; ok {
			continue
		}
		// 唯一性被约束解释的场景按字段元组豁免
		if _, ok := srcColKeys[indexColumnsKey(tgtIdx, src.IsTemporary)]; ok &&
			strings.ToUpper(tgtIdx.Uniqueness) == "UNIQUE" &&
			hasPUConstraintOnColumns(tgt, canonicalizeIndexColumns(tgtIdx.IndexColumns, false)) {
			continue
		}
		extras = append(extras, tgtIdx)
	}
	return extras
}

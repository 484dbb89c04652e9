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
	"regexp"
	"strings"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
)

// 系统生成 NOT NULL 检查，不参与 CHECK 比对
var notNullCheckPattern = regexp.MustCompile(`^"?[A-Za-z0-9_$#]+"? IS NOT NULL$`)

func isDeferrable(deferrable string) bool {
	return strings.Contains(strings.ToUpper(deferrable), "DEFERRABLE") &&
		!strings.Contains(strings.ToUpper(deferrable), "NOT DEFERRABLE")
}

func constraintColumnsKey(cols []string) string {
	var upper []string
	for _, c := range cols {
		upper = append(upper, common.ReplaceQuotesString(strings.ToUpper(strings.TrimSpace(c))))
	}
	return strings.Join(upper, ",")
}

// ComparePUConstraint 主键/唯一约束按 (类型, 有序字段元组) 匹配，与约束名无关
// 延迟约束目标端无法表达，判 UNSUPPORTED 而非 MISSING
func ComparePUConstraint(src model.ConstraintPUKey, tgt *model.Table) (string, []Finding) {
	if isDeferrable(src.Deferrable) {
		return common.CompareStateUnsupported, []Finding{{
			Reason: common.ReasonConsDeferrable,
			Detail: fmt.Sprintf("constraint [%s] is deferrable, target platform can't express", src.ConstraintName),
		}}
	}

	srcKey := constraintColumnsKey(src.Columns)
	for _, pu := range tgt.PUConstraints {
		if strings.EqualFold(pu.ConstraintType, src.ConstraintType) &&
			constraintColumnsKey(pu.Columns) == srcKey {
			return common.CompareStateOK, nil
		}
	}
	return common.CompareStateMissing, []Finding{{
		Reason: common.ReasonConsMissing,
		Detail: fmt.Sprintf("constraint [%s] type %s columns (%s) isn't exist in target table", src.ConstraintName, src.ConstraintType, srcKey),
	}}
}

// CompareForeignConstraint 外键按有序字段元组匹配
// 自引用与延迟外键判 UNSUPPORTED，被引用表须经映射决策落到同一目标，并核对删除规则
func CompareForeignConstraint(src model.ConstraintForeign, srcTable, tgt *model.Table,
	resolve func(model.ObjectIdentity) (model.ObjectIdentity, bool)) (string, []Finding) {

	if strings.EqualFold(src.ReferencedSchema, srcTable.SchemaName) &&
		strings.EqualFold(src.ReferencedTable, srcTable.TableName) {
		return common.CompareStateUnsupported, []Finding{{
			Reason: common.ReasonFKSelfRef,
			Detail: fmt.Sprintf("foreign key [%s] references its own table", src.ConstraintName),
		}}
	}
	if isDeferrable(src.Deferrable) {
		return common.CompareStateUnsupported, []Finding{{
			Reason: common.ReasonFKDeferrable,
			Detail: fmt.Sprintf("foreign key [%s] is deferrable, target platform can't express", src.ConstraintName),
		}}
	}

	expectRef, ok := resolve(model.NewObjectIdentity(src.ReferencedSchema, src.ReferencedTable, common.ObjectTypeTable))
	if !ok {
		return common.CompareStateMissing, []Finding{{
			Reason: common.ReasonDependMissing,
			Detail: fmt.Sprintf("foreign key [%s] referenced table %s.%s isn't resolved", src.ConstraintName, src.ReferencedSchema, src.ReferencedTable),
		}}
	}

	srcKey := constraintColumnsKey(src.Columns)
	for _, fk := range tgt.ForeignConstraints {
		if constraintColumnsKey(fk.Columns) != srcKey {
			continue
		}
		var findings []Finding
		if !strings.EqualFold(fk.ReferencedSchema, expectRef.Schema) ||
			!strings.EqualFold(fk.ReferencedTable, expectRef.Name) {
			findings = append(findings, Finding{
				Reason: common.ReasonConsRefRemap,
				Detail: fmt.Sprintf("foreign key [%s] referenced expect %s.%s, actual %s.%s",
					src.ConstraintName, expectRef.Schema, expectRef.Name, fk.ReferencedSchema, fk.ReferencedTable),
			})
		}
		if !strings.EqualFold(fk.DeleteRule, src.DeleteRule) {
			findings = append(findings, Finding{
				Reason: common.ReasonConsRule,
				Detail: fmt.Sprintf("foreign key [%s] delete rule expect %s, actual %s", src.ConstraintName, src.DeleteRule, fk.DeleteRule),
			})
		}
		if len(findings) > 0 {
			return common.CompareStateMismatched, findings
		}
		return common.CompareStateOK, nil
	}

	return common.CompareStateMissing, []Finding{{
		Reason: common.ReasonConsMissing,
		Detail: fmt.Sprintf("foreign key [%s] columns (%s) isn't exist in target table", src.ConstraintName, srcKey),
	}}
}

// CompareCheckConstraint 检查约束按规范化表达式匹配，表达式缺失时回落约束名
// 系统生成 NOT NULL 检查不参与比对
func CompareCheckConstraint(src model.ConstraintCheck, tgt *model.Table) (string, []Finding) {
	if isDeferrable(src.Deferrable) {
		return common.CompareStateUnsupported, []Finding{{
			Reason: common.ReasonConsDeferrable,
			Detail: fmt.Sprintf("check constraint [%s] is deferrable, target platform can't express", src.ConstraintName),
		}}
	}

	srcExpr := common.NormalizeExpression(src.Expression)
	if notNullCheckPattern.MatchString(srcExpr) {
		return common.CompareStateOK, nil
	}

	for _, ck := range tgt.CheckConstraints {
		if srcExpr != "" && common.NormalizeExpression(ck.Expression) == srcExpr {
			return common.CompareStateOK, nil
		}
		if srcExpr == "" && strings.EqualFold(ck.ConstraintName, src.ConstraintName) {
			return common.CompareStateOK, nil
		}
	}
	return common.CompareStateMissing, []Finding{{
		Reason: common.ReasonConsMissing,
		Detail: fmt.Sprintf("check constraint [%s] expression [%s] isn't exist in target table", src.ConstraintName, srcExpr),
	}}
}

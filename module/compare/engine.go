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
	"strings"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/filter"
	"github.com/Minorli/ob-comparator-sub002/model"
	"github.com/Minorli/ob-comparator-sub002/module/graph"
	"github.com/Minorli/ob-comparator-sub002/module/remap"
	"go.uber.org/zap"
)

// 比对引擎
// 输入只读快照与映射结论，逐类型比对产出结果集
// 比对完成后按依赖传播改判 BLOCKED
type Engine struct {
	snapshot       *model.Snapshot
	mapping        *remap.Mapping
	gate           *filter.Gate
	ignoreMviewLog bool
}

func NewEngine(snapshot *model.Snapshot, mapping *remap.Mapping, gate *filter.Gate) *Engine {
	return &Engine{
		snapshot: snapshot,
		mapping:  mapping,
		gate:     gate,
	}
}

// SetIgnoreMviewLog 物化视图日志表 MLOG$_/RUPD$_ 是否排除比对
func (e *Engine) SetIgnoreMviewLog(ignore bool) {
	e.ignoreMviewLog = ignore
}

func (e *Engine) isIgnoredMviewLog(obj model.ObjectIdentity) bool {
	if !e.ignoreMviewLog || obj.Type != common.ObjectTypeTable {
		return false
	}
	name := strings.ToUpper(obj.Name)
	for _, prefix := range common.MviewLogTablePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Run 全量比对
// 表先行，索引/约束/触发器依赖表结论，顺序由类型固定序保证
func (e *Engine) Run() *ResultSet {
	rs := NewResultSet()

	for _, objType := range e.gate.MatchTypes(common.AllObjectTypes) {
		for _, obj := range e.snapshot.Source.ObjectsByType(objType) {
			if e.isIgnoredMviewLog(obj) {
				continue
			}
			target, ok := e.mapping.Lookup(obj)
			if !ok {
				// 冲突对象不在映射内，不参与比对
				continue
			}
			rs.Append(e.compareObject(obj, target, rs))
		}
	}

	e.appendExtraObjects(rs)
	e.propagateBlocked(rs)

	counts := rs.CountByState()
	zap.L().Info("object compare finished",
		zap.Int("total", len(rs.Results)),
		zap.Any("state counts", counts))
	return rs
}

func (e *Engine) compareObject(obj model.ObjectIdentity, target model.ObjectIdentity, rs *ResultSet) Result {
	result := Result{Source: obj, Target: target}

	switch obj.Type {
	case common.ObjectTypeTable:
		e.compareTable(obj, target, &result)
	case common.ObjectTypeIndex:
		e.compareIndex(obj, target, &result)
	case common.ObjectTypeConstraint:
		e.compareConstraint(obj, target, &result)
	case common.ObjectTypeSequence:
		e.compareSequence(obj, target, &result)
	case common.ObjectTypeTrigger:
		e.compareTrigger(obj, target, rs, &result)
	default:
		// 其余类型仅比对存在性，打印类仅报告不修复
		result.PrintOnly = common.IsContainObjectType(common.PrintOnlyObjectTypes, obj.Type)
		if e.snapshot.Target.ExistObject(target.Schema, target.Name, obj.Type) {
			result.State = common.CompareStateOK
		} else {
			result.State = common.CompareStateMissing
			result.Findings = []Finding{{
				Reason: common.ReasonObjectMissing,
				Detail: fmt.Sprintf("object %s isn't exist in target", target.String()),
			}}
		}
	}
	return result
}

func (e *Engine) compareTable(obj, target model.ObjectIdentity, result *Result) {
	srcTable, ok := e.snapshot.Source.GetTable(obj.Schema, obj.Name)
	if !ok {
		result.State = common.CompareStateOK
		return
	}
	tgtTable, ok := e.snapshot.Target.GetTable(target.Schema, target.Name)
	if !ok {
		result.State = common.CompareStateMissing
		result.Findings = []Finding{{
			Reason: common.ReasonObjectMissing,
			Detail: fmt.Sprintf("table %s isn't exist in target", target.Key()),
		}}
		return
	}

	result.Findings = CompareTableColumns(srcTable, tgtTable)
	if hasActionableFinding(result.Findings) {
		result.State = common.CompareStateMismatched
	} else {
		// 仅超界告警不驱动修复
		result.State = common.CompareStateOK
	}
}

// 超界告警外的差异才驱动修复
func hasActionableFinding(findings []Finding) bool {
	for _, f := range findings {
		if f.Reason != common.ReasonColumnOversize {
			return true
		}
	}
	return false
}

func (e *Engine) compareIndex(obj, target model.ObjectIdentity, result *Result) {
	srcTable, ok := e.snapshot.Source.FindIndexOwnerTable(obj.Schema, obj.Name)
	if !ok {
		result.State = common.CompareStateOK
		return
	}
	var srcIdx model.Index
	for _, idx := range srcTable.Indexes {
		if strings.EqualFold(idx.IndexName, obj.Name) {
			srcIdx = idx
			break
		}
	}

	tgtTable, ok := e.lookupTargetTable(srcTable)
	if !ok {
		result.State = common.CompareStateMissing
		result.Findings = []Finding{{
			Reason: common.ReasonIndexMissing,
			Detail: fmt.Sprintf("index [%s] owner table isn't exist in target", obj.Name),
		}}
		return
	}

	if MatchIndex(srcIdx, srcTable.IsTemporary, tgtTable) {
		result.State = common.CompareStateOK
		return
	}
	result.State = common.CompareStateMissing
	result.Findings = []Finding{{
		Reason: common.ReasonIndexMissing,
		Detail: fmt.Sprintf("index fingerprint %s isn't exist in target table %s.%s",
			IndexFingerprint(srcIdx, srcTable.IsTemporary), tgtTable.SchemaName, tgtTable.TableName),
	}}
}

func (e *Engine) compareConstraint(obj, target model.ObjectIdentity, result *Result) {
	srcTable, ok := e.snapshot.Source.FindConstraintOwnerTable(obj.Schema, obj.Name)
	if !ok {
		result.State = common.CompareStateOK
		return
	}
	tgtTable, ok := e.lookupTargetTable(srcTable)
	if !ok {
		result.State = common.CompareStateMissing
		result.Findings = []Finding{{
			Reason: common.ReasonConsMissing,
			Detail: fmt.Sprintf("constraint [%s] owner table isn't exist in target", obj.Name),
		}}
		return
	}

	resolve := func(ref model.ObjectIdentity) (model.ObjectIdentity, bool) {
		return e.mapping.Lookup(ref)
	}

	for _, pu := range srcTable.PUConstraints {
		if strings.EqualFold(pu.ConstraintName, obj.Name) {
			result.State, result.Findings = ComparePUConstraint(pu, tgtTable)
			return
		}
	}
	for _, fk := range srcTable.ForeignConstraints {
		if strings.EqualFold(fk.ConstraintName, obj.Name) {
			result.State, result.Findings = CompareForeignConstraint(fk, srcTable, tgtTable, resolve)
			return
		}
	}
	for _, ck := range srcTable.CheckConstraints {
		if strings.EqualFold(ck.ConstraintName, obj.Name) {
			result.State, result.Findings = CompareCheckConstraint(ck, tgtTable)
			return
		}
	}
	result.State = common.CompareStateOK
}

func (e *Engine) compareSequence(obj, target model.ObjectIdentity, result *Result) {
	srcSeq, ok := e.snapshot.Source.GetSequence(obj.Schema, obj.Name)
	tgtSeq, tgtOK := e.snapshot.Target.GetSequence(target.Schema, target.Name)
	if !tgtOK {
		result.State = common.CompareStateMissing
		result.Findings = []Finding{{
			Reason: common.ReasonObjectMissing,
			Detail: fmt.Sprintf("sequence %s isn't exist in target", target.Key()),
		}}
		return
	}
	if !ok {
		result.State = common.CompareStateOK
		return
	}

	result.Findings = CompareSequenceAttrs(srcSeq, tgtSeq)
	if len(result.Findings) > 0 {
		result.State = common.CompareStateMismatched
	} else {
		result.State = common.CompareStateOK
	}
}

func (e *Engine) compareTrigger(obj, target model.ObjectIdentity, rs *ResultSet, result *Result) {
	srcTrg, ok := e.snapshot.Source.GetTrigger(obj.Schema, obj.Name)
	tgtTrg, tgtOK := e.snapshot.Target.GetTrigger(target.Schema, target.Name)
	if !tgtOK {
		result.State = common.CompareStateMissing
		result.Findings = []Finding{{
			Reason: common.ReasonObjectMissing,
			Detail: fmt.Sprintf("trigger %s isn't exist in target", target.Key()),
		}}
		return
	}
	if !ok {
		result.State = common.CompareStateOK
		return
	}

	parentUnsupported := false
	if parent, found := rs.Get(model.NewObjectIdentity(srcTrg.TableOwner, srcTrg.TableName, common.ObjectTypeTable)); found {
		parentUnsupported = parent.State == common.CompareStateUnsupported || parent.State == common.CompareStateBlocked
	}

	result.Findings = CompareTriggerStatus(srcTrg, tgtTrg, parentUnsupported)
	if len(result.Findings) > 0 {
		result.State = common.CompareStateMismatched
	} else {
		result.State = common.CompareStateOK
	}
}

// 源端表标识经映射取目标表元数据
func (e *Engine) lookupTargetTable(srcTable *model.Table) (*model.Table, bool) {
	target, ok := e.mapping.Lookup(model.NewObjectIdentity(srcTable.SchemaName, srcTable.TableName, common.ObjectTypeTable))
	if !ok {
		return nil, false
	}
	return e.snapshot.Target.GetTable(target.Schema, target.Name)
}

// 目标端多余对象识别
// 映射目标集合外的目标对象判 EXTRA，索引走表级指纹避免同名误报
func (e *Engine) appendExtraObjects(rs *ResultSet) {
	mappedTargets := make(map[string]struct{}, len(e.mapping.Pairs))
	for _, target := range e.mapping.Pairs {
		mappedTargets[target.TypedKey()] = struct{}{}
	}

	for _, objType := range e.gate.MatchTypes(common.AllObjectTypes) {
		// 索引与约束由表级指纹比对覆盖，不做对象级 EXTRA 判定
		if objType == common.ObjectTypeIndex || objType == common.ObjectTypeConstraint {
			continue
		}
		for _, tgtObj := range e.snapshot.Target.ObjectsByType(objType) {
			if _, ok := mappedTargets[tgtObj.TypedKey()]; ok {
				continue
			}
			if e.isIgnoredMviewLog(tgtObj) {
				continue
			}
			rs.Append(Result{
				Source:    tgtObj,
				Target:    tgtObj,
				State:     common.CompareStateExtra,
				PrintOnly: true,
				Findings: []Finding{{
					Reason: common.ReasonObjectExtra,
					Detail: fmt.Sprintf("target object %s has no source counterpart", tgtObj.String()),
				}},
			})
		}
	}

	if e.gate.MatchType(common.ObjectTypeIndex) {
		for _, obj := range e.snapshot.Source.ObjectsByType(common.ObjectTypeTable) {
			srcTable, ok := e.snapshot.Source.GetTable(obj.Schema, obj.Name)
			if !ok {
				continue
			}
			tgtTable, ok := e.lookupTargetTable(srcTable)
			if !ok {
				continue
			}
			for _, extra := range ExtraIndexes(srcTable, tgtTable) {
				rs.Append(Result{
					Source:    model.NewObjectIdentity(tgtTable.SchemaName, extra.IndexName, common.ObjectTypeIndex),
					Target:    model.NewObjectIdentity(tgtTable.SchemaName, extra.IndexName, common.ObjectTypeIndex),
					State:     common.CompareStateExtra,
					PrintOnly: true,
					Findings: []Finding{{
						Reason: common.ReasonIndexExtra,
						Detail: fmt.Sprintf("target index fingerprint %s has no source counterpart", IndexFingerprint(extra, false)),
					}},
				})
			}
		}
	}
}

// BLOCKED 传播
// 依赖链上存在 UNSUPPORTED/BLOCKED 对象时，下游对象自身无修复路径
func (e *Engine) propagateBlocked(rs *ResultSet) {
	var nodes []model.ObjectIdentity
	for _, r := range rs.Results {
		if r.State != common.CompareStateExtra {
			nodes = append(nodes, r.Source)
		}
	}
	g := graph.BuildGraph(nodes, e.snapshot.Source.Dependencies)

	// 悬空依赖边浮出报告，被依赖对象不在比对范围时修复顺序无法覆盖
	for _, edge := range g.Dangling {
		finding := Finding{
			Reason: common.ReasonDependMissing,
			Detail: fmt.Sprintf("dependency %s isn't in compare scope", edge.Referenced.String()),
		}
		if !rs.AddFinding(edge.Dependent, finding) {
			zap.L().Warn("dangling dependency edge",
				zap.String("dependent", edge.Dependent.String()),
				zap.String("referenced", edge.Referenced.String()))
		}
	}

	// 按拓扑层序处理，被依赖者先判，传递性自然成立
	for _, obj := range g.TopoLayers().Ordered() {
		current, ok := rs.Get(obj)
		if !ok || current.State == common.CompareStateUnsupported || current.State == common.CompareStateBlocked {
			continue
		}
		for _, ref := range g.References(obj.TypedKey()) {
			refResult, found := rs.Get(ref)
			if !found {
				continue
			}
			if refResult.State == common.CompareStateUnsupported || refResult.State == common.CompareStateBlocked {
				if rs.MarkBlocked(obj, Finding{
					Reason: common.ReasonDependUnsupported,
					Detail: fmt.Sprintf("dependency %s state %s, no fixup path", ref.String(), refResult.State),
				}) {
					zap.L().Warn("object blocked by dependency",
						zap.String("object", obj.String()),
						zap.String("dependency", ref.String()),
						zap.String("dependency state", refResult.State))
				}
				break
			}
		}
	}
}

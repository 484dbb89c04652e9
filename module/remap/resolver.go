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
package remap

import (
	"sort"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/filter"
	"github.com/Minorli/ob-comparator-sub002/model"
	"go.uber.org/zap"
)

// Remap 冲突，对象未能确定唯一目标 schema
// 冲突对象从有效映射剔除，不参与修复生成，等待显式规则解决
type Conflict struct {
	Object     model.ObjectIdentity
	Reason     string
	Candidates []string
}

// Mapping 全量对象映射结果
type Mapping struct {
	Pairs      map[string]model.ObjectIdentity // 源端 TypedKey -> 目标标识
	Conflicts  []Conflict
	Extraneous []Rule
}

// Lookup 源端对象的目标标识
func (m *Mapping) Lookup(obj model.ObjectIdentity) (model.ObjectIdentity, bool) {
	target, ok := m.Pairs[obj.TypedKey()]
	return target, ok
}

// Resolver 迁移目标决策器
// 策略链按优先级组合，首个命中生效：
// 显式规则 > 不推断类型保位 > 跟随属主表 > 依赖多数推断 > schema 映射回落 > 冲突
type Resolver struct {
	snapshot  *model.Snapshot
	rules     *RuleSet
	schemaMap *SchemaMapping
	gate      *filter.Gate
	resolved  map[string]model.ObjectIdentity
}

func NewResolver(snapshot *model.Snapshot, rules []Rule, gate *filter.Gate) *Resolver {
	ruleSet := NewRuleSet(rules, snapshot.Source)
	return &Resolver{
		snapshot:  snapshot,
		rules:     ruleSet,
		schemaMap: NewSchemaMapping(ruleSet.TableRules(snapshot.Source)),
		gate:      gate,
		resolved:  make(map[string]model.ObjectIdentity),
	}
}

// 单策略签名，命中返回目标标识
type strategy func(obj model.ObjectIdentity) (model.ObjectIdentity, bool)

// Resolve 单对象目标决策，未能确定唯一目标返回 Conflict
func (r *Resolver) Resolve(obj model.ObjectIdentity) (model.ObjectIdentity, *Conflict) {
	if target, ok := r.resolved[obj.TypedKey()]; ok {
		return target, nil
	}

	strategies := []strategy{
		r.resolveExplicitRule,
		r.resolvePublicOwner,
		r.resolveNoInferType,
		r.resolveParentFollow,
		r.resolveDependencyInference,
		r.resolveSchemaMapping,
	}
	for _, s := range strategies {
		if target, ok := s(obj); ok {
			r.resolved[obj.TypedKey()] = target
			return target, nil
		}
	}

	return model.ObjectIdentity{}, &Conflict{
		Object:     obj,
		Reason:     r.conflictReason(obj),
		Candidates: r.conflictCandidates(obj),
	}
}

// 策略 1：显式规则精确命中
func (r *Resolver) resolveExplicitRule(obj model.ObjectIdentity) (model.ObjectIdentity, bool) {
	rule, ok := r.rules.Lookup(obj)
	if !ok {
		return model.ObjectIdentity{}, false
	}
	return model.NewObjectIdentity(rule.TargetSchema, rule.TargetName, obj.Type), true
}

// 策略 2：PUBLIC 属主对象始终保留 PUBLIC
func (r *Resolver) resolvePublicOwner(obj model.ObjectIdentity) (model.ObjectIdentity, bool) {
	if obj.Schema != common.PublicSchemaName {
		return model.ObjectIdentity{}, false
	}
	return obj, true
}

// 策略 3：不推断类型默认保留源端 schema
func (r *Resolver) resolveNoInferType(obj model.ObjectIdentity) (model.ObjectIdentity, bool) {
	if !common.IsContainObjectType(common.NoInferObjectTypes, obj.Type) {
		return model.ObjectIdentity{}, false
	}
	return obj, true
}

// 策略 4：索引/约束跟随属主表，目标名不变
func (r *Resolver) resolveParentFollow(obj model.ObjectIdentity) (model.ObjectIdentity, bool) {
	if !r.gate.EnableInference {
		return model.ObjectIdentity{}, false
	}
	if !common.IsContainObjectType(common.ParentFollowObjectTypes, obj.Type) {
		return model.ObjectIdentity{}, false
	}

	var parent *model.Table
	var ok bool
	switch obj.Type {
	case common.ObjectTypeIndex:
		parent, ok = r.snapshot.Source.FindIndexOwnerTable(obj.Schema, obj.Name)
	case common.ObjectTypeConstraint:
		parent, ok = r.snapshot.Source.FindConstraintOwnerTable(obj.Schema, obj.Name)
	}
	if !ok {
		return model.ObjectIdentity{}, false
	}

	parentTarget, conflict := r.Resolve(model.NewObjectIdentity(parent.SchemaName, parent.TableName, common.ObjectTypeTable))
	if conflict != nil {
		return model.ObjectIdentity{}, false
	}
	return model.NewObjectIdentity(parentTarget.Schema, obj.Name, obj.Type), true
}

// 策略 5：依赖多数推断
// 沿直接依赖边找 TABLE 目标，统计其目标 schema，严格多数胜出
// 平票或零票穿透到下一策略，平票最终按冲突处理，不做猜测
func (r *Resolver) resolveDependencyInference(obj model.ObjectIdentity) (model.ObjectIdentity, bool) {
	if !r.gate.EnableInference {
		return model.ObjectIdentity{}, false
	}
	if !common.IsContainObjectType(common.InferObjectTypes, obj.Type) {
		return model.ObjectIdentity{}, false
	}

	tally := r.tallyReferencedTableSchemas(obj)
	winner, ok := strictMajority(tally)
	if !ok {
		return model.ObjectIdentity{}, false
	}
	return model.NewObjectIdentity(winner, obj.Name, obj.Type), true
}

// 策略 6：schema 映射回落，仅表规则派生出的确定映射生效
func (r *Resolver) resolveSchemaMapping(obj model.ObjectIdentity) (model.ObjectIdentity, bool) {
	if !r.gate.EnableInference {
		// 推断关闭时无显式规则的对象保留源端 schema
		return obj, true
	}
	tgtSchema, ok := r.schemaMap.Resolve(obj.Schema)
	if !ok {
		return model.ObjectIdentity{}, false
	}
	return model.NewObjectIdentity(tgtSchema, obj.Name, obj.Type), true
}

// 统计对象直接依赖的 TABLE 的目标 schema 票数
// SEQUENCE 经由触发器间接取属主表票数
func (r *Resolver) tallyReferencedTableSchemas(obj model.ObjectIdentity) map[string]int {
	tally := make(map[string]int)

	for _, edge := range r.snapshot.Source.FindReferenced(obj) {
		if edge.Referenced.Type != common.ObjectTypeTable {
			continue
		}
		if target, conflict := r.resolveTableForTally(edge.Referenced); conflict == nil {
			tally[target.Schema]++
		}
	}

	if obj.Type == common.ObjectTypeSequence {
		for _, edge := range r.snapshot.Source.FindDependent(obj) {
			if edge.Dependent.Type != common.ObjectTypeTrigger {
				continue
			}
			trg, ok := r.snapshot.Source.GetTrigger(edge.Dependent.Schema, edge.Dependent.Name)
			if !ok {
				continue
			}
			tableObj := model.NewObjectIdentity(trg.TableOwner, trg.TableName, common.ObjectTypeTable)
			if target, conflict := r.resolveTableForTally(tableObj); conflict == nil {
				tally[target.Schema]++
			}
		}
	}
	return tally
}

// 表目标决策供计票使用，表类型不会递归回推断策略
func (r *Resolver) resolveTableForTally(tableObj model.ObjectIdentity) (model.ObjectIdentity, *Conflict) {
	return r.Resolve(tableObj)
}

// 严格多数，得票须过总票数一半
// 简单相对多数（2:1:1 之类）不作数，避免弱证据搬迁
func strictMajority(tally map[string]int) (string, bool) {
	var winner string
	max, total := 0, 0
	for schema, votes := range tally {
		total += votes
		if votes > max {
			max, winner = votes, schema
		}
	}
	if max == 0 || max*2 <= total {
		return "", false
	}
	return winner, true
}

func (r *Resolver) conflictReason(obj model.ObjectIdentity) string {
	tally := r.tallyReferencedTableSchemas(obj)
	if len(tally) > 1 {
		return common.ConflictReasonInferTied
	}
	if len(r.schemaMap.Candidates(obj.Schema)) > 1 {
		return common.ConflictReasonSchemaAmbiguous
	}
	return common.ConflictReasonNoCandidate
}

func (r *Resolver) conflictCandidates(obj model.ObjectIdentity) []string {
	set := make(map[string]struct{})
	for schema := range r.tallyReferencedTableSchemas(obj) {
		set[schema] = struct{}{}
	}
	for _, schema := range r.schemaMap.Candidates(obj.Schema) {
		set[schema] = struct{}{}
	}
	var candidates []string
	for schema := range set {
		candidates = append(candidates, schema)
	}
	sort.Strings(candidates)
	return candidates
}

// BuildMapping 构建全量对象映射
// 表优先决策，其余对象的推断与回落策略依赖表映射结论
// 同类型两个源对象命中同一目标时，后者强制回退 1:1 原位映射并标记冲突
func (r *Resolver) BuildMapping() *Mapping {
	mapping := &Mapping{
		Pairs:      make(map[string]model.ObjectIdentity),
		Extraneous: r.rules.Extraneous,
	}
	usedTargets := make(map[string]string)

	resolveOne := func(obj model.ObjectIdentity) {
		target, conflict := r.Resolve(obj)
		if conflict != nil {
			zap.L().Warn("remap conflict",
				zap.String("object", obj.String()),
				zap.String("reason", conflict.Reason),
				zap.Strings("candidates", conflict.Candidates))
			mapping.Conflicts = append(mapping.Conflicts, *conflict)
			return
		}

		if firstSource, ok := usedTargets[target.TypedKey()]; ok && firstSource != obj.TypedKey() {
			zap.L().Warn("remap duplicate target, force identity mapping",
				zap.String("object", obj.String()),
				zap.String("target", target.String()),
				zap.String("first source", firstSource))
			identity := obj
			r.resolved[obj.TypedKey()] = identity
			mapping.Pairs[obj.TypedKey()] = identity
			usedTargets[identity.TypedKey()] = obj.TypedKey()
			mapping.Conflicts = append(mapping.Conflicts, Conflict{
				Object:     obj,
				Reason:     common.ConflictReasonDuplicateTarget,
				Candidates: []string{target.Schema},
			})
			return
		}

		mapping.Pairs[obj.TypedKey()] = target
		usedTargets[target.TypedKey()] = obj.TypedKey()
	}

	// 表先行
	for _, obj := range r.snapshot.Source.ObjectsByType(common.ObjectTypeTable) {
		if r.gate.MatchType(common.ObjectTypeTable) {
			resolveOne(obj)
		}
	}
	for _, objType := range common.AllObjectTypes {
		if objType == common.ObjectTypeTable || !r.gate.MatchType(objType) {
			continue
		}
		for _, obj := range r.snapshot.Source.ObjectsByType(objType) {
			resolveOne(obj)
		}
	}

	r.reconcilePairedBodies(mapping)
	return mapping
}

// PACKAGE/TYPE 与 BODY 必须落在同一目标 schema
// 分歧时以显式规则/BODY 推断结论为准
func (r *Resolver) reconcilePairedBodies(mapping *Mapping) {
	pairs := []struct {
		spec common.ObjectType
		body common.ObjectType
	}{
		{spec: common.ObjectTypePackage, body: common.ObjectTypePackageBody},
		{spec: common.ObjectTypeType, body: common.ObjectTypeTypeBody},
	}

	for _, p := range pairs {
		for _, specObj := range r.snapshot.Source.ObjectsByType(p.spec) {
			bodyObj := model.NewObjectIdentity(specObj.Schema, specObj.Name, p.body)
			specTarget, specOK := mapping.Pairs[specObj.TypedKey()]
			bodyTarget, bodyOK := mapping.Pairs[bodyObj.TypedKey()]
			if !specOK || !bodyOK || specTarget.Schema == bodyTarget.Schema {
				continue
			}

			// BODY 侧显式规则优先，其次 BODY 推断结论
			chosen := bodyTarget.Schema
			if _, ok := r.rules.Lookup(specObj); ok {
				if _, bodyRule := r.rules.Lookup(bodyObj); !bodyRule {
					chosen = specTarget.Schema
				}
			}
			zap.L().Warn("paired spec/body target schema different, reconciled",
				zap.String("spec", specObj.String()),
				zap.String("body", bodyObj.String()),
				zap.String("chosen schema", chosen))
			mapping.Pairs[specObj.TypedKey()] = model.NewObjectIdentity(chosen, specTarget.Name, p.spec)
			mapping.Pairs[bodyObj.TypedKey()] = model.NewObjectIdentity(chosen, bodyTarget.Name, p.body)
		}
	}
}

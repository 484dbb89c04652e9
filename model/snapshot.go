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
	"sort"
	"strings"

	"github.com/Minorli/ob-comparator-sub002/common"
)

// SideMeta 单侧（源端或目标端）元数据集合
// 一次性构建完成后只读，比对与修复阶段禁止修改
type SideMeta struct {
	objects      map[string]ObjectIdentity // TypedKey
	Tables       map[string]*Table         // SCHEMA.TABLE
	Sequences    map[string]*Sequence      // SCHEMA.SEQUENCE
	Triggers     map[string]*Trigger       // SCHEMA.TRIGGER
	Synonyms     map[string]*Synonym       // OWNER.SYNONYM
	Dependencies []DependencyEdge
}

func NewSideMeta() *SideMeta {
	return &SideMeta{
		objects:   make(map[string]ObjectIdentity),
		Tables:    make(map[string]*Table),
		Sequences: make(map[string]*Sequence),
		Triggers:  make(map[string]*Trigger),
		Synonyms:  make(map[string]*Synonym),
	}
}

func (s *SideMeta) AddObject(obj ObjectIdentity) {
	s.objects[obj.TypedKey()] = obj
}

func (s *SideMeta) AddTable(t *Table) {
	s.Tables[common.StringsBuilder(strings.ToUpper(t.SchemaName), ".", strings.ToUpper(t.TableName))] = t
	s.AddObject(NewObjectIdentity(t.SchemaName, t.TableName, common.ObjectTypeTable))
}

func (s *SideMeta) AddSequence(seq *Sequence) {
	s.Sequences[common.StringsBuilder(strings.ToUpper(seq.SchemaName), ".", strings.ToUpper(seq.SequenceName))] = seq
	s.AddObject(NewObjectIdentity(seq.SchemaName, seq.SequenceName, common.ObjectTypeSequence))
}

func (s *SideMeta) AddTrigger(trg *Trigger) {
	s.Triggers[common.StringsBuilder(strings.ToUpper(trg.SchemaName), ".", strings.ToUpper(trg.TriggerName))] = trg
	s.AddObject(NewObjectIdentity(trg.SchemaName, trg.TriggerName, common.ObjectTypeTrigger))
}

func (s *SideMeta) AddSynonym(syn *Synonym) {
	s.Synonyms[common.StringsBuilder(strings.ToUpper(syn.Owner), ".", strings.ToUpper(syn.SynonymName))] = syn
	s.AddObject(NewObjectIdentity(syn.Owner, syn.SynonymName, common.ObjectTypeSynonym))
}

func (s *SideMeta) AddDependency(edge DependencyEdge) {
	s.Dependencies = append(s.Dependencies, edge)
}

// ExistObject 对象是否存在
func (s *SideMeta) ExistObject(schema, name string, objType common.ObjectType) bool {
	_, ok := s.objects[NewObjectIdentity(schema, name, objType).TypedKey()]
	return ok
}

// GetTable 表元数据查询
func (s *SideMeta) GetTable(schema, table string) (*Table, bool) {
	t, ok := s.Tables[common.StringsBuilder(strings.ToUpper(schema), ".", strings.ToUpper(table))]
	return t, ok
}

// GetSequence 序列元数据查询
func (s *SideMeta) GetSequence(schema, sequence string) (*Sequence, bool) {
	seq, ok := s.Sequences[common.StringsBuilder(strings.ToUpper(schema), ".", strings.ToUpper(sequence))]
	return seq, ok
}

// GetTrigger 触发器元数据查询
func (s *SideMeta) GetTrigger(schema, trigger string) (*Trigger, bool) {
	trg, ok := s.Triggers[common.StringsBuilder(strings.ToUpper(schema), ".", strings.ToUpper(trigger))]
	return trg, ok
}

// ObjectsByType 按类型列出对象，字典序排列保证多次运行输出一致
func (s *SideMeta) ObjectsByType(objType common.ObjectType) []ObjectIdentity {
	var objs []ObjectIdentity
	for _, obj := range s.objects {
		if obj.Type == objType {
			objs = append(objs, obj)
		}
	}
	sort.Slice(objs, func(i, j int) bool {
		if objs[i].Schema != objs[j].Schema {
			return objs[i].Schema < objs[j].Schema
		}
		return objs[i].Name < objs[j].Name
	})
	return objs
}

// AllObjects 全对象列表，类型序 + 字典序
func (s *SideMeta) AllObjects() []ObjectIdentity {
	var objs []ObjectIdentity
	for _, t := range common.AllObjectTypes {
		objs = append(objs, s.ObjectsByType(t)...)
	}
	return objs
}

// ObjectTotals 对象数量
func (s *SideMeta) ObjectTotals() int {
	return len(s.objects)
}

// FindDependent 查找依赖某对象的全部边
func (s *SideMeta) FindDependent(referenced ObjectIdentity) []DependencyEdge {
	var edges []DependencyEdge
	for _, e := range s.Dependencies {
		if e.Referenced.TypedKey() == referenced.TypedKey() {
			edges = append(edges, e)
		}
	}
	return edges
}

// FindReferenced 查找某对象直接依赖的全部边
func (s *SideMeta) FindReferenced(dependent ObjectIdentity) []DependencyEdge {
	var edges []DependencyEdge
	for _, e := range s.Dependencies {
		if e.Dependent.TypedKey() == dependent.TypedKey() {
			edges = append(edges, e)
		}
	}
	return edges
}

// FindIndexOwnerTable 依索引名反查属主表
func (s *SideMeta) FindIndexOwnerTable(schema, indexName string) (*Table, bool) {
	indexName = strings.ToUpper(indexName)
	for _, t := range s.Tables {
		if !strings.EqualFold(t.SchemaName, schema) {
			continue
		}
		for _, idx := range t.Indexes {
			if strings.ToUpper(idx.IndexName) == indexName {
				return t, true
			}
		}
	}
	return nil, false
}

// FindConstraintOwnerTable 依约束名反查属主表
func (s *SideMeta) FindConstraintOwnerTable(schema, constraintName string) (*Table, bool) {
	constraintName = strings.ToUpper(constraintName)
	for _, t := range s.Tables {
		if !strings.EqualFold(t.SchemaName, schema) {
			continue
		}
		for _, pu := range t.PUConstraints {
			if strings.ToUpper(pu.ConstraintName) == constraintName {
				return t, true
			}
		}
		for _, fk := range t.ForeignConstraints {
			if strings.ToUpper(fk.ConstraintName) == constraintName {
				return t, true
			}
		}
		for _, ck := range t.CheckConstraints {
			if strings.ToUpper(ck.ConstraintName) == constraintName {
				return t, true
			}
		}
	}
	return nil, false
}

// Snapshot 源端与目标端元数据快照，核心流水线唯一输入
type Snapshot struct {
	Source *SideMeta
	Target *SideMeta
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		Source: NewSideMeta(),
		Target: NewSideMeta(),
	}
}

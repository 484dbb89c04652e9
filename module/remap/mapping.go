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
	"strings"
)

// SchemaMapping 由 TABLE 规则派生的 schema 级映射
// 多对一与一对一可确定，一对多不可确定，需对象级决策
type SchemaMapping struct {
	targets map[string]map[string]struct{}
}

func NewSchemaMapping(tableRules []Rule) *SchemaMapping {
	sm := &SchemaMapping{
		targets: make(map[string]map[string]struct{}),
	}
	for _, r := range tableRules {
		srcSchema := strings.ToUpper(r.SourceSchema)
		if _, ok := sm.targets[srcSchema]; !ok {
			sm.targets[srcSchema] = make(map[string]struct{})
		}
		sm.targets[srcSchema][strings.ToUpper(r.TargetSchema)] = struct{}{}
	}
	return sm
}

// Resolve 源端 schema 的确定目标
// 无任何表规则的 schema 原样保留，唯一候选可确定，多候选不可确定
func (sm *SchemaMapping) Resolve(srcSchema string) (string, bool) {
	srcSchema = strings.ToUpper(srcSchema)
	candidates, ok := sm.targets[srcSchema]
	if !ok || len(candidates) == 0 {
		return srcSchema, true
	}
	if len(candidates) == 1 {
		for tgt := range candidates {
			return tgt, true
		}
	}
	return "", false
}

// Candidates 候选目标 schema，字典序排列
func (sm *SchemaMapping) Candidates(srcSchema string) []string {
	var candidates []string
	for tgt := range sm.targets[strings.ToUpper(srcSchema)] {
		candidates = append(candidates, tgt)
	}
	sort.Strings(candidates)
	return candidates
}

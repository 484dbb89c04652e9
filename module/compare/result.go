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
	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
)

// 单项差异明细
type Finding struct {
	Reason string
	Detail string
}

// 单对象比对结果
// 状态一经判定即终态，BLOCKED 仅由依赖传播产生
type Result struct {
	Source    model.ObjectIdentity
	Target    model.ObjectIdentity
	State     string
	Findings  []Finding
	PrintOnly bool // 仅报告，不产生修复脚本
}

// Fixable 结果是否进入修复脚本生成
func (r Result) Fixable() bool {
	if r.PrintOnly {
		return false
	}
	return r.State == common.CompareStateMissing || r.State == common.CompareStateMismatched
}

// 全量比对结果集合，追加有序
type ResultSet struct {
	Results []Result
	byKey   map[string]int
}

func NewResultSet() *ResultSet {
	return &ResultSet{
		byKey: make(map[string]int),
	}
}

// Append 追加结果
// EXTRA 的 Source 是目标端标识，不入源端索引，避免挤占同名源端对象结果
func (rs *ResultSet) Append(r Result) {
	if r.State != common.CompareStateExtra {
		rs.byKey[r.Source.TypedKey()] = len(rs.Results)
	}
	rs.Results = append(rs.Results, r)
}

// Get 按源端对象标识取结果
func (rs *ResultSet) Get(obj model.ObjectIdentity) (Result, bool) {
	i, ok := rs.byKey[obj.TypedKey()]
	if !ok {
		return Result{}, false
	}
	return rs.Results[i], ok
}

// AddFinding 追加告警性明细，不改变既判状态
func (rs *ResultSet) AddFinding(obj model.ObjectIdentity, f Finding) bool {
	i, ok := rs.byKey[obj.TypedKey()]
	if !ok {
		return false
	}
	rs.Results[i].Findings = append(rs.Results[i].Findings, f)
	return true
}

// MarkBlocked 依赖传播改判 BLOCKED，仅 OK/MISSING/MISMATCHED 可改判
func (rs *ResultSet) MarkBlocked(obj model.ObjectIdentity, finding Finding) bool {
	i, ok := rs.byKey[obj.TypedKey()]
	if !ok {
		return false
	}
	switch rs.Results[i].State {
	case common.CompareStateOK, common.CompareStateMissing, common.CompareStateMismatched:
		rs.Results[i].State = common.CompareStateBlocked
		rs.Results[i].Findings = append(rs.Results[i].Findings, finding)
		return true
	}
	return false
}

// CountByState 各状态对象数量
func (rs *ResultSet) CountByState() map[string]int {
	counts := make(map[string]int)
	for _, r := range rs.Results {
		counts[r.State]++
	}
	return counts
}

// FixableResults 需要生成修复脚本的结果
func (rs *ResultSet) FixableResults() []Result {
	var fixable []Result
	for _, r := range rs.Results {
		if r.Fixable() {
			fixable = append(fixable, r)
		}
	}
	return fixable
}

// SkippedResults UNSUPPORTED/BLOCKED 结果，单独输出不可执行区
func (rs *ResultSet) SkippedResults() []Result {
	var skipped []Result
	for _, r := range rs.Results {
		if r.State == common.CompareStateUnsupported || r.State == common.CompareStateBlocked {
			skipped = append(skipped, r)
		}
	}
	return skipped
}

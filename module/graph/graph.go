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
package graph

import (
	"sort"

	"github.com/Minorli/ob-comparator-sub002/model"
	"go.uber.org/zap"
)

// 依赖图，节点为源端对象标识，边方向 dependent -> referenced
// 端点经映射决策改写后建边，悬空边（任一端不在节点集合）只记录不入图
type Graph struct {
	nodes    map[string]model.ObjectIdentity
	edges    map[string]map[string]struct{} // dependent TypedKey -> referenced TypedKey
	reverse  map[string]map[string]struct{} // referenced TypedKey -> dependent TypedKey
	Dangling []model.DependencyEdge
}

func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]model.ObjectIdentity),
		edges:   make(map[string]map[string]struct{}),
		reverse: make(map[string]map[string]struct{}),
	}
}

// BuildGraph 基于依赖边与节点集合建图
// 自环（对象依赖自身）忽略，重复边合并
func BuildGraph(nodes []model.ObjectIdentity, deps []model.DependencyEdge) *Graph {
	g := NewGraph()
	for _, n := range nodes {
		g.nodes[n.TypedKey()] = n
	}

	for _, e := range deps {
		depKey := e.Dependent.TypedKey()
		refKey := e.Referenced.TypedKey()
		if depKey == refKey {
			continue
		}
		if _, ok := g.nodes[depKey]; !ok {
			g.Dangling = append(g.Dangling, e)
			continue
		}
		if _, ok := g.nodes[refKey]; !ok {
			g.Dangling = append(g.Dangling, e)
			continue
		}
		if _, ok := g.edges[depKey]; !ok {
			g.edges[depKey] = make(map[string]struct{})
		}
		if _, ok := g.reverse[refKey]; !ok {
			g.reverse[refKey] = make(map[string]struct{})
		}
		g.edges[depKey][refKey] = struct{}{}
		g.reverse[refKey][depKey] = struct{}{}
	}

	if len(g.Dangling) > 0 {
		zap.L().Debug("dependency graph dangling edges skipped",
			zap.Int("counts", len(g.Dangling)))
	}
	return g
}

func (g *Graph) NodeTotals() int {
	return len(g.nodes)
}

// Node 按 TypedKey 取节点
func (g *Graph) Node(key string) (model.ObjectIdentity, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// References 对象直接依赖的节点，字典序
func (g *Graph) References(key string) []model.ObjectIdentity {
	return g.sortedNeighbors(g.edges[key])
}

// Dependents 直接依赖该对象的节点，字典序
func (g *Graph) Dependents(key string) []model.ObjectIdentity {
	return g.sortedNeighbors(g.reverse[key])
}

func (g *Graph) sortedNeighbors(set map[string]struct{}) []model.ObjectIdentity {
	var keys []string
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	objs := make([]model.ObjectIdentity, 0, len(keys))
	for _, k := range keys {
		objs = append(objs, g.nodes[k])
	}
	return objs
}

// 拓扑分层结果
// Layers 内被依赖者所在层号严格小于依赖者所在层号，层内字典序
// 环上节点全部落入最后一层，CycleEdges 记录环相关边供报告
type TopoResult struct {
	Layers     [][]model.ObjectIdentity
	CycleEdges []model.DependencyEdge
}

// HasCycle 是否存在依赖环
func (r *TopoResult) HasCycle() bool {
	return len(r.CycleEdges) > 0
}

// Ordered 分层结果摊平为单序列
func (r *TopoResult) Ordered() []model.ObjectIdentity {
	var objs []model.ObjectIdentity
	for _, layer := range r.Layers {
		objs = append(objs, layer...)
	}
	return objs
}

// TopoLayers Kahn 分层拓扑排序
// 每轮提取所有出度归零（无未决依赖）的节点构成一层
// 剩余节点互为环，整体作为最后一层字典序排列，不在环内做顺序承诺
func (g *Graph) TopoLayers() *TopoResult {
	result := &TopoResult{}

	// 出度 = 未决依赖数
	outDegree := make(map[string]int, len(g.nodes))
	for key := range g.nodes {
		outDegree[key] = len(g.edges[key])
	}

	remaining := make(map[string]struct{}, len(g.nodes))
	for key := range g.nodes {
		remaining[key] = struct{}{}
	}

	for len(remaining) > 0 {
		var ready []string
		for key := range remaining {
			if outDegree[key] == 0 {
				ready = append(ready, key)
			}
		}
		if len(ready) == 0 {
			break
		}
		sort.Strings(ready)

		layer := make([]model.ObjectIdentity, 0, len(ready))
		for _, key := range ready {
			layer = append(layer, g.nodes[key])
			delete(remaining, key)
			for dep := range g.reverse[key] {
				outDegree[dep]--
			}
		}
		result.Layers = append(result.Layers, layer)
	}

	if len(remaining) == 0 {
		return result
	}

	// 剩余节点必在环上或依赖环，收集环相关边后整体归入最后一层
	var cycleKeys []string
	for key := range remaining {
		cycleKeys = append(cycleKeys, key)
	}
	sort.Strings(cycleKeys)

	cycleLayer := make([]model.ObjectIdentity, 0, len(cycleKeys))
	for _, key := range cycleKeys {
		cycleLayer = append(cycleLayer, g.nodes[key])
		var refs []string
		for ref := range g.edges[key] {
			if _, inCycle := remaining[ref]; inCycle {
				refs = append(refs, ref)
			}
		}
		sort.Strings(refs)
		for _, ref := range refs {
			result.CycleEdges = append(result.CycleEdges, model.DependencyEdge{
				Dependent:  g.nodes[key],
				Referenced: g.nodes[ref],
			})
		}
	}
	result.Layers = append(result.Layers, cycleLayer)

	zap.L().Warn("dependency cycle detected, cycle objects placed in final layer",
		zap.Int("cycle objects", len(cycleLayer)),
		zap.Int("cycle edges", len(result.CycleEdges)))
	return result
}

// Chain 单对象修复链
// 返回该对象及其全部传递依赖，按拓扑层序排列（被依赖者在前），对象自身最后
func (g *Graph) Chain(target model.ObjectIdentity) []model.ObjectIdentity {
	targetKey := target.TypedKey()
	if _, ok := g.nodes[targetKey]; !ok {
		return nil
	}

	// 传递闭包
	closure := map[string]struct{}{targetKey: {}}
	stack := []string{targetKey}
	for len(stack) > 0 {
		key := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for ref := range g.edges[key] {
			if _, seen := closure[ref]; !seen {
				closure[ref] = struct{}{}
				stack = append(stack, ref)
			}
		}
	}

	var chain []model.ObjectIdentity
	for _, obj := range g.TopoLayers().Ordered() {
		if _, ok := closure[obj.TypedKey()]; ok {
			chain = append(chain, obj)
		}
	}
	return chain
}

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
	"reflect"
	"testing"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
)

func obj(schema, name string, t common.ObjectType) model.ObjectIdentity {
	return model.NewObjectIdentity(schema, name, t)
}

func edge(dep, ref model.ObjectIdentity) model.DependencyEdge {
	return model.DependencyEdge{Dependent: dep, Referenced: ref}
}

func layerNames(layer []model.ObjectIdentity) []string {
	var names []string
	for _, o := range layer {
		names = append(names, o.Name)
	}
	return names
}

func TestTopoLayers(t *testing.T) {
	tab := obj("APP", "ORDERS", common.ObjectTypeTable)
	view := obj("APP", "V_ORDERS", common.ObjectTypeView)
	proc := obj("APP", "PROC_SETTLE", common.ObjectTypeProcedure)

	g := BuildGraph(
		[]model.ObjectIdentity{view, proc, tab},
		[]model.DependencyEdge{
			edge(view, tab),
			edge(proc, view),
		})
	result := g.TopoLayers()

	if result.HasCycle() {
		t.Fatalf("unexpected cycle: %v", result.CycleEdges)
	}
	if len(result.Layers) != 3 {
		t.Fatalf("layers expect 3, actual %d", len(result.Layers))
	}
	if !reflect.DeepEqual(layerNames(result.Layers[0]), []string{"ORDERS"}) {
		t.Fatalf("layer 0 expect [ORDERS], actual %v", layerNames(result.Layers[0]))
	}
	if !reflect.DeepEqual(layerNames(result.Layers[1]), []string{"V_ORDERS"}) {
		t.Fatalf("layer 1 expect [V_ORDERS], actual %v", layerNames(result.Layers[1]))
	}
	if !reflect.DeepEqual(layerNames(result.Layers[2]), []string{"PROC_SETTLE"}) {
		t.Fatalf("layer 2 expect [PROC_SETTLE], actual %v", layerNames(result.Layers[2]))
	}
}

func TestTopoLayersLexicalOrder(t *testing.T) {
	a := obj("APP", "T_ALPHA", common.ObjectTypeTable)
	b := obj("APP", "T_BETA", common.ObjectTypeTable)
	c := obj("APP", "T_GAMMA", common.ObjectTypeTable)

	// 互不依赖，单层内必须字典序
	g := BuildGraph([]model.ObjectIdentity{c, a, b}, nil)
	result := g.TopoLayers()

	if len(result.Layers) != 1 {
		t.Fatalf("layers expect 1, actual %d", len(result.Layers))
	}
	if !reflect.DeepEqual(layerNames(result.Layers[0]), []string{"T_ALPHA", "T_BETA", "T_GAMMA"}) {
		t.Fatalf("layer order expect lexical, actual %v", layerNames(result.Layers[0]))
	}
}

func TestTopoLayersCycle(t *testing.T) {
	p1 := obj("APP", "PROC_A", common.ObjectTypeProcedure)
	p2 := obj("APP", "PROC_B", common.ObjectTypeProcedure)
	tab := obj("APP", "ORDERS", common.ObjectTypeTable)

	g := BuildGraph(
		[]model.ObjectIdentity{p1, p2, tab},
		[]model.DependencyEdge{
			edge(p1, p2),
			edge(p2, p1),
			edge(p1, tab),
		})
	result := g.TopoLayers()

	if !result.HasCycle() {
		t.Fatal("cycle expect detected")
	}
	last := result.Layers[len(result.Layers)-1]
	if !reflect.DeepEqual(layerNames(last), []string{"PROC_A", "PROC_B"}) {
		t.Fatalf("cycle layer expect [PROC_A PROC_B], actual %v", layerNames(last))
	}
	if !reflect.DeepEqual(layerNames(result.Layers[0]), []string{"ORDERS"}) {
		t.Fatalf("layer 0 expect [ORDERS], actual %v", layerNames(result.Layers[0]))
	}
	if len(result.CycleEdges) != 2 {
		t.Fatalf("cycle edges expect 2, actual %d", len(result.CycleEdges))
	}
}

func TestBuildGraphDangling(t *testing.T) {
	tab := obj("APP", "ORDERS", common.ObjectTypeTable)
	outside := obj("SYS", "DUAL", common.ObjectTypeTable)

	g := BuildGraph(
		[]model.ObjectIdentity{tab},
		[]model.DependencyEdge{
			edge(tab, outside),
			edge(tab, tab),
		})

	if len(g.Dangling) != 1 {
		t.Fatalf("dangling edges expect 1, actual %d", len(g.Dangling))
	}
	if got := g.References(tab.TypedKey()); len(got) != 0 {
		t.Fatalf("references expect empty, actual %v", got)
	}
}

func TestChain(t *testing.T) {
	tab := obj("APP", "ORDERS", common.ObjectTypeTable)
	view := obj("APP", "V_ORDERS", common.ObjectTypeView)
	proc := obj("APP", "PROC_SETTLE", common.ObjectTypeProcedure)
	other := obj("APP", "CUSTOMERS", common.ObjectTypeTable)

	g := BuildGraph(
		[]model.ObjectIdentity{tab, view, proc, other},
		[]model.DependencyEdge{
			edge(view, tab),
			edge(proc, view),
		})

	chain := g.Chain(proc)
	if !reflect.DeepEqual(layerNames(chain), []string{"ORDERS", "V_ORDERS", "PROC_SETTLE"}) {
		t.Fatalf("chain expect [ORDERS V_ORDERS PROC_SETTLE], actual %v", layerNames(chain))
	}

	if got := g.Chain(obj("APP", "NOT_EXIST", common.ObjectTypeTable)); got != nil {
		t.Fatalf("chain of unknown object expect nil, actual %v", got)
	}
}

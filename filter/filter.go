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
package filter

import (
	"fmt"
	"strings"

	"github.com/Minorli/ob-comparator-sub002/common"
)

// 对象类型门禁
// 统一作用于 remap/compare/fixup 三个阶段，配置为空表示全类型参与
type Gate struct {
	allowTypes      map[common.ObjectType]struct{}
	EnableInference bool
}

func NewGate(typeNames []string, enableInference bool) (*Gate, error) {
	g := &Gate{
		allowTypes:      make(map[common.ObjectType]struct{}),
		EnableInference: enableInference,
	}
	for _, name := range typeNames {
		t := common.ObjectType(strings.ToUpper(strings.TrimSpace(name)))
		if !common.IsContainObjectType(common.AllObjectTypes, t) {
			return nil, fmt.Errorf("object type [%s] isn't support, support object types %v", name, common.AllObjectTypes)
		}
		g.allowTypes[t] = struct{}{}
	}
	return g, nil
}

// MatchType 检查对象类型是否参与本次任务
func (g *Gate) MatchType(t common.ObjectType) bool {
	if len(g.allowTypes) == 0 {
		return true
	}
	_, ok := g.allowTypes[t]
	return ok
}

// MatchTypes 过滤出参与本次任务的对象类型，保持入参顺序
func (g *Gate) MatchTypes(types []common.ObjectType) []common.ObjectType {
	var matched []common.ObjectType
	for _, t := range types {
		if g.MatchType(t) {
			matched = append(matched, t)
		}
	}
	return matched
}

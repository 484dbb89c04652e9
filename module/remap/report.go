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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Minorli/ob-comparator-sub002/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"
)

// WriteMappingReport 输出对象映射清单与冲突报告
// mapping.txt 每行一个对象，固定格式便于 diff 复核
// conflict.txt 表格呈现，冲突为空时不生成
func WriteMappingReport(outputDir string, snapshot *model.Snapshot, mapping *Mapping) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create remap output dir [%s] failed: %v", outputDir, err)
	}

	var b strings.Builder
	var keys []string
	for k := range mapping.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, obj := range snapshot.Source.AllObjects() {
		target, ok := mapping.Pairs[obj.TypedKey()]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("%-14s %-40s -> %s.%s\n", obj.Type, obj.Key(), target.Schema, target.Name))
	}

	mappingFile := filepath.Join(outputDir, "mapping.txt")
	if err := os.WriteFile(mappingFile, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write remap mapping file [%s] failed: %v", mappingFile, err)
	}
	zap.L().Info("remap mapping report generated",
		zap.String("file", mappingFile),
		zap.Int("objects", len(mapping.Pairs)))

	if len(mapping.Conflicts) == 0 && len(mapping.Extraneous) == 0 {
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "OBJECT", "TYPE", "REASON", "CANDIDATES"})
	for i, c := range mapping.Conflicts {
		t.AppendRow(table.Row{i + 1, c.Object.Key(), c.Object.Type, c.Reason, strings.Join(c.Candidates, ",")})
	}

	var cb strings.Builder
	cb.WriteString("remap conflicts, resolve by explicit rules and rerun\n")
	cb.WriteString(t.Render())
	cb.WriteString("\n")
	if len(mapping.Extraneous) > 0 {
		cb.WriteString("\nextraneous rules, source object isn't exist\n")
		for _, r := range mapping.Extraneous {
			cb.WriteString(fmt.Sprintf("line %d: %s\n", r.LineNo, r.Raw))
		}
	}

	conflictFile := filepath.Join(outputDir, "conflict.txt")
	if err := os.WriteFile(conflictFile, []byte(cb.String()), 0644); err != nil {
		return fmt.Errorf("write remap conflict file [%s] failed: %v", conflictFile, err)
	}
	zap.L().Warn("remap conflict report generated",
		zap.String("file", conflictFile),
		zap.Int("conflicts", len(mapping.Conflicts)),
		zap.Int("extraneous rules", len(mapping.Extraneous)))
	return nil
}

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
	"os"
	"path/filepath"
	"strings"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"
)

// WriteCompareReport 比对报告输出
// summary.txt 状态汇总表，detail.txt 非 OK 结果逐项明细
func WriteCompareReport(outputDir string, rs *ResultSet) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create compare output dir [%s] failed: %v", outputDir, err)
	}

	counts := rs.CountByState()
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"STATE", "COUNTS"})
	for _, state := range []string{
		common.CompareStateOK,
		common.CompareStateMissing,
		common.CompareStateMismatched,
		common.CompareStateExtra,
		common.CompareStateUnsupported,
		common.CompareStateBlocked,
	} {
		t.AppendRow(table.Row{state, counts[state]})
	}
	t.AppendFooter(table.Row{"TOTAL", len(rs.Results)})

	summaryFile := filepath.Join(outputDir, "summary.txt")
	if err := os.WriteFile(summaryFile, []byte(t.Render()+"\n"), 0644); err != nil {
		return fmt.Errorf("write compare summary file [%s] failed: %v", summaryFile, err)
	}

	var b strings.Builder
	for _, r := range rs.Results {
		if r.State == common.CompareStateOK && len(r.Findings) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("%-12s %-14s %s -> %s\n", r.State, r.Source.Type, r.Source.Key(), r.Target.Key()))
		for _, f := range r.Findings {
			b.WriteString(fmt.Sprintf("    [%s] %s\n", f.Reason, f.Detail))
		}
	}
	detailFile := filepath.Join(outputDir, "detail.txt")
	if err := os.WriteFile(detailFile, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write compare detail file [%s] failed: %v", detailFile, err)
	}

	zap.L().Info("compare report generated",
		zap.String("summary", summaryFile),
		zap.String("detail", detailFile))
	return nil
}

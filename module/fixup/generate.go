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
package fixup

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
	"github.com/Minorli/ob-comparator-sub002/module/compare"
	"github.com/Minorli/ob-comparator-sub002/module/graph"
	"github.com/Minorli/ob-comparator-sub002/module/remap"
	"github.com/Minorli/ob-comparator-sub002/module/sqlmask"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DDL 提供方，返回对象原始 CREATE DDL 文本
// 获取方式（DBMS_METADATA、离线文件）由实现决定
type DDLProvider interface {
	GetObjectDDL(ctx context.Context, obj model.ObjectIdentity) (string, error)
}

// 修复脚本生成器
// 比对结果 + 映射 + 依赖分层 + 安全改写器协同产出可复核脚本
type Generator struct {
	snapshot      *model.Snapshot
	mapping       *remap.Mapping
	results       *compare.ResultSet
	provider      DDLProvider
	outputDir     string
	threads       int
	ddlTimeout    time.Duration
	scriptCharset string
}

// SetScriptCharset 脚本落盘字符集，默认 UTF8MB4
func (g *Generator) SetScriptCharset(charset string) {
	g.scriptCharset = charset
}

func NewGenerator(snapshot *model.Snapshot, mapping *remap.Mapping, results *compare.ResultSet,
	provider DDLProvider, outputDir string, threads int, ddlTimeout time.Duration) *Generator {
	if threads <= 0 {
		threads = 1
	}
	return &Generator{
		snapshot:   snapshot,
		mapping:    mapping,
		results:    results,
		provider:   provider,
		outputDir:  outputDir,
		threads:    threads,
		ddlTimeout: ddlTimeout,
	}
}

// 清单条目，最终按 (依赖层, 类型组, 对象名) 排序输出
type manifestEntry struct {
	layer int
	group int
	obj   model.ObjectIdentity
	file  string
	note  string
}

// Generate 全量修复脚本生成
// 对象间生成互相独立，bounded worker pool 并发执行
// 单对象 DDL 获取超时或失败只跳过该对象，不影响其余对象
func (g *Generator) Generate(ctx context.Context) error {
	startTime := time.Now()

	dg, layerIndex := g.buildDependencyLayers()
	replacements := g.buildReplacements()

	var (
		mutex   sync.Mutex
		entries []manifestEntry
	)
	appendEntry := func(e manifestEntry) {
		mutex.Lock()
		entries = append(entries, e)
		mutex.Unlock()
	}

	gr := &errgroup.Group{}
	gr.SetLimit(g.threads)
	for _, r := range g.results.FixableResults() {
		r := r
		gr.Go(func() error {
			g.generateObject(ctx, r, replacements, layerIndex, appendEntry)
			return nil
		})
	}
	if err := gr.Wait(); err != nil {
		return err
	}

	if err := g.writeSkipped(); err != nil {
		return err
	}
	if err := g.writeManifest(entries); err != nil {
		return err
	}
	if err := g.writeChains(dg, entries); err != nil {
		return err
	}

	zap.L().Info("fixup generate finished",
		zap.Int("scripts", len(entries)),
		zap.String("output dir", g.outputDir),
		zap.String("cost", time.Since(startTime).String()))
	return nil
}

func (g *Generator) buildDependencyLayers() (*graph.Graph, map[string]int) {
	var nodes []model.ObjectIdentity
	for _, r := range g.results.Results {
		if r.State != common.CompareStateExtra {
			nodes = append(nodes, r.Source)
		}
	}
	dg := graph.BuildGraph(nodes, g.snapshot.Source.Dependencies)
	result := dg.TopoLayers()
	if result.HasCycle() {
		for _, e := range result.CycleEdges {
			zap.L().Warn("dependency cycle edge",
				zap.String("dependent", e.Dependent.String()),
				zap.String("referenced", e.Referenced.String()))
		}
	}

	layerIndex := make(map[string]int)
	for i, layer := range result.Layers {
		for _, obj := range layer {
			layerIndex[obj.TypedKey()] = i
		}
	}
	return dg, layerIndex
}

// 全量映射派生 schema 限定名替换表，改写仅命中 CODE 区间
func (g *Generator) buildReplacements() []sqlmask.Replacement {
	var repls []sqlmask.Replacement
	seen := make(map[string]struct{})
	for srcKey, target := range g.mapping.Pairs {
		src := strings.TrimSuffix(srcKey, "."+string(target.Type))
		if strings.EqualFold(src, target.Key()) {
			continue
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		repls = append(repls, sqlmask.Replacement{Old: src, New: target.Key()})
	}
	return repls
}

func (g *Generator) generateObject(ctx context.Context, r compare.Result,
	replacements []sqlmask.Replacement, layerIndex map[string]int, appendEntry func(manifestEntry)) {

	entry := manifestEntry{
		layer: layerIndex[r.Source.TypedKey()],
		group: fixupGroupIndex(r.Source.Type),
		obj:   r.Source,
	}

	content, skipReason := g.buildScript(ctx, r, replacements)
	if skipReason != "" {
		entry.note = skipReason
		appendEntry(entry)
		zap.L().Warn("fixup object skipped",
			zap.String("object", r.Source.String()),
			zap.String("reason", skipReason))
		return
	}

	data := []byte(content)
	if !common.IsEmptyString(g.scriptCharset) && !strings.EqualFold(g.scriptCharset, common.CharsetUTF8MB4) {
		converted, err := common.CharsetConvert(data, common.CharsetUTF8MB4, g.scriptCharset)
		if err != nil {
			zap.L().Warn("fixup script charset convert failed, utf8 text kept",
				zap.String("object", r.Source.String()),
				zap.String("charset", g.scriptCharset),
				zap.Error(err))
		} else {
			data = converted
		}
	}

	dir := filepath.Join(g.outputDir, typeDirName(r.Source.Type))
	fileName := common.StringsBuilder(r.Target.Schema, ".", r.Target.Name, ".sql")
	filePath, err := writeObjectScript(dir, fileName, data)
	if err != nil {
		entry.note = err.Error()
		appendEntry(entry)
		zap.L().Error("fixup script write failed",
			zap.String("object", r.Source.String()),
			zap.Error(err))
		return
	}
	entry.file = filePath
	appendEntry(entry)
}

func (g *Generator) buildScript(ctx context.Context, r compare.Result,
	replacements []sqlmask.Replacement) (string, string) {

	var header strings.Builder
	header.WriteString(fmt.Sprintf("-- source: %s\n-- target: %s.%s\n-- state:  %s\n",
		r.Source.String(), r.Target.Schema, r.Target.Name, r.State))
	for _, f := range r.Findings {
		header.WriteString(fmt.Sprintf("-- [%s] %s\n", f.Reason, f.Detail))
	}

	// 既有表字段差异走 ALTER，不重建表
	if r.Source.Type == common.ObjectTypeTable && r.State == common.CompareStateMismatched {
		srcTable, ok := g.snapshot.Source.GetTable(r.Source.Schema, r.Source.Name)
		if !ok {
			return "", common.ReasonDDLUnavailable
		}
		tgtTable, ok := g.snapshot.Target.GetTable(r.Target.Schema, r.Target.Name)
		if !ok {
			return "", common.ReasonDDLUnavailable
		}
		alters := BuildTableAlters(srcTable, tgtTable, r.Target.Schema, r.Target.Name)
		if len(alters) == 0 {
			return "", common.ReasonDDLUnavailable
		}
		return header.String() + strings.Join(alters, "\n") + "\n", ""
	}

	ddlCtx := ctx
	if g.ddlTimeout > 0 {
		var cancel context.CancelFunc
		ddlCtx, cancel = context.WithTimeout(ctx, g.ddlTimeout)
		defer cancel()
	}
	ddl, err := g.provider.GetObjectDDL(ddlCtx, r.Source)
	if err != nil {
		if ddlCtx.Err() == context.DeadlineExceeded {
			return "", common.ReasonDDLTimeout
		}
		return "", common.ReasonDDLUnavailable
	}

	rewritten, err := sqlmask.Rewrite(ddl, replacements)
	if err != nil {
		zap.L().Warn("ddl mask failed, original text kept",
			zap.String("object", r.Source.String()),
			zap.Error(err))
		return header.String() + ddl, ""
	}

	if r.Source.Type == common.ObjectTypeTrigger {
		if trg, ok := g.snapshot.Source.GetTrigger(r.Source.Schema, r.Source.Name); ok {
			if tableTarget, ok := g.mapping.Lookup(model.NewObjectIdentity(trg.TableOwner, trg.TableName, common.ObjectTypeTable)); ok {
				rewritten, _ = sqlmask.RewriteTriggerOnClause(rewritten, trg.TableOwner, trg.TableName, tableTarget.Schema, tableTarget.Name)
			}
		}
	}
	if !strings.EqualFold(r.Source.Name, r.Target.Name) {
		rewritten, _ = sqlmask.RewriteEndName(rewritten, r.Source.Name, r.Target.Name)
	}

	if !strings.HasSuffix(strings.TrimSpace(rewritten), ";") {
		rewritten = strings.TrimRight(rewritten, "\n") + ";\n"
	}
	return header.String() + rewritten, ""
}

// UNSUPPORTED/BLOCKED 对象单独输出不可执行区，绝不静默省略
func (g *Generator) writeSkipped() error {
	for _, r := range g.results.SkippedResults() {
		var b strings.Builder
		b.WriteString(fmt.Sprintf("object: %s\nstate:  %s\n", r.Source.String(), r.State))
		for _, f := range r.Findings {
			b.WriteString(fmt.Sprintf("[%s] %s\n", f.Reason, f.Detail))
		}

		dir := filepath.Join(g.outputDir, "skipped", typeDirName(r.Source.Type))
		fileName := common.StringsBuilder(r.Source.Schema, ".", r.Source.Name, ".txt")
		if _, err := writeObjectScript(dir, fileName, []byte(b.String())); err != nil {
			return err
		}
	}
	return nil
}

// 执行顺序清单，依赖层优先，层内按类型安全顺序再按对象名
func (g *Generator) writeManifest(entries []manifestEntry) error {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].layer != entries[j].layer {
			return entries[i].layer < entries[j].layer
		}
		if entries[i].group != entries[j].group {
			return entries[i].group < entries[j].group
		}
		return entries[i].obj.TypedKey() < entries[j].obj.TypedKey()
	})

	w, err := NewFixupFileWriter(filepath.Join(g.outputDir, "manifest.txt"))
	if err != nil {
		return err
	}
	defer w.Close()

	for _, e := range entries {
		if e.note != "" {
			if err = w.WriteString(fmt.Sprintf("%-4d SKIP %-14s %-40s %s\n",
				e.layer, e.obj.Type, e.obj.Key(), e.note)); err != nil {
				return err
			}
			continue
		}
		if err = w.WriteString(fmt.Sprintf("%-4d EXEC %-14s %-40s %s\n",
			e.layer, e.obj.Type, e.obj.Key(), e.file)); err != nil {
			return err
		}
	}
	return nil
}

// 单对象修复链清单，脚本单独执行前需先满足的传递依赖序列
// 被依赖者在前，对象自身在末位
func (g *Generator) writeChains(dg *graph.Graph, entries []manifestEntry) error {
	w, err := NewFixupFileWriter(filepath.Join(g.outputDir, "chains.txt"))
	if err != nil {
		return err
	}
	defer w.Close()

	for _, e := range entries {
		if e.file == "" {
			continue
		}
		chain := dg.Chain(e.obj)
		if len(chain) == 0 {
			continue
		}
		keys := make([]string, 0, len(chain))
		for _, obj := range chain {
			keys = append(keys, obj.Key())
		}
		if err = w.WriteString(fmt.Sprintf("%-40s %s\n", e.obj.Key(), strings.Join(keys, " -> "))); err != nil {
			return err
		}
	}
	return nil
}

func fixupGroupIndex(t common.ObjectType) int {
	for i, g := range common.FixupGroupOrder {
		if g == t {
			return i
		}
	}
	return len(common.FixupGroupOrder)
}

func typeDirName(t common.ObjectType) string {
	return strings.ReplaceAll(strings.ToLower(string(t)), " ", "_")
}

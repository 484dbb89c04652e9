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
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/config"
	"github.com/Minorli/ob-comparator-sub002/database/meta"
	"github.com/Minorli/ob-comparator-sub002/database/oracle"
	"github.com/Minorli/ob-comparator-sub002/errors"
	"github.com/Minorli/ob-comparator-sub002/filter"
	"github.com/Minorli/ob-comparator-sub002/model"
	"github.com/Minorli/ob-comparator-sub002/module/compare"
	"github.com/Minorli/ob-comparator-sub002/module/fixup"
	"github.com/Minorli/ob-comparator-sub002/module/remap"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const metaBatchSize = 500

// pipeline 单次任务运行态，各阶段共享
type pipeline struct {
	taskID     string
	cfg        *config.Config
	gate       *filter.Gate
	snapshot   *model.Snapshot
	mapping    *remap.Mapping
	results    *compare.ResultSet
	metaEngine *meta.Meta
}

// Run 程序运行入口，按任务模式分发
func Run(ctx context.Context, cfg *config.Config) error {
	startTime := time.Now()
	taskMode := strings.ToUpper(cfg.TaskMode)
	p := &pipeline{
		taskID: uuid.New().String(),
		cfg:    cfg,
	}

	zap.L().Info("task starting",
		zap.String("task-id", p.taskID),
		zap.String("task-mode", taskMode))

	if err := p.openMetaEngine(ctx); err != nil {
		return err
	}
	p.recordTaskLog(ctx, taskMode, common.TaskStatusRunning, "")

	var err error
	switch taskMode {
	case common.TaskModeRemap:
		err = p.runRemap(ctx)
	case common.TaskModeCompare:
		err = p.runCompare(ctx)
	case common.TaskModeFixup, common.TaskModeAll:
		err = p.runFixup(ctx)
	default:
		err = errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_CONFIG,
			fmt.Errorf("flag [mode] can not null or value configure error, current value: [%s]", cfg.TaskMode))
	}

	if err != nil {
		p.recordTaskLog(ctx, taskMode, common.TaskStatusFailed, err.Error())
		return err
	}

	p.recordTaskLog(ctx, taskMode, common.TaskStatusSuccess, "")
	zap.L().Info("task finished",
		zap.String("task-id", p.taskID),
		zap.String("task-mode", taskMode),
		zap.String("cost", time.Since(startTime).String()))
	return nil
}

// runRemap 映射决策阶段，后续阶段均以其产出为前提
func (p *pipeline) runRemap(ctx context.Context) error {
	gate, err := filter.NewGate(p.cfg.RemapConfig.ObjectTypes, p.cfg.RemapConfig.EnableInference)
	if err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_CONFIG, err)
	}
	p.gate = gate

	var rules []remap.Rule
	if !common.IsEmptyString(p.cfg.RemapConfig.RuleFile) {
		if rules, err = remap.ParseRuleFile(p.cfg.RemapConfig.RuleFile); err != nil {
			return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_REMAP, err)
		}
	}

	snapshot, err := gatherSnapshot(ctx, p.cfg, targetSchemaSet(p.cfg, rules))
	if err != nil {
		return err
	}
	p.snapshot = snapshot

	startTime := time.Now()
	p.mapping = remap.NewResolver(snapshot, rules, gate).BuildMapping()

	if err = remap.WriteMappingReport(p.cfg.RemapConfig.OutputDir, snapshot, p.mapping); err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_REMAP, err)
	}
	if err = p.persistMapping(ctx); err != nil {
		return err
	}

	zap.L().Info("object remap finished",
		zap.String("task-id", p.taskID),
		zap.Int("mapped objects", len(p.mapping.Pairs)),
		zap.Int("conflicts", len(p.mapping.Conflicts)),
		zap.String("cost", time.Since(startTime).String()))

	if len(p.mapping.Conflicts) > 0 {
		zap.L().Warn("remap conflicts exist, conflicted objects are excluded from compare and fixup",
			zap.String("task-id", p.taskID),
			zap.Int("conflicts", len(p.mapping.Conflicts)))
	}
	return nil
}

// runCompare 对象比对阶段
func (p *pipeline) runCompare(ctx context.Context) error {
	if err := p.runRemap(ctx); err != nil {
		return err
	}

	startTime := time.Now()
	engine := compare.NewEngine(p.snapshot, p.mapping, p.gate)
	engine.SetIgnoreMviewLog(p.cfg.CompareConfig.IgnoreMviewLog)
	p.results = engine.Run()

	if err := compare.WriteCompareReport(p.cfg.CompareConfig.OutputDir, p.results); err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_COMPARE, err)
	}
	if err := p.persistCompareResults(ctx); err != nil {
		return err
	}

	counts := p.results.CountByState()
	zap.L().Info("object compare finished",
		zap.String("task-id", p.taskID),
		zap.Int("total", len(p.results.Results)),
		zap.Int("ok", counts[common.CompareStateOK]),
		zap.Int("missing", counts[common.CompareStateMissing]),
		zap.Int("mismatched", counts[common.CompareStateMismatched]),
		zap.Int("extra", counts[common.CompareStateExtra]),
		zap.Int("unsupported", counts[common.CompareStateUnsupported]),
		zap.Int("blocked", counts[common.CompareStateBlocked]),
		zap.String("cost", time.Since(startTime).String()))
	return nil
}

// runFixup 修复脚本生成阶段
// DDL 取自源端 DBMS_METADATA，离线快照模式同样需要源端连接
func (p *pipeline) runFixup(ctx context.Context) error {
	if err := p.runCompare(ctx); err != nil {
		return err
	}

	oraEngine, err := oracle.NewOracleDBEngine(ctx, p.cfg.OracleConfig)
	if err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, err)
	}
	defer oraEngine.Close()

	if err = oraEngine.SetMetadataTransform(ctx); err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_FIXUP, err)
	}

	ddlTimeout := time.Duration(p.cfg.FixupConfig.DDLTimeout) * time.Second
	if ddlTimeout <= 0 {
		ddlTimeout = 30 * time.Second
	}

	generator := fixup.NewGenerator(p.snapshot, p.mapping, p.results,
		oraEngine, p.cfg.FixupConfig.OutputDir, p.cfg.FixupConfig.FixupThreads, ddlTimeout)
	generator.SetScriptCharset(p.cfg.FixupConfig.ScriptCharset)
	if err = generator.Generate(ctx); err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_FIXUP, err)
	}
	return nil
}

// openMetaEngine 元数据库初始化
// meta-schema 未配置时不持久化，仅文件报告
func (p *pipeline) openMetaEngine(ctx context.Context) error {
	if common.IsEmptyString(p.cfg.OceanBaseConfig.MetaSchema) {
		zap.L().Warn("oceanbase meta-schema isn't configured, task results won't be persisted")
		return nil
	}
	metaEngine, err := meta.NewMetaDBEngine(ctx, p.cfg.OceanBaseConfig, p.cfg.AppConfig.SlowlogThreshold)
	if err != nil {
		return err
	}
	if err = metaEngine.MigrateTables(); err != nil {
		return err
	}
	p.metaEngine = metaEngine
	return nil
}

func (p *pipeline) persistMapping(ctx context.Context) error {
	if p.metaEngine == nil {
		return nil
	}

	var mappingS []meta.RemapMappingDetail
	for _, obj := range p.snapshot.Source.AllObjects() {
		target, ok := p.mapping.Lookup(obj)
		if !ok {
			continue
		}
		mappingS = append(mappingS, meta.RemapMappingDetail{
			TaskID:       p.taskID,
			SourceSchema: obj.Schema,
			ObjectType:   string(obj.Type),
			ObjectName:   obj.Name,
			TargetSchema: target.Schema,
			TargetName:   target.Name,
		})
	}
	if len(mappingS) > 0 {
		if err := meta.NewRemapMappingDetailModel(p.metaEngine).BatchCreateRemapMappingDetail(ctx, mappingS, metaBatchSize); err != nil {
			return err
		}
	}

	var conflictS []meta.RemapConflictDetail
	for _, c := range p.mapping.Conflicts {
		conflictS = append(conflictS, meta.RemapConflictDetail{
			TaskID:       p.taskID,
			SourceSchema: c.Object.Schema,
			ObjectType:   string(c.Object.Type),
			ObjectName:   c.Object.Name,
			Reason:       c.Reason,
			Candidates:   strings.Join(c.Candidates, ","),
		})
	}
	if len(conflictS) > 0 {
		if err := meta.NewRemapConflictDetailModel(p.metaEngine).BatchCreateRemapConflictDetail(ctx, conflictS, metaBatchSize); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) persistCompareResults(ctx context.Context) error {
	if p.metaEngine == nil {
		return nil
	}

	var detailS []meta.CompareResultDetail
	for _, r := range p.results.Results {
		var findings []string
		for _, f := range r.Findings {
			findings = append(findings, fmt.Sprintf("[%s] %s", f.Reason, f.Detail))
		}
		detailS = append(detailS, meta.CompareResultDetail{
			TaskID:       p.taskID,
			SourceSchema: r.Source.Schema,
			ObjectType:   string(r.Source.Type),
			ObjectName:   r.Source.Name,
			TargetSchema: r.Target.Schema,
			TargetName:   r.Target.Name,
			CompareState: r.State,
			Findings:     strings.Join(findings, "\n"),
		})
	}
	if len(detailS) == 0 {
		return nil
	}
	return meta.NewCompareResultDetailModel(p.metaEngine).BatchCreateCompareResultDetail(ctx, detailS, metaBatchSize)
}

// recordTaskLog 任务流水记录，失败不阻断主流程
func (p *pipeline) recordTaskLog(ctx context.Context, taskMode, taskStatus, detail string) {
	if p.metaEngine == nil {
		return
	}
	err := meta.NewTaskLogDetailModel(p.metaEngine).CreateTaskLogDetail(ctx, &meta.TaskLogDetail{
		TaskID:     p.taskID,
		TaskMode:   taskMode,
		TaskStatus: taskStatus,
		Detail:     detail,
	})
	if err != nil {
		zap.L().Warn("record task log failed",
			zap.String("task-id", p.taskID),
			zap.String("task-status", taskStatus),
			zap.Error(err))
	}
}

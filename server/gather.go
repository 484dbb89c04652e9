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
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/config"
	"github.com/Minorli/ob-comparator-sub002/database/oceanbase"
	"github.com/Minorli/ob-comparator-sub002/database/oracle"
	"github.com/Minorli/ob-comparator-sub002/errors"
	"github.com/Minorli/ob-comparator-sub002/model"
	"github.com/Minorli/ob-comparator-sub002/module/remap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// gatherSnapshot 构建双侧元数据快照
// dump-dir 非空走离线导出文件，否则双端在线采集
func gatherSnapshot(ctx context.Context, cfg *config.Config, targetSchemas []string) (*model.Snapshot, error) {
	startTime := time.Now()

	if !common.IsEmptyString(cfg.MetadataConfig.DumpDir) {
		zap.L().Info("gather metadata snapshot from dump",
			zap.String("dump-dir", cfg.MetadataConfig.DumpDir))
		snapshot, err := model.LoadSnapshotFromDump(cfg.MetadataConfig.DumpDir)
		if err != nil {
			return nil, errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_METADATA, err)
		}
		zap.L().Info("gather metadata snapshot from dump finished",
			zap.Int("source objects", snapshot.Source.ObjectTotals()),
			zap.Int("target objects", snapshot.Target.ObjectTotals()),
			zap.String("cost", time.Since(startTime).String()))
		return snapshot, nil
	}

	oraEngine, err := oracle.NewOracleDBEngine(ctx, cfg.OracleConfig)
	if err != nil {
		return nil, errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, err)
	}
	defer oraEngine.Close()

	obEngine, err := oceanbase.NewOceanBaseDBEngine(ctx, cfg.OceanBaseConfig)
	if err != nil {
		return nil, errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, err)
	}
	defer obEngine.Close()

	snapshot := model.NewSnapshot()

	for _, schema := range cfg.OracleConfig.SchemaNames {
		if err = gatherOracleSchema(oraEngine, snapshot.Source, schema, cfg.MetadataConfig.GatherThreads); err != nil {
			return nil, errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_METADATA, err)
		}
	}
	for _, schema := range targetSchemas {
		if err = gatherOceanBaseSchema(obEngine, snapshot.Target, schema, cfg.MetadataConfig.GatherThreads); err != nil {
			return nil, errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_METADATA, err)
		}
	}

	zap.L().Info("gather metadata snapshot finished",
		zap.Strings("source schemas", cfg.OracleConfig.SchemaNames),
		zap.Strings("target schemas", targetSchemas),
		zap.Int("source objects", snapshot.Source.ObjectTotals()),
		zap.Int("target objects", snapshot.Target.ObjectTotals()),
		zap.String("cost", time.Since(startTime).String()))
	return snapshot, nil
}

// gatherOracleSchema 源端单 schema 元数据采集
// 对象标识、约束名、序列、触发器、同义词、依赖边串行拉取
// 单表明细互相独立，bounded worker pool 并发装配
func gatherOracleSchema(o *oracle.Oracle, side *model.SideMeta, schema string, threads int) error {
	objs, err := o.GetSchemaObjects(schema)
	if err != nil {
		return err
	}
	for _, obj := range objs {
		side.AddObject(obj)
	}

	cons, err := o.GetSchemaConstraintNames(schema)
	if err != nil {
		return err
	}
	for _, c := range cons {
		side.AddObject(c)
	}

	g := &errgroup.Group{}
	g.SetLimit(threads)
	var mu sync.Mutex
	for _, obj := range objs {
		if obj.Type != common.ObjectTypeTable {
			continue
		}
		obj := obj
		g.Go(func() error {
			t, err := o.GetSchemaTable(obj.Schema, obj.Name)
			if err != nil {
				return err
			}
			mu.Lock()
			side.AddTable(t)
			mu.Unlock()
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}

	sequences, err := o.GetSchemaSequences(schema)
	if err != nil {
		return err
	}
	for _, seq := range sequences {
		side.AddSequence(seq)
	}

	triggers, err := o.GetSchemaTriggers(schema)
	if err != nil {
		return err
	}
	for _, trg := range triggers {
		side.AddTrigger(trg)
	}

	synonyms, err := o.GetSchemaSynonyms(schema)
	if err != nil {
		return err
	}
	for _, syn := range synonyms {
		side.AddSynonym(syn)
	}

	edges, err := o.GetSchemaDependencies(schema)
	if err != nil {
		return err
	}
	for _, e := range edges {
		side.AddDependency(e)
	}
	return nil
}

// gatherOceanBaseSchema 目标端单 schema 元数据采集
// MySQL 租户无同义词与依赖视图，只取对象、表明细、序列、触发器
func gatherOceanBaseSchema(ob *oceanbase.OceanBase, side *model.SideMeta, schema string, threads int) error {
	objs, err := ob.GetSchemaObjects(schema)
	if err != nil {
		return err
	}
	for _, obj := range objs {
		side.AddObject(obj)
	}

	g := &errgroup.Group{}
	g.SetLimit(threads)
	var mu sync.Mutex
	for _, obj := range objs {
		if obj.Type != common.ObjectTypeTable {
			continue
		}
		obj := obj
		g.Go(func() error {
			t, err := ob.GetSchemaTable(obj.Schema, obj.Name)
			if err != nil {
				return err
			}
			mu.Lock()
			side.AddTable(t)
			mu.Unlock()
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}

	sequences, err := ob.GetSchemaSequences(schema)
	if err != nil {
		return err
	}
	for _, seq := range sequences {
		side.AddSequence(seq)
	}

	triggers, err := ob.GetSchemaTriggers(schema)
	if err != nil {
		return err
	}
	for _, trg := range triggers {
		side.AddTrigger(trg)
	}
	return nil
}

// targetSchemaSet 目标端采集范围
// 源端 schema 同名保位 + 显式规则指向的目标 schema，去重字典序
func targetSchemaSet(cfg *config.Config, rules []remap.Rule) []string {
	seen := make(map[string]struct{})
	var schemas []string
	add := func(schema string) {
		schema = strings.ToUpper(schema)
		if common.IsEmptyString(schema) {
			return
		}
		if _, ok := seen[schema]; ok {
			return
		}
		seen[schema] = struct{}{}
		schemas = append(schemas, schema)
	}
	for _, schema := range cfg.OracleConfig.SchemaNames {
		add(schema)
	}
	for _, rule := range rules {
		add(rule.TargetSchema)
	}
	sort.Strings(schemas)
	return schemas
}

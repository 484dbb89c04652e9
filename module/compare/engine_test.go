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
	"testing"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/filter"
	"github.com/Minorli/ob-comparator-sub002/model"
	"github.com/Minorli/ob-comparator-sub002/module/remap"
)

func identityMapping(objs ...model.ObjectIdentity) *remap.Mapping {
	m := &remap.Mapping{Pairs: make(map[string]model.ObjectIdentity)}
	for _, o := range objs {
		m.Pairs[o.TypedKey()] = o
	}
	return m
}

func allGate(t *testing.T) *filter.Gate {
	t.Helper()
	gate, err := filter.NewGate(nil, true)
	if err != nil {
		t.Fatalf("new gate failed: %v", err)
	}
	return gate
}

func TestEngineExistenceOnly(t *testing.T) {
	snapshot := model.NewSnapshot()
	proc := model.NewObjectIdentity("APP", "PROC_OK", common.ObjectTypeProcedure)
	missing := model.NewObjectIdentity("APP", "PROC_MISS", common.ObjectTypeProcedure)
	snapshot.Source.AddObject(proc)
	snapshot.Source.AddObject(missing)
	snapshot.Target.AddObject(proc)

	rs := NewEngine(snapshot, identityMapping(proc, missing), allGate(t)).Run()

	if r, _ := rs.Get(proc); r.State != common.CompareStateOK {
		t.Fatalf("existing procedure expect OK, actual %s", r.State)
	}
	if r, _ := rs.Get(missing); r.State != common.CompareStateMissing {
		t.Fatalf("missing procedure expect MISSING, actual %s", r.State)
	}
}

func TestEnginePrintOnly(t *testing.T) {
	snapshot := model.NewSnapshot()
	pkg := model.NewObjectIdentity("APP", "PKG_BILLING", common.ObjectTypePackage)
	snapshot.Source.AddObject(pkg)

	rs := NewEngine(snapshot, identityMapping(pkg), allGate(t)).Run()

	r, _ := rs.Get(pkg)
	if r.State != common.CompareStateMissing || !r.PrintOnly {
		t.Fatalf("package expect print only MISSING, actual %+v", r)
	}
	if len(rs.FixableResults()) != 0 {
		t.Fatal("print only object expect never fixable")
	}
}

func TestEngineSequenceAttrs(t *testing.T) {
	snapshot := model.NewSnapshot()
	snapshot.Source.AddSequence(&model.Sequence{
		SchemaName: "APP", SequenceName: "SEQ_ID",
		MinValue: "1", MaxValue: "9999999999999999999999999999", IncrementBy: "1", CycleFlag: "N", CacheSize: "20",
	})
	snapshot.Target.AddSequence(&model.Sequence{
		SchemaName: "APP", SequenceName: "SEQ_ID",
		MinValue: "1", MaxValue: "9999999999999999999999999999", IncrementBy: "2", CycleFlag: "N", CacheSize: "20",
	})
	seq := model.NewObjectIdentity("APP", "SEQ_ID", common.ObjectTypeSequence)

	rs := NewEngine(snapshot, identityMapping(seq), allGate(t)).Run()

	r, _ := rs.Get(seq)
	if r.State != common.CompareStateMismatched {
		t.Fatalf("sequence attr diff expect MISMATCHED, actual %s", r.State)
	}
	if len(r.Findings) != 1 || r.Findings[0].Reason != common.ReasonSeqAttr {
		t.Fatalf("sequence findings expect [SEQUENCE_ATTR_MISMATCH], actual %v", r.Findings)
	}
}

func TestEngineTableMismatchAndBlockedPropagation(t *testing.T) {
	snapshot := model.NewSnapshot()

	// EMP 带自引用外键，约束判 UNSUPPORTED 后依赖它的过程应 BLOCKED
	snapshot.Source.AddTable(&model.Table{
		SchemaName: "APP", TableName: "EMP",
		Columns: []model.Column{{ColumnName: "EMP_ID", DataType: "NUMBER"}},
		ForeignConstraints: []model.ConstraintForeign{
			{ConstraintName: "FK_EMP_MGR", Columns: []string{"MGR_ID"}, ReferencedSchema: "APP", ReferencedTable: "EMP"},
		},
	})
	snapshot.Target.AddTable(&model.Table{
		SchemaName: "APP", TableName: "EMP",
		Columns: []model.Column{{ColumnName: "EMP_ID", DataType: "NUMBER"}},
	})
	fkObj := model.NewObjectIdentity("APP", "FK_EMP_MGR", common.ObjectTypeConstraint)
	snapshot.Source.AddObject(fkObj)

	proc := model.NewObjectIdentity("APP", "PROC_HR", common.ObjectTypeProcedure)
	snapshot.Source.AddObject(proc)
	snapshot.Target.AddObject(proc)
	snapshot.Source.AddDependency(model.DependencyEdge{Dependent: proc, Referenced: fkObj})

	tableObj := model.NewObjectIdentity("APP", "EMP", common.ObjectTypeTable)
	rs := NewEngine(snapshot, identityMapping(tableObj, fkObj, proc), allGate(t)).Run()

	if r, _ := rs.Get(tableObj); r.State != common.CompareStateOK {
		t.Fatalf("table expect OK, actual %s", r.State)
	}
	if r, _ := rs.Get(fkObj); r.State != common.CompareStateUnsupported {
		t.Fatalf("self referencing fk expect UNSUPPORTED, actual %s", r.State)
	}
	r, _ := rs.Get(proc)
	if r.State != common.CompareStateBlocked {
		t.Fatalf("dependent procedure expect BLOCKED, actual %s", r.State)
	}
	if r.Findings[len(r.Findings)-1].Reason != common.ReasonDependUnsupported {
		t.Fatalf("blocked finding expect DEPEND_UNSUPPORTED, actual %v", r.Findings)
	}
}

func TestEngineTriggerStatusSuppression(t *testing.T) {
	snapshot := model.NewSnapshot()
	snapshot.Source.AddTrigger(&model.Trigger{
		SchemaName: "APP", TriggerName: "TRG_BI", TableOwner: "APP", TableName: "ORDERS",
		Status: "ENABLED", Validity: "VALID",
	})
	snapshot.Target.AddTrigger(&model.Trigger{
		SchemaName: "APP", TriggerName: "TRG_BI", TableOwner: "APP", TableName: "ORDERS",
		Status: "DISABLED", Validity: "INVALID",
	})
	trg := model.NewObjectIdentity("APP", "TRG_BI", common.ObjectTypeTrigger)

	rs := NewEngine(snapshot, identityMapping(trg), allGate(t)).Run()

	r, _ := rs.Get(trg)
	if r.State != common.CompareStateMismatched || len(r.Findings) != 2 {
		t.Fatalf("trigger status diff expect MISMATCHED with 2 findings, actual %s %v", r.State, r.Findings)
	}
}

func TestEngineExtraObjects(t *testing.T) {
	snapshot := model.NewSnapshot()
	snapshot.Target.AddObject(model.NewObjectIdentity("OB_SALES", "V_LEFTOVER", common.ObjectTypeView))

	rs := NewEngine(snapshot, identityMapping(), allGate(t)).Run()

	if len(rs.Results) != 1 || rs.Results[0].State != common.CompareStateExtra {
		t.Fatalf("target only object expect EXTRA, actual %+v", rs.Results)
	}
}

func TestEngineExtraKeepsSourceResultIntact(t *testing.T) {
	snapshot := model.NewSnapshot()
	snapshot.Source.AddTable(&model.Table{
		SchemaName: "APP", TableName: "ORDERS",
		Columns: []model.Column{{ColumnName: "ORDER_ID", DataType: "NUMBER"}},
	})
	snapshot.Target.AddTable(&model.Table{
		SchemaName: "OB_SALES", TableName: "ORDERS",
		Columns: []model.Column{{ColumnName: "ORDER_ID", DataType: "NUMBER"}},
	})
	// 迁移中场景：源端 APP.ORDERS 已搬往 OB_SALES，目标端还残留同名旧表
	snapshot.Target.AddObject(model.NewObjectIdentity("APP", "ORDERS", common.ObjectTypeTable))
	snapshot.Target.AddObject(model.NewObjectIdentity("OB_SALES", "ORDERS", common.ObjectTypeTable))

	src := model.NewObjectIdentity("APP", "ORDERS", common.ObjectTypeTable)
	tgt := model.NewObjectIdentity("OB_SALES", "ORDERS", common.ObjectTypeTable)
	mapping := &remap.Mapping{Pairs: map[string]model.ObjectIdentity{src.TypedKey(): tgt}}

	rs := NewEngine(snapshot, mapping, allGate(t)).Run()

	r, ok := rs.Get(src)
	if !ok {
		t.Fatal("source result expect found")
	}
	if r.State != common.CompareStateOK {
		t.Fatalf("source table expect OK, actual %s", r.State)
	}

	var extraCount int
	for _, result := range rs.Results {
		if result.State == common.CompareStateExtra {
			extraCount++
		}
	}
	if extraCount != 1 {
		t.Fatalf("leftover target table expect one EXTRA, actual %d", extraCount)
	}
}

func TestEngineDanglingDependencyFinding(t *testing.T) {
	snapshot := model.NewSnapshot()
	proc := model.NewObjectIdentity("APP", "PROC_RPT", common.ObjectTypeProcedure)
	snapshot.Source.AddObject(proc)
	snapshot.Target.AddObject(proc)
	// 被依赖表未被采集，依赖边悬空
	snapshot.Source.AddDependency(model.DependencyEdge{
		Dependent:  proc,
		Referenced: model.NewObjectIdentity("DW", "FACT_SALES", common.ObjectTypeTable),
	})

	rs := NewEngine(snapshot, identityMapping(proc), allGate(t)).Run()

	r, _ := rs.Get(proc)
	if r.State != common.CompareStateOK {
		t.Fatalf("procedure expect OK, actual %s", r.State)
	}
	var found bool
	for _, f := range r.Findings {
		if f.Reason == common.ReasonDependMissing {
			found = true
		}
	}
	if !found {
		t.Fatalf("dangling dependency expect DEPEND_MISSING finding, actual %v", r.Findings)
	}
}

func TestEngineIgnoreMviewLog(t *testing.T) {
	snapshot := model.NewSnapshot()
	mlog := model.NewObjectIdentity("APP", "MLOG$_ORDERS", common.ObjectTypeTable)
	snapshot.Source.AddTable(&model.Table{
		SchemaName: "APP", TableName: "MLOG$_ORDERS",
		Columns: []model.Column{{ColumnName: "M_ROW$$", DataType: "VARCHAR2"}},
	})
	snapshot.Target.AddObject(model.NewObjectIdentity("APP", "RUPD$_ORDERS", common.ObjectTypeTable))

	engine := NewEngine(snapshot, identityMapping(mlog), allGate(t))
	engine.SetIgnoreMviewLog(true)
	rs := engine.Run()

	if len(rs.Results) != 0 {
		t.Fatalf("mview log tables expect excluded, actual %+v", rs.Results)
	}

	rs = NewEngine(snapshot, identityMapping(mlog), allGate(t)).Run()
	if len(rs.Results) != 2 {
		t.Fatalf("mview log tables expect compared when not ignored, actual %+v", rs.Results)
	}
}

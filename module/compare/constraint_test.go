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
	"github.com/Minorli/ob-comparator-sub002/model"
)

func identityResolve(obj model.ObjectIdentity) (model.ObjectIdentity, bool) {
	return obj, true
}

func TestComparePUConstraint(t *testing.T) {
	tgt := &model.Table{
		PUConstraints: []model.ConstraintPUKey{
			{ConstraintName: "PK_ANY_NAME", ConstraintType: "PK", Columns: []string{"ORDER_ID"}},
		},
	}

	state, _ := ComparePUConstraint(model.ConstraintPUKey{
		ConstraintName: "PK_ORDERS", ConstraintType: "PK", Columns: []string{"ORDER_ID"},
	}, tgt)
	if state != common.CompareStateOK {
		t.Fatalf("pk tuple match expect OK, actual %s", state)
	}

	state, findings := ComparePUConstraint(model.ConstraintPUKey{
		ConstraintName: "UK_NO", ConstraintType: "UK", Columns: []string{"ORDER_NO"},
	}, tgt)
	if state != common.CompareStateMissing || findings[0].Reason != common.ReasonConsMissing {
		t.Fatalf("uk expect MISSING, actual %s %v", state, findings)
	}

	state, findings = ComparePUConstraint(model.ConstraintPUKey{
		ConstraintName: "UK_DEF", ConstraintType: "UK", Columns: []string{"C1"}, Deferrable: "DEFERRABLE",
	}, tgt)
	if state != common.CompareStateUnsupported || findings[0].Reason != common.ReasonConsDeferrable {
		t.Fatalf("deferrable expect UNSUPPORTED, actual %s %v", state, findings)
	}
}

func TestCompareForeignConstraintSelfRef(t *testing.T) {
	srcTable := &model.Table{SchemaName: "APP", TableName: "EMP"}
	fk := model.ConstraintForeign{
		ConstraintName:   "FK_EMP_MGR",
		Columns:          []string{"MGR_ID"},
		ReferencedSchema: "APP",
		ReferencedTable:  "EMP",
		ReferencedCols:   []string{"EMP_ID"},
		DeleteRule:       "NO ACTION",
	}
	state, findings := CompareForeignConstraint(fk, srcTable, &model.Table{}, identityResolve)
	if state != common.CompareStateUnsupported || findings[0].Reason != common.ReasonFKSelfRef {
		t.Fatalf("self referencing fk expect UNSUPPORTED FK_SELF_REF, actual %s %v", state, findings)
	}
}

func TestCompareForeignConstraintRefRemap(t *testing.T) {
	srcTable := &model.Table{SchemaName: "APP", TableName: "ORDERS"}
	fk := model.ConstraintForeign{
		ConstraintName:   "FK_ORD_CUST",
		Columns:          []string{"CUST_ID"},
		ReferencedSchema: "APP",
		ReferencedTable:  "CUSTOMERS",
		DeleteRule:       "CASCADE",
	}
	resolve := func(obj model.ObjectIdentity) (model.ObjectIdentity, bool) {
		return model.NewObjectIdentity("OB_CRM", obj.Name, obj.Type), true
	}

	matched := &model.Table{
		ForeignConstraints: []model.ConstraintForeign{
			{ConstraintName: "FK_X", Columns: []string{"CUST_ID"}, ReferencedSchema: "OB_CRM", ReferencedTable: "CUSTOMERS", DeleteRule: "CASCADE"},
		},
	}
	if state, _ := CompareForeignConstraint(fk, srcTable, matched, resolve); state != common.CompareStateOK {
		t.Fatalf("remapped fk expect OK, actual %s", state)
	}

	wrongRef := &model.Table{
		ForeignConstraints: []model.ConstraintForeign{
			{ConstraintName: "FK_X", Columns: []string{"CUST_ID"}, ReferencedSchema: "APP", ReferencedTable: "CUSTOMERS", DeleteRule: "CASCADE"},
		},
	}
	state, findings := CompareForeignConstraint(fk, srcTable, wrongRef, resolve)
	if state != common.CompareStateMismatched || findings[0].Reason != common.ReasonConsRefRemap {
		t.Fatalf("wrong referenced target expect ref remap mismatch, actual %s %v", state, findings)
	}

	wrongRule := &model.Table{
		ForeignConstraints: []model.ConstraintForeign{
			{ConstraintName: "FK_X", Columns: []string{"CUST_ID"}, ReferencedSchema: "OB_CRM", ReferencedTable: "CUSTOMERS", DeleteRule: "NO ACTION"},
		},
	}
	state, findings = CompareForeignConstraint(fk, srcTable, wrongRule, resolve)
	if state != common.CompareStateMismatched || findings[0].Reason != common.ReasonConsRule {
		t.Fatalf("wrong delete rule expect rule mismatch, actual %s %v", state, findings)
	}
}

func TestCompareCheckConstraint(t *testing.T) {
	tgt := &model.Table{
		CheckConstraints: []model.ConstraintCheck{
			{ConstraintName: "SYS_C001", Expression: "( STATUS  IN ('A','B') )"},
		},
	}

	state, _ := CompareCheckConstraint(model.ConstraintCheck{
		ConstraintName: "CK_STATUS", Expression: "status in ('A','B')",
	}, tgt)
	if state != common.CompareStateOK {
		t.Fatalf("normalized expression expect matched, actual %s", state)
	}

	state, _ = CompareCheckConstraint(model.ConstraintCheck{
		ConstraintName: "SYS_C777", Expression: `"ORDER_ID" IS NOT NULL`,
	}, &model.Table{})
	if state != common.CompareStateOK {
		t.Fatalf("system not null check expect excluded, actual %s", state)
	}

	state, findings := CompareCheckConstraint(model.ConstraintCheck{
		ConstraintName: "CK_AMOUNT", Expression: "AMOUNT > 0",
	}, tgt)
	if state != common.CompareStateMissing || findings[0].Reason != common.ReasonConsMissing {
		t.Fatalf("unmatched check expect MISSING, actual %s %v", state, findings)
	}
}

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

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CompareSequenceAttrs 序列属性元组比对
// NUMBER(38) 边界值超 int64 表达范围，数值属性统一走 decimal
func CompareSequenceAttrs(src, tgt *model.Sequence) []Finding {
	var findings []Finding

	for _, attr := range []struct {
		name     string
		srcValue string
		tgtValue string
	}{
		{name: "increment_by", srcValue: src.IncrementBy, tgtValue: tgt.IncrementBy},
		{name: "min_value", srcValue: src.MinValue, tgtValue: tgt.MinValue},
		{name: "max_value", srcValue: src.MaxValue, tgtValue: tgt.MaxValue},
		{name: "cache_size", srcValue: src.CacheSize, tgtValue: tgt.CacheSize},
	} {
		if common.IsEmptyString(attr.srcValue) || common.IsEmptyString(attr.tgtValue) {
			continue
		}
		srcDec, err := decimal.NewFromString(attr.srcValue)
		if err != nil {
			zap.L().Warn("source sequence attr isn't numeric, attr compare skipped",
				zap.String("sequence", src.SequenceName),
				zap.String("attr", attr.name),
				zap.Error(err))
			continue
		}
		tgtDec, err := decimal.NewFromString(attr.tgtValue)
		if err != nil {
			zap.L().Warn("target sequence attr isn't numeric, attr compare skipped",
				zap.String("sequence", tgt.SequenceName),
				zap.String("attr", attr.name),
				zap.Error(err))
			continue
		}
		if !srcDec.Equal(tgtDec) {
			findings = append(findings, Finding{
				Reason: common.ReasonSeqAttr,
				Detail: fmt.Sprintf("sequence attr [%s] expect %s, actual %s", attr.name, srcDec.String(), tgtDec.String()),
			})
		}
	}

	if !common.IsEmptyString(src.CycleFlag) && !common.IsEmptyString(tgt.CycleFlag) &&
		common.StringUPPER(src.CycleFlag) != common.StringUPPER(tgt.CycleFlag) {
		findings = append(findings, Finding{
			Reason: common.ReasonSeqAttr,
			Detail: fmt.Sprintf("sequence attr [cycle_flag] expect %s, actual %s", src.CycleFlag, tgt.CycleFlag),
		})
	}
	return findings
}

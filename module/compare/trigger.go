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
)

// CompareTriggerStatus 触发器状态元组 (enabled/disabled, valid/invalid) 比对
// 属主表判 UNSUPPORTED 时触发器失效属预期结果，不报状态差异
func CompareTriggerStatus(src, tgt *model.Trigger, parentUnsupported bool) []Finding {
	if parentUnsupported {
		return nil
	}

	var findings []Finding
	if common.StringUPPER(src.Status) != common.StringUPPER(tgt.Status) {
		findings = append(findings, Finding{
			Reason: common.ReasonTriggerStatus,
			Detail: fmt.Sprintf("trigger [%s] status expect %s, actual %s", src.TriggerName, src.Status, tgt.Status),
		})
	}
	if common.StringUPPER(src.Validity) != common.StringUPPER(tgt.Validity) {
		findings = append(findings, Finding{
			Reason: common.ReasonTriggerStatus,
			Detail: fmt.Sprintf("trigger [%s] validity expect %s, actual %s", src.TriggerName, src.Validity, tgt.Validity),
		})
	}
	return findings
}

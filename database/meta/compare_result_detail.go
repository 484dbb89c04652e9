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
package meta

import (
	"context"
	"fmt"

	"github.com/Minorli/ob-comparator-sub002/errors"
)

// CompareResultDetail 对象比对结果明细表
type CompareResultDetail struct {
	ID           uint64 `gorm:"primary_key;autoIncrement;comment:'自增编号'" json:"id"`
	TaskID       string `gorm:"not null;index:idx_task_complex;comment:'任务 ID'" json:"task_id"`
	SourceSchema string `gorm:"not null;index:idx_task_complex;comment:'源端 schema'" json:"source_schema"`
	ObjectType   string `gorm:"not null;index:idx_task_complex;comment:'对象类型'" json:"object_type"`
	ObjectName   string `gorm:"not null;comment:'对象名'" json:"object_name"`
	TargetSchema string `gorm:"comment:'目标端 schema'" json:"target_schema"`
	TargetName   string `gorm:"comment:'目标端对象名'" json:"target_name"`
	CompareState string `gorm:"not null;index:idx_state;comment:'比对状态'" json:"compare_state"`
	Findings     string `gorm:"type:longtext;comment:'差异明细'" json:"findings"`
	*BaseModel
}

func NewCompareResultDetailModel(m *Meta) *CompareResultDetail {
	return &CompareResultDetail{
		BaseModel: &BaseModel{
			Meta: m,
		},
	}
}

func (rw *CompareResultDetail) BatchCreateCompareResultDetail(ctx context.Context, detailS []CompareResultDetail, batchSize int) error {
	err := rw.DB(ctx).CreateInBatches(detailS, batchSize).Error
	if err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("batch create table [compare_result_detail] record failed: %v", err))
	}
	return nil
}

func (rw *CompareResultDetail) DetailCompareResultByState(ctx context.Context, detailS *CompareResultDetail) ([]CompareResultDetail, error) {
	var details []CompareResultDetail
	err := rw.DB(ctx).Where("task_id = ? AND compare_state = ?",
		detailS.TaskID, detailS.CompareState).Find(&details).Error
	if err != nil {
		return details, errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("detail table [compare_result_detail] record failed: %v", err))
	}
	return details, nil
}

func (rw *CompareResultDetail) DeleteCompareResultDetailByTask(ctx context.Context, taskID string) error {
	err := rw.DB(ctx).Where("task_id = ?", taskID).Delete(&CompareResultDetail{}).Error
	if err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("delete table [compare_result_detail] record failed: %v", err))
	}
	return nil
}

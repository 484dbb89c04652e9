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

// RemapConflictDetail 映射冲突明细表，需人工给出显式规则后重跑
type RemapConflictDetail struct {
	ID           uint64 `gorm:"primary_key;autoIncrement;comment:'自增编号'" json:"id"`
	TaskID       string `gorm:"not null;index:idx_task_complex;comment:'任务 ID'" json:"task_id"`
	SourceSchema string `gorm:"not null;index:idx_task_complex;comment:'源端 schema'" json:"source_schema"`
	ObjectType   string `gorm:"not null;comment:'对象类型'" json:"object_type"`
	ObjectName   string `gorm:"not null;comment:'对象名'" json:"object_name"`
	Reason       string `gorm:"not null;comment:'冲突原因'" json:"reason"`
	Candidates   string `gorm:"type:varchar(1000);comment:'候选目标 schema 列表'" json:"candidates"`
	*BaseModel
}

func NewRemapConflictDetailModel(m *Meta) *RemapConflictDetail {
	return &RemapConflictDetail{
		BaseModel: &BaseModel{
			Meta: m,
		},
	}
}

func (rw *RemapConflictDetail) BatchCreateRemapConflictDetail(ctx context.Context, detailS []RemapConflictDetail, batchSize int) error {
	err := rw.DB(ctx).CreateInBatches(detailS, batchSize).Error
	if err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("batch create table [remap_conflict_detail] record failed: %v", err))
	}
	return nil
}

func (rw *RemapConflictDetail) CountsRemapConflictByTask(ctx context.Context, taskID string) (int64, error) {
	var counts int64
	err := rw.DB(ctx).Model(&RemapConflictDetail{}).Where("task_id = ?", taskID).Count(&counts).Error
	if err != nil {
		return counts, errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("counts table [remap_conflict_detail] record failed: %v", err))
	}
	return counts, nil
}

func (rw *RemapConflictDetail) DeleteRemapConflictDetailByTask(ctx context.Context, taskID string) error {
	err := rw.DB(ctx).Where("task_id = ?", taskID).Delete(&RemapConflictDetail{}).Error
	if err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("delete table [remap_conflict_detail] record failed: %v", err))
	}
	return nil
}

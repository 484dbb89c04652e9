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

// RemapMappingDetail 对象归属映射结论表
type RemapMappingDetail struct {
	ID           uint64 `gorm:"primary_key;autoIncrement;comment:'自增编号'" json:"id"`
	TaskID       string `gorm:"not null;index:idx_task_complex;comment:'任务 ID'" json:"task_id"`
	SourceSchema string `gorm:"not null;index:idx_task_complex;comment:'源端 schema'" json:"source_schema"`
	ObjectType   string `gorm:"not null;index:idx_task_complex;comment:'对象类型'" json:"object_type"`
	ObjectName   string `gorm:"not null;comment:'对象名'" json:"object_name"`
	TargetSchema string `gorm:"not null;comment:'目标端 schema'" json:"target_schema"`
	TargetName   string `gorm:"not null;comment:'目标端对象名'" json:"target_name"`
	*BaseModel
}

func NewRemapMappingDetailModel(m *Meta) *RemapMappingDetail {
	return &RemapMappingDetail{
		BaseModel: &BaseModel{
			Meta: m,
		},
	}
}

func (rw *RemapMappingDetail) CreateRemapMappingDetail(ctx context.Context, detailS *RemapMappingDetail) error {
	err := rw.DB(ctx).Create(detailS).Error
	if err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("create table [remap_mapping_detail] record failed: %v", err))
	}
	return nil
}

func (rw *RemapMappingDetail) BatchCreateRemapMappingDetail(ctx context.Context, detailS []RemapMappingDetail, batchSize int) error {
	err := rw.DB(ctx).CreateInBatches(detailS, batchSize).Error
	if err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("batch create table [remap_mapping_detail] record failed: %v", err))
	}
	return nil
}

func (rw *RemapMappingDetail) DetailRemapMappingBySchema(ctx context.Context, detailS *RemapMappingDetail) ([]RemapMappingDetail, error) {
	var details []RemapMappingDetail
	err := rw.DB(ctx).Where("task_id = ? AND source_schema = ?",
		detailS.TaskID, detailS.SourceSchema).Find(&details).Error
	if err != nil {
		return details, errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("detail table [remap_mapping_detail] record failed: %v", err))
	}
	return details, nil
}

func (rw *RemapMappingDetail) DeleteRemapMappingDetailByTask(ctx context.Context, taskID string) error {
	err := rw.DB(ctx).Where("task_id = ?", taskID).Delete(&RemapMappingDetail{}).Error
	if err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("delete table [remap_mapping_detail] record failed: %v", err))
	}
	return nil
}

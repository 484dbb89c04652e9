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

// TaskLogDetail 任务运行流水表
type TaskLogDetail struct {
	ID         uint64 `gorm:"primary_key;autoIncrement;comment:'自增编号'" json:"id"`
	TaskID     string `gorm:"not null;index:idx_task_complex;comment:'任务 ID'" json:"task_id"`
	TaskMode   string `gorm:"not null;index:idx_task_complex;comment:'任务模式'" json:"task_mode"`
	TaskStatus string `gorm:"not null;comment:'任务状态'" json:"task_status"`
	Detail     string `gorm:"type:longtext;comment:'任务运行详情'" json:"detail"`
	*BaseModel
}

func NewTaskLogDetailModel(m *Meta) *TaskLogDetail {
	return &TaskLogDetail{
		BaseModel: &BaseModel{
			Meta: m,
		},
	}
}

func (rw *TaskLogDetail) CreateTaskLogDetail(ctx context.Context, detailS *TaskLogDetail) error {
	err := rw.DB(ctx).Create(detailS).Error
	if err != nil {
		return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("create table [task_log_detail] record failed: %v", err))
	}
	return nil
}

func (rw *TaskLogDetail) DetailTaskLogByTask(ctx context.Context, taskID string) ([]TaskLogDetail, error) {
	var details []TaskLogDetail
	err := rw.DB(ctx).Where("task_id = ?", taskID).Order("id DESC").Find(&details).Error
	if err != nil {
		return details, errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("detail table [task_log_detail] record failed: %v", err))
	}
	return details, nil
}

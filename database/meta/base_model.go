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
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	Comment   string     `gorm:"type:varchar(1000);comment:'comment content'" json:"comment"`
	CreatedAt *time.Time `gorm:"type:timestamp;not null;default:current_timestamp;comment:'create time'" json:"createdAt"`
	UpdatedAt *time.Time `gorm:"type:timestamp;not null on update current_timestamp;default:current_timestamp;comment:'update time'" json:"updatedAt"`
	*Meta     `gorm:"-" json:"-"`
}

func (v *BaseModel) BeforeCreate(db *gorm.DB) (err error) {
	db.Statement.SetColumn("created_at", getCurrentTime())
	db.Statement.SetColumn("updated_at", getCurrentTime())
	return nil
}

func (v *BaseModel) BeforeUpdate(db *gorm.DB) (err error) {
	db.Statement.SetColumn("updated_at", getCurrentTime())
	return nil
}

func getCurrentTime() *time.Time {
	t := time.Now()
	return &t
}

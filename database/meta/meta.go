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
	"database/sql"
	"fmt"

	"github.com/Minorli/ob-comparator-sub002/config"
	"github.com/Minorli/ob-comparator-sub002/errors"
	"github.com/Minorli/ob-comparator-sub002/logger"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// 任务元数据库，落在目标 OceanBase MySQL 租户
// 映射结论、冲突与比对结果持久化供多次运行间复核
type Meta struct {
	GormDB *gorm.DB
}

func NewMetaDBEngine(ctx context.Context, obCfg config.OceanBaseConfig, slowThreshold int) (*Meta, error) {
	// 创建元数据库
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/?charset=utf8mb4&parseTime=True&loc=Local",
		obCfg.Username, obCfg.Password, obCfg.Host, obCfg.Port)

	metaDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return &Meta{}, errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("error on open general database connection [%v]: %v", obCfg.MetaSchema, err))
	}

	createSchema := fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, obCfg.MetaSchema)
	if _, err = metaDB.ExecContext(ctx, createSchema); err != nil {
		return &Meta{}, errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("error on exec meta database sql [%v]: %v", createSchema, err))
	}
	if err = metaDB.Close(); err != nil {
		return &Meta{}, errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("error on close general database sql [%v]: %v", createSchema, err))
	}

	// 初始化 MetaDB 以及 gorm 日志记录器
	dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		obCfg.Username, obCfg.Password, obCfg.Host, obCfg.Port, obCfg.MetaSchema)
	l := logger.NewGormLogger(zap.L(), slowThreshold)
	l.SetAsDefault()
	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		DriverName: "mysql",
		DSN:        dsn,
	}), &gorm.Config{
		// 禁用外键（指定外键时不会在目标库创建真实的外键约束）
		DisableForeignKeyConstraintWhenMigrating: true,
		PrepareStmt:                              true,
		Logger:                                   l,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true, // 使用单数表名
		},
	})
	if err != nil {
		return nil, errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("error on open meta database connection: %v", err))
	}

	return &Meta{GormDB: gormDB}, nil
}

func WrapGormDB(gormDB *gorm.DB) *Meta {
	return &Meta{GormDB: gormDB}
}

func (m *Meta) DB(ctx context.Context) *gorm.DB {
	return m.GormDB.WithContext(ctx)
}

func (m *Meta) MigrateTables() (err error) {
	return m.migrateStream(
		new(RemapMappingDetail),
		new(RemapConflictDetail),
		new(CompareResultDetail),
		new(TaskLogDetail),
	)
}

func (m *Meta) migrateStream(models ...interface{}) (err error) {
	for _, model := range models {
		if err = m.GormDB.AutoMigrate(model); err != nil {
			return errors.NewOCError(errors.OBCOMPARATOR, errors.DOMAIN_DB, fmt.Errorf("error on migrate meta table: %v", err))
		}
	}
	return nil
}

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
package oceanbase

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/config"
	_ "github.com/go-sql-driver/mysql"
)

type OceanBase struct {
	Ctx  context.Context
	OBDB *sql.DB
}

// 创建 oceanbase 数据库引擎，MySQL 租户协议
func NewOceanBaseDBEngine(ctx context.Context, obCfg config.OceanBaseConfig) (*OceanBase, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/?%s",
		obCfg.Username, obCfg.Password, obCfg.Host, obCfg.Port, obCfg.ConnectParams)

	obDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("error on open oceanbase database connection: %v", err)
	}

	obDB.SetMaxIdleConns(common.DBMaxIdleConn)
	obDB.SetMaxOpenConns(common.DBMaxConn)
	obDB.SetConnMaxLifetime(common.DBConnMaxLifeTime)
	obDB.SetConnMaxIdleTime(common.DBConnMaxIdleTime)

	if err = obDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("error on ping oceanbase database connection: %v", err)
	}

	return &OceanBase{
		Ctx:  ctx,
		OBDB: obDB,
	}, nil
}

func Query(ctx context.Context, db *sql.DB, querySQL string) ([]string, []map[string]string, error) {
	var (
		cols []string
		res  []map[string]string
	)
	rows, err := db.QueryContext(ctx, querySQL)
	if err != nil {
		return cols, res, fmt.Errorf("general sql [%v] query failed: [%v]", querySQL, err.Error())
	}
	defer rows.Close()

	cols, err = rows.Columns()
	if err != nil {
		return cols, res, fmt.Errorf("general sql [%v] query rows.Columns failed: [%v]", querySQL, err.Error())
	}

	values := make([][]byte, len(cols))
	scans := make([]interface{}, len(cols))
	for i := range values {
		scans[i] = &values[i]
	}

	for rows.Next() {
		err = rows.Scan(scans...)
		if err != nil {
			return cols, res, fmt.Errorf("general sql [%v] query rows.Scan failed: [%v]", querySQL, err.Error())
		}

		row := make(map[string]string)
		for k, v := range values {
			if v == nil {
				row[cols[k]] = ""
			} else {
				row[cols[k]] = string(v)
			}
		}
		res = append(res, row)
	}

	if err = rows.Err(); err != nil {
		return cols, res, fmt.Errorf("general sql [%v] query rows.Next failed: [%v]", querySQL, err.Error())
	}
	return cols, res, nil
}

func (ob *OceanBase) Close() error {
	return ob.OBDB.Close()
}

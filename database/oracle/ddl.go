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
package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
)

// DBMS_METADATA 对象类型名映射
// DBA_OBJECTS 展示名与 GET_DDL 入参不一致的类型需要转换
var metadataTypeMap = map[common.ObjectType]string{
	common.ObjectTypeMView:       "MATERIALIZED_VIEW",
	common.ObjectTypePackageBody: "PACKAGE_BODY",
	common.ObjectTypeTypeBody:    "TYPE_BODY",
	common.ObjectTypeDBLink:      "DB_LINK",
}

// metadataTypeName DBA_OBJECTS 展示名转 GET_DDL 入参类型名
func metadataTypeName(t common.ObjectType) string {
	if s, ok := metadataTypeMap[t]; ok {
		return s
	}
	return strings.ReplaceAll(string(t), " ", "_")
}

// constraintDDLType 外键约束 GET_DDL 类型为 REF_CONSTRAINT，其余约束为 CONSTRAINT
func constraintDDLType(constraintType string) string {
	if strings.EqualFold(constraintType, "R") {
		return "REF_CONSTRAINT"
	}
	return "CONSTRAINT"
}

// GetObjectDDL DBMS_METADATA.GET_DDL 取对象原始 CREATE DDL
// 取不到（权限、对象消失）返回错误，调用方按单对象跳过处理
func (o *Oracle) GetObjectDDL(ctx context.Context, obj model.ObjectIdentity) (string, error) {
	metaType := metadataTypeName(obj.Type)
	if obj.Type == common.ObjectTypeConstraint {
		metaType = o.constraintMetadataType(ctx, obj)
	}

	querySQL := fmt.Sprintf(`SELECT DBMS_METADATA.GET_DDL('%s', '%s', '%s') AS DDL FROM DUAL`,
		metaType, obj.Name, obj.Schema)

	_, res, err := Query(ctx, o.OracleDB, querySQL)
	if err != nil {
		return "", fmt.Errorf("get object [%s] ddl failed: %v", obj.String(), err)
	}
	if len(res) == 0 || common.IsEmptyString(res[0]["DDL"]) {
		return "", fmt.Errorf("object [%s] ddl isn't available", obj.String())
	}
	return strings.TrimSpace(res[0]["DDL"]), nil
}

// constraintMetadataType 按 DBA_CONSTRAINTS 类型区分 GET_DDL 入参
// 查不到时按普通约束处理，错误留给 GET_DDL 本身暴露
func (o *Oracle) constraintMetadataType(ctx context.Context, obj model.ObjectIdentity) string {
	querySQL := fmt.Sprintf(`SELECT CONSTRAINT_TYPE FROM DBA_CONSTRAINTS WHERE OWNER = '%s' AND CONSTRAINT_NAME = '%s'`,
		obj.Schema, obj.Name)

	_, res, err := Query(ctx, o.OracleDB, querySQL)
	if err != nil || len(res) == 0 {
		return "CONSTRAINT"
	}
	return constraintDDLType(res[0]["CONSTRAINT_TYPE"])
}

// SetMetadataTransform GET_DDL 输出整形，去存储子句与 schema 限定保持脚本可读
func (o *Oracle) SetMetadataTransform(ctx context.Context) error {
	for _, stmt := range []string{
		`BEGIN DBMS_METADATA.SET_TRANSFORM_PARAM(DBMS_METADATA.SESSION_TRANSFORM, 'SQLTERMINATOR', TRUE); END;`,
		`BEGIN DBMS_METADATA.SET_TRANSFORM_PARAM(DBMS_METADATA.SESSION_TRANSFORM, 'SEGMENT_ATTRIBUTES', FALSE); END;`,
		`BEGIN DBMS_METADATA.SET_TRANSFORM_PARAM(DBMS_METADATA.SESSION_TRANSFORM, 'STORAGE', FALSE); END;`,
		`BEGIN DBMS_METADATA.SET_TRANSFORM_PARAM(DBMS_METADATA.SESSION_TRANSFORM, 'TABLESPACE', FALSE); END;`,
	} {
		if _, err := o.OracleDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("set dbms_metadata transform param failed: %v", err)
		}
	}
	return nil
}

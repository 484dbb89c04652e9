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
package common

import "time"

// 任务模式
const (
	TaskModeRemap   = "REMAP"
	TaskModeCompare = "COMPARE"
	TaskModeFixup   = "FIXUP"
	TaskModeAll     = "ALL"
)

// 任务类型
const (
	TaskTypeConfig        = "CONFIG"
	TaskTypeDatabase      = "DATABASE"
	TaskTypeMetadata      = "METADATA"
	TaskTypeObjectRemap   = "OBJECT_REMAP"
	TaskTypeObjectCompare = "OBJECT_COMPARE"
	TaskTypeDependGraph   = "DEPEND_GRAPH"
	TaskTypeObjectFixup   = "OBJECT_FIXUP"
)

// 任务状态
const (
	TaskStatusWaiting = "WAITING"
	TaskStatusRunning = "RUNNING"
	TaskStatusSuccess = "SUCCESS"
	TaskStatusFailed  = "FAILED"
)

// 对象类型
type ObjectType string

const (
	ObjectTypeTable        ObjectType = "TABLE"
	ObjectTypeView         ObjectType = "VIEW"
	ObjectTypeMView        ObjectType = "MATERIALIZED VIEW"
	ObjectTypeIndex        ObjectType = "INDEX"
	ObjectTypeConstraint   ObjectType = "CONSTRAINT"
	ObjectTypeSequence     ObjectType = "SEQUENCE"
	ObjectTypeTrigger      ObjectType = "TRIGGER"
	ObjectTypeProcedure    ObjectType = "PROCEDURE"
	ObjectTypeFunction     ObjectType = "FUNCTION"
	ObjectTypePackage      ObjectType = "PACKAGE"
	ObjectTypePackageBody  ObjectType = "PACKAGE BODY"
	ObjectTypeType         ObjectType = "TYPE"
	ObjectTypeTypeBody     ObjectType = "TYPE BODY"
	ObjectTypeSynonym      ObjectType = "SYNONYM"
	ObjectTypeDBLink       ObjectType = "DATABASE LINK"
	ObjectTypeJob          ObjectType = "JOB"
	ObjectTypeSchedulerJob ObjectType = "SCHEDULER JOB"
)

// 全部可参与对象类型，按固定顺序排列，保证输出稳定
var AllObjectTypes = []ObjectType{
	ObjectTypeSequence,
	ObjectTypeTable,
	ObjectTypeIndex,
	ObjectTypeConstraint,
	ObjectTypeView,
	ObjectTypeMView,
	ObjectTypeSynonym,
	ObjectTypeProcedure,
	ObjectTypeFunction,
	ObjectTypePackage,
	ObjectTypePackageBody,
	ObjectTypeType,
	ObjectTypeTypeBody,
	ObjectTypeTrigger,
	ObjectTypeDBLink,
	ObjectTypeJob,
	ObjectTypeSchedulerJob,
}

// 不参与推断迁移的对象类型，除非显式规则命中，否则保留源端 schema
var NoInferObjectTypes = []ObjectType{
	ObjectTypeView,
	ObjectTypeMView,
	ObjectTypeTrigger,
	ObjectTypePackage,
	ObjectTypePackageBody,
}

// 跟随属主表迁移的对象类型
var ParentFollowObjectTypes = []ObjectType{
	ObjectTypeIndex,
	ObjectTypeConstraint,
}

// 依赖推断迁移的对象类型
var InferObjectTypes = []ObjectType{
	ObjectTypeProcedure,
	ObjectTypeFunction,
	ObjectTypeType,
	ObjectTypeTypeBody,
	ObjectTypeSynonym,
	ObjectTypeSequence,
}

// 仅比对存在性的对象类型
var ExistenceOnlyObjectTypes = []ObjectType{
	ObjectTypeView,
	ObjectTypeSynonym,
	ObjectTypeProcedure,
	ObjectTypeFunction,
	ObjectTypeType,
	ObjectTypeTypeBody,
	ObjectTypeJob,
	ObjectTypeSchedulerJob,
}

// 仅打印不生成修复脚本的对象类型
var PrintOnlyObjectTypes = []ObjectType{
	ObjectTypeMView,
	ObjectTypePackage,
	ObjectTypePackageBody,
}

// 比对结果状态
const (
	CompareStateOK          = "OK"
	CompareStateMissing     = "MISSING"
	CompareStateMismatched  = "MISMATCHED"
	CompareStateExtra       = "EXTRA"
	CompareStateUnsupported = "UNSUPPORTED"
	CompareStateBlocked     = "BLOCKED"
)

// 比对原因编码
const (
	ReasonObjectMissing     = "OBJECT_MISSING"
	ReasonObjectExtra       = "OBJECT_EXTRA"
	ReasonColumnMissing     = "COLUMN_MISSING"
	ReasonColumnExtra       = "COLUMN_EXTRA"
	ReasonColumnLength      = "COLUMN_LENGTH_MISMATCH"
	ReasonColumnOversize    = "COLUMN_LENGTH_OVERSIZE"
	ReasonColumnType        = "COLUMN_TYPE_MISMATCH"
	ReasonIndexMissing      = "INDEX_MISSING"
	ReasonIndexExtra        = "INDEX_EXTRA"
	ReasonConsMissing       = "CONSTRAINT_MISSING"
	ReasonConsRule          = "CONSTRAINT_RULE_MISMATCH"
	ReasonConsRefRemap      = "CONSTRAINT_REF_REMAP_MISMATCH"
	ReasonFKSelfRef         = "FK_SELF_REF"
	ReasonFKDeferrable      = "FK_DEFERRABLE"
	ReasonConsDeferrable    = "CONSTRAINT_DEFERRABLE"
	ReasonSeqAttr           = "SEQUENCE_ATTR_MISMATCH"
	ReasonTriggerStatus     = "TRIGGER_STATUS_MISMATCH"
	ReasonDependUnsupported = "DEPEND_UNSUPPORTED"
	ReasonDependMissing     = "DEPEND_MISSING"
	ReasonDDLUnavailable    = "DDL_UNAVAILABLE"
	ReasonDDLTimeout        = "DDL_TIMEOUT"
)

// Remap 冲突原因
const (
	ConflictReasonInferTied       = "INFER_SCHEMA_TIED"
	ConflictReasonSchemaAmbiguous = "SCHEMA_MAPPING_AMBIGUOUS"
	ConflictReasonDuplicateTarget = "DUPLICATE_TARGET"
	ConflictReasonNoCandidate     = "NO_CANDIDATE_SCHEMA"
)

// PUBLIC 属主对象不参与 schema 迁移
const PublicSchemaName = "PUBLIC"

// VARCHAR2 BYTE 语义目标长度区间，下限 ceil(1.5x)，上限 ceil(2.5x)
// Oracle 单字符最多 3 字节（AL32UTF8 下 BMP），OceanBase 侧统一预留
const (
	ByteLengthLowerRatio = 1.5
	ByteLengthUpperRatio = 2.5
)

// Oracle 隐藏字段命名，规范化为占位符后参与指纹比对
const HiddenColumnPlaceholder = "SYS_NC$"

// OceanBase 内部维护索引前缀，直接排除不参与比对
var OceanBaseHousekeepingIndexPrefixes = []string{"__IDX_", "__OB_", "OBNOTNULL_"}

// 物化视图日志表前缀，ignore-mview-log 开启时不参与比对
var MviewLogTablePrefixes = []string{"MLOG$_", "RUPD$_"}

// OceanBase 平台注入字段，不参与字段集合比对
var OceanBaseInjectedColumns = []string{"__PK_INCREMENT", "OB_HIDDEN_SESSION_ID"}

// 全局临时表仿真的前导判别字段，指纹比对前剥离
const TempTableDiscriminatorColumn = "__SESSION_ID"

// Oracle/OceanBase 连接配置
const (
	DBMaxIdleConn     = 512
	DBMaxConn         = 1024
	DBConnMaxLifeTime = 300 * time.Second
	DBConnMaxIdleTime = 200 * time.Second
)

// 任务并发通道 CHANNEL Size
const ChannelBufferSize = 1024

// 修复脚本落盘字符集
const (
	CharsetUTF8MB4 = "UTF8MB4"
	CharsetGBK     = "GBK"
	CharsetGB18030 = "GB18030"
	CharsetBIG5    = "BIG5"
)

// LONG/LONG RAW 与 CLOB/BLOB 视作等价类型
var LongTypeEquivalentMap = map[string]string{
	"LONG":     "CLOB",
	"LONG RAW": "BLOB",
}

// 修复脚本输出分组，按创建安全顺序排列
var FixupGroupOrder = []ObjectType{
	ObjectTypeSequence,
	ObjectTypeTable,
	ObjectTypeView,
	ObjectTypeSynonym,
	ObjectTypeProcedure,
	ObjectTypeFunction,
	ObjectTypeType,
	ObjectTypeTypeBody,
	ObjectTypeConstraint,
	ObjectTypeIndex,
	ObjectTypeTrigger,
}

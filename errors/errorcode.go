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
package errors

import "github.com/Minorli/ob-comparator-sub002/common"

type (
	OCErrorType   string
	OCErrorDomain string
)

// program error type
const (
	OBCOMPARATOR OCErrorType = "OBCOMPARATOR"
)

// program error domain
const (
	DOMAIN_CONFIG   OCErrorDomain = common.TaskTypeConfig
	DOMAIN_DB       OCErrorDomain = common.TaskTypeDatabase
	DOMAIN_METADATA OCErrorDomain = common.TaskTypeMetadata
	DOMAIN_REMAP    OCErrorDomain = common.TaskTypeObjectRemap
	DOMAIN_COMPARE  OCErrorDomain = common.TaskTypeObjectCompare
	DOMAIN_GRAPH    OCErrorDomain = common.TaskTypeDependGraph
	DOMAIN_FIXUP    OCErrorDomain = common.TaskTypeObjectFixup
)

func (t OCErrorType) Explain() string {
	return explainOCErrorType[t]
}

func (d OCErrorDomain) Explain() string {
	return explainOCErrorDomain[d]
}

var explainOCErrorType = map[OCErrorType]string{
	OBCOMPARATOR: "OBCOMPARATOR",
}

var explainOCErrorDomain = map[OCErrorDomain]string{
	DOMAIN_CONFIG:   common.TaskTypeConfig,
	DOMAIN_DB:       common.TaskTypeDatabase,
	DOMAIN_METADATA: common.TaskTypeMetadata,
	DOMAIN_REMAP:    common.TaskTypeObjectRemap,
	DOMAIN_COMPARE:  common.TaskTypeObjectCompare,
	DOMAIN_GRAPH:    common.TaskTypeDependGraph,
	DOMAIN_FIXUP:    common.TaskTypeObjectFixup,
}

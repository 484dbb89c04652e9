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
package remap

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Minorli/ob-comparator-sub002/common"
	"github.com/Minorli/ob-comparator-sub002/model"
	"go.uber.org/zap"
)

// 显式迁移规则
// 规则文件行格式 SRC_SCHEMA.OBJECT = TGT_SCHEMA.OBJECT
// 对象名带 BODY 后缀表示 PACKAGE BODY/TYPE BODY 专属规则
type Rule struct {
	SourceSchema string
	SourceName   string
	TargetSchema string
	TargetName   string
	IsBody       bool
	LineNo       int
	Raw          string
}

func (r Rule) SourceKey() string {
	if r.IsBody {
		return common.StringsBuilder(r.SourceSchema, ".", r.SourceName, "#BODY")
	}
	return common.StringsBuilder(r.SourceSchema, ".", r.SourceName)
}

// ParseRuleFile 解析规则文件，# 注释与空行忽略
func ParseRuleFile(ruleFile string) ([]Rule, error) {
	f, err := os.Open(ruleFile)
	if err != nil {
		return nil, fmt.Errorf("open remap rule file [%s] failed: %v", ruleFile, err)
	}
	defer f.Close()

	var rules []Rule
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule, err := parseRuleLine(line, lineNo)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan remap rule file [%s] failed: %v", ruleFile, err)
	}
	return rules, nil
}

func parseRuleLine(line string, lineNo int) (Rule, error) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return Rule{}, fmt.Errorf("remap rule line %d [%s] format error, expect SRC_SCHEMA.OBJECT = TGT_SCHEMA.OBJECT", lineNo, line)
	}

	srcSchema, srcName, srcBody, err := parseRuleObject(strings.TrimSpace(parts[0]))
	if err != nil {
		return Rule{}, fmt.Errorf("remap rule line %d [%s] source error: %v", lineNo, line, err)
	}
	tgtSchema, tgtName, tgtBody, err := parseRuleObject(strings.TrimSpace(parts[1]))
	if err != nil {
		return Rule{}, fmt.Errorf("remap rule line %d [%s] target error: %v", lineNo, line, err)
	}
	if srcBody != tgtBody {
		return Rule{}, fmt.Errorf("remap rule line %d [%s] BODY suffix need both sides", lineNo, line)
	}

	return Rule{
		SourceSchema: srcSchema,
		SourceName:   srcName,
		TargetSchema: tgtSchema,
		TargetName:   tgtName,
		IsBody:       srcBody,
		LineNo:       lineNo,
		Raw:          line,
	}, nil
}

func parseRuleObject(s string) (schema, name string, isBody bool, err error) {
	if strings.HasSuffix(strings.ToUpper(s), " BODY") {
		isBody = true
		s = strings.TrimSpace(s[:len(s)-len(" BODY")])
	}
	fields := strings.Split(s, ".")
	if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
		return "", "", false, fmt.Errorf("object identity [%s] format error, expect SCHEMA.OBJECT", s)
	}
	return strings.ToUpper(fields[0]), strings.ToUpper(fields[1]), isBody, nil
}

// RuleSet 规则集合，构建时校验源端对象存在性
// 无效规则记录 extraneous，永不生效
type RuleSet struct {
	rules      map[string]Rule
	Extraneous []Rule
}

func NewRuleSet(rules []Rule, source *model.SideMeta) *RuleSet {
	rs := &RuleSet{
		rules: make(map[string]Rule),
	}
	for _, r := range rules {
		if !ruleSourceExist(r, source) {
			zap.L().Warn("remap rule extraneous, source object isn't exist",
				zap.Int("line", r.LineNo),
				zap.String("rule", r.Raw))
			rs.Extraneous = append(rs.Extraneous, r)
			continue
		}
		rs.rules[r.SourceKey()] = r
	}
	return rs
}

// 源端是否存在任意类型同名对象，BODY 规则只校验 PACKAGE BODY/TYPE BODY
func ruleSourceExist(r Rule, source *model.SideMeta) bool {
	if r.IsBody {
		return source.ExistObject(r.SourceSchema, r.SourceName, common.ObjectTypePackageBody) ||
			source.ExistObject(r.SourceSchema, r.SourceName, common.ObjectTypeTypeBody)
	}
	for _, t := range common.AllObjectTypes {
		if source.ExistObject(r.SourceSchema, r.SourceName, t) {
			return true
		}
	}
	return false
}

// Lookup 查找对象命中的显式规则
// PACKAGE BODY/TYPE BODY 优先匹配 BODY 规则，未命中回落普通规则
func (rs *RuleSet) Lookup(obj model.ObjectIdentity) (Rule, bool) {
	if obj.Type == common.ObjectTypePackageBody || obj.Type == common.ObjectTypeTypeBody {
		if r, ok := rs.rules[common.StringsBuilder(obj.Key(), "#BODY")]; ok {
			return r, true
		}
	}
	r, ok := rs.rules[obj.Key()]
	return r, ok
}

// TableRules 过滤出源端为 TABLE 的规则，SchemaMapping 只认表规则
func (rs *RuleSet) TableRules(source *model.SideMeta) []Rule {
	var tableRules []Rule
	for _, r := range rs.rules {
		if !r.IsBody && source.ExistObject(r.SourceSchema, r.SourceName, common.ObjectTypeTable) {
			tableRules = append(tableRules, r)
		}
	}
	return tableRules
}

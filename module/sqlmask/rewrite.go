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
package sqlmask

import (
	"regexp"
	"sort"
	"strings"
)

// 标识符替换对，Old/New 均为 SCHEMA.OBJECT 或单标识符形式
type Replacement struct {
	Old string
	New string
}

// 标识符字符集，词边界判定使用
func isIdentChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' ||
		c == '_' || c == '$' || c == '#'
}

// Rewrite 在 CODE 区间内做词边界安全的标识符替换
// 大小写不敏感，长 Old 优先避免前缀串吞
// 限定名各段允许双引号包裹（DBMS_METADATA 输出形态），点号两侧允许空白，替换统一输出裸限定名
// 扫描失败（未闭合字符串/注释）返回原文与错误，调用方记告警后保留原 DDL
func Rewrite(sql string, repls []Replacement) (string, error) {
	if len(repls) == 0 {
		return sql, nil
	}
	spans, err := Mask(sql)
	if err != nil {
		return sql, err
	}

	compiled := compileReplacements(repls)

	var b strings.Builder
	b.Grow(len(sql))
	for _, span := range spans {
		segment := sql[span.Start:span.End]
		if span.Kind != SpanCode {
			b.WriteString(segment)
			continue
		}
		b.WriteString(replaceInCode(segment, compiled))
	}
	return b.String(), nil
}

// 替换模式，限定名按点拆段预编译
type compiledRepl struct {
	parts []string // 各段大写形态
	text  string
	size  int // 原始 Old 长度，排序用
}

func compileReplacements(repls []Replacement) []compiledRepl {
	compiled := make([]compiledRepl, 0, len(repls))
	for _, r := range repls {
		var parts []string
		for _, p := range strings.Split(r.Old, ".") {
			parts = append(parts, strings.ToUpper(strings.TrimSpace(p)))
		}
		compiled = append(compiled, compiledRepl{parts: parts, text: r.New, size: len(r.Old)})
	}
	sort.Slice(compiled, func(i, j int) bool {
		return compiled[i].size > compiled[j].size
	})
	return compiled
}

func replaceInCode(code string, repls []compiledRepl) string {
	upper := strings.ToUpper(code)
	var b strings.Builder
	b.Grow(len(code))

	i := 0
	for i < len(code) {
		matched := false
		for _, r := range repls {
			end, ok := matchQualified(code, upper, i, r.parts)
			if !ok {
				continue
			}
			b.WriteString(r.text)
			i = end
			matched = true
			break
		}
		if !matched {
			b.WriteByte(code[i])
			i++
		}
	}
	return b.String()
}

// 限定名匹配，各段裸写或 "引号" 包裹均可混用
// 返回匹配终点，词边界不满足或任一段未命中返回 false
func matchQualified(code, upper string, start int, parts []string) (int, bool) {
	if start > 0 && (isIdentChar(code[start-1]) || code[start-1] == '"') {
		return 0, false
	}

	pos := start
	for k, part := range parts {
		if k > 0 {
			pos = skipSpaces(code, pos)
			if pos >= len(code) || code[pos] != '.' {
				return 0, false
			}
			pos = skipSpaces(code, pos+1)
		}
		quoted := false
		if pos < len(code) && code[pos] == '"' {
			quoted = true
			pos++
		}
		if !strings.HasPrefix(upper[pos:], part) {
			return 0, false
		}
		pos += len(part)
		if quoted {
			if pos >= len(code) || code[pos] != '"' {
				return 0, false
			}
			pos++
		} else if pos < len(code) && isIdentChar(code[pos]) {
			return 0, false
		}
	}
	return pos, true
}

func skipSpaces(code string, pos int) int {
	for pos < len(code) && (code[pos] == ' ' || code[pos] == '\t' || code[pos] == '\r' || code[pos] == '\n') {
		pos++
	}
	return pos
}

// RewriteEndName PL/SQL 末尾 END <name> 标签改写
// CREATE OR REPLACE 重命名对象后 END 标签需同步，否则编译报错
func RewriteEndName(sql, oldName, newName string) (string, error) {
	if strings.EqualFold(oldName, newName) {
		return sql, nil
	}
	spans, err := Mask(sql)
	if err != nil {
		return sql, err
	}

	re := regexp.MustCompile(`(?i)(\bEND\s+)` + regexp.QuoteMeta(strings.ToUpper(oldName)) + `\b`)
	var b strings.Builder
	b.Grow(len(sql))
	for _, span := range spans {
		segment := sql[span.Start:span.End]
		if span.Kind != SpanCode {
			b.WriteString(segment)
			continue
		}
		b.WriteString(re.ReplaceAllString(segment, "${1}"+newName))
	}
	return b.String(), nil
}

// RewriteTriggerOnClause 触发器 ON <schema>.<table> 子句改写
// 触发器体内其余引用由 Rewrite 统一处理，此处只负责挂载表子句
func RewriteTriggerOnClause(sql, oldSchema, oldTable, newSchema, newTable string) (string, error) {
	spans, err := Mask(sql)
	if err != nil {
		return sql, err
	}

	re := regexp.MustCompile(`(?i)(\bON\s+)"?` +
		regexp.QuoteMeta(strings.ToUpper(oldSchema)) + `"?\s*\.\s*"?` +
		regexp.QuoteMeta(strings.ToUpper(oldTable)) + `"?\b`)
	var b strings.Builder
	b.Grow(len(sql))
	for _, span := range spans {
		segment := sql[span.Start:span.End]
		if span.Kind != SpanCode {
			b.WriteString(segment)
			continue
		}
		b.WriteString(re.ReplaceAllString(segment, "${1}"+newSchema+"."+newTable))
	}
	return b.String(), nil
}

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
	"fmt"
)

// Span 类别
// 改写只发生在 CODE 区间，STRING/COMMENT 原样保留
type SpanKind int

const (
	SpanCode SpanKind = iota
	SpanString
	SpanComment
)

func (k SpanKind) String() string {
	switch k {
	case SpanCode:
		return "CODE"
	case SpanString:
		return "STRING"
	case SpanComment:
		return "COMMENT"
	}
	return "UNKNOWN"
}

// SQL 文本区间，[Start, End) 字节偏移
type Span struct {
	Kind  SpanKind
	Start int
	End   int
}

// Mask 扫描 SQL/PLSQL 文本划分区间
// 字符串字面量单引号包裹，单引号翻倍为转义；注释支持 -- 行注释与 /* */ 块注释
// 字符串或块注释未闭合时返回错误，调用方保留原文不做任何改写
func Mask(sql string) ([]Span, error) {
	var spans []Span
	codeStart := 0

	flushCode := func(end int) {
		if end > codeStart {
			spans = append(spans, Span{Kind: SpanCode, Start: codeStart, End: end})
		}
	}

	i := 0
	n := len(sql)
	for i < n {
		switch {
		case sql[i] == '\'':
			start := i
			i++
			closed := false
			for i < n {
				if sql[i] == '\'' {
					// '' 转义继续扫描
					if i+1 < n && sql[i+1] == '\'' {
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				i++
			}
			if !closed {
				return nil, fmt.Errorf("string literal isn't terminated, offset %d", start)
			}
			flushCode(start)
			spans = append(spans, Span{Kind: SpanString, Start: start, End: i})
			codeStart = i

		case sql[i] == '-' && i+1 < n && sql[i+1] == '-':
			start := i
			i += 2
			for i < n && sql[i] != '\n' {
				i++
			}
			// 行注释含换行符前的全部内容，换行本身归 CODE
			flushCode(start)
			spans = append(spans, Span{Kind: SpanComment, Start: start, End: i})
			codeStart = i

		case sql[i] == '/' && i+1 < n && sql[i+1] == '*':
			start := i
			i += 2
			closed := false
			for i+1 < n {
				if sql[i] == '*' && sql[i+1] == '/' {
					i += 2
					closed = true
					break
				}
				i++
			}
			if !closed {
				return nil, fmt.Errorf("block comment isn't terminated, offset %d", start)
			}
			flushCode(start)
			spans = append(spans, Span{Kind: SpanComment, Start: start, End: i})
			codeStart = i

		default:
			i++
		}
	}
	flushCode(n)
	return spans, nil
}

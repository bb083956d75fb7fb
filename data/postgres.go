// Copyright 2024 TeamUp Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package data

import "strings"

// ParseTextArray parses a PostgreSQL text array such as `{a,b,"c d"}` into
// its elements. A value without braces is treated as a single element.
// Empty input and `{}` yield no elements.
func ParseTextArray(s string) []string {
	value := strings.TrimSpace(s)
	if value == "" || value == "{}" {
		return nil
	}
	if !strings.HasPrefix(value, "{") || !strings.HasSuffix(value, "}") {
		// a bare value, possibly quoted
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		value = strings.TrimSpace(strings.ReplaceAll(value, `\"`, `"`))
		if value == "" {
			return nil
		}
		return []string{value}
	}
	body := strings.TrimSpace(value[1 : len(value)-1])
	if body == "" {
		return nil
	}
	var out []string
	pos := 0
	for pos < len(body) {
		// skip separators
		for pos < len(body) && (body[pos] == ',' || body[pos] == ' ' || body[pos] == '\t' || body[pos] == '\n' || body[pos] == '\r') {
			pos++
		}
		if pos >= len(body) {
			break
		}
		var token string
		if body[pos] == '"' {
			// quoted token, backslash escapes allowed
			var builder strings.Builder
			pos++
			for pos < len(body) {
				if body[pos] == '\\' && pos+1 < len(body) {
					builder.WriteByte(body[pos+1])
					pos += 2
					continue
				}
				if body[pos] == '"' {
					pos++
					break
				}
				builder.WriteByte(body[pos])
				pos++
			}
			token = builder.String()
		} else {
			// unquoted token, terminated by comma
			end := strings.IndexByte(body[pos:], ',')
			if end < 0 {
				end = len(body) - pos
			}
			token = body[pos : pos+end]
			pos += end
		}
		token = strings.TrimSpace(token)
		if token != "" {
			out = append(out, token)
		}
	}
	return out
}

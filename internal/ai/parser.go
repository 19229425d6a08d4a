package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// 模型返回经常把 JSON 包在 markdown 代码块里
var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*({.*?})\\s*```")

// decodeLoose 多级容错解码：直接反序列化 → 剥离代码块 → 平衡括号
// 扫描取第一个 JSON 对象。全都失败才返回错误。
func decodeLoose(response string, v any) error {
	if err := json.Unmarshal([]byte(response), v); err == nil {
		return nil
	}

	cleaned := cleanResponse(response)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	if jsonPart, ok := extractFirstJSONObject(cleaned); ok {
		if err := json.Unmarshal([]byte(jsonPart), v); err == nil {
			return nil
		}
	}
	if jsonPart, ok := extractFirstJSONObject(response); ok {
		if err := json.Unmarshal([]byte(jsonPart), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no parseable JSON object in response")
}

func cleanResponse(response string) string {
	matches := fencedJSONRe.FindStringSubmatch(response)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	response = strings.TrimPrefix(strings.TrimSpace(response), "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// extractFirstJSONObject 带字符串感知的平衡括号扫描
func extractFirstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escape := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			continue
		}

		if ch == '{' {
			if depth == 0 {
				start = i
			}
			depth++
			continue
		}

		if ch == '}' {
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start != -1 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// ParseSummary / ParseArchitecture / ParseSecurity 解析三个增强
// 子调用的响应。解析失败返回 nil：缺失的节是正常结果。
func ParseSummary(response string) *SummaryEnhancement {
	var out SummaryEnhancement
	if err := decodeLoose(response, &out); err != nil {
		return nil
	}
	return &out
}

func ParseArchitecture(response string) *ArchitectureEnhancement {
	var out ArchitectureEnhancement
	if err := decodeLoose(response, &out); err != nil {
		return nil
	}
	return &out
}

func ParseSecurity(response string) *SecurityEnhancement {
	var out SecurityEnhancement
	if err := decodeLoose(response, &out); err != nil {
		return nil
	}
	for i := range out.Findings {
		out.Findings[i].Severity = normalizeSeverity(out.Findings[i].Severity)
		out.Findings[i].Exploitability = normalizeExploitability(out.Findings[i].Exploitability)
	}
	return &out
}

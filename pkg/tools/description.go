package tools

import (
	"fmt"
	"sort"
	"strings"
)

// Describe 生成单个工具的文本描述
//
// 参数按名称排序，必填参数标注 (required)。
func Describe(d Declaration) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Tool: %s\n", d.Name()))
	if d.Description() != "" {
		sb.WriteString(d.Description() + "\n")
	}

	props, required := schemaProperties(d.InputSchema().Map())
	if len(props) == 0 {
		sb.WriteString("No parameters required.\n")
		return sb.String()
	}

	sb.WriteString("Parameters:\n")
	for _, name := range sortedKeys(props) {
		prop, _ := props[name].(map[string]any)
		typ, _ := prop["type"].(string)
		if typ == "" {
			typ = "any"
		}
		sb.WriteString(fmt.Sprintf("  - %s (%s)", name, typ))
		if required[name] {
			sb.WriteString(" (required)")
		}
		if desc, _ := prop["description"].(string); desc != "" {
			sb.WriteString(": " + desc)
		}
		if enum, ok := prop["enum"].([]any); ok && len(enum) > 0 {
			vals := make([]string, len(enum))
			for i, v := range enum {
				vals[i] = fmt.Sprint(v)
			}
			sb.WriteString(fmt.Sprintf(" [allowed: %s]", strings.Join(vals, ", ")))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// DescribeTools 生成工具列表的描述
func DescribeTools(decls []Declaration) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Available Tools (%d):\n\n", len(decls)))
	for i, d := range decls {
		sb.WriteString(fmt.Sprintf("%d. ", i+1))
		sb.WriteString(Describe(d))
		sb.WriteString("\n")
	}

	return sb.String()
}

func schemaProperties(doc map[string]any) (map[string]any, map[string]bool) {
	props, _ := doc["properties"].(map[string]any)
	required := make(map[string]bool)
	if list, ok := doc["required"].([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				required[s] = true
			}
		}
	}
	return props, required
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package schema 从 Go 类型生成 JSON Schema，并用它校验运行时的值
//
// 同一份 Schema 同时用于两件事：
//   - 作为 Function Calling 的参数描述交给 LLM；
//   - 校验 LLM 生成的参数和工具的返回值。
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// resourceURL 编译时使用的资源地址，每个 Schema 使用独立的 Compiler
const resourceURL = "https://pickaxe.local/schema.json"

// Schema 已编译的 JSON Schema
type Schema struct {
	doc      map[string]any
	compiled *jsonschema.Schema
}

// For 从类型 T 反射生成 Schema
//
// 结构体字段按 json 标签命名；不带 omitempty 的字段视为必填，
// 不允许额外字段。字段可以用 jsonschema 标签补充描述，例如
// `jsonschema:"description=城市名称"`。标量、切片和 map 生成对应的非对象 Schema。
func For[T any]() (*Schema, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	r := &invopop.Reflector{
		// 只有结构体会写入 definitions，展开其他类型会解引用空指针
		ExpandedStruct: base.Kind() == reflect.Struct,
		DoNotReference: true,
	}
	raw, err := json.Marshal(r.ReflectFromType(t))
	if err != nil {
		return nil, fmt.Errorf("reflect schema for %s: %w", t, err)
	}
	return FromJSON(raw)
}

// MustFor 与 For 相同，失败时 panic
func MustFor[T any]() *Schema {
	s, err := For[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// FromJSON 从 JSON 文本编译 Schema
func FromJSON(raw []byte) (*Schema, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	var doc map[string]any
	switch t := v.(type) {
	case map[string]any:
		doc = t
	case bool:
		// true 表示接受任意值
		if !t {
			return nil, fmt.Errorf("decode schema: false schema accepts nothing")
		}
		doc = map[string]any{}
	default:
		return nil, fmt.Errorf("decode schema: unexpected %T", v)
	}
	delete(doc, "$id")
	delete(doc, "$schema")

	cleaned, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(resourceURL, inst); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Schema{doc: doc, compiled: compiled}, nil
}

// Map 返回 Schema 的 map 表示（副本），用于 LLM 的参数描述
func (s *Schema) Map() map[string]any {
	return deepCopy(s.doc).(map[string]any)
}

// JSON 返回 Schema 的 JSON 文本
func (s *Schema) JSON() json.RawMessage {
	raw, _ := json.Marshal(s.doc)
	return raw
}

// IsObject 检查 Schema 是否描述一个对象
func (s *Schema) IsObject() bool {
	t, _ := s.doc["type"].(string)
	return t == "object"
}

// Validate 校验 JSON 文本
func (s *Schema) Validate(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("null")
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	return s.compiled.Validate(inst)
}

// ValidateValue 把 v 编码为 JSON 后校验，返回编码结果
func (s *Schema) ValidateValue(v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	if err := s.Validate(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = deepCopy(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = deepCopy(val)
		}
		return s
	default:
		return v
	}
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hatchet-dev/pickaxe/pkg/core/message"
)

// MockProvider 按脚本返回响应的 Provider，用于测试
//
// 每次 Generate 依次消费一个脚本步骤；脚本耗尽后返回不含工具调用的 "stop" 响应。
// 设置 GenerateFn 时忽略脚本。
type MockProvider struct {
	// GenerateFn 自定义生成函数（可选）
	GenerateFn func(ctx context.Context, req Request) (Response, error)

	mu     sync.Mutex
	script []mockStep
	calls  []Request
}

type mockStep struct {
	resp Response
	err  error
}

// NewMockProvider 创建脚本化 MockProvider
func NewMockProvider(responses ...Response) *MockProvider {
	m := &MockProvider{}
	for _, r := range responses {
		m.script = append(m.script, mockStep{resp: r})
	}
	return m
}

// Then 追加一个脚本响应
func (m *MockProvider) Then(resp Response) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{resp: resp})
	return m
}

// ThenError 追加一个脚本错误
func (m *MockProvider) ThenError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{err: err})
	return m
}

// Generate 返回下一个脚本响应
func (m *MockProvider) Generate(ctx context.Context, req Request) (Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	fn := m.GenerateFn
	var step *mockStep
	if fn == nil && len(m.script) > 0 {
		step = &m.script[0]
		m.script = m.script[1:]
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if fn != nil {
		return fn(ctx, req)
	}
	if step == nil {
		return Response{Content: "done", FinishReason: "stop"}, nil
	}
	return step.resp, step.err
}

// Calls 返回已收到的请求副本
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount 返回 Generate 被调用的次数
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Name 返回提供商名称
func (m *MockProvider) Name() string { return "mock" }

// Model 返回模型名称
func (m *MockProvider) Model() string { return "mock-model" }

// Close 关闭（空操作）
func (m *MockProvider) Close() error { return nil }

// ToolCallResponse 构造一个包含工具调用的响应
//
// args 会被编码为 JSON；编码失败时 panic，仅供测试使用。
func ToolCallResponse(calls ...MockCall) Response {
	resp := Response{FinishReason: "tool_calls"}
	for i, c := range calls {
		raw, err := json.Marshal(c.Args)
		if err != nil {
			panic(fmt.Sprintf("mock tool call %s: %v", c.Name, err))
		}
		id := c.ID
		if id == "" {
			id = fmt.Sprintf("call_%d", i+1)
		}
		resp.ToolCalls = append(resp.ToolCalls, message.ToolCall{ID: id, Name: c.Name, Arguments: raw})
	}
	return resp
}

// MockCall 脚本中的一次工具调用
type MockCall struct {
	ID   string
	Name string
	Args any
}

// compile-time interface check
var _ Provider = (*MockProvider)(nil)

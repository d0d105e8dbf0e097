package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
)

// 测试用的最小 MCP 调用端，经内存或 HTTP 把请求交给 Server

// Transport 把 JSON-RPC 请求发送到服务器并返回响应
type Transport interface {
	// Send 发送请求并返回响应；通知返回空响应
	Send(ctx context.Context, request []byte) ([]byte, error)
	// Close 关闭传输连接
	Close() error
}

// HTTPTransport HTTP 传输
//
// 通过 HTTP POST 请求与远程 MCP 服务器通信。
type HTTPTransport struct {
	url     string
	client  *http.Client
	headers map[string]string
}

// HTTPTransportConfig HTTP 传输配置
type HTTPTransportConfig struct {
	// URL 服务器 URL
	URL string
	// Headers 自定义请求头
	Headers map[string]string
	// Client 自定义 HTTP 客户端（可选）
	Client *http.Client
}

// NewHTTPTransport 创建 HTTP 传输
func NewHTTPTransport(config HTTPTransportConfig) *HTTPTransport {
	client := config.Client
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPTransport{
		url:     config.URL,
		client:  client,
		headers: config.Headers,
	}
}

// Send 发送 HTTP 请求
func (t *HTTPTransport) Send(ctx context.Context, request []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(request))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	response, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return bytes.TrimSpace(response), nil
}

// Close 关闭 HTTP 传输（无操作）
func (t *HTTPTransport) Close() error {
	return nil
}

// MemoryTransport 进程内传输，直接调用 Server.Handle
type MemoryTransport struct {
	server *Server
}

// NewMemoryTransport 创建内存传输
func NewMemoryTransport(server *Server) *MemoryTransport {
	return &MemoryTransport{server: server}
}

// Send 直接交给服务器处理
func (t *MemoryTransport) Send(ctx context.Context, request []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp := t.server.Handle(ctx, request)
	if resp == nil {
		return nil, nil
	}
	return json.Marshal(resp)
}

// Close 关闭内存传输（无操作）
func (t *MemoryTransport) Close() error {
	return nil
}

// Caller 基于 Transport 的最小调用端
type Caller struct {
	transport Transport
	nextID    atomic.Int64
}

// NewCaller 创建调用端
func NewCaller(t Transport) *Caller {
	return &Caller{transport: t}
}

// Call 发送请求并把结果解码到 result（可为 nil）
func (c *Caller) Call(ctx context.Context, method string, params, result interface{}) error {
	req, err := NewRequest(c.nextID.Add(1), method, params)
	if err != nil {
		return err
	}
	raw, err := c.transport.Send(ctx, req)
	if err != nil {
		return err
	}
	resp, err := ParseResponse(raw)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(resp.Result, result)
}

// CallTool 调用工具
func (c *Caller) CallTool(ctx context.Context, name string, args interface{}) (CallToolResult, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return CallToolResult{}, err
	}
	var out CallToolResult
	err = c.Call(ctx, MethodCallTool, CallToolParams{Name: name, Arguments: raw}, &out)
	return out, err
}

// ListTools 列出服务器工具
func (c *Caller) ListTools(ctx context.Context) ([]Tool, error) {
	var out ListToolsResult
	if err := c.Call(ctx, MethodListTools, nil, &out); err != nil {
		return nil, err
	}
	return out.Tools, nil
}

// Close 关闭底层传输
func (c *Caller) Close() error {
	return c.transport.Close()
}

// NewRequest 创建 JSON-RPC 请求
func NewRequest(id interface{}, method string, params interface{}) ([]byte, error) {
	var paramsRaw json.RawMessage
	if params != nil {
		var err error
		paramsRaw, err = json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
	}

	req := JSONRPCRequest{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Method:  method,
		Params:  paramsRaw,
	}

	return json.Marshal(req)
}

// ParseResponse 解析 JSON-RPC 响应
func ParseResponse(data []byte) (*JSONRPCResponse, error) {
	var resp JSONRPCResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &resp, nil
}

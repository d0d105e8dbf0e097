package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/hatchet-dev/pickaxe/pkg/otel"
)

// maxMessageSize 单条 JSON-RPC 消息的最大字节数
const maxMessageSize = 10 * 1024 * 1024

// ToolHandler 工具处理函数类型，输入输出均为 JSON
type ToolHandler func(ctx context.Context, arguments json.RawMessage) (json.RawMessage, error)

// ServerTool 服务器工具定义
type ServerTool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     ToolHandler
}

// Server MCP 服务器
//
// 使用示例:
//
//	server, _ := mcp.FromPickaxe(px)
//	server.Run(ctx, os.Stdin, os.Stdout)
type Server struct {
	name    string
	version string
	logger  otel.Logger

	tools map[string]*ServerTool
	order []string

	mu sync.RWMutex
}

// ServerOption 服务器选项
type ServerOption func(*Server)

// WithVersion 设置服务器版本
func WithVersion(v string) ServerOption {
	return func(s *Server) {
		s.version = v
	}
}

// WithLogger 设置日志器（stdio 模式下应写到 stderr）
func WithLogger(l otel.Logger) ServerOption {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer 创建 MCP 服务器
func NewServer(name string, opts ...ServerOption) *Server {
	s := &Server{
		name:    name,
		version: "1.0.0",
		logger:  otel.NewNoopLogger(),
		tools:   make(map[string]*ServerTool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// uniqueName 返回未被占用的工具名，冲突时依次追加 _2、_3…
func (s *Server) uniqueName(base string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name := base
	for i := 2; ; i++ {
		if _, exists := s.tools[name]; !exists {
			return name
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
}

// AddTool 添加工具，同名工具返回错误
func (s *Server) AddTool(tool ServerTool) error {
	if tool.Name == "" || tool.Handler == nil {
		return fmt.Errorf("mcp tool requires a name and a handler")
	}
	if len(tool.InputSchema) == 0 {
		tool.InputSchema = json.RawMessage(`{"type":"object"}`)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tools[tool.Name]; exists {
		return fmt.Errorf("mcp tool %q already added", tool.Name)
	}
	s.tools[tool.Name] = &tool
	s.order = append(s.order, tool.Name)
	return nil
}

// Tools 按添加顺序返回工具定义
func (s *Server) Tools() []Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Tool, 0, len(s.order))
	for _, name := range s.order {
		t := s.tools[name]
		out = append(out, Tool{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema})
	}
	return out
}

// Run 运行服务器（Stdio 模式）
//
// 从 reader 按行读取请求，将响应写入 writer。
// reader 和 writer 为 nil 时使用 os.Stdin 和 os.Stdout。
func (s *Server) Run(ctx context.Context, reader io.Reader, writer io.Writer) error {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 1024*1024), maxMessageSize)

	s.logger.Info("mcp server started", "name", s.name, "tools", len(s.Tools()))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return nil // EOF
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		response := s.Handle(ctx, line)
		if response == nil {
			continue
		}
		responseBytes, err := json.Marshal(response)
		if err != nil {
			s.logger.Error("failed to encode response", "error", err)
			continue
		}
		if _, err := fmt.Fprintf(writer, "%s\n", responseBytes); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
}

// ServeHTTP 以 HTTP POST 接收单条 JSON-RPC 消息
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response := s.Handle(r.Context(), body)
	if response == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

// Handle 处理单条 JSON-RPC 消息；通知返回 nil
func (s *Server) Handle(ctx context.Context, data []byte) *JSONRPCResponse {
	var req JSONRPCRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return s.errorResponse(nil, CodeParseError, "Parse error", err.Error())
	}
	if req.JSONRPC != JSONRPCVersion {
		return s.errorResponse(req.ID, CodeInvalidRequest, "Invalid request", "jsonrpc must be 2.0")
	}

	// 通知（没有 ID）不返回响应
	if req.ID == nil {
		if req.Method == MethodInitialized {
			s.logger.Debug("mcp client initialized")
		}
		return nil
	}

	return s.handleCall(ctx, &req)
}

func (s *Server) handleCall(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	switch req.Method {
	case MethodInitialize:
		return s.handleInitialize(req)
	case MethodListTools:
		return s.successResponse(req.ID, ListToolsResult{Tools: s.Tools()})
	case MethodCallTool:
		return s.handleCallTool(ctx, req)
	case MethodPing:
		return s.successResponse(req.ID, map[string]interface{}{})
	default:
		return s.errorResponse(req.ID, CodeMethodNotFound, "Method not found", req.Method)
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) *JSONRPCResponse {
	var params InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		}
	}
	s.logger.Info("mcp client connected",
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
	)

	return s.successResponse(req.ID, InitializeResult{
		ProtocolVersion: MCPVersion,
		Capabilities: Capabilities{
			Tools: &ToolsCapability{ListChanged: false},
		},
		ServerInfo: Implementation{
			Name:    s.name,
			Version: s.version,
		},
	})
}

// handleCallTool 工具失败以 isError 结果返回，而不是 JSON-RPC 错误
func (s *Server) handleCallTool(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}

	s.mu.RLock()
	tool, ok := s.tools[params.Name]
	s.mu.RUnlock()
	if !ok {
		return s.errorResponse(req.ID, CodeInvalidParams, "Tool not found", params.Name)
	}

	args := params.Arguments
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage(`{}`)
	}

	result, err := tool.Handler(ctx, args)
	if err != nil {
		s.logger.WithContext(ctx).Warn("mcp tool call failed", "tool", params.Name, "error", err)
		return s.successResponse(req.ID, CallToolResult{
			Content: []Content{{Type: "text", Text: err.Error()}},
			IsError: true,
		})
	}

	return s.successResponse(req.ID, CallToolResult{
		Content: []Content{{Type: "text", Text: string(result)}},
	})
}

func (s *Server) successResponse(id interface{}, result interface{}) *JSONRPCResponse {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return s.errorResponse(id, CodeInternalError, "Internal error", err.Error())
	}
	return &JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  resultBytes,
	}
}

func (s *Server) errorResponse(id interface{}, code int, message, data string) *JSONRPCResponse {
	var dataBytes json.RawMessage
	if data != "" {
		dataBytes, _ = json.Marshal(data)
	}

	return &JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    dataBytes,
		},
	}
}

// Info 返回服务器信息
func (s *Server) Info() map[string]interface{} {
	return map[string]interface{}{
		"name":     s.name,
		"version":  s.version,
		"protocol": "MCP",
		"tools":    len(s.Tools()),
	}
}

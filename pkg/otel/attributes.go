package otel

import "go.opentelemetry.io/otel/attribute"

// 预定义的语义属性键
const (
	// Task 相关属性
	AttrTaskName    = "task.name"
	AttrRunID       = "run.id"
	AttrRunParentID = "run.parent_id"
	AttrRunAttempt  = "run.attempt"
	AttrRunStatus   = "run.status"
	AttrBulkSize    = "run.bulk_size"

	// Toolbox 相关属性
	AttrToolboxKey      = "toolbox.key"
	AttrToolboxMaxTools = "toolbox.max_tools"
	AttrToolboxSelected = "toolbox.selected"

	// LLM 相关属性
	AttrLLMProvider         = "llm.provider"
	AttrLLMModel            = "llm.model"
	AttrLLMPromptTokens     = "llm.prompt_tokens"
	AttrLLMCompletionTokens = "llm.completion_tokens"
	AttrLLMTotalTokens      = "llm.total_tokens"

	// Tool 相关属性
	AttrToolName = "tool.name"

	// Error 相关属性
	AttrErrorType      = "error.type"
	AttrErrorMessage   = "error.message"
	AttrErrorRetryable = "error.retryable"
)

// TaskName 创建任务名称属性
func TaskName(name string) attribute.KeyValue {
	return attribute.String(AttrTaskName, name)
}

// RunID 创建运行 ID 属性
func RunID(id string) attribute.KeyValue {
	return attribute.String(AttrRunID, id)
}

// RunParentID 创建父运行 ID 属性
func RunParentID(id string) attribute.KeyValue {
	return attribute.String(AttrRunParentID, id)
}

// RunAttempt 创建尝试次数属性
func RunAttempt(n int) attribute.KeyValue {
	return attribute.Int(AttrRunAttempt, n)
}

// ToolboxKey 创建工具箱 key 属性
func ToolboxKey(key string) attribute.KeyValue {
	return attribute.String(AttrToolboxKey, key)
}

// ToolboxMaxTools 创建最大工具数属性
func ToolboxMaxTools(n int) attribute.KeyValue {
	return attribute.Int(AttrToolboxMaxTools, n)
}

// ToolboxSelected 创建已选工具列表属性
func ToolboxSelected(names []string) attribute.KeyValue {
	return attribute.StringSlice(AttrToolboxSelected, names)
}

// LLMProvider 创建 LLM 提供商属性
func LLMProvider(provider string) attribute.KeyValue {
	return attribute.String(AttrLLMProvider, provider)
}

// LLMModel 创建 LLM 模型属性
func LLMModel(model string) attribute.KeyValue {
	return attribute.String(AttrLLMModel, model)
}

// LLMTokens 创建 LLM Token 使用属性
func LLMTokens(prompt, completion, total int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrLLMPromptTokens, prompt),
		attribute.Int(AttrLLMCompletionTokens, completion),
		attribute.Int(AttrLLMTotalTokens, total),
	}
}

// ToolName 创建工具名称属性
func ToolName(name string) attribute.KeyValue {
	return attribute.String(AttrToolName, name)
}

// ErrorAttrs 创建错误属性
func ErrorAttrs(errType, message string, retryable bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrErrorType, errType),
		attribute.String(AttrErrorMessage, message),
		attribute.Bool(AttrErrorRetryable, retryable),
	}
}

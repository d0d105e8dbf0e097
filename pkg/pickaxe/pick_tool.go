package pickaxe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
	"github.com/hatchet-dev/pickaxe/pkg/core/llm"
	"github.com/hatchet-dev/pickaxe/pkg/core/message"
	"github.com/hatchet-dev/pickaxe/pkg/workflow"
)

// PickToolTask 工具选择任务的名称
const PickToolTask = "pick-tool"

// PickInput pick-tool 任务输入
type PickInput struct {
	// Prompt 选择依据，是交给模型的唯一指令
	Prompt string `json:"prompt"`
	// ToolboxKey 工具箱 key
	ToolboxKey string `json:"toolboxKey"`
	// MaxTools 最多选择的工具调用数，0 表示使用默认值
	MaxTools int `json:"maxTools,omitempty"`
}

// PickOutput pick-tool 任务输出
type PickOutput struct {
	// Steps 每一步模型发出的工具调用
	Steps [][]ToolCall `json:"steps"`
	// Usage 所有选择步骤的 Token 用量之和
	Usage message.TokenUsage `json:"usage"`
}

// ToolCall 模型选择的一次工具调用
type ToolCall struct {
	ToolName string          `json:"toolName"`
	Args     json.RawMessage `json:"args"`
}

// selectedAck 回填给模型的工具结果占位，选择阶段不执行工具
const selectedAck = `{"status":"selected"}`

func (p *Pickaxe) pickToolTask() workflow.Task {
	return workflow.Task{
		Name:    PickToolTask,
		Timeout: p.cfg.PickTimeout,
		Handler: p.pickTool,
	}
}

// pickTool 让模型从工具箱中选择并参数化最多 maxTools 个工具调用
//
// 先解析工具箱，解析失败时不调用模型。每一步调用一次模型；
// 模型不再调用工具或已收集到 maxTools 个调用时结束。
func (p *Pickaxe) pickTool(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	var in PickInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPickInput, err)
	}
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", errors.ErrInvalidPickInput)
	}
	if in.MaxTools < 0 {
		return nil, fmt.Errorf("%w: maxTools must be positive", errors.ErrInvalidPickInput)
	}

	tb, err := p.LookupToolbox(in.ToolboxKey)
	if err != nil {
		return nil, err
	}

	maxTools := in.MaxTools
	if maxTools == 0 {
		maxTools = p.cfg.DefaultMaxTools
	}

	logger := p.logger.WithContext(ctx).WithFields(map[string]any{
		"toolbox":   tb.key,
		"max_tools": maxTools,
	})

	msgs := make([]message.Message, 0, 2+2*maxTools)
	if p.cfg.SystemPrompt != "" {
		msgs = append(msgs, message.NewSystemMessage(p.cfg.SystemPrompt))
	}
	msgs = append(msgs, message.NewUserMessage(in.Prompt))

	defs := tb.toolset.Definitions()
	out := PickOutput{Steps: make([][]ToolCall, 0, maxTools)}
	collected := 0

	for step := 0; step < maxTools && collected < maxTools; step++ {
		req := llm.NewRequest(msgs,
			llm.WithTools(defs),
			llm.WithRequestToolChoice(llm.ToolChoiceAuto),
		)
		if err := message.ValidateHistory(msgs); err != nil {
			return nil, fmt.Errorf("%w: selection history: %w", errors.ErrInvalidResponse, err)
		}
		if err := p.checkPromptTokens(req); err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := p.provider.Generate(ctx, req)
		if err != nil {
			return nil, err
		}
		out.Usage.Add(resp.TokenUsage)
		logger.Debug("selection step finished",
			"step", step+1,
			"tool_calls", len(resp.ToolCalls),
			"prompt_tokens", resp.TokenUsage.PromptTokens,
			"duration", time.Since(start),
		)

		if !resp.HasToolCalls() {
			break
		}

		calls := resp.ToolCalls
		if remaining := maxTools - collected; len(calls) > remaining {
			calls = calls[:remaining]
		}

		stepCalls := make([]ToolCall, 0, len(calls))
		for _, tc := range calls {
			if _, ok := tb.toolset.Get(tc.Name); !ok {
				return nil, fmt.Errorf("%w: %q (toolbox %q)", errors.ErrUnknownTool, tc.Name, tb.key)
			}
			stepCalls = append(stepCalls, ToolCall{ToolName: tc.Name, Args: tc.ArgumentsJSON()})
		}
		out.Steps = append(out.Steps, stepCalls)
		collected += len(stepCalls)

		msgs = append(msgs, message.NewAssistantToolCallMessage(calls))
		for _, tc := range calls {
			msgs = append(msgs, message.NewToolMessage(tc.ID, tc.Name, selectedAck))
		}
	}

	fields := []any{"steps", len(out.Steps), "calls", collected}
	if !out.Usage.IsEmpty() {
		fields = append(fields, "total_tokens", out.Usage.TotalTokens)
	}
	logger.Info("tools selected", fields...)
	return json.Marshal(out)
}

// checkPromptTokens 在配置了 max_prompt_tokens 时拒绝超长的选择请求
func (p *Pickaxe) checkPromptTokens(req llm.Request) error {
	if p.cfg.MaxPromptTokens <= 0 || p.counter == nil {
		return nil
	}
	if n := llm.CountRequest(p.counter, req); n > p.cfg.MaxPromptTokens {
		return fmt.Errorf("%w: selection prompt needs %d tokens, limit is %d",
			errors.ErrTokenLimitExceeded, n, p.cfg.MaxPromptTokens)
	}
	return nil
}

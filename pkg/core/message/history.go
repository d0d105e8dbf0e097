package message

// ValidateHistory 校验发送给模型的消息序列
//
// 每条消息先按 Validate 校验；工具消息必须回应最近一条带工具调用的
// 助手消息中尚未回应的调用 ID。
func ValidateHistory(msgs []Message) error {
	var pending map[string]bool
	for i := range msgs {
		m := &msgs[i]
		if err := m.Validate(); err != nil {
			return &HistoryError{Index: i, Role: m.Role, Err: err}
		}
		switch {
		case m.Role == RoleAssistant && m.HasToolCalls():
			pending = make(map[string]bool, len(m.ToolCalls))
			for _, tc := range m.ToolCalls {
				if tc.ID == "" {
					return &HistoryError{Index: i, Role: m.Role, Err: ErrMissingToolCallID}
				}
				pending[tc.ID] = true
			}
		case m.Role == RoleTool:
			if !pending[m.ToolCallID] {
				return &HistoryError{Index: i, Role: m.Role, Err: ErrUnansweredToolCall}
			}
			delete(pending, m.ToolCallID)
		default:
			pending = nil
		}
	}
	return nil
}

package workflow

import "context"

// RunInfo 当前运行的身份信息
type RunInfo struct {
	// ID 运行 ID
	ID string
	// Task 任务名称
	Task string
	// ParentID 父运行 ID（顶层运行为空）
	ParentID string
	// Attempt 当前尝试次数，从 1 开始
	Attempt int
}

type runKey struct{}

// RunFromContext 返回上下文中的当前运行
//
// 在任务处理函数内调用时 ok 为 true；由此发起的 Run/BulkRun 记为子运行。
func RunFromContext(ctx context.Context) (RunInfo, bool) {
	info, ok := ctx.Value(runKey{}).(RunInfo)
	return info, ok
}

func withRun(ctx context.Context, info RunInfo) context.Context {
	return context.WithValue(ctx, runKey{}, info)
}

package otel

// 预定义的指标名称
const (
	// Task 指标（工作流引擎）
	MetricTaskRuns        = "task.runs"         // 计数器: 任务运行次数
	MetricTaskRunDuration = "task.run.duration" // 直方图: 任务运行时间(ms)
	MetricTaskErrors      = "task.errors"       // 计数器: 任务失败次数
	MetricTaskRetries     = "task.retries"      // 计数器: 任务重试次数
	MetricTaskActive      = "task.active"       // 仪表: 运行中的任务数

	// Toolbox 指标
	MetricToolboxPicks         = "toolbox.picks"          // 计数器: 选择次数
	MetricToolboxPickDuration  = "toolbox.pick.duration"  // 直方图: 选择耗时(ms)
	MetricToolboxSelectedTools = "toolbox.selected_tools" // 直方图: 每次选择的工具数
	MetricToolboxErrors        = "toolbox.errors"         // 计数器: 选择失败次数

	// LLM 指标
	MetricLLMRequests         = "llm.requests"          // 计数器: LLM 请求次数
	MetricLLMRequestDuration  = "llm.request.duration"  // 直方图: LLM 请求时间(ms)
	MetricLLMTokensPrompt     = "llm.tokens.prompt"     // 计数器: Prompt Token 总数
	MetricLLMTokensCompletion = "llm.tokens.completion" // 计数器: Completion Token 总数
	MetricLLMTokensTotal      = "llm.tokens.total"      // 计数器: 总 Token 数
	MetricLLMErrors           = "llm.errors"            // 计数器: LLM 错误次数
)

// MetricUnit 指标单位
type MetricUnit string

const (
	UnitNone         MetricUnit = ""
	UnitMilliseconds MetricUnit = "ms"
	UnitCount        MetricUnit = "1"
)

// MetricDescription 指标描述
type MetricDescription struct {
	Name        string
	Description string
	Unit        MetricUnit
	Type        string // counter, histogram, gauge
}

// PredefinedMetrics 预定义指标列表
var PredefinedMetrics = []MetricDescription{
	{MetricTaskRuns, "Number of task runs", UnitCount, "counter"},
	{MetricTaskRunDuration, "Duration of task runs", UnitMilliseconds, "histogram"},
	{MetricTaskErrors, "Number of failed task runs", UnitCount, "counter"},
	{MetricTaskRetries, "Number of task retries", UnitCount, "counter"},
	{MetricTaskActive, "Number of in-flight task runs", UnitCount, "gauge"},

	{MetricToolboxPicks, "Number of toolbox picks", UnitCount, "counter"},
	{MetricToolboxPickDuration, "Duration of toolbox picks", UnitMilliseconds, "histogram"},
	{MetricToolboxSelectedTools, "Number of tools selected per pick", UnitCount, "histogram"},
	{MetricToolboxErrors, "Number of failed toolbox picks", UnitCount, "counter"},

	{MetricLLMRequests, "Number of LLM requests", UnitCount, "counter"},
	{MetricLLMRequestDuration, "Duration of LLM requests", UnitMilliseconds, "histogram"},
	{MetricLLMTokensPrompt, "Number of prompt tokens", UnitCount, "counter"},
	{MetricLLMTokensCompletion, "Number of completion tokens", UnitCount, "counter"},
	{MetricLLMTokensTotal, "Total number of tokens", UnitCount, "counter"},
	{MetricLLMErrors, "Number of LLM errors", UnitCount, "counter"},
}

// describeMetric 查找预定义指标的描述
func describeMetric(name string) (MetricDescription, bool) {
	for _, d := range PredefinedMetrics {
		if d.Name == name {
			return d, true
		}
	}
	return MetricDescription{}, false
}

package pickaxe

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hatchet-dev/pickaxe/pkg/core/config"
	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
	"github.com/hatchet-dev/pickaxe/pkg/core/llm"
	"github.com/hatchet-dev/pickaxe/pkg/core/message"
	"github.com/hatchet-dev/pickaxe/pkg/otel"
	"github.com/hatchet-dev/pickaxe/pkg/tools"
	"github.com/hatchet-dev/pickaxe/pkg/workflow"
	"github.com/hatchet-dev/pickaxe/pkg/workflow/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type CityInput struct {
	City string `json:"city" jsonschema:"description=City name"`
}

type WeatherOutput struct {
	Forecast string `json:"forecast"`
}

type TimeOutput struct {
	Time string `json:"time"`
}

type fixture struct {
	px      *Pickaxe
	engine  *workflow.LocalEngine
	llm     *llm.MockProvider
	metrics *otel.InMemoryMetrics
	weather *Tool[CityInput, WeatherOutput]
	clock   *Tool[CityInput, TimeOutput]
	box     *Toolbox
}

func newFixture(t *testing.T, responses ...llm.Response) *fixture {
	t.Helper()

	f := &fixture{
		engine:  workflow.NewLocalEngine(workflow.WithRetryDelay(time.Millisecond)),
		llm:     llm.NewMockProvider(responses...),
		metrics: otel.NewInMemoryMetrics(),
	}

	px, err := New(f.engine, f.llm, WithMetrics(f.metrics))
	require.NoError(t, err)
	f.px = px

	f.weather, err = NewTool(px, ToolOptions[CityInput, WeatherOutput]{
		Name:        "weather",
		Description: "Get the weather in a given city",
		Fn: func(_ context.Context, in CityInput) (WeatherOutput, error) {
			return WeatherOutput{Forecast: "sunny in " + in.City}, nil
		},
	})
	require.NoError(t, err)

	f.clock, err = NewTool(px, ToolOptions[CityInput, TimeOutput]{
		Name:        "time",
		Description: "Get the current time in a given city",
		Fn: func(_ context.Context, in CityInput) (TimeOutput, error) {
			return TimeOutput{Time: "12:00 in " + in.City}, nil
		},
	})
	require.NoError(t, err)

	f.box, err = px.Toolbox(ToolboxOptions{Tools: []tools.Declaration{f.weather, f.clock}})
	require.NoError(t, err)
	return f
}

func call(name string, args any) llm.MockCall {
	return llm.MockCall{Name: name, Args: args}
}

func TestToolbox_KeyIsSortedNames(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "time:weather", f.box.Key())
	assert.Equal(t, []string{"weather", "time"}, f.box.Toolset().Names())
	assert.Len(t, f.box.Tools(), 2)
}

func TestToolbox_ExplicitNameAndConflicts(t *testing.T) {
	f := newFixture(t)

	_, err := f.px.Toolbox(ToolboxOptions{Tools: []tools.Declaration{f.clock, f.weather}})
	assert.ErrorIs(t, err, errors.ErrToolboxAlreadyRegistered)

	named, err := f.px.Toolbox(ToolboxOptions{Name: "travel", Tools: []tools.Declaration{f.clock, f.weather}})
	require.NoError(t, err)
	assert.Equal(t, "travel", named.Key())

	got, err := f.px.LookupToolbox("travel")
	require.NoError(t, err)
	assert.Same(t, named, got)
	assert.Len(t, f.px.Toolboxes(), 2)
}

func TestToolbox_RejectsInvalidMembers(t *testing.T) {
	f := newFixture(t)

	_, err := f.px.Toolbox(ToolboxOptions{})
	assert.ErrorIs(t, err, errors.ErrEmptyToolbox)

	_, err = f.px.Toolbox(ToolboxOptions{Name: "dup", Tools: []tools.Declaration{f.weather, f.weather}})
	assert.ErrorIs(t, err, errors.ErrDuplicateTool)

	impostor := tools.MustFuncTool("weather", "another weather",
		func(context.Context, CityInput) (WeatherOutput, error) { return WeatherOutput{}, nil })
	_, err = f.px.Toolbox(ToolboxOptions{Name: "impostor", Tools: []tools.Declaration{impostor}})
	assert.ErrorIs(t, err, errors.ErrToolAlreadyRegistered)
}

func TestToolbox_DeclaresBuiltinMembers(t *testing.T) {
	f := newFixture(t, llm.ToolCallResponse(call("echo", map[string]string{"city": "Oslo"})))

	echo := tools.MustFuncTool("echo", "Echo the city",
		func(_ context.Context, in CityInput) (CityInput, error) { return in, nil })
	box, err := f.px.Toolbox(ToolboxOptions{Tools: []tools.Declaration{echo}})
	require.NoError(t, err)
	assert.Contains(t, f.engine.Tasks(), "echo")

	res, err := box.PickAndRun(context.Background(), PickOptions{Prompt: "echo Oslo"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"city":"Oslo"}`, string(res.Output))
}

func TestPick_ReturnsSelectionsInOrder(t *testing.T) {
	f := newFixture(t, llm.ToolCallResponse(
		call("weather", map[string]string{"city": "Tokyo"}),
		call("time", map[string]string{"city": "Tokyo"}),
	))

	sel, err := f.box.Pick(context.Background(), PickOptions{Prompt: "weather and time in Tokyo", MaxTools: 2})
	require.NoError(t, err)
	require.Len(t, sel, 2)
	assert.Equal(t, "weather", sel[0].Name)
	assert.Equal(t, "time", sel[1].Name)
	assert.JSONEq(t, `{"city":"Tokyo"}`, string(sel[0].Input))

	calls := f.llm.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Tools, 2)
	assert.Equal(t, "weather", calls[0].Tools[0].Name)
	assert.Equal(t, "weather and time in Tokyo", calls[0].Messages[0].Content)

	assert.Equal(t, int64(1), f.metrics.CounterValue(otel.MetricToolboxPicks))
	assert.Equal(t, []float64{2}, f.metrics.HistogramValues(otel.MetricToolboxSelectedTools))
}

func TestPick_CapsAtMaxTools(t *testing.T) {
	f := newFixture(t, llm.ToolCallResponse(
		call("weather", map[string]string{"city": "Tokyo"}),
		call("time", map[string]string{"city": "Tokyo"}),
	))

	sel, err := f.box.Pick(context.Background(), PickOptions{Prompt: "weather and time in Tokyo"})
	require.NoError(t, err)
	require.Len(t, sel, 1)
	assert.Equal(t, "weather", sel[0].Name)
	assert.Equal(t, 1, f.llm.CallCount())
}

func TestPick_MultipleSteps(t *testing.T) {
	f := newFixture(t,
		llm.ToolCallResponse(call("weather", map[string]string{"city": "Paris"})),
		llm.ToolCallResponse(call("time", map[string]string{"city": "Paris"})),
	)

	sel, err := f.box.Pick(context.Background(), PickOptions{Prompt: "weather and time in Paris", MaxTools: 3})
	require.NoError(t, err)
	require.Len(t, sel, 2)
	assert.Equal(t, "time", sel[1].Name)

	// 第三步模型不再调用工具
	calls := f.llm.Calls()
	require.Len(t, calls, 3)
	second := calls[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, "weather", second[1].ToolCalls[0].Name)
	assert.Equal(t, "call_1", second[2].ToolCallID)
}

func TestPick_EmptySelection(t *testing.T) {
	f := newFixture(t, llm.Response{Content: "no tool fits", FinishReason: "stop"})

	sel, err := f.box.Pick(context.Background(), PickOptions{Prompt: "tell me a joke"})
	require.NoError(t, err)
	assert.Empty(t, sel)
}

func TestPick_UnknownToolFails(t *testing.T) {
	f := newFixture(t, llm.ToolCallResponse(call("stocks", map[string]string{"ticker": "X"})))

	_, err := f.box.Pick(context.Background(), PickOptions{Prompt: "stock price"})
	assert.ErrorIs(t, err, errors.ErrUnknownTool)
	assert.Contains(t, err.Error(), "stocks")
	assert.Equal(t, int64(1), f.metrics.CounterValue(otel.MetricToolboxErrors))
}

func TestPick_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.box.Pick(context.Background(), PickOptions{Prompt: "  "})
	assert.ErrorIs(t, err, errors.ErrInvalidPickInput)

	_, err = f.box.Pick(context.Background(), PickOptions{Prompt: "x", MaxTools: -1})
	assert.ErrorIs(t, err, errors.ErrInvalidPickInput)
	assert.Zero(t, f.llm.CallCount())
}

func TestPickTool_UnknownToolboxMakesNoLLMCall(t *testing.T) {
	f := newFixture(t)

	input, err := json.Marshal(PickInput{Prompt: "hello", ToolboxKey: "ghost:box"})
	require.NoError(t, err)

	_, err = f.engine.Run(context.Background(), PickToolTask, input)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrToolboxNotFound)
	assert.Contains(t, err.Error(), "ghost:box")
	assert.Zero(t, f.llm.CallCount())

	var nf *errors.ToolboxNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost:box", nf.Key)
}

func TestPickTool_PromptTokenLimit(t *testing.T) {
	engine := workflow.NewLocalEngine()
	mock := llm.NewMockProvider()
	px, err := New(engine, mock,
		WithToolboxConfig(config.ToolboxConfig{MaxPromptTokens: 5}),
		WithTokenCounter(llm.NewEstimatedCounter()),
	)
	require.NoError(t, err)

	echo := tools.MustFuncTool("echo", "Echo the city back to the caller",
		func(_ context.Context, in CityInput) (CityInput, error) { return in, nil })
	box, err := px.Toolbox(ToolboxOptions{Tools: []tools.Declaration{echo}})
	require.NoError(t, err)

	_, err = box.Pick(context.Background(), PickOptions{Prompt: "please echo the name of a very large city"})
	assert.ErrorIs(t, err, errors.ErrTokenLimitExceeded)
	assert.Zero(t, mock.CallCount())
}

func TestPickAndRunAll_WeatherAndTime(t *testing.T) {
	f := newFixture(t, llm.ToolCallResponse(
		call("weather", map[string]string{"city": "Tokyo"}),
		call("time", map[string]string{"city": "Tokyo"}),
	))

	results, err := f.box.PickAndRunAll(context.Background(), PickOptions{
		Prompt:   "What's the weather and time in Tokyo?",
		MaxTools: 2,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "weather", results[0].Name)
	assert.Equal(t, "time", results[1].Name)

	for _, r := range results {
		switch r.Name {
		case f.weather.Name():
			args, out, ok := f.weather.Match(r)
			require.True(t, ok)
			assert.Equal(t, "Tokyo", args.City)
			assert.Equal(t, "sunny in Tokyo", out.Forecast)
		case f.clock.Name():
			args, out, ok := f.clock.Match(r)
			require.True(t, ok)
			assert.Equal(t, "Tokyo", args.City)
			assert.Equal(t, "12:00 in Tokyo", out.Time)
		default:
			require.NoError(t, f.box.AssertExhaustive(r))
		}
	}

	// 工具运行记为独立的顶层运行，pick-tool 运行记录选择结果
	picks, err := f.engine.Store().List(context.Background(), store.Filter{Task: PickToolTask})
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, store.StatusSucceeded, picks[0].Status)
}

func TestPickAndRun_SingleResultRoundTripsArgs(t *testing.T) {
	f := newFixture(t, llm.ToolCallResponse(call("time", map[string]string{"city": "Lima"})))

	res, err := f.box.PickAndRun(context.Background(), PickOptions{Prompt: "What time is it in Lima?"})
	require.NoError(t, err)
	assert.Equal(t, "time", res.Name)
	assert.JSONEq(t, `{"city":"Lima"}`, string(res.Args))

	var out TimeOutput
	require.NoError(t, res.DecodeOutput(&out))
	assert.Equal(t, "12:00 in Lima", out.Time)

	_, _, ok := f.weather.Match(res)
	assert.False(t, ok)
}

func TestPickAndRun_IgnoresDefaultMaxTools(t *testing.T) {
	engine := workflow.NewLocalEngine(workflow.WithRetryDelay(time.Millisecond))
	mock := llm.NewMockProvider(
		llm.ToolCallResponse(
			call("weather", map[string]string{"city": "Tokyo"}),
			call("time", map[string]string{"city": "Tokyo"}),
		),
		llm.ToolCallResponse(call("time", map[string]string{"city": "Tokyo"})),
	)
	px, err := New(engine, mock, WithToolboxConfig(config.ToolboxConfig{DefaultMaxTools: 3}))
	require.NoError(t, err)

	var executed atomic.Int32
	weather, err := NewTool(px, ToolOptions[CityInput, WeatherOutput]{
		Name: "weather",
		Fn: func(_ context.Context, in CityInput) (WeatherOutput, error) {
			executed.Add(1)
			return WeatherOutput{Forecast: "sunny in " + in.City}, nil
		},
	})
	require.NoError(t, err)
	clock, err := NewTool(px, ToolOptions[CityInput, TimeOutput]{
		Name: "time",
		Fn: func(_ context.Context, in CityInput) (TimeOutput, error) {
			executed.Add(1)
			return TimeOutput{Time: "12:00"}, nil
		},
	})
	require.NoError(t, err)
	box, err := px.Toolbox(ToolboxOptions{Tools: []tools.Declaration{weather, clock}})
	require.NoError(t, err)

	res, err := box.PickAndRun(context.Background(), PickOptions{Prompt: "weather in Tokyo"})
	require.NoError(t, err)
	assert.Equal(t, "weather", res.Name)
	assert.Equal(t, int32(1), executed.Load())
	assert.Equal(t, 1, mock.CallCount())

	// Pick 未指定 MaxTools 时仍使用配置的默认值
	sel, err := box.Pick(context.Background(), PickOptions{Prompt: "time in Tokyo"})
	require.NoError(t, err)
	assert.Len(t, sel, 1)
	assert.Equal(t, 3, mock.CallCount())
}

func TestPickTool_RecordsTokenUsage(t *testing.T) {
	first := llm.ToolCallResponse(call("weather", map[string]string{"city": "Oslo"}))
	first.TokenUsage.PromptTokens = 40
	first.TokenUsage.CompletionTokens = 8
	second := llm.ToolCallResponse(call("time", map[string]string{"city": "Oslo"}))
	second.TokenUsage.PromptTokens = 60
	second.TokenUsage.CompletionTokens = 6
	f := newFixture(t, first, second)

	input, err := json.Marshal(PickInput{Prompt: "weather and time in Oslo", ToolboxKey: f.box.Key(), MaxTools: 2})
	require.NoError(t, err)
	raw, err := f.engine.Run(context.Background(), PickToolTask, input)
	require.NoError(t, err)

	var out PickOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Steps, 2)
	assert.Equal(t, 100, out.Usage.PromptTokens)
	assert.Equal(t, 114, out.Usage.TotalTokens)
}

func TestPickTool_RejectsToolCallsWithoutID(t *testing.T) {
	resp := llm.ToolCallResponse(call("weather", map[string]string{"city": "Oslo"}))
	resp.ToolCalls[0].ID = ""
	f := newFixture(t, resp)

	_, err := f.box.Pick(context.Background(), PickOptions{Prompt: "weather and time in Oslo", MaxTools: 2})
	assert.ErrorIs(t, err, errors.ErrInvalidResponse)
	assert.ErrorIs(t, err, message.ErrMissingToolCallID)
}

func TestNewTool_SliceOutput(t *testing.T) {
	f := newFixture(t, llm.ToolCallResponse(call("week", map[string]string{"city": "Rome"})))

	week, err := NewTool(f.px, ToolOptions[CityInput, []WeatherOutput]{
		Name:        "week",
		Description: "Forecast for the next days",
		Fn: func(_ context.Context, in CityInput) ([]WeatherOutput, error) {
			return []WeatherOutput{{Forecast: "sunny in " + in.City}, {Forecast: "rain in " + in.City}}, nil
		},
	})
	require.NoError(t, err)

	out, err := week.Run(context.Background(), CityInput{City: "Rome"})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	box, err := f.px.Toolbox(ToolboxOptions{Tools: []tools.Declaration{week}})
	require.NoError(t, err)
	res, err := box.PickAndRun(context.Background(), PickOptions{Prompt: "forecast for Rome"})
	require.NoError(t, err)
	_, days, ok := week.Match(res)
	require.True(t, ok)
	assert.Equal(t, "rain in Rome", days[1].Forecast)
}

func TestPickAndRun_RejectsMaxToolsAboveOne(t *testing.T) {
	f := newFixture(t)
	_, err := f.box.PickAndRun(context.Background(), PickOptions{Prompt: "x", MaxTools: 2})
	assert.ErrorIs(t, err, errors.ErrInvalidPickInput)
}

func TestPickAndRun_NoToolSelected(t *testing.T) {
	f := newFixture(t, llm.Response{Content: "nothing to do"})

	_, err := f.box.PickAndRun(context.Background(), PickOptions{Prompt: "hi"})
	assert.ErrorIs(t, err, errors.ErrNoToolSelected)
}

func TestPickAndRunAll_FailsWhenAnyToolFails(t *testing.T) {
	f := newFixture(t, llm.ToolCallResponse(
		call("weather", map[string]string{"city": "Tokyo"}),
		call("flaky", map[string]string{"city": "Tokyo"}),
	))

	boom := stderrors.New("upstream down")
	flaky, err := NewTool(f.px, ToolOptions[CityInput, WeatherOutput]{
		Name:        "flaky",
		Description: "Always fails",
		Fn: func(context.Context, CityInput) (WeatherOutput, error) {
			return WeatherOutput{}, boom
		},
	})
	require.NoError(t, err)
	box, err := f.px.Toolbox(ToolboxOptions{Tools: []tools.Declaration{f.weather, flaky}})
	require.NoError(t, err)

	results, err := box.PickAndRunAll(context.Background(), PickOptions{Prompt: "x", MaxTools: 2})
	assert.Nil(t, results)
	assert.ErrorIs(t, err, boom)
}

func TestPickAndRunAll_InvalidArgsFailValidation(t *testing.T) {
	f := newFixture(t, llm.ToolCallResponse(call("weather", map[string]int{"city": 42})))

	_, err := f.box.PickAndRunAll(context.Background(), PickOptions{Prompt: "weather"})
	assert.ErrorIs(t, err, errors.ErrInvalidToolArgs)

	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "weather", verr.Tool)
}

func TestAssertExhaustive(t *testing.T) {
	err := AssertExhaustive(ToolResult{Name: "mystery"})
	assert.ErrorIs(t, err, errors.ErrUnhandledTool)
	assert.Contains(t, err.Error(), "mystery")
}

func TestTool_Run(t *testing.T) {
	f := newFixture(t)

	out, err := f.weather.Run(context.Background(), CityInput{City: "Rome"})
	require.NoError(t, err)
	assert.Equal(t, "sunny in Rome", out.Forecast)
	assert.Equal(t, KindTool, f.weather.Kind())
}

func TestNewTool_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := NewTool(f.px, ToolOptions[CityInput, TimeOutput]{
		Name: "time",
		Fn:   func(context.Context, CityInput) (TimeOutput, error) { return TimeOutput{}, nil },
	})
	assert.ErrorIs(t, err, errors.ErrToolAlreadyRegistered)

	_, err = NewTool(f.px, ToolOptions[CityInput, TimeOutput]{Name: "nofn"})
	assert.ErrorIs(t, err, errors.ErrInvalidTool)

	_, err = NewTool(f.px, ToolOptions[string, TimeOutput]{
		Name: "scalar",
		Fn:   func(context.Context, string) (TimeOutput, error) { return TimeOutput{}, nil },
	})
	assert.ErrorIs(t, err, errors.ErrInvalidTool)

	_, err = NewTool(f.px, ToolOptions[CityInput, TimeOutput]{
		Name: PickToolTask,
		Fn:   func(context.Context, CityInput) (TimeOutput, error) { return TimeOutput{}, nil },
	})
	assert.ErrorIs(t, err, errors.ErrToolAlreadyRegistered)
}

type RouteInput struct {
	Request string `json:"request"`
}

type RouteOutput struct {
	Answer string `json:"answer"`
}

func TestAgent_RoutesThroughToolbox(t *testing.T) {
	f := newFixture(t, llm.ToolCallResponse(call("weather", map[string]string{"city": "Cairo"})))

	agent, err := NewAgent(f.px, AgentOptions[RouteInput, RouteOutput]{
		Name:        "assistant",
		Description: "Answers travel questions",
		Fn: func(ctx context.Context, in RouteInput) (RouteOutput, error) {
			res, err := f.box.PickAndRun(ctx, PickOptions{Prompt: in.Request})
			if err != nil {
				return RouteOutput{}, err
			}
			switch res.Name {
			case f.weather.Name():
				_, out, _ := f.weather.Match(res)
				return RouteOutput{Answer: out.Forecast}, nil
			case f.clock.Name():
				_, out, _ := f.clock.Match(res)
				return RouteOutput{Answer: out.Time}, nil
			default:
				return RouteOutput{}, f.box.AssertExhaustive(res)
			}
		},
	})
	require.NoError(t, err)
	assert.Equal(t, KindAgent, agent.Kind())

	out, err := agent.Run(context.Background(), RouteInput{Request: "Weather in Cairo?"})
	require.NoError(t, err)
	assert.Equal(t, "sunny in Cairo", out.Answer)

	runs, err := f.engine.Store().List(context.Background(), store.Filter{Task: "assistant"})
	require.NoError(t, err)
	require.Len(t, runs, 1)

	children, err := f.engine.Store().List(context.Background(), store.Filter{ParentID: runs[0].ID})
	require.NoError(t, err)
	assert.Len(t, children, 2, "pick-tool and weather run as children of the agent")
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(nil, llm.NewMockProvider())
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	_, err = New(workflow.NewLocalEngine(), nil)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	engine := workflow.NewLocalEngine()
	_, err = New(engine, llm.NewMockProvider())
	require.NoError(t, err)
	_, err = New(engine, llm.NewMockProvider())
	assert.ErrorIs(t, err, errors.ErrTaskAlreadyRegistered, "one client per engine")
}

func TestStart_RunsUntilCanceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.px.Start(ctx) }()
	cancel()
	require.NoError(t, <-done)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "sk-test"
	cfg.Observability.Exporter = config.ExporterNone

	px, engine, err := FromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "pickaxe-worker", engine.Name())
	assert.Contains(t, engine.Tasks(), PickToolTask)
	assert.Equal(t, "openai", px.Provider().Name())
	require.NoError(t, px.Close(context.Background()))

	cfg.LLM.APIKey = ""
	_, _, err = FromConfig(context.Background(), cfg)
	assert.ErrorIs(t, err, errors.ErrInvalidAPIKey)
}

func ExampleToolbox_PickAndRunAll() {
	engine := workflow.NewLocalEngine()
	mock := llm.NewMockProvider(llm.ToolCallResponse(
		llm.MockCall{Name: "weather", Args: map[string]string{"city": "Tokyo"}},
		llm.MockCall{Name: "time", Args: map[string]string{"city": "Tokyo"}},
	))
	px, _ := New(engine, mock)

	weather, _ := NewTool(px, ToolOptions[CityInput, WeatherOutput]{
		Name:        "weather",
		Description: "Get the weather in a given city",
		Fn: func(_ context.Context, in CityInput) (WeatherOutput, error) {
			return WeatherOutput{Forecast: "rainy"}, nil
		},
	})
	clock, _ := NewTool(px, ToolOptions[CityInput, TimeOutput]{
		Name:        "time",
		Description: "Get the current time in a given city",
		Fn: func(_ context.Context, in CityInput) (TimeOutput, error) {
			return TimeOutput{Time: "09:30"}, nil
		},
	})
	box, _ := px.Toolbox(ToolboxOptions{Tools: []tools.Declaration{weather, clock}})

	results, _ := box.PickAndRunAll(context.Background(), PickOptions{
		Prompt:   "What's the weather and time in Tokyo?",
		MaxTools: 2,
	})
	fmt.Println(box.Key())
	for _, r := range results {
		fmt.Println(r.Name, string(r.Output))
	}
	// Output:
	// time:weather
	// weather {"forecast":"rainy"}
	// time {"time":"09:30"}
}

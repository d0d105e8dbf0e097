package workflow

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hatchet-dev/pickaxe/pkg/core/config"
	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
	"github.com/hatchet-dev/pickaxe/pkg/core/retry"
	"github.com/hatchet-dev/pickaxe/pkg/otel"
	"github.com/hatchet-dev/pickaxe/pkg/workflow/store"
)

// LocalEngine 进程内工作流引擎
//
// 顶层运行受 maxConcurrency 准入控制；在任务内部发起的子运行不占用槽位，
// 否则父任务持有槽位等待子任务时可能死锁。
type LocalEngine struct {
	name           string
	defaultTimeout time.Duration
	retryDelay     time.Duration

	tasks map[string]Task
	mu    sync.RWMutex

	sem     chan struct{}
	active  atomic.Int64
	running atomic.Bool

	// stopped 与 inflight.Add 同在 lifeMu 下，停止后不会再有 Add
	lifeMu   sync.Mutex
	stopped  bool
	inflight sync.WaitGroup

	store   store.Store
	tracer  otel.Tracer
	metrics otel.Metrics
	logger  otel.Logger
}

// Option LocalEngine 配置选项
type Option func(*LocalEngine)

// WithName 设置 worker 名称
func WithName(name string) Option {
	return func(e *LocalEngine) {
		e.name = name
	}
}

// WithMaxConcurrency 设置同时执行的顶层运行上限
func WithMaxConcurrency(n int) Option {
	return func(e *LocalEngine) {
		if n > 0 {
			e.sem = make(chan struct{}, n)
		}
	}
}

// WithDefaultTimeout 设置未声明超时的任务的执行超时
func WithDefaultTimeout(d time.Duration) Option {
	return func(e *LocalEngine) {
		e.defaultTimeout = d
	}
}

// WithRetryDelay 设置重试退避基数
func WithRetryDelay(d time.Duration) Option {
	return func(e *LocalEngine) {
		e.retryDelay = d
	}
}

// WithStore 设置运行记录存储
func WithStore(s store.Store) Option {
	return func(e *LocalEngine) {
		e.store = s
	}
}

// WithTracer 设置追踪器
func WithTracer(t otel.Tracer) Option {
	return func(e *LocalEngine) {
		e.tracer = t
	}
}

// WithMetrics 设置指标收集器
func WithMetrics(m otel.Metrics) Option {
	return func(e *LocalEngine) {
		e.metrics = m
	}
}

// WithLogger 设置日志器
func WithLogger(l otel.Logger) Option {
	return func(e *LocalEngine) {
		e.logger = l
	}
}

// NewLocalEngine 创建进程内引擎
func NewLocalEngine(opts ...Option) *LocalEngine {
	defaults := config.WorkerConfig{}.WithDefaults()
	e := &LocalEngine{
		name:           defaults.Name,
		defaultTimeout: defaults.DefaultTimeout,
		retryDelay:     defaults.RetryDelay,
		tasks:          make(map[string]Task),
		sem:            make(chan struct{}, defaults.MaxConcurrency),
		store:          store.NewMemoryStore(),
		tracer:         otel.NewNoopTracer(),
		metrics:        otel.NewNoopMetrics(),
		logger:         otel.NewNoopLogger(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// FromConfig 按 worker 配置创建引擎，opts 在配置之后应用
func FromConfig(cfg config.WorkerConfig, opts ...Option) *LocalEngine {
	cfg = cfg.WithDefaults()
	base := []Option{
		WithName(cfg.Name),
		WithMaxConcurrency(cfg.MaxConcurrency),
		WithDefaultTimeout(cfg.DefaultTimeout),
		WithRetryDelay(cfg.RetryDelay),
	}
	return NewLocalEngine(append(base, opts...)...)
}

// Name 返回 worker 名称
func (e *LocalEngine) Name() string {
	return e.name
}

// Store 返回运行记录存储
func (e *LocalEngine) Store() store.Store {
	return e.store
}

// Register 注册任务
//
// 任一任务无效或重名时整批不注册。
func (e *LocalEngine) Register(tasks ...Task) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.Name == "" || t.Handler == nil {
			return fmt.Errorf("%w: %q", errors.ErrInvalidTask, t.Name)
		}
		if _, exists := e.tasks[t.Name]; exists || seen[t.Name] {
			return fmt.Errorf("%w: %q", errors.ErrTaskAlreadyRegistered, t.Name)
		}
		seen[t.Name] = true
	}

	for _, t := range tasks {
		e.tasks[t.Name] = t
	}
	return nil
}

// Tasks 返回已注册的任务名（排序后）
func (e *LocalEngine) Tasks() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.tasks))
	for name := range e.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *LocalEngine) lookup(name string) (Task, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, ok := e.tasks[name]
	if !ok {
		return Task{}, fmt.Errorf("%w: %q", errors.ErrTaskNotFound, name)
	}
	return t, nil
}

// Start 启动 worker 并阻塞到 ctx 结束
//
// 返回前拒绝新的运行并等待进行中的运行完成。
func (e *LocalEngine) Start(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return errors.ErrEngineRunning
	}
	defer e.running.Store(false)

	e.setStopped(false)
	e.logger.Info("worker started", "worker", e.name, "tasks", e.Tasks())

	<-ctx.Done()

	e.setStopped(true)
	e.logger.Info("worker stopping", "worker", e.name, "inflight", e.active.Load())
	e.inflight.Wait()
	e.logger.Info("worker stopped", "worker", e.name)
	return nil
}

func (e *LocalEngine) setStopped(v bool) {
	e.lifeMu.Lock()
	e.stopped = v
	e.lifeMu.Unlock()
}

// enter 登记一个进行中的运行，引擎已停止时返回 false
func (e *LocalEngine) enter() bool {
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()
	if e.stopped {
		return false
	}
	e.inflight.Add(1)
	return true
}

// Run 运行单个任务
func (e *LocalEngine) Run(ctx context.Context, name string, input json.RawMessage) (json.RawMessage, error) {
	if !e.enter() {
		return nil, errors.ErrEngineStopped
	}
	defer e.inflight.Done()

	task, err := e.lookup(name)
	if err != nil {
		return nil, err
	}

	run := store.Run{
		ID:        uuid.NewString(),
		Task:      name,
		Status:    store.StatusQueued,
		Input:     input,
		CreatedAt: time.Now(),
	}
	parent, isChild := RunFromContext(ctx)
	if isChild {
		run.ParentID = parent.ID
	}
	e.save(ctx, run)

	logger := e.logger.WithContext(ctx).WithFields(map[string]any{
		"task":   name,
		"run_id": run.ID,
	})

	if !isChild {
		select {
		case e.sem <- struct{}{}:
			defer func() { <-e.sem }()
		case <-ctx.Done():
			return nil, e.finish(ctx, &run, nil, errors.ErrContextCanceled, logger)
		}
	}

	e.metrics.Gauge(otel.MetricTaskActive).Set(ctx, float64(e.active.Add(1)))
	defer func() {
		e.metrics.Gauge(otel.MetricTaskActive).Set(ctx, float64(e.active.Add(-1)))
	}()

	ctx, span := e.tracer.Start(ctx, "workflow.run",
		otel.WithAttributes(
			otel.TaskName(name),
			otel.RunID(run.ID),
			otel.RunParentID(run.ParentID),
		),
	)
	defer span.End()

	run.Status = store.StatusRunning
	run.StartedAt = time.Now()
	e.save(ctx, run)
	logger.Debug("run started", "parent_id", run.ParentID)

	var output json.RawMessage
	policy := retry.Policy{
		MaxRetries: task.Retries,
		BaseDelay:  e.retryDelay,
		Retryable:  func(err error) bool { return retryable(ctx, err) },
		OnRetry: func(attempt int, err error) {
			e.metrics.Counter(otel.MetricTaskRetries).Add(ctx, 1, otel.NewAttr("task", name))
			logger.Warn("run attempt failed, retrying", "attempt", attempt, "error", err)
		},
	}
	err = policy.Do(ctx, func() error {
		run.Attempts++
		var attemptErr error
		output, attemptErr = e.attempt(ctx, task, run, input)
		return attemptErr
	})

	span.SetAttributes(otel.RunAttempt(run.Attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otel.StatusError, err.Error())
	} else {
		span.SetStatus(otel.StatusOK, "")
	}

	if err := e.finish(ctx, &run, output, err, logger); err != nil {
		return nil, err
	}
	return output, nil
}

// attempt 执行一次尝试，处理超时和 panic
func (e *LocalEngine) attempt(ctx context.Context, task Task, run store.Run, input json.RawMessage) (out json.RawMessage, err error) {
	timeout := task.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	attemptCtx = withRun(attemptCtx, RunInfo{
		ID:       run.ID,
		Task:     task.Name,
		ParentID: run.ParentID,
		Attempt:  run.Attempts,
	})

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", errors.ErrTaskPanicked, r)
		}
	}()

	out, err = task.Handler(attemptCtx, input)
	if err != nil && ctx.Err() == nil && stderrors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s: %w", errors.ErrToolTimeout, timeout, err)
	}
	return out, err
}

// retryable 判断任务错误是否值得重试
//
// 调用方取消、致命错误和 Schema 校验错误不重试。
func retryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	if errors.IsFatal(err) ||
		stderrors.Is(err, errors.ErrContextCanceled) ||
		stderrors.Is(err, context.Canceled) {
		return false
	}
	return true
}

// finish 写入终态、记录指标并构造返回的错误
func (e *LocalEngine) finish(ctx context.Context, run *store.Run, output json.RawMessage, err error, logger otel.Logger) error {
	run.FinishedAt = time.Now()
	attrs := []otel.Attr{otel.NewAttr("task", run.Task)}

	switch {
	case err == nil:
		run.Status = store.StatusSucceeded
		run.Output = output
	case ctx.Err() != nil || stderrors.Is(err, errors.ErrContextCanceled):
		run.Status = store.StatusCancelled
		run.Error = err.Error()
	default:
		run.Status = store.StatusFailed
		run.Error = err.Error()
	}

	e.save(ctx, *run)
	e.metrics.Counter(otel.MetricTaskRuns).Add(ctx, 1, append(attrs, otel.NewAttr("status", string(run.Status)))...)
	if d := run.Duration(); d > 0 {
		e.metrics.Histogram(otel.MetricTaskRunDuration).Record(ctx, float64(d.Milliseconds()), attrs...)
	}

	if err == nil {
		logger.Debug("run succeeded", "attempts", run.Attempts, "duration", run.Duration())
		return nil
	}

	e.metrics.Counter(otel.MetricTaskErrors).Add(ctx, 1, attrs...)
	logger.Error("run failed", "status", run.Status, "attempts", run.Attempts, "error", err)
	return &errors.TaskError{
		Task:     run.Task,
		RunID:    run.ID,
		Attempts: run.Attempts,
		Err:      err,
	}
}

// save 持久化运行记录，失败只记录日志
func (e *LocalEngine) save(ctx context.Context, run store.Run) {
	if err := e.store.Save(context.WithoutCancel(ctx), run); err != nil {
		e.logger.Warn("failed to save run", "run_id", run.ID, "error", err)
	}
}

// BulkRun 并发运行一组任务
//
// 所有任务名先统一校验，任何一个未注册时不提交任何运行。
// 结果按提交下标对齐；失败时等待全部完成后返回合并错误。
func (e *LocalEngine) BulkRun(ctx context.Context, items []Item) ([]json.RawMessage, error) {
	if len(items) == 0 {
		return nil, nil
	}

	var missing []error
	for _, it := range items {
		if _, err := e.lookup(it.Task); err != nil {
			missing = append(missing, err)
		}
	}
	if len(missing) > 0 {
		return nil, stderrors.Join(missing...)
	}

	ctx, span := e.tracer.Start(ctx, "workflow.bulk_run",
		otel.WithAttributes(attribute.Int(otel.AttrBulkSize, len(items))),
	)
	defer span.End()

	results := make([]json.RawMessage, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for i, it := range items {
		wg.Add(1)
		go func(i int, it Item) {
			defer wg.Done()
			results[i], errs[i] = e.Run(ctx, it.Task, it.Input)
		}(i, it)
	}
	wg.Wait()

	var failed []error
	for i, err := range errs {
		if err != nil {
			failed = append(failed, fmt.Errorf("item %d (%s): %w", i, items[i].Task, err))
		}
	}
	if len(failed) > 0 {
		err := stderrors.Join(failed...)
		span.RecordError(err)
		span.SetStatus(otel.StatusError, err.Error())
		return nil, err
	}

	span.SetStatus(otel.StatusOK, "")
	return results, nil
}

// compile-time interface check
var _ Engine = (*LocalEngine)(nil)

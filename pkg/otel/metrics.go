package otel

import (
	"context"
	"sync"
)

// Metrics 定义指标接口
type Metrics interface {
	// Counter 返回或创建计数器
	Counter(name string) Counter
	// Histogram 返回或创建直方图
	Histogram(name string) Histogram
	// Gauge 返回或创建仪表
	Gauge(name string) Gauge
}

// Counter 计数器接口
type Counter interface {
	// Add 增加计数
	Add(ctx context.Context, value int64, attrs ...Attr)
}

// Histogram 直方图接口
type Histogram interface {
	// Record 记录值
	Record(ctx context.Context, value float64, attrs ...Attr)
}

// Gauge 仪表接口
type Gauge interface {
	// Set 设置值
	Set(ctx context.Context, value float64, attrs ...Attr)
}

// Attr 指标属性
type Attr struct {
	Key   string
	Value any
}

// NewAttr 创建指标属性
func NewAttr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// InMemoryMetrics 内存指标实现（用于测试和 CLI 本地运行）
type InMemoryMetrics struct {
	counters   map[string]*InMemoryCounter
	histograms map[string]*InMemoryHistogram
	gauges     map[string]*InMemoryGauge
	mu         sync.Mutex
}

// NewInMemoryMetrics 创建内存指标
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters:   make(map[string]*InMemoryCounter),
		histograms: make(map[string]*InMemoryHistogram),
		gauges:     make(map[string]*InMemoryGauge),
	}
}

// Counter 返回或创建计数器
func (m *InMemoryMetrics) Counter(name string) Counter {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.counters[name]
	if !ok {
		c = &InMemoryCounter{}
		m.counters[name] = c
	}
	return c
}

// Histogram 返回或创建直方图
func (m *InMemoryMetrics) Histogram(name string) Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.histograms[name]
	if !ok {
		h = &InMemoryHistogram{}
		m.histograms[name] = h
	}
	return h
}

// Gauge 返回或创建仪表
func (m *InMemoryMetrics) Gauge(name string) Gauge {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.gauges[name]
	if !ok {
		g = &InMemoryGauge{}
		m.gauges[name] = g
	}
	return g
}

// CounterValue 获取计数器当前值，不存在时返回 0
func (m *InMemoryMetrics) CounterValue(name string) int64 {
	m.mu.Lock()
	c, ok := m.counters[name]
	m.mu.Unlock()
	if !ok {
		return 0
	}
	return c.Value()
}

// HistogramValues 获取直方图记录的所有值
func (m *InMemoryMetrics) HistogramValues(name string) []float64 {
	m.mu.Lock()
	h, ok := m.histograms[name]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return h.Values()
}

// GaugeValue 获取仪表当前值
func (m *InMemoryMetrics) GaugeValue(name string) float64 {
	m.mu.Lock()
	g, ok := m.gauges[name]
	m.mu.Unlock()
	if !ok {
		return 0
	}
	return g.Value()
}

// InMemoryCounter 内存计数器
type InMemoryCounter struct {
	value int64
	mu    sync.Mutex
}

// Add 增加计数
func (c *InMemoryCounter) Add(_ context.Context, value int64, _ ...Attr) {
	c.mu.Lock()
	c.value += value
	c.mu.Unlock()
}

// Value 获取当前值
func (c *InMemoryCounter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// InMemoryHistogram 内存直方图
type InMemoryHistogram struct {
	values []float64
	mu     sync.Mutex
}

// Record 记录值
func (h *InMemoryHistogram) Record(_ context.Context, value float64, _ ...Attr) {
	h.mu.Lock()
	h.values = append(h.values, value)
	h.mu.Unlock()
}

// Values 获取所有记录的值
func (h *InMemoryHistogram) Values() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]float64, len(h.values))
	copy(result, h.values)
	return result
}

// InMemoryGauge 内存仪表
type InMemoryGauge struct {
	value float64
	mu    sync.Mutex
}

// Set 设置值
func (g *InMemoryGauge) Set(_ context.Context, value float64, _ ...Attr) {
	g.mu.Lock()
	g.value = value
	g.mu.Unlock()
}

// Value 获取当前值
func (g *InMemoryGauge) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

// NoopMetrics 空实现指标
type NoopMetrics struct{}

// NewNoopMetrics 创建空实现指标
func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (m *NoopMetrics) Counter(name string) Counter     { return noopInstrument{} }
func (m *NoopMetrics) Histogram(name string) Histogram { return noopInstrument{} }
func (m *NoopMetrics) Gauge(name string) Gauge         { return noopInstrument{} }

type noopInstrument struct{}

func (noopInstrument) Add(context.Context, int64, ...Attr)      {}
func (noopInstrument) Record(context.Context, float64, ...Attr) {}
func (noopInstrument) Set(context.Context, float64, ...Attr)    {}

// compile-time interface check
var _ Metrics = (*InMemoryMetrics)(nil)
var _ Metrics = (*NoopMetrics)(nil)

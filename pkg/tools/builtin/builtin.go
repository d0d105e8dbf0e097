// Package builtin 提供框架内置的常用工具
//
// 所有工具都是 tools.FuncTool，可以直接放入工具箱：
//
//	box, _ := px.Toolbox(pickaxe.ToolboxOptions{Tools: builtin.Defaults()})
package builtin

import (
	"net/http"
	"time"

	"github.com/hatchet-dev/pickaxe/pkg/tools"
)

// Option 内置工具选项
type Option func(*options)

type options struct {
	now      func() time.Time
	client   *http.Client
	maxBytes int64
	maxChars int
}

func defaultOptions() *options {
	return &options{
		now:      time.Now,
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: 1 << 20,
		maxChars: 20000,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithClock 设置 time 工具使用的时钟
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithHTTPClient 设置 website-to-md 使用的 HTTP 客户端
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

// WithMaxMarkdown 设置 website-to-md 输出的最大字符数
func WithMaxMarkdown(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxChars = n
		}
	}
}

// Defaults 返回全部内置工具
func Defaults(opts ...Option) []tools.Declaration {
	return []tools.Declaration{
		NewTime(opts...),
		NewWeather(),
		NewHoliday(),
		NewCalculator(),
		NewWebsiteToMarkdown(opts...),
	}
}

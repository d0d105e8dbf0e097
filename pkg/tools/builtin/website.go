package builtin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/hatchet-dev/pickaxe/pkg/tools"
)

// WebsiteInput website-to-md 工具输入
type WebsiteInput struct {
	URL   string `json:"url" jsonschema:"description=Absolute http(s) URL of the page"`
	Index int    `json:"index" jsonschema:"description=Position of the page in the caller's list"`
	Title string `json:"title,omitempty"`
}

// WebsiteOutput website-to-md 工具输出
type WebsiteOutput struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
}

// NewWebsiteToMarkdown 创建 website-to-md 工具：抓取网页并转换为 Markdown
func NewWebsiteToMarkdown(opts ...Option) *tools.FuncTool[WebsiteInput, WebsiteOutput] {
	o := applyOptions(opts)
	return tools.MustFuncTool("website-to-md", "Convert a webpage to clean, well-formatted Markdown",
		func(ctx context.Context, in WebsiteInput) (WebsiteOutput, error) {
			text, err := fetchMarkdown(ctx, o, in.URL)
			if err != nil {
				return WebsiteOutput{}, err
			}
			title := in.Title
			if title == "" {
				title = "Untitled"
			}
			return WebsiteOutput{Index: in.Index, Title: title, URL: in.URL, Markdown: text}, nil
		},
		tools.WithExecutionTimeout(5*time.Minute),
	)
}

func fetchMarkdown(ctx context.Context, o *options, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "pickaxe/1.0")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, o.maxBytes))
	if err != nil {
		return "", err
	}

	converter := md.NewConverter(u.Scheme+"://"+u.Host, true, nil)
	text, err := converter.ConvertString(string(body))
	if err != nil {
		return "", fmt.Errorf("html parsing failed: %w", err)
	}

	if r := []rune(text); len(r) > o.maxChars {
		text = string(r[:o.maxChars]) + "\n...[Truncated]..."
	}
	return text, nil
}

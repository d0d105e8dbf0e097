package builtin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
	"github.com/hatchet-dev/pickaxe/pkg/tools"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDefaults_FormAToolbox(t *testing.T) {
	ts, err := tools.NewToolset(Defaults()...)
	require.NoError(t, err)
	assert.Equal(t, "calculator:holiday:time:weather:website-to-md", ts.Key())
}

func TestTime(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tool := NewTime(WithClock(func() time.Time { return fixed }))

	cases := []struct {
		city string
		want string
		zone string
	}{
		{"Tokyo", "2025-01-02T12:04:05+09:00", "Asia/Tokyo"},
		{" new york ", "2025-01-01T22:04:05-05:00", "America/New_York"},
		{"Europe/Paris", "2025-01-02T04:04:05+01:00", "Europe/Paris"},
		{"Atlantis", "2025-01-02T03:04:05Z", "UTC"},
	}
	for _, tc := range cases {
		t.Run(tc.city, func(t *testing.T) {
			out, err := tool.Call(context.Background(), CityInput{City: tc.city})
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.Time)
			assert.Equal(t, tc.zone, out.Timezone)
		})
	}
}

func TestWeatherAndHoliday(t *testing.T) {
	w, err := NewWeather().Call(context.Background(), CityInput{City: "Tokyo"})
	require.NoError(t, err)
	assert.Equal(t, "sunny", w.Weather)

	h, err := NewHoliday().Call(context.Background(), HolidayInput{Country: "Japan"})
	require.NoError(t, err)
	assert.Equal(t, "Christmas", h.Holiday)

	_, err = NewHoliday().Execute(context.Background(), json.RawMessage(`{"city":"Tokyo"}`))
	assert.ErrorIs(t, err, errors.ErrInvalidToolArgs)
}

func TestCalculator(t *testing.T) {
	calc := NewCalculator()

	cases := map[string]float64{
		"2 + 3 * 4":    14,
		"(10 - 5) / 2": 2.5,
		"-3 + 1":       -2,
		"7 % 4":        3,
	}
	for expr, want := range cases {
		out, err := calc.Call(context.Background(), CalculatorInput{Expression: expr})
		require.NoError(t, err, expr)
		assert.InDelta(t, want, out.Result, 1e-9, expr)
	}

	for _, expr := range []string{"1 / 0", "5 % 0.5", "os.Exit(1)", "2 +"} {
		_, err := calc.Call(context.Background(), CalculatorInput{Expression: expr})
		assert.Error(t, err, expr)
	}
}

func TestWebsiteToMarkdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1>Pickaxe</h1><p>Tools for <strong>agents</strong>.</p></body></html>`))
	}))
	defer srv.Close()

	tool := NewWebsiteToMarkdown(WithHTTPClient(srv.Client()))
	assert.Equal(t, 5*time.Minute, tool.ExecutionTimeout())

	out, err := tool.Call(context.Background(), WebsiteInput{URL: srv.URL + "/page", Index: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Index)
	assert.Equal(t, "Untitled", out.Title)
	assert.Contains(t, out.Markdown, "# Pickaxe")
	assert.Contains(t, out.Markdown, "**agents**")

	_, err = tool.Call(context.Background(), WebsiteInput{URL: srv.URL + "/missing"})
	assert.ErrorContains(t, err, "status 404")

	_, err = tool.Call(context.Background(), WebsiteInput{URL: "ftp://example.com"})
	assert.ErrorContains(t, err, "invalid url")
}

func TestWebsiteToMarkdown_Truncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<p>" + strings.Repeat("a", 500) + "</p>"))
	}))
	defer srv.Close()

	tool := NewWebsiteToMarkdown(WithHTTPClient(srv.Client()), WithMaxMarkdown(100))
	out, err := tool.Call(context.Background(), WebsiteInput{URL: srv.URL, Title: "A"})
	require.NoError(t, err)
	assert.Equal(t, "A", out.Title)
	assert.True(t, strings.HasSuffix(out.Markdown, "...[Truncated]..."))
}

package builtin

import (
	"context"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/hatchet-dev/pickaxe/pkg/tools"
)

// CityInput 以城市为参数的工具输入
type CityInput struct {
	City string `json:"city" jsonschema:"description=City name such as Tokyo"`
}

// TimeOutput time 工具输出
type TimeOutput struct {
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
}

// cityZones 常见城市到 IANA 时区的映射
var cityZones = map[string]string{
	"tokyo":         "Asia/Tokyo",
	"beijing":       "Asia/Shanghai",
	"shanghai":      "Asia/Shanghai",
	"hong kong":     "Asia/Hong_Kong",
	"singapore":     "Asia/Singapore",
	"seoul":         "Asia/Seoul",
	"mumbai":        "Asia/Kolkata",
	"dubai":         "Asia/Dubai",
	"cairo":         "Africa/Cairo",
	"london":        "Europe/London",
	"paris":         "Europe/Paris",
	"berlin":        "Europe/Berlin",
	"rome":          "Europe/Rome",
	"madrid":        "Europe/Madrid",
	"moscow":        "Europe/Moscow",
	"new york":      "America/New_York",
	"chicago":       "America/Chicago",
	"denver":        "America/Denver",
	"los angeles":   "America/Los_Angeles",
	"san francisco": "America/Los_Angeles",
	"toronto":       "America/Toronto",
	"mexico city":   "America/Mexico_City",
	"sao paulo":     "America/Sao_Paulo",
	"lima":          "America/Lima",
	"sydney":        "Australia/Sydney",
	"auckland":      "Pacific/Auckland",
}

// NewTime 创建 time 工具：返回城市当前时间（RFC 3339）
//
// 未知城市按 UTC 处理；也接受 IANA 时区名作为城市。
func NewTime(opts ...Option) *tools.FuncTool[CityInput, TimeOutput] {
	o := applyOptions(opts)
	return tools.MustFuncTool("time", "Get the current time in a given city",
		func(_ context.Context, in CityInput) (TimeOutput, error) {
			loc := locationFor(in.City)
			return TimeOutput{
				Time:     o.now().In(loc).Format(time.RFC3339),
				Timezone: loc.String(),
			}, nil
		})
}

func locationFor(city string) *time.Location {
	name := strings.ToLower(strings.TrimSpace(city))
	if zone, ok := cityZones[name]; ok {
		name = zone
	} else {
		name = strings.TrimSpace(city)
	}
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

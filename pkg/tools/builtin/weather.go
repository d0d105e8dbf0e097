package builtin

import (
	"context"

	"github.com/hatchet-dev/pickaxe/pkg/tools"
)

// WeatherOutput weather 工具输出
type WeatherOutput struct {
	Weather string `json:"weather"`
}

// NewWeather 创建 weather 工具（示例实现，总是返回 sunny）
func NewWeather() *tools.FuncTool[CityInput, WeatherOutput] {
	return tools.MustFuncTool("weather", "Get the weather in a given city",
		func(context.Context, CityInput) (WeatherOutput, error) {
			return WeatherOutput{Weather: "sunny"}, nil
		})
}

// HolidayInput holiday 工具输入
type HolidayInput struct {
	Country string `json:"country" jsonschema:"description=Country name"`
}

// HolidayOutput holiday 工具输出
type HolidayOutput struct {
	Holiday string `json:"holiday"`
}

// NewHoliday 创建 holiday 工具（示例实现）
func NewHoliday() *tools.FuncTool[HolidayInput, HolidayOutput] {
	return tools.MustFuncTool("holiday", "Get the current holiday in a given country",
		func(context.Context, HolidayInput) (HolidayOutput, error) {
			return HolidayOutput{Holiday: "Christmas"}, nil
		})
}

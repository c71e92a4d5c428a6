package tools

import (
	"context"

	"github.com/havenforge/agentcore/agent"
)

// WeatherArgs is get_weather's argument shape, reflected into its JSON
// Schema parameters by reflectParameters.
type WeatherArgs struct {
	City string `json:"city" jsonschema:"required,description=City to look up the current weather for"`
}

// fixtureWeather is a deliberately tiny lookup table: this tool exists to
// exercise the loop, not to call a real weather API.
var fixtureWeather = map[string]string{
	"Boston":    "sunny 25C",
	"Seattle":   "rainy 15C",
	"Phoenix":   "sunny 38C",
	"Reykjavik": "windy 5C",
}

// Weather is the reference get_weather tool.
type Weather struct{}

func (Weather) Name() string { return "get_weather" }

func (Weather) Description() string {
	return "Get the current weather conditions for a city."
}

func (Weather) Parameters() map[string]any {
	return reflectParameters(&WeatherArgs{})
}

func (Weather) Execute(ctx context.Context, args map[string]any) (agent.ToolResult, error) {
	city, _ := args["city"].(string)
	if result, ok := fixtureWeather[city]; ok {
		return agent.ToolResult{Success: true, Content: result}, nil
	}
	return agent.ToolResult{Success: true, Content: "sunny 25C"}, nil
}

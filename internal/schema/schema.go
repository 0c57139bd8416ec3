// Package schema validates upstream payloads and the service's own canonical
// responses against JSON schemas embedded in the binary.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Upstream payload schemas.
const (
	OpenWeatherCurrent  = "openweather_current"
	OpenWeatherForecast = "openweather_forecast"
	OpenMeteoCurrent    = "openmeteo_current"
	OpenMeteoForecast   = "openmeteo_forecast"
	WeatherAPICurrent   = "weatherapi_current"
	WeatherAPIForecast  = "weatherapi_forecast"
	DistanceMatrix      = "distance_matrix"
)

// Canonical response schemas.
const (
	WeatherSnapshot = "weather_snapshot"
	DistanceResult  = "distance_result"
)

//go:embed schemas/*.json
var files embed.FS

var compiled = mustCompileAll()

func mustCompileAll() map[string]*jsonschema.Schema {
	entries, err := files.ReadDir("schemas")
	if err != nil {
		panic(fmt.Sprintf("read embedded schemas: %v", err))
	}

	compiler := jsonschema.NewCompiler()
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		data, err := files.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			panic(fmt.Sprintf("read schema %s: %v", e.Name(), err))
		}
		if err := compiler.AddResource(e.Name(), bytes.NewReader(data)); err != nil {
			panic(fmt.Sprintf("load schema %s: %v", e.Name(), err))
		}
		names = append(names, e.Name())
	}

	out := make(map[string]*jsonschema.Schema, len(names))
	for _, n := range names {
		s, err := compiler.Compile(n)
		if err != nil {
			panic(fmt.Sprintf("compile schema %s: %v", n, err))
		}
		out[strings.TrimSuffix(n, ".json")] = s
	}
	return out
}

// Validate checks a decoded JSON document (the result of unmarshalling into any)
// against the named schema.
func Validate(name string, doc any) error {
	s, ok := compiled[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("payload does not match %s schema: %w", name, err)
	}
	return nil
}

// ValidateJSON decodes data and validates it against the named schema.
func ValidateJSON(name string, data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}
	return Validate(name, doc)
}

// ValidateValue marshals v and validates the result against the named schema.
func ValidateValue(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return ValidateJSON(name, data)
}

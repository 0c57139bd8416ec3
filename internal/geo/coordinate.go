// Package geo holds the coordinate type shared by the weather and distance
// services and the validator that builds it from untrusted input.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/pin-forecast/internal/apperr"
)

// Coordinate is a validated latitude/longitude pair. Ranges are not checked.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String formats the coordinate as "lat,lng", the form upstream APIs expect.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// Input is an unvalidated coordinate. Lat and Lng may be strings (query
// parameters), numbers, json.Number, or nil when absent.
type Input struct {
	Lat any
	Lng any
}

// Pair builds an Input from two query-string values.
func Pair(lat, lng string) Input {
	return Input{Lat: lat, Lng: lng}
}

type coerced struct {
	Lat *float64 `json:"lat" validate:"required,finite"`
	Lng *float64 `json:"lng" validate:"required,finite"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("finite", isFinite); err != nil {
		panic(fmt.Sprintf("register finite validation: %v", err))
	}
	return v
}

func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
	default:
		return false
	}
}

// Validate coerces and validates in. On failure it returns a validation error
// whose details name every offending field.
func Validate(in Input) (Coordinate, error) {
	c, details := in.Check("")
	if len(details) > 0 {
		return Coordinate{}, apperr.Validation("invalid coordinates", details...)
	}
	return c, nil
}

// Check coerces and validates in, returning one message per invalid field.
// Field names in the messages are prefixed with prefix (e.g. "origin.").
func (in Input) Check(prefix string) (Coordinate, []string) {
	raw := coerced{Lat: coerce(in.Lat), Lng: coerce(in.Lng)}

	err := validate.Struct(raw)
	if err == nil {
		return Coordinate{Lat: *raw.Lat, Lng: *raw.Lng}, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Coordinate{}, []string{prefix + "coordinates: " + err.Error()}
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := prefix + fe.Field()
		switch fe.Tag() {
		case "required":
			details = append(details, name+" is required")
		case "finite":
			details = append(details, name+" must be a finite number")
		default:
			details = append(details, name+" is invalid")
		}
	}
	return Coordinate{}, details
}

// coerce converts a numeric or string-encoded value to a float. Absent values
// yield nil; unparseable values yield NaN so validation reports them.
func coerce(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			n = math.NaN()
		}
		f = n
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			n = math.NaN()
		}
		f = n
	default:
		f = math.NaN()
	}
	return &f
}

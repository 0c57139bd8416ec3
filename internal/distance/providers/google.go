package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/i474232898/pin-forecast/internal/distance"
	"github.com/i474232898/pin-forecast/internal/geo"
	"github.com/i474232898/pin-forecast/internal/schema"
	"github.com/i474232898/pin-forecast/internal/upstream"
)

const (
	googleMapsBaseURL            = "https://maps.googleapis.com"
	googleDistanceMatrixEndpoint = "/maps/api/distancematrix/json"

	maxErrorBody = 200
)

// GoogleProvider calls the Google Distance Matrix API over plain HTTP. When a
// signing secret is set every request carries a signature parameter.
type GoogleProvider struct {
	client  *upstream.Client
	apiKey  string
	secret  string
	baseURL string
}

func NewGoogleProvider(client *upstream.Client, apiKey, signingSecret, baseURL string) *GoogleProvider {
	if baseURL == "" {
		baseURL = googleMapsBaseURL
	}
	return &GoogleProvider{
		client:  client,
		apiKey:  apiKey,
		secret:  signingSecret,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) FetchMatrix(ctx context.Context, origin, destination geo.Coordinate) (*distance.Matrix, error) {
	params := url.Values{}
	params.Set("origins", origin.String())
	params.Set("destinations", destination.String())
	params.Set("mode", "driving")
	params.Set("units", "metric")

	u, err := p.requestURL(googleDistanceMatrixEndpoint + "?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("google distance matrix: %w", err)
	}

	var m distance.Matrix
	if err := p.client.GetJSON(ctx, u, schema.DistanceMatrix, &m); err != nil {
		var se *upstream.StatusError
		if errors.As(err, &se) {
			return nil, &distance.ProviderError{
				StatusCode: se.StatusCode,
				Status:     bodyField(se.Body, "status"),
				Message:    errorMessage(se.Body),
			}
		}
		return nil, fmt.Errorf("google distance matrix: %w", err)
	}

	if m.Status != distance.StatusOK {
		return nil, &distance.ProviderError{Status: m.Status, Message: m.ErrorMessage}
	}

	return &m, nil
}

// requestURL appends the credential and, if configured, the signature.
// The signature covers the path and query without the key.
func (p *GoogleProvider) requestURL(pathAndQuery string) (string, error) {
	u := p.baseURL + pathAndQuery + "&key=" + url.QueryEscape(p.apiKey)
	if p.secret == "" {
		return u, nil
	}

	sig, err := SignURL(pathAndQuery, p.secret)
	if err != nil {
		return "", err
	}
	return u + "&signature=" + sig, nil
}

// errorMessage extracts error_message from a JSON error body, falling back
// to the start of the raw body.
func errorMessage(body string) string {
	if msg := bodyField(body, "error_message"); msg != "" {
		return msg
	}
	body = strings.TrimSpace(body)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return body
}

func bodyField(body, field string) string {
	var doc map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return ""
	}
	s, _ := doc[field].(string)
	return s
}

package providers

import (
	"fmt"
	"net/http"

	"googlemaps.github.io/maps"

	"github.com/i474232898/pin-forecast/internal/common"
	"github.com/i474232898/pin-forecast/internal/distance"
	"github.com/i474232898/pin-forecast/internal/metrics"
	"github.com/i474232898/pin-forecast/internal/upstream"
)

// ProviderType selects a routing provider.
type ProviderType string

const (
	// ProviderTypeGoogle calls the Distance Matrix API over plain HTTP and supports URL signing.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeMapsSDK calls the Distance Matrix API through googlemaps.github.io/maps.
	ProviderTypeMapsSDK ProviderType = "googlemaps-sdk"
)

// ProviderConfig holds configuration for creating a routing provider.
type ProviderConfig struct {
	Type          ProviderType
	APIKey        string
	SigningSecret string // optional, google only
	BaseURL       string // empty means https://maps.googleapis.com
	HTTPClient    *http.Client
	Metrics       *metrics.Metrics
}

// NewFetcher creates the routing provider named by config.Type. A signing
// secret that is not valid base64 is rejected here rather than per request.
func NewFetcher(config ProviderConfig) (distance.MatrixFetcher, error) {
	switch config.Type {
	case ProviderTypeGoogle:
		if config.SigningSecret != "" {
			if _, err := decodeSecret(config.SigningSecret); err != nil {
				return nil, fmt.Errorf("google provider: %w", err)
			}
		}
		client := upstream.NewClient(string(config.Type), config.HTTPClient, config.Metrics)
		return NewGoogleProvider(client, config.APIKey, config.SigningSecret, config.BaseURL), nil
	case ProviderTypeMapsSDK:
		return newMapsSDKProvider(config)
	default:
		return nil, fmt.Errorf("unsupported routing provider type: %q", config.Type)
	}
}

func newMapsSDKProvider(config ProviderConfig) (distance.MatrixFetcher, error) {
	// The service reports a missing key per request; maps.NewClient refuses to
	// start without one.
	key := config.APIKey
	if common.IsPlaceholder(key) {
		key = "unconfigured"
	}

	// maps.WithHTTPClient wraps the client's transport in place, so it gets its own client.
	hc := &http.Client{}
	if config.HTTPClient != nil {
		hc.Timeout = config.HTTPClient.Timeout
	}

	opts := []maps.ClientOption{
		maps.WithAPIKey(key),
		maps.WithHTTPClient(hc),
	}
	if config.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(config.BaseURL))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewMapsSDKProvider(client, config.Metrics), nil
}

// Package routing resolves route legs through an external distance/ETA
// provider over HTTP. The cost estimator falls back to great-circle figures
// when the provider is unreachable, so the resolver reports failures instead
// of guessing.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"partialdelivery/internal/core/domain/model/kernel"
	"partialdelivery/internal/core/domain/services"
)

// defaultTimeout bounds one provider call. The estimator's fallback makes a
// slow provider worse than a failed one.
const defaultTimeout = 3 * time.Second

// HTTPRouteResolver implements services.RouteResolver against a JSON
// routing provider.
type HTTPRouteResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRouteResolver creates a resolver for the provider at baseURL.
// A non-positive timeout falls back to the default.
func NewHTTPRouteResolver(baseURL string, timeout time.Duration) *HTTPRouteResolver {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPRouteResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// routeResponse is the provider's answer for one leg.
type routeResponse struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

// ResolveRoute queries the provider for the leg between the two points.
func (r *HTTPRouteResolver) ResolveRoute(ctx context.Context, from, to kernel.GeoPoint) (services.RouteLeg, error) {
	query := url.Values{}
	query.Set("from_lat", formatCoord(from.Latitude()))
	query.Set("from_lon", formatCoord(from.Longitude()))
	query.Set("to_lat", formatCoord(to.Latitude()))
	query.Set("to_lon", formatCoord(to.Longitude()))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.baseURL+"/route?"+query.Encode(), nil)
	if err != nil {
		return services.RouteLeg{}, err
	}

	response, err := r.client.Do(request)
	if err != nil {
		return services.RouteLeg{}, err
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return services.RouteLeg{}, fmt.Errorf("routing provider returned status %d", response.StatusCode)
	}

	var leg routeResponse
	if err := json.NewDecoder(response.Body).Decode(&leg); err != nil {
		return services.RouteLeg{}, fmt.Errorf("routing provider response is malformed: %w", err)
	}
	if leg.DistanceKm < 0 || leg.DurationMin < 0 {
		return services.RouteLeg{}, fmt.Errorf("routing provider returned negative figures")
	}

	return services.RouteLeg{
		DistanceKm:  leg.DistanceKm,
		DurationMin: leg.DurationMin,
	}, nil
}

func formatCoord(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

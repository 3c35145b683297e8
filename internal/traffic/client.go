package traffic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/fleet_location_core/internal/geo"
)

// segmentTraffic - ответ сервиса пробок для участка
type segmentTraffic struct {
	CongestionIndex float64 `json:"congestion_index"`
	AverageSpeed    float64 `json:"average_speed_kmh"`
	FreeFlowSpeed   float64 `json:"free_flow_speed_kmh"`
}

type trafficResponse struct {
	Data    segmentTraffic `json:"data"`
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
}

// Client запрашивает коэффициент замедления у внешнего сервиса пробок
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Factor возвращает отношение скорости свободного потока к текущей.
// nil - сервис не знает участок или ответил без данных.
func (c *Client) Factor(ctx context.Context, from, to geo.LatLng) (*float64, error) {
	q := url.Values{}
	q.Set("from_lat", formatCoord(from.Lat))
	q.Set("from_lon", formatCoord(from.Lon))
	q.Set("to_lat", formatCoord(to.Lat))
	q.Set("to_lon", formatCoord(to.Lon))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/traffic?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("traffic: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("traffic: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("traffic: unexpected status %d", resp.StatusCode)
	}

	var body trafficResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("traffic: decode response: %w", err)
	}
	if !body.Success {
		c.logger.WithFields(logrus.Fields{
			"component": "traffic_client",
			"message":   body.Message,
		}).Debug("Traffic service returned no data")
		return nil, nil
	}
	return factorFrom(body.Data), nil
}

func factorFrom(d segmentTraffic) *float64 {
	var f float64
	switch {
	case d.AverageSpeed > 0 && d.FreeFlowSpeed > 0:
		f = d.FreeFlowSpeed / d.AverageSpeed
	case d.CongestionIndex > 0:
		f = 1 + d.CongestionIndex
	default:
		return nil
	}
	return &f
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

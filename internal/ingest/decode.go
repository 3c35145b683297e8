package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shenikar/fleet_location_core/internal/models"
)

// positionMessage - сообщение из потока. Время приходит строкой RFC3339 или числом секунд.
type positionMessage struct {
	EntityID   string            `json:"entity_id"`
	EntityType models.EntityType `json:"entity_type"`
	Latitude   *float64          `json:"latitude"`
	Longitude  *float64          `json:"longitude"`
	Heading    *float64          `json:"heading"`
	Speed      *float64          `json:"speed"`
	Accuracy   *float64          `json:"accuracy"`
	Source     models.Source     `json:"source"`
	Timestamp  json.RawMessage   `json:"timestamp"`
}

// DecodePositionMessage разбирает и валидирует сообщение. Ошибка всегда оборачивает models.ErrValidation.
func DecodePositionMessage(data []byte, defaultSource models.Source) (*models.PositionUpdate, error) {
	return decodeWithRef(data, defaultSource, models.EntityRef{})
}

// decodeWithRef - fallback подставляется, когда тип или id отсутствуют в теле
func decodeWithRef(data []byte, defaultSource models.Source, fallback models.EntityRef) (*models.PositionUpdate, error) {
	var msg positionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: malformed message: %v", models.ErrValidation, err)
	}
	ts, err := parseTimestamp(msg.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	update := &models.PositionUpdate{
		EntityID:   msg.EntityID,
		EntityType: msg.EntityType,
		Latitude:   msg.Latitude,
		Longitude:  msg.Longitude,
		Heading:    msg.Heading,
		Speed:      msg.Speed,
		Accuracy:   msg.Accuracy,
		Source:     msg.Source,
		Timestamp:  ts,
	}
	if update.EntityID == "" {
		update.EntityID = fallback.EntityID
	}
	if update.EntityType == "" {
		update.EntityType = fallback.EntityType
	}
	if update.Source == "" {
		update.Source = defaultSource
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	return update, nil
}

func parseTimestamp(raw json.RawMessage) (*time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("malformed timestamp: %v", err)
		}
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("timestamp %q is not RFC3339", s)
		}
		return &t, nil
	}
	secs, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return nil, fmt.Errorf("timestamp %s is neither RFC3339 nor unix seconds", raw)
	}
	whole, frac := math.Modf(secs)
	t := time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
	return &t, nil
}

// refFromTopic разбирает топик вида fleet/{type}/{id}/position
func refFromTopic(topic string) models.EntityRef {
	parts := strings.Split(strings.Trim(topic, "/"), "/")
	if len(parts) != 4 || parts[0] != "fleet" || parts[3] != "position" {
		return models.EntityRef{}
	}
	return models.EntityRef{EntityID: parts[2], EntityType: models.EntityType(parts[1])}
}

package upstream

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"bizdash/internal/models"
)

var instantFields = map[string]bool{
	"due_date":     true,
	"created_at":   true,
	"updated_at":   true,
	"completed_at": true,
}

// DecodeItem turns one wire element into a SchedulerItem. The remote API may
// use camelCase keys and date-only values; both are normalized before the
// model decoder sees the element.
func DecodeItem(raw json.RawMessage, loc *time.Location) (models.SchedulerItem, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return models.SchedulerItem{}, fmt.Errorf("%w: %v", models.ErrUnrecognizedItemShape, err)
	}
	obj, ok := normalizeKeys(generic).(map[string]any)
	if !ok {
		return models.SchedulerItem{}, fmt.Errorf("%w: element is not an object", models.ErrUnrecognizedItemShape)
	}
	for k := range instantFields {
		s, ok := obj[k].(string)
		if !ok {
			continue
		}
		if s == "" {
			delete(obj, k)
			continue
		}
		ts, err := parseInstant(s, loc)
		if err != nil {
			return models.SchedulerItem{}, fmt.Errorf("%w: %s: %v", models.ErrUnrecognizedItemShape, k, err)
		}
		obj[k] = ts.Format(time.RFC3339Nano)
	}

	b, err := json.Marshal(obj)
	if err != nil {
		return models.SchedulerItem{}, err
	}
	var it models.SchedulerItem
	if err := json.Unmarshal(b, &it); err != nil {
		return models.SchedulerItem{}, err
	}
	return it, nil
}

// DecodeItems decodes a fetch response or an export file: a bare array or an
// object with an "items" or "data" array. Elements that fail are skipped.
func DecodeItems(body []byte, loc *time.Location) ([]models.SchedulerItem, error) {
	raw, err := splitItems(body)
	if err != nil {
		return nil, err
	}
	return decodeAll(raw, loc), nil
}

func decodeAll(raw []json.RawMessage, loc *time.Location) []models.SchedulerItem {
	items := make([]models.SchedulerItem, 0, len(raw))
	for i, el := range raw {
		it, err := DecodeItem(el, loc)
		if err != nil {
			log.Printf("[upstream][decode][skip] index=%d: %v", i, err)
			continue
		}
		items = append(items, it)
	}
	return items
}

func parseInstant(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(models.DateLayout, s, loc)
}

func normalizeKeys(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[SnakeCase(k)] = normalizeKeys(val)
		}
		return out
	case []any:
		for i := range x {
			x[i] = normalizeKeys(x[i])
		}
		return x
	}
	return v
}

// SnakeCase converts dueDate to due_date. Already snake_case keys pass through.
func SnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

package cleanse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateFormats are tried in order when parsing sale dates from text sources.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// isNull determines if a raw cell value should be treated as NULL
func isNull(value interface{}) bool {
	if value == nil {
		return true
	}

	if strVal, ok := value.(string); ok {
		switch strings.TrimSpace(strVal) {
		case "", "null", "NULL", "nil", "NIL":
			return true
		}
	}

	return false
}

// toString converts an interface to string
func toString(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		// Use Sprint as a fallback
		return fmt.Sprintf("%v", val)
	}
}

// toNullableString safely converts an interface to a nullable string
func toNullableString(v interface{}) *string {
	if isNull(v) {
		return nil
	}
	s := strings.TrimSpace(toString(v))
	if s == "" {
		return nil
	}
	return &s
}

// toInt attempts to convert a value to int
func toInt(v interface{}) (int, error) {
	if v == nil {
		return 0, errors.New("nil value")
	}

	switch val := v.(type) {
	case int:
		return val, nil
	case int8:
		return int(val), nil
	case int16:
		return int(val), nil
	case int32:
		return int(val), nil
	case int64:
		return int(val), nil
	case uint:
		return int(val), nil
	case uint8:
		return int(val), nil
	case uint16:
		return int(val), nil
	case uint32:
		return int(val), nil
	case uint64:
		if val > uint64(9223372036854775807) {
			return 0, errors.New("uint64 value overflow for int")
		}
		return int(val), nil
	case float32:
		return int(val), nil
	case float64:
		return int(val), nil
	case string:
		cleaned := strings.TrimSpace(val)
		if cleaned == "" {
			return 0, errors.New("empty string")
		}
		parsed, err := strconv.ParseInt(cleaned, 10, 64)
		if err != nil {
			return 0, err
		}
		return int(parsed), nil
	case []byte:
		return toInt(string(val))
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}

// toFloat attempts to convert a value to float64. String inputs tolerate
// currency formatting such as "$132,000".
func toFloat(v interface{}) (float64, error) {
	if v == nil {
		return 0, errors.New("nil value")
	}

	switch val := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		// Use toString to avoid type assertion for each numeric type
		str := toString(val)
		return strconv.ParseFloat(str, 64)
	case float32:
		return float64(val), nil
	case float64:
		return val, nil
	case string:
		cleaned := strings.TrimSpace(val)
		cleaned = strings.TrimPrefix(cleaned, "$")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		if cleaned == "" {
			return 0, errors.New("empty string")
		}
		return strconv.ParseFloat(cleaned, 64)
	case []byte:
		return toFloat(string(val))
	default:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
}

// toTime attempts to convert a value to time.Time
func toTime(v interface{}) (time.Time, error) {
	if v == nil {
		return time.Time{}, errors.New("nil value")
	}

	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		cleaned := strings.TrimSpace(val)
		if cleaned == "" {
			return time.Time{}, errors.New("empty string")
		}

		for _, format := range dateFormats {
			if t, err := time.Parse(format, cleaned); err == nil {
				return t, nil
			}
		}

		return time.Time{}, fmt.Errorf("cannot parse time from '%s'", cleaned)
	case []byte:
		return toTime(string(val))
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to time", v)
	}
}

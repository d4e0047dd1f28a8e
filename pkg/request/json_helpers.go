package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxInt bounds every integer read from a request; seconds are stored in 32-bit int columns.
const MaxInt = math.MaxInt32

var (
	ErrNotInteger      = errors.New("value is not an integer")
	ErrOutOfRange      = errors.New("value is out of range")
	ErrNegative        = errors.New("value cannot be negative")
	ErrInvalidDuration = errors.New("duration must be seconds or HH:MM:SS")
)

// ReadString trims the input if it is a string and returns an error otherwise.
func ReadString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return "", fmt.Errorf("string is empty")
		}
		return trimmed, nil
	default:
		return "", fmt.Errorf("value is not a string")
	}
}

// ReadInt converts JSON numbers (float64) to int, rejecting fractional values and anything
// outside [-MaxInt, MaxInt].
func ReadInt(value interface{}) (int, error) {
	var n int64
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, ErrNotInteger
		}
		if math.Abs(v) > MaxInt {
			return 0, ErrOutOfRange
		}
		n = int64(v)
	case int:
		n = int64(v)
	case json.Number:
		parsed, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return 0, ErrOutOfRange
			}
			return 0, ErrNotInteger
		}
		n = parsed
	default:
		return 0, ErrNotInteger
	}

	if n > MaxInt || n < -MaxInt {
		return 0, ErrOutOfRange
	}
	return int(n), nil
}

// ReadNonNegativeInt is ReadInt with a lower bound of zero.
func ReadNonNegativeInt(value interface{}) (int, error) {
	n, err := ReadInt(value)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ErrNegative
	}
	return n, nil
}

// ReadDuration accepts either whole seconds or a clock string and returns seconds.
func ReadDuration(value interface{}) (int, error) {
	switch v := value.(type) {
	case string:
		return ParseClock(v)
	default:
		seconds, err := ReadInt(value)
		if err != nil {
			return 0, ErrInvalidDuration
		}
		return seconds, nil
	}
}

// ParseClock parses "SS", "MM:SS" or "HH:MM:SS" into seconds.
// Minutes and seconds must be below 60 when a larger unit is present.
func ParseClock(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, ErrInvalidDuration
	}

	parts := strings.Split(trimmed, ":")
	if len(parts) > 3 {
		return 0, ErrInvalidDuration
	}

	total := 0
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, ErrInvalidDuration
		}
		if i > 0 && n >= 60 {
			return 0, ErrInvalidDuration
		}
		if n > MaxInt || total > (MaxInt-n)/60 {
			return 0, ErrInvalidDuration
		}
		total = total*60 + n
	}
	return total, nil
}

// Seconds is a JSON duration field that decodes from a number of seconds or a clock string.
type Seconds int

// UnmarshalJSON implements json.Unmarshaler.
func (s *Seconds) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	var raw interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return ErrInvalidDuration
	}

	seconds, err := ReadDuration(raw)
	if err != nil {
		return err
	}
	*s = Seconds(seconds)
	return nil
}

package typeutils

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	json "github.com/goccy/go-json"
)

// ParseDigits reads v as a non-negative integer. Integer kinds are taken as
// they are; anything else qualifies only when its text form is made of ASCII
// digits, so signs, decimals and overflowing numbers are rejected.
func ParseDigits(v any) (int64, bool) {
	var text string
	switch val := v.(type) {
	case nil:
		return 0, false
	case int:
		return int64(val), val >= 0
	case int8:
		return int64(val), val >= 0
	case int16:
		return int64(val), val >= 0
	case int32:
		return int64(val), val >= 0
	case int64:
		return val, val >= 0
	case uint:
		return int64(val), uint64(val) <= math.MaxInt64
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		return int64(val), val <= math.MaxInt64
	case float32, float64:
		return 0, false
	case string:
		text = val
	case []byte:
		text = string(val)
	default:
		text = fmt.Sprint(val)
	}

	if text == "" {
		return 0, false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return 0, false
		}
	}

	parsed, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// IsNumber reports whether v is a numeric value and should be rendered unquoted in SQL
func IsNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		json.Number, *big.Int, *big.Float:
		return true
	default:
		return false
	}
}

// ReformatValue converts driver specific raw values into plain Go values.
// MySQL hands back text columns as []byte.
func ReformatValue(v any) any {
	if raw, ok := v.([]byte); ok {
		return string(raw)
	}
	return v
}

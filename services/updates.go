package services

import "encoding/json"

// toInt normalizes the numeric types a JSON-decoded update map can carry.
// encoding/json delivers numbers as float64 (or json.Number with UseNumber).
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

func toUint(v interface{}) (uint, bool) {
	i, ok := toInt(v)
	if !ok || i < 0 {
		return 0, false
	}
	return uint(i), true
}

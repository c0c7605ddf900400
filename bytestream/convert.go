package bytestream

import "fmt"

// asInt64 widens any of the integer Go kinds this package produces or
// accepts into an int64, the common currency for range checks below.
func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int8:
		return int64(t), true
	case uint8:
		return int64(t), true
	case int16:
		return int64(t), true
	case uint16:
		return int64(t), true
	case int32:
		return int64(t), true
	case uint32:
		return int64(t), true
	case int64:
		return t, true
	case uint64:
		return int64(t), true
	case int:
		return int64(t), true
	case uint:
		return int64(t), true
	default:
		return 0, false
	}
}

func asInt8(v any) (int8, error) {
	n, ok := asInt64(v)
	if !ok || n < -128 || n > 127 {
		return 0, fmt.Errorf("value %v does not fit in an int8", v)
	}
	return int8(n), nil
}

func asUint8(v any) (uint8, error) {
	n, ok := asInt64(v)
	if !ok || n < 0 || n > 255 {
		return 0, fmt.Errorf("value %v does not fit in a uint8", v)
	}
	return uint8(n), nil
}

func asInt16(v any) (int16, error) {
	n, ok := asInt64(v)
	if !ok || n < -32768 || n > 32767 {
		return 0, fmt.Errorf("value %v does not fit in an int16", v)
	}
	return int16(n), nil
}

func asUint16(v any) (uint16, error) {
	n, ok := asInt64(v)
	if !ok || n < 0 || n > 65535 {
		return 0, fmt.Errorf("value %v does not fit in a uint16", v)
	}
	return uint16(n), nil
}

func asInt32(v any) (int32, error) {
	n, ok := asInt64(v)
	if !ok || n < -(1<<31) || n > (1<<31-1) {
		return 0, fmt.Errorf("value %v does not fit in an int32", v)
	}
	return int32(n), nil
}

func asUint32(v any) (uint32, error) {
	n, ok := asInt64(v)
	if !ok || n < 0 || n > (1<<32-1) {
		return 0, fmt.Errorf("value %v does not fit in a uint32", v)
	}
	return uint32(n), nil
}

func asInt64Value(v any) (int64, error) {
	n, ok := asInt64(v)
	if !ok {
		return 0, fmt.Errorf("value %v is not an integer", v)
	}
	return n, nil
}

func asUint64(v any) (uint64, error) {
	switch t := v.(type) {
	case uint64:
		return t, nil
	default:
		n, ok := asInt64(v)
		if !ok || n < 0 {
			return 0, fmt.Errorf("value %v does not fit in a uint64", v)
		}
		return uint64(n), nil
	}
}

func asFloat32(v any) (float32, error) {
	switch t := v.(type) {
	case float32:
		return t, nil
	case float64:
		return float32(t), nil
	default:
		return 0, fmt.Errorf("value %v is not a float", v)
	}
}

func asFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	default:
		return 0, fmt.Errorf("value %v is not a float", v)
	}
}

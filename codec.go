package kvs

// encodeValue converts a KvsValue into the generic JSON node shape
// {"t": <tag>, "v": <payload>}, recursing into Array/Object children.
// Grounded on original_source/src/cpp/src/internal/kvs_helper.cpp's
// kvsvalue_to_any.
func encodeValue(v KvsValue) (any, error) {
	switch v.Kind() {
	case KindNull:
		return map[string]any{"t": "null", "v": nil}, nil
	case KindBool:
		b, _ := v.Bool()
		return map[string]any{"t": "bool", "v": b}, nil
	case KindI32:
		i, _ := v.I32()
		return map[string]any{"t": "i32", "v": float64(i)}, nil
	case KindU32:
		i, _ := v.U32()
		return map[string]any{"t": "u32", "v": float64(i)}, nil
	case KindI64:
		i, _ := v.I64()
		return map[string]any{"t": "i64", "v": float64(i)}, nil
	case KindU64:
		i, _ := v.U64()
		return map[string]any{"t": "u64", "v": float64(i)}, nil
	case KindF64:
		f, _ := v.F64()
		return map[string]any{"t": "f64", "v": f}, nil
	case KindString:
		s, _ := v.Str()
		return map[string]any{"t": "str", "v": s}, nil
	case KindArray:
		arr, _ := v.Array()
		out := make([]any, len(arr))
		for i, elem := range arr {
			enc, err := encodeValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return map[string]any{"t": "arr", "v": out}, nil
	case KindObject:
		obj, _ := v.Object()
		out := make(map[string]any, len(obj))
		for key, elem := range obj {
			enc, err := encodeValue(elem)
			if err != nil {
				return nil, err
			}
			out[key] = enc
		}
		return map[string]any{"t": "obj", "v": out}, nil
	default:
		return nil, kvsErrf(ErrInvalidValueType, "encode", "", nil)
	}
}

// decodeValue parses a generic JSON node (as produced by JsonParser.Parse)
// back into a KvsValue. Any shape mismatch — missing "t"/"v", wrong
// payload type for the declared tag, unknown tag, non-representable
// number — fails InvalidValueType. Grounded on kvs_helper.cpp's
// any_to_kvsvalue.
func decodeValue(node any) (KvsValue, error) {
	obj, ok := node.(map[string]any)
	if !ok {
		return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
	}
	tagAny, hasTag := obj["t"]
	val, hasVal := obj["v"]
	if !hasTag || !hasVal {
		return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
	}
	tag, ok := tagAny.(string)
	if !ok {
		return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
	}

	switch tag {
	case "null":
		if val != nil {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		return NewNull(), nil
	case "bool":
		b, ok := val.(bool)
		if !ok {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		return NewBool(b), nil
	case "i32":
		f, ok := val.(float64)
		if !ok {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		i, ok := floatToI32(f)
		if !ok {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		return NewI32(i), nil
	case "u32":
		f, ok := val.(float64)
		if !ok {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		i, ok := floatToU32(f)
		if !ok {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		return NewU32(i), nil
	case "i64":
		f, ok := val.(float64)
		if !ok {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		i, ok := floatToI64(f)
		if !ok {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		return NewI64(i), nil
	case "u64":
		f, ok := val.(float64)
		if !ok {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		i, ok := floatToU64(f)
		if !ok {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		return NewU64(i), nil
	case "f64":
		f, ok := val.(float64)
		if !ok {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		return NewF64(f), nil
	case "str":
		s, ok := val.(string)
		if !ok {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		return NewString(s), nil
	case "arr":
		arr, ok := val.([]any)
		if !ok {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		out := make([]KvsValue, len(arr))
		for i, elem := range arr {
			dv, err := decodeValue(elem)
			if err != nil {
				return KvsValue{}, err
			}
			out[i] = dv
		}
		return NewArray(out), nil
	case "obj":
		m, ok := val.(map[string]any)
		if !ok {
			return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
		}
		out := make(map[string]KvsValue, len(m))
		for key, elem := range m {
			dv, err := decodeValue(elem)
			if err != nil {
				return KvsValue{}, err
			}
			out[key] = dv
		}
		return NewObject(out), nil
	default:
		return KvsValue{}, kvsErrf(ErrInvalidValueType, "decode", "", nil)
	}
}

// decodeDocument decodes a whole top-level document (a JSON object keyed by
// text key names, each value an encoded KvsValue node) into a live map.
func decodeDocument(root any) (map[string]KvsValue, error) {
	obj, ok := root.(map[string]any)
	if !ok {
		return nil, kvsErrf(ErrJsonParserError, "decode_document", "", nil)
	}
	out := make(map[string]KvsValue, len(obj))
	for key, node := range obj {
		v, err := decodeValue(node)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// encodeDocument encodes a live map into the top-level document shape.
func encodeDocument(m map[string]KvsValue) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for key, v := range m {
		enc, err := encodeValue(v)
		if err != nil {
			return nil, err
		}
		out[key] = enc
	}
	return out, nil
}

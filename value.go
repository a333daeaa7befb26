package kvs

// ValueKind is the tag of a KvsValue. It mirrors the "t" field of the
// on-disk {"t":...,"v":...} document shape one-to-one.
type ValueKind string

const (
	KindNull   ValueKind = "null"
	KindBool   ValueKind = "bool"
	KindI32    ValueKind = "i32"
	KindU32    ValueKind = "u32"
	KindI64    ValueKind = "i64"
	KindU64    ValueKind = "u64"
	KindF64    ValueKind = "f64"
	KindString ValueKind = "str"
	KindArray  ValueKind = "arr"
	KindObject ValueKind = "obj"
)

// KvsValue is a tagged union over the ten value shapes the store can persist.
// There is no implicit widening between the numeric variants: an I32 and a
// U32 holding the same number are distinct values.
type KvsValue struct {
	kind  ValueKind
	value any
}

func NewNull() KvsValue                        { return KvsValue{kind: KindNull} }
func NewBool(v bool) KvsValue                  { return KvsValue{kind: KindBool, value: v} }
func NewI32(v int32) KvsValue                  { return KvsValue{kind: KindI32, value: v} }
func NewU32(v uint32) KvsValue                 { return KvsValue{kind: KindU32, value: v} }
func NewI64(v int64) KvsValue                  { return KvsValue{kind: KindI64, value: v} }
func NewU64(v uint64) KvsValue                 { return KvsValue{kind: KindU64, value: v} }
func NewF64(v float64) KvsValue                { return KvsValue{kind: KindF64, value: v} }
func NewString(v string) KvsValue              { return KvsValue{kind: KindString, value: v} }
func NewArray(v []KvsValue) KvsValue           { return KvsValue{kind: KindArray, value: v} }
func NewObject(v map[string]KvsValue) KvsValue { return KvsValue{kind: KindObject, value: v} }

// Kind reports the value's tag.
func (v KvsValue) Kind() ValueKind { return v.kind }

// IsNull reports whether v holds the Null variant.
func (v KvsValue) IsNull() bool { return v.kind == KindNull }

func (v KvsValue) Bool() (bool, bool) { b, ok := v.value.(bool); return b, ok }
func (v KvsValue) I32() (int32, bool) { i, ok := v.value.(int32); return i, ok }
func (v KvsValue) U32() (uint32, bool) { i, ok := v.value.(uint32); return i, ok }
func (v KvsValue) I64() (int64, bool) { i, ok := v.value.(int64); return i, ok }
func (v KvsValue) U64() (uint64, bool) { i, ok := v.value.(uint64); return i, ok }
func (v KvsValue) F64() (float64, bool) { f, ok := v.value.(float64); return f, ok }
func (v KvsValue) Str() (string, bool) { s, ok := v.value.(string); return s, ok }
func (v KvsValue) Array() ([]KvsValue, bool) { a, ok := v.value.([]KvsValue); return a, ok }
func (v KvsValue) Object() (map[string]KvsValue, bool) { m, ok := v.value.(map[string]KvsValue); return m, ok }

// Equal reports whether v and other hold the same tag and payload,
// recursing into Array and Object. It is the equality KvsValue round-trip
// tests (spec invariant I5) are checked against.
func (v KvsValue) Equal(other KvsValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindArray:
		a, _ := v.Array()
		b, _ := other.Array()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case KindObject:
		a, _ := v.Object()
		b, _ := other.Object()
		if len(a) != len(b) {
			return false
		}
		for key, av := range a {
			bv, ok := b[key]
			if !ok || !av.Equal(bv) {
				return false
			}
		}
		return true
	default:
		return v.value == other.value
	}
}

package kvs

import (
	"errors"
	"sync"
	"testing"
)

func seedDocument(t *testing.T, fs Filesystem, prefix string, doc map[string]any) {
	t.Helper()
	data, err := NewJSONCodec().Write(doc)
	if err != nil {
		t.Fatalf("seedDocument: Write error: %v", err)
	}
	if err := fs.WriteFile(prefix+".json", data); err != nil {
		t.Fatalf("seedDocument: WriteFile(.json) error: %v", err)
	}
	tag := adler32Tag(data)
	if err := fs.WriteFile(prefix+".hash", tag[:]); err != nil {
		t.Fatalf("seedDocument: WriteFile(.hash) error: %v", err)
	}
}

func openMem(t *testing.T, fs Filesystem, id InstanceId, opt Options) *Kvs {
	t.Helper()
	opt.Filesystem = fs
	k, err := Open(id, opt)
	if err != nil {
		t.Fatalf("Open(%d) error: %v", id, err)
	}
	return k
}

// Scenario 1: defaults + writes (spec.md §8).
func TestScenario_DefaultsAndWrites(t *testing.T) {
	fs := NewMemFilesystem()
	seedDocument(t, fs, "data/kvs_123_default", map[string]any{
		"default": map[string]any{"t": "i32", "v": 5.0},
	})
	seedDocument(t, fs, "data/kvs_123_0", map[string]any{
		"kvs": map[string]any{"t": "i32", "v": 2.0},
	})

	k := openMem(t, fs, 123, Options{Dir: "data", NeedDefaults: Required, NeedKvs: Required})

	v, err := k.GetValue("kvs")
	if err != nil {
		t.Fatalf("GetValue(kvs) error: %v", err)
	}
	if i, ok := v.I32(); !ok || i != 2 {
		t.Fatalf("GetValue(kvs) = %+v, wanted I32(2)", v)
	}

	v, err = k.GetValue("default")
	if err != nil {
		t.Fatalf("GetValue(default) error: %v", err)
	}
	if i, ok := v.I32(); !ok || i != 5 {
		t.Fatalf("GetValue(default) = %+v, wanted I32(5)", v)
	}

	if ok, _ := k.KeyExists("kvs"); !ok {
		t.Fatalf("KeyExists(kvs) = false, wanted true")
	}
	if ok, _ := k.KeyExists("default"); ok {
		t.Fatalf("KeyExists(default) = true, wanted false (defaults aren't \"existing\")")
	}
	if ok, _ := k.HasDefaultValue("default"); !ok {
		t.Fatalf("HasDefaultValue(default) = false, wanted true")
	}
}

// Scenario 2: round-trip object through flush + reopen.
func TestScenario_RoundTripObjectThroughFlush(t *testing.T) {
	fs := NewMemFilesystem()
	k := openMem(t, fs, 1, Options{Dir: "data", NeedDefaults: Optional, NeedKvs: Optional})

	obj := NewObject(map[string]KvsValue{
		"flag":  NewBool(true),
		"count": NewF64(42.0),
	})
	if err := k.SetValue("o", obj); err != nil {
		t.Fatalf("SetValue error: %v", err)
	}
	if err := k.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}

	k2 := openMem(t, fs, 1, Options{Dir: "data", NeedDefaults: Optional, NeedKvs: Optional})
	v, err := k2.GetValue("o")
	if err != nil {
		t.Fatalf("GetValue(o) after reopen error: %v", err)
	}
	if !v.Equal(obj) {
		t.Fatalf("GetValue(o) = %+v, wanted %+v", v, obj)
	}
}

// Scenario 5: integrity violation sequence.
func TestScenario_IntegrityViolation(t *testing.T) {
	fs := NewMemFilesystem()
	k := openMem(t, fs, 9, Options{Dir: "data", NeedDefaults: Optional, NeedKvs: Optional})
	if err := k.SetValue("k", NewI32(1)); err != nil {
		t.Fatal(err)
	}
	if err := k.Flush(); err != nil {
		t.Fatal(err)
	}

	hashPath := "data/kvs_9_0.hash"
	hashBytes, err := fs.ReadFile(hashPath)
	if err != nil {
		t.Fatal(err)
	}
	corrupted := append([]byte{}, hashBytes...)
	corrupted[0] ^= 0xFF
	if err := fs.WriteFile(hashPath, corrupted); err != nil {
		t.Fatal(err)
	}

	_, err = Open(9, Options{Dir: "data", Filesystem: fs, NeedDefaults: Optional, NeedKvs: Optional})
	var ke *Error
	if !errors.As(err, &ke) || ke.Kind != ErrValidationFailed {
		t.Fatalf("Open after hash corruption = %v, wanted ValidationFailed", err)
	}

	if err := fs.Remove(hashPath); err != nil {
		t.Fatal(err)
	}
	_, err = Open(9, Options{Dir: "data", Filesystem: fs, NeedDefaults: Optional, NeedKvs: Optional})
	if !errors.As(err, &ke) || ke.Kind != ErrKvsHashFileReadError {
		t.Fatalf("Open after missing hash = %v, wanted KvsHashFileReadError", err)
	}

	if err := fs.Remove("data/kvs_9_0.json"); err != nil {
		t.Fatal(err)
	}
	_, err = Open(9, Options{Dir: "data", Filesystem: fs, NeedDefaults: Optional, NeedKvs: Required})
	if !errors.As(err, &ke) || ke.Kind != ErrKvsFileReadError {
		t.Fatalf("Open after missing json, Required = %v, wanted KvsFileReadError", err)
	}
}

func TestOpen_EmptyDocument(t *testing.T) {
	fs := NewMemFilesystem()
	seedDocument(t, fs, "data/kvs_1_0", map[string]any{})

	k := openMem(t, fs, 1, Options{Dir: "data", NeedDefaults: Optional, NeedKvs: Required})
	keys, err := k.GetAllKeys()
	if err != nil || len(keys) != 0 {
		t.Fatalf("GetAllKeys on empty doc = %v, %v, wanted empty, nil", keys, err)
	}
}

func TestGetValue_KeyNotFound(t *testing.T) {
	fs := NewMemFilesystem()
	k := openMem(t, fs, 1, Options{Dir: "data"})
	_, err := k.GetValue("missing")
	var ke *Error
	if !errors.As(err, &ke) || ke.Kind != ErrKeyNotFound {
		t.Fatalf("GetValue(missing) = %v, wanted KeyNotFound", err)
	}
}

func TestResetKey_RequiresDefault(t *testing.T) {
	fs := NewMemFilesystem()
	seedDocument(t, fs, "data/kvs_1_default", map[string]any{
		"d": map[string]any{"t": "bool", "v": true},
	})
	k := openMem(t, fs, 1, Options{Dir: "data", NeedDefaults: Required})

	err := k.ResetKey("no-default")
	var ke *Error
	if !errors.As(err, &ke) || ke.Kind != ErrKeyDefaultNotFound {
		t.Fatalf("ResetKey(no-default) = %v, wanted KeyDefaultNotFound", err)
	}

	if err := k.SetValue("d", NewBool(false)); err != nil {
		t.Fatal(err)
	}
	// R4: reset_key twice is idempotent.
	if err := k.ResetKey("d"); err != nil {
		t.Fatalf("ResetKey(d) first call error: %v", err)
	}
	if err := k.ResetKey("d"); err != nil {
		t.Fatalf("ResetKey(d) second call error: %v", err)
	}
	if ok, _ := k.KeyExists("d"); ok {
		t.Fatalf("KeyExists(d) after ResetKey = true, wanted false")
	}
}

func TestSetRemove_RoundTripAndIdempotence(t *testing.T) {
	fs := NewMemFilesystem()
	k := openMem(t, fs, 1, Options{Dir: "data"})

	// R2.
	if err := k.SetValue("k", NewI32(7)); err != nil {
		t.Fatal(err)
	}
	v, err := k.GetValue("k")
	if err != nil || !v.Equal(NewI32(7)) {
		t.Fatalf("GetValue(k) = %+v, %v, wanted I32(7), nil", v, err)
	}

	// R3.
	if err := k.RemoveKey("k"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := k.KeyExists("k"); ok {
		t.Fatalf("KeyExists(k) after RemoveKey = true, wanted false")
	}
	if err := k.RemoveKey("k"); err == nil {
		t.Fatalf("RemoveKey(k) twice should fail KeyNotFound the second time")
	}

	// R1.
	if err := k.SetValue("a", NewBool(true)); err != nil {
		t.Fatal(err)
	}
	if err := k.Reset(); err != nil {
		t.Fatal(err)
	}
	if err := k.Reset(); err != nil {
		t.Fatal(err)
	}
	keys, _ := k.GetAllKeys()
	if len(keys) != 0 {
		t.Fatalf("GetAllKeys after Reset;Reset = %v, wanted empty", keys)
	}
}

// P5: defaults fallback.
func TestDefaultsFallback(t *testing.T) {
	fs := NewMemFilesystem()
	seedDocument(t, fs, "data/kvs_1_default", map[string]any{
		"theme": map[string]any{"t": "str", "v": "dark"},
	})
	k := openMem(t, fs, 1, Options{Dir: "data", NeedDefaults: Required})

	v, err := k.GetValue("theme")
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := v.Str(); !ok || s != "dark" {
		t.Fatalf("GetValue(theme) = %+v, wanted Str(\"dark\")", v)
	}

	isDefault, err := k.IsValueDefault("theme")
	if err != nil || !isDefault {
		t.Fatalf("IsValueDefault(theme) = %v, %v, wanted true, nil", isDefault, err)
	}

	// P8: writing back the exact default value still shadows it.
	if err := k.SetValue("theme", NewString("dark")); err != nil {
		t.Fatal(err)
	}
	isDefault, err = k.IsValueDefault("theme")
	if err != nil || isDefault {
		t.Fatalf("IsValueDefault(theme) after explicit write = %v, %v, wanted false, nil", isDefault, err)
	}
}

// P6: lock visibility — a held lock fails every other call with
// MutexLockFailed and leaves state unchanged.
func TestLockVisibility(t *testing.T) {
	fs := NewMemFilesystem()
	k := openMem(t, fs, 1, Options{Dir: "data"})
	if err := k.SetValue("k", NewI32(1)); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	release := make(chan struct{})
	k.mu.Lock()
	go func() {
		defer wg.Done()
		<-release
		k.mu.Unlock()
	}()

	_, err := k.GetValue("k")
	var ke *Error
	if !errors.As(err, &ke) || ke.Kind != ErrMutexLockFailed {
		t.Fatalf("GetValue while locked = %v, wanted MutexLockFailed", err)
	}
	if err := k.SetValue("k", NewI32(2)); !errors.As(err, &ke) || ke.Kind != ErrMutexLockFailed {
		t.Fatalf("SetValue while locked = %v, wanted MutexLockFailed", err)
	}

	close(release)
	wg.Wait()

	v, err := k.GetValue("k")
	if err != nil || !v.Equal(NewI32(1)) {
		t.Fatalf("GetValue(k) after unlock = %+v, %v, wanted I32(1), nil (state must be unchanged)", v, err)
	}
}

// P7: maximum element count (spec_full.md §6.1).
func TestMaxElements_QuotaExceeded(t *testing.T) {
	fs := NewMemFilesystem()
	k := openMem(t, fs, 1, Options{Dir: "data", MaxElements: 2})

	if err := k.SetValue("a", NewI32(1)); err != nil {
		t.Fatal(err)
	}
	if err := k.SetValue("b", NewI32(2)); err != nil {
		t.Fatal(err)
	}
	err := k.SetValue("c", NewI32(3))
	var ke *Error
	if !errors.As(err, &ke) || ke.Kind != ErrQuotaExceeded {
		t.Fatalf("SetValue past max = %v, wanted QuotaExceeded", err)
	}
	if ok, _ := k.KeyExists("c"); ok {
		t.Fatalf("KeyExists(c) after rejected SetValue = true, wanted false")
	}

	// Overwriting an existing key never fails on this account.
	if err := k.SetValue("a", NewI32(99)); err != nil {
		t.Fatalf("SetValue overwrite at capacity error: %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write(any) ([]byte, error) { return nil, errors.New("writer failure") }

func TestClose_TerminalFlushSwallowsError(t *testing.T) {
	fs := NewMemFilesystem()
	// The writer always fails, so the terminal flush inside Close fails.
	k := openMem(t, fs, 1, Options{Dir: "data", Writer: failingWriter{}})
	if err := k.SetFlushOnExit(true); err != nil {
		t.Fatal(err)
	}
	if err := k.SetValue("a", NewI32(1)); err != nil {
		t.Fatal(err)
	}
	if err := k.Close(); err != nil {
		t.Fatalf("Close() = %v, wanted nil (terminal flush errors are swallowed)", err)
	}
}

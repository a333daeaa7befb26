package kvs

import "slices"

// GetValue returns kvs[key] if present, else default_values[key] if
// present, else ErrKeyNotFound.
func (k *Kvs) GetValue(key string) (KvsValue, error) {
	if !k.mu.TryLock() {
		return KvsValue{}, kvsErrf(ErrMutexLockFailed, "get_value", key, nil)
	}
	defer k.mu.Unlock()

	if v, ok := k.kvs[key]; ok {
		return v, nil
	}
	if v, ok := k.defaultValues[key]; ok {
		return v, nil
	}
	return KvsValue{}, kvsErrf(ErrKeyNotFound, "get_value", key, nil)
}

// GetDefaultValue returns default_values[key], or ErrKeyNotFound if absent.
func (k *Kvs) GetDefaultValue(key string) (KvsValue, error) {
	if !k.mu.TryLock() {
		return KvsValue{}, kvsErrf(ErrMutexLockFailed, "get_default_value", key, nil)
	}
	defer k.mu.Unlock()

	if v, ok := k.defaultValues[key]; ok {
		return v, nil
	}
	return KvsValue{}, kvsErrf(ErrKeyNotFound, "get_default_value", key, nil)
}

// HasDefaultValue reports whether key has a default; infallible beyond the
// lock itself.
func (k *Kvs) HasDefaultValue(key string) (bool, error) {
	if !k.mu.TryLock() {
		return false, kvsErrf(ErrMutexLockFailed, "has_default_value", key, nil)
	}
	defer k.mu.Unlock()

	_, ok := k.defaultValues[key]
	return ok, nil
}

// IsValueDefault reports whether the value currently served for key is the
// default because nothing has been explicitly written: true if key is
// absent from the live map but present in defaults, false if present in
// the live map, ErrKeyNotFound if absent from both. Mirrors
// original_source/kvs/src/lib.rs's is_value_default — a plain membership
// check, not a value comparison, so writing back the exact default value
// still shadows it (spec_full.md P8).
func (k *Kvs) IsValueDefault(key string) (bool, error) {
	if !k.mu.TryLock() {
		return false, kvsErrf(ErrMutexLockFailed, "is_value_default", key, nil)
	}
	defer k.mu.Unlock()

	if _, ok := k.kvs[key]; ok {
		return false, nil
	}
	if _, ok := k.defaultValues[key]; ok {
		return true, nil
	}
	return false, kvsErrf(ErrKeyNotFound, "is_value_default", key, nil)
}

// KeyExists checks kvs only; defaults are not "existing" keys in this
// sense.
func (k *Kvs) KeyExists(key string) (bool, error) {
	if !k.mu.TryLock() {
		return false, kvsErrf(ErrMutexLockFailed, "key_exists", key, nil)
	}
	defer k.mu.Unlock()

	_, ok := k.kvs[key]
	return ok, nil
}

// GetAllKeys enumerates kvs, sorted lexically so the sequence is stable
// across calls without an intervening mutation — Go's map iteration order
// is randomized per range and cannot be relied on for that.
func (k *Kvs) GetAllKeys() ([]string, error) {
	if !k.mu.TryLock() {
		return nil, kvsErrf(ErrMutexLockFailed, "get_all_keys", "", nil)
	}
	defer k.mu.Unlock()

	keys := make([]string, 0, len(k.kvs))
	for key := range k.kvs {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

// SetValue inserts or overwrites key. If key is not already present and
// maxElements > 0, inserting it past maxElements fails ErrQuotaExceeded
// without mutating kvs (spec_full.md §6.1); overwriting an existing key
// never fails on this account.
func (k *Kvs) SetValue(key string, value KvsValue) error {
	if !k.mu.TryLock() {
		return kvsErrf(ErrMutexLockFailed, "set_value", key, nil)
	}
	defer k.mu.Unlock()

	if _, exists := k.kvs[key]; !exists && k.maxElements > 0 && len(k.kvs) >= k.maxElements {
		return kvsErrf(ErrQuotaExceeded, "set_value", key, nil)
	}
	k.kvs[key] = value
	return nil
}

// RemoveKey removes key from kvs; ErrKeyNotFound if absent.
func (k *Kvs) RemoveKey(key string) error {
	if !k.mu.TryLock() {
		return kvsErrf(ErrMutexLockFailed, "remove_key", key, nil)
	}
	defer k.mu.Unlock()

	if _, ok := k.kvs[key]; !ok {
		return kvsErrf(ErrKeyNotFound, "remove_key", key, nil)
	}
	delete(k.kvs, key)
	return nil
}

// ResetKey requires key to be present in defaults (else
// ErrKeyDefaultNotFound); it removes key from kvs if present, idempotently
// succeeding if already absent.
func (k *Kvs) ResetKey(key string) error {
	if !k.mu.TryLock() {
		return kvsErrf(ErrMutexLockFailed, "reset_key", key, nil)
	}
	defer k.mu.Unlock()

	if _, ok := k.defaultValues[key]; !ok {
		return kvsErrf(ErrKeyDefaultNotFound, "reset_key", key, nil)
	}
	delete(k.kvs, key)
	return nil
}

// Reset clears kvs.
func (k *Kvs) Reset() error {
	if !k.mu.TryLock() {
		return kvsErrf(ErrMutexLockFailed, "reset", "", nil)
	}
	defer k.mu.Unlock()

	k.kvs = make(map[string]KvsValue)
	return nil
}

// SetFlushOnExit configures whether Close attempts a terminal flush.
func (k *Kvs) SetFlushOnExit(flush bool) error {
	if !k.mu.TryLock() {
		return kvsErrf(ErrMutexLockFailed, "set_flush_on_exit", "", nil)
	}
	defer k.mu.Unlock()

	k.flushOnExit = flush
	return nil
}

// Close releases the instance. If flush_on_exit is true, a terminal flush
// is attempted; its error, if any, is logged but never surfaced, and Close
// never panics (spec.md §3 lifecycle rule).
func (k *Kvs) Close() error {
	k.mu.Lock()
	flush := k.flushOnExit
	k.mu.Unlock()

	if !flush {
		return nil
	}
	if err := k.Flush(); err != nil {
		k.logger.Error("terminal flush failed", "instance", uint32(k.instanceID), "err", err)
	}
	return nil
}

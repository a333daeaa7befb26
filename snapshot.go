package kvs

// SnapshotMaxCount returns MaxSnapshots.
func (k *Kvs) SnapshotMaxCount() int {
	return MaxSnapshots
}

// SnapshotCount returns the largest contiguous i in {1..MaxSnapshots} for
// which "_i.json" exists, or 0 if none. Does not take the instance lock —
// it only probes the filesystem, mirroring
// original_source/src/cpp/src/kvs.cpp's const snapshot_count.
func (k *Kvs) SnapshotCount() (int, error) {
	return k.snapshotCountLocked()
}

func (k *Kvs) snapshotCountLocked() (int, error) {
	count := 0
	for i := 1; i <= MaxSnapshots; i++ {
		path := k.snapshotJSONPath(i)
		exists, err := k.fs.Exists(path)
		if err != nil {
			return 0, kvsErrf(ErrPhysicalStorageFailure, "snapshot_count", path, err)
		}
		if !exists {
			break
		}
		count = i
	}
	return count, nil
}

// rotateSnapshotsLocked shifts "_0" to "_1", "_1" to "_2", ...,
// "_(MaxSnapshots-1)" to "_MaxSnapshots", tolerating a missing source at
// any step. Renaming onto an existing destination overwrites it, so the
// slot that previously occupied "_MaxSnapshots" is silently dropped — this
// is the net effect spec.md §4.4 describes as "delete if i+1 exceeds the
// bound", achieved here the way
// original_source/src/cpp/src/kvs.cpp::snapshot_rotate does it: one
// uniform loop, no separate delete branch. Must be called with the
// instance lock already held.
func (k *Kvs) rotateSnapshotsLocked() error {
	for idx := MaxSnapshots; idx >= 1; idx-- {
		oldHash, newHash := k.snapshotHashPath(idx-1), k.snapshotHashPath(idx)
		oldJSON, newJSON := k.snapshotJSONPath(idx-1), k.snapshotJSONPath(idx)

		k.logger.Info("rotating snapshot", "from", oldJSON, "to", newJSON)

		if err := k.renameIfExists(oldHash, newHash); err != nil {
			return err
		}
		if err := k.renameIfExists(oldJSON, newJSON); err != nil {
			return err
		}
	}
	return nil
}

func (k *Kvs) renameIfExists(oldpath, newpath string) error {
	exists, err := k.fs.Exists(oldpath)
	if err != nil {
		return kvsErrf(ErrPhysicalStorageFailure, "snapshot_rotate", oldpath, err)
	}
	if !exists {
		return nil
	}
	if err := k.fs.Rename(oldpath, newpath); err != nil {
		return kvsErrf(ErrPhysicalStorageFailure, "snapshot_rotate", oldpath, err)
	}
	return nil
}

// SnapshotRestore replaces the live map with the contents of snapshot id.
// id==0 or id beyond the current snapshot count fails ErrInvalidSnapshotId.
// Defaults are untouched.
func (k *Kvs) SnapshotRestore(id SnapshotId) error {
	if !k.mu.TryLock() {
		return kvsErrf(ErrMutexLockFailed, "snapshot_restore", k.prefix, nil)
	}
	defer k.mu.Unlock()

	count, err := k.snapshotCountLocked()
	if err != nil {
		return err
	}
	if id == 0 || int(id) > count {
		return kvsErrf(ErrInvalidSnapshotId, "snapshot_restore", k.prefix, nil)
	}

	values, err := k.openJSON(k.snapshotPrefix(int(id)), Required)
	if err != nil {
		return err
	}
	k.kvs = values
	return nil
}

// GetKvsFilename returns the path of snapshot id's document, or
// ErrFileNotFound if it does not exist.
func (k *Kvs) GetKvsFilename(id SnapshotId) (string, error) {
	path := k.snapshotJSONPath(int(id))
	exists, err := k.fs.Exists(path)
	if err != nil {
		return "", kvsErrf(ErrPhysicalStorageFailure, "get_kvs_filename", path, err)
	}
	if !exists {
		return "", kvsErrf(ErrFileNotFound, "get_kvs_filename", path, nil)
	}
	return path, nil
}

// GetHashFilename returns the path of snapshot id's integrity tag, or
// ErrFileNotFound if it does not exist.
func (k *Kvs) GetHashFilename(id SnapshotId) (string, error) {
	path := k.snapshotHashPath(int(id))
	exists, err := k.fs.Exists(path)
	if err != nil {
		return "", kvsErrf(ErrPhysicalStorageFailure, "get_hash_filename", path, err)
	}
	if !exists {
		return "", kvsErrf(ErrFileNotFound, "get_hash_filename", path, nil)
	}
	return path, nil
}

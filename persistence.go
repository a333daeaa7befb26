package kvs

import "fmt"

func (k *Kvs) currentJSONPath() string { return k.snapshotJSONPath(0) }
func (k *Kvs) currentHashPath() string { return k.snapshotHashPath(0) }

func (k *Kvs) snapshotJSONPath(i int) string {
	return fmt.Sprintf("%s_%d.json", k.prefix, i)
}

func (k *Kvs) snapshotHashPath(i int) string {
	return fmt.Sprintf("%s_%d.hash", k.prefix, i)
}

func (k *Kvs) snapshotPrefix(i int) string {
	return fmt.Sprintf("%s_%d", k.prefix, i)
}

// Flush publishes the in-memory map to "<prefix>_0.json"/".hash", rotating
// any existing current document into slot 1 first. The whole operation —
// encode, rotate, write — runs under a single lock acquisition to keep
// transitions linearizable (spec_full.md §5).
func (k *Kvs) Flush() error {
	if !k.mu.TryLock() {
		return kvsErrf(ErrMutexLockFailed, "flush", k.prefix, nil)
	}
	defer k.mu.Unlock()

	root, err := encodeDocument(k.kvs)
	if err != nil {
		return err
	}

	buf, err := k.writer.Write(root)
	if err != nil {
		return kvsErrf(ErrJsonGeneratorError, "flush", k.prefix, err)
	}

	exists, err := k.fs.Exists(k.currentJSONPath())
	if err != nil {
		return kvsErrf(ErrPhysicalStorageFailure, "flush", k.currentJSONPath(), err)
	}
	if exists {
		if err := k.rotateSnapshotsLocked(); err != nil {
			return err
		}
	}

	return k.writeJSONData(buf)
}

// writeJSONData writes the current document and its integrity tag, in that
// order: the hash is written last so a reader hitting a half-written pair
// detects a checksum mismatch rather than trusting stale data.
func (k *Kvs) writeJSONData(buf []byte) error {
	jsonPath := k.currentJSONPath()
	dir := parentDir(jsonPath)
	if dir != "" {
		if err := k.fs.MkdirAll(dir); err != nil {
			return kvsErrf(ErrPhysicalStorageFailure, "flush", dir, err)
		}
	}

	if err := k.fs.WriteFile(jsonPath, buf); err != nil {
		return kvsErrf(ErrPhysicalStorageFailure, "flush", jsonPath, err)
	}

	tag := adler32Tag(buf)
	hashPath := k.currentHashPath()
	if err := k.fs.WriteFile(hashPath, tag[:]); err != nil {
		return kvsErrf(ErrPhysicalStorageFailure, "flush", hashPath, err)
	}

	k.logger.Info("flushed kvs instance", "instance", uint32(k.instanceID), "keys", len(k.kvs))
	return nil
}

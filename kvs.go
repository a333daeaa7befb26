package kvs

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
)

// MaxSnapshots is the bounded ring size for previous committed versions
// (spec.md §4.4's KVS_MAX_SNAPSHOTS).
const MaxSnapshots = 3

// Kvs is a single persistent key-value store instance. It owns one mutex
// guarding its in-memory maps and all filesystem transitions on its own
// files; every mutating/observing method uses try-lock and fails
// ErrMutexLockFailed rather than blocking when the lock is held elsewhere
// (spec.md §5).
type Kvs struct {
	instanceID InstanceId
	dir        string
	prefix     string

	mu            sync.Mutex
	kvs           map[string]KvsValue
	defaultValues map[string]KvsValue

	flushOnExit bool
	maxElements int

	fs     Filesystem
	parser JsonParser
	writer JsonWriter
	logger *slog.Logger
}

// Open opens (or creates, per need) the instance identified by id under
// opt.Dir, loading defaults and the current document. flushOnExit starts
// true; use SetFlushOnExit to change it.
func Open(id InstanceId, opt Options) (*Kvs, error) {
	dir := opt.Dir
	if dir == "" {
		dir = "./"
	}

	fsys := opt.Filesystem
	if fsys == nil {
		fsys = NewOsFilesystem()
	}
	parser := opt.Parser
	if parser == nil {
		parser = NewJSONCodec()
	}
	writer := opt.Writer
	if writer == nil {
		writer = NewJSONCodec()
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	prefix := filepath.Join(dir, fmt.Sprintf("kvs_%d", uint32(id)))

	k := &Kvs{
		instanceID:  id,
		dir:         dir,
		prefix:      prefix,
		fs:          fsys,
		parser:      parser,
		writer:      writer,
		logger:      logger,
		maxElements: opt.MaxElements,
		flushOnExit: true,
	}

	defaults, err := k.openJSON(prefix+"_default", opt.NeedDefaults)
	if err != nil {
		return nil, err
	}
	values, err := k.openJSON(prefix+"_0", opt.NeedKvs)
	if err != nil {
		return nil, err
	}

	k.defaultValues = defaults
	k.kvs = values

	logger.Info("opened kvs instance", "instance", uint32(id), "dir", dir, "max_snapshots", MaxSnapshots)
	return k, nil
}

// openJSON reads, verifies and decodes "<prefix>.json"/".hash". Missing
// ".json" with need==Optional yields an empty map; with need==Required it
// fails ErrKvsFileReadError. Hash verification runs whenever ".json"
// exists, independent of need. Grounded on
// original_source/src/cpp/src/kvs.cpp's open_json.
func (k *Kvs) openJSON(prefix string, need OpenNeed) (map[string]KvsValue, error) {
	jsonPath := prefix + ".json"
	hashPath := prefix + ".hash"

	exists, err := k.fs.Exists(jsonPath)
	if err != nil {
		return nil, kvsErrf(ErrPhysicalStorageFailure, "open", jsonPath, err)
	}
	if !exists {
		if need == Required {
			k.logger.Error("kvs file could not be read", "path", jsonPath)
			return nil, kvsErrf(ErrKvsFileReadError, "open", jsonPath, nil)
		}
		k.logger.Info("kvs file not found, using empty data", "path", jsonPath)
		return map[string]KvsValue{}, nil
	}

	data, err := k.fs.ReadFile(jsonPath)
	if err != nil {
		return nil, kvsErrf(ErrKvsFileReadError, "open", jsonPath, err)
	}

	hashExists, err := k.fs.Exists(hashPath)
	if err != nil {
		return nil, kvsErrf(ErrPhysicalStorageFailure, "open", hashPath, err)
	}
	if !hashExists {
		k.logger.Error("kvs hash file could not be read", "path", hashPath)
		return nil, kvsErrf(ErrKvsHashFileReadError, "open", hashPath, nil)
	}
	hashData, err := k.fs.ReadFile(hashPath)
	if err != nil {
		return nil, kvsErrf(ErrKvsHashFileReadError, "open", hashPath, err)
	}
	wantTag, ok := parseAdler32Tag(hashData)
	if !ok {
		k.logger.Error("kvs hash file has wrong length", "path", hashPath, "len", len(hashData))
		return nil, kvsErrf(ErrKvsHashFileReadError, "open", hashPath, nil)
	}

	gotTag := adler32Checksum(data)
	if gotTag != wantTag {
		k.logger.Error("kvs data corrupted", "json", jsonPath, "hash", hashPath,
			hexAttr("want", hashData))
		return nil, kvsErrf(ErrValidationFailed, "open", jsonPath, nil)
	}

	root, err := k.parser.Parse(data)
	if err != nil {
		return nil, kvsErrf(ErrJsonParserError, "open", jsonPath, err)
	}

	return decodeDocument(root)
}

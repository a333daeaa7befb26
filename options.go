package kvs

import "log/slog"

// InstanceId names a persistent store within a directory; also used in
// on-disk filenames and registry cache keys.
type InstanceId uint32

// SnapshotId identifies a committed version: 0 is the current document,
// 1..MaxSnapshots are successively older snapshots.
type SnapshotId uint

// OpenNeed governs whether a missing document is an error (Required) or
// silently yields an empty map (Optional) on open.
type OpenNeed bool

const (
	Optional OpenNeed = false
	Required OpenNeed = true
)

// DefaultMaxElements is the element-count bound KvsBuilder applies unless
// overridden (spec.md §6.1 / FEAT_REQ__KVS__maximum_size).
const DefaultMaxElements = 1000

// Options configures Open directly. Zero-value Options opens against "./"
// with both sides Optional, an unbounded element count, afero's OS
// filesystem, and the goccy/go-json codec — KvsBuilder is the friendlier,
// defaulted entry point most callers should use instead.
type Options struct {
	Dir          string
	NeedDefaults OpenNeed
	NeedKvs      OpenNeed
	Logger       *slog.Logger
	// MaxElements bounds the live map's key count; SetValue on a new key
	// that would exceed it fails ErrQuotaExceeded. 0 means unbounded.
	MaxElements int
	Filesystem  Filesystem
	Parser      JsonParser
	Writer      JsonWriter
}

package kvs

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// KvsBuilder is a fluent configurator for Open, deduplicating live
// instances by InstanceId through the package's registry (spec.md §4.5).
// Grounded on original_source/src/cpp/src/kvsbuilder.cpp's setter shape.
type KvsBuilder struct {
	instanceID   InstanceId
	needDefaults bool
	needKvs      bool
	dir          string
	maxElements  int
	logger       *slog.Logger
	filesystem   Filesystem
	parser       JsonParser
	writer       JsonWriter
}

// NewKvsBuilder starts a builder for instanceID with no side effects.
func NewKvsBuilder(instanceID InstanceId) *KvsBuilder {
	return &KvsBuilder{instanceID: instanceID, maxElements: DefaultMaxElements}
}

func (b *KvsBuilder) NeedDefaultsFlag(flag bool) *KvsBuilder {
	b.needDefaults = flag
	return b
}

func (b *KvsBuilder) NeedKvsFlag(flag bool) *KvsBuilder {
	b.needKvs = flag
	return b
}

func (b *KvsBuilder) Dir(dir string) *KvsBuilder {
	b.dir = dir
	return b
}

// MaxElements overrides DefaultMaxElements; 0 means unbounded.
func (b *KvsBuilder) MaxElements(n int) *KvsBuilder {
	b.maxElements = n
	return b
}

func (b *KvsBuilder) Logger(logger *slog.Logger) *KvsBuilder {
	b.logger = logger
	return b
}

func (b *KvsBuilder) Filesystem(fs Filesystem) *KvsBuilder {
	b.filesystem = fs
	return b
}

func (b *KvsBuilder) Parser(p JsonParser) *KvsBuilder {
	b.parser = p
	return b
}

func (b *KvsBuilder) Writer(w JsonWriter) *KvsBuilder {
	b.writer = w
	return b
}

// Build normalizes an empty dir to "./" and returns a shared, ref-counted
// Kvs: a cache hit on the registry increments the refcount and returns the
// existing instance, a cache miss opens a fresh one per spec.md §4.5.
func (b *KvsBuilder) Build() (*SharedKvs, error) {
	dir := b.dir
	if dir == "" {
		dir = "./"
	}

	return Registry.acquire(b.instanceID, func() (*Kvs, error) {
		return Open(b.instanceID, Options{
			Dir:          dir,
			NeedDefaults: needFlag(b.needDefaults),
			NeedKvs:      needFlag(b.needKvs),
			MaxElements:  b.maxElements,
			Logger:       b.logger,
			Filesystem:   b.filesystem,
			Parser:       b.parser,
			Writer:       b.writer,
		})
	})
}

func needFlag(required bool) OpenNeed {
	if required {
		return Required
	}
	return Optional
}

// SharedKvs is a registry-backed handle to a Kvs. Ownership is by strongly
// referenced handle, not by the registry (spec.md §9 design note): the Kvs
// outlives the registry entry for as long as any SharedKvs referencing it
// hasn't called Release.
type SharedKvs struct {
	*Kvs
	id       InstanceId
	released bool
}

// Release decrements the instance's reference count; at zero it is removed
// from the registry and, if flush_on_exit is set, terminally flushed.
// Calling Release more than once is a no-op.
func (s *SharedKvs) Release() {
	if s.released {
		return
	}
	s.released = true
	Registry.release(s.id)
}

type registryEntry struct {
	kvs      *Kvs
	refCount int
	opened   time.Time
}

// KvsRegistry is the process-wide cache mapping InstanceId to a live Kvs
// (spec.md §4.5/I4). Generalizes andreyvit-edb/db.go's txns []*Tx +
// txnsLock tracked-list-under-mutex idiom from "open transactions on one
// DB" to "live instances across the process".
type KvsRegistry struct {
	mu      sync.Mutex
	entries map[InstanceId]*registryEntry
}

// Registry is the package-wide KvsRegistry that KvsBuilder.Build consults.
var Registry = &KvsRegistry{entries: make(map[InstanceId]*registryEntry)}

func (r *KvsRegistry) acquire(id InstanceId, open func() (*Kvs, error)) (*SharedKvs, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		e.refCount++
		return &SharedKvs{Kvs: e.kvs, id: id}, nil
	}

	k, err := open()
	if err != nil {
		return nil, err
	}
	r.entries[id] = &registryEntry{kvs: k, refCount: 1, opened: time.Now()}
	return &SharedKvs{Kvs: k, id: id}, nil
}

func (r *KvsRegistry) release(id InstanceId) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.refCount--
	if e.refCount > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.entries, id)
	r.mu.Unlock()

	_ = e.kvs.Close()
}

// ClearCache evicts every registry entry immediately, regardless of
// outstanding reference counts, flushing each per flush_on_exit first.
// Exposed per spec.md §9's "explicit clear_cache()" preference over the
// source's idiosyncratic "last builder destruction clears the cache".
func (r *KvsRegistry) ClearCache() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[InstanceId]*registryEntry)
	r.mu.Unlock()

	for _, e := range entries {
		_ = e.kvs.Close()
	}
}

// DescribeLiveInstances formats every registry entry with its reference
// count and age, mirroring andreyvit-edb/db.go's DescribeOpenTxns for
// diagnosing instances nobody Release()d.
func (r *KvsRegistry) DescribeLiveInstances() string {
	r.mu.Lock()
	ids := make([]InstanceId, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	entries := r.entries
	r.mu.Unlock()

	if len(ids) == 0 {
		return "NO LIVE INSTANCES"
	}
	slices.Sort(ids)

	now := time.Now()
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d LIVE INSTANCES:\n", len(ids))
	for _, id := range ids {
		e := entries[id]
		fmt.Fprintf(&buf, "\n---\ninstance %d, %d ref(s), open for %s\n",
			uint32(id), e.refCount, now.Sub(e.opened).Round(time.Millisecond))
	}
	return buf.String()
}

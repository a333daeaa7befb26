/*
Package kvs implements a persistent, per-instance key-value store aimed at
middleware/automotive-style persistence: a bounded collection of named
values that survives process restarts, can be restored to earlier committed
versions, and falls back to a separate set of compiled-in defaults when a
key has not been explicitly written.

We implement:

1. KvsValue, a tagged-union value model with lossless round-trip
serialization to a JSON-shaped document.

2. Kvs, the persistence engine: open/parse/verify, flush (write document +
integrity tag), and snapshot rotation/restore.

3. KvsBuilder and KvsRegistry, a fluent configurator that deduplicates live
instances by numeric ID within a process.

4. A closed error taxonomy translating filesystem and JSON-codec failures
into fixed domain error kinds.

# Technical Details

**On-disk layout.**
Each instance owns a filename prefix "<dir>/kvs_<id>". The current document
lives at "<prefix>_0.json" with its integrity tag at "<prefix>_0.hash";
snapshots 1..MaxSnapshots live at "<prefix>_<i>.json"/".hash", "_1"
being the most recently rotated-out current version. Defaults, if present,
live at "<prefix>_default.json"/".hash" and are never written to by this
package.

**Integrity tag.**
Every ".json" file is paired with a ".hash" file holding the big-endian
4-byte Adler-32 checksum of the ".json" bytes. The hash is written after the
json on flush, so a reader that observes a partially written pair detects
it as a checksum mismatch rather than a parse error.

## Document encoding

**Document**: a JSON object whose top-level keys are this instance's live
key names, and whose values are tagged nodes.

**Tagged node**: {"t": <tag>, "v": <payload>} where tag is one of
null|bool|i32|u32|i64|u64|f64|str|arr|obj. Payload shape follows the tag:
booleans/numbers/strings map directly to their JSON counterpart, arr is a
JSON list of tagged nodes, obj is a JSON object of tagged nodes.

**Snapshot rotation**: flush, when a current document already exists,
shifts "_0" to "_1", "_1" to "_2", and so on up to MaxSnapshots,
silently dropping whatever occupied the top slot.
*/
package kvs

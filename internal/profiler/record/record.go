// Package record implements the profiler's activation-record model: the
// per-(function, parent) interned statistics object (C2) and the
// move-to-front chained hashtable that interns them (C3).
package record

import (
	"hash/fnv"
	"reflect"
	"strings"

	"github.com/marcin-radoszewski/viroprof/internal/profiler/measure"
)

// Reserved function/activation ids, per the profiler's data model. These
// are never produced by IDStrategy and are always present with literal
// display names.
const (
	RootID    uint64 = 0
	MainID    uint64 = 1
	UnknownID uint64 = 2
)

// FunctionInfo captures everything about a function needed for reporting.
// Name and Source are sanitized, profiler-owned copies: the embedding
// language's strings may be collected or reused by its own GC, so they
// must never be retained by reference.
type FunctionInfo struct {
	Name            string
	Source          string
	What            string // "user", "native", or "main"
	LineDefined     int
	LastLineDefined int
	Upvalues        int
	IsVararg        bool
	IsNative        bool
	Ignored         bool
}

// Record is one interned (fid, pid) activation. Node is the function's own
// self time/memory; Path is self+subtree. Lines, when non-nil, is a
// frequency vector indexed by currentLine-LineDefined.
type Record struct {
	ID         int
	FuncID     uint64
	ParentID   uint64
	ParentLine int
	Info       FunctionInfo
	Node       measure.Unit
	Path       measure.Unit
	Count      int64
	Lines      []int64

	next *Record // hashtable chain link; unused once popped from the table
}

// Sanitize replaces every "--" with a single space and escapes
// quote/backslash, so the string is always safe to re-emit inside a quoted
// textual report format.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "--", " ")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}

// Update fills in (or refreshes) a record's function-info fields. Tail-call
// paths may observe a record before its defining name is known, so Update
// is safe to call more than once; later non-empty values win.
func (r *Record) Update(info FunctionInfo) {
	info.Name = Sanitize(info.Name)
	info.Source = Sanitize(info.Source)
	if info.Name != "" {
		r.Info.Name = info.Name
	}
	if info.Source != "" {
		r.Info.Source = info.Source
	}
	r.Info.What = info.What
	r.Info.LineDefined = info.LineDefined
	r.Info.LastLineDefined = info.LastLineDefined
	r.Info.Upvalues = info.Upvalues
	r.Info.IsVararg = info.IsVararg
	r.Info.IsNative = info.IsNative
	r.Info.Ignored = info.Ignored
	if r.Lines == nil && info.LastLineDefined >= info.LineDefined && info.LineDefined > 0 {
		r.Lines = make([]int64, info.LastLineDefined-info.LineDefined+1)
	}
}

// BumpLine increments the frequency vector at the slot for currentLine, if
// the record has one allocated and the line falls in range.
func (r *Record) BumpLine(currentLine int) {
	if r.Lines == nil {
		return
	}
	idx := currentLine - r.Info.LineDefined
	if idx < 0 || idx >= len(r.Lines) {
		return
	}
	r.Lines[idx]++
}

// IDStrategy derives a stable function id for a given name/source/line
// triple. ByHash is required when the embedding language's GC may relocate
// closures (no stable pointer); ByPointer is cheaper when it may not.
type IDStrategy int

const (
	ByPointer IDStrategy = iota
	ByHash
)

// HashFuncID derives a fid by hashing (name, shortSource, lineDefined).
// Used by the ByHash strategy; under ByPointer the profiler derives every
// fid, native functions included, with IdentityFuncID instead.
func HashFuncID(name, shortSource string, lineDefined int) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(shortSource))
	h.Write([]byte{0})
	h.Write([]byte{byte(lineDefined), byte(lineDefined >> 8), byte(lineDefined >> 16), byte(lineDefined >> 24)})
	return h.Sum64()
}

// IdentityFuncID derives a fid from a function value's pointer identity,
// for ByPointer-strategy hosts whose closures have a stable address for
// their lifetime (unlike a host with a relocating GC, which must intern by
// content instead — see HashFuncID). fn must be a pointer; panics
// otherwise, same as misusing reflect.Value.Pointer() directly.
func IdentityFuncID(fn any) uint64 {
	return uint64(reflect.ValueOf(fn).Pointer())
}

const defaultBuckets = 251

// mix folds (fid XOR pid) down before taking it mod bucketCount, per the
// data model's "cheap mix (shifted XOR fold)" bucket-key rule.
func mix(key uint64) uint64 {
	key ^= key >> 33
	key *= 0xff51afd7ed558ccd
	key ^= key >> 33
	return key
}

// Table is the activation-record hashtable: fixed bucket count (capped at
// 1031 per the data model), separately chained, move-to-front on hit.
type Table struct {
	buckets    []*Record
	bucketMask func(key uint64) int
	nextID     int
	count      int
}

// New creates a table with the given bucket count, capped at 1031; a count
// of zero or less selects the default of 251.
func New(bucketCount int) *Table {
	if bucketCount <= 0 {
		bucketCount = defaultBuckets
	}
	if bucketCount > 1031 {
		bucketCount = 1031
	}
	t := &Table{buckets: make([]*Record, bucketCount), nextID: int(UnknownID) + 1}
	n := bucketCount
	t.bucketMask = func(key uint64) int { return int(mix(key) % uint64(n)) }
	return t
}

// Get looks up (fid, pid), moving the hit to the head of its chain. Returns
// nil if not interned yet.
func (t *Table) Get(fid, pid uint64) *Record {
	idx := t.bucketMask(fid ^ pid)
	var prev *Record
	for cur := t.buckets[idx]; cur != nil; cur = cur.next {
		if cur.FuncID == fid && cur.ParentID == pid {
			if prev != nil {
				prev.next = cur.next
				cur.next = t.buckets[idx]
				t.buckets[idx] = cur
			}
			return cur
		}
		prev = cur
	}
	return nil
}

// Insert front-inserts a freshly created record into its bucket. Callers
// must call Get first; Insert never dedupes.
func (t *Table) Insert(r *Record) {
	idx := t.bucketMask(r.FuncID ^ r.ParentID)
	r.next = t.buckets[idx]
	t.buckets[idx] = r
	t.count++
}

// NextRecordID returns the next dense record id and advances the counter.
func (t *Table) NextRecordID() int {
	id := t.nextID
	t.nextID++
	return id
}

// GetOrCreate interns (fid, pid), creating a new record via newRecord if
// absent.
func (t *Table) GetOrCreate(fid, pid uint64, parentLine int, newRecord func(id int) *Record) *Record {
	if r := t.Get(fid, pid); r != nil {
		return r
	}
	r := newRecord(t.NextRecordID())
	r.FuncID = fid
	r.ParentID = pid
	r.ParentLine = parentLine
	t.Insert(r)
	return r
}

// ForEach visits every interned record. The callback must not mutate the
// table.
func (t *Table) ForEach(cb func(*Record)) {
	for _, head := range t.buckets {
		for cur := head; cur != nil; cur = cur.next {
			cb(cur)
		}
	}
}

// ClearStatistics zeroes every record's counters while preserving identity
// (id, fid, pid, function info all survive).
func (t *Table) ClearStatistics() {
	t.ForEach(func(r *Record) {
		r.Node = measure.Unit{}
		r.Path = measure.Unit{}
		r.Count = 0
		for i := range r.Lines {
			r.Lines[i] = 0
		}
	})
}

// Len returns the number of interned records.
func (t *Table) Len() int { return t.count }

// Destroy drops every record. Records backed by host user-data are the
// embedder's to free; this table only ever holds profiler-owned ones, so
// Destroy is a plain clear.
func (t *Table) Destroy() {
	for i := range t.buckets {
		t.buckets[i] = nil
	}
	t.count = 0
}

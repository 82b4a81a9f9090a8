package record

import "testing"

func TestSanitizeReplacesCommentLeaderAndQuotes(t *testing.T) {
	got := Sanitize(`say "hi" -- greeting \ done`)
	if got != `say \"hi\"   greeting \\ done` {
		t.Errorf("Sanitize() = %q", got)
	}
}

func TestGetOrCreateInternsExactlyOnce(t *testing.T) {
	tbl := New(64)
	calls := 0
	newRecord := func(id int) *Record { calls++; return &Record{ID: id} }

	r1 := tbl.GetOrCreate(10, RootID, 0, newRecord)
	r2 := tbl.GetOrCreate(10, RootID, 0, newRecord)

	if r1 != r2 {
		t.Fatal("GetOrCreate returned distinct records for the same (fid,pid)")
	}
	if calls != 1 {
		t.Errorf("constructor called %d times, want 1", calls)
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
}

func TestGetMovesHitToFront(t *testing.T) {
	tbl := New(1) // force every key into the same bucket
	newRecord := func(id int) *Record { return &Record{ID: id} }

	first := tbl.GetOrCreate(1, 0, 0, newRecord)
	_ = tbl.GetOrCreate(2, 0, 0, newRecord)

	if got := tbl.Get(1, 0); got != first {
		t.Fatal("move-to-front lookup failed to find the earlier-inserted record")
	}
	if head := tbl.buckets[0]; head.FuncID != 1 {
		t.Errorf("head of bucket chain has FuncID %d, want 1 (moved to front)", head.FuncID)
	}
}

func TestClearStatisticsPreservesIdentity(t *testing.T) {
	tbl := New(32)
	r := tbl.GetOrCreate(5, RootID, 0, func(id int) *Record { return &Record{ID: id} })
	r.Update(FunctionInfo{Name: "f", LineDefined: 1, LastLineDefined: 3})
	r.Count = 7
	r.Node.Time = 100

	tbl.ClearStatistics()

	if r.Count != 0 || r.Node.Time != 0 {
		t.Errorf("ClearStatistics did not zero counters: count=%d time=%d", r.Count, r.Node.Time)
	}
	if tbl.Get(5, RootID) != r {
		t.Error("ClearStatistics should preserve the record identity")
	}
	if r.Info.Name != "f" {
		t.Error("ClearStatistics should preserve function info")
	}
}

func TestHashFuncIDStableAndDistinguishing(t *testing.T) {
	a := HashFuncID("foo", "main.viro", 10)
	b := HashFuncID("foo", "main.viro", 10)
	c := HashFuncID("bar", "main.viro", 10)
	if a != b {
		t.Error("HashFuncID not stable for identical inputs")
	}
	if a == c {
		t.Error("HashFuncID collided for distinct names")
	}
}

func TestBumpLineIndexesFromLineDefined(t *testing.T) {
	r := &Record{}
	r.Update(FunctionInfo{LineDefined: 10, LastLineDefined: 12})
	r.BumpLine(11)
	if r.Lines[1] != 1 {
		t.Errorf("Lines[1] = %d, want 1", r.Lines[1])
	}
}

func TestIdentityFuncIDStableForSamePointer(t *testing.T) {
	type fn struct{ n int }
	v := &fn{n: 1}
	a := IdentityFuncID(v)
	b := IdentityFuncID(v)
	if a != b {
		t.Error("IdentityFuncID not stable across calls for the same pointer")
	}
}

func TestIdentityFuncIDDistinguishesDistinctPointers(t *testing.T) {
	type fn struct{ n int }
	v1 := &fn{n: 1}
	v2 := &fn{n: 2}
	if IdentityFuncID(v1) == IdentityFuncID(v2) {
		t.Error("IdentityFuncID collided for two distinct pointers")
	}
}

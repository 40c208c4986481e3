package driver

import (
	"reflect"
	"testing"

	"regionck/internal/diag"
	"regionck/internal/source"
)

func TestResultCacheRoundTrip(t *testing.T) {
	cache, err := OpenResultCache("regionck-test", t.TempDir())
	if err != nil {
		t.Fatalf("OpenResultCache: %v", err)
	}

	key := HashBytes([]byte("module-bytes"))
	in := &ResultPayload{
		Schema: resultCacheSchemaVersion,
		Module: "demo",
		Diags: []diag.Diagnostic{{
			Severity: diag.SevError,
			Code:     diag.RaceSendYieldsRace,
			Message:  "sending 'job' across an isolation boundary risks a data race with 1 later access",
			Primary:  source.Span{File: 0, Start: 4, End: 5},
			Notes: []diag.Note{{
				Span: source.Span{File: 0, Start: 9, End: 10},
				Msg:  "access can happen concurrently",
			}},
		}},
	}
	if err := cache.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out ResultPayload
	hit, err := cache.Get(key, &out)
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if out.Module != in.Module || len(out.Diags) != 1 {
		t.Fatalf("payload mismatch: %+v", out)
	}
	if !reflect.DeepEqual(out.Diags[0], in.Diags[0]) {
		t.Errorf("diagnostic mismatch: got %+v, want %+v", out.Diags[0], in.Diags[0])
	}
}

func TestResultCacheMiss(t *testing.T) {
	cache, err := OpenResultCache("regionck-test", t.TempDir())
	if err != nil {
		t.Fatalf("OpenResultCache: %v", err)
	}
	var out ResultPayload
	hit, err := cache.Get(HashBytes([]byte("never stored")), &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("unexpected hit")
	}
}

func TestResultCacheSchemaMismatchIsMiss(t *testing.T) {
	cache, err := OpenResultCache("regionck-test", t.TempDir())
	if err != nil {
		t.Fatalf("OpenResultCache: %v", err)
	}
	key := HashBytes([]byte("old"))
	if err := cache.Put(key, &ResultPayload{Schema: resultCacheSchemaVersion + 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var out ResultPayload
	hit, err := cache.Get(key, &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("stale schema must read as a miss")
	}
}

func TestResultCacheNilReceiver(t *testing.T) {
	var cache *ResultCache
	if err := cache.Put(Digest{}, &ResultPayload{}); err != nil {
		t.Errorf("nil Put: %v", err)
	}
	hit, err := cache.Get(Digest{}, &ResultPayload{})
	if hit || err != nil {
		t.Errorf("nil Get: hit=%v err=%v", hit, err)
	}
	if err := cache.DropAll(); err != nil {
		t.Errorf("nil DropAll: %v", err)
	}
}

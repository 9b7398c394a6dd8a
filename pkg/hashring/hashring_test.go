package hashring

import "testing"

func TestBucketIsStableForSameKey(t *testing.T) {
	r := New(16, 64)
	keys := []string{"Host!h1", "Service!h1!ping", "Zone!dmz", "Endpoint!e1"}
	for _, k := range keys {
		first := r.Bucket(k)
		for i := 0; i < 10; i++ {
			if got := r.Bucket(k); got != first {
				t.Errorf("Bucket(%q) = %d on call %d, want %d (stable)", k, got, i, first)
			}
		}
	}
}

func TestBucketWithinRange(t *testing.T) {
	r := New(8, 32)
	for i := 0; i < 500; i++ {
		key := fmtKey(i)
		b := r.Bucket(key)
		if b < 0 || b >= r.Buckets() {
			t.Fatalf("Bucket(%q) = %d, want in [0,%d)", key, b, r.Buckets())
		}
	}
}

func TestDistributionCoversMostBuckets(t *testing.T) {
	r := New(16, 64)
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		seen[r.Bucket(fmtKey(i))] = true
	}
	if len(seen) < r.Buckets()-2 {
		t.Errorf("only %d/%d buckets received any key", len(seen), r.Buckets())
	}
}

func fmtKey(i int) string {
	return "Host!h" + string(rune('a'+i%26)) + string(rune('0'+i%10))
}

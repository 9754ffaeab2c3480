package cache

import (
	"context"
	"testing"
	"time"
)

func TestAnalysisKey(t *testing.T) {
	from := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	got := AnalysisKey("AAPL", from, to, "v1")
	want := "analysis:AAPL:2020-01-02:2024-12-31:v1"
	if got != want {
		t.Fatalf("key = %q, want %q", got, want)
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(10))
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var got string
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "v" {
		t.Fatalf("value = %q", got)
	}

	if err := mc.Get(ctx, "missing", &got); err != ErrCacheMiss {
		t.Fatalf("miss error = %v", err)
	}

	if err := mc.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	ok, err := mc.Exists(ctx, "k")
	if err != nil || ok {
		t.Fatalf("deleted key still exists (ok=%v err=%v)", ok, err)
	}
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(10))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "analysis:AAPL:2020-01-02:2024-12-31:v1", 1, time.Minute)
	_ = mc.Set(ctx, "analysis:AAPL:2021-01-02:2024-12-31:v1", 2, time.Minute)
	_ = mc.Set(ctx, "analysis:MSFT:2020-01-02:2024-12-31:v1", 3, time.Minute)

	if err := mc.DeleteByPattern(ctx, AnalysisPattern("AAPL")); err != nil {
		t.Fatalf("DeleteByPattern: %v", err)
	}
	if ok, _ := mc.Exists(ctx, "analysis:AAPL:2020-01-02:2024-12-31:v1", "analysis:AAPL:2021-01-02:2024-12-31:v1"); ok {
		t.Fatal("AAPL runs survived invalidation")
	}
	if ok, _ := mc.Exists(ctx, "analysis:MSFT:2020-01-02:2024-12-31:v1"); !ok {
		t.Fatal("invalidation crossed symbols")
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", 1, time.Minute)
	_ = mc.Set(ctx, "b", 2, time.Minute)
	_ = mc.Set(ctx, "c", 3, time.Minute)

	ok, _ := mc.Exists(ctx, "c")
	if !ok {
		t.Fatal("newest key evicted")
	}
}

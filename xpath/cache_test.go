package xpath_test

import (
	"testing"

	"github.com/midbel/xpath/xdm"
	"github.com/midbel/xpath/xpath"
)

func TestCacheReuse(t *testing.T) {
	cache := xpath.NewCache(0)
	first, err := cache.Get("1 + 1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	again, err := cache.Get("1 + 1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if first != again {
		t.Errorf("same query and context should share one executable")
	}
	if cache.Len() != 1 {
		t.Errorf("want 1 entry, got %d", cache.Len())
	}
	other, err := cache.Get("2 + 2", nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if other == first {
		t.Errorf("different queries should not share an executable")
	}
	if cache.Len() != 2 {
		t.Errorf("want 2 entries, got %d", cache.Len())
	}
}

func TestCacheContextSeparation(t *testing.T) {
	cache := xpath.NewCache(0)
	plain := xpath.NewStaticContext()
	spaced := xpath.NewStaticContext(xpath.WithNamespace("my", "urn:example:fn"))
	collated := xpath.NewStaticContext(xpath.WithCollation(xpath.CollationCaseless))

	first, err := cache.Get("'a' = 'A'", plain)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	second, err := cache.Get("'a' = 'A'", spaced)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	third, err := cache.Get("'a' = 'A'", collated)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if first == second || first == third || second == third {
		t.Errorf("distinct static contexts should compile distinct executables")
	}
	if cache.Len() != 3 {
		t.Errorf("want 3 entries, got %d", cache.Len())
	}
	again, err := cache.Get("'a' = 'A'", xpath.NewStaticContext())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if again != first {
		t.Errorf("equivalent contexts should hit the same entry")
	}
}

func TestCacheRegistryVersion(t *testing.T) {
	cache := xpath.NewCache(0)
	registry := xpath.NewRegistry()
	env := xpath.NewStaticContext(xpath.WithFunctions(registry))

	first, err := cache.Get("count((1, 2))", env)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	again, err := cache.Get("count((1, 2))", env)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if first != again {
		t.Errorf("unchanged registry should hit the same entry")
	}
	registry.Register("urn:example:fn", "noop", 0, func(_ *xpath.DynamicContext, _ []xdm.Sequence) (xdm.Sequence, error) {
		return xdm.NewSequence(), nil
	})
	fresh, err := cache.Get("count((1, 2))", env)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if fresh == first {
		t.Errorf("registering a function should invalidate cached entries")
	}
	if cache.Len() != 2 {
		t.Errorf("want 2 entries, got %d", cache.Len())
	}
}

func TestCacheEviction(t *testing.T) {
	cache := xpath.NewCache(2)
	first, err := cache.Get("1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	second, err := cache.Get("2", nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if _, err := cache.Get("3", nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cache.Len() != 2 {
		t.Errorf("want 2 entries after eviction, got %d", cache.Len())
	}
	kept, err := cache.Get("2", nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if kept != second {
		t.Errorf("recently stored entry should survive eviction")
	}
	recompiled, err := cache.Get("1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if recompiled == first {
		t.Errorf("oldest entry should have been evicted")
	}
}

func TestCacheErrors(t *testing.T) {
	cache := xpath.NewCache(0)
	_, err := cache.Get("1 +", nil)
	if err == nil {
		t.Fatal("error expected for invalid query")
	}
	if got := xpath.CodeOf(err); got != "XPST0003" {
		t.Errorf("want code XPST0003, got %s (%s)", got, err)
	}
	_, err = cache.Get("nosuch()", nil)
	if err == nil {
		t.Fatal("error expected for unknown function")
	}
	if got := xpath.CodeOf(err); got != "XPST0017" {
		t.Errorf("want code XPST0017, got %s (%s)", got, err)
	}
	if cache.Len() != 0 {
		t.Errorf("failed compilations should not be cached, got %d entries", cache.Len())
	}
}

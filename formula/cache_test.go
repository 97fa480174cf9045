package formula

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCache_Program(t *testing.T) {
	c := NewCache()
	compiles := 0

	compile := func(expr string) (Program, error) {
		compiles++

		return Compile(expr)
	}

	first, hit, err := c.Program("1 + 2", compile)
	if err != nil || hit {
		t.Fatalf("Program() = %v, %v, %v; want miss", first, hit, err)
	}

	second, hit, err := c.Program("1 + 2", compile)
	if err != nil || !hit {
		t.Fatalf("Program() = %v, %v, %v; want hit", second, hit, err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached program mismatch (-miss +hit):\n%s", diff)
	}

	if compiles != 1 {
		t.Errorf("compiles = %d, want 1", compiles)
	}

	want := CacheStats{Entries: 1, ParseCount: 1, HitCount: 1}
	if diff := cmp.Diff(want, c.Stats()); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}
}

func TestCache_FailuresNotCached(t *testing.T) {
	c := NewCache()

	for range 2 {
		_, _, err := c.Program("1 +", Compile)
		if !errors.Is(err, ErrParse) {
			t.Fatalf("Program() error = %v, want %v", err, ErrParse)
		}
	}

	if got := c.Stats(); got.Entries != 0 || got.ParseCount != 0 {
		t.Errorf("Stats() = %+v, want empty", got)
	}
}

func TestCache_InsertKeepsFirst(t *testing.T) {
	c := NewCache()

	c.Insert("x", Program{{Kind: OpNumber, Text: "1", Num: 1}})
	c.Insert("x", Program{{Kind: OpNumber, Text: "2", Num: 2}})

	got, ok := c.Lookup("x")
	if !ok || got.String() != "1" {
		t.Errorf("Lookup(x) = %v, %v; want 1", got, ok)
	}

	if _, ok := c.Lookup("y"); ok {
		t.Error("Lookup(y) succeeded")
	}

	if n := c.Stats().Entries; n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
}

func TestCache_HashCollision(t *testing.T) {
	c := NewCache()
	c.hash = func(string) uint64 { return 7 }

	for range 3 {
		for _, expr := range []string{"1 + 2", "3 * 4"} {
			prog, _, err := c.Program(expr, Compile)
			if err != nil {
				t.Fatal(err)
			}

			want, _ := Compile(expr)
			if diff := cmp.Diff(want, prog); diff != "" {
				t.Errorf("Program(%q) aliased another entry (-want +got):\n%s", expr, diff)
			}
		}
	}

	want := CacheStats{Entries: 1, ParseCount: 4, HitCount: 2}
	if diff := cmp.Diff(want, c.Stats()); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}
}

func TestCache_Clear(t *testing.T) {
	c := NewCache()

	for _, expr := range []string{"1", "2", "3"} {
		if _, _, err := c.Program(expr, Compile); err != nil {
			t.Fatal(err)
		}
	}

	c.Clear()

	want := CacheStats{Entries: 0, ParseCount: 3}
	if diff := cmp.Diff(want, c.Stats()); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}

	if _, ok := c.Lookup("1"); ok {
		t.Error("Lookup after Clear succeeded")
	}
}

func TestCache_ZeroValue(t *testing.T) {
	var c Cache

	if _, hit, err := c.Program("4 * 4", Compile); err != nil || hit {
		t.Fatalf("Program() = %v, %v; want miss", hit, err)
	}

	if n := c.Stats().Entries; n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
}

func TestCache_ConcurrentClear(t *testing.T) {
	c := NewCache()

	var wg sync.WaitGroup

	for w := range 4 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range 500 {
				if w == 0 && i%50 == 0 {
					c.Clear()
				}

				prog, _, err := c.Program("2 * 21", Compile)
				if err != nil {
					t.Errorf("Program() error: %v", err)

					return
				}

				if got := prog.String(); got != "2 21 *" {
					t.Errorf("program = %q", got)

					return
				}
			}
		}()
	}

	wg.Wait()

	if n := c.Stats().Entries; n > 1 {
		t.Errorf("entries = %d, want at most 1", n)
	}
}

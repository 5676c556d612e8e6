package symbols

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type mockLister struct {
	symbols []string
	err     error
	delay   time.Duration
	calls   atomic.Int32
}

func (m *mockLister) ListSymbols(ctx context.Context) ([]string, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	return m.symbols, m.err
}

var fallback = []string{"RELIANCE.NS", "TCS.NS", "INFY.NS"}

func manySymbols(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("SYM%03d.NS", i)
	}
	return out
}

func TestUniverse_LoadsOnce(t *testing.T) {
	lister := &mockLister{symbols: []string{"SBIN.NS", "ITC.NS"}}
	u := NewUniverse(lister, fallback)

	if u.Status().Loaded {
		t.Error("universe should load lazily")
	}

	for i := 0; i < 3; i++ {
		if got := u.Symbols(context.Background()); len(got) != 2 {
			t.Errorf("Symbols() = %v", got)
		}
	}

	if lister.calls.Load() != 1 {
		t.Errorf("expected 1 load, got %d", lister.calls.Load())
	}
	if s := u.Status(); !s.Loaded || s.Size != 2 || s.Fallback {
		t.Errorf("Status() = %+v", s)
	}
}

func TestUniverse_ConcurrentFirstCallers(t *testing.T) {
	lister := &mockLister{symbols: manySymbols(50), delay: 20 * time.Millisecond}
	u := NewUniverse(lister, fallback)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := u.Symbols(context.Background()); len(got) != 50 {
				t.Errorf("Symbols() len = %d", len(got))
			}
		}()
	}
	wg.Wait()

	if lister.calls.Load() != 1 {
		t.Errorf("concurrent callers should share one load, got %d", lister.calls.Load())
	}
}

func TestUniverse_FallbackOnError(t *testing.T) {
	lister := &mockLister{err: errors.New("connection refused")}
	u := NewUniverse(lister, fallback)

	got := u.Symbols(context.Background())
	if len(got) != 3 || got[0] != "RELIANCE.NS" || got[2] != "INFY.NS" {
		t.Errorf("Symbols() = %v, want fallback list", got)
	}

	// The fallback is cached; the provider is not asked again
	u.Symbols(context.Background())
	if lister.calls.Load() != 1 {
		t.Errorf("expected 1 load, got %d", lister.calls.Load())
	}
	if s := u.Status(); !s.Fallback || s.Size != 3 {
		t.Errorf("Status() = %+v", s)
	}
}

func TestUniverse_FallbackOnEmptyList(t *testing.T) {
	u := NewUniverse(&mockLister{symbols: []string{}}, fallback)
	if got := u.Symbols(context.Background()); len(got) != 3 {
		t.Errorf("Symbols() = %v, want fallback list", got)
	}

	u = NewUniverse(nil, fallback)
	if got := u.Symbols(context.Background()); len(got) != 3 {
		t.Errorf("nil lister: Symbols() = %v, want fallback list", got)
	}
}

func TestUniverse_FallbackIsCopied(t *testing.T) {
	fb := []string{"A.NS"}
	u := NewUniverse(nil, fb)
	fb[0] = "MUTATED"

	if got := u.Symbols(context.Background()); got[0] != "A.NS" {
		t.Errorf("universe should not alias the fallback slice, got %v", got)
	}
}

func TestUniverse_Search(t *testing.T) {
	lister := &mockLister{symbols: append([]string{"TATAMOTORS.NS", "TCS.NS", "TATASTEEL.NS", "INFY.NS"}, manySymbols(40)...)}
	u := NewUniverse(lister, fallback)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"lowercase query", "tata", 20, []string{"TATAMOTORS.NS", "TATASTEEL.NS"}},
		{"substring", "CS", 20, []string{"TCS.NS"}},
		{"no match", "ZZZ", 20, []string{}},
		{"limit applies", "SYM", 5, manySymbols(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := u.Search(ctx, tt.query, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Search(%q)[%d] = %v, want %v", tt.query, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestUniverse_SearchEmptyQueryReturnsFirst20(t *testing.T) {
	all := manySymbols(30)
	u := NewUniverse(&mockLister{symbols: all}, fallback)

	got := u.Search(context.Background(), "", 0)
	if len(got) != DefaultSearchLimit {
		t.Fatalf("len = %d, want %d", len(got), DefaultSearchLimit)
	}
	if got[0] != all[0] || got[19] != all[19] {
		t.Errorf("expected the first 20 symbols in order, got %v", got)
	}
}

func TestUniverse_Contains(t *testing.T) {
	u := NewUniverse(&mockLister{symbols: []string{"SBIN.NS"}}, fallback)

	if !u.Contains(context.Background(), "sbin.ns") {
		t.Error("Contains should be case-insensitive")
	}
	if u.Contains(context.Background(), "TCS.NS") {
		t.Error("TCS.NS is not in the loaded universe")
	}
}

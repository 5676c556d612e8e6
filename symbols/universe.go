// Package symbols holds the tradable symbol universe used for search.
package symbols

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"stock-analyzer/observability"
	"stock-analyzer/services"
)

// DefaultSearchLimit caps the number of matches returned by Search
const DefaultSearchLimit = 20

// Status describes the loaded universe
type Status struct {
	Loaded   bool `json:"loaded"`
	Size     int  `json:"size"`
	Fallback bool `json:"fallback"`
}

// Universe lazily loads the symbol list once and serves it read-only
// afterwards. A failed load is replaced by the fallback list, which is
// cached like a successful one.
type Universe struct {
	lister   services.SymbolListServiceInterface
	fallback []string
	group    singleflight.Group

	mu             sync.RWMutex
	loaded         bool
	symbols        []string
	fallbackActive bool
}

// NewUniverse creates a Universe backed by lister
func NewUniverse(lister services.SymbolListServiceInterface, fallback []string) *Universe {
	return &Universe{
		lister:   lister,
		fallback: append([]string(nil), fallback...),
	}
}

// Symbols returns every known symbol in source order, loading on first use
func (u *Universe) Symbols(ctx context.Context) []string {
	u.mu.RLock()
	if u.loaded {
		s := u.symbols
		u.mu.RUnlock()
		return s
	}
	u.mu.RUnlock()

	v, _, _ := u.group.Do("load", func() (any, error) {
		return u.load(ctx), nil
	})
	return v.([]string)
}

func (u *Universe) load(ctx context.Context) []string {
	u.mu.RLock()
	if u.loaded {
		s := u.symbols
		u.mu.RUnlock()
		return s
	}
	u.mu.RUnlock()

	// The load is shared by every waiting caller, so one caller giving up must not abort it
	symbols, err := u.fetch(context.WithoutCancel(ctx))
	fallback := false
	if err != nil || len(symbols) == 0 {
		observability.WithComponent("symbols").Warn("symbol list unavailable, using fallback list",
			"error", err,
			"fallback_size", len(u.fallback))
		symbols = append([]string(nil), u.fallback...)
		fallback = true
	} else {
		observability.WithComponent("symbols").Info("symbol list loaded", "size", len(symbols))
	}

	u.mu.Lock()
	u.symbols = symbols
	u.fallbackActive = fallback
	u.loaded = true
	u.mu.Unlock()

	observability.GetMetrics().SetSymbolUniverse(len(symbols), fallback)
	return symbols
}

func (u *Universe) fetch(ctx context.Context) ([]string, error) {
	if u.lister == nil {
		return nil, services.ErrNoData
	}
	return u.lister.ListSymbols(ctx)
}

// Search returns up to limit symbols containing query, case-insensitively,
// in universe order. An empty query matches everything.
func (u *Universe) Search(ctx context.Context, query string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	q := strings.ToUpper(strings.TrimSpace(query))

	matches := make([]string, 0, limit)
	for _, sym := range u.Symbols(ctx) {
		if len(matches) == limit {
			break
		}
		if q == "" || strings.Contains(strings.ToUpper(sym), q) {
			matches = append(matches, sym)
		}
	}
	return matches
}

// Contains reports whether symbol is part of the universe
func (u *Universe) Contains(ctx context.Context, symbol string) bool {
	for _, sym := range u.Symbols(ctx) {
		if strings.EqualFold(sym, symbol) {
			return true
		}
	}
	return false
}

// Status reports whether the universe is loaded and which list it holds
func (u *Universe) Status() Status {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return Status{Loaded: u.loaded, Size: len(u.symbols), Fallback: u.fallbackActive}
}

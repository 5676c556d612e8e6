package scenarios

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"testing"

	"stock-analyzer/e2e"
	"stock-analyzer/e2e/mocks"
)

type symbolsResponse struct {
	Query   string   `json:"query"`
	Symbols []string `json:"symbols"`
	Count   int      `json:"count"`
}

func searchSymbols(t *testing.T, h *e2e.Harness, q string) symbolsResponse {
	t.Helper()

	resp := h.DoRequest(http.MethodGet, "/api/symbols?q="+q, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var out symbolsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

func TestSymbols_LoadedFromEquityList(t *testing.T) {
	harness := e2e.Start(t)

	got := searchSymbols(t, harness, "")
	want := []string{"RELIANCE.NS", "TCS.NS", "INFY.NS", "HDFCBANK.NS", "M&M.NS"}
	if !slices.Equal(got.Symbols, want) {
		t.Errorf("Symbols = %v, want %v", got.Symbols, want)
	}

	t.Run("case-insensitive search", func(t *testing.T) {
		got := searchSymbols(t, harness, "bank")
		if got.Count != 1 || got.Symbols[0] != "HDFCBANK.NS" {
			t.Errorf("unexpected response %+v", got)
		}
	})

	t.Run("list fetched once", func(t *testing.T) {
		searchSymbols(t, harness, "tcs")
		if n := harness.MockServer().CountRequests(mocks.EquityListPath); n != 1 {
			t.Errorf("equity list fetched %d times, want 1", n)
		}
	})

	t.Run("htmx options", func(t *testing.T) {
		resp := harness.DoHTMXRequest(http.MethodGet, "/api/symbols?q=m%26m", "")
		if !strings.Contains(resp.Body.String(), `<option value="M&amp;M.NS">`) {
			t.Errorf("expected option partial, got %s", resp.Body.String())
		}
	})

	t.Run("health reports the loaded list", func(t *testing.T) {
		if s := harness.App().Health().Symbols; !s.Loaded || s.Fallback || s.Size != len(want) {
			t.Errorf("symbols status = %+v", s)
		}
	})
}

func TestSymbols_FallbackWhenListUnavailable(t *testing.T) {
	harness := e2e.Start(t)
	harness.MockServer().SetEquityListStatus(http.StatusForbidden)

	got := searchSymbols(t, harness, "")
	if !slices.Equal(got.Symbols, harness.Config().Symbols.Fallback) {
		t.Errorf("Symbols = %v, want fallback %v", got.Symbols, harness.Config().Symbols.Fallback)
	}

	if s := harness.App().Health().Symbols; !s.Fallback {
		t.Errorf("symbols status = %+v, want fallback", s)
	}

	resp := harness.DoRequest(http.MethodGet, "/", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "RELIANCE.NS") {
		t.Errorf("index should list the fallback symbols, status %d", resp.Code)
	}
}

package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"stock-analyzer/config"
)

const equityListFixture = "SYMBOL,NAME OF COMPANY, SERIES, DATE OF LISTING, PAID UP VALUE, MARKET LOT, ISIN NUMBER, FACE VALUE\n" +
	"20MICRONS,20 Microns Limited,EQ,06-OCT-2008,5,1,INE144J01027,5\n" +
	"RELIANCE,Reliance Industries Limited,EQ,29-NOV-1995,10,1,INE002A01018,10\n" +
	"TCS,Tata Consultancy Services Limited,EQ,25-AUG-2004,1,1,INE467B01029,1\n"

func newTestNSE(t *testing.T, handler http.HandlerFunc) *NSESymbolService {
	t.Helper()
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.NewTestConfig()
	cfg.Symbols.ListURL = server.URL + "/content/equities/EQUITY_L.csv"

	s := NewNSESymbolService(cfg.Symbols, cfg.Provider)
	s.limiter.SetLimit(1000)
	s.limiter.SetBurst(10)
	s.retry = RetryConfig{MaxRetries: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	return s
}

func TestNSESymbolService_ListSymbols(t *testing.T) {
	s := newTestNSE(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/content/equities/EQUITY_L.csv" {
			t.Errorf("unexpected path %v", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(equityListFixture))
	})

	got, err := s.ListSymbols(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"20MICRONS.NS", "RELIANCE.NS", "TCS.NS"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symbol %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNSESymbolService_ListSymbols_HTTPError(t *testing.T) {
	var calls atomic.Int32
	s := newTestNSE(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := s.ListSymbols(context.Background())

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 StatusError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("403 should not be retried, got %d calls", calls.Load())
	}
}

func TestNSESymbolService_ListSymbols_NoURL(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.Symbols.ListURL = ""

	_, err := NewNSESymbolService(cfg.Symbols, cfg.Provider).ListSymbols(context.Background())
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestParseEquityList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		suffix  string
		want    []string
		wantErr error
	}{
		{
			name:   "symbol column not first",
			input:  "NAME,SYMBOL\nInfosys,INFY\nWipro,WIPRO\n",
			suffix: ".NS",
			want:   []string{"INFY.NS", "WIPRO.NS"},
		},
		{
			name:   "byte order mark and blanks",
			input:  "\ufeffSYMBOL,NAME\nSBIN,State Bank\n,Blank\n  ITC ,ITC Ltd\n",
			suffix: ".NS",
			want:   []string{"SBIN.NS", "ITC.NS"},
		},
		{
			name:   "custom suffix",
			input:  "symbol\nHDFCBANK\n",
			suffix: ".BO",
			want:   []string{"HDFCBANK.BO"},
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: ErrNoData,
		},
		{
			name:    "header only",
			input:   "SYMBOL,NAME\n",
			wantErr: ErrNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEquityList(strings.NewReader(tt.input), tt.suffix)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseEquityList_MissingColumn(t *testing.T) {
	_, err := ParseEquityList(strings.NewReader("NAME,SERIES\nFoo,EQ\n"), ".NS")
	if err == nil || !strings.Contains(err.Error(), "SYMBOL") {
		t.Errorf("expected missing column error, got %v", err)
	}
}

package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stock-analyzer/config"
	"stock-analyzer/observability"
)

const (
	nseService        = "nse"
	nseSymbolColumn   = "SYMBOL"
	nseListOperation  = "equity_list"
	nseMaxListBytes   = 8 << 20
	nseRequestsPerSec = 1
)

// NSESymbolService downloads the NSE equity list
type NSESymbolService struct {
	listURL    string
	suffix     string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryConfig
}

// NewNSESymbolService creates a new NSESymbolService instance
func NewNSESymbolService(symbols config.SymbolsConfig, provider config.ProviderConfig) *NSESymbolService {
	return &NSESymbolService{
		listURL:    symbols.ListURL,
		suffix:     symbols.Suffix,
		userAgent:  provider.UserAgent,
		httpClient: &http.Client{Timeout: time.Duration(provider.TimeoutSeconds) * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(nseRequestsPerSec), 1),
		retry:      DefaultRetryConfig,
	}
}

// ListSymbols returns every listed equity with the exchange suffix applied,
// in file order
func (s *NSESymbolService) ListSymbols(ctx context.Context) ([]string, error) {
	if s.listURL == "" {
		return nil, fmt.Errorf("equity list: %w", ErrNoData)
	}

	return WithCircuitBreaker(ctx, BreakerNSE, func() ([]string, error) {
		var symbols []string
		metrics := observability.GetMetrics()

		err := WithRetry(ctx, s.retry, func() error {
			if err := s.limiter.Wait(ctx); err != nil {
				return Permanent(fmt.Errorf("rate limiter: %w", err))
			}

			metrics.RecordExternalAPIRequest(nseService, nseListOperation)
			timer := metrics.NewTimer()
			defer timer.ObserveExternalAPI(nseService, nseListOperation)

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.listURL, nil)
			if err != nil {
				return Permanent(fmt.Errorf("failed to create request: %w", err))
			}
			req.Header.Set("User-Agent", s.userAgent)
			req.Header.Set("Accept", "text/csv,*/*")

			resp, err := s.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to fetch equity list: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return statusErr(nseService, nseListOperation, resp)
			}

			parsed, err := ParseEquityList(io.LimitReader(resp.Body, nseMaxListBytes), s.suffix)
			if err != nil {
				return Permanent(err)
			}
			symbols = parsed
			return nil
		})

		if err != nil {
			metrics.RecordExternalAPIError(nseService, nseListOperation, ErrorType(err))
			return nil, err
		}
		return symbols, nil
	})
}

// ParseEquityList reads the SYMBOL column of an EQUITY_L style CSV and
// appends suffix to every entry. Blank symbols are skipped.
func ParseEquityList(r io.Reader, suffix string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("equity list: %w", ErrNoData)
		}
		return nil, fmt.Errorf("failed to read equity list header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")), nseSymbolColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("equity list has no %s column", nseSymbolColumn)
	}

	var symbols []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read equity list: %w", err)
		}
		if col >= len(record) {
			continue
		}
		if sym := strings.TrimSpace(record[col]); sym != "" {
			symbols = append(symbols, sym+suffix)
		}
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("equity list: %w", ErrNoData)
	}
	return symbols, nil
}

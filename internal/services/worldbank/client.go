// -----------------------------------------------------------------------
// World Bank API Client - Worldwide Governance Indicators download
// -----------------------------------------------------------------------

package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/common"
	"github.com/ternarybob/sovereign/internal/httpclient"
	"github.com/ternarybob/sovereign/internal/interfaces"
	"github.com/ternarybob/sovereign/internal/models"
	"golang.org/x/time/rate"
)

// Service downloads WGI indicator series from the World Bank v2 API.
// Requests are rate limited to stay polite toward the public endpoint.
type Service struct {
	config  *common.WorldBankConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// Compile-time assertion
var _ interfaces.WGIService = (*Service)(nil)

// NewService creates a new World Bank client service
func NewService(config *common.WorldBankConfig, logger arbor.ILogger) *Service {
	return &Service{
		config:  config,
		client:  httpclient.NewDefaultHTTPClient(config.HTTPTimeoutDuration()),
		limiter: rate.NewLimiter(rate.Limit(config.RatePerSec), 1),
		logger:  logger,
	}
}

// apiMeta is the first element of a v2 API response.
type apiMeta struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// apiRecord is one observation in the second element.
type apiRecord struct {
	Country struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"country"`
	CountryISO3 string   `json:"countryiso3code"`
	Date        string   `json:"date"`
	Value       *float64 `json:"value"`
}

// Download fetches all six WGI indicators for the year range and
// returns the wide per-country-year records.
func (s *Service) Download(ctx context.Context, startYear, endYear int) ([]models.WGIRecord, error) {
	if endYear < startYear {
		return nil, fmt.Errorf("end year %d before start year %d", endYear, startYear)
	}

	var observations []models.WGIObservation
	for _, indicator := range models.WGIIndicators {
		obs, err := s.fetchIndicator(ctx, indicator, startYear, endYear)
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", indicator.Name, err)
		}
		s.logger.Info().
			Str("indicator", indicator.Code).
			Int("observations", len(obs)).
			Msg("Indicator downloaded")
		observations = append(observations, obs...)
	}

	if len(observations) == 0 {
		return nil, fmt.Errorf("no WGI data returned for %d-%d", startYear, endYear)
	}

	records := Pivot(observations)
	s.logger.Info().
		Int("observations", len(observations)).
		Int("records", len(records)).
		Msg("WGI download complete")
	return records, nil
}

// fetchIndicator pulls every page of one indicator series.
func (s *Service) fetchIndicator(ctx context.Context, indicator models.WGIIndicator, startYear, endYear int) ([]models.WGIObservation, error) {
	var out []models.WGIObservation

	for pageNum := 1; ; pageNum++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		meta, records, err := s.fetchPage(ctx, indicator.Code, startYear, endYear, pageNum)
		if err != nil {
			return nil, err
		}

		for _, r := range records {
			if r.Value == nil {
				continue
			}
			year, err := strconv.Atoi(r.Date)
			if err != nil {
				continue
			}
			out = append(out, models.WGIObservation{
				Country:   r.Country.Value,
				ISO3:      r.CountryISO3,
				Year:      year,
				Indicator: indicator.Code,
				Value:     *r.Value,
			})
		}

		if meta.Pages == 0 || pageNum >= meta.Pages {
			break
		}
	}

	return out, nil
}

func (s *Service) fetchPage(ctx context.Context, code string, startYear, endYear, pageNum int) (*apiMeta, []apiRecord, error) {
	endpoint := fmt.Sprintf("%s/country/all/indicator/%s", s.config.BaseURL, code)
	params := url.Values{}
	params.Set("format", "json")
	params.Set("per_page", strconv.Itoa(s.config.PerPage))
	params.Set("date", fmt.Sprintf("%d:%d", startYear, endYear))
	params.Set("page", strconv.Itoa(pageNum))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	// The v2 API wraps responses in a two-element array: metadata
	// first, records second.
	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("failed to parse response envelope: %w", err)
	}
	if len(envelope) < 2 {
		return nil, nil, fmt.Errorf("response envelope has %d elements, want 2", len(envelope))
	}

	var meta apiMeta
	if err := json.Unmarshal(envelope[0], &meta); err != nil {
		return nil, nil, fmt.Errorf("failed to parse response metadata: %w", err)
	}

	var records []apiRecord
	if err := json.Unmarshal(envelope[1], &records); err != nil {
		return nil, nil, fmt.Errorf("failed to parse response records: %w", err)
	}

	return &meta, records, nil
}

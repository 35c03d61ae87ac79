package worldbank

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/common"
	"github.com/ternarybob/sovereign/internal/models"
)

func testConfig(baseURL string) *common.WorldBankConfig {
	return &common.WorldBankConfig{
		BaseURL:     baseURL,
		StartYear:   2020,
		EndYear:     2022,
		PerPage:     1000,
		RatePerSec:  100,
		HTTPTimeout: "5s",
	}
}

func observation(country, iso3, date string, value *float64) string {
	v := "null"
	if value != nil {
		v = fmt.Sprintf("%g", *value)
	}
	return fmt.Sprintf(`{"country":{"id":"%s","value":"%s"},"countryiso3code":"%s","date":"%s","value":%s}`,
		iso3[:2], country, iso3, date, v)
}

func TestDownload(t *testing.T) {
	f := 1.5
	g := -0.25
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "json", r.URL.Query().Get("format"))
		require.Equal(t, "2020:2022", r.URL.Query().Get("date"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[{"page":1,"pages":1,"per_page":1000,"total":3},[%s,%s,%s]]`,
			observation("Denmark", "DNK", "2021", &f),
			observation("Denmark", "DNK", "2020", &g),
			observation("Somalia", "SOM", "2021", nil))
	}))
	defer server.Close()

	svc := NewService(testConfig(server.URL), arbor.NewLogger())
	records, err := svc.Download(context.Background(), 2020, 2022)
	require.NoError(t, err)

	// Two Denmark years, each carrying all six indicators. The null
	// Somalia observation is dropped entirely.
	require.Len(t, records, 2)
	assert.Equal(t, "Denmark", records[0].Country)
	assert.Equal(t, 2020, records[0].Year)
	assert.Equal(t, 2021, records[1].Year)
	assert.True(t, records[1].Complete())
	require.NotNil(t, records[1].Values["VA"])
	assert.InDelta(t, 1.5, *records[1].Values["VA"], 1e-9)
	require.NotNil(t, records[0].Values["CC"])
	assert.InDelta(t, -0.25, *records[0].Values["CC"], 1e-9)
}

func TestDownload_Pagination(t *testing.T) {
	v := 0.5
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		page := r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		if page == "1" {
			fmt.Fprintf(w, `[{"page":1,"pages":2,"per_page":1,"total":2},[%s]]`,
				observation("Norway", "NOR", "2020", &v))
			return
		}
		fmt.Fprintf(w, `[{"page":2,"pages":2,"per_page":1,"total":2},[%s]]`,
			observation("Norway", "NOR", "2021", &v))
	}))
	defer server.Close()

	svc := NewService(testConfig(server.URL), arbor.NewLogger())
	records, err := svc.Download(context.Background(), 2020, 2022)
	require.NoError(t, err)

	// Six indicators, two pages each.
	assert.Equal(t, 12, hits)
	require.Len(t, records, 2)
}

func TestDownload_BadRange(t *testing.T) {
	svc := NewService(testConfig("http://localhost:1"), arbor.NewLogger())
	_, err := svc.Download(context.Background(), 2022, 2020)
	assert.Error(t, err)
}

func TestDownload_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewService(testConfig(server.URL), arbor.NewLogger())
	_, err := svc.Download(context.Background(), 2020, 2022)
	assert.Error(t, err)
}

func TestPivot_FirstValueWins(t *testing.T) {
	obs := []models.WGIObservation{
		{Country: "Chile", ISO3: "CHL", Year: 2020, Indicator: "VA.EST", Value: 1.0},
		{Country: "Chile", ISO3: "CHL", Year: 2020, Indicator: "VA.EST", Value: 9.0},
		{Country: "Chile", ISO3: "CHL", Year: 2020, Indicator: "RL.EST", Value: 0.7},
		{Country: "Chile", ISO3: "CHL", Year: 2020, Indicator: "XX.BOGUS", Value: 5.0},
	}

	records := Pivot(obs)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Values["VA"])
	assert.InDelta(t, 1.0, *records[0].Values["VA"], 1e-9)
	require.NotNil(t, records[0].Values["RL"])
	assert.False(t, records[0].Complete())
}

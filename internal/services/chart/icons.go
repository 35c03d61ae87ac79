package chart

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/sovereign/internal/httpclient"
)

const iconDownloadTimeout = 10 * time.Second

// EnsureIcons downloads any missing flag PNGs into the icon directory.
// Failures are logged and skipped; the chart falls back to text codes
// for whatever is still missing.
func (s *Service) EnsureIcons(ctx context.Context, codes []string) error {
	if s.config.IconDir == "" || s.config.IconBaseURL == "" {
		return nil
	}
	if err := os.MkdirAll(s.config.IconDir, 0755); err != nil {
		return fmt.Errorf("failed to create icon directory: %w", err)
	}

	client := httpclient.NewDefaultHTTPClient(iconDownloadTimeout)

	seen := make(map[string]bool)
	var downloaded, failed int
	for _, code := range codes {
		code = strings.ToLower(code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true

		path := filepath.Join(s.config.IconDir, code+".png")
		if _, err := os.Stat(path); err == nil {
			continue
		}

		if err := s.downloadIcon(ctx, client, code, path); err != nil {
			failed++
			s.logger.Warn().Str("code", code).Err(err).Msg("Flag download failed")
			continue
		}
		downloaded++
	}

	if downloaded > 0 || failed > 0 {
		s.logger.Info().
			Int("downloaded", downloaded).
			Int("failed", failed).
			Msg("Flag icons refreshed")
	}
	return nil
}

func (s *Service) downloadIcon(ctx context.Context, client *http.Client, code, path string) error {
	url := strings.ReplaceAll(s.config.IconBaseURL, "{code}", code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

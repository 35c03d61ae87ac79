// -----------------------------------------------------------------------
// Scraper Service - chromedp-rendered table extraction from
// worldgovernmentbonds.com
// -----------------------------------------------------------------------

package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/sovereign/internal/common"
	"github.com/ternarybob/sovereign/internal/interfaces"
	"github.com/ternarybob/sovereign/internal/models"
)

// Service scrapes the bond-spreads and credit-ratings pages. A single
// browser context is created lazily and reused across fetches.
type Service struct {
	config *common.ScraperConfig
	logger arbor.ILogger
	pages  interfaces.PageStorage // optional; nil disables page capture

	mu              sync.Mutex
	browserCtx      context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc
}

// Compile-time assertion
var _ interfaces.ScraperService = (*Service)(nil)

// NewService creates a new scraper service. pages may be nil when page
// captures are not wanted.
func NewService(config *common.ScraperConfig, pages interfaces.PageStorage, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
		pages:  pages,
	}
}

// ScrapeSpreads fetches and parses the government bond spreads table.
func (s *Service) ScrapeSpreads(ctx context.Context) ([]models.SpreadRecord, error) {
	s.logger.Info().Str("url", s.config.SpreadsURL).Msg("Scraping bond spreads")

	html, err := s.fetchPage(ctx, s.config.SpreadsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spreads page: %w", err)
	}
	s.capturePage(s.config.SpreadsURL, "Government Bond Spreads", html)

	records, err := ParseSpreadsHTML(html)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("records", len(records)).Msg("Bond spreads scraped")
	return records, nil
}

// ScrapeRatings fetches and parses the world credit ratings table.
func (s *Service) ScrapeRatings(ctx context.Context) ([]models.CountryRatings, error) {
	s.logger.Info().Str("url", s.config.RatingsURL).Msg("Scraping credit ratings")

	html, err := s.fetchPage(ctx, s.config.RatingsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratings page: %w", err)
	}
	s.capturePage(s.config.RatingsURL, "World Credit Ratings", html)

	records, err := ParseRatingsHTML(html)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("records", len(records)).Msg("Credit ratings scraped")
	return records, nil
}

// fetchPage navigates to a URL, waits for the JS-rendered tables to
// settle, and returns the full document HTML.
func (s *Service) fetchPage(ctx context.Context, url string) (string, error) {
	browserCtx, err := s.browser()
	if err != nil {
		return "", err
	}

	runCtx, cancel := context.WithTimeout(browserCtx, s.config.PageTimeoutDuration())
	defer cancel()

	// Honor caller cancellation too
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	var html string
	err = chromedp.Run(runCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Mask headless automation before navigation
			_, err := page.AddScriptToEvaluateOnNewDocument(
				`Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`).Do(ctx)
			return err
		}),
		chromedp.EmulateViewport(1920, 1080),
		chromedp.Navigate(url),
		chromedp.Sleep(s.config.RenderWaitDuration()),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp navigation failed: %w", err)
	}
	if html == "" {
		return "", fmt.Errorf("empty HTML content returned for %s", url)
	}
	return html, nil
}

// browser returns the shared browser context, creating it on first use.
func (s *Service) browser() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browserCtx != nil && s.browserCtx.Err() == nil {
		return s.browserCtx, nil
	}

	allocatorOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(s.config.UserAgent),
	}
	if s.config.Headless {
		allocatorOpts = append(allocatorOpts, chromedp.Headless)
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), allocatorOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	// Verify the browser actually starts before handing it out
	testCtx, testCancel := context.WithTimeout(browserCtx, 15*time.Second)
	defer testCancel()
	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	s.browserCtx = browserCtx
	s.browserCancel = browserCancel
	s.allocatorCancel = allocatorCancel
	s.logger.Debug().Bool("headless", s.config.Headless).Msg("Browser context initialized")
	return browserCtx, nil
}

// capturePage converts the fetched HTML to Markdown and persists it for
// replay. Failures only warn; captures are best-effort.
func (s *Service) capturePage(url, title, html string) {
	if s.pages == nil {
		return
	}

	converter := md.NewConverter(url, true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", url).Msg("Failed to convert page to markdown")
		markdown = html
	}

	capture := &models.PageCapture{
		ID:              common.NewPageID(),
		URL:             url,
		Title:           title,
		ContentMarkdown: strings.TrimSpace(markdown),
		FetchedAt:       time.Now(),
	}
	if err := s.pages.SavePage(capture); err != nil {
		s.logger.Warn().Err(err).Str("url", url).Msg("Failed to save page capture")
	}
}

// Close shuts down the browser context.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browserCancel != nil {
		s.browserCancel()
		s.browserCancel = nil
	}
	if s.allocatorCancel != nil {
		s.allocatorCancel()
		s.allocatorCancel = nil
	}
	s.browserCtx = nil
	return nil
}

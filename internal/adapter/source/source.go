// Package source implements the investor page scrapers. Two variants exist,
// Screener and Trendlyne, differing only in page structure and field
// mapping; both satisfy domain.InvestorSource so the ingestion runner is
// source-agnostic.
package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
)

const (
	fetchTimeout = 30 * time.Second
	userAgent    = "holdingswatch/1.0"
)

// NewHTTPClient returns the HTTP client used by the scrapers
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: fetchTimeout}
}

// ForInvestor instantiates the correct source implementation based on the
// investor's URL
func ForInvestor(ref domain.InvestorRef, client *http.Client) (domain.InvestorSource, error) {
	parsed, err := url.Parse(ref.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source URL %q: %w", ref.URL, err)
	}

	host := strings.ToLower(parsed.Hostname())
	switch {
	case strings.HasSuffix(host, "screener.in"):
		return NewScreener(ref, client), nil
	case strings.HasSuffix(host, "trendlyne.com"):
		return NewTrendlyne(ref, client), nil
	}
	return nil, fmt.Errorf("unsupported source URL: %s", ref.URL)
}

// Factory binds a shared HTTP client into a domain.SourceFactory
func Factory(client *http.Client) domain.SourceFactory {
	return func(ref domain.InvestorRef) (domain.InvestorSource, error) {
		return ForInvestor(ref, client)
	}
}

// fetchDocument downloads the investor page and parses it into a goquery
// document
func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML: %w", err)
	}
	return doc, nil
}

// headerTexts collects the lowercased th texts of a table
func headerTexts(table *goquery.Selection) []string {
	var header []string
	table.Find("th").Each(func(_ int, th *goquery.Selection) {
		header = append(header, strings.ToLower(strings.TrimSpace(th.Text())))
	})
	return header
}

// cellText returns the trimmed text of the i-th td, or "" when the row is
// shorter than that
func cellText(cells *goquery.Selection, i int) string {
	if i >= cells.Length() {
		return ""
	}
	return strings.TrimSpace(cells.Eq(i).Text())
}

// parseSide normalizes a buy/sell cell; anything else is not a deal row
func parseSide(value string) (domain.DealSide, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "buy":
		return domain.DealSideBuy, true
	case "sell":
		return domain.DealSideSell, true
	}
	return "", false
}

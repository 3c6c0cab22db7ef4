package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
)

// Screener scrapes screener.in investor pages
type Screener struct {
	ref    domain.InvestorRef
	client *http.Client
}

// NewScreener creates a new Screener source for one investor page
func NewScreener(ref domain.InvestorRef, client *http.Client) *Screener {
	return &Screener{ref: ref, client: client}
}

// Fetch downloads and parses the investor page. Holdings come from the
// first table whose header mentions a company column plus holdings or
// shares; deals come from tables following "bulk deals" / "block deals"
// headings. A page without a recognizable holdings table is a fetch
// failure; missing deal headings just mean no deals
func (s *Screener) Fetch(ctx context.Context) ([]domain.HoldingRecord, []domain.DealRecord, error) {
	doc, err := fetchDocument(ctx, s.client, s.ref.URL)
	if err != nil {
		return nil, nil, &domain.FetchError{Investor: s.ref.Name, URL: s.ref.URL, Err: err}
	}

	holdings, found := s.parseHoldings(doc)
	if !found {
		return nil, nil, &domain.FetchError{Investor: s.ref.Name, URL: s.ref.URL, Err: errors.New("no holdings table on page")}
	}

	return holdings, s.parseDeals(doc), nil
}

func (s *Screener) parseHoldings(doc *goquery.Document) ([]domain.HoldingRecord, bool) {
	holdings := []domain.HoldingRecord{}
	found := false

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		header := headerTexts(table)
		joined := strings.Join(header, " ")
		if !containsHeader(header, "company") || (!strings.Contains(joined, "holding") && !containsHeader(header, "shares")) {
			return true
		}
		found = true

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return
			}
			anchor := cells.Eq(0).Find("a[href]").First()
			href, ok := anchor.Attr("href")
			if !ok || !strings.Contains(href, "/company/") {
				return
			}
			// Ticker is the last path segment of the company link
			segments := strings.Split(strings.Trim(href, "/"), "/")
			ticker := strings.ToUpper(segments[len(segments)-1])

			holdings = append(holdings, domain.HoldingRecord{
				Ticker:         ticker,
				PercentHolding: ParsePercent(cellText(cells, 1)),
				Shares:         ParseShares(cellText(cells, 2)),
				ReportedDate:   ParseDate(cellText(cells, 3)),
			})
		})
		return false
	})

	return holdings, found
}

func (s *Screener) parseDeals(doc *goquery.Document) []domain.DealRecord {
	deals := []domain.DealRecord{}

	doc.Find("h2").Each(func(_ int, heading *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(heading.Text()))
		var dealType domain.DealType
		switch {
		case strings.Contains(text, "bulk deals"):
			dealType = domain.DealTypeBulk
		case strings.Contains(text, "block deals"):
			dealType = domain.DealTypeBlock
		default:
			return
		}

		table := nextTable(heading)
		if table == nil {
			return
		}

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return
			}
			anchor := cells.Eq(0).Find("a").First()
			if anchor.Length() == 0 {
				return
			}
			ticker := strings.ToUpper(strings.TrimSpace(anchor.Text()))

			side, ok := parseSide(cellText(cells, 2))
			if !ok {
				return
			}
			dealDate := ParseDate(cellText(cells, 1))
			if dealDate == nil {
				return
			}

			deals = append(deals, domain.DealRecord{
				Ticker:   ticker,
				Type:     dealType,
				Side:     side,
				DealDate: *dealDate,
				Quantity: ParseShares(cellText(cells, 3)),
				Price:    ParsePercent(cellText(cells, 4)),
			})
		})
	})

	return deals
}

// nextTable finds the table that follows a heading in document order:
// first among the heading's later siblings, then within them
func nextTable(heading *goquery.Selection) *goquery.Selection {
	table := heading.NextAllFiltered("table").First()
	if table.Length() > 0 {
		return table
	}
	table = heading.NextAll().Find("table").First()
	if table.Length() > 0 {
		return table
	}
	return nil
}

func containsHeader(header []string, want string) bool {
	for _, h := range header {
		if h == want {
			return true
		}
	}
	return false
}

// String identifies the source in logs
func (s *Screener) String() string {
	return fmt.Sprintf("screener(%s)", s.ref.Name)
}

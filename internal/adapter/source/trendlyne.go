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

// Trendlyne scrapes trendlyne.com superstar portfolio pages
type Trendlyne struct {
	ref    domain.InvestorRef
	client *http.Client
}

// NewTrendlyne creates a new Trendlyne source for one investor page
func NewTrendlyne(ref domain.InvestorRef, client *http.Client) *Trendlyne {
	return &Trendlyne{ref: ref, client: client}
}

// Fetch downloads and parses the investor page. Holdings come from the
// first table whose leading header is a stock/company column; deals come
// from sections whose heading mentions bulk or block
func (t *Trendlyne) Fetch(ctx context.Context) ([]domain.HoldingRecord, []domain.DealRecord, error) {
	doc, err := fetchDocument(ctx, t.client, t.ref.URL)
	if err != nil {
		return nil, nil, &domain.FetchError{Investor: t.ref.Name, URL: t.ref.URL, Err: err}
	}

	holdings, found := t.parseHoldings(doc)
	if !found {
		return nil, nil, &domain.FetchError{Investor: t.ref.Name, URL: t.ref.URL, Err: errors.New("no holdings table on page")}
	}

	return holdings, t.parseDeals(doc), nil
}

func (t *Trendlyne) parseHoldings(doc *goquery.Document) ([]domain.HoldingRecord, bool) {
	holdings := []domain.HoldingRecord{}
	found := false

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		header := headerTexts(table)
		if len(header) == 0 {
			return true
		}
		if !strings.Contains(header[0], "stock") && !strings.Contains(header[0], "company") {
			return true
		}
		found = true

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return
			}
			// Trendlyne sometimes links the stock, sometimes plain text
			ticker := strings.TrimSpace(cells.Eq(0).Find("a").First().Text())
			if ticker == "" {
				ticker = cellText(cells, 0)
			}
			if ticker == "" {
				return
			}

			holdings = append(holdings, domain.HoldingRecord{
				Ticker:         strings.ToUpper(ticker),
				PercentHolding: ParsePercent(cellText(cells, 1)),
				Shares:         ParseShares(cellText(cells, 2)),
				ReportedDate:   ParseDate(cellText(cells, 3)),
			})
		})
		return false
	})

	return holdings, found
}

func (t *Trendlyne) parseDeals(doc *goquery.Document) []domain.DealRecord {
	deals := []domain.DealRecord{}

	doc.Find("section").Each(func(_ int, section *goquery.Selection) {
		heading := section.Find("h2, h3").First()
		if heading.Length() == 0 {
			return
		}
		text := strings.ToLower(strings.TrimSpace(heading.Text()))

		var dealType domain.DealType
		switch {
		case strings.Contains(text, "bulk"):
			dealType = domain.DealTypeBulk
		case strings.Contains(text, "block"):
			dealType = domain.DealTypeBlock
		default:
			return
		}

		section.Find("table").First().Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return
			}
			ticker := strings.ToUpper(cellText(cells, 0))
			if ticker == "" {
				return
			}

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

// String identifies the source in logs
func (t *Trendlyne) String() string {
	return fmt.Sprintf("trendlyne(%s)", t.ref.Name)
}

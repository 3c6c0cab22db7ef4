package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
)

// holdingRow is a holdings view row preformatted for the template
type holdingRow struct {
	Ticker   string
	Investor string
	Percent  string
	Shares   string
	Reported string
}

// dealRow is a deal view row preformatted for the template
type dealRow struct {
	Ticker   string
	Investor string
	Date     string
	Quantity string
	Price    string
}

func (s *Server) dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	holdings, err := s.Portfolio.HoldingsSnapshot(ctx)
	if err != nil {
		s.renderError(c, err)
		return
	}
	bulk, err := s.Portfolio.DealsSnapshot(ctx, domain.DealTypeBulk)
	if err != nil {
		s.renderError(c, err)
		return
	}
	block, err := s.Portfolio.DealsSnapshot(ctx, domain.DealTypeBlock)
	if err != nil {
		s.renderError(c, err)
		return
	}
	sched, err := s.Schedules.Get(ctx)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"holdings":   holdingRows(holdings),
		"bulkDeals":  dealRows(bulk),
		"blockDeals": dealRows(block),
		"schedule":   sched.String(),
		"state":      string(s.Trigger.State()),
		"nextFire":   formatNextFire(s.Trigger.NextFire()),
	})
}

func (s *Server) scheduleForm(c *gin.Context) {
	sched, err := s.Schedules.Get(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, "schedule.html", gin.H{
		"hour":     strconv.Itoa(sched.Hour),
		"minute":   strconv.Itoa(sched.Minute),
		"timezone": sched.Timezone,
		"updated":  c.Query("updated") == "1",
	})
}

func (s *Server) updateSchedule(c *gin.Context) {
	rawHour := strings.TrimSpace(c.PostForm("hour"))
	rawMinute := strings.TrimSpace(c.PostForm("minute"))
	timezone := strings.TrimSpace(c.PostForm("timezone"))
	if timezone == "" {
		timezone = "UTC"
	}

	hour, errHour := strconv.Atoi(rawHour)
	minute, errMinute := strconv.Atoi(rawMinute)
	if errHour != nil || errMinute != nil {
		s.renderScheduleError(c, rawHour, rawMinute, timezone, "hour and minute must be numbers")
		return
	}

	if _, err := s.Schedules.Set(c.Request.Context(), hour, minute, timezone); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			s.renderScheduleError(c, rawHour, rawMinute, timezone, vErr.Error())
			return
		}
		s.renderError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/schedule?updated=1")
}

// renderScheduleError re-renders the form with the submitted values so the
// user can correct them
func (s *Server) renderScheduleError(c *gin.Context, hour, minute, timezone, msg string) {
	c.HTML(http.StatusBadRequest, "schedule.html", gin.H{
		"hour":     hour,
		"minute":   minute,
		"timezone": timezone,
		"error":    msg,
	})
}

func (s *Server) renderError(c *gin.Context, err error) {
	s.Log.WithError(err).Error("Request failed")
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"error": err.Error(),
	})
}

func holdingRows(views []*domain.HoldingView) []holdingRow {
	rows := make([]holdingRow, 0, len(views))
	for _, v := range views {
		rows = append(rows, holdingRow{
			Ticker:   v.Ticker,
			Investor: v.Investor,
			Percent:  formatDecimalPtr(v.PercentHolding, "%"),
			Shares:   formatInt64Ptr(v.Shares),
			Reported: formatDatePtr(v.ReportedDate),
		})
	}
	return rows
}

func dealRows(views []*domain.DealView) []dealRow {
	rows := make([]dealRow, 0, len(views))
	for _, v := range views {
		rows = append(rows, dealRow{
			Ticker:   v.Ticker,
			Investor: v.Investor,
			Date:     v.DealDate.Format("2006-01-02"),
			Quantity: formatInt64Ptr(v.Quantity),
			Price:    formatDecimalPtr(v.Price, ""),
		})
	}
	return rows
}

func formatDecimalPtr(d *decimal.Decimal, suffix string) string {
	if d == nil {
		return "-"
	}
	return d.String() + suffix
}

func formatInt64Ptr(n *int64) string {
	if n == nil {
		return "-"
	}
	return strconv.FormatInt(*n, 10)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatNextFire(t time.Time) string {
	if t.IsZero() {
		return "not armed"
	}
	return t.Format("2006-01-02 15:04 MST")
}

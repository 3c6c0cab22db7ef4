package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/simaogato/holdingswatch-backend/internal/domain"
	"github.com/simaogato/holdingswatch-backend/internal/usecase/scheduler"
)

// ScheduleService is the slice of the schedule usecase the handlers depend on
type ScheduleService interface {
	Get(ctx context.Context) (*domain.Schedule, error)
	Set(ctx context.Context, hour, minute int, timezone string) (*domain.Schedule, error)
}

// TriggerStatus exposes the scheduler state for dashboard display
type TriggerStatus interface {
	State() scheduler.State
	NextFire() time.Time
}

// Server serves the HTML dashboard and the schedule form
type Server struct {
	Portfolio domain.PortfolioRepository
	Schedules ScheduleService
	Trigger   TriggerStatus
	Log       *logrus.Logger

	engine *gin.Engine
}

// NewServer creates the gin engine, loads the templates from templatesGlob
// (e.g. "templates/*") and registers all routes
func NewServer(portfolio domain.PortfolioRepository, schedules ScheduleService, trigger TriggerStatus, templatesGlob string, log *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		Portfolio: portfolio,
		Schedules: schedules,
		Trigger:   trigger,
		Log:       log,
		engine:    gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.engine.LoadHTMLGlob(templatesGlob)

	s.engine.GET("/", s.dashboard)
	s.engine.GET("/schedule", s.scheduleForm)
	s.engine.POST("/schedule", s.updateSchedule)

	return s
}

// Handler returns the underlying HTTP handler for mounting on an http.Server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Package http wires the gin router over the scheduler.
package http

import (
	"log"

	"github.com/gin-gonic/gin"

	"riskrouter/internal/config"
	"riskrouter/internal/http/queuehttp"
	"riskrouter/internal/http/ruleshttp"
	"riskrouter/internal/http/teamhttp"
	"riskrouter/internal/http/ticketshttp"
	"riskrouter/internal/http/workflowshttp"
	"riskrouter/internal/usecase"
)

type Server struct {
	cfg       config.Config
	r         *gin.Engine
	scheduler *usecase.Scheduler
}

func NewServer(cfg config.Config, scheduler *usecase.Scheduler) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, r: r, scheduler: scheduler}
	s.routes()
	return s
}

func (s *Server) Run() error {
	addr := s.cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("riskrouter listening on %s", addr)
	return s.r.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() *gin.Engine {
	return s.r
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	ticketHandler := ticketshttp.NewHandler(s.scheduler)
	queueHandler := queuehttp.NewHandler(s.scheduler)
	workflowHandler := workflowshttp.NewHandler(s.scheduler)
	ruleHandler := ruleshttp.NewHandler(s.scheduler)
	teamHandler := teamhttp.NewHandler(s.scheduler)

	v1 := s.r.Group("/v1")
	{
		v1.POST("/tickets", ticketHandler.HandleSubmit)

		v1.GET("/queue/status", queueHandler.HandleStatus)
		v1.POST("/queue/next", queueHandler.HandleNext)
		v1.GET("/queue/analytics", queueHandler.HandleAnalytics)

		v1.GET("/workflows", workflowHandler.HandleList)
		v1.GET("/workflows/insights", workflowHandler.HandleActionInsights)
		v1.GET("/workflows/:id", workflowHandler.HandleGet)
		v1.POST("/workflows/:id/actions", workflowHandler.HandleExecuteAction)
		v1.POST("/workflows/:id/actions/:action_id/complete", workflowHandler.HandleCompleteAction)
		v1.POST("/workflows/:id/resolve", workflowHandler.HandleResolve)
		v1.POST("/workflows/:id/snooze", workflowHandler.HandleSnooze)
		v1.POST("/workflows/:id/escalate", workflowHandler.HandleEscalate)
		v1.POST("/workflows/:id/dismiss", workflowHandler.HandleDismiss)

		v1.GET("/rules", ruleHandler.HandleList)
		v1.POST("/rules/evaluate", ruleHandler.HandleEvaluate)
		v1.POST("/rules/:id/toggle", ruleHandler.HandleToggle)
		v1.GET("/rules/analytics", ruleHandler.HandleAnalytics)

		v1.GET("/team/dashboard", teamHandler.HandleDashboard)
		v1.GET("/team/recommendations", teamHandler.HandleRecommendations)
	}
}

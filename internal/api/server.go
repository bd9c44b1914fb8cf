package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"CryptoModelBot/internal/models"
	"CryptoModelBot/internal/operations/backtest"
	"CryptoModelBot/internal/services/evaluation"
	"CryptoModelBot/internal/services/trading"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// OutcomeSource exposes the most recent evaluation.
type OutcomeSource interface {
	LastOutcomes() ([]evaluation.Outcome, time.Time)
	Thresholds() evaluation.Thresholds
}

type Runner interface {
	Run(ctx context.Context) ([]trading.Decision, error)
}

// StrategyLister reports the registered strategy names.
type StrategyLister interface {
	List() []string
}

type ModelLister interface {
	FindAll() ([]models.Model, error)
}

// OrderFinder reads the order history.
type OrderFinder interface {
	FindByID(id uint) (*models.Order, error)
	FindBySymbol(symbol string) ([]models.Order, error)
	GetOrdersByTimeRange(start, end time.Time) ([]models.Order, error)
}

// Deps are the collaborators behind the routes. Runner and Orders may be
// nil, which leaves POST /run and /orders unregistered.
type Deps struct {
	Outcomes   OutcomeSource
	Runner     Runner
	Strategies StrategyLister
	Models     ModelLister
	Orders     OrderFinder
}

// Manual runs outlive the request that started them.
const defaultRunTimeout = 15 * time.Minute

// Orders are listed over this window when no range is given.
const defaultOrderWindow = 30 * 24 * time.Hour

type outcomeView struct {
	Model    string          `json:"model"`
	URL      string          `json:"url,omitempty"`
	Strategy string          `json:"strategy"`
	Eligible bool            `json:"eligible"`
	Reason   string          `json:"reason,omitempty"`
	Result   backtest.Result `json:"result"`
}

type thresholdsView struct {
	MinAnnualReturn float64 `json:"min_annual_return"`
	MinSharpeRatio  float64 `json:"min_sharpe_ratio"`
	MaxDrawdown     float64 `json:"max_drawdown"`
}

type Server struct {
	deps   Deps
	logger zerolog.Logger

	runTimeout time.Duration
	now        func() time.Time

	router *gin.Engine
	http   *http.Server
}

func NewServer(addr string, deps Deps, logger zerolog.Logger) *Server {
	s := &Server{
		deps:       deps,
		logger:     logger.With().Str("component", "api").Logger(),
		runTimeout: defaultRunTimeout,
		now:        time.Now,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	s.setupRoutes(router)

	s.router = router
	s.http = &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	return s
}

func (s *Server) setupRoutes(router *gin.Engine) {
	router.GET("/health", s.health)
	router.GET("/outcomes", s.listOutcomes)
	router.GET("/strategies", s.listStrategies)
	router.GET("/models", s.listModels)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if s.deps.Orders != nil {
		router.GET("/orders", s.listOrders)
		router.GET("/orders/:id", s.getOrder)
	}
	if s.deps.Runner != nil {
		router.POST("/run", s.run)
	}
}

// Handler returns the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("Status API listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Status API stopped")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	_, lastRun := s.deps.Outcomes.LastOutcomes()
	body := gin.H{"status": "healthy"}
	if !lastRun.IsZero() {
		body["last_run"] = lastRun.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) listOutcomes(c *gin.Context) {
	outcomes, lastRun := s.deps.Outcomes.LastOutcomes()

	views := make([]outcomeView, 0, len(outcomes))
	for _, o := range outcomes {
		if c.Query("eligible") == "true" && !o.Eligible {
			continue
		}
		v := outcomeView{
			Model:    o.Candidate.Model.FullName,
			URL:      o.Candidate.Model.HTMLURL,
			Eligible: o.Eligible,
			Reason:   o.Reason,
			Result:   o.Result,
		}
		if o.Candidate.Strategy != nil {
			v.Strategy = o.Candidate.Strategy.Name()
		}
		views = append(views, v)
	}

	t := s.deps.Outcomes.Thresholds()
	body := gin.H{
		"outcomes": views,
		"thresholds": thresholdsView{
			MinAnnualReturn: t.MinAnnualReturn,
			MinSharpeRatio:  t.MinSharpeRatio,
			MaxDrawdown:     t.MaxDrawdown,
		},
	}
	if !lastRun.IsZero() {
		body["run_at"] = lastRun.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) listStrategies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategies": s.deps.Strategies.List()})
}

func (s *Server) listModels(c *gin.Context) {
	all, err := s.deps.Models.FindAll()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list models")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": all, "count": len(all)})
}

// listOrders filters by symbol, by an RFC3339 from/to range, or both. A
// missing from is 30 days before to, a missing to is now.
func (s *Server) listOrders(c *gin.Context) {
	symbol := c.Query("symbol")
	fromParam, toParam := c.Query("from"), c.Query("to")

	if symbol != "" && fromParam == "" && toParam == "" {
		orders, err := s.deps.Orders.FindBySymbol(symbol)
		if err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("Failed to list orders")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
		return
	}

	to := s.now()
	if toParam != "" {
		parsed, err := time.Parse(time.RFC3339, toParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to: " + err.Error()})
			return
		}
		to = parsed
	}
	from := to.Add(-defaultOrderWindow)
	if fromParam != "" {
		parsed, err := time.Parse(time.RFC3339, fromParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from: " + err.Error()})
			return
		}
		from = parsed
	}
	if from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from is after to"})
		return
	}

	orders, err := s.deps.Orders.GetOrdersByTimeRange(from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if symbol != "" {
		filtered := orders[:0]
		for _, o := range orders {
			if o.Symbol == symbol {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) getOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := s.deps.Orders.FindByID(uint(id))
	if err != nil {
		s.logger.Error().Err(err).Uint64("id", id).Msg("Failed to load order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// run is detached from the request so a disconnecting client cannot abort it
// after new models were marked seen.
func (s *Server) run(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), s.runTimeout)
	defer cancel()

	decisions, err := s.deps.Runner.Run(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Manual pipeline run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"decisions": decisions})
}

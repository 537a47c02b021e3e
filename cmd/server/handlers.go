package main

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xtding233/recruit-engine/internal/banner"
	"github.com/xtding233/recruit-engine/internal/catalog"
	"github.com/xtding233/recruit-engine/internal/config"
	"github.com/xtding233/recruit-engine/internal/currency"
	"github.com/xtding233/recruit-engine/internal/engine"
	"github.com/xtding233/recruit-engine/internal/gacha"
	"github.com/xtding233/recruit-engine/internal/pricing"
	"github.com/xtding233/recruit-engine/internal/storage"
)

type server struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *banner.Registry
	catalog  catalog.Catalog
	store    storage.Store

	mu      sync.Mutex
	engines map[string]*engine.Engine
}

func newServer(cfg *config.Config, log *zap.Logger, registry *banner.Registry, cat catalog.Catalog, store storage.Store) *server {
	return &server{
		cfg:      cfg,
		log:      log,
		registry: registry,
		catalog:  cat,
		store:    store,
		engines:  make(map[string]*engine.Engine),
	}
}

func (s *server) routes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.GET("/banners", s.handleListBanners)
	api.GET("/banners/:id/simulate", s.handleSimulate)
	api.POST("/pricing/plan", s.handlePricingPlan)

	players := api.Group("/players/:player_id")
	players.POST("/summons", s.handleSummon)
	players.GET("/history", s.handleHistory)
	players.GET("/statistics", s.handleStatistics)
	players.GET("/pity", s.handlePity)
	players.GET("/wallet", s.handleWallet)
	players.POST("/wallet/credits", s.handleCredit)
}

// engineFor returns the player's engine, creating and hydrating it on
// first use.
func (s *server) engineFor(c echo.Context) (*engine.Engine, error) {
	playerID := c.Param("player_id")
	if playerID == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "player id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if eng, ok := s.engines[playerID]; ok {
		return eng, nil
	}
	eng, err := engine.New(playerID, s.registry, s.catalog, s.store, engine.Options{
		HistoryCap:    s.cfg.Engine.HistoryCap,
		FeaturedBias:  s.cfg.Engine.FeaturedBias,
		HighTier:      s.cfg.Engine.HighTier,
		CommitRetries: s.cfg.Engine.CommitRetries,
		Logger:        s.log,
	})
	if err != nil {
		return nil, err
	}
	if err := eng.Hydrate(c.Request().Context()); err != nil {
		return nil, err
	}
	s.engines[playerID] = eng
	return eng, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeEngineError maps the engine error taxonomy to HTTP statuses.
// Transaction and configuration failures never leak internals.
func (s *server) writeEngineError(c echo.Context, err error) error {
	cat, ok := engine.CategoryOf(err)
	if !ok {
		s.log.Error("unexpected error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
	switch cat {
	case engine.CategoryValidation:
		status := http.StatusBadRequest
		if errors.Is(err, banner.ErrNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, currency.ErrInsufficient) {
			status = http.StatusPaymentRequired
		}
		var ee *engine.Error
		errors.As(err, &ee)
		return c.JSON(status, errorResponse{Error: ee.Reason})
	case engine.CategoryTransaction:
		s.log.Error("transaction error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "summon could not be committed; play is blocked until resolved"})
	default:
		s.log.Error("configuration error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "content configuration error"})
	}
}

type summonRequest struct {
	BannerID string `json:"banner_id"`
	Pulls    int    `json:"pulls"`
}

func (s *server) handleSummon(c echo.Context) error {
	var req summonRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	eng, err := s.engineFor(c)
	if err != nil {
		return err
	}
	rec, err := eng.PerformSummon(c.Request().Context(), req.BannerID, req.Pulls)
	if err != nil {
		return s.writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *server) handleHistory(c echo.Context) error {
	eng, err := s.engineFor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, eng.History(c.QueryParam("banner_id")))
}

func (s *server) handleStatistics(c echo.Context) error {
	eng, err := s.engineFor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, eng.Statistics())
}

func (s *server) handlePity(c echo.Context) error {
	eng, err := s.engineFor(c)
	if err != nil {
		return err
	}
	count, err := eng.PityCount(c.QueryParam("banner_id"))
	if err != nil {
		return s.writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"pity_count": count})
}

func (s *server) handleWallet(c echo.Context) error {
	eng, err := s.engineFor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, eng.Balances())
}

type creditRequest struct {
	Kind   currency.Kind `json:"kind"`
	Amount int64         `json:"amount"`
}

func (s *server) handleCredit(c echo.Context) error {
	var req creditRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	eng, err := s.engineFor(c)
	if err != nil {
		return err
	}
	if err := eng.Credit(c.Request().Context(), req.Kind, req.Amount); err != nil {
		return s.writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, eng.Balances())
}

// bannerView is the public shape of a banner; internal config like soft
// pity curves stays server-side.
type bannerView struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	EndAt    *time.Time          `json:"end_at,omitempty"`
	Rates    map[string]float64  `json:"rates"`
	Costs    map[string]costView `json:"costs"`
	Featured []string            `json:"featured,omitempty"`
}

type costView struct {
	Kind   string `json:"kind"`
	Amount int64  `json:"amount"`
}

func (s *server) handleListBanners(c echo.Context) error {
	active := s.registry.ListActive(time.Now())
	views := make([]bannerView, 0, len(active))
	for _, b := range active {
		v := bannerView{
			ID:       b.ID,
			Name:     b.Name,
			EndAt:    b.EndAt,
			Rates:    make(map[string]float64, len(b.Rates)),
			Costs:    make(map[string]costView, len(b.Costs)),
			Featured: b.Featured,
		}
		for t, w := range b.Rates {
			v.Rates[t.String()] = w
		}
		for n, cost := range b.Costs {
			v.Costs[strconv.Itoa(n)] = costView{Kind: cost.Kind.String(), Amount: cost.Amount}
		}
		views = append(views, v)
	}
	return c.JSON(http.StatusOK, views)
}

func (s *server) handleSimulate(c echo.Context) error {
	b, err := s.registry.Get(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "banner not found"})
	}
	goal := gacha.Goal(c.QueryParam("goal"))
	if goal == "" {
		goal = gacha.GoalFirstTarget
	}
	trials := queryInt(c, "trials", 10000)
	budget := queryInt(c, "budget", 0)
	seed := uint64(queryInt(c, "seed", 1))

	stats, err := gacha.Simulate(b, goal, trials, budget, s.cfg.Engine.FeaturedBias, seed)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

type pricingRequest struct {
	Catalog    pricing.Catalog        `json:"catalog"`
	TargetGems int64                  `json:"target_gems,omitempty"`
	Budget     int                    `json:"budget_cents,omitempty"`
	FirstTime  pricing.FirstTimeState `json:"first_time,omitempty"`
}

func (s *server) handlePricingPlan(c echo.Context) error {
	var req pricingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	switch {
	case req.TargetGems > 0:
		return c.JSON(http.StatusOK, pricing.MinCostForGems(req.Catalog, req.TargetGems, req.FirstTime))
	case req.Budget > 0:
		return c.JSON(http.StatusOK, pricing.MaxGemsUnderBudget(req.Catalog, req.Budget, req.FirstTime))
	default:
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "target_gems or budget_cents required"})
	}
}

func queryInt(c echo.Context, key string, def int) int {
	s := c.QueryParam(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

package server

import (
	"context"
	"html/template"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/songzhibin97/dropcalc/internal/data/collector"
	"github.com/songzhibin97/dropcalc/internal/deadline"
	"github.com/songzhibin97/dropcalc/internal/models"
	"github.com/songzhibin97/dropcalc/internal/reward"
	"github.com/songzhibin97/dropcalc/internal/utils/format"
)

const (
	msgNoProjects      = "Could not fetch projects from Mocaverse API."
	msgInvalidProject  = "Invalid project selected."
	msgWalletFetchFail = "Could not fetch wallet data."
)

// PageForm 页面表单
type PageForm struct {
	Method            string
	Project           string
	CustomPrice       string
	SPBurned          string
	Address           string
	CalculateFlexible bool
	CalculateFixed    bool
}

func formFromRequest(r *http.Request) PageForm {
	_, flexible := r.PostForm["calculate_flexible"]
	_, fixed := r.PostForm["calculate_fixed"]
	return PageForm{
		Method:            r.Method,
		Project:           r.PostFormValue("project"),
		CustomPrice:       r.PostFormValue("custom_price"),
		SPBurned:          r.PostFormValue("sp_burned"),
		Address:           r.FormValue("address"),
		CalculateFlexible: flexible,
		CalculateFixed:    fixed,
	}
}

// PageView 页面视图模型
type PageView struct {
	Title               string
	Error               string
	Projects            []models.Project
	TokenName           string
	TokenTicker         string
	TokenIconURL        string
	TokensOffered       string
	TotalSPBurnt        string
	RegistrationEndDate string
	IsEnded             bool
	Mode                models.Mode
	Tiers               []models.Tier
	CustomPrice         *float64
	SPBurned            *float64
	ExpectedReward      *float64
	PriceHint           *float64

	Address     string
	Resolved    *models.ResolvedAddress
	Wallet      *models.WalletMetrics
	WalletError string
}

func (s *Server) buildPage(ctx context.Context, form PageForm) PageView {
	view := PageView{
		Title:   s.cfg.Title,
		Mode:    models.ModeFlexible,
		Tiers:   []models.Tier{},
		Address: form.Address,
	}

	var projects []models.Project
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		projects, _ = s.collector.FetchProjects(gctx)
		return nil
	})
	if form.Address != "" {
		g.Go(func() error {
			s.loadWallet(gctx, form.Address, &view)
			return nil
		})
	}
	_ = g.Wait()

	view.Projects = projects
	if len(projects) == 0 {
		view.Error = msgNoProjects
		return view
	}

	selectedName := form.Project
	if selectedName == "" {
		selectedName = projects[0].Name
	}
	project, err := collector.FindProject(projects, selectedName)
	if err != nil {
		view.Error = msgInvalidProject
		return view
	}

	pool, err := s.collector.GetPoolData(ctx, project.DetailURL)
	if err != nil {
		s.logger.Warn("pool data unavailable", zap.String("project", project.Name), zap.Error(err))
	}
	if pool == nil {
		pool = collector.FailedPoolData()
	}

	view.TokenName = project.Name
	view.TokenTicker = project.TokenTicker
	view.TokenIconURL = project.TokenIconURL
	view.TokensOffered = format.Exact(project.TokensOffered)
	view.RegistrationEndDate = pool.RegistrationEndDate
	view.IsEnded = deadline.Check(project.RegistrationEndDate, s.now())
	view.Mode = pool.Mode
	view.Tiers = pool.TierConfig

	var totalBurnt float64
	if pool.StakingPowerBurnt != nil {
		totalBurnt = *pool.StakingPowerBurnt
	}
	view.TotalSPBurnt = format.NotAvailable
	if totalBurnt != 0 {
		view.TotalSPBurnt = format.Number(totalBurnt, 0)
	}

	posted := form.Method == http.MethodPost

	switch {
	case pool.Mode == models.ModeFlexible && posted && form.CalculateFlexible:
		view.CustomPrice = parsedOrNil(form.CustomPrice)
		view.SPBurned = parsedOrNil(form.SPBurned)
		if r, ok := reward.CalculateFlexible(project.TokensOffered, totalBurnt, form.CustomPrice, form.SPBurned); ok {
			view.ExpectedReward = &r
		}
	case pool.Mode == models.ModeFixed && posted && form.CalculateFixed:
		view.CustomPrice = parsedOrNil(form.CustomPrice)
		view.Tiers, _ = reward.CalculateFixed(pool.TierConfig, form.CustomPrice)
	}

	if s.prices != nil && project.TokenTicker != "" {
		if price, err := s.prices.TokenPrice(ctx, project.TokenTicker); err == nil {
			view.PriceHint = &price
		} else {
			s.logger.Debug("no price hint", zap.String("source", s.prices.Name()), zap.String("ticker", project.TokenTicker), zap.Error(err))
		}
	}

	return view
}

func parsedOrNil(input string) *float64 {
	if v, ok := reward.ParseAmount(input); ok {
		return &v
	}
	return nil
}

func (s *Server) loadWallet(ctx context.Context, input string, view *PageView) {
	resolved := s.resolver.Resolve(ctx, input)
	view.Resolved = &resolved
	if !resolved.Success {
		view.WalletError = resolved.Error
		return
	}

	metrics, err := s.collector.FetchWalletData(ctx, resolved.Address)
	if err != nil {
		view.WalletError = msgWalletFetchFail
		return
	}
	view.Wallet = metrics
}

var templateFuncs = template.FuncMap{
	// amount 渲染可空数值, nil 显示为 N/A
	"amount": func(v *float64, decimals int) string {
		if v == nil {
			return format.NotAvailable
		}
		return format.Number(*v, decimals)
	},
	"number": format.Number,
	"tierField": func(t models.Tier, key string) string {
		switch v := t.Fields[key].(type) {
		case nil:
			return ""
		case string:
			return v
		default:
			return format.OrNA(v)
		}
	},
}

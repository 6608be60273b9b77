package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/songzhibin97/dropcalc/internal/data/collector"
	"github.com/songzhibin97/dropcalc/internal/deadline"
	"github.com/songzhibin97/dropcalc/internal/models"
	"github.com/songzhibin97/dropcalc/internal/reward"
	"github.com/songzhibin97/dropcalc/internal/utils/format"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	view := s.buildPage(ctx, formFromRequest(r))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, view); err != nil {
		s.logger.Error("failed to render page", zap.String("request_id", requestID(r.Context())), zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	projects, err := s.collector.FetchProjects(ctx)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"projects": projects, "error": msgNoProjects})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

type poolResponse struct {
	Project models.Project   `json:"project"`
	Pool    *models.PoolData `json:"pool"`
	IsEnded bool             `json:"isEnded"`
	Error   string           `json:"error,omitempty"`
}

func (s *Server) handlePool(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	project, err := s.selectProject(r, r.URL.Query().Get("project"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := poolResponse{Project: project, IsEnded: deadline.Check(project.RegistrationEndDate, s.now())}
	status := http.StatusOK
	resp.Pool, err = s.collector.GetPoolData(ctx, project.DetailURL)
	if err != nil {
		status = statusFor(models.KindOf(err))
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

// CalculateRequest accepts numbers or numeric strings for price and sp_burned.
type CalculateRequest struct {
	Project  string `json:"project"`
	Price    any    `json:"price"`
	SPBurned any    `json:"sp_burned"`
}

type CalculateResponse struct {
	Project        string        `json:"project"`
	Mode           models.Mode   `json:"mode"`
	Computed       bool          `json:"computed"`
	ExpectedReward *float64      `json:"expectedReward,omitempty"`
	Tiers          []models.Tier `json:"tiers,omitempty"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	project, err := s.selectProject(r, req.Project)
	if err != nil {
		writeError(w, err)
		return
	}

	pool, err := s.collector.GetPoolData(ctx, project.DetailURL)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := CalculateResponse{Project: project.Name, Mode: pool.Mode}
	price, priceOK := format.ToFloat(req.Price)

	switch pool.Mode {
	case models.ModeFixed:
		if priceOK {
			resp.Tiers = reward.Fixed(pool.TierConfig, price)
			resp.Computed = true
		}
	default:
		sp, spOK := format.ToFloat(req.SPBurned)
		if priceOK && spOK && pool.StakingPowerBurnt != nil {
			if v, ok := reward.Flexible(reward.FlexibleInput{
				TokensOffered:          project.TokensOffered,
				TotalStakingPowerBurnt: *pool.StakingPowerBurnt,
				UserStakingPowerBurned: sp,
				HypotheticalPrice:      price,
			}); ok {
				resp.ExpectedReward = &v
				resp.Computed = true
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	resolved := s.resolver.Resolve(ctx, mux.Vars(r)["input"])
	status := http.StatusOK
	if !resolved.Success {
		status = statusFor(resolved.Kind)
	}
	writeJSON(w, status, resolved)
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	resolved := s.resolver.Resolve(ctx, mux.Vars(r)["input"])
	if !resolved.Success {
		writeJSON(w, statusFor(resolved.Kind), map[string]string{"error": resolved.Error})
		return
	}

	metrics, err := s.collector.FetchWalletData(ctx, resolved.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// selectProject loads the catalog and picks name, or the first project when name is empty.
func (s *Server) selectProject(r *http.Request, name string) (models.Project, error) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	projects, err := s.collector.FetchProjects(ctx)
	if err != nil {
		return models.Project{}, err
	}
	if len(projects) == 0 {
		return models.Project{}, models.NewError(models.KindNotFound, "select project", nil)
	}
	if name == "" {
		return projects[0], nil
	}
	return collector.FindProject(projects, name)
}

func statusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindUnsupported:
		return http.StatusUnprocessableEntity
	case models.KindTransport, models.KindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(models.KindOf(err)), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

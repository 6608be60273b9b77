package mocaverse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/songzhibin97/dropcalc/internal/deadline"
	"github.com/songzhibin97/dropcalc/internal/models"
	"github.com/songzhibin97/dropcalc/internal/utils/format"
	"github.com/songzhibin97/dropcalc/internal/utils/request"
)

const (
	DefaultBaseURL      = "https://api.staking.mocaverse.xyz"
	DefaultProjectsPath = "/api/mocadrop/projects/"
	DefaultWalletPath   = "/api/staking/user"
)

// MocaverseDataSource talks to the staking API. It reports failures as *models.Error and
// leaves fallback values to the caller.
type MocaverseDataSource struct {
	baseURL      string
	projectsPath string
	walletPath   string
	httpClient   *resty.Client
}

type Option func(*MocaverseDataSource)

func WithBaseURL(baseURL string) Option {
	return func(m *MocaverseDataSource) { m.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithPaths(projectsPath, walletPath string) Option {
	return func(m *MocaverseDataSource) {
		if projectsPath != "" {
			m.projectsPath = projectsPath
		}
		if walletPath != "" {
			m.walletPath = walletPath
		}
	}
}

func WithHTTPClient(client *resty.Client) Option {
	return func(m *MocaverseDataSource) { m.httpClient = client }
}

func NewMocaverseDataSource(opts ...Option) *MocaverseDataSource {
	m := &MocaverseDataSource{
		baseURL:      DefaultBaseURL,
		projectsPath: DefaultProjectsPath,
		walletPath:   DefaultWalletPath,
		httpClient:   request.Request,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MocaverseDataSource) Name() string {
	return "mocaverse"
}

// ProjectURL is the detail endpoint for a project slug.
func (m *MocaverseDataSource) ProjectURL(slug string) string {
	return m.baseURL + m.projectsPath + slug
}

// Projects fetches the project listing in upstream order.
func (m *MocaverseDataSource) Projects(ctx context.Context) ([]models.Project, error) {
	const op = "fetch projects"

	body, err := m.get(ctx, op, m.baseURL+m.projectsPath, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []map[string]any `json:"data"`
	}
	if err := decode(body, &result); err != nil {
		return nil, models.NewError(models.KindParse, op, fmt.Errorf("failed to decode response: %w", err))
	}

	projects := make([]models.Project, 0, len(result.Data))
	for i, raw := range result.Data {
		name, ok := raw["name"].(string)
		if !ok {
			return nil, models.NewError(models.KindParse, op, fmt.Errorf("project %d: missing name", i))
		}
		slug, ok := raw["urlSlug"].(string)
		if !ok {
			return nil, models.NewError(models.KindParse, op, fmt.Errorf("project %q: missing urlSlug", name))
		}

		projects = append(projects, models.Project{
			Name:                name,
			DetailURL:           m.ProjectURL(slug),
			IconURL:             stringOr(raw["iconUrl"], ""),
			TokenIconURL:        stringOr(raw["tokenIconUrl"], ""),
			TokenTicker:         stringOr(raw["tokenTicker"], ""),
			TokensOffered:       format.FloatOr(raw["tokensOffered"], 0),
			RegistrationEndDate: stringOr(raw["registrationEndDate"], deadline.NotAvailable),
			Mode:                models.ParseMode(raw["mode"]),
		})
	}

	return projects, nil
}

// PoolData fetches the detail of one project. Malformed numeric fields default to zero and a
// malformed deadline is rendered as "Invalid date format"; only transport and decode failures
// are errors.
func (m *MocaverseDataSource) PoolData(ctx context.Context, projectURL string) (*models.PoolData, error) {
	const op = "fetch pool data"

	body, err := m.get(ctx, op, projectURL, nil)
	if err != nil {
		return nil, err
	}

	var detail struct {
		StakingPowerBurnt   any             `json:"stakingPowerBurnt"`
		RegistrationEndDate any             `json:"registrationEndDate"`
		Mode                any             `json:"mode"`
		TierConfig          json.RawMessage `json:"tierConfig"`
	}
	if err := decode(body, &detail); err != nil {
		return nil, models.NewError(models.KindParse, op, fmt.Errorf("failed to decode response: %w", err))
	}

	burnt := format.FloatOr(detail.StakingPowerBurnt, 0)
	data := &models.PoolData{
		StakingPowerBurnt:   &burnt,
		RegistrationEndDate: deadline.NotAvailable,
		Mode:                models.ParseMode(detail.Mode),
		TierConfig:          []models.Tier{},
	}

	switch v := detail.RegistrationEndDate.(type) {
	case nil:
	case string:
		data.RegistrationEndDate = deadline.Display(v)
	default:
		data.RegistrationEndDate = deadline.InvalidFormat
	}

	if data.Mode == models.ModeFixed && len(detail.TierConfig) > 0 {
		var tiers []models.Tier
		if err := json.Unmarshal(detail.TierConfig, &tiers); err == nil && tiers != nil {
			data.TierConfig = tiers
		}
	}

	return data, nil
}

// WalletData fetches the staking metrics of an address and formats them for display.
func (m *MocaverseDataSource) WalletData(ctx context.Context, address string) (*models.WalletMetrics, error) {
	const op = "fetch wallet data"

	body, err := m.get(ctx, op, m.baseURL+m.walletPath, map[string]string{"address": address})
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := decode(body, &raw); err != nil {
		return nil, models.NewError(models.KindParse, op, fmt.Errorf("failed to decode response: %w", err))
	}
	if inner, ok := raw["data"].(map[string]any); ok {
		raw = inner
	}

	tier := raw["tier"]
	if tier == nil {
		tier = raw["tierIndex"]
	}

	return &models.WalletMetrics{
		TotalGenerated:    format.OrNA(raw["totalGenerated"]),
		BaseRatePerDay:    format.OrNA(raw["baseRatePerDay"]),
		BoostRatePerDay:   format.OrNA(raw["boostRatePerDay"]),
		TotalBoostPercent: format.OrNA(raw["totalBoostPercent"]),
		EarlyBonus:        format.OrNA(raw["earlyBonus"]),
		Balance:           format.OrNA(raw["balance"]),
		Tier:              tierString(tier),
	}, nil
}

func (m *MocaverseDataSource) get(ctx context.Context, op, url string, query map[string]string) ([]byte, error) {
	resp, err := m.httpClient.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(url)
	if err != nil {
		return nil, models.NewError(models.KindTransport, op, fmt.Errorf("failed to execute request: %w", err))
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, models.NewError(models.KindTransport, op, fmt.Errorf("unexpected status code: %d", resp.StatusCode()))
	}

	return resp.Body(), nil
}

func decode(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

func tierString(v any) string {
	switch t := v.(type) {
	case nil:
		return format.NotAvailable
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

package collector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/songzhibin97/dropcalc/internal/deadline"
	"github.com/songzhibin97/dropcalc/internal/models"
)

// MultiSourceCollector implements data.DataCollector by trying each source in order.
// Upstream failures are logged and turned into the documented fallback values.
type MultiSourceCollector struct {
	sources []DataSource
	logger  *zap.Logger
}

type DataSource interface {
	Name() string
	Projects(ctx context.Context) ([]models.Project, error)
	PoolData(ctx context.Context, projectURL string) (*models.PoolData, error)
	WalletData(ctx context.Context, address string) (*models.WalletMetrics, error)
}

func NewMultiSourceCollector(sources []DataSource, logger *zap.Logger) *MultiSourceCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MultiSourceCollector{
		sources: sources,
		logger:  logger,
	}
}

// FailedPoolData is returned by GetPoolData when no source could serve the request.
func FailedPoolData() *models.PoolData {
	return &models.PoolData{
		StakingPowerBurnt:   nil,
		RegistrationEndDate: deadline.FetchFailed,
		Mode:                models.ModeFlexible,
		TierConfig:          []models.Tier{},
	}
}

// FetchProjects implements data.ProjectCatalog
func (c *MultiSourceCollector) FetchProjects(ctx context.Context) ([]models.Project, error) {
	var lastErr error

	for _, source := range c.sources {
		projects, err := source.Projects(ctx)
		if err == nil {
			c.logger.Info("collected projects", zap.String("source", source.Name()), zap.Int("count", len(projects)))
			return projects, nil
		}
		lastErr = err
		c.logger.Error("failed to collect projects", zap.String("source", source.Name()), zap.Error(err))
	}

	return []models.Project{}, allSourcesFailed("projects", lastErr)
}

// GetPoolData implements data.PoolDataFetcher
func (c *MultiSourceCollector) GetPoolData(ctx context.Context, projectURL string) (*models.PoolData, error) {
	var lastErr error

	for _, source := range c.sources {
		pool, err := source.PoolData(ctx, projectURL)
		if err == nil && pool != nil {
			c.logger.Info("collected pool data", zap.String("source", source.Name()), zap.String("url", projectURL))
			return pool, nil
		}
		lastErr = err
		c.logger.Error("failed to collect pool data", zap.String("source", source.Name()), zap.String("url", projectURL), zap.Error(err))
	}

	return FailedPoolData(), allSourcesFailed("pool data", lastErr)
}

// FetchWalletData implements data.WalletDataFetcher
func (c *MultiSourceCollector) FetchWalletData(ctx context.Context, address string) (*models.WalletMetrics, error) {
	var lastErr error

	for _, source := range c.sources {
		metrics, err := source.WalletData(ctx, address)
		if err == nil && metrics != nil {
			c.logger.Info("collected wallet data", zap.String("source", source.Name()), zap.String("address", address))
			return metrics, nil
		}
		lastErr = err
		c.logger.Error("failed to collect wallet data", zap.String("source", source.Name()), zap.String("address", address), zap.Error(err))
	}

	return nil, allSourcesFailed("wallet data", lastErr)
}

// FindProject returns the project with the given name.
func FindProject(projects []models.Project, name string) (models.Project, error) {
	for _, p := range projects {
		if p.Name == name {
			return p, nil
		}
	}
	return models.Project{}, models.NewError(models.KindNotFound, "find project", fmt.Errorf("no project named %q", name))
}

func allSourcesFailed(what string, lastErr error) error {
	if lastErr == nil {
		lastErr = models.NewError(models.KindTransport, "collect "+what, errors.New("no data source configured"))
	}
	return fmt.Errorf("failed to collect %s from all sources: %w", what, lastErr)
}

package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/songzhibin97/dropcalc/internal/models"
)

type fakeSource struct {
	name     string
	projects []models.Project
	pool     *models.PoolData
	wallet   *models.WalletMetrics
	err      error
	calls    int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Projects(ctx context.Context) ([]models.Project, error) {
	f.calls++
	return f.projects, f.err
}

func (f *fakeSource) PoolData(ctx context.Context, projectURL string) (*models.PoolData, error) {
	f.calls++
	return f.pool, f.err
}

func (f *fakeSource) WalletData(ctx context.Context, address string) (*models.WalletMetrics, error) {
	f.calls++
	return f.wallet, f.err
}

func transportErr() error {
	return models.NewError(models.KindTransport, "fetch", errors.New("connection refused"))
}

func TestMultiSourceCollector_FetchProjects(t *testing.T) {
	down := &fakeSource{name: "down", err: transportErr()}
	up := &fakeSource{name: "up", projects: []models.Project{{Name: "Alpha"}}}

	c := NewMultiSourceCollector([]DataSource{down, up}, zap.NewNop())
	projects, err := c.FetchProjects(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []models.Project{{Name: "Alpha"}}, projects)
	assert.Equal(t, 1, down.calls)
}

func TestMultiSourceCollector_FetchProjectsFailureIsEmpty(t *testing.T) {
	c := NewMultiSourceCollector([]DataSource{&fakeSource{name: "down", err: transportErr()}}, nil)

	projects, err := c.FetchProjects(context.Background())

	require.NotNil(t, projects)
	assert.Empty(t, projects)
	assert.Equal(t, models.KindTransport, models.KindOf(err))
}

func TestMultiSourceCollector_GetPoolDataSentinel(t *testing.T) {
	c := NewMultiSourceCollector([]DataSource{&fakeSource{name: "down", err: transportErr()}}, zap.NewNop())

	pool, err := c.GetPoolData(context.Background(), "https://example/api/mocadrop/projects/alpha")

	assert.Error(t, err)
	assert.Equal(t, FailedPoolData(), pool)
	assert.Nil(t, pool.StakingPowerBurnt)
	assert.Equal(t, "Error fetching date", pool.RegistrationEndDate)
	assert.Equal(t, models.ModeFlexible, pool.Mode)
	assert.Empty(t, pool.TierConfig)
}

func TestMultiSourceCollector_FetchWalletData(t *testing.T) {
	wallet := &models.WalletMetrics{Tier: "Gold"}
	c := NewMultiSourceCollector([]DataSource{&fakeSource{name: "up", wallet: wallet}}, zap.NewNop())

	got, err := c.FetchWalletData(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Same(t, wallet, got)

	c = NewMultiSourceCollector([]DataSource{&fakeSource{name: "down", err: transportErr()}}, zap.NewNop())
	got, err = c.FetchWalletData(context.Background(), "0xabc")
	assert.Nil(t, got)
	assert.Error(t, err)
}

func TestMultiSourceCollector_NoSources(t *testing.T) {
	c := NewMultiSourceCollector(nil, zap.NewNop())

	projects, err := c.FetchProjects(context.Background())
	assert.Empty(t, projects)
	assert.Equal(t, models.KindTransport, models.KindOf(err))
}

func TestFindProject(t *testing.T) {
	projects := []models.Project{{Name: "Alpha"}, {Name: "Beta"}}

	p, err := FindProject(projects, "Beta")
	require.NoError(t, err)
	assert.Equal(t, "Beta", p.Name)

	_, err = FindProject(projects, "Gamma")
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

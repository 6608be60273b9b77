package data

import (
	"context"

	"github.com/songzhibin97/dropcalc/internal/models"
)

// ProjectCatalog 项目列表
type ProjectCatalog interface {
	// FetchProjects returns the projects in upstream order. On failure it returns an empty,
	// non-nil slice together with the error.
	FetchProjects(ctx context.Context) ([]models.Project, error)
}

// PoolDataFetcher 项目详情
type PoolDataFetcher interface {
	// GetPoolData returns the project detail. On failure it returns the fetch-failure
	// sentinel (nil staking power, "Error fetching date", flexible, no tiers) together with the error.
	GetPoolData(ctx context.Context, projectURL string) (*models.PoolData, error)
}

// WalletDataFetcher 钱包指标
type WalletDataFetcher interface {
	// FetchWalletData returns display-formatted staking metrics, or nil and the error.
	FetchWalletData(ctx context.Context, address string) (*models.WalletMetrics, error)
}

// DataCollector 负责从质押 API 收集数据
type DataCollector interface {
	ProjectCatalog
	PoolDataFetcher
	WalletDataFetcher
}

// PriceSource 代币市场价格
type PriceSource interface {
	Name() string

	// TokenPrice returns the last traded price of the ticker against the source's quote asset.
	TokenPrice(ctx context.Context, ticker string) (float64, error)
}

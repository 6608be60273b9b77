package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/songzhibin97/dropcalc/internal/configs"
	"github.com/songzhibin97/dropcalc/internal/data"
	"github.com/songzhibin97/dropcalc/internal/data/collector"
	"github.com/songzhibin97/dropcalc/internal/data/collector/binance"
	"github.com/songzhibin97/dropcalc/internal/data/collector/mocaverse"
	"github.com/songzhibin97/dropcalc/internal/ens"
	"github.com/songzhibin97/dropcalc/internal/logger"
	"github.com/songzhibin97/dropcalc/internal/utils/request"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "dropcalc",
	Short: "Estimate Mocadrop rewards from the Mocaverse staking API",
	Long: `dropcalc lists Mocadrop projects, shows their staking power and tier
configuration, and estimates the reward for a hypothetical token price.

It also resolves ENS names and shows the staking metrics of a wallet.
Settings come from an optional config file, a .env file and DROPCALC_* env vars.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
}

// App 进程内共享的依赖
type App struct {
	Config    *configs.Config
	Logger    *zap.Logger
	Collector data.DataCollector
	Resolver  *ens.Resolver
	Prices    data.PriceSource // 未启用时为 nil
}

func newApp() (*App, error) {
	if err := configs.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg, err := configs.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}

	source := mocaverse.NewMocaverseDataSource(
		mocaverse.WithBaseURL(cfg.API.BaseURL),
		mocaverse.WithPaths(cfg.API.ProjectsPath, cfg.API.WalletPath),
		mocaverse.WithHTTPClient(request.New(cfg.API.Timeout, cfg.API.RetryCount)),
	)

	app := &App{
		Config:    cfg,
		Logger:    log,
		Collector: collector.NewMultiSourceCollector([]collector.DataSource{source}, log),
		Resolver: ens.NewResolver(cfg.ENS.RPCURL,
			ens.WithRegistry(cfg.ENS.Registry),
			ens.WithTimeout(cfg.ENS.Timeout),
			ens.WithMaxTries(cfg.ENS.MaxTries),
			ens.WithLogger(log),
		),
	}
	if cfg.Price.Enabled {
		app.Prices = binance.NewBinanceDataSource(cfg.Price.QuoteAsset)
	}

	return app, nil
}

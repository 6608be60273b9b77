package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2"
)

const DefaultQuoteAsset = "USDT"

// BinanceDataSource implements data.PriceSource with Binance spot prices.
type BinanceDataSource struct {
	client     *binance.Client
	quoteAsset string
}

func NewBinanceDataSource(quoteAsset string) *BinanceDataSource {
	if quoteAsset == "" {
		quoteAsset = DefaultQuoteAsset
	}

	// 只读公开行情接口，无需 API 密钥
	return &BinanceDataSource{
		client:     binance.NewClient("", ""),
		quoteAsset: strings.ToUpper(quoteAsset),
	}
}

func (b *BinanceDataSource) Name() string {
	return "binance"
}

// Symbol is the spot pair used for a token ticker, e.g. MOCA -> MOCAUSDT.
func (b *BinanceDataSource) Symbol(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker)) + b.quoteAsset
}

// TokenPrice implements data.PriceSource
func (b *BinanceDataSource) TokenPrice(ctx context.Context, ticker string) (float64, error) {
	if strings.TrimSpace(ticker) == "" {
		return 0, fmt.Errorf("empty ticker")
	}
	symbol := b.Symbol(ticker)

	prices, err := b.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get price for %s: %w", symbol, err)
	}

	for _, p := range prices {
		if p.Symbol != symbol {
			continue
		}
		price, err := strconv.ParseFloat(p.Price, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse price: %w", err)
		}
		return price, nil
	}

	return 0, fmt.Errorf("symbol not found: %s", symbol)
}

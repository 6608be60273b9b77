package reward

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/songzhibin97/dropcalc/internal/models"
	"github.com/songzhibin97/dropcalc/internal/utils/format"
)

// FlexibleInput 弹性模式计算参数
type FlexibleInput struct {
	TokensOffered          float64 `json:"tokens_offered"`
	TotalStakingPowerBurnt float64 `json:"total_staking_power_burnt"`
	UserStakingPowerBurned float64 `json:"user_staking_power_burned"`
	HypotheticalPrice      float64 `json:"hypothetical_price"`
}

// Flexible returns the user's proportional share of the offered tokens valued at the
// hypothetical price. ok is false when any of total, user amount or price is not positive;
// callers must not treat that as a zero reward.
func Flexible(in FlexibleInput) (reward float64, ok bool) {
	if in.TotalStakingPowerBurnt <= 0 || in.HypotheticalPrice <= 0 || in.UserStakingPowerBurned <= 0 {
		return 0, false
	}
	return round2(in.TokensOffered / in.TotalStakingPowerBurnt * in.UserStakingPowerBurned * in.HypotheticalPrice), true
}

// Fixed returns a copy of tiers with ExpectedReward set on each. The input slice is not modified.
func Fixed(tiers []models.Tier, price float64) []models.Tier {
	out := make([]models.Tier, len(tiers))
	for i, tier := range tiers {
		r := round2(tier.TokenAllocation * price)
		tier.ExpectedReward = &r
		out[i] = tier
	}
	return out
}

// ParseAmount parses a user-entered number. Empty, non-numeric and non-finite input is rejected.
func ParseAmount(s string) (float64, bool) {
	return format.ToFloat(s)
}

// CalculateFlexible parses the form inputs and runs Flexible. Malformed input yields no computation.
func CalculateFlexible(tokensOffered, totalBurnt float64, priceInput, spInput string) (float64, bool) {
	price, ok := ParseAmount(priceInput)
	if !ok {
		return 0, false
	}
	sp, ok := ParseAmount(spInput)
	if !ok {
		return 0, false
	}
	return Flexible(FlexibleInput{
		TokensOffered:          tokensOffered,
		TotalStakingPowerBurnt: totalBurnt,
		UserStakingPowerBurned: sp,
		HypotheticalPrice:      price,
	})
}

// CalculateFixed parses the price input and runs Fixed. On malformed input the tiers are
// returned unchanged and ok is false.
func CalculateFixed(tiers []models.Tier, priceInput string) ([]models.Tier, bool) {
	price, ok := ParseAmount(priceInput)
	if !ok {
		return tiers, false
	}
	return Fixed(tiers, price), true
}

// round2 rounds the exact binary value to cents, ties to even: round2(2.675) == 2.67.
func round2(v float64) float64 {
	return decimal.RequireFromString(strconv.FormatFloat(v, 'f', 2, 64)).InexactFloat64()
}

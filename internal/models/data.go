package models

import (
	"bytes"
	"encoding/json"

	"github.com/songzhibin97/dropcalc/internal/utils/format"
)

// Mode 分发模式
type Mode string

const (
	ModeFlexible Mode = "flexible" // 按燃烧的质押算力比例分配
	ModeFixed    Mode = "fixed"    // 按档位固定分配
)

// ParseMode normalizes an upstream mode value; anything other than "fixed" is flexible.
func ParseMode(v any) Mode {
	if s, ok := v.(string); ok && Mode(s) == ModeFixed {
		return ModeFixed
	}
	return ModeFlexible
}

// Project 代币分发项目
type Project struct {
	Name                string  `json:"name"`
	DetailURL           string  `json:"url"`
	IconURL             string  `json:"iconUrl"`
	TokenIconURL        string  `json:"tokenIconUrl"`
	TokenTicker         string  `json:"tokenTicker"`
	TokensOffered       float64 `json:"tokensOffered"`
	RegistrationEndDate string  `json:"registrationEndDate"` // 上游原始时间戳或 "N/A"
	Mode                Mode    `json:"mode"`
}

// PoolData 项目详情
type PoolData struct {
	StakingPowerBurnt   *float64 `json:"stakingPowerBurnt"` // 仅在请求失败时为 nil
	RegistrationEndDate string   `json:"registrationEndDate"`
	Mode                Mode     `json:"mode"`
	TierConfig          []Tier   `json:"tierConfig"`
}

// Tier is one fixed-mode allocation bracket. Upstream fields other than
// tokenAllocation are kept in Fields and written back unchanged.
type Tier struct {
	TokenAllocation float64
	Fields          map[string]any
	ExpectedReward  *float64
}

const (
	tierAllocationKey = "tokenAllocation"
	tierRewardKey     = "expectedReward"
)

func (t *Tier) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	raw := map[string]any{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	t.TokenAllocation = format.FloatOr(raw[tierAllocationKey], 0)
	t.ExpectedReward = nil
	delete(raw, tierAllocationKey)
	delete(raw, tierRewardKey)
	t.Fields = raw
	return nil
}

func (t Tier) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Fields)+2)
	for k, v := range t.Fields {
		out[k] = v
	}
	out[tierAllocationKey] = t.TokenAllocation
	if t.ExpectedReward != nil {
		out[tierRewardKey] = *t.ExpectedReward
	}
	return json.Marshal(out)
}

// WalletMetrics 钱包质押指标，数值字段均已格式化
type WalletMetrics struct {
	TotalGenerated    string `json:"totalGenerated"`
	BaseRatePerDay    string `json:"baseRatePerDay"`
	BoostRatePerDay   string `json:"boostRatePerDay"`
	TotalBoostPercent string `json:"totalBoostPercent"`
	EarlyBonus        string `json:"earlyBonus"`
	Balance           string `json:"balance"`
	Tier              string `json:"tier"`
}

// ResolvedAddress ENS/EVM 地址解析结果
type ResolvedAddress struct {
	Success bool      `json:"success"`
	Address string    `json:"address,omitempty"`
	Type    string    `json:"type,omitempty"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
}

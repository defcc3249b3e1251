package service

import (
	"math"
	"os"
	"strconv"
)

// ==================== 价格常量 ====================

const (
	// DefaultCurrencyRate 默认汇率（上游报价货币 → IQD）
	DefaultCurrencyRate = 1320.0
	// PriceRoundUnit 本币取整单位
	PriceRoundUnit = 1000
)

// ==================== 价格解析器 ====================

// PriceResolver 负责上游价格到展示价格的换算
// 换算后四舍五入到 PriceRoundUnit 的整数倍
type PriceResolver struct {
	rate float64
}

// NewPriceResolver 创建价格解析器，rate <= 0 时回落到环境变量/默认汇率
func NewPriceResolver(rate float64) *PriceResolver {
	if rate <= 0 {
		rate = rateFromEnv()
	}
	return &PriceResolver{rate: rate}
}

func rateFromEnv() float64 {
	if v := os.Getenv("CURRENCY_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return DefaultCurrencyRate
}

// Rate 当前汇率
func (p *PriceResolver) Rate() float64 {
	return p.rate
}

// Normalize 原始价格换算为本币整数价格
// 非正/NaN/Inf 一律归零
func (p *PriceResolver) Normalize(raw float64) int64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	return int64(math.Round(raw*p.rate/PriceRoundUnit)) * PriceRoundUnit
}

// Resolve 解析最终价格：价表命中且为正时覆盖列表价
func (p *PriceResolver) Resolve(listPrice float64, pricelist float64, hasPricelist bool) int64 {
	raw := listPrice
	if hasPricelist && pricelist > 0 {
		raw = pricelist
	}
	return p.Normalize(raw)
}

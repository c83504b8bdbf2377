// Package types provides type definitions for the structured data exchanged between the CV
// analysis pipeline, the AI model, and the history store.
package types

import (
	"fmt"
	"strings"
)

// Market is the labour market an analysis is benchmarked against.
type Market string

// Supported markets.
const (
	MarketBangladesh Market = "Bangladesh"
	MarketAsia       Market = "Asia/South Asia"
	MarketGlobal     Market = "Global"
	MarketTech       Market = "Tech"
	MarketAcademic   Market = "Academic"
	MarketGovernment Market = "Government"
)

// DefaultMarket is used when the caller does not name one.
const DefaultMarket = MarketGlobal

// SalaryPeriod is the period salary figures are quoted in.
type SalaryPeriod string

// Salary periods.
const (
	PeriodMonthly SalaryPeriod = "monthly"
	PeriodAnnual  SalaryPeriod = "annual"
)

// SalaryConvention describes how salary estimates are expressed for a market.
type SalaryConvention struct {
	Currency string
	Period   SalaryPeriod
}

// Markets returns every supported market in display order.
func Markets() []Market {
	return []Market{MarketBangladesh, MarketAsia, MarketGlobal, MarketTech, MarketAcademic, MarketGovernment}
}

// Valid reports whether m is a supported market.
func (m Market) Valid() bool {
	for _, known := range Markets() {
		if m == known {
			return true
		}
	}
	return false
}

// SalaryConvention returns the currency and period used for salary estimates.
// Only the Bangladesh market quotes local currency per month.
func (m Market) SalaryConvention() SalaryConvention {
	if m == MarketBangladesh {
		return SalaryConvention{Currency: "BDT", Period: PeriodMonthly}
	}
	return SalaryConvention{Currency: "USD", Period: PeriodAnnual}
}

// ParseMarket resolves user input to a Market, case-insensitively.
// Empty input yields DefaultMarket.
func ParseMarket(s string) (Market, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultMarket, nil
	}
	for _, known := range Markets() {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown market %q", s)
}

// Package metrics derives the per-turn business indicator snapshot from the
// fact store. Everything here is a pure function of the store: snapshots are
// recomputed on every turn rather than cached, which keeps them trivially
// consistent with the (static) facts.
package metrics

import (
	"math"

	"github.com/SIDHANTH-S/Voigent/internal/facts"
)

// AssumedUnitMargin is the per-unit profit assumed when estimating revenue
// lost to out-of-stock items, in rupees.
const AssumedUnitMargin = 50

// ConcentrationTier buckets the top-3 customer revenue share.
type ConcentrationTier string

const (
	ConcentrationHigh   ConcentrationTier = "high"
	ConcentrationMedium ConcentrationTier = "medium"
	ConcentrationLow    ConcentrationTier = "low"
)

// Snapshot holds the indicators the response generator interpolates.
// Percentages are rounded to one decimal, currency values to whole rupees.
type Snapshot struct {
	ProfitMargin     float64
	ExpenseRatio     float64
	AvgCustomerValue float64

	Top3Revenue    float64
	Top3Percentage float64
	Concentration  ConcentrationTier

	SalaryExpenses   float64
	SalaryPercentage float64
	FixedCosts       float64
	VariableCosts    float64

	LowStock      []facts.Product
	CriticalStock []facts.Product
	WellStocked   []facts.Product

	OutOfStockCount     int
	EstimatedWeeklyLoss float64

	AtRisk  []facts.Customer
	Growing []facts.Customer

	MarginVsBenchmark float64

	InventoryHealth float64
	FinancialHealth float64
}

// Compute derives a fresh snapshot. It is total: an empty or partially filled
// store degrades to zeroed ratios instead of dividing by zero.
func Compute(s *facts.Store) Snapshot {
	o := s.Overview

	snap := Snapshot{
		ProfitMargin:     round1(safePct(o.NetProfitRecent, o.TotalRevenueRecent)),
		ExpenseRatio:     round1(safePct(o.TotalExpensesRecent, o.TotalRevenueRecent)),
		AvgCustomerValue: math.Round(safeDiv(o.TotalRevenueAllTime, float64(o.TotalActiveCustomers))),
		OutOfStockCount:  len(s.Products.OutOfStock),
	}

	for i, c := range s.Customers {
		if i < 3 {
			snap.Top3Revenue += c.Revenue
		}
		if c.RiskLevel == facts.RiskHigh {
			snap.AtRisk = append(snap.AtRisk, c)
		}
		if c.GrowthTrend == facts.TrendGrowing {
			snap.Growing = append(snap.Growing, c)
		}
	}
	snap.Top3Percentage = round1(safePct(snap.Top3Revenue, o.TotalRevenueAllTime))
	snap.Concentration = ConcentrationFor(snap.Top3Percentage)

	snap.SalaryExpenses = s.Expenses.CategoryTotal("staffSalary") + s.Expenses.CategoryTotal("salaries")
	snap.SalaryPercentage = round1(safePct(snap.SalaryExpenses, s.Expenses.Total))
	snap.FixedCosts = snap.SalaryExpenses + s.Expenses.CategoryTotal("rent")
	snap.VariableCosts = s.Expenses.Total - snap.FixedCosts

	for _, p := range s.Products.InStock {
		if p.Stock < 50 && p.Stock > 0 {
			snap.LowStock = append(snap.LowStock, p)
		}
		if p.Stock <= p.ReorderPoint {
			snap.CriticalStock = append(snap.CriticalStock, p)
		}
		if p.Stock >= 150 {
			snap.WellStocked = append(snap.WellStocked, p)
		}
	}

	for _, p := range s.Products.OutOfStock {
		snap.EstimatedWeeklyLoss += float64(p.AvgWeeklySales * AssumedUnitMargin)
	}

	snap.MarginVsBenchmark = round1(snap.ProfitMargin - o.Benchmarks.AvgProfitMargin)
	snap.InventoryHealth = inventoryHealth(s)
	snap.FinancialHealth = financialHealth(snap)

	return snap
}

// ConcentrationFor maps a top-3 revenue share to its risk tier:
// >60 high, >40 medium, else low.
func ConcentrationFor(top3Pct float64) ConcentrationTier {
	switch {
	case top3Pct > 60:
		return ConcentrationHigh
	case top3Pct > 40:
		return ConcentrationMedium
	default:
		return ConcentrationLow
	}
}

// inventoryHealth is (total - outOfStock - 0.5*lowStock) / total * 100,
// rounded to a whole point. An empty catalogue scores zero.
func inventoryHealth(s *facts.Store) float64 {
	total := len(s.Products.InStock) + len(s.Products.OutOfStock)
	if total == 0 {
		return 0
	}
	low := 0
	for _, p := range s.Products.InStock {
		if p.Stock < 50 {
			low++
		}
	}
	score := (float64(total) - float64(len(s.Products.OutOfStock)) - 0.5*float64(low)) / float64(total) * 100
	return clamp(math.Round(score), 0, 100)
}

// financialHealth starts at a baseline of 70 and applies fixed deltas for
// margin, expense-ratio, and concentration bands. Heuristic, not a model.
func financialHealth(snap Snapshot) float64 {
	score := 70.0

	switch {
	case snap.ProfitMargin > 60:
		score += 15
	case snap.ProfitMargin > 50:
		score += 10
	case snap.ProfitMargin < 40:
		score -= 10
	}

	switch {
	case snap.ExpenseRatio < 35:
		score += 10
	case snap.ExpenseRatio > 50:
		score -= 10
	}

	if snap.Top3Percentage > 70 {
		score -= 5
	}

	return clamp(score, 0, 100)
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func safePct(part, whole float64) float64 {
	return safeDiv(part, whole) * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

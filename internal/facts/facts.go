// Package facts holds the read-only business fact store the dialogue engine
// answers questions from. The store is immutable for the lifetime of a
// conversation; derived numbers live in internal/metrics.
package facts

import (
	"strings"
	"unicode"
)

// Segment buckets customers by lifetime value.
type Segment string

const (
	SegmentHigh   Segment = "High Value"
	SegmentMedium Segment = "Medium Value"
	SegmentLow    Segment = "Low Value"
)

// RiskLevel flags how likely a customer is to churn.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Trend describes a customer's order trajectory.
type Trend string

const (
	TrendGrowing   Trend = "growing"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
	TrendAtRisk    Trend = "at-risk"
)

type Store struct {
	Overview  Overview
	Customers []Customer
	Products  Products
	Expenses  Expenses
	Bills     []Bill
	Patterns  Patterns
}

type Overview struct {
	TotalRevenueAllTime  float64
	TotalProfitAllTime   float64
	TotalRevenueRecent   float64
	TotalExpensesRecent  float64
	NetProfitRecent      float64
	TotalActiveCustomers int
	ItemsNeedingReorder  int
	BusinessStartDate    string
	LastUpdated          string
	Currency             string
	Benchmarks           Benchmarks
}

type Benchmarks struct {
	AvgProfitMargin   float64
	AvgCustomerValue  float64
	HealthyStockLevel int
}

type Customer struct {
	Name          string
	Revenue       float64
	Profit        float64
	Segment       Segment
	Orders        int
	AvgOrderValue float64
	LastOrderDate string
	RiskLevel     RiskLevel
	GrowthTrend   Trend
}

type Product struct {
	Name         string
	Stock        int
	ReorderPoint int
	Category     string
	Velocity     string
}

// OutOfStockProduct carries the weekly-sales figure used for loss estimation.
// DisplayName is the short spoken form used in replies; Name may be a long
// bilingual label from the catalogue.
type OutOfStockProduct struct {
	Name           string
	DisplayName    string
	NormalStock    int
	AvgWeeklySales int
	Priority       string
	Category       string
}

type Products struct {
	InStock    []Product
	OutOfStock []OutOfStockProduct
}

type Expense struct {
	Amount float64
	Date   string
	Fixed  bool
	Note   string
}

type Expenses struct {
	Total      float64
	Categories map[string][]Expense
}

type Bill struct {
	BillID      string
	CustomerID  string
	Date        string
	TotalAmount float64
	Items       []string
}

type Patterns struct {
	PeakSalesDay          string
	SlowestDay            string
	TopSellingCategory    string
	SeasonalTrends        string
	CustomerRetentionRate int
}

// CustomerByName returns the customer whose name or first name token matches
// anywhere inside the lower-cased input. Returns nil when nothing matches.
func (s *Store) CustomerByName(input string) *Customer {
	for i := range s.Customers {
		if customerMentioned(input, s.Customers[i].Name) {
			return &s.Customers[i]
		}
	}
	return nil
}

func customerMentioned(input, name string) bool {
	lower := strings.ToLower(input)
	full := strings.ToLower(name)
	if strings.Contains(lower, full) {
		return true
	}
	// Short leading tokens like "T" would match almost anything.
	first, _, _ := strings.Cut(full, " ")
	if len(first) < 4 {
		return false
	}
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if w == first {
			return true
		}
	}
	return false
}

// CategoryTotal sums one expense category.
func (e Expenses) CategoryTotal(category string) float64 {
	var total float64
	for _, entry := range e.Categories[category] {
		total += entry.Amount
	}
	return total
}

// FixedTotal sums every entry marked fixed across all categories.
func (e Expenses) FixedTotal() float64 {
	var total float64
	for _, entries := range e.Categories {
		for _, entry := range entries {
			if entry.Fixed {
				total += entry.Amount
			}
		}
	}
	return total
}

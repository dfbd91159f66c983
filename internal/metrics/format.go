package metrics

import (
	"fmt"
	"strconv"
)

// Spoken currency formatting follows the Indian convention the assistant's
// audience expects: thousands as "₹293k", lakhs (100,000s) as "₹7.45L".

// Thousands renders a rupee amount in whole thousands.
func Thousands(v float64) string {
	return "₹" + strconv.FormatFloat(v/1000, 'f', 0, 64) + "k"
}

// Lakhs renders a rupee amount in lakhs with two decimals.
func Lakhs(v float64) string {
	return "₹" + strconv.FormatFloat(v/100000, 'f', 2, 64) + "L"
}

// Rupees renders a whole-rupee amount.
func Rupees(v float64) string {
	return "₹" + strconv.FormatFloat(v, 'f', 0, 64)
}

// Pct renders a percentage value to one decimal, without the sign.
func Pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// Points renders a margin-vs-benchmark delta to one decimal.
func Points(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// Score renders a 0-100 health score as a whole number.
func Score(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

package facts

// Default returns the built-in dataset for the Chennai grocery distributor the
// assistant fronts. Figures are in INR. A fresh copy is returned on every call
// so callers can't alias each other's stores.
func Default() *Store {
	return &Store{
		Overview: Overview{
			TotalRevenueAllTime:  745031,
			TotalProfitAllTime:   437256,
			TotalRevenueRecent:   292182.80,
			TotalExpensesRecent:  99250.00,
			NetProfitRecent:      192932.80,
			TotalActiveCustomers: 9,
			ItemsNeedingReorder:  2,
			BusinessStartDate:    "2024-01-01",
			LastUpdated:          "2025-10-25",
			Currency:             "INR",
			Benchmarks: Benchmarks{
				AvgProfitMargin:   45,
				AvgCustomerValue:  80000,
				HealthyStockLevel: 100,
			},
		},
		Customers: []Customer{
			{Name: "Porur Bulk Traders", Revenue: 234500.00, Profit: 114500.00, Segment: SegmentHigh, Orders: 8, AvgOrderValue: 29312.5, LastOrderDate: "2025-10-15", RiskLevel: RiskLow, GrowthTrend: TrendStable},
			{Name: "T Nagar Provisions", Revenue: 187350.00, Profit: 102350.00, Segment: SegmentHigh, Orders: 6, AvgOrderValue: 31225, LastOrderDate: "2025-10-18", RiskLevel: RiskLow, GrowthTrend: TrendGrowing},
			{Name: "Chennai Super Mart", Revenue: 125400.00, Profit: 80400.00, Segment: SegmentHigh, Orders: 5, AvgOrderValue: 25080, LastOrderDate: "2025-10-06", RiskLevel: RiskMedium, GrowthTrend: TrendStable},
			{Name: "Velachery Mini Supermarket", Revenue: 52800.00, Profit: 26400.00, Segment: SegmentMedium, Orders: 4, AvgOrderValue: 13200, LastOrderDate: "2025-09-28", RiskLevel: RiskMedium, GrowthTrend: TrendStable},
			{Name: "ADAMBAKKAM ORGANIC SHOP", Revenue: 42681.00, Profit: 42681.00, Segment: SegmentHigh, Orders: 3, AvgOrderValue: 14227, LastOrderDate: "2025-10-12", RiskLevel: RiskLow, GrowthTrend: TrendGrowing},
			{Name: "NANGANALLUR Grains & Grocery Shop", Revenue: 39450.00, Profit: 39450.00, Segment: SegmentHigh, Orders: 3, AvgOrderValue: 13150, LastOrderDate: "2025-10-20", RiskLevel: RiskLow, GrowthTrend: TrendStable},
			{Name: "Mylapore General Store", Revenue: 28500.00, Profit: 14300.00, Segment: SegmentMedium, Orders: 3, AvgOrderValue: 9500, LastOrderDate: "2025-09-22", RiskLevel: RiskHigh, GrowthTrend: TrendDeclining},
			{Name: "Alandur Convenience Store", Revenue: 18750.00, Profit: 9375.00, Segment: SegmentLow, Orders: 2, AvgOrderValue: 9375, LastOrderDate: "2025-09-15", RiskLevel: RiskHigh, GrowthTrend: TrendAtRisk},
			{Name: "Besant Nagar Retail", Revenue: 15600.00, Profit: 7800.00, Segment: SegmentLow, Orders: 2, AvgOrderValue: 7800, LastOrderDate: "2025-09-10", RiskLevel: RiskHigh, GrowthTrend: TrendAtRisk},
		},
		Products: Products{
			OutOfStock: []OutOfStockProduct{
				{Name: "சிவப்பு அரிசி கருப்பு உளுந்து (23 Fine red rice flakes)", DisplayName: "red rice flakes", NormalStock: 50, AvgWeeklySales: 12, Priority: "high", Category: "grains"},
				{Name: "உரிட் டல் பொரிச் ரை மாவு (45 Urad dal porridge flour)", DisplayName: "urad dal flour", NormalStock: 40, AvgWeeklySales: 8, Priority: "high", Category: "flour"},
			},
			InStock: []Product{
				{Name: "Mixed Vegetables Frozen", Stock: 320, ReorderPoint: 50, Category: "frozen", Velocity: "high"},
				{Name: "Canned Tomato Paste", Stock: 220, ReorderPoint: 40, Category: "canned", Velocity: "high"},
				{Name: "Basmati Rice Premium", Stock: 200, ReorderPoint: 60, Category: "grains", Velocity: "high"},
				{Name: "Chickpea Flour 1Kg", Stock: 200, ReorderPoint: 50, Category: "flour", Velocity: "medium"},
				{Name: "Whole Wheat Flour 2Kg", Stock: 180, ReorderPoint: 50, Category: "flour", Velocity: "high"},
				{Name: "Pasta Whole Wheat 500g", Stock: 150, ReorderPoint: 40, Category: "pasta", Velocity: "medium"},
				{Name: "Lentils Mix 1Kg", Stock: 130, ReorderPoint: 40, Category: "pulses", Velocity: "medium"},
				{Name: "Green Tea Organic", Stock: 120, ReorderPoint: 30, Category: "beverages", Velocity: "medium"},
				{Name: "Turmeric Powder Pure", Stock: 95, ReorderPoint: 30, Category: "spices", Velocity: "medium"},
				{Name: "Coconut Oil 1L", Stock: 75, ReorderPoint: 25, Category: "oils", Velocity: "medium"},
				{Name: "Boopathi", Stock: 60, ReorderPoint: 20, Category: "specialty", Velocity: "low"},
				{Name: "Honey Pure Organic 500ml", Stock: 60, ReorderPoint: 20, Category: "sweeteners", Velocity: "low"},
				{Name: "Oreo Milkshake", Stock: 50, ReorderPoint: 20, Category: "beverages", Velocity: "low"},
				{Name: "Dark Chocolate 70%", Stock: 45, ReorderPoint: 20, Category: "snacks", Velocity: "low"},
				{Name: "Almond Butter Natural", Stock: 40, ReorderPoint: 15, Category: "spreads", Velocity: "low"},
				{Name: "Fine red rice flakes", Stock: 20, ReorderPoint: 40, Category: "grains", Velocity: "medium"},
			},
		},
		Expenses: Expenses{
			Total: 99250.00,
			Categories: map[string][]Expense{
				"rent": {
					{Amount: 15000.00, Date: "Sept 18", Fixed: true},
				},
				"staffSalary": {
					{Amount: 25000.00, Date: "Sept 25", Fixed: true},
					{Amount: 25000.00, Date: "Oct 9", Fixed: true},
				},
				"salaries": {
					{Amount: 19000.00, Date: "Oct 10", Fixed: true},
				},
				"marketing": {
					{Amount: 3500.00, Date: "Sept 20", Note: "social media"},
					{Amount: 2000.00, Date: "Oct 5", Note: "print ads"},
					{Amount: 100.00, Date: "Oct 10", Note: "flyers"},
				},
				"utilities": {
					{Amount: 1200.00, Date: "Sept 9", Note: "electricity"},
					{Amount: 2500.00, Date: "Sept 15", Note: "water+maintenance"},
					{Amount: 2500.00, Date: "Oct 1", Note: "water+maintenance"},
				},
				"transportation": {
					{Amount: 500.00, Date: "Sept 10", Note: "delivery"},
					{Amount: 400.00, Date: "Sept 28", Note: "delivery"},
					{Amount: 550.00, Date: "Oct 8", Note: "delivery"},
				},
			},
		},
		Bills: []Bill{
			{BillID: "B1757530567462", CustomerID: "Chennai Super Mart", Date: "Oct 6", TotalAmount: 19234},
			{BillID: "B1757530567453", CustomerID: "Chennai Super Mart", Date: "Sept 15", TotalAmount: 45000, Items: []string{"Chickpea Flour", "Pasta", "Turmeric Powder", "Green Tea"}},
		},
		Patterns: Patterns{
			PeakSalesDay:          "Tuesday",
			SlowestDay:            "Sunday",
			TopSellingCategory:    "grains",
			SeasonalTrends:        "stable",
			CustomerRetentionRate: 89,
		},
	}
}

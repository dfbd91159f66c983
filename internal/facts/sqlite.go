package facts

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// OpenSQLite loads the fact store from a sqlite database, creating and seeding
// it from the built-in dataset when the file is new or empty. The database is
// read once at startup; the engine treats the loaded store as immutable.
func OpenSQLite(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	if err := initSchema(db); err != nil {
		return nil, err
	}

	empty, err := isEmpty(db)
	if err != nil {
		return nil, err
	}
	if empty {
		if err := seed(db, Default()); err != nil {
			return nil, fmt.Errorf("seed facts db: %w", err)
		}
	}

	return load(db)
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS overview (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			revenue_all_time REAL NOT NULL,
			profit_all_time REAL NOT NULL,
			revenue_recent REAL NOT NULL,
			expenses_recent REAL NOT NULL,
			net_profit_recent REAL NOT NULL,
			active_customers INTEGER NOT NULL,
			items_needing_reorder INTEGER NOT NULL,
			business_start_date TEXT NOT NULL,
			last_updated TEXT NOT NULL,
			currency TEXT NOT NULL,
			benchmark_profit_margin REAL NOT NULL,
			benchmark_customer_value REAL NOT NULL,
			benchmark_stock_level INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			name TEXT PRIMARY KEY,
			revenue REAL NOT NULL,
			profit REAL NOT NULL,
			segment TEXT NOT NULL,
			orders INTEGER NOT NULL,
			avg_order_value REAL NOT NULL,
			last_order_date TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			growth_trend TEXT NOT NULL,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			name TEXT PRIMARY KEY,
			display_name TEXT NOT NULL DEFAULT '',
			stock INTEGER NOT NULL,
			normal_stock INTEGER NOT NULL DEFAULT 0,
			reorder_point INTEGER NOT NULL DEFAULT 0,
			avg_weekly_sales INTEGER NOT NULL DEFAULT 0,
			priority TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			velocity TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category TEXT NOT NULL,
			amount REAL NOT NULL,
			date TEXT NOT NULL,
			fixed INTEGER NOT NULL DEFAULT 0,
			note TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS bills (
			bill_id TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL,
			date TEXT NOT NULL,
			total_amount REAL NOT NULL,
			items TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init facts schema: %w", err)
		}
	}
	return nil
}

func isEmpty(db *sql.DB) (bool, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM overview").Scan(&n); err != nil {
		return false, fmt.Errorf("inspect facts db: %w", err)
	}
	return n == 0, nil
}

func seed(db *sql.DB, s *Store) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	o := s.Overview
	if _, err := tx.Exec(`INSERT INTO overview VALUES (1,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.TotalRevenueAllTime, o.TotalProfitAllTime, o.TotalRevenueRecent,
		o.TotalExpensesRecent, o.NetProfitRecent, o.TotalActiveCustomers,
		o.ItemsNeedingReorder, o.BusinessStartDate, o.LastUpdated, o.Currency,
		o.Benchmarks.AvgProfitMargin, o.Benchmarks.AvgCustomerValue,
		o.Benchmarks.HealthyStockLevel); err != nil {
		return err
	}

	for i, c := range s.Customers {
		if _, err := tx.Exec(`INSERT INTO customers VALUES (?,?,?,?,?,?,?,?,?,?)`,
			c.Name, c.Revenue, c.Profit, string(c.Segment), c.Orders,
			c.AvgOrderValue, c.LastOrderDate, string(c.RiskLevel),
			string(c.GrowthTrend), i); err != nil {
			return err
		}
	}

	for i, p := range s.Products.InStock {
		if _, err := tx.Exec(`INSERT INTO products (name, stock, reorder_point, category, velocity, position) VALUES (?,?,?,?,?,?)`,
			p.Name, p.Stock, p.ReorderPoint, p.Category, p.Velocity, i); err != nil {
			return err
		}
	}
	for i, p := range s.Products.OutOfStock {
		if _, err := tx.Exec(`INSERT INTO products (name, display_name, stock, normal_stock, avg_weekly_sales, priority, category, position) VALUES (?,?,0,?,?,?,?,?)`,
			p.Name, p.DisplayName, p.NormalStock, p.AvgWeeklySales, p.Priority, p.Category, i); err != nil {
			return err
		}
	}

	for category, entries := range s.Expenses.Categories {
		for _, e := range entries {
			if _, err := tx.Exec(`INSERT INTO expenses (category, amount, date, fixed, note) VALUES (?,?,?,?,?)`,
				category, e.Amount, e.Date, boolToInt(e.Fixed), e.Note); err != nil {
				return err
			}
		}
	}

	for _, b := range s.Bills {
		if _, err := tx.Exec(`INSERT INTO bills VALUES (?,?,?,?,?)`,
			b.BillID, b.CustomerID, b.Date, b.TotalAmount, joinItems(b.Items)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func load(db *sql.DB) (*Store, error) {
	s := &Store{Expenses: Expenses{Categories: make(map[string][]Expense)}}

	var o Overview
	err := db.QueryRow(`SELECT revenue_all_time, profit_all_time, revenue_recent,
		expenses_recent, net_profit_recent, active_customers, items_needing_reorder,
		business_start_date, last_updated, currency, benchmark_profit_margin,
		benchmark_customer_value, benchmark_stock_level FROM overview WHERE id = 1`).Scan(
		&o.TotalRevenueAllTime, &o.TotalProfitAllTime, &o.TotalRevenueRecent,
		&o.TotalExpensesRecent, &o.NetProfitRecent, &o.TotalActiveCustomers,
		&o.ItemsNeedingReorder, &o.BusinessStartDate, &o.LastUpdated, &o.Currency,
		&o.Benchmarks.AvgProfitMargin, &o.Benchmarks.AvgCustomerValue,
		&o.Benchmarks.HealthyStockLevel)
	if err != nil {
		return nil, fmt.Errorf("load overview: %w", err)
	}
	s.Overview = o

	rows, err := db.Query(`SELECT name, revenue, profit, segment, orders,
		avg_order_value, last_order_date, risk_level, growth_trend
		FROM customers ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c Customer
		var segment, risk, trend string
		if err := rows.Scan(&c.Name, &c.Revenue, &c.Profit, &segment, &c.Orders,
			&c.AvgOrderValue, &c.LastOrderDate, &risk, &trend); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		c.Segment, c.RiskLevel, c.GrowthTrend = Segment(segment), RiskLevel(risk), Trend(trend)
		s.Customers = append(s.Customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}

	prows, err := db.Query(`SELECT name, display_name, stock, normal_stock,
		reorder_point, avg_weekly_sales, priority, category, velocity
		FROM products ORDER BY stock > 0 DESC, position`)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var name, display, priority, category, velocity string
		var stock, normal, reorder, weekly int
		if err := prows.Scan(&name, &display, &stock, &normal, &reorder, &weekly,
			&priority, &category, &velocity); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if stock == 0 {
			s.Products.OutOfStock = append(s.Products.OutOfStock, OutOfStockProduct{
				Name: name, DisplayName: display, NormalStock: normal,
				AvgWeeklySales: weekly, Priority: priority, Category: category,
			})
		} else {
			s.Products.InStock = append(s.Products.InStock, Product{
				Name: name, Stock: stock, ReorderPoint: reorder,
				Category: category, Velocity: velocity,
			})
		}
	}
	if err := prows.Err(); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	erows, err := db.Query(`SELECT category, amount, date, fixed, note FROM expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	defer erows.Close()
	for erows.Next() {
		var category string
		var e Expense
		var fixed int
		if err := erows.Scan(&category, &e.Amount, &e.Date, &fixed, &e.Note); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Fixed = fixed != 0
		s.Expenses.Categories[category] = append(s.Expenses.Categories[category], e)
		s.Expenses.Total += e.Amount
	}
	if err := erows.Err(); err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}

	brows, err := db.Query(`SELECT bill_id, customer_id, date, total_amount, items FROM bills ORDER BY bill_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("load bills: %w", err)
	}
	defer brows.Close()
	for brows.Next() {
		var b Bill
		var items string
		if err := brows.Scan(&b.BillID, &b.CustomerID, &b.Date, &b.TotalAmount, &items); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		b.Items = splitItems(items)
		s.Bills = append(s.Bills, b)
	}
	if err := brows.Err(); err != nil {
		return nil, fmt.Errorf("load bills: %w", err)
	}

	// Patterns are descriptive defaults; they have no table yet.
	s.Patterns = Default().Patterns

	return s, nil
}

func joinItems(items []string) string {
	return strings.Join(items, "|")
}

func splitItems(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

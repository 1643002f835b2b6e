package store

import (
	"database/sql"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"salchipapon-pos/model"
)

// PostgresStore is a Store backed by Postgres. Every Store method maps to a
// single statement (a sale and its lines count as one document and share a
// transaction); there is deliberately no transaction spanning a sale insert
// and the stock decrements that follow it.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{DB: db}, nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

// CreateProduct inserts a product and returns its id.
func (s *PostgresStore) CreateProduct(name string, price decimal.Decimal, stock int) (int64, error) {
	var id int64
	err := s.DB.QueryRow(
		`INSERT INTO products (name, price, stock) VALUES ($1, $2, $3) RETURNING id`,
		name, price, stock,
	).Scan(&id)
	return id, err
}

func (s *PostgresStore) ListProducts() ([]models.Product, error) {
	rows, err := s.DB.Query(`SELECT id, name, price, stock FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.UnitPrice, &p.Stock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetProduct(id int64) (models.Product, error) {
	var p models.Product
	err := s.DB.QueryRow(`SELECT id, name, price, stock FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.UnitPrice, &p.Stock)
	if err == sql.ErrNoRows {
		return models.Product{}, ErrNotFound
	}
	return p, err
}

// DecrementStock subtracts amount from a product's stock only when enough is
// left, so committed stock can never go negative.
func (s *PostgresStore) DecrementStock(productID int64, amount int) error {
	res, err := s.DB.Exec(
		`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`,
		amount, productID,
	)
	if err != nil {
		return err
	}
	ra, _ := res.RowsAffected()
	if ra > 0 {
		return nil
	}
	// No row updated: either the product is missing or the stock ran out.
	var stock int
	err = s.DB.QueryRow(`SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrInsufficientStock
}

// CreateSale persists a sale and its lines, generating the sale id.
func (s *PostgresStore) CreateSale(sale models.Sale) (string, error) {
	id := uuid.NewString()

	tx, err := s.DB.Begin()
	if err != nil {
		return "", err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.Exec(
		`INSERT INTO sales (id, customer, total, created_at, status, payment_method) VALUES ($1,$2,$3,$4,$5,$6)`,
		id, sale.Customer, sale.Total, sale.CreatedAt, sale.Status, sale.PaymentMethod,
	); err != nil {
		return "", err
	}

	stmt, err := tx.Prepare(`INSERT INTO sale_items (sale_id, product_id, name, unit_price, quantity, subtotal) VALUES ($1,$2,$3,$4,$5,$6)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for _, ln := range sale.Lines {
		if _, err := stmt.Exec(id, ln.ProductID, ln.Name, ln.UnitPrice, ln.Quantity, ln.Subtotal); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	committed = true
	return id, nil
}

func (s *PostgresStore) GetSale(id string) (models.Sale, error) {
	var sale models.Sale
	err := s.DB.QueryRow(
		`SELECT id, customer, total, created_at, status, payment_method FROM sales WHERE id = $1`, id,
	).Scan(&sale.ID, &sale.Customer, &sale.Total, &sale.CreatedAt, &sale.Status, &sale.PaymentMethod)
	if err == sql.ErrNoRows {
		return models.Sale{}, ErrNotFound
	}
	if err != nil {
		return models.Sale{}, err
	}

	rows, err := s.DB.Query(
		`SELECT product_id, name, unit_price, quantity, subtotal FROM sale_items WHERE sale_id = $1`, id,
	)
	if err != nil {
		return models.Sale{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var ln models.SaleLine
		if err := rows.Scan(&ln.ProductID, &ln.Name, &ln.UnitPrice, &ln.Quantity, &ln.Subtotal); err != nil {
			return models.Sale{}, err
		}
		sale.Lines = append(sale.Lines, ln)
	}
	return sale, rows.Err()
}

// ListSales returns sales newest first. An empty status selects all of them.
func (s *PostgresStore) ListSales(status string) ([]models.Sale, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		rows, err = s.DB.Query(`SELECT id, customer, total, created_at, status, payment_method FROM sales ORDER BY created_at DESC`)
	} else {
		rows, err = s.DB.Query(`SELECT id, customer, total, created_at, status, payment_method FROM sales WHERE status = $1 ORDER BY created_at DESC`, status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Sale{}
	index := map[string]int{}
	for rows.Next() {
		var sale models.Sale
		if err := rows.Scan(&sale.ID, &sale.Customer, &sale.Total, &sale.CreatedAt, &sale.Status, &sale.PaymentMethod); err != nil {
			return nil, err
		}
		index[sale.ID] = len(out)
		out = append(out, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	items, err := s.DB.Query(`SELECT sale_id, product_id, name, unit_price, quantity, subtotal FROM sale_items`)
	if err != nil {
		return nil, err
	}
	defer items.Close()
	for items.Next() {
		var (
			saleID string
			ln     models.SaleLine
		)
		if err := items.Scan(&saleID, &ln.ProductID, &ln.Name, &ln.UnitPrice, &ln.Quantity, &ln.Subtotal); err != nil {
			return nil, err
		}
		if i, ok := index[saleID]; ok {
			out[i].Lines = append(out[i].Lines, ln)
		}
	}
	return out, items.Err()
}

// UpdateSaleStatus flips a pending sale to the given status. The predicate on
// the current status makes a second settle lose cleanly.
func (s *PostgresStore) UpdateSaleStatus(id, status, paymentMethod string) error {
	res, err := s.DB.Exec(
		`UPDATE sales SET status = $1, payment_method = $2 WHERE id = $3 AND status = 'pending'`,
		status, paymentMethod, id,
	)
	if err != nil {
		return err
	}
	ra, _ := res.RowsAffected()
	if ra > 0 {
		return nil
	}
	var current string
	err = s.DB.QueryRow(`SELECT status FROM sales WHERE id = $1`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrAlreadyCompleted
}

func (s *PostgresStore) CreateExpense(description string, amount decimal.Decimal) (int64, error) {
	var id int64
	err := s.DB.QueryRow(
		`INSERT INTO expenses (description, amount) VALUES ($1, $2) RETURNING id`,
		description, amount,
	).Scan(&id)
	return id, err
}

func (s *PostgresStore) ListExpenses() ([]models.Expense, error) {
	rows, err := s.DB.Query(`SELECT id, description, amount, created_at FROM expenses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Expense{}
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

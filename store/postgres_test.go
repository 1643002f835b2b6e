package store

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"

	"salchipapon-pos/model"
)

func TestCreateProduct(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO products (name, price, stock) VALUES ($1, $2, $3) RETURNING id`)).
		WithArgs("salchipapa clasica", decimal.NewFromInt(10), 5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	id, err := s.CreateProduct("salchipapa clasica", decimal.NewFromInt(10), 5)
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListProducts(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	rows := sqlmock.NewRows([]string{"id", "name", "price", "stock"}).
		AddRow(int64(1), "salchipapa clasica", "10", 5).
		AddRow(int64(2), "chicha morada", "4", 10)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, price, stock FROM products ORDER BY id`)).
		WillReturnRows(rows)

	got, err := s.ListProducts()
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(got) != 2 || got[0].Name != "salchipapa clasica" || got[1].Stock != 10 {
		t.Fatalf("unexpected products: %+v", got)
	}
	if !got[0].UnitPrice.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected price: %s", got[0].UnitPrice)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecrementStock_Success(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`)).
		WithArgs(3, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.DecrementStock(1, 3); err != nil {
		t.Fatalf("DecrementStock failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecrementStock_Insufficient(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	// conditional update touches no row, follow-up read shows stock ran out
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`)).
		WithArgs(6, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT stock FROM products WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(5))

	if err := s.DecrementStock(1, 6); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDecrementStock_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`)).
		WithArgs(1, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT stock FROM products WHERE id = $1`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}))

	if err := s.DecrementStock(99, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateSale(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sale := models.Sale{
		Customer:  "walk-in customer",
		Total:     decimal.NewFromInt(38),
		CreatedAt: createdAt,
		Status:    models.StatusPending,
		Lines: []models.SaleLine{
			{ProductID: 1, Name: "salchipapa clasica", UnitPrice: decimal.NewFromInt(10), Quantity: 3, Subtotal: decimal.NewFromInt(30)},
			{ProductID: 2, Name: "chicha morada", UnitPrice: decimal.NewFromInt(4), Quantity: 2, Subtotal: decimal.NewFromInt(8)},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sales (id, customer, total, created_at, status, payment_method) VALUES ($1,$2,$3,$4,$5,$6)`)).
		WithArgs(sqlmock.AnyArg(), "walk-in customer", decimal.NewFromInt(38), createdAt, models.StatusPending, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO sale_items (sale_id, product_id, name, unit_price, quantity, subtotal) VALUES ($1,$2,$3,$4,$5,$6)`))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sale_items (sale_id, product_id, name, unit_price, quantity, subtotal) VALUES ($1,$2,$3,$4,$5,$6)`)).
		WithArgs(sqlmock.AnyArg(), int64(1), "salchipapa clasica", decimal.NewFromInt(10), 3, decimal.NewFromInt(30)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sale_items (sale_id, product_id, name, unit_price, quantity, subtotal) VALUES ($1,$2,$3,$4,$5,$6)`)).
		WithArgs(sqlmock.AnyArg(), int64(2), "chicha morada", decimal.NewFromInt(4), 2, decimal.NewFromInt(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := s.CreateSale(sale)
	if err != nil {
		t.Fatalf("CreateSale failed: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a generated sale id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateSale_InsertFailureRollsBack(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sales (id, customer, total, created_at, status, payment_method) VALUES ($1,$2,$3,$4,$5,$6)`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	if _, err := s.CreateSale(models.Sale{Status: models.StatusPending}); err == nil {
		t.Fatalf("expected error from failed insert")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetSale(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	createdAt := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, customer, total, created_at, status, payment_method FROM sales WHERE id = $1`)).
		WithArgs("sale-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer", "total", "created_at", "status", "payment_method"}).
			AddRow("sale-1", "Carlos", "38", createdAt, "pending", ""))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT product_id, name, unit_price, quantity, subtotal FROM sale_items WHERE sale_id = $1`)).
		WithArgs("sale-1").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "unit_price", "quantity", "subtotal"}).
			AddRow(int64(1), "salchipapa clasica", "10", 3, "30").
			AddRow(int64(2), "chicha morada", "4", 2, "8"))

	sale, err := s.GetSale("sale-1")
	if err != nil {
		t.Fatalf("GetSale failed: %v", err)
	}
	if sale.Customer != "Carlos" || len(sale.Lines) != 2 {
		t.Fatalf("unexpected sale: %+v", sale)
	}
	if !sale.Lines[1].Subtotal.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("unexpected line subtotal: %s", sale.Lines[1].Subtotal)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetSale_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, customer, total, created_at, status, payment_method FROM sales WHERE id = $1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer", "total", "created_at", "status", "payment_method"}))

	if _, err := s.GetSale("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListSales_StatusFilter(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	createdAt := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, customer, total, created_at, status, payment_method FROM sales WHERE status = $1 ORDER BY created_at DESC`)).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer", "total", "created_at", "status", "payment_method"}).
			AddRow("sale-1", "Carlos", "38", createdAt, "pending", ""))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT sale_id, product_id, name, unit_price, quantity, subtotal FROM sale_items`)).
		WillReturnRows(sqlmock.NewRows([]string{"sale_id", "product_id", "name", "unit_price", "quantity", "subtotal"}).
			AddRow("sale-1", int64(1), "salchipapa clasica", "10", 3, "30").
			AddRow("other", int64(2), "chicha morada", "4", 2, "8"))

	sales, err := s.ListSales("pending")
	if err != nil {
		t.Fatalf("ListSales failed: %v", err)
	}
	if len(sales) != 1 || len(sales[0].Lines) != 1 {
		t.Fatalf("unexpected sales: %+v", sales)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateSaleStatus_Paths(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	// pending sale updates cleanly
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sales SET status = $1, payment_method = $2 WHERE id = $3 AND status = 'pending'`)).
		WithArgs("completed", "cash", "sale-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := s.UpdateSaleStatus("sale-1", "completed", "cash"); err != nil {
		t.Fatalf("UpdateSaleStatus failed: %v", err)
	}

	// already completed: predicate matches nothing, sale still exists
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sales SET status = $1, payment_method = $2 WHERE id = $3 AND status = 'pending'`)).
		WithArgs("completed", "cash", "sale-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM sales WHERE id = $1`)).
		WithArgs("sale-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("completed"))
	if err := s.UpdateSaleStatus("sale-1", "completed", "cash"); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}

	// missing sale
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sales SET status = $1, payment_method = $2 WHERE id = $3 AND status = 'pending'`)).
		WithArgs("completed", "cash", "nope").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status FROM sales WHERE id = $1`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	if err := s.UpdateSaleStatus("nope", "completed", "cash"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateExpense(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO expenses (description, amount) VALUES ($1, $2) RETURNING id`)).
		WithArgs("papas", decimal.NewFromInt(20)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))

	id, err := s.CreateExpense("papas", decimal.NewFromInt(20))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if id != 4 {
		t.Fatalf("expected id 4, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

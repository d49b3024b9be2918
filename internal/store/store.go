package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"pos-service/internal/models"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Migrate applies embedded schema migrations
func (s *Store) Migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := migratepg.WithInstance(s.db.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetMenuItems retrieves active menu items ordered the way the POS screen
// groups them
func (s *Store) GetMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM menu_items WHERE active = TRUE ORDER BY category, name")
	return items, err
}

// GetMenuItemByID retrieves a menu item by ID
func (s *Store) GetMenuItemByID(ctx context.Context, id int64) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.GetContext(ctx, &item, "SELECT * FROM menu_items WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("menu item not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateMenuItem creates a new menu item
func (s *Store) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	query := `
		INSERT INTO menu_items (name, category, price)
		VALUES ($1, $2, $3)
		RETURNING id, active, created_at`

	return s.db.GetContext(ctx, item, query, item.Name, item.Category, item.Price)
}

// UpdateMenuItem updates name, category and list price of a menu item.
// Existing order line items keep their price snapshots.
func (s *Store) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE menu_items SET name = $1, category = $2, price = $3 WHERE id = $4",
		item.Name, item.Category, item.Price, item.ID)
	return err
}

// DeactivateMenuItem soft-deletes a menu item
func (s *Store) DeactivateMenuItem(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE menu_items SET active = FALSE WHERE id = $1", id)
	return err
}

// GetTables retrieves active tables
func (s *Store) GetTables(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	err := s.db.SelectContext(ctx, &tables,
		"SELECT * FROM tables WHERE active = TRUE ORDER BY table_number")
	return tables, err
}

// CreateTable adds a table by number
func (s *Store) CreateTable(ctx context.Context, tableNumber int) (*models.Table, error) {
	var table models.Table
	err := s.db.GetContext(ctx, &table,
		"INSERT INTO tables (table_number) VALUES ($1) RETURNING id, table_number, active",
		tableNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &table, nil
}

// DeactivateTable soft-deletes a table
func (s *Store) DeactivateTable(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE tables SET active = FALSE WHERE id = $1", id)
	return err
}

// GetWaiters retrieves active waiters
func (s *Store) GetWaiters(ctx context.Context) ([]models.Waiter, error) {
	var waiters []models.Waiter
	err := s.db.SelectContext(ctx, &waiters,
		"SELECT * FROM waiters WHERE active = TRUE ORDER BY name")
	return waiters, err
}

// GetWaiterByID retrieves a waiter by ID
func (s *Store) GetWaiterByID(ctx context.Context, id int64) (*models.Waiter, error) {
	var waiter models.Waiter
	err := s.db.GetContext(ctx, &waiter, "SELECT * FROM waiters WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("waiter not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &waiter, nil
}

// CreateWaiter creates a new waiter
func (s *Store) CreateWaiter(ctx context.Context, waiter *models.Waiter) error {
	query := `
		INSERT INTO waiters (name, phone)
		VALUES ($1, $2)
		RETURNING id, active, created_at`

	return s.db.GetContext(ctx, waiter, query, waiter.Name, waiter.Phone)
}

// UpdateWaiter updates a waiter's name and phone
func (s *Store) UpdateWaiter(ctx context.Context, waiter *models.Waiter) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE waiters SET name = $1, phone = $2 WHERE id = $3",
		waiter.Name, waiter.Phone, waiter.ID)
	return err
}

// DeactivateWaiter soft-deletes a waiter
func (s *Store) DeactivateWaiter(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE waiters SET active = FALSE WHERE id = $1", id)
	return err
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Dividend-Income-Projector/internal/apperrors"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
)

// DeclarationRepository stores the last-known-good dividend declarations per ticker.
// Each ticker's list is replaced as a whole and read back in its original order.
type DeclarationRepository struct {
	db *sql.DB
}

// NewDeclarationRepository creates a new DeclarationRepository.
func NewDeclarationRepository(db *sql.DB) *DeclarationRepository {
	return &DeclarationRepository{db: db}
}

// Replace swaps the stored declarations of ticker for decls in one transaction.
// Tickers are stored upper-cased.
func (r *DeclarationRepository) Replace(ctx context.Context, ticker string, decls []model.DividendDeclaration, fetchedAt time.Time) error {
	key := model.TickerKey(ticker)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM dividend_declaration WHERE ticker = ?`, key); err != nil {
		return fmt.Errorf("failed to clear declarations for %s: %w", key, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dividend_declaration
		(ticker, position, ex_dividend_date, payment_date, cash_dividend, stock_dividend, fiscal_period)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare declaration insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range decls {
		_, err := stmt.ExecContext(ctx,
			key,
			i,
			d.ExDividendDate,
			d.PaymentDate,
			d.CashDividend.String(),
			d.StockDividend.String(),
			d.FiscalPeriod,
		)
		if err != nil {
			return fmt.Errorf("failed to insert declaration for %s: %w", key, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dividend_snapshot (ticker, fetched_at) VALUES (?, ?)
		ON CONFLICT(ticker) DO UPDATE SET fetched_at = excluded.fetched_at
	`, key, formatTime(fetchedAt))
	if err != nil {
		return fmt.Errorf("failed to record snapshot time for %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit declarations for %s: %w", key, err)
	}
	return nil
}

// Get returns the stored declarations of ticker in their original order.
// A ticker that was never stored yields apperrors.ErrSnapshotNotFound; a ticker
// stored with an empty history yields an empty slice.
func (r *DeclarationRepository) Get(ctx context.Context, ticker string) ([]model.DividendDeclaration, error) {
	key := model.TickerKey(ticker)

	var fetchedAt string
	err := r.db.QueryRowContext(ctx, `SELECT fetched_at FROM dividend_snapshot WHERE ticker = ?`, key).Scan(&fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSnapshotNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend_snapshot table: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ex_dividend_date, payment_date, cash_dividend, stock_dividend, fiscal_period
		FROM dividend_declaration
		WHERE ticker = ?
		ORDER BY position ASC
	`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend_declaration table: %w", err)
	}
	defer rows.Close()

	decls := []model.DividendDeclaration{}
	for rows.Next() {
		var d model.DividendDeclaration
		var cashStr, stockStr string

		if err := rows.Scan(&d.ExDividendDate, &d.PaymentDate, &cashStr, &stockStr, &d.FiscalPeriod); err != nil {
			return nil, fmt.Errorf("failed to scan dividend_declaration results: %w", err)
		}

		d.CashDividend, err = decimal.NewFromString(cashStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse cash dividend %q: %w", cashStr, err)
		}
		d.StockDividend, err = decimal.NewFromString(stockStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stock dividend %q: %w", stockStr, err)
		}

		decls = append(decls, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend_declaration table: %w", err)
	}

	return decls, nil
}

// Tickers lists every ticker with a stored snapshot, sorted.
func (r *DeclarationRepository) Tickers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ticker FROM dividend_snapshot ORDER BY ticker ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend_snapshot table: %w", err)
	}
	defer rows.Close()

	tickers := []string{}
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan dividend_snapshot results: %w", err)
		}
		tickers = append(tickers, ticker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend_snapshot table: %w", err)
	}

	return tickers, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"frontofhouse/internal/model"
	"frontofhouse/internal/notify"
	"frontofhouse/internal/summary"
)

// LiquidationService settles released orders: they are removed from the
// backend and copied into the local ledger.
type LiquidationService struct {
	db        *sql.DB
	floor     *FloorService
	publisher notify.Publisher
	now       func() time.Time
}

func NewLiquidationService(db *sql.DB, floor *FloorService, publisher notify.Publisher) *LiquidationService {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &LiquidationService{db: db, floor: floor, publisher: publisher, now: time.Now}
}

// Liquidate records only the orders the backend actually removed. When some
// removals fail the recorded liquidation is returned together with
// ErrPartialLiquidation.
func (s *LiquidationService) Liquidate(ctx context.Context, staffID string) (*model.Liquidation, error) {
	snap, err := s.floor.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	released := summary.Released(snap.Orders)
	if len(released) == 0 {
		return nil, ErrNothingToLiquidate
	}

	removed, removeErr := s.floor.removeOrders(ctx, released)
	s.floor.refreshAfterWrite(ctx)
	if len(removed) == 0 {
		return nil, fmt.Errorf("liquidate: %w", removeErr)
	}

	liq := buildLiquidation(uuid.NewString(), staffID, removed, s.now().UTC())
	if err := s.record(ctx, liq); err != nil {
		slog.Error("liquidation removed orders but was not recorded",
			"liquidation", liq.ID, "orders", liq.OrderCount, "total", liq.Total.StringFixed(2), "error", err)
		return nil, fmt.Errorf("record liquidation: %w", err)
	}

	if err := s.publisher.Publish(ctx, notify.Event{
		Key:   notify.OrdersLiquidated,
		Count: liq.OrderCount,
		Total: liq.Total.StringFixed(2),
		At:    liq.LiquidatedAt,
	}); err != nil {
		slog.Warn("failed to publish event", "key", notify.OrdersLiquidated, "error", err)
	}

	if removeErr != nil {
		return liq, fmt.Errorf("%w: %v", ErrPartialLiquidation, removeErr)
	}
	return liq, nil
}

func buildLiquidation(id, staffID string, orders []model.Order, at time.Time) *model.Liquidation {
	liq := &model.Liquidation{
		ID:           id,
		StaffID:      staffID,
		Total:        summary.Total(orders),
		OrderCount:   len(orders),
		LiquidatedAt: at,
	}
	for _, o := range orders {
		extras := decimal.Zero
		for _, e := range o.Extras {
			extras = extras.Add(e.Price)
		}
		line := model.LiquidationLine{
			TableNumber: o.TableNumber,
			ProductName: o.Product.Name,
			Quantity:    o.Quantity,
			UnitPrice:   o.Product.Price,
			ExtrasTotal: extras,
			LineTotal:   summary.LineTotal(o),
		}
		if o.ReleasedAt != nil {
			line.ReleasedAt = o.ReleasedAt.Time().UTC()
		}
		liq.Lines = append(liq.Lines, line)
	}
	return liq
}

func (s *LiquidationService) record(ctx context.Context, liq *model.Liquidation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	staffID := sql.NullString{String: liq.StaffID, Valid: liq.StaffID != ""}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO liquidations (id, staff_id, total, order_count, liquidated_at) VALUES ($1, $2, $3, $4, $5)`,
		liq.ID, staffID, liq.Total, liq.OrderCount, liq.LiquidatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert liquidation: %w", err)
	}

	for _, l := range liq.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO liquidation_lines
				(liquidation_id, table_number, product_name, quantity, unit_price, extras_total, line_total, released_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			liq.ID, l.TableNumber, l.ProductName, l.Quantity, l.UnitPrice, l.ExtrasTotal, l.LineTotal, l.ReleasedAt,
		)
		if err != nil {
			return fmt.Errorf("insert liquidation line: %w", err)
		}
	}

	return tx.Commit()
}

func (s *LiquidationService) History(ctx context.Context, limit int) ([]model.Liquidation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_id, total, order_count, liquidated_at
		FROM liquidations
		ORDER BY liquidated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query liquidations: %w", err)
	}
	defer rows.Close()

	var out []model.Liquidation
	for rows.Next() {
		l, err := scanLiquidation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return out, nil
}

func (s *LiquidationService) Get(ctx context.Context, id string) (*model.Liquidation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, staff_id, total, order_count, liquidated_at FROM liquidations WHERE id = $1`, id)
	liq, err := scanLiquidation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLiquidationNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT table_number, product_name, quantity, unit_price, extras_total, line_total, released_at
		FROM liquidation_lines
		WHERE liquidation_id = $1
		ORDER BY released_at ASC, id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query liquidation lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l model.LiquidationLine
		if err := rows.Scan(&l.TableNumber, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.ExtrasTotal, &l.LineTotal, &l.ReleasedAt); err != nil {
			return nil, fmt.Errorf("scan liquidation line: %w", err)
		}
		liq.Lines = append(liq.Lines, l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return liq, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLiquidation(row scanner) (*model.Liquidation, error) {
	var (
		l       model.Liquidation
		staffID sql.NullString
	)
	if err := row.Scan(&l.ID, &staffID, &l.Total, &l.OrderCount, &l.LiquidatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan liquidation: %w", err)
	}
	l.StaffID = staffID.String
	return &l, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `o.id, o.delivery_address, o.status, o.user_id, o.created_at, o.updated_at`

// OrderRepo órdenes en la tabla orders y sus líneas en order_lines (indexadas por product_id).
type OrderRepo struct {
	q Querier
}

func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create guarda la orden y sus líneas en una transacción.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	return withTx(ctx, r.q, func(tx Querier) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO orders (id, delivery_address, status, user_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, o.DeliveryAddress, o.Status, o.UserID, o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert order: %w", err)
		}
		batch := &pgx.Batch{}
		for i, l := range o.Lines {
			batch.Queue(`INSERT INTO order_lines (order_id, product_id, quantity, position) VALUES ($1, $2, $3, $4)`,
				o.ID, l.ProductID, l.Quantity, i)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert order lines: %w", err)
		}
		return nil
	})
}

// GetByID obtiene la orden con sus líneas. (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	orders, err := r.query(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return orders[0], nil
}

// Update guarda dirección y estado; las líneas no cambian.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	err := r.q.QueryRow(ctx,
		`UPDATE orders SET delivery_address = $2, status = $3, updated_at = now() WHERE id = $1 RETURNING updated_at`,
		o.ID, o.DeliveryAddress, o.Status,
	).Scan(&o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

func (r *OrderRepo) List(ctx context.Context, limit, offset int) ([]*entity.Order, error) {
	l, off := limitArgs(limit, offset)
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders o ORDER BY o.created_at, o.id LIMIT $1 OFFSET $2`, l, off)
}

func (r *OrderRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*entity.Order, error) {
	l, off := limitArgs(limit, offset)
	return r.query(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.user_id = $3 ORDER BY o.created_at, o.id LIMIT $1 OFFSET $2`,
		l, off, userID)
}

func (r *OrderRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders by user: %w", err)
	}
	return n, nil
}

// ListActiveByUser órdenes no canceladas del usuario (idx_orders_user_id).
func (r *OrderRepo) ListActiveByUser(ctx context.Context, userID int64) ([]*entity.Order, error) {
	return r.query(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.user_id = $1 AND o.status <> 'cancelled' ORDER BY o.created_at`,
		userID)
}

// ListActiveByProduct órdenes no canceladas que contienen el producto (idx_order_lines_product_id).
func (r *OrderRepo) ListActiveByProduct(ctx context.Context, productID string) ([]*entity.Order, error) {
	return r.query(ctx,
		`SELECT `+orderColumns+` FROM orders o
		 JOIN order_lines ol ON ol.order_id = o.id
		 WHERE ol.product_id = $1 AND o.status <> 'cancelled'
		 ORDER BY o.created_at`,
		productID)
}

// query carga las órdenes y después sus líneas en una sola consulta.
func (r *OrderRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var (
		orders []*entity.Order
		ids    []string
		byID   = map[string]*entity.Order{}
	)
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.DeliveryAddress, &o.Status, &o.UserID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, &o)
		ids = append(ids, o.ID)
		byID[o.ID] = &o
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(ids) == 0 {
		return orders, nil
	}

	lines, err := r.q.Query(ctx,
		`SELECT order_id, product_id, quantity FROM order_lines WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, position`,
		ids)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer lines.Close()
	for lines.Next() {
		var orderID string
		var l entity.OrderLine
		if err := lines.Scan(&orderID, &l.ProductID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if o := byID[orderID]; o != nil {
			o.Lines = append(o.Lines, l)
		}
	}
	return orders, lines.Err()
}

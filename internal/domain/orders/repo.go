package orders

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/barber-kiosk/internal/domain/selection"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, o Order) (*Order, error) {
	hd, err := json.Marshal(o.HaircutDetails)
	if err != nil {
		return nil, err
	}
	bd, err := json.Marshal(o.BeardDetails)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO orders (session_id, user_id, service_type, haircut_style, haircut_details, beard_style, beard_details)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at
	`, o.SessionID, o.UserID, string(o.ServiceType), o.HaircutStyleID, hd, o.BeardStyleID, bd)
	if err := row.Scan(&o.ID, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) ListBetween(ctx context.Context, from, to time.Time) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, user_id, service_type, haircut_style, haircut_details, beard_style, beard_details, created_at
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var st string
		var hd, bd []byte
		if err := rows.Scan(&o.ID, &o.SessionID, &o.UserID, &st, &o.HaircutStyleID, &hd, &o.BeardStyleID, &bd, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.ServiceType = selection.ServiceType(st)
		_ = json.Unmarshal(hd, &o.HaircutDetails)
		_ = json.Unmarshal(bd, &o.BeardDetails)
		out = append(out, o)
	}
	return out, rows.Err()
}

package invite

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nutrio/nutrio/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const inviteCols = `id, nutritionist_id, token, email, status, expires_at, created_at, updated_at`

func scanInvite(row pgx.Row) (*Invite, error) {
	var i Invite
	err := row.Scan(&i.ID, &i.NutritionistID, &i.Token, &i.Email, &i.Status,
		&i.ExpiresAt, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *repoPG) Create(ctx context.Context, i *Invite) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO invites (id, nutritionist_id, token, email, status, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		i.ID, i.NutritionistID, i.Token, i.Email, i.Status, i.ExpiresAt,
	).Scan(&i.CreatedAt, &i.UpdatedAt)
}

func (r *repoPG) GetByToken(ctx context.Context, token string) (*Invite, error) {
	return scanInvite(r.conn(ctx).QueryRow(ctx,
		`SELECT `+inviteCols+` FROM invites WHERE token = $1`, token))
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Invite, error) {
	return scanInvite(r.conn(ctx).QueryRow(ctx,
		`SELECT `+inviteCols+` FROM invites WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, nutritionistID uuid.UUID, limit, offset int) ([]*Invite, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM invites WHERE nutritionist_id = $1`, nutritionistID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+inviteCols+` FROM invites
		WHERE nutritionist_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, nutritionistID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*Invite, 0)
	for rows.Next() {
		i, err := scanInvite(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, i)
	}
	return out, total, rows.Err()
}

// Transition is the atomic check-and-set. A concurrent writer that already
// moved the invite out of `from` makes the UPDATE match zero rows.
func (r *repoPG) Transition(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE invites SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
)

type revokedTokensRepo struct {
	db dbtx
}

func (r *revokedTokensRepo) RevokeToken(ctx context.Context, t domain.RevokedToken) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO revoked_tokens (jti, expires_at, created_at) VALUES (?, ?, ?)
ON CONFLICT (jti) DO NOTHING`,
		t.JTI, t.ExpiresAt.Unix(), time.Now().UTC(),
	)
	return err
}

func (r *revokedTokensRepo) ListActiveRevokedTokens(ctx context.Context, now time.Time) ([]domain.RevokedToken, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT jti, expires_at, created_at FROM revoked_tokens WHERE expires_at > ?`,
		now.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RevokedToken
	for rows.Next() {
		var (
			t   domain.RevokedToken
			exp int64
		)
		if err := rows.Scan(&t.JTI, &exp, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.ExpiresAt = time.Unix(exp, 0).UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *revokedTokensRepo) DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

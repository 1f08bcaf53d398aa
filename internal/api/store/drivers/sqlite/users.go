package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/albumhub/internal/api/domain"
	"github.com/aussiebroadwan/albumhub/internal/api/store"
)

type usersRepo struct {
	db dbtx
}

const selectUser = `
SELECT u.id, u.username, u.email, u.password_hash, u.active, u.last_login,
       u.created_at, u.updated_at, COALESCE(group_concat(r.role, ','), '')
FROM users u
LEFT JOIN user_roles r ON r.user_id = u.id
`

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, selectUser+`WHERE u.username = ? GROUP BY u.id`, username)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUser+`GROUP BY u.id ORDER BY u.created_at, u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, username, email, password_hash, active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Active, u.CreatedAt, u.CreatedAt,
	)
	if err != nil {
		return mapConstraint(err)
	}

	for _, role := range u.Roles {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role) VALUES (?, ?)`, u.ID, role.String(),
		); err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, username, newHash string) error {
	return r.update(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE username = ?`,
		newHash, time.Now().UTC(), username,
	)
}

func (r *usersRepo) SetActive(ctx context.Context, username string, active bool) error {
	return r.update(ctx,
		`UPDATE users SET active = ?, updated_at = ? WHERE username = ?`,
		active, time.Now().UTC(), username,
	)
}

func (r *usersRepo) TouchLastLogin(ctx context.Context, username string, at time.Time) error {
	return r.update(ctx,
		`UPDATE users SET last_login = ? WHERE username = ?`,
		at.UTC(), username,
	)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *usersRepo) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u         domain.User
		lastLogin sql.NullTime
		roles     string
	)
	err := s.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Active,
		&lastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
		&roles,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.LastLogin = mapNullTimePtr(lastLogin)
	if roles != "" {
		u.Roles = domain.ParseRoles(strings.Split(roles, ","))
	}
	return u, nil
}

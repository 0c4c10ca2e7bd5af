package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var userColumns = []string{
	"id", "email", "password_hash", "roles", "enabled", "verification_code", "created_at",
}

// userRepo implements UserRepo on the users table.
type userRepo struct {
	db *sql.DB
}

func (r *userRepo) Create(ctx context.Context, rec *UserRecord) error {
	rec.CreatedAt = time.Now().UTC()
	roles, err := json.Marshal(rec.Roles)
	if err != nil {
		return fmt.Errorf("marshal roles: %w", err)
	}

	ins := sqlite.Insert(UsersTable.Name).
		Columns(userColumns[1:]...).
		Values(rec.Email, rec.PasswordHash, string(roles), rec.Enabled, nullableString(rec.VerificationCode), rec.CreatedAt)
	res, err := execBuilder(ctx, r.db, ins)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	rec.ID = id
	return nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*UserRecord, error) {
	return r.first(ctx, entsql.EQ("email", email))
}

func (r *userRepo) Get(ctx context.Context, id int64) (*UserRecord, error) {
	return r.first(ctx, entsql.EQ("id", id))
}

func (r *userRepo) Update(ctx context.Context, rec *UserRecord) error {
	roles, err := json.Marshal(rec.Roles)
	if err != nil {
		return fmt.Errorf("marshal roles: %w", err)
	}
	upd := sqlite.Update(UsersTable.Name).
		Set("password_hash", rec.PasswordHash).
		Set("roles", string(roles)).
		Set("enabled", rec.Enabled).
		Set("verification_code", nullableString(rec.VerificationCode)).
		Where(entsql.EQ("id", rec.ID))

	res, err := execBuilder(ctx, r.db, upd)
	if err != nil {
		return fmt.Errorf("update user %d: %w", rec.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update user %d: %w", rec.ID, ErrNotFound)
	}
	return nil
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *userRepo) first(ctx context.Context, p *entsql.Predicate) (*UserRecord, error) {
	sel := sqlite.Select(userColumns...).
		From(entsql.Table(UsersTable.Name)).
		Where(p).
		Limit(1)

	var rec *UserRecord
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var (
			u     UserRecord
			roles string
			code  sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &roles, &u.Enabled, &code, &u.CreatedAt); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(roles), &u.Roles); err != nil {
			return fmt.Errorf("unmarshal roles: %w", err)
		}
		u.VerificationCode = code.String
		rec = &u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

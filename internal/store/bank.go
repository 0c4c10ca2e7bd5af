package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// bankRepo implements BankRepo on the question_banks table.
type bankRepo struct {
	db *sql.DB
}

func (r *bankRepo) SaveBank(ctx context.Context, rec BankRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	ins := sqlite.Insert(QuestionBanksTable.Name).
		Columns("version", "content", "created_at").
		Values(rec.Version, rec.Content, rec.CreatedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("version"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := execBuilder(ctx, r.db, ins); err != nil {
		return fmt.Errorf("save question bank %s: %w", rec.Version, err)
	}
	return nil
}

func (r *bankRepo) LatestBank(ctx context.Context) (*BankRecord, error) {
	sel := sqlite.Select("version", "content", "created_at").
		From(entsql.Table(QuestionBanksTable.Name)).
		OrderBy(entsql.Desc("created_at")).
		Limit(1)

	var rec *BankRecord
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var b BankRecord
		if err := rows.Scan(&b.Version, &b.Content, &b.CreatedAt); err != nil {
			return err
		}
		rec = &b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query latest question bank: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (r *bankRepo) ListBanks(ctx context.Context) ([]BankRecord, error) {
	sel := sqlite.Select("version", "created_at").
		From(entsql.Table(QuestionBanksTable.Name)).
		OrderBy(entsql.Desc("created_at"))

	var out []BankRecord
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var b BankRecord
		if err := rows.Scan(&b.Version, &b.CreatedAt); err != nil {
			return err
		}
		out = append(out, b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list question banks: %w", err)
	}
	return out, nil
}

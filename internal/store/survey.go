package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var surveyColumns = []string{
	"id", "title", "description", "status", "schema_json", "created_by", "created_at", "updated_at",
}

// surveyRepo implements SurveyRepo on the surveys table.
type surveyRepo struct {
	db *sql.DB
}

func (r *surveyRepo) Create(ctx context.Context, rec *SurveyRecord) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	ins := sqlite.Insert(SurveysTable.Name).
		Columns(surveyColumns[1:]...).
		Values(rec.Title, rec.Description, rec.Status, nullableJSON(rec.SchemaJSON), rec.CreatedBy, now, now)
	res, err := execBuilder(ctx, r.db, ins)
	if err != nil {
		return fmt.Errorf("create survey: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create survey: %w", err)
	}
	rec.ID = id
	return nil
}

func (r *surveyRepo) Get(ctx context.Context, id int64) (*SurveyRecord, error) {
	sel := sqlite.Select(surveyColumns...).
		From(entsql.Table(SurveysTable.Name)).
		Where(entsql.EQ("id", id)).
		Limit(1)

	var rec *SurveyRecord
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var err error
		rec, err = scanSurvey(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get survey %d: %w", id, err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (r *surveyRepo) Update(ctx context.Context, rec *SurveyRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	upd := sqlite.Update(SurveysTable.Name).
		Set("title", rec.Title).
		Set("description", rec.Description).
		Set("status", rec.Status).
		Set("schema_json", nullableJSON(rec.SchemaJSON)).
		Set("updated_at", rec.UpdatedAt).
		Where(entsql.EQ("id", rec.ID))

	res, err := execBuilder(ctx, r.db, upd)
	if err != nil {
		return fmt.Errorf("update survey %d: %w", rec.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update survey %d: %w", rec.ID, ErrNotFound)
	}
	return nil
}

func (r *surveyRepo) Delete(ctx context.Context, id int64) error {
	del := sqlite.Delete(SurveysTable.Name).Where(entsql.EQ("id", id))
	res, err := execBuilder(ctx, r.db, del)
	if err != nil {
		return fmt.Errorf("delete survey %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete survey %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *surveyRepo) ListByOwner(ctx context.Context, owner int64) ([]SurveyRecord, error) {
	sel := sqlite.Select(surveyColumns...).
		From(entsql.Table(SurveysTable.Name)).
		Where(entsql.EQ("created_by", owner)).
		OrderBy(entsql.Desc("updated_at"))

	var out []SurveyRecord
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		rec, err := scanSurvey(rows)
		if err != nil {
			return err
		}
		out = append(out, *rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	return out, nil
}

func scanSurvey(rows *sql.Rows) (*SurveyRecord, error) {
	var (
		rec    SurveyRecord
		schema sql.NullString
	)
	err := rows.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Status, &schema,
		&rec.CreatedBy, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if schema.Valid {
		rec.SchemaJSON = []byte(schema.String)
	}
	return &rec, nil
}

// nullableJSON stores empty documents as NULL.
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var assessmentColumns = []string{
	"id", "email", "completed", "current_step", "user_details", "answers",
	"results", "start_time", "end_time", "created_at", "updated_at",
}

// assessmentRepo implements AssessmentRepo on the assessments table.
type assessmentRepo struct {
	db *sql.DB
}

func (r *assessmentRepo) Create(ctx context.Context, rec *AssessmentRecord) error {
	now := time.Now().UTC()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now

	vals, err := assessmentValues(rec)
	if err != nil {
		return err
	}
	ins := sqlite.Insert(AssessmentsTable.Name).Columns(assessmentColumns...).Values(vals...)
	if _, err := execBuilder(ctx, r.db, ins); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

func (r *assessmentRepo) Update(ctx context.Context, rec *AssessmentRecord) error {
	rec.UpdatedAt = time.Now().UTC()
	vals, err := assessmentValues(rec)
	if err != nil {
		return err
	}

	upd := sqlite.Update(AssessmentsTable.Name)
	// Skip id and created_at.
	for i, col := range assessmentColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		upd.Set(col, vals[i])
	}
	upd.Where(entsql.EQ("id", rec.ID))

	res, err := execBuilder(ctx, r.db, upd)
	if err != nil {
		return fmt.Errorf("update assessment %s: %w", rec.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update assessment %s: %w", rec.ID, ErrNotFound)
	}
	return nil
}

func (r *assessmentRepo) Get(ctx context.Context, id string) (*AssessmentRecord, error) {
	sel := sqlite.Select(assessmentColumns...).
		From(entsql.Table(AssessmentsTable.Name)).
		Where(entsql.EQ("id", id)).
		Limit(1)
	return r.first(ctx, sel)
}

func (r *assessmentRepo) FindIncomplete(ctx context.Context, email string) (*AssessmentRecord, error) {
	sel := sqlite.Select(assessmentColumns...).
		From(entsql.Table(AssessmentsTable.Name)).
		Where(entsql.And(
			entsql.EQ("email", email),
			entsql.EQ("completed", false),
		)).
		OrderBy(entsql.Asc("created_at")).
		Limit(1)
	return r.first(ctx, sel)
}

func (r *assessmentRepo) List(ctx context.Context, opts ListOpts) ([]AssessmentRecord, error) {
	sel := sqlite.Select(assessmentColumns...).
		From(entsql.Table(AssessmentsTable.Name)).
		OrderBy(entsql.Desc("created_at"))

	var preds []*entsql.Predicate
	if opts.Email != "" {
		preds = append(preds, entsql.EQ("email", opts.Email))
	}
	if opts.CompletedOnly {
		preds = append(preds, entsql.EQ("completed", true))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	var out []AssessmentRecord
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		rec, err := scanAssessment(rows)
		if err != nil {
			return err
		}
		out = append(out, *rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return out, nil
}

func (r *assessmentRepo) first(ctx context.Context, sel *entsql.Selector) (*AssessmentRecord, error) {
	var rec *AssessmentRecord
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var err error
		rec, err = scanAssessment(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("query assessment: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// assessmentValues returns rec's column values in assessmentColumns order.
func assessmentValues(rec *AssessmentRecord) ([]any, error) {
	email := ""
	var details any
	if rec.UserDetails != nil {
		email = rec.UserDetails.EmailAddress
		b, err := json.Marshal(rec.UserDetails)
		if err != nil {
			return nil, fmt.Errorf("marshal user details: %w", err)
		}
		details = string(b)
	}

	answers := rec.Answers
	if answers == nil {
		answers = []AnswerData{}
	}
	ab, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}

	var results any
	if rec.Results != nil {
		b, err := json.Marshal(rec.Results)
		if err != nil {
			return nil, fmt.Errorf("marshal results: %w", err)
		}
		results = string(b)
	}

	var end any
	if rec.EndTime != nil {
		end = rec.EndTime.UTC()
	}

	return []any{
		rec.ID, email, rec.Completed, rec.CurrentStep, details, string(ab),
		results, rec.StartTime.UTC(), end, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC(),
	}, nil
}

func scanAssessment(rows *sql.Rows) (*AssessmentRecord, error) {
	var (
		rec              AssessmentRecord
		email            string
		details, results sql.NullString
		answers          string
		end              sql.NullTime
	)
	err := rows.Scan(&rec.ID, &email, &rec.Completed, &rec.CurrentStep, &details, &answers,
		&results, &rec.StartTime, &end, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if details.Valid && details.String != "" {
		rec.UserDetails = &UserDetailsData{}
		if err := json.Unmarshal([]byte(details.String), rec.UserDetails); err != nil {
			return nil, fmt.Errorf("unmarshal user details: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	if results.Valid && results.String != "" {
		rec.Results = &ResultData{}
		if err := json.Unmarshal([]byte(results.String), rec.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}
	if end.Valid {
		t := end.Time
		rec.EndTime = &t
	}
	return &rec, nil
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

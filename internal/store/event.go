package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out the global monotonic sequence shared by every
// event table, so assessment and LLM events can be ordered against each
// other. The increment uses raw SQL because the builders cannot express an
// atomic UPDATE ... RETURNING.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and seeds its row if needed.
func newSequenceCounter(ctx context.Context, db *sql.DB) (*sequenceCounter, error) {
	ins := sqlite.Insert(GlobalSequenceTable.Name).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.DoNothing())
	if _, err := execBuilder(ctx, db, ins); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo on the event tables.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendAssessmentEvent(ctx context.Context, data AssessmentEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	ins := sqlite.Insert(AssessmentEventsTable.Name).
		Columns("sequence", "timestamp", "assessment_id", "kind", "question_id", "step", "score").
		Values(seqNum, time.Now().UTC(), data.AssessmentID, data.Kind, data.QuestionID, data.Step, data.Score)
	if _, err := execBuilder(ctx, r.db, ins); err != nil {
		return fmt.Errorf("save assessment event: %w", err)
	}
	return nil
}

func (r *eventRepo) AssessmentEvents(ctx context.Context, assessmentID string, opts QueryOpts) ([]AssessmentEventRecord, error) {
	sel := sqlite.Select("id", "sequence", "timestamp", "assessment_id", "kind", "question_id", "step", "score").
		From(entsql.Table(AssessmentEventsTable.Name)).
		OrderBy(entsql.Asc("sequence"))
	preds := append([]*entsql.Predicate{entsql.EQ("assessment_id", assessmentID)}, opts.predicates()...)
	sel.Where(entsql.And(preds...))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	var out []AssessmentEventRecord
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var e AssessmentEventRecord
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.AssessmentID, &e.Kind,
			&e.QuestionID, &e.Step, &e.Score); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query assessment events: %w", err)
	}
	return out, nil
}

// predicates translates the sequence and time bounds into SQL predicates.
func (o QueryOpts) predicates() []*entsql.Predicate {
	var preds []*entsql.Predicate
	if o.After > 0 {
		preds = append(preds, entsql.GT("sequence", o.After))
	}
	if o.Before > 0 {
		preds = append(preds, entsql.LT("sequence", o.Before))
	}
	if !o.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", o.From.UTC()))
	}
	if !o.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", o.To.UTC()))
	}
	return preds
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var llmEventColumns = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose", "input_tokens",
	"output_tokens", "latency_ms", "success", "error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	ins := sqlite.Insert(LlmRequestEventsTable.Name).
		Columns(llmEventColumns[1:]...).
		Values(seqNum, time.Now().UTC(), data.Provider, data.Model, data.Purpose, data.InputTokens,
			data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody)
	if _, err := execBuilder(ctx, r.db, ins); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error) {
	sel := sqlite.Select(llmEventColumns...).
		From(entsql.Table(LlmRequestEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	if preds := opts.predicates(); len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	var out []LLMRequestEventRecord
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return err
		}
		out = append(out, *e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error) {
	sel := sqlite.Select(llmEventColumns...).
		From(entsql.Table(LlmRequestEventsTable.Name)).
		Where(entsql.EQ("id", id)).
		Limit(1)

	var e *LLMRequestEventRecord
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var err error
		e, err = scanLLMEvent(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	if e == nil {
		return nil, ErrNotFound
	}
	return e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, "model")
}

func (r *eventRepo) usageBy(ctx context.Context, key string) ([]LLMUsage, error) {
	sel := sqlite.Select(
		key,
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As(entsql.Sum("input_tokens"), "input_tokens"),
		entsql.As(entsql.Sum("output_tokens"), "output_tokens"),
		entsql.As(entsql.Avg("latency_ms"), "avg_latency"),
	).
		From(entsql.Table(LlmRequestEventsTable.Name)).
		GroupBy(key).
		OrderBy(entsql.Desc("calls"))

	var out []LLMUsage
	err := queryRows(ctx, r.db, sel, func(rows *sql.Rows) error {
		var (
			u      LLMUsage
			name   string
			avgLat float64
		)
		if err := rows.Scan(&name, &u.Calls, &u.InputTokens, &u.OutputTokens, &avgLat); err != nil {
			return err
		}
		if key == "model" {
			u.Model = name
		} else {
			u.Purpose = name
		}
		u.AvgLatencyMs = int64(avgLat)
		out = append(out, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate LLM usage by %s: %w", key, err)
	}
	return out, nil
}

func scanLLMEvent(rows *sql.Rows) (*LLMRequestEventRecord, error) {
	var e LLMRequestEventRecord
	err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage,
		&e.RequestBody, &e.ResponseBody)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

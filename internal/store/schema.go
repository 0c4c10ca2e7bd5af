package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions in the shape ent's migrate package expects. Every event
// table carries the shared sequence and timestamp columns first.

var (
	// AssessmentsColumns holds the columns for the "assessments" table.
	AssessmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Default: ""},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "current_step", Type: field.TypeInt, Default: 0},
		{Name: "user_details", Type: field.TypeJSON, Nullable: true},
		{Name: "answers", Type: field.TypeJSON},
		{Name: "results", Type: field.TypeJSON, Nullable: true},
		{Name: "start_time", Type: field.TypeTime},
		{Name: "end_time", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// AssessmentsTable holds the schema information for the "assessments" table.
	AssessmentsTable = &schema.Table{
		Name:       "assessments",
		Columns:    AssessmentsColumns,
		PrimaryKey: []*schema.Column{AssessmentsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "assessment_email_completed",
				Unique:  false,
				Columns: []*schema.Column{AssessmentsColumns[1], AssessmentsColumns[2]},
			},
		},
	}

	// AssessmentEventsColumns holds the columns for the "assessment_events" table.
	AssessmentEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "assessment_id", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeInt, Default: 0},
		{Name: "step", Type: field.TypeInt, Default: 0},
		{Name: "score", Type: field.TypeInt, Default: 0},
	}
	// AssessmentEventsTable holds the schema information for the "assessment_events" table.
	AssessmentEventsTable = &schema.Table{
		Name:       "assessment_events",
		Columns:    AssessmentEventsColumns,
		PrimaryKey: []*schema.Column{AssessmentEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "assessmentevent_assessment_id", Columns: []*schema.Column{AssessmentEventsColumns[3]}},
			{Name: "assessmentevent_timestamp", Columns: []*schema.Column{AssessmentEventsColumns[2]}},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LlmRequestEventsColumns[5]}},
			{Name: "llmrequestevent_success", Columns: []*schema.Column{LlmRequestEventsColumns[9]}},
		},
	}

	// GlobalSequenceColumns holds the columns for the "global_sequence" table.
	GlobalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	// GlobalSequenceTable holds the schema information for the "global_sequence" table.
	GlobalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    GlobalSequenceColumns,
		PrimaryKey: []*schema.Column{GlobalSequenceColumns[0]},
	}

	// QuestionBanksColumns holds the columns for the "question_banks" table.
	QuestionBanksColumns = []*schema.Column{
		{Name: "version", Type: field.TypeString},
		{Name: "content", Type: field.TypeBytes},
		{Name: "created_at", Type: field.TypeTime},
	}
	// QuestionBanksTable holds the schema information for the "question_banks" table.
	QuestionBanksTable = &schema.Table{
		Name:       "question_banks",
		Columns:    QuestionBanksColumns,
		PrimaryKey: []*schema.Column{QuestionBanksColumns[0]},
	}

	// SurveysColumns holds the columns for the "surveys" table.
	SurveysColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "status", Type: field.TypeString, Default: "DRAFT"},
		{Name: "schema_json", Type: field.TypeJSON, Nullable: true},
		{Name: "created_by", Type: field.TypeInt64},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// SurveysTable holds the schema information for the "surveys" table.
	SurveysTable = &schema.Table{
		Name:       "surveys",
		Columns:    SurveysColumns,
		PrimaryKey: []*schema.Column{SurveysColumns[0]},
		Indexes: []*schema.Index{
			{Name: "survey_created_by", Columns: []*schema.Column{SurveysColumns[5]}},
		},
	}

	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "roles", Type: field.TypeJSON},
		{Name: "enabled", Type: field.TypeBool, Default: false},
		{Name: "verification_code", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &schema.Table{
		Name:       "users",
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		AssessmentsTable,
		AssessmentEventsTable,
		LlmRequestEventsTable,
		GlobalSequenceTable,
		QuestionBanksTable,
		SurveysTable,
		UsersTable,
	}
)

package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// UserDetailsData is the participant block of an assessment document.
type UserDetailsData struct {
	FullName     string `json:"fullName"`
	PhoneNumber  string `json:"phoneNumber"`
	EmailAddress string `json:"emailAddress"`
	Organization string `json:"organization"`
}

// AnswerData is one stored answer.
type AnswerData struct {
	QuestionID     int    `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
	Score          int    `json:"score"`
}

// ResultData is the scored outcome of a completed assessment.
type ResultData struct {
	OverallScore    float64            `json:"overallScore"`
	ThemeScores     map[string]float64 `json:"themeScores"`
	MaturityLevel   string             `json:"maturityLevel"`
	Recommendations []string           `json:"recommendations"`
}

// AssessmentRecord is the persisted assessment document. ID is assigned by
// Create.
type AssessmentRecord struct {
	ID          string
	UserDetails *UserDetailsData
	Answers     []AnswerData
	CurrentStep int
	Completed   bool
	StartTime   time.Time
	EndTime     *time.Time
	Results     *ResultData
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssessmentRepo persists assessment documents.
type AssessmentRepo interface {
	// Create stores a new document and fills in its ID and timestamps.
	Create(ctx context.Context, rec *AssessmentRecord) error

	// Update overwrites an existing document.
	Update(ctx context.Context, rec *AssessmentRecord) error

	// Get returns a document by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*AssessmentRecord, error)

	// FindIncomplete returns the oldest not-yet-completed document for an
	// already-normalized email, or ErrNotFound.
	FindIncomplete(ctx context.Context, email string) (*AssessmentRecord, error)

	// List returns documents newest first.
	List(ctx context.Context, opts ListOpts) ([]AssessmentRecord, error)
}

// ListOpts filters assessment listings.
type ListOpts struct {
	Limit         int
	Email         string
	CompletedOnly bool
}

// AssessmentEventData captures a single wizard mutation.
type AssessmentEventData struct {
	AssessmentID string
	Kind         string // answer, step, complete, reset
	QuestionID   int
	Step         int
	Score        int
}

// AssessmentEventRecord is a stored assessment event.
type AssessmentEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AssessmentEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM calls under a key (purpose or model).
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendAssessmentEvent records a wizard mutation.
	AppendAssessmentEvent(ctx context.Context, data AssessmentEventData) error

	// AssessmentEvents returns the events of one assessment in sequence order.
	AssessmentEvents(ctx context.Context, assessmentID string, opts QueryOpts) ([]AssessmentEventRecord, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one LLM event by ID, or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

// BankRecord is a stored question bank snapshot.
type BankRecord struct {
	Version   string
	Content   []byte
	CreatedAt time.Time
}

// BankRepo stores versioned question banks.
type BankRepo interface {
	// SaveBank stores a bank, replacing any bank with the same version.
	SaveBank(ctx context.Context, rec BankRecord) error

	// LatestBank returns the most recently saved bank, or ErrNotFound.
	LatestBank(ctx context.Context) (*BankRecord, error)

	// ListBanks returns all stored banks newest first, without content.
	ListBanks(ctx context.Context) ([]BankRecord, error)
}

// SurveyRecord is a stored survey definition.
type SurveyRecord struct {
	ID          int64
	Title       string
	Description string
	Status      string
	SchemaJSON  []byte
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SurveyRepo persists survey definitions.
type SurveyRepo interface {
	Create(ctx context.Context, rec *SurveyRecord) error
	Get(ctx context.Context, id int64) (*SurveyRecord, error)
	Update(ctx context.Context, rec *SurveyRecord) error
	Delete(ctx context.Context, id int64) error
	ListByOwner(ctx context.Context, owner int64) ([]SurveyRecord, error)
}

// UserRecord is a stored account.
type UserRecord struct {
	ID               int64
	Email            string
	PasswordHash     string
	Roles            []string
	Enabled          bool
	VerificationCode string
	CreatedAt        time.Time
}

// UserRepo persists accounts.
type UserRepo interface {
	Create(ctx context.Context, rec *UserRecord) error
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
	Get(ctx context.Context, id int64) (*UserRecord, error)
	Update(ctx context.Context, rec *UserRecord) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

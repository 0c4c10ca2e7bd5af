package server

import (
	"bytes"
	"fmt"
	"net/http"
	"path"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/export"
)

type assessments struct {
	deps  Deps
	locks *keyedLocks
}

func (h assessments) session() *assessment.Session {
	opts := []assessment.Option{assessment.WithLogger(h.deps.Logger)}
	if h.deps.Events != nil {
		opts = append(opts, assessment.WithEvents(h.deps.Events))
	}
	if h.deps.Recommender != nil {
		opts = append(opts, assessment.WithRecommender(h.deps.Recommender))
	}
	return assessment.NewSession(h.deps.Bank, h.deps.Assessments, opts...)
}

// load opens the assessment named by :id whether or not it is complete.
// Mutating a completed assessment then fails with ErrCompleted.
func (h assessments) load(c echo.Context) (*assessment.Session, error) {
	s := h.session()
	if err := s.Load(c.Request().Context(), c.Param("id")); err != nil {
		return nil, err
	}
	return s, nil
}

// edit loads the assessment named by :id under its lock and runs fn on it.
// The lock spans load through save.
func (h assessments) edit(c echo.Context, fn func(*assessment.Session) error) error {
	unlock := h.locks.Lock(c.Param("id"))
	defer unlock()
	s, err := h.load(c)
	if err != nil {
		return err
	}
	return fn(s)
}

type startResponse struct {
	Resumed    bool            `json:"resumed"`
	Assessment assessment.Data `json:"assessment"`
}

func (h assessments) start(c echo.Context) error {
	var details assessment.UserDetails
	if err := c.Bind(&details); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "can not understand the requested json")
	}
	s := h.session()
	resumed, err := s.Start(c.Request().Context(), details)
	if err != nil {
		return err
	}
	code := http.StatusCreated
	if resumed {
		code = http.StatusOK
	}
	return c.JSON(code, startResponse{Resumed: resumed, Assessment: s.Data()})
}

func (h assessments) get(c echo.Context) error {
	s, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.Data())
}

type progressView struct {
	Answered    int    `json:"answered"`
	Total       int    `json:"total"`
	Percent     int    `json:"percent"`
	Text        string `json:"text"`
	CurrentStep int    `json:"currentStep"`
	Completed   bool   `json:"completed"`
}

func (h assessments) progress(c echo.Context) error {
	s, err := h.load(c)
	if err != nil {
		return err
	}
	answered, total := s.Progress()
	data := s.Data()
	return c.JSON(http.StatusOK, progressView{
		Answered:    answered,
		Total:       total,
		Percent:     assessment.ProgressPercent(answered, total),
		Text:        assessment.ProgressText(answered, total),
		CurrentStep: data.CurrentStep,
		Completed:   data.Completed,
	})
}

// answerRequest names the chosen option either by its full text or by its
// 1-based score.
type answerRequest struct {
	Option string `json:"option"`
	Score  int    `json:"score"`
}

func (h assessments) answer(c echo.Context) error {
	qid, err := strconv.Atoi(c.Param("qid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "question id must be a number")
	}
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "can not understand the requested json")
	}
	q, err := h.deps.Bank.Question(qid)
	if err != nil {
		return err
	}
	option := req.Option
	if option == "" {
		if req.Score < 1 || req.Score > len(q.Options) {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("score must be 1 to %d", len(q.Options)))
		}
		option = q.Options[req.Score-1]
	}

	var ans assessment.Answer
	err = h.edit(c, func(s *assessment.Session) (err error) {
		ans, err = s.Answer(c.Request().Context(), qid, option)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ans)
}

type stepRequest struct {
	Step int `json:"step"`
}

func (h assessments) step(c echo.Context) error {
	var req stepRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "can not understand the requested json")
	}
	if req.Step < assessment.StepUserDetails || req.Step > assessment.LastStep(h.deps.Bank.Total()) {
		return echo.NewHTTPError(http.StatusBadRequest, "step out of range")
	}
	var data assessment.Data
	err := h.edit(c, func(s *assessment.Session) error {
		if err := s.SetStep(c.Request().Context(), req.Step); err != nil {
			return err
		}
		data = s.Data()
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, data)
}

func (h assessments) complete(c echo.Context) error {
	var res assessment.Result
	err := h.edit(c, func(s *assessment.Session) (err error) {
		res, err = s.Complete(c.Request().Context())
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

type resultsView struct {
	assessment.Result
	Percentage     int                     `json:"percentage"`
	Description    string                  `json:"description"`
	Explanation    string                  `json:"explanation"`
	Themes         []assessment.ThemeScore `json:"themes"`
	CompletionTime string                  `json:"completionTime"`
	ShareText      string                  `json:"shareText"`
}

func (h assessments) results(c echo.Context) error {
	s, err := h.load(c)
	if err != nil {
		return err
	}
	data := s.Data()
	if data.Results == nil {
		return errNotCompleted
	}
	res := *data.Results
	return c.JSON(http.StatusOK, resultsView{
		Result:         res,
		Percentage:     assessment.Percentage(res.OverallScore),
		Description:    res.MaturityLevel.Description(),
		Explanation:    res.MaturityLevel.Explanation(),
		Themes:         assessment.OrderedThemeScores(h.deps.Bank, res),
		CompletionTime: assessment.CompletionTime(data.StartTime, data.EndTime),
		ShareText:      assessment.ShareText(res),
	})
}

// report renders the workbook or PDF named by the route suffix.
func (h assessments) report(c echo.Context) error {
	format := export.Format(path.Ext(c.Path())[1:])
	s, err := h.load(c)
	if err != nil {
		return err
	}
	r, err := export.NewReport(h.deps.Bank, s.Data(), h.deps.Now())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, r); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", r.Filename(format)))
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

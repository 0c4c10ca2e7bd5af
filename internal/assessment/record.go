package assessment

import "github.com/nashtech/odmat/internal/store"

func toRecord(d Data) *store.AssessmentRecord {
	rec := &store.AssessmentRecord{
		ID:          d.ID,
		CurrentStep: d.CurrentStep,
		Completed:   d.Completed,
		StartTime:   d.StartTime,
		EndTime:     d.EndTime,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Answers:     make([]store.AnswerData, len(d.Answers)),
	}
	if d.UserDetails != nil {
		rec.UserDetails = &store.UserDetailsData{
			FullName:     d.UserDetails.FullName,
			PhoneNumber:  d.UserDetails.PhoneNumber,
			EmailAddress: d.UserDetails.EmailAddress,
			Organization: d.UserDetails.Organization,
		}
	}
	for i, a := range d.Answers {
		rec.Answers[i] = store.AnswerData(a)
	}
	if d.Results != nil {
		rec.Results = &store.ResultData{
			OverallScore:    d.Results.OverallScore,
			ThemeScores:     d.Results.ThemeScores,
			MaturityLevel:   string(d.Results.MaturityLevel),
			Recommendations: d.Results.Recommendations,
		}
	}
	return rec
}

// FromRecord converts a stored document, e.g. for exports.
func FromRecord(rec *store.AssessmentRecord) Data {
	d := Data{
		ID:          rec.ID,
		CurrentStep: rec.CurrentStep,
		Completed:   rec.Completed,
		StartTime:   rec.StartTime,
		EndTime:     rec.EndTime,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
		Answers:     make(Answers, len(rec.Answers)),
	}
	if rec.UserDetails != nil {
		d.UserDetails = &UserDetails{
			FullName:     rec.UserDetails.FullName,
			PhoneNumber:  rec.UserDetails.PhoneNumber,
			EmailAddress: rec.UserDetails.EmailAddress,
			Organization: rec.UserDetails.Organization,
		}
	}
	for i, a := range rec.Answers {
		d.Answers[i] = Answer(a)
	}
	if rec.Results != nil {
		d.Results = &Result{
			OverallScore:    rec.Results.OverallScore,
			ThemeScores:     rec.Results.ThemeScores,
			MaturityLevel:   Level(rec.Results.MaturityLevel),
			Recommendations: rec.Results.Recommendations,
		}
	}
	return d
}

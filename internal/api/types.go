// Package api is the client for the interview evaluation service.
package api

// UploadResponse is returned by POST /upload-resume.
type UploadResponse struct {
	SessionID     string `json:"session_id"`
	FirstQuestion string `json:"first_question"`
}

// EvaluateRequest is the body of POST /evaluate-answer. PreviousQuestions
// and PreviousAnswers are parallel and always the same length.
type EvaluateRequest struct {
	SessionID         string   `json:"session_id"`
	CurrentQuestion   string   `json:"current_question"`
	CurrentAnswer     string   `json:"current_answer"`
	PreviousQuestions []string `json:"previous_questions"`
	PreviousAnswers   []string `json:"previous_answers"`
}

// Evaluation scores one answer. Sub-scores are on a 0-10 scale.
type Evaluation struct {
	TechnicalScore float64 `json:"technical_score" yaml:"technical_score"`
	ClarityScore   float64 `json:"clarity_score" yaml:"clarity_score"`
	StructureScore float64 `json:"structure_score" yaml:"structure_score"`
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
	Strengths      string  `json:"strengths" yaml:"strengths"`
	Weaknesses     string  `json:"weaknesses" yaml:"weaknesses"`
	ImprovementTip string  `json:"improvement_tip" yaml:"improvement_tip"`
}

// Recommendation is the hiring verdict of a final report.
type Recommendation string

const (
	StronglyRecommend Recommendation = "Strongly Recommend"
	Recommend         Recommendation = "Recommend"
	Consider          Recommendation = "Consider"
	DoNotRecommend    Recommendation = "Do Not Recommend"
)

// Valid reports whether r is one of the known verdicts.
func (r Recommendation) Valid() bool {
	switch r {
	case StronglyRecommend, Recommend, Consider, DoNotRecommend:
		return true
	}
	return false
}

// FinalReport concludes an interview. OverallScore is on a 0-100 scale.
type FinalReport struct {
	OverallScore       float64        `json:"overall_score" yaml:"overall_score"`
	HireRecommendation Recommendation `json:"hire_recommendation" yaml:"hire_recommendation"`
	Summary            string         `json:"summary" yaml:"summary"`
	StrongAreas        string         `json:"strong_areas" yaml:"strong_areas"`
	WeakAreas          string         `json:"weak_areas" yaml:"weak_areas"`
	ImprovementRoadmap string         `json:"improvement_roadmap" yaml:"improvement_roadmap"`
}

// EvaluateResponse is returned by POST /evaluate-answer. Either
// NextQuestion or FinalReport is set.
type EvaluateResponse struct {
	Evaluation    Evaluation   `json:"evaluation"`
	NextQuestion  string       `json:"next_question,omitempty"`
	QuestionCount int          `json:"question_count"`
	FinalReport   *FinalReport `json:"final_report,omitempty"`
}

// IsFinal reports whether the interview ended with this response.
func (r *EvaluateResponse) IsFinal() bool {
	return r.FinalReport != nil
}

package ai

import "context"

// QualificationScore is the remote service's judgement of a single qualification.
type QualificationScore struct {
	Qualification string  `json:"qualification"`
	Score         float64 `json:"score"`
	Reasoning     string  `json:"reasoning"`
}

// Request carries the documents and the qualification statements to judge.
type Request struct {
	Candidate      string
	Target         string
	Qualifications []string
}

// Assessment is what an Assessor returns on success.
type Assessment struct {
	Scores []QualificationScore
	Raw    string
}

// Assessor delegates qualification scoring to a remote reasoning service.
type Assessor interface {
	Assess(ctx context.Context, req *Request) (*Assessment, error)
	Provider() string
	Model() string
}

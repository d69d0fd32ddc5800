package pairing

// WarningKind is the machine-readable class of a plan warning.
type WarningKind string

const (
	// WarningTooFewTeams signals fewer than two submitting teams.
	WarningTooFewTeams WarningKind = "too_few_teams"
	// WarningNoReviewers signals that no eligible reviewer exists.
	WarningNoReviewers WarningKind = "no_reviewers"
	// WarningClampedRequest signals the requested review count was reduced
	// to the structural maximum.
	WarningClampedRequest WarningKind = "clamped_request"
)

// Warning carries a machine-readable kind plus a human-readable message.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// Pair is one assignment of a reviewing identity to a target submission.
// ReviewerID is a team id in team mode and a person id in individual mode;
// ReviewerTeamID is the reviewer's own team in both modes and is used for
// the self-review check, not for persistence (individual-mode reviewers are
// resolved to synthetic teams at commit time).
type Pair struct {
	ReviewerID         uint   `json:"reviewer_id"`
	ReviewerName       string `json:"reviewer_name"`
	ReviewerTeamID     uint   `json:"reviewer_team_id"`
	TargetTeamID       uint   `json:"target_team_id"`
	TargetSubmissionID uint   `json:"target_submission_id"`
}

// Plan is the unpersisted outcome of one pairing run. A plan with zero pairs
// and a structural warning is a reported condition, not an error: the caller
// decides how to surface it.
type Plan struct {
	Seed      string
	Requested int
	Applied   int
	Warnings  []Warning
	Pairs     []Pair
}

// Feasible reports whether the run produced any pairs.
func (p Plan) Feasible() bool {
	return len(p.Pairs) > 0
}

func (p *Plan) warn(kind WarningKind, message string) {
	p.Warnings = append(p.Warnings, Warning{Kind: kind, Message: message})
}

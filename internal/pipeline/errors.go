package pipeline

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrNoData marks a run in which no industry produced a lead.
var ErrNoData = eris.New("pipeline: no leads found")

// InputError reports a request the pipeline refuses before calling any
// collaborator.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("pipeline: invalid %s: %s", e.Field, e.Reason)
}

// Stage names the collaborator step a failure came from.
type Stage string

const (
	StageDiscovery   Stage = "discovery"
	StageEvaluation  Stage = "evaluation"
	StageEnrichment  Stage = "enrichment"
	StagePersistence Stage = "persistence"
	StageReport      Stage = "report"
	StageAlert       Stage = "alert"
)

// CollaboratorError is a failure isolated to one unit of work (an industry,
// a lead, or a best-effort side channel).
type CollaboratorError struct {
	Stage Stage
	Unit  string
	Err   error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("pipeline: %s %s: %v", e.Stage, e.Unit, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

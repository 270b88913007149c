package pipeline

import (
	"fmt"
	"net/http"
)

// Stage identifies where in the pipeline a failure happened.
type Stage string

const (
	StageLoadSession Stage = "load_session"
	StageFetchAudio  Stage = "fetch_audio"
	StageTranscribe  Stage = "transcription"
	StageAnalyze     Stage = "analysis"
	StagePersist     Stage = "persistence"
)

// Kind is the error taxonomy exposed to the HTTP boundary.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindInvalidState    Kind = "invalid_state"
	KindUpstreamFetch   Kind = "upstream_fetch"
	KindTranscription   Kind = "transcription"
	KindModelInvocation Kind = "model_invocation"
	KindAnalysisParse   Kind = "analysis_parse"
	KindPersistence     Kind = "persistence"
)

// StageError tags a failure with the stage that produced it and its
// taxonomy kind so handlers can pick a status code without string
// matching. Reason, when set, overrides the kind's default caller-facing
// message.
type StageError struct {
	Stage  Stage
	Kind   Kind
	Reason string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// HTTPStatus maps the error kind to the response status code.
func (e *StageError) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidState:
		return http.StatusBadRequest
	case KindUpstreamFetch, KindTranscription, KindModelInvocation, KindAnalysisParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Message is the short, category-appropriate reason returned to callers.
// Internal detail stays in logs.
func (e *StageError) Message() string {
	if e.Reason != "" {
		return e.Reason
	}
	switch e.Kind {
	case KindNotFound:
		return "Session not found"
	case KindInvalidState:
		return "Session is in an invalid state"
	case KindUpstreamFetch:
		return "Failed to fetch audio"
	case KindTranscription:
		return "Transcription failed"
	case KindModelInvocation:
		return "Analysis failed"
	case KindAnalysisParse:
		return "Analysis parsing failed"
	default:
		return "DB write failed"
	}
}

func stageErr(stage Stage, kind Kind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}

func stageErrReason(stage Stage, kind Kind, reason string, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Reason: reason, Err: err}
}

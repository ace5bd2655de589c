package service

import (
	"errors"
	"fmt"
)

// Step names an orchestration step a failure belongs to.
type Step string

const (
	StepImage Step = "image"
	StepSite  Step = "site"
)

var (
	// ErrNoSiteURL is returned when the site generator response carries no usable site URL.
	ErrNoSiteURL = errors.New("no site URL in site generator response")
	// ErrNoUsableImage is returned when the image generator returns neither a URL nor image data.
	ErrNoUsableImage = errors.New("image generator returned no usable image")
	// ErrOrchestratorClosed is returned by Submit after Stop.
	ErrOrchestratorClosed = errors.New("orchestrator is not accepting jobs")
)

// StepError tags a collaborator failure with the step it happened in.
// Its message reads "<step> step: <cause>" so callers can tell image failures from site failures.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

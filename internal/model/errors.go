package model

import "errors"

// Failure taxonomy for the batch pipeline. All three are fatal for the run;
// there is no retry anywhere because inputs are static, already-captured
// logs and failures are deterministic.
var (
	// ErrDataSource marks a missing or unreadable log input.
	ErrDataSource = errors.New("data source error")

	// ErrSchema marks a required column that is absent or unparseable.
	ErrSchema = errors.New("schema error")

	// ErrValidation marks non-finite values reaching the detector stage.
	ErrValidation = errors.New("validation error")
)

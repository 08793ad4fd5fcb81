package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is wrapped by every error caused by malformed or mismatched shapes.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFitted is returned by operations that need a trained model.
	ErrNotFitted = errors.New("model has not been fit")

	// ErrInvalidModel is returned when restoring from a snapshot that is not a well formed tree.
	ErrInvalidModel = errors.New("invalid model")
)

var (
	ErrNoTrainingMatrix    = fmt.Errorf("no training matrix, %w", ErrInvalidInput)
	ErrNoTargetMatrix      = fmt.Errorf("no target matrix, %w", ErrInvalidInput)
	ErrNoDesignMatrix      = fmt.Errorf("no design matrix for inference, %w", ErrInvalidInput)
	ErrEmptyTrainingMatrix = fmt.Errorf("empty training matrix, %w", ErrInvalidInput)
	ErrTargetLenMismatch   = fmt.Errorf("target length does not match training rows, %w", ErrInvalidInput)
	ErrTargetNotVector     = fmt.Errorf("target must have exactly one column, %w", ErrInvalidInput)
	ErrFeatureLenMismatch  = fmt.Errorf("number of features does not match training features, %w", ErrInvalidInput)
	ErrUnderdetermined     = fmt.Errorf("fewer rows than coefficients, %w", ErrInvalidInput)
	ErrNoOOBSamples        = errors.New("no out of bag samples available")
)

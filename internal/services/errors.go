package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file cannot be parsed
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrRenderFailed is returned when resume pages cannot be rasterized
	ErrRenderFailed = errors.New("failed to render page images")

	// ErrExtractionFailed is returned when no job description could be extracted
	ErrExtractionFailed = errors.New("job description extraction failed")

	// ErrInputMissing is returned when required session state is absent
	ErrInputMissing = errors.New("required input missing")

	// ErrPreconditionFailed is returned when a revision is requested before any critique
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrCritiqueFailed is returned when a content or layout critique call fails
	ErrCritiqueFailed = errors.New("critique failed")

	// ErrRevisionFailed is returned when the revision call fails
	ErrRevisionFailed = errors.New("revision failed")

	// ErrTimeout is returned when a model call exceeds its deadline
	ErrTimeout = errors.New("model call timed out")

	// ErrModelUnavailable is returned when the model provider cannot serve the request
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrRateLimited is returned when the model provider throttles the request
	ErrRateLimited = errors.New("model rate limited")

	// ErrTurnInFlight is returned when a user turn is still waiting for its reply
	ErrTurnInFlight = errors.New("a message is still awaiting a response")

	// ErrNoPendingTurn is returned when an assistant turn has no user turn to answer
	ErrNoPendingTurn = errors.New("no pending user message")

	// ErrSessionNotFound is returned for unknown or expired sessions
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionBusy is returned when another request holds the session
	ErrSessionBusy = errors.New("session is busy")
)

type CritiquePath string

const (
	CritiquePathContent CritiquePath = "content"
	CritiquePathLayout  CritiquePath = "layout"
)

// CritiqueError identifies which critique call failed.
type CritiqueError struct {
	Path CritiquePath
	Err  error
}

func (e *CritiqueError) Error() string {
	return fmt.Sprintf("%s critique failed: %v", e.Path, e.Err)
}

// Unwrap exposes the cause and, unless the call timed out, ErrCritiqueFailed.
func (e *CritiqueError) Unwrap() []error {
	if errors.Is(e.Err, ErrTimeout) {
		return []error{e.Err}
	}
	return []error{ErrCritiqueFailed, e.Err}
}

// FailedPaths lists the critique paths named by err.
func FailedPaths(err error) []CritiquePath {
	var paths []CritiquePath
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if ce, ok := e.(*CritiqueError); ok {
			paths = append(paths, ce.Path)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return paths
}

// classifyModelError maps deadline and vendor HTTP errors onto the
// timeout, rate limit and availability sentinels.
func classifyModelError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimited) || errors.Is(err, ErrModelUnavailable) {
		return err
	}

	status := 0
	var openaiErr *openai.Error
	var anthropicErr *anthropic.Error
	var geminiErr genai.APIError
	switch {
	case errors.As(err, &openaiErr):
		status = openaiErr.StatusCode
	case errors.As(err, &anthropicErr):
		status = anthropicErr.StatusCode
	case errors.As(err, &geminiErr):
		status = geminiErr.Code
	}

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case status >= 500:
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return err
}

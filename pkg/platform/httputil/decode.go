package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "deletionguard/pkg/domain-errors"
)

// MaxBodyBytes bounds request bodies accepted by DecodeJSON. The largest
// legitimate body is a rules document or an invalidation with extra keys.
const MaxBodyBytes = 1 << 20

// Normalizable requests canonicalize their fields before validation.
type Normalizable interface {
	Normalize()
}

// Validatable requests reject themselves with a domain error or a plain one.
type Validatable interface {
	Validate() error
}

// DecodeJSON reads exactly one JSON object into a new T. Unknown fields,
// trailing data and oversized bodies are rejected. On failure a 400 has
// already been written and ok is false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	if err := decodeStrict(w, r, &req); err != nil {
		logger.WarnContext(ctx, "rejecting request body",
			"error", err,
			"path", r.URL.Path,
			"request_id", requestID,
		)
		WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, decodeMessage(err)))
		return nil, false
	}
	return &req, true
}

// DecodeAndPrepare decodes like DecodeJSON, then runs Normalize and Validate
// when T implements them. Domain codes returned by Validate are kept;
// anything else is reported as validation_failed.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}
	if err := Prepare(req); err != nil {
		logger.InfoContext(ctx, "request failed validation",
			"error", err,
			"path", r.URL.Path,
			"request_id", requestID,
		)
		WriteError(w, asValidationError(err))
		return nil, false
	}
	return req, true
}

// Prepare normalizes then validates req.
func Prepare(req any) error {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

var errTrailingData = errors.New("unexpected data after JSON object")

func decodeStrict(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

func decodeMessage(err error) string {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return "request body too large"
	case errors.Is(err, io.EOF):
		return "request body is empty"
	case errors.Is(err, errTrailingData):
		return "request body must contain a single JSON object"
	default:
		return "invalid request body"
	}
}

func asValidationError(err error) error {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.New(dErrors.CodeValidation, err.Error())
}

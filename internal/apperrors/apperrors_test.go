package apperrors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures slog records so tests can assert on level
// and message.
type recordingHandler struct {
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestNewExternalAPIError(t *testing.T) {
	cause := errors.New("upstream down")
	err := NewExternalAPIError(cause, "ticketmaster")

	assert.Equal(t, ErrorTypeExternal, err.Type)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
	assert.Equal(t, "ticketmaster", err.Context["api"])
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.LogFields(), "api")
}

func TestHandlerSeverityFollowsType(t *testing.T) {
	rec := &recordingHandler{}
	h := NewHandler(slog.New(rec))
	ctx := context.Background()

	h.Handle(ctx, nil)
	require.Empty(t, rec.records)

	h.Handle(ctx, NewValidationError("bad input"))
	h.Handle(ctx, ErrRecordNotFound)
	h.Handle(ctx, NewExternalAPIError(errors.New("upstream down"), "ticketmaster"))
	h.Handle(ctx, NewDatabaseError(errors.New("connection reset")))
	h.Handle(ctx, errors.New("plain failure"))

	require.Len(t, rec.records, 5)
	assert.Equal(t, slog.LevelWarn, rec.records[0].Level)
	assert.Equal(t, slog.LevelWarn, rec.records[1].Level)
	assert.Equal(t, slog.LevelError, rec.records[2].Level)
	assert.Equal(t, slog.LevelError, rec.records[3].Level)
	assert.Equal(t, slog.LevelError, rec.records[4].Level)
	assert.Equal(t, "Unhandled error", rec.records[4].Message)
}

func TestPredefinedErrorsMatchByTypeAndCode(t *testing.T) {
	wrapped := Wrap(errors.New("row missing"), ErrorTypeNotFound, "NOT_FOUND", "record not found")
	assert.ErrorIs(t, wrapped, ErrRecordNotFound)
	assert.NotErrorIs(t, wrapped, ErrNoActiveGoal)
}

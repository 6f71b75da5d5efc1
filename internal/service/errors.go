package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/storage"
)

// ErrArchived is returned for writes to an archived trip.
var ErrArchived = storage.ErrArchived

// codeOf maps domain errors onto Connect codes.
func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.CodeNotFound
	case errors.Is(err, ErrArchived):
		return connect.CodeFailedPrecondition
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrUnknownMember),
		errors.Is(err, models.ErrDuplicateMember),
		errors.Is(err, models.ErrInvalidAmount):
		return connect.CodeInvalidArgument
	default:
		return connect.CodeInternal
	}
}

// fail logs err under op and converts it to a Connect error. Client
// mistakes are logged at Warn, everything else at Error.
func fail(op string, err error, attrs ...any) error {
	code := codeOf(err)
	attrs = append(attrs, "error", err, "code", code.String())
	if code == connect.CodeInternal {
		slog.Error(op+" failed", attrs...)
	} else {
		slog.Warn(op+" failed", attrs...)
	}
	return connect.NewError(code, err)
}

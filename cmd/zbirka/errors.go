package main

import (
	"errors"
	"strings"

	"github.com/erazemk/zbirka/internal/client"
	"github.com/erazemk/zbirka/internal/filter"
	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/lifecycle"
	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// userErrors are failures caused by the input rather than the system.
var userErrors = []error{
	errNotInitialized,
	errNeedsRemote,
	lifecycle.ErrInvalidID,
	lifecycle.ErrNotFound,
	lifecycle.ErrValidation,
	lifecycle.ErrInvalidTransition,
	filter.ErrUnknownField,
	filter.ErrReadOnlyField,
	filter.ErrInvalidQuery,
	store.ErrNotFound,
	store.ErrInvalidFilter,
	imaging.ErrUnsupportedFormat,
	imaging.ErrTooLarge,
	client.ErrUnauthorized,
	client.ErrBadRequest,
}

// exitCode maps an error to exitUserError or exitSysError.
func exitCode(err error) int {
	var (
		uerr usageError
		perr *filter.ParseError
		verr *model.ValidationError
	)
	if errors.As(err, &uerr) || errors.As(err, &perr) || errors.As(err, &verr) {
		return exitUserError
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	// cobra reports a mistyped subcommand as a plain error.
	if strings.HasPrefix(err.Error(), "unknown command") {
		return exitUserError
	}
	return exitSysError
}

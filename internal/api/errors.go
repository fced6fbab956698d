package api

import (
	"errors"
	"net/http"

	"github.com/heimdex/heimdex-editor/internal/editor"
	"github.com/heimdex/heimdex-editor/internal/export"
	"github.com/heimdex/heimdex-editor/internal/history"
	"github.com/heimdex/heimdex-editor/internal/interact"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// ignoredCode reports edits that change nothing but are not failures.
func ignoredCode(err error) (string, bool) {
	switch {
	case errors.Is(err, interact.ErrLockedTrack):
		return "LOCKED_TRACK", true
	case errors.Is(err, history.ErrUnchanged):
		return "UNCHANGED", true
	}
	return "", false
}

// writeEditError maps an editor error onto a status and error code.
func writeEditError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editor.ErrNoProject):
		WriteError(w, http.StatusConflict, err.Error(), "NO_PROJECT")
	case errors.Is(err, timeline.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, timeline.ErrInvalidRange):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "INVALID_RANGE")
	case errors.Is(err, interact.ErrDragActive):
		WriteError(w, http.StatusConflict, err.Error(), "DRAG_ACTIVE")
	case errors.Is(err, interact.ErrNoDrag):
		WriteError(w, http.StatusConflict, err.Error(), "NO_DRAG")
	case errors.Is(err, export.ErrEmptyTimeline):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "EMPTY_TIMELINE")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

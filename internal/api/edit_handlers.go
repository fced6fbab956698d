package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/heimdex-editor/internal/interact"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// respondEdit writes the outcome of an edit along with the fresh editor
// state.
func respondEdit(cfg ServerConfig, w http.ResponseWriter, err error) {
	status := "ok"
	code := ""
	if err != nil {
		c, ignored := ignoredCode(err)
		if !ignored {
			writeEditError(w, err)
			return
		}
		status, code = "ignored", c
	}
	resp := EditResponse{Status: status, Code: code}
	if state, err := cfg.Session.State(); err == nil {
		resp.State = &state
	}
	WriteJSON(w, http.StatusOK, resp)
}

func importHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var snap timeline.Snapshot
		if !decodeBody(w, r, &snap) {
			return
		}
		respondEdit(cfg, w, cfg.Session.Import(r.Context(), snap))
	}
}

func pointerDownHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PointerDownRequest
		if !decodeBody(w, r, &req) {
			return
		}
		handle, err := interact.ParseHandle(req.Handle)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		respondEdit(cfg, w, cfg.Session.PointerDown(req.ID, handle, req.X))
	}
}

func pointerMoveHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PointerMoveRequest
		if !decodeBody(w, r, &req) {
			return
		}
		respondEdit(cfg, w, cfg.Session.PointerMove(req.X))
	}
}

func pointerUpHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondEdit(cfg, w, cfg.Session.PointerUp())
	}
}

func pointerCancelHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondEdit(cfg, w, cfg.Session.PointerCancel())
	}
}

func dropReorderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DropReorderRequest
		if !decodeBody(w, r, &req) {
			return
		}
		respondEdit(cfg, w, cfg.Session.DropReorder(req.DraggedID, req.TargetID, req.PointerX, req.TargetLeftX, req.TargetWidth))
	}
}

func reorderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ReorderRequest
		if !decodeBody(w, r, &req) {
			return
		}
		respondEdit(cfg, w, cfg.Session.Reorder(req.IDs))
	}
}

func keyHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev interact.KeyEvent
		if !decodeBody(w, r, &ev) {
			return
		}
		if ev.Key == "" {
			WriteError(w, http.StatusBadRequest, "key is required", "BAD_REQUEST")
			return
		}
		respondEdit(cfg, w, cfg.Session.KeyPress(ev))
	}
}

func splitHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SplitRequest
		if !decodeBody(w, r, &req) {
			return
		}
		respondEdit(cfg, w, cfg.Session.Split(req.ID, req.Time))
	}
}

func insertItemHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req InsertItemRequest
		if !decodeBody(w, r, &req) {
			return
		}
		item, err := req.Decode()
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		added, err := cfg.Session.Insert(item)
		if err != nil {
			respondEdit(cfg, w, err)
			return
		}
		state, _ := cfg.Session.State()
		WriteJSON(w, http.StatusCreated, InsertItemResponse{
			ID:    added.ItemID(),
			Track: added.Track(),
			State: state,
		})
	}
}

func deleteItemHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ripple := true
		if v := r.URL.Query().Get("ripple"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "ripple must be a boolean", "BAD_REQUEST")
				return
			}
			ripple = b
		}
		respondEdit(cfg, w, cfg.Session.Delete(id, ripple))
	}
}

func setTransitionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TransitionRequest
		if !decodeBody(w, r, &req) {
			return
		}
		kind := timeline.TransitionType(req.Type)
		if !kind.Valid() {
			WriteError(w, http.StatusBadRequest, "unknown transition type", "BAD_REQUEST")
			return
		}
		spec := timeline.TransitionSpec{Type: kind, Duration: req.Duration}
		respondEdit(cfg, w, cfg.Session.SetTransition(req.FromID, req.ToID, spec))
	}
}

func removeTransitionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondEdit(cfg, w, cfg.Session.RemoveTransition(chi.URLParam(r, "from"), chi.URLParam(r, "to")))
	}
}

func undoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applied, err := cfg.Session.Undo()
		writeUndo(cfg, w, applied, err)
	}
}

func redoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applied, err := cfg.Session.Redo()
		writeUndo(cfg, w, applied, err)
	}
}

func writeUndo(cfg ServerConfig, w http.ResponseWriter, applied bool, err error) {
	if err != nil {
		writeEditError(w, err)
		return
	}
	state, _ := cfg.Session.State()
	WriteJSON(w, http.StatusOK, UndoResponse{Applied: applied, State: state})
}

func historyHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		undo, redo, err := cfg.Session.History()
		if err != nil {
			writeEditError(w, err)
			return
		}
		resp := HistoryResponse{Undo: undo, Redo: redo}
		if resp.Undo == nil {
			resp.Undo = []string{}
		}
		if resp.Redo == nil {
			resp.Redo = []string{}
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func selectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectRequest
		if !decodeBody(w, r, &req) {
			return
		}
		respondEdit(cfg, w, cfg.Session.Select(req.ID))
	}
}

func lockHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := timeline.ParseTrackKind(chi.URLParam(r, "track"))
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		var req LockRequest
		if !decodeBody(w, r, &req) {
			return
		}
		respondEdit(cfg, w, cfg.Session.SetLocked(r.Context(), kind, req.Locked))
	}
}

func zoomHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ZoomRequest
		if !decodeBody(w, r, &req) {
			return
		}
		respondEdit(cfg, w, cfg.Session.SetZoom(r.Context(), req.PixelsPerSecond))
	}
}

func snapHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SnapRequest
		if !decodeBody(w, r, &req) {
			return
		}
		respondEdit(cfg, w, cfg.Session.SetSnapEnabled(r.Context(), req.Enabled))
	}
}

func focusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FocusRequest
		if !decodeBody(w, r, &req) {
			return
		}
		respondEdit(cfg, w, cfg.Session.SetTextInputFocus(req.TextInput))
	}
}

func rulerClickHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RulerClickRequest
		if !decodeBody(w, r, &req) {
			return
		}
		t, err := cfg.Session.ClickRuler(req.X)
		if err != nil {
			writeEditError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, PlayheadResponse{Time: t})
	}
}

func playHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondEdit(cfg, w, cfg.Session.Play())
	}
}

func pauseHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondEdit(cfg, w, cfg.Session.Pause())
	}
}

func seekHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SeekRequest
		if !decodeBody(w, r, &req) {
			return
		}
		respondEdit(cfg, w, cfg.Session.Seek(req.Time))
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects/open", openProjectHandler(cfg))

		r.Get("/timeline", timelineHandler(cfg))
		r.Get("/timeline/layout", layoutHandler(cfg))
		r.Post("/timeline/import", importHandler(cfg))

		r.Post("/pointer/down", pointerDownHandler(cfg))
		r.Post("/pointer/move", pointerMoveHandler(cfg))
		r.Post("/pointer/up", pointerUpHandler(cfg))
		r.Post("/pointer/cancel", pointerCancelHandler(cfg))
		r.Post("/reorder/drop", dropReorderHandler(cfg))
		r.Put("/reorder", reorderHandler(cfg))
		r.Post("/keys", keyHandler(cfg))
		r.Post("/split", splitHandler(cfg))
		r.Post("/items", insertItemHandler(cfg))
		r.Delete("/items/{id}", deleteItemHandler(cfg))
		r.Put("/transitions", setTransitionHandler(cfg))
		r.Delete("/transitions/{from}/{to}", removeTransitionHandler(cfg))

		r.Post("/undo", undoHandler(cfg))
		r.Post("/redo", redoHandler(cfg))
		r.Get("/history", historyHandler(cfg))

		r.Post("/selection", selectHandler(cfg))
		r.Put("/locks/{track}", lockHandler(cfg))
		r.Put("/view/zoom", zoomHandler(cfg))
		r.Put("/view/snap", snapHandler(cfg))
		r.Put("/view/focus", focusHandler(cfg))
		r.Post("/ruler/click", rulerClickHandler(cfg))

		r.Post("/playback/play", playHandler(cfg))
		r.Post("/playback/pause", pauseHandler(cfg))
		r.Post("/playback/seek", seekHandler(cfg))

		r.Get("/suggestions", suggestionsHandler(cfg))
		r.Post("/export/edl", exportEDLHandler(cfg))
	})

	// Media is fetched by <video> and <audio> elements, which cannot send an
	// Authorization header, so it is restricted to loopback instead.
	r.Group(func(r chi.Router) {
		r.Use(LoopbackGuard())
		r.Get("/media", mediaHandler(cfg))
		r.Head("/media", mediaHandler(cfg))
	})

	return r
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return false
	}
	return true
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{Sync: cfg.Session.SyncStatus()}
		if p := cfg.Session.Project(); p != nil {
			pr := ProjectToResponse(p)
			resp.Project = &pr
		}
		if state, err := cfg.Session.State(); err == nil {
			resp.Editor = &state
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Repository.ListProjects(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectResponse, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToResponse(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func openProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OpenProjectRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.ProjectID == "" {
			WriteError(w, http.StatusBadRequest, "project_id is required", "BAD_REQUEST")
			return
		}

		if err := cfg.Session.Open(r.Context(), req.ProjectID, req.Name); err != nil {
			cfg.Logger.Error("failed to open project", "project_id", req.ProjectID, "error", err)
			writeEditError(w, err)
			return
		}
		timelineHandler(cfg).ServeHTTP(w, r)
	}
}

func timelineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := cfg.Session.Snapshot()
		if err != nil {
			writeEditError(w, err)
			return
		}
		layout, _ := cfg.Session.Layout()
		state, _ := cfg.Session.State()
		WriteJSON(w, http.StatusOK, TimelineResponse{
			Snapshot: snap,
			Layout:   LayoutToResponse(layout, state.PixelsPerSecond),
			State:    state,
		})
	}
}

func layoutHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		layout, err := cfg.Session.Layout()
		if err != nil {
			writeEditError(w, err)
			return
		}
		state, _ := cfg.Session.State()
		WriteJSON(w, http.StatusOK, LayoutToResponse(layout, state.PixelsPerSecond))
	}
}

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/heimdex/heimdex-editor/internal/export"
	"github.com/heimdex/heimdex-editor/internal/suggest"
)

func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.Request
		if !decodeBody(w, r, &req) {
			return
		}

		if req.Format != "" && strings.ToLower(req.Format) != "edl" {
			WriteError(w, http.StatusBadRequest, "format must be edl", "BAD_REQUEST")
			return
		}
		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		if req.FrameRate <= 0 {
			req.FrameRate = cfg.FrameRate
		}

		resp, err := cfg.Session.Export(req)
		if err != nil {
			writeEditError(w, err)
			return
		}
		cfg.Logger.Info("timeline exported", "path", resp.OutputPath, "events", resp.EventCount)
		WriteJSON(w, http.StatusOK, resp)
	}
}

func mediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Query().Get("ref")
		if ref == "" {
			WriteError(w, http.StatusBadRequest, "ref is required", "BAD_REQUEST")
			return
		}
		if cfg.Media == nil {
			WriteError(w, http.StatusServiceUnavailable, "media serving disabled", "UNAVAILABLE")
			return
		}
		if err := cfg.Media.ServeMedia(w, r, ref); err != nil {
			cfg.Logger.Error("media error", "error", err, "ref", ref)
		}
	}
}

func suggestionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		markers := []suggest.Marker{}
		if cfg.Suggestions != nil {
			markers = append(markers, cfg.Suggestions.Markers()...)
		}

		q := r.URL.Query()
		if q.Has("from") || q.Has("to") {
			from, err1 := parseFloatParam(q.Get("from"), 0)
			to, err2 := parseFloatParam(q.Get("to"), 1e12)
			if err1 != nil || err2 != nil {
				WriteError(w, http.StatusBadRequest, "from and to must be numbers", "BAD_REQUEST")
				return
			}
			markers = suggest.Between(markers, from, to)
			if markers == nil {
				markers = []suggest.Marker{}
			}
		}
		WriteJSON(w, http.StatusOK, SuggestionsResponse{Markers: markers})
	}
}

func parseFloatParam(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"gentle/internal/codec"
	"gentle/internal/core/network"
	"gentle/internal/domain"
	"gentle/internal/service"
)

// maxBodyBytes bounds request bodies, including imported snapshots
const maxBodyBytes = 4 << 20

// SessionHandler handles the elicitation API
type SessionHandler struct {
	svc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// RegisterRoutes adds every API route to mux
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	// Session lifecycle
	mux.HandleFunc("POST /api/sessions", h.CreateSession)
	mux.HandleFunc("GET /api/sessions", h.ListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", h.GetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.DeleteSession)
	mux.HandleFunc("PUT /api/sessions/{id}/viewport", h.SetViewport)

	// Stage projections and callbacks
	mux.HandleFunc("GET /api/sessions/{id}/stages/{stage}", h.StageView)
	mux.HandleFunc("POST /api/sessions/{id}/names", h.SubmitName)
	mux.HandleFunc("POST /api/sessions/{id}/select", h.SelectNode)
	mux.HandleFunc("POST /api/sessions/{id}/cycle", h.CycleAttribute)
	mux.HandleFunc("POST /api/sessions/{id}/sex", h.SubmitSex)
	mux.HandleFunc("POST /api/sessions/{id}/scalar", h.SubmitScalar)
	mux.HandleFunc("POST /api/sessions/{id}/category", h.SubmitCategory)
	mux.HandleFunc("POST /api/sessions/{id}/drag", h.ReportDragEnd)
	mux.HandleFunc("POST /api/sessions/{id}/link", h.SelectNodeForLinking)
	mux.HandleFunc("GET /api/sessions/{id}/links/{a}/{b}", h.Linked)
	mux.HandleFunc("POST /api/sessions/{id}/layout", h.Relayout)
	mux.HandleFunc("POST /api/sessions/{id}/history", h.RecordProgressSnapshot)

	// Import/export
	mux.HandleFunc("GET /api/sessions/{id}/export/{format}", h.Export)
	mux.HandleFunc("POST /api/import/{format}", h.Import)

	mux.HandleFunc("GET /api/categories", h.Categories)
	mux.HandleFunc("GET /api/health", h.Health)
}

// Session lifecycle

// CreateSession starts a session for the client's screen
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if !decode(w, r, &req) {
		return
	}

	net, err := h.svc.CreateSession(r.Context(), req.Width, req.Height)
	if err != nil {
		h.fail(w, "Failed to create session", err)
		return
	}
	writeJSON(w, net, http.StatusCreated)
}

// ListSessions returns the summaries of all sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.ListSessions(r.Context())
	if err != nil {
		h.fail(w, "Failed to list sessions", err)
		return
	}
	writeJSON(w, summaries, http.StatusOK)
}

// GetSession returns the full snapshot of a session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	net, err := h.svc.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to get session", err)
		return
	}
	writeJSON(w, net, http.StatusOK)
}

// DeleteSession removes a session
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "Failed to delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetViewport recomputes the layout for a new screen size
func (h *SessionHandler) SetViewport(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if !decode(w, r, &req) {
		return
	}

	net, err := h.svc.SetViewport(r.Context(), r.PathValue("id"), req.Width, req.Height)
	if err != nil {
		h.fail(w, "Failed to set viewport", err)
		return
	}
	writeJSON(w, net, http.StatusOK)
}

// Stages

// StageView returns the projection of one stage
func (h *SessionHandler) StageView(w http.ResponseWriter, r *http.Request) {
	stage, ok := parseStage(w, r.PathValue("stage"))
	if !ok {
		return
	}

	view, err := h.svc.StageView(r.Context(), r.PathValue("id"), stage)
	if err != nil {
		h.fail(w, "Failed to get stage", err)
		return
	}
	writeJSON(w, view, http.StatusOK)
}

// SubmitName creates or renames an alter
func (h *SessionHandler) SubmitName(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !decode(w, r, &req) {
		return
	}

	node, err := h.svc.SubmitName(r.Context(), r.PathValue("id"), req.Name)
	if err != nil {
		h.fail(w, "Name not accepted", err)
		return
	}
	writeJSON(w, node, http.StatusOK)
}

// SelectNode selects an alter for renaming or correction
func (h *SessionHandler) SelectNode(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !decode(w, r, &req) {
		return
	}
	stage, ok := parseStage(w, req.Stage)
	if !ok {
		return
	}

	state, err := h.svc.SelectNode(r.Context(), r.PathValue("id"), stage, req.Index)
	if err != nil {
		h.fail(w, "Selection not accepted", err)
		return
	}
	writeJSON(w, state, http.StatusOK)
}

// CycleAttribute advances the binary attribute of an alter
func (h *SessionHandler) CycleAttribute(w http.ResponseWriter, r *http.Request) {
	var req IndexRequest
	if !decode(w, r, &req) {
		return
	}

	node, err := h.svc.CycleAttribute(r.Context(), r.PathValue("id"), req.Index)
	if err != nil {
		h.fail(w, "Value not accepted", err)
		return
	}
	writeJSON(w, node, http.StatusOK)
}

// SubmitSex assigns the binary attribute of an alter
func (h *SessionHandler) SubmitSex(w http.ResponseWriter, r *http.Request) {
	var req SexRequest
	if !decode(w, r, &req) {
		return
	}

	node, err := h.svc.SubmitSex(r.Context(), r.PathValue("id"), req.Index, domain.Sex(req.Sex))
	if err != nil {
		h.fail(w, "Value not accepted", err)
		return
	}
	writeJSON(w, node, http.StatusOK)
}

// SubmitScalar records the numeric attribute of an alter
func (h *SessionHandler) SubmitScalar(w http.ResponseWriter, r *http.Request) {
	var req ScalarRequest
	if !decode(w, r, &req) {
		return
	}

	node, err := h.svc.SubmitScalar(r.Context(), r.PathValue("id"), req.Index, req.Value)
	if err != nil {
		h.fail(w, "Value not accepted", err)
		return
	}
	writeJSON(w, node, http.StatusOK)
}

// SubmitCategory records the category of an alter
func (h *SessionHandler) SubmitCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decode(w, r, &req) {
		return
	}

	node, err := h.svc.SubmitCategory(r.Context(), r.PathValue("id"), req.Index, req.CategoryID)
	if err != nil {
		h.fail(w, "Value not accepted", err)
		return
	}
	writeJSON(w, node, http.StatusOK)
}

// ReportDragEnd records a placement on a continuous stage
func (h *SessionHandler) ReportDragEnd(w http.ResponseWriter, r *http.Request) {
	var req DragRequest
	if !decode(w, r, &req) {
		return
	}
	stage, ok := parseStage(w, req.Stage)
	if !ok {
		return
	}

	node, err := h.svc.ReportDragEnd(r.Context(), r.PathValue("id"), stage, req.Index, req.X, req.Y)
	if err != nil {
		h.fail(w, "Placement not accepted", err)
		return
	}
	writeJSON(w, node, http.StatusOK)
}

// SelectNodeForLinking handles a click on the link-editing stage
func (h *SessionHandler) SelectNodeForLinking(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if !decode(w, r, &req) {
		return
	}

	outcome, err := h.svc.SelectNodeForLinking(r.Context(), r.PathValue("id"), req.Index, req.Points())
	if err != nil {
		h.fail(w, "Selection not accepted", err)
		return
	}
	writeJSON(w, outcome, http.StatusOK)
}

// Linked reports whether two alters are linked
func (h *SessionHandler) Linked(w http.ResponseWriter, r *http.Request) {
	a, errA := strconv.Atoi(r.PathValue("a"))
	b, errB := strconv.Atoi(r.PathValue("b"))
	if err := errors.Join(errA, errB); err != nil {
		writeError(w, "Invalid node index", err.Error(), http.StatusBadRequest)
		return
	}

	linked, err := h.svc.Linked(r.Context(), r.PathValue("id"), a, b)
	if err != nil {
		h.fail(w, "Failed to check link", err)
		return
	}
	writeJSON(w, LinkStatus{Source: a, Target: b, Linked: linked}, http.StatusOK)
}

// Relayout recomputes render positions for a stage
func (h *SessionHandler) Relayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if !decode(w, r, &req) {
		return
	}
	stage, ok := parseStage(w, req.Stage)
	if !ok {
		return
	}

	nodes, err := h.svc.Relayout(r.Context(), r.PathValue("id"), stage, req.Points())
	if err != nil {
		h.fail(w, "Failed to lay out stage", err)
		return
	}
	writeJSON(w, nodes, http.StatusOK)
}

// RecordProgressSnapshot stores the current layout as the previous state
func (h *SessionHandler) RecordProgressSnapshot(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.RecordProgressSnapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "Failed to record history", err)
		return
	}
	writeJSON(w, history, http.StatusOK)
}

// Import/export

// Export downloads a session in the requested format
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, format := r.PathValue("id"), r.PathValue("format")

	data, contentType, err := h.svc.Export(r.Context(), id, format)
	if err != nil {
		h.fail(w, "Failed to export session", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=session.%s", format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Warn().Err(err).Str("session_id", id).Msg("export write failed")
	}
}

// Import registers a session snapshot uploaded in the request body
func (h *SessionHandler) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	net, err := h.svc.Import(r.Context(), r.PathValue("format"), body)
	if err != nil {
		h.fail(w, "Failed to import session", err)
		return
	}
	writeJSON(w, net, http.StatusCreated)
}

// Metadata

// Categories returns the palette of the categorical stage
func (h *SessionHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Palette(), http.StatusOK)
}

// Health reports liveness and the number of live sessions
func (h *SessionHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":        "ok",
		"live_sessions": h.svc.LiveSessions(),
		"formats":       h.svc.ExportFormats(),
	}, http.StatusOK)
}

// Helper methods

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// contractErrors are malformed callbacks, reported as bad requests
var contractErrors = []error{
	network.ErrInvalidIndex,
	network.ErrRespondent,
	network.ErrSelfLink,
	network.ErrUnknownCategory,
	network.ErrInvalidValue,
	network.ErrUnknownMeasure,
	network.ErrDuplicateLink,
	network.ErrInvariant,
	service.ErrInvalidViewport,
	service.ErrStageMismatch,
	service.ErrInvalidSnapshot,
	codec.ErrUnsupportedFormat,
}

// statusFor maps service errors to HTTP status codes. Rejections carry a
// message meant for the respondent and are reported as 422.
func statusFor(err error) int {
	switch {
	case network.IsRejection(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	}
	for _, target := range contractErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func (h *SessionHandler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg(msg)
	}
	writeError(w, msg, err.Error(), status)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func parseStage(w http.ResponseWriter, raw string) (domain.Stage, bool) {
	stage, err := domain.ParseStage(raw)
	if err != nil {
		writeError(w, "Invalid stage", err.Error(), http.StatusBadRequest)
		return "", false
	}
	return stage, true
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("failed to encode JSON")
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}

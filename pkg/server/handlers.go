package server

import (
	"encoding/json"
	"net/http"

	"github.com/null-create/mcp-guard/pkg/codec"
	"github.com/null-create/mcp-guard/pkg/mcp"
	"github.com/null-create/mcp-guard/pkg/util"
	"github.com/null-create/mcp-guard/pkg/validate"
	"github.com/null-create/mcp-guard/pkg/verify"

	"github.com/google/uuid"
	"github.com/null-create/logger"
)

// VerifyToolRequest is the body for single-tool verification.
type VerifyToolRequest struct {
	ServerPath    string             `json:"serverPath"`
	ServerVersion string             `json:"serverVersion"`
	Tool          mcp.ToolDefinition `json:"tool"`
}

// VerifyToolsRequest is the body for bulk verification.
type VerifyToolsRequest struct {
	ServerPath    string               `json:"serverPath"`
	ServerVersion string               `json:"serverVersion"`
	Tools         []mcp.ToolDefinition `json:"tools"`
}

// RemoveBaselineRequest names one baseline to retire.
type RemoveBaselineRequest struct {
	ServerPath    string `json:"serverPath"`
	ServerVersion string `json:"serverVersion"`
	ToolName      string `json:"toolName"`
}

type Handler struct {
	verifier *verify.Verifier
	notify   chan<- struct{} // optional: feeds an attached watcher
	log      *logger.Logger
}

func NewHandler(verifier *verify.Verifier) *Handler {
	return &Handler{
		verifier: verifier,
		log:      logger.NewLogger("SERVER", uuid.NewString()),
	}
}

// WithNotifications attaches a trigger channel fed by the JSON-RPC
// notification endpoint. Sends are non-blocking: a full channel means a
// sweep is already pending.
func (h *Handler) WithNotifications(notify chan<- struct{}) *Handler {
	h.notify = notify
	return h
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, map[string]string{"status": "ok"})
}

// VerifyToolHandler checks one tool definition against its baseline.
func (h *Handler) VerifyToolHandler(w http.ResponseWriter, r *http.Request) {
	var req VerifyToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "invalid request JSON: "+err.Error())
		return
	}

	result, err := h.verifier.Verify(r.Context(), req.ServerPath, req.ServerVersion, req.Tool)
	if err != nil {
		util.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	util.WriteJSON(w, result)
}

// VerifyToolsHandler checks a full tool list; each result is independent.
func (h *Handler) VerifyToolsHandler(w http.ResponseWriter, r *http.Request) {
	var req VerifyToolsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "invalid request JSON: "+err.Error())
		return
	}

	results := h.verifier.VerifyAll(r.Context(), req.ServerPath, req.ServerVersion, req.Tools)
	util.WriteJSON(w, results)
}

// ListBaselinesHandler returns every stored baseline record for audit.
func (h *Handler) ListBaselinesHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.verifier.ListAll(r.Context())
	if err != nil {
		util.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	util.WriteJSON(w, records)
}

// RecordBaselineHandler accepts the submitted definition as ground truth,
// overwriting any prior baseline. JWT-gated: this is the deliberate
// human-approved re-baseline path.
func (h *Handler) RecordBaselineHandler(w http.ResponseWriter, r *http.Request) {
	var req VerifyToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "invalid request JSON: "+err.Error())
		return
	}

	record, err := h.verifier.RecordBaseline(r.Context(), req.ServerPath, req.ServerVersion, req.Tool)
	if err != nil {
		util.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.Info("re-baseline accepted for tool '%s' on %s", req.Tool.Name, req.ServerPath)
	util.WriteJSON(w, record)
}

// RemoveBaselineHandler retires the named baseline. JWT-gated.
func (h *Handler) RemoveBaselineHandler(w http.ResponseWriter, r *http.Request) {
	var req RemoveBaselineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		util.WriteError(w, http.StatusBadRequest, "invalid request JSON: "+err.Error())
		return
	}

	removed, err := h.verifier.RemoveBaseline(r.Context(), req.ServerPath, req.ServerVersion, req.ToolName)
	if err != nil {
		util.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		util.WriteError(w, http.StatusNotFound, "no baseline stored for that tool")
		return
	}
	util.WriteJSON(w, map[string]bool{"removed": true})
}

// ValidateDescriptionHandler scans a definition's description for hidden
// unicode without touching the baseline store.
func (h *Handler) ValidateDescriptionHandler(w http.ResponseWriter, r *http.Request) {
	var tool mcp.ToolDefinition
	if err := json.NewDecoder(r.Body).Decode(&tool); err != nil {
		util.WriteError(w, http.StatusBadRequest, "invalid tool JSON: "+err.Error())
		return
	}

	detections := validate.DetectHiddenUnicode(tool.Description)
	util.WriteJSON(w, map[string]any{
		"name":       tool.Name,
		"clean":      len(detections) == 0,
		"detections": detections,
	})
}

// NotifyHandler accepts a JSON-RPC tools/list_changed notification and
// triggers a re-verification sweep on the attached watcher. The
// notification payload itself is never trusted.
func (h *Handler) NotifyHandler(w http.ResponseWriter, r *http.Request) {
	n, err := codec.ParseNotification(r)
	if err != nil {
		_ = codec.WriteJSONRPCError(w, codec.InvalidRequest, err.Error(), 0)
		return
	}
	if !n.IsToolListChanged() {
		_ = codec.WriteJSONRPCError(w, codec.MethodNotFound, "", 0)
		return
	}

	if h.notify != nil {
		select {
		case h.notify <- struct{}{}:
		default: // a sweep is already pending
		}
	} else {
		h.log.Info("tool list change notification received with no watcher attached")
	}
	w.WriteHeader(http.StatusAccepted)
}

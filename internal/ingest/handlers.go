package ingest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ingestguard/ingestguard/internal/apperror"
	"github.com/ingestguard/ingestguard/internal/cli/health"
	"github.com/ingestguard/ingestguard/internal/credential"
	"github.com/ingestguard/ingestguard/internal/logger"
	"github.com/ingestguard/ingestguard/internal/session"
)

// Handlers implements the REST surface: passphrase validation, upload, and
// the principal-scoped listing/deletion API.
type Handlers struct {
	pipeline    *Pipeline
	credentials credential.Store
	sessions    *session.Registry
	startTime   time.Time
}

// NewHandlers wires a Pipeline, CredentialStore, and SessionRegistry into
// HTTP handlers.
func NewHandlers(pipeline *Pipeline, credentials credential.Store, sessions *session.Registry) *Handlers {
	return &Handlers{pipeline: pipeline, credentials: credentials, sessions: sessions, startTime: time.Now()}
}

// Health handles GET /health, a liveness probe for ingestctl status and
// orchestrators. It always returns 200 as long as the HTTP server is
// responsive; readiness of individual backends is not checked here.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime).Round(time.Second)

	var resp health.Response
	resp.Status = "healthy"
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)
	resp.Data.Service = "ingestd"
	resp.Data.StartedAt = h.startTime.UTC().Format(time.RFC3339)
	resp.Data.Uptime = uptime.String()
	resp.Data.UptimeSec = int64(uptime.Seconds())

	writeJSON(w, http.StatusOK, resp)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits a short, generic message — no key material or internal
// paths ever reach the response body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func statusForError(err error) (int, string) {
	switch apperror.KindOf(err) {
	case apperror.AuthFailure:
		return http.StatusUnauthorized, "invalid credentials"
	case apperror.FormatError:
		return http.StatusBadRequest, "malformed request"
	case apperror.NotFound:
		return http.StatusNotFound, "not found"
	case apperror.Capacity:
		return http.StatusRequestEntityTooLarge, "upload too large"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

type validatePassphraseRequest struct {
	Principal  string `json:"email"`
	Passphrase string `json:"passphrase"`
}

type validatePassphraseResponse struct {
	Validated bool   `json:"validated"`
	Token     string `json:"token"`
}

// ValidatePassphrase handles POST /api/validate-passphrase.
func (h *Handlers) ValidatePassphrase(w http.ResponseWriter, r *http.Request) {
	var req validatePassphraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Principal == "" || req.Passphrase == "" {
		writeError(w, http.StatusBadRequest, "missing or empty fields")
		return
	}

	if err := h.credentials.Validate(r.Context(), req.Principal, req.Passphrase); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sess, err := h.sessions.Create(req.Principal)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, validatePassphraseResponse{Validated: true, Token: sess.Token})
}

type uploadResponse struct {
	ObjectID           string `json:"object_id"`
	VerificationStatus string `json:"verification_status"`
}

// Upload handles POST /api/upload: multipart {file, email, passphrase}.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	email := r.FormValue("email")
	passphrase := r.FormValue("passphrase")
	if email == "" || passphrase == "" {
		writeError(w, http.StatusBadRequest, "missing or empty fields")
		return
	}

	result, err := h.pipeline.Ingest(r.Context(), email, passphrase, header.Filename, file)
	if err != nil {
		status, msg := statusForError(err)
		logger.ErrorCtx(r.Context(), "ingest failed",
			logger.Principal(email), logger.OriginalName(header.Filename), logger.Err(err))
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		ObjectID:           result.ObjectID.String(),
		VerificationStatus: string(result.VerificationStatus),
	})
}

// Files handles GET /api/files.
func (h *Handlers) Files(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())

	records, err := h.pipeline.List(r.Context(), principal)
	if err != nil {
		status, msg := statusForError(err)
		writeError(w, status, msg)
		return
	}
	if records == nil {
		records = []ListedObject{}
	}
	writeJSON(w, http.StatusOK, records)
}

type deleteResponse struct {
	ObjectID string `json:"object_id"`
	Found    bool   `json:"found"`
}

// DeleteFile handles DELETE /api/files?object_id=...&original_name=....
func (h *Handlers) DeleteFile(w http.ResponseWriter, r *http.Request) {
	principal := principalFromContext(r.Context())
	objectID := r.URL.Query().Get("object_id")
	originalName := r.URL.Query().Get("original_name")

	if objectID == "" || originalName == "" {
		writeError(w, http.StatusBadRequest, "missing object_id or original_name")
		return
	}

	found, err := h.pipeline.Delete(r.Context(), principal, objectID, originalName)
	if err != nil {
		status, msg := statusForError(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{ObjectID: objectID, Found: found})
}

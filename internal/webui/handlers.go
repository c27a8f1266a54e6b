package webui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"festive/internal/logging"
	"festive/internal/mediajob"
	"festive/internal/services"
)

// StateResponse is the body of GET /api/state and of action responses.
type StateResponse struct {
	mediajob.Snapshot
	Error string `json:"error,omitempty"`
}

// DownloadRequest is the optional body of POST /api/download.
type DownloadRequest struct {
	URL string `json:"url"`
}

func (s *Server) state() StateResponse {
	return StateResponse{Snapshot: s.ctrl.Snapshot(), Error: s.lastError()}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload: %v", err))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "form field \"file\" is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "application/octet-stream" {
		contentType = ""
	}
	asset, err := s.ctrl.Upload(r.Context(), mediajob.File{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		s.writeActionError(w, r, "upload", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"asset": asset, "state": s.state()})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if wait {
		// The poll loop outlives the server's write timeout.
		_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
		result, err := s.ctrl.Generate(r.Context())
		if err != nil {
			s.writeActionError(w, r, "generate", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"result": result, "state": s.state()})
		return
	}

	ctx := s.backgroundContext()
	if id, ok := services.RequestIDFromContext(r.Context()); ok {
		ctx = services.WithRequestID(ctx, id)
	}
	done, err := s.ctrl.StartGenerate(ctx)
	if err != nil {
		s.writeActionError(w, r, "generate", err)
		return
	}
	s.jobs.Add(1)
	go func() {
		defer s.jobs.Done()
		if outcome := <-done; outcome.Err != nil {
			logging.WithContext(ctx, s.logger).Warn("background generation ended with error",
				logging.Error(outcome.Err),
				logging.String(logging.FieldEventType, "generate_failed"))
		}
	}()
	writeJSON(w, http.StatusAccepted, s.state())
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
	}
	saved, err := s.ctrl.Download(r.Context(), req.URL, s.outputDir)
	if err != nil {
		s.writeActionError(w, r, "download", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Reset()
	writeJSON(w, http.StatusOK, s.state())
}

// handleEvents streams controller events as server-sent events, starting
// with the current state.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	events, unsubscribe := s.events.subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	snap := s.ctrl.Snapshot()
	initial := mediajob.Event{State: snap.State, Label: snap.Label, AssetURL: snap.AssetURL, JobID: snap.JobID, ResultURL: snap.ResultURL, At: time.Now()}
	if err := writeEvent(w, rc, initial); err != nil {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, rc, event); err != nil {
				return
			}
		}
	}
}

type streamEvent struct {
	mediajob.Event
	Error string `json:"error,omitempty"`
}

func writeEvent(w io.Writer, rc *http.ResponseController, event mediajob.Event) error {
	payload := streamEvent{Event: event}
	if event.Err != nil {
		payload.Error = event.Err.Error()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
		return err
	}
	return rc.Flush()
}

func (s *Server) writeActionError(w http.ResponseWriter, r *http.Request, action string, err error) {
	status := statusFor(err)
	logger := logging.WithContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Warn("request failed",
			logging.String("action", action),
			logging.Int("status", status),
			logging.Error(err),
			logging.String(logging.FieldEventType, "request_failed"))
	} else {
		logger.Debug("request rejected",
			logging.String("action", action),
			logging.Int("status", status),
			logging.Error(err))
	}
	writeError(w, status, err.Error())
}

// statusFor maps controller errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, mediajob.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, mediajob.ErrNoAsset), errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, services.ErrUpload), errors.Is(err, services.ErrSubmit),
		errors.Is(err, services.ErrJob), errors.Is(err, services.ErrDownload):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": strings.TrimSpace(message)})
}

package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/sortbin/internal/session"
	"github.com/tendant/sortbin/pkg/recycling"
)

// UploadField is the repeated multipart field carrying images
const UploadField = "images"

// SelectRequest is the body of PUT /v1/sessions/{id}/selected
type SelectRequest struct {
	ImageID string `json:"image_id"`
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return s, true
}

// HandleCreateSession opens an upload session
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": s.ID()})
}

// HandleGetSession returns the session view
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// HandleCloseSession releases the session and everything it holds
func (h *Handler) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpload adds the multipart images to the session
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			writeError(w, err)
			return
		}
		http.Error(w, fmt.Sprintf("Invalid upload: %v", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[UploadField]
	uploads := make([]session.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid upload: %v", err), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid upload: %v", err), http.StatusBadRequest)
			return
		}
		uploads = append(uploads, session.Upload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	if _, err := s.Add(r.Context(), uploads); err != nil {
		log.Printf("[%s] Upload rejected: %v", s.ID(), err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.Snapshot())
}

// HandleSelect changes the selected image
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}
	if req.ImageID == "" {
		http.Error(w, "image_id is required", http.StatusBadRequest)
		return
	}

	if err := s.Select(req.ImageID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// HandleRemoveImage drops one image
func (h *Handler) HandleRemoveImage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.Remove(r.Context(), chi.URLParam(r, "imageID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// HandleRemoveAll drops every image and clears the session
func (h *Handler) HandleRemoveAll(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.RemoveAll(r.Context())
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// HandleDetect runs detection for an image, or the selected one when no
// image id is in the path
func (h *Handler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	imageID := chi.URLParam(r, "imageID")
	if imageID == "" {
		imageID = s.Selected()
	}

	result, err := s.Detect(r.Context(), imageID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recycling.DetectResponse{
		ImageID: imageID,
		Result:  *result,
		Route:   result.Route(),
	})
}

// HandlePreview serves a preview thumbnail until its handle is revoked
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	data, ok := h.previews.Get(chi.URLParam(r, "handle"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

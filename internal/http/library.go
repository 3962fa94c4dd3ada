package httpapp

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"os"

	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/http/dto"
)

const fileNotFound = "File not found."

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		h.writeError(w, http.StatusBadRequest, "email: is required")
		return
	}

	files, err := h.Library.List(email, h.baseURL(r))
	if err != nil {
		h.Logger.WithOwner(email).Error("Failed to list files", "error", err)
		h.writeError(w, statusFor(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, dto.FilesResponse{Email: email, Files: files})
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("file")
	path, mimeType, err := h.Library.Open(name)
	if err != nil {
		h.writeLibraryError(w, err)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		h.writeError(w, http.StatusNotFound, fileNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.writeError(w, http.StatusBadRequest, dto.ToResponse(errs))
		return
	}

	if err := h.Library.Delete(req.Email, req.File); err != nil {
		h.writeLibraryError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "File deleted"})
}

func (h *Handler) writeLibraryError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, fileNotFound)
		return
	}
	h.writeError(w, statusFor(err), err.Error())
}

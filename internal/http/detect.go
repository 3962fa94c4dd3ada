package httpapp

import (
	"net/http"
)

func (h *Handler) DetectMetadata(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.writeError(w, formErrorStatus(err), "Invalid multipart form: "+err.Error())
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "file: is required")
		return
	}
	defer file.Close()

	info, err := h.Detector.Detect(r.Context(), file, header.Filename)
	if err != nil {
		h.Logger.Error("Metadata detection failed", "file", header.Filename, "error", err)
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

package httpapp

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"

	"github.com/cesargomez89/strume/internal/app"
	"github.com/cesargomez89/strume/internal/constants"
	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/http/dto"
)

const multipartMemory = 32 << 20

// Separate strips vocals from the uploaded file and streams the
// instrumental back. The temporary files are removed once the response
// has been written or the client went away.
func (h *Handler) Separate(w http.ResponseWriter, r *http.Request) {
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

	form := dto.SeparateForm{
		TaskID:   r.FormValue("task_id"),
		KeepFile: r.FormValue("keep_file"),
		Email:    r.FormValue("email"),
		Title:    r.FormValue("title"),
		Artist:   r.FormValue("artist"),
		Genre:    r.FormValue("genre"),
	}
	if errs := form.Validate(); len(errs) > 0 {
		h.writeError(w, http.StatusBadRequest, dto.ToResponse(errs))
		return
	}

	res, err := h.Separations.Separate(r.Context(), app.SeparateRequest{
		Upload:   file,
		Filename: header.Filename,
		TaskID:   form.TaskID,
		Keep:     form.Keep,
		Owner:    form.Email,
		Title:    form.Title,
		Artist:   form.Artist,
		Genre:    form.Genre,
	})
	if err != nil {
		h.writeSeparationError(w, err)
		return
	}
	defer res.Finish()

	h.streamArtifact(w, res)
}

func (h *Handler) writeSeparationError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrBusy) {
		h.writeError(w, http.StatusServiceUnavailable, "Separation failed: "+domain.ErrBusy.Error())
		return
	}
	var sepErr *domain.SeparationError
	if errors.As(err, &sepErr) {
		h.writeError(w, http.StatusInternalServerError, "Separation failed: "+sepErr.Err.Error())
		return
	}
	h.writeError(w, statusFor(err), err.Error())
}

func (h *Handler) streamArtifact(w http.ResponseWriter, res *app.SeparateResult) {
	log := h.Logger.WithTask(res.TaskID)

	f, err := os.Open(res.Path)
	if err != nil {
		log.Error("Failed to open artifact", "path", res.Path, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Separation failed: artifact missing")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", constants.MimeTypeWAV)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.DownloadName}))
	w.Header().Set("X-Task-ID", res.TaskID)
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}
	w.WriteHeader(http.StatusOK)

	if n, err := io.Copy(w, f); err != nil {
		log.Warn("Artifact stream interrupted", "bytes", n, "error", err)
	}
}

func formErrorStatus(err error) int {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

package asset

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/radif/assetstore/internal/response"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	// multipartMemory is how much of a multipart body is kept in memory
	// before spilling to disk.
	multipartMemory = 8 << 20
)

// Handler holds HTTP handlers for image endpoints.
type Handler struct {
	svc      *Service
	maxBytes int64
}

// NewHandler creates a new asset Handler. Upload bodies larger than
// maxBytes are rejected.
func NewHandler(svc *Service, maxBytes int64) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes}
}

type existsData struct {
	Exists bool `json:"exists" example:"true"`
}

type deletedData struct {
	Deleted bool `json:"deleted" example:"true"`
}

// Upload godoc
//
//	@Summary		Upload image
//	@Description	Saves an image and one resized copy per image size of the active theme. Either every object is stored or the request fails.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Image file"
//	@Param			dir		formData	string	false	"Target directory, defaults to <prefix>/YYYY/MM"
//	@Success		201		{object}	response.Envelope{data=Asset}
//	@Failure		400		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		415		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/images [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "file too large")
			return
		}
		response.BadRequest(w, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	a, err := h.svc.Upload(r.Context(), file, header.Filename, r.FormValue("dir"))
	if err != nil {
		if errors.Is(err, ErrInvalidContentType) {
			response.UnsupportedMediaType(w, "only jpeg, png, gif, webp and bmp images are accepted")
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Str("file", header.Filename).Msg("upload failed")
		response.BadGateway(w, "upload failed")
		return
	}

	response.Created(w, a)
}

// List godoc
//
//	@Summary		List images
//	@Description	Returns recorded uploads, newest first. Empty when no database is configured.
//	@Tags			images
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of assets"	default(50)
//	@Success		200		{object}	response.Envelope{data=[]Asset}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/images [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			response.BadRequest(w, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	assets, err := h.svc.List(r.Context(), limit)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("list assets")
		response.InternalError(w)
		return
	}
	response.OK(w, assets)
}

// Exists godoc
//
//	@Summary		Check image
//	@Description	Reports whether an object is stored. Any store failure reads as false.
//	@Tags			images
//	@Produce		json
//	@Param			name	query		string	true	"File name"
//	@Param			dir		query		string	true	"Directory"
//	@Success		200		{object}	response.Envelope{data=existsData}
//	@Failure		400		{object}	response.Envelope
//	@Router			/images/exists [get]
func (h *Handler) Exists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, dir := q.Get("name"), q.Get("dir")
	if name == "" || dir == "" {
		response.BadRequest(w, "name and dir are required")
		return
	}
	response.OK(w, existsData{Exists: h.svc.Exists(r.Context(), name, dir)})
}

// Delete godoc
//
//	@Summary		Delete image
//	@Description	Deletes an object. Any store failure reads as false.
//	@Tags			images
//	@Produce		json
//	@Param			name	query		string	true	"File name"
//	@Param			dir		query		string	false	"Directory, defaults to the current target directory"
//	@Success		200		{object}	response.Envelope{data=deletedData}
//	@Failure		400		{object}	response.Envelope
//	@Router			/images [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("name")
	if name == "" {
		response.BadRequest(w, "name is required")
		return
	}
	response.OK(w, deletedData{Deleted: h.svc.Delete(r.Context(), name, q.Get("dir"))})
}

// Read godoc
//
//	@Summary		Read image
//	@Description	Returns the raw bytes behind a public URL or a local path.
//	@Tags			images
//	@Produce		octet-stream
//	@Param			path	query		string	true	"Public URL or local path"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/images/read [get]
func (h *Handler) Read(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		response.BadRequest(w, "path is required")
		return
	}

	data, err := h.svc.Read(r.Context(), p)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "image not found")
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Str("path", p).Msg("read failed")
		response.BadGateway(w, "read failed")
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

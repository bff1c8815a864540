package file

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cloudpocket/gateway/internal/response"
)

// Version is reported by the info endpoint.
const Version = "1.0.0"

// Handler holds HTTP handlers for file endpoints.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
	keyFormat      string
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithKeyFormat sets the key format advertised by Info. Defaults to "uuid".
func WithKeyFormat(format string) HandlerOption {
	return func(h *Handler) {
		if format != "" {
			h.keyFormat = format
		}
	}
}

// NewHandler creates a new file Handler. Uploads larger than maxUploadBytes
// are rejected with 413.
func NewHandler(svc *Service, maxUploadBytes int64, opts ...HandlerOption) *Handler {
	h := &Handler{svc: svc, maxUploadBytes: maxUploadBytes, keyFormat: KeyFormat("")}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type uploadData struct {
	Message string `json:"message" example:"File uploaded successfully"`
	S3Key   string `json:"s3_key"  example:"6f1c1f7e-4a53-4a4e-9d0b-2b1f0a2f6c11"`
}

type infoData struct {
	Message   string            `json:"message"   example:"CloudPocket API"`
	Version   string            `json:"version"   example:"1.0.0"`
	KeyFormat string            `json:"key_format" example:"uuid"`
	Endpoints map[string]string `json:"endpoints"`
}

type registryData struct {
	Count   int     `json:"count"`
	Entries []entry `json:"entries"`
}

type entry struct {
	Filename   string `json:"filename"    example:"a.txt"`
	S3Key      string `json:"s3_key"      example:"1740830400_a.txt"`
	UploadTime string `json:"upload_time" example:"2025-03-01T12:00:00Z"`
}

// Info godoc
//
//	@Summary		API information
//	@Description	Returns the service name, version, endpoint map, and the format of generated object keys.
//	@Tags			info
//	@Produce		json
//	@Success		200	{object}	infoData
//	@Router			/ [get]
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	response.OK(w, infoData{
		Message:   "CloudPocket API",
		Version:   Version,
		KeyFormat: h.keyFormat,
		Endpoints: map[string]string{
			"upload":   "POST /upload/",
			"download": "GET /download/{s3_key}",
			"list":     "GET /files/",
			"delete":   "DELETE /delete/{s3_key}",
		},
	})
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Stores the file in object storage and registers it. Returns the generated object key.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File to upload"
//	@Success		200		{object}	uploadData
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		413		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/upload/ [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "File exceeds the upload limit of "+strconv.FormatInt(h.maxUploadBytes, 10)+" bytes")
			return
		}
		response.BadRequest(w, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	f, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file field is required")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.BadRequest(w, "failed to read uploaded file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, err := h.svc.Upload(r.Context(), header.Filename, data, contentType)
	if errors.Is(err, ErrInvalidFilename) {
		response.BadRequest(w, "filename is required")
		return
	}
	if err != nil {
		response.InternalError(w, "Failed to upload file: "+err.Error())
		return
	}

	response.OK(w, uploadData{Message: "File uploaded successfully", S3Key: key})
}

// keyParam returns the decoded {key} segment. chi routes on RawPath when the
// client escaped characters Go would leave alone (",", "&", ...), and then the
// param is still escaped.
func keyParam(r *http.Request) (string, error) {
	key := chi.URLParam(r, "key")
	if r.URL.RawPath == "" {
		return key, nil
	}
	return url.PathUnescape(key)
}

// Download godoc
//
//	@Summary		Download a file
//	@Description	Streams the object stored under the key. The key is looked up in object storage directly.
//	@Tags			files
//	@Produce		octet-stream
//	@Param			key	path		string	true	"Object key"
//	@Success		200	{file}		binary
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/download/{key} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r)
	if err != nil {
		response.BadRequest(w, "invalid key escaping")
		return
	}

	rc, info, err := h.svc.Download(r.Context(), key)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "File not found")
			return
		}
		response.InternalError(w, "Failed to download file: "+err.Error())
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if info != nil && info.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	// Headers are already sent; a failed copy can only be seen by the client
	// as a truncated body.
	_, _ = io.Copy(w, rc)
}

// List godoc
//
//	@Summary		List files
//	@Description	Returns the filenames of every file uploaded through this process.
//	@Tags			files
//	@Produce		json
//	@Success		200	{array}	string
//	@Router			/files/ [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.svc.List())
}

// Delete godoc
//
//	@Summary		Delete a file
//	@Description	Removes the object from storage and forgets it. Only registered keys can be deleted.
//	@Tags			files
//	@Produce		json
//	@Param			key	path		string	true	"Object key"
//	@Success		200	{object}	response.MessageBody
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/delete/{key} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r)
	if err != nil {
		response.BadRequest(w, "invalid key escaping")
		return
	}

	err = h.svc.Delete(r.Context(), key)
	if h.svc.IsNotFound(err) {
		response.NotFound(w, "File not found")
		return
	}
	if err != nil {
		response.InternalError(w, "Failed to delete file: "+err.Error())
		return
	}

	response.Message(w, "File deleted successfully")
}

// Registry godoc
//
//	@Summary		Inspect the registry
//	@Description	Returns every registered upload with its key and upload time.
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	registryData
//	@Failure		401	{object}	response.ErrorBody
//	@Router			/admin/registry [get]
func (h *Handler) Registry(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.Entries()
	out := registryData{Count: len(entries), Entries: make([]entry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, entry{
			Filename:   e.Filename,
			S3Key:      e.ObjectKey,
			UploadTime: e.UploadTime.UTC().Format(time.RFC3339),
		})
	}
	response.OK(w, out)
}

// ClearRegistry godoc
//
//	@Summary		Clear the registry
//	@Description	Forgets every registered upload. Objects remain in storage.
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.MessageBody
//	@Failure		401	{object}	response.ErrorBody
//	@Router			/admin/registry [delete]
func (h *Handler) ClearRegistry(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearRegistry(r.Context())
	response.Message(w, "Registry cleared")
}

// Objects godoc
//
//	@Summary		List bucket objects
//	@Description	Lists objects in the bucket, including ones this process never registered.
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			prefix	query		string	false	"Key prefix"
//	@Success		200		{array}		storage.ObjectInfo
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/admin/objects [get]
func (h *Handler) Objects(w http.ResponseWriter, r *http.Request) {
	objects, err := h.svc.ListObjects(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		response.InternalError(w, "Failed to list objects: "+err.Error())
		return
	}
	response.OK(w, objects)
}

package handlers

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/relaychat/apiserver/internal/storage"
)

const (
	maxUploadMemory = 32 << 20
	maxFileBytes    = 64 << 20
	formFieldFiles  = "files"
)

// FileHandler provides attachment upload and download backed by
// object storage. Objects are keyed by content hash inside the
// uploader's workspace, so re-uploading the same file is idempotent.
type FileHandler struct {
	storage *storage.Storage
}

func NewFileHandler(store *storage.Storage) *FileHandler {
	return &FileHandler{storage: store}
}

// FileRouter registers upload/download routes on the given router.
// Callers must already be authenticated.
func FileRouter(r chi.Router, store *storage.Storage) {
	handler := NewFileHandler(store)

	r.Post("/upload", handler.Upload)
	r.Get("/files/{wsID}/*", handler.Download)
}

// Upload stores each file in the multipart request and returns the
// download paths.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	files := r.MultipartForm.File[formFieldFiles]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	paths := make([]string, 0, len(files))
	for _, header := range files {
		if header.Size > maxFileBytes {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file %s too large", header.Filename))
			return
		}

		file, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read file")
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxFileBytes+1))
		_ = file.Close()
		if err != nil || int64(len(data)) > maxFileBytes {
			writeError(w, http.StatusBadRequest, "failed to read file")
			return
		}

		key := objectKey(identity.WsID, header.Filename, data)
		contentType := mime.TypeByExtension(filepath.Ext(header.Filename))
		if err := h.storage.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to store file")
			return
		}
		paths = append(paths, "/files/"+key)
	}

	writeJSON(w, http.StatusOK, UploadResponse{Paths: paths})
}

// Download streams a stored object. Access is limited to the caller's
// own workspace.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	wsID, err := strconv.ParseInt(chi.URLParam(r, "wsID"), 10, 64)
	if err != nil || wsID < 1 {
		writeError(w, http.StatusBadRequest, "invalid workspace id")
		return
	}
	if wsID != identity.WsID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	rest := chi.URLParam(r, "*")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "missing file path")
		return
	}

	key := fmt.Sprintf("%d/%s", wsID, rest)
	object, err := h.storage.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	defer object.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(rest)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, object); err != nil {
		// Response already started; nothing useful left to send.
		return
	}
}

type UploadResponse struct {
	Paths []string `json:"paths"`
}

// objectKey derives the storage key from the file content, fanned out
// over two hash-prefix directories to keep listings shallow.
func objectKey(wsID int64, filename string, data []byte) string {
	sum := sha1.Sum(data)
	hash := hex.EncodeToString(sum[:])
	ext := filepath.Ext(filename)
	return fmt.Sprintf("%d/%s/%s/%s%s", wsID, hash[:3], hash[3:6], hash[6:], ext)
}

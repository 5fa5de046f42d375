package http

import (
	"io"
	"net/http"
	"path/filepath"

	"atv-rental-backend/internal/logger"
	"atv-rental-backend/internal/storage"

	"github.com/gorilla/mux"
)

// StorageHandler serves stored vehicle images over HTTP.
type StorageHandler struct {
	blobs storage.BlobStorage
}

func NewStorageHandler(blobs storage.BlobStorage) *StorageHandler {
	return &StorageHandler{blobs: blobs}
}

func (h *StorageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if key == "" {
		http.Error(w, "Missing key", http.StatusBadRequest)
		return
	}

	file, err := h.blobs.Open(r.Context(), key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".gif":
		contentType = "image/gif"
	case ".webp":
		contentType = "image/webp"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.Error("Failed to stream stored file", "key", key, "error", err)
	}
}

package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dkorolev/digital-home/backend/internal/middleware"
	"github.com/dkorolev/digital-home/backend/internal/models"
)

const (
	maxLinks      = 50
	maxAvatarSize = 2 << 20 // 2 MiB
)

// ProfileStore defines the interface for profile persistence.
type ProfileStore interface {
	GetByUser(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, p *models.Profile) error
	SetAvatarKey(ctx context.Context, userID, key string) error
}

// FileStore defines the interface for avatar object storage.
type FileStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
}

// Handler holds profile HTTP handlers. All routes are mounted behind the
// auth middleware, so the user id is always present in the context.
type Handler struct {
	profiles ProfileStore
	files    FileStore
}

func NewHandler(profiles ProfileStore, files FileStore) *Handler {
	return &Handler{profiles: profiles, files: files}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Get returns the current user's profile.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	p, err := h.profiles.GetByUser(r.Context(), userID)
	if err != nil {
		log.Printf("get profile error: %v", err)
		http.Error(w, `{"message":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update replaces the current user's display name, bio, and links.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"message":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if len(req.Links) > maxLinks {
		http.Error(w, fmt.Sprintf(`{"message":"at most %d links allowed"}`, maxLinks), http.StatusBadRequest)
		return
	}
	for i := range req.Links {
		if req.Links[i].Title == "" || req.Links[i].URL == "" {
			http.Error(w, `{"message":"each link needs a title and a url"}`, http.StatusBadRequest)
			return
		}
		if req.Links[i].ID == "" {
			req.Links[i].ID = uuid.New().String()
		}
	}
	if req.Links == nil {
		req.Links = []models.Link{}
	}

	p := &models.Profile{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Links:       req.Links,
	}
	if err := h.profiles.Upsert(r.Context(), p); err != nil {
		log.Printf("update profile error: %v", err)
		http.Error(w, `{"message":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UploadAvatar stores the uploaded image in object storage under a per-user key.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	// MaxBytesReader enforces the cap; ParseMultipartForm alone only bounds
	// what is held in memory.
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize)
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		http.Error(w, `{"message":"avatar must be a multipart upload of at most 2MiB"}`, http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		http.Error(w, `{"message":"avatar file is required"}`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	ct := header.Header.Get("Content-Type")
	if ct != "image/png" && ct != "image/jpeg" {
		http.Error(w, `{"message":"avatar must be a png or jpeg image"}`, http.StatusBadRequest)
		return
	}

	key := userID + "/avatar"
	if err := h.files.Upload(r.Context(), key, file, header.Size, ct); err != nil {
		log.Printf("avatar upload error: %v", err)
		http.Error(w, `{"message":"upload failed"}`, http.StatusInternalServerError)
		return
	}
	if err := h.profiles.SetAvatarKey(r.Context(), userID, key); err != nil {
		log.Printf("avatar key save error: %v", err)
		http.Error(w, `{"message":"upload failed"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "avatar updated"})
}

// GetAvatar streams the stored avatar image.
func (h *Handler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	p, err := h.profiles.GetByUser(r.Context(), userID)
	if err != nil || p.AvatarKey == "" {
		http.Error(w, `{"message":"avatar not found"}`, http.StatusNotFound)
		return
	}

	data, ct, err := h.files.Download(r.Context(), p.AvatarKey)
	if err != nil {
		log.Printf("avatar download error: %v", err)
		http.Error(w, `{"message":"download failed"}`, http.StatusInternalServerError)
		return
	}
	if !strings.HasPrefix(ct, "image/") {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Write(data)
}

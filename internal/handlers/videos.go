package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
)

const maxVideoFormMemory = 64 << 20

// VideoHandler implements video publishing and mutation endpoints.
type VideoHandler struct {
	Videos  VideoStore
	Blobs   BlobStore
	Prober  DurationProber
	NowFunc func() time.Time
}

// Publish handles POST /api/v1/videos. The multipart request carries title,
// description, a video file and a thumbnail. Both assets go to the blob
// store; the clip duration is probed from the uploaded file before upload.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	if h.Blobs == nil {
		logger.Error("blob store unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "media upload services unavailable")
		return
	}

	if err := r.ParseMultipartForm(maxVideoFormMemory); err != nil {
		logger.Warn("invalid publish payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, http.StatusBadRequest, "title and description are required")
		return
	}

	videoFile, videoHeader, err := r.FormFile("videoFile")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video file is required")
		return
	}
	defer videoFile.Close()

	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "thumbnail file is required")
		return
	}
	defer thumbFile.Close()

	duration, videoURL, err := h.ingestVideo(r, videoFile, videoHeader)
	if err != nil {
		logger.Error("video upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store video file")
		return
	}

	thumbKey := fmt.Sprintf("thumbnails/%s%s", uuid.NewString(), filepath.Ext(thumbHeader.Filename))
	thumbURL, err := h.Blobs.Upload(ctx, thumbKey, thumbFile)
	if err != nil {
		logger.Error("thumbnail upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
		return
	}

	now := h.now()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      identity.UserID,
		Title:        title,
		Description:  description,
		VideoURL:     videoURL,
		ThumbnailURL: thumbURL,
		Duration:     duration,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video")
		return
	}

	respondData(ctx, w, http.StatusCreated, video, "video published")
}

// Get handles GET /api/v1/videos/{videoId}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if videoID == "" {
		respondError(ctx, w, http.StatusBadRequest, "video id is required")
		return
	}

	video, err := h.Videos.Get(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "got the video")
}

// Update handles PATCH /api/v1/videos/{videoId}: title, description and an
// optional replacement thumbnail. Only the owner may edit. The previous
// thumbnail is removed from the blob store after a successful swap.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videoID := r.PathValue("videoId")
	if videoID == "" {
		respondError(ctx, w, http.StatusBadRequest, "video id is required")
		return
	}

	video, err := h.Videos.Get(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video")
		return
	}

	if _, ok := requireOwner(ctx, w, video.OwnerID); !ok {
		return
	}

	if err := r.ParseMultipartForm(maxVideoFormMemory); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, http.StatusBadRequest, "title and description are required")
		return
	}

	video.Title = title
	video.Description = description

	oldThumbnail := ""
	if thumbFile, thumbHeader, err := r.FormFile("thumbnail"); err == nil {
		defer thumbFile.Close()

		key := fmt.Sprintf("thumbnails/%s%s", uuid.NewString(), filepath.Ext(thumbHeader.Filename))
		url, err := h.Blobs.Upload(ctx, key, thumbFile)
		if err != nil {
			logger.Error("thumbnail upload failed", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
			return
		}
		oldThumbnail = video.ThumbnailURL
		video.ThumbnailURL = url
	}

	video.UpdatedAt = h.now()
	if err := h.Videos.Update(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video")
		return
	}

	if oldThumbnail != "" {
		if err := h.Blobs.Delete(ctx, oldThumbnail); err != nil {
			logger.Warn("failed to delete replaced thumbnail", "url", oldThumbnail, "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, video, "video updated")
}

// Delete handles DELETE /api/v1/videos/{videoId}. Only the owner may delete.
// The store removes dependent comments, likes and playlist references in the
// same transaction as the video row.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if videoID == "" {
		respondError(ctx, w, http.StatusBadRequest, "video id is required")
		return
	}

	video, err := h.Videos.Get(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video")
		return
	}

	if _, ok := requireOwner(ctx, w, video.OwnerID); !ok {
		return
	}

	if err := h.Videos.Delete(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "video deleted successfully")
}

// TogglePublish handles PATCH /api/v1/videos/{videoId}/publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := r.PathValue("videoId")
	if videoID == "" {
		respondError(ctx, w, http.StatusBadRequest, "video id is required")
		return
	}

	video, err := h.Videos.Get(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video")
		return
	}

	if _, ok := requireOwner(ctx, w, video.OwnerID); !ok {
		return
	}

	video.IsPublished = !video.IsPublished
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "video publish status updated successfully")
}

// ingestVideo spools the uploaded file to disk so its duration can be probed,
// then streams it to the blob store.
func (h VideoHandler) ingestVideo(r *http.Request, file multipart.File, header *multipart.FileHeader) (float64, string, error) {
	ctx := r.Context()

	tmp, err := os.CreateTemp("", "cliptube-upload-*")
	if err != nil {
		return 0, "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		return 0, "", fmt.Errorf("spool upload: %w", err)
	}

	duration := 0.0
	if h.Prober != nil {
		duration, err = h.Prober.Duration(ctx, tmp.Name())
		if err != nil {
			// A clip with unknown duration is still publishable.
			logging.FromContext(ctx).Warn("duration probe failed", "error", err)
			duration = 0
		}
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return 0, "", fmt.Errorf("rewind upload: %w", err)
	}

	key := fmt.Sprintf("videos/%s%s", uuid.NewString(), filepath.Ext(header.Filename))
	url, err := h.Blobs.Upload(ctx, key, tmp)
	if err != nil {
		return 0, "", fmt.Errorf("upload video: %w", err)
	}

	return duration, url, nil
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

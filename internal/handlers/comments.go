package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
)

// CommentHandler implements comment endpoints, including the aggregated
// per-video comments read view.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	Views    ViewEngine
	NowFunc  func() time.Time
}

// ListForVideo handles GET /api/v1/videos/{videoId}/comments. Comments come
// back newest first, each carrying its like count and owner projection.
func (h CommentHandler) ListForVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := r.PathValue("videoId")
	if videoID == "" {
		respondError(ctx, w, http.StatusBadRequest, "video id is required")
		return
	}

	ctx, span := logging.StartSpan(ctx, "views.video_comments")
	comments, err := h.Views.VideoComments(ctx, videoID)
	span.End()
	if err != nil {
		respondStoreError(ctx, w, err, "video")
		return
	}

	respondData(ctx, w, http.StatusOK, comments, "all comments sent")
}

// Add handles POST /api/v1/videos/{videoId}/comments.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	videoID := r.PathValue("videoId")
	if videoID == "" {
		respondError(ctx, w, http.StatusBadRequest, "video id is required")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "comment content is required")
		return
	}

	if _, err := h.Videos.Get(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video")
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   identity.UserID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondStoreError(ctx, w, err, "comment")
		return
	}

	respondData(ctx, w, http.StatusCreated, comment, "comment added successfully")
}

// Update handles PATCH /api/v1/comments/{commentId}. Only the owner may edit.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	commentID := r.PathValue("commentId")
	if commentID == "" {
		respondError(ctx, w, http.StatusBadRequest, "comment id is required")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, http.StatusBadRequest, "comment content is required")
		return
	}

	comment, err := h.Comments.Get(ctx, commentID)
	if err != nil {
		respondStoreError(ctx, w, err, "comment")
		return
	}

	if _, ok := requireOwner(ctx, w, comment.OwnerID); !ok {
		return
	}

	comment.Content = content
	comment.UpdatedAt = h.now()

	if err := h.Comments.Update(ctx, comment); err != nil {
		respondStoreError(ctx, w, err, "comment")
		return
	}

	respondData(ctx, w, http.StatusOK, comment, "comment updated successfully")
}

// Delete handles DELETE /api/v1/comments/{commentId}. Only the owner may
// delete; likes referencing the comment are removed with it.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	commentID := r.PathValue("commentId")
	if commentID == "" {
		respondError(ctx, w, http.StatusBadRequest, "comment id is required")
		return
	}

	comment, err := h.Comments.Get(ctx, commentID)
	if err != nil {
		respondStoreError(ctx, w, err, "comment")
		return
	}

	if _, ok := requireOwner(ctx, w, comment.OwnerID); !ok {
		return
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil {
		respondStoreError(ctx, w, err, "comment")
		return
	}

	respondData(ctx, w, http.StatusOK, comment, "comment deleted successfully")
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type commentRequest struct {
	Content string `json:"content"`
}

package handlers

import (
	"net/http"

	"github.com/cliptube/backend/internal/logging"
)

// LikeHandler implements like toggles and the liked-videos read view.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Views    ViewEngine
}

// ToggleVideo handles POST /api/v1/likes/video/{videoId}. Toggling twice
// returns to the original state; the store's uniqueness constraint is
// authoritative for concurrent toggles.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
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

	if _, err := h.Videos.Get(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video")
		return
	}

	liked, err := h.Likes.ToggleVideoLike(ctx, identity.UserID, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "like")
		return
	}

	respondData(ctx, w, http.StatusOK, toggleResponse{Liked: liked}, "like toggled")
}

// ToggleComment handles POST /api/v1/likes/comment/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	commentID := r.PathValue("commentId")
	if commentID == "" {
		respondError(ctx, w, http.StatusBadRequest, "comment id is required")
		return
	}

	if _, err := h.Comments.Get(ctx, commentID); err != nil {
		respondStoreError(ctx, w, err, "comment")
		return
	}

	liked, err := h.Likes.ToggleCommentLike(ctx, identity.UserID, commentID)
	if err != nil {
		respondStoreError(ctx, w, err, "like")
		return
	}

	respondData(ctx, w, http.StatusOK, toggleResponse{Liked: liked}, "like toggled")
}

// LikedVideos handles GET /api/v1/likes/videos: every published video the
// caller has liked, as a public projection. Unpublished videos never surface
// even when the like record exists.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	ctx, span := logging.StartSpan(ctx, "views.liked_videos")
	videos, err := h.Views.LikedVideos(ctx, identity.UserID)
	span.End()
	if err != nil {
		respondStoreError(ctx, w, err, "liked videos")
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "liked videos fetched")
}

type toggleResponse struct {
	Liked bool `json:"liked"`
}

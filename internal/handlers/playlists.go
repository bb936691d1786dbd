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

// PlaylistHandler implements playlist endpoints, including the aggregated
// playlist-detail read view.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	Views     ViewEngine
	NowFunc   func() time.Time
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(ctx, w, http.StatusBadRequest, "playlist name is required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     identity.UserID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "playlist")
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "playlist created successfully")
}

// Detail handles GET /api/v1/playlists/{playlistId}: the playlist joined with
// its resolvable videos (owner profile, like count, comment set each) and the
// playlist owner's profile. Dangling references are skipped, never failed.
func (h PlaylistHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlistID := r.PathValue("playlistId")
	if playlistID == "" {
		respondError(ctx, w, http.StatusBadRequest, "playlist id is required")
		return
	}

	ctx, span := logging.StartSpan(ctx, "views.playlist_detail")
	view, err := h.Views.PlaylistDetail(ctx, playlistID)
	span.End()
	if err != nil {
		respondStoreError(ctx, w, err, "playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, view, "playlist fetched successfully")
}

// ListForUser handles GET /api/v1/users/{userId}/playlists.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("userId")
	if userID == "" {
		respondError(ctx, w, http.StatusBadRequest, "user id is required")
		return
	}

	playlists, err := h.Playlists.ListByOwner(ctx, userID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlists")
		return
	}

	respondData(ctx, w, http.StatusOK, playlists, "playlists fetched successfully")
}

// Update handles PATCH /api/v1/playlists/{playlistId}. Only the owner may edit.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" && description == "" {
		respondError(ctx, w, http.StatusBadRequest, "name or description is required")
		return
	}

	if name != "" {
		playlist.Name = name
	}
	if description != "" {
		playlist.Description = description
	}
	playlist.UpdatedAt = h.now()

	if err := h.Playlists.Update(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlists/{playlistId}. Only the owner may delete.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	if err := h.Playlists.Delete(ctx, playlist.ID); err != nil {
		respondStoreError(ctx, w, err, "playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, deletedResponse{IsDeleted: true}, "playlist deleted successfully")
}

// AddVideo handles POST /api/v1/playlists/{playlistId}/videos/{videoId}.
// Membership is a set: adding an already present video is a no-op.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.ownedPlaylist(w, r)
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

	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		respondStoreError(ctx, w, err, "playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, addedResponse{IsAdded: true}, "video added to playlist successfully")
}

// RemoveVideo handles DELETE /api/v1/playlists/{playlistId}/videos/{videoId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, ok := h.ownedPlaylist(w, r)
	if !ok {
		return
	}

	videoID := r.PathValue("videoId")
	if videoID == "" {
		respondError(ctx, w, http.StatusBadRequest, "video id is required")
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		respondStoreError(ctx, w, err, "playlist")
		return
	}

	respondData(ctx, w, http.StatusOK, removedResponse{IsSuccess: true}, "video removed from playlist successfully")
}

// ownedPlaylist loads the playlist from the path and runs the ownership guard.
func (h PlaylistHandler) ownedPlaylist(w http.ResponseWriter, r *http.Request) (models.Playlist, bool) {
	ctx := r.Context()

	playlistID := r.PathValue("playlistId")
	if playlistID == "" {
		respondError(ctx, w, http.StatusBadRequest, "playlist id is required")
		return models.Playlist{}, false
	}

	playlist, err := h.Playlists.Get(ctx, playlistID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist")
		return models.Playlist{}, false
	}

	if _, ok := requireOwner(ctx, w, playlist.OwnerID); !ok {
		logging.FromContext(ctx).Warn("playlist ownership check failed", "playlistId", playlistID)
		return models.Playlist{}, false
	}

	return playlist, true
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type deletedResponse struct {
	IsDeleted bool `json:"isDeleted"`
}

type addedResponse struct {
	IsAdded bool `json:"isAdded"`
}

type removedResponse struct {
	IsSuccess bool `json:"isSuccess"`
}

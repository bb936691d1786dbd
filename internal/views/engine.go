// Package views assembles cross-entity read views by joining independent
// collections (videos, comments, likes, playlists, users) into single
// response shapes. Joins are by foreign-key equality; dangling references are
// skipped rather than failing the whole query.
package views

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cliptube/backend/internal/models"
)

// CommentStore lists comments for a video, newest first.
type CommentStore interface {
	ListByVideo(ctx context.Context, videoID string) ([]models.Comment, error)
}

// LikeStore resolves like counts and per-user video likes.
type LikeStore interface {
	CountByVideos(ctx context.Context, videoIDs []string) (map[string]int, error)
	CountByComments(ctx context.Context, commentIDs []string) (map[string]int, error)
	ListVideoLikesByUser(ctx context.Context, userID string) ([]models.Like, error)
}

// ProfileStore resolves public user projections in bulk.
type ProfileStore interface {
	Profiles(ctx context.Context, ids []string) (map[string]models.Profile, error)
}

// VideoStore resolves video records.
type VideoStore interface {
	Get(ctx context.Context, id string) (models.Video, error)
	GetMany(ctx context.Context, ids []string) (map[string]models.Video, error)
}

// PlaylistStore resolves playlist records with their membership set.
type PlaylistStore interface {
	Get(ctx context.Context, id string) (models.Playlist, error)
}

// Engine builds the derived read views.
type Engine struct {
	users     ProfileStore
	videos    VideoStore
	comments  CommentStore
	likes     LikeStore
	playlists PlaylistStore
}

// NewEngine constructs an aggregation engine over the provided stores.
func NewEngine(users ProfileStore, videos VideoStore, comments CommentStore, likes LikeStore, playlists PlaylistStore) *Engine {
	return &Engine{users: users, videos: videos, comments: comments, likes: likes, playlists: playlists}
}

// CommentView is a comment joined with its like count and owner projection.
type CommentView struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Likes     int            `json:"likes"`
	Owner     models.Profile `json:"owner"`
}

// VideoProjection is the public shape of a video inside read views.
type VideoProjection struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Views       int64   `json:"views"`
	Duration    float64 `json:"duration"`
	VideoFile   string  `json:"videoFile"`
	Thumbnail   string  `json:"thumbnail"`
	IsPublished bool    `json:"isPublished"`
}

func projectVideo(v models.Video) VideoProjection {
	return VideoProjection{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Views:       v.Views,
		Duration:    v.Duration,
		VideoFile:   v.VideoURL,
		Thumbnail:   v.ThumbnailURL,
		IsPublished: v.IsPublished,
	}
}

// PlaylistVideoView is a playlist member joined with owner, like count and
// comment set.
type PlaylistVideoView struct {
	VideoProjection
	Owner    models.Profile   `json:"owner"`
	Likes    int              `json:"likes"`
	Comments []models.Comment `json:"comments"`
}

// PlaylistView is a playlist joined with its resolved videos and owner.
type PlaylistView struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Videos      []PlaylistVideoView `json:"videos"`
	Owner       models.Profile      `json:"owner"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// VideoComments returns the comments for a video sorted newest first (ties
// keep insertion order), each joined to its like count and the owner's public
// projection. Comments whose owner no longer exists are dropped.
func (e *Engine) VideoComments(ctx context.Context, videoID string) ([]CommentView, error) {
	if _, err := e.videos.Get(ctx, videoID); err != nil {
		return nil, err
	}

	comments, err := e.comments.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	// The store already orders by creation time, but the descending-time rule
	// is this view's contract, so it is enforced here as well.
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})

	commentIDs := make([]string, 0, len(comments))
	ownerIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
		ownerIDs = append(ownerIDs, c.OwnerID)
	}

	counts, err := e.likes.CountByComments(ctx, commentIDs)
	if err != nil {
		return nil, fmt.Errorf("count comment likes: %w", err)
	}

	owners, err := e.users.Profiles(ctx, dedupe(ownerIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve comment owners: %w", err)
	}

	result := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		owner, ok := owners[c.OwnerID]
		if !ok {
			continue
		}
		result = append(result, CommentView{
			ID:        c.ID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
			Likes:     counts[c.ID],
			Owner:     owner,
		})
	}

	return result, nil
}

// LikedVideos returns the public projection of every published video the user
// has liked. Comment likes are excluded, and a like on an unpublished or
// missing video never surfaces.
func (e *Engine) LikedVideos(ctx context.Context, userID string) ([]VideoProjection, error) {
	likes, err := e.likes.ListVideoLikesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list video likes: %w", err)
	}

	videoIDs := make([]string, 0, len(likes))
	for _, like := range likes {
		videoIDs = append(videoIDs, like.VideoID)
	}

	videos, err := e.videos.GetMany(ctx, videoIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve liked videos: %w", err)
	}

	result := make([]VideoProjection, 0, len(likes))
	for _, like := range likes {
		video, ok := videos[like.VideoID]
		if !ok || !video.IsPublished {
			continue
		}
		result = append(result, projectVideo(video))
	}

	return result, nil
}

// PlaylistDetail returns the playlist with every resolvable member video
// joined to its owner profile, like count and comment set, plus the
// playlist's own owner profile. Dangling video or owner references are
// skipped so the view always materialises for an existing playlist.
func (e *Engine) PlaylistDetail(ctx context.Context, playlistID string) (PlaylistView, error) {
	playlist, err := e.playlists.Get(ctx, playlistID)
	if err != nil {
		return PlaylistView{}, err
	}

	videos, err := e.videos.GetMany(ctx, playlist.VideoIDs)
	if err != nil {
		return PlaylistView{}, fmt.Errorf("resolve playlist videos: %w", err)
	}

	ownerIDs := []string{playlist.OwnerID}
	videoIDs := make([]string, 0, len(videos))
	for _, v := range videos {
		ownerIDs = append(ownerIDs, v.OwnerID)
		videoIDs = append(videoIDs, v.ID)
	}

	owners, err := e.users.Profiles(ctx, dedupe(ownerIDs))
	if err != nil {
		return PlaylistView{}, fmt.Errorf("resolve owners: %w", err)
	}

	counts, err := e.likes.CountByVideos(ctx, videoIDs)
	if err != nil {
		return PlaylistView{}, fmt.Errorf("count video likes: %w", err)
	}

	members := make([]PlaylistVideoView, 0, len(playlist.VideoIDs))
	for _, id := range playlist.VideoIDs {
		video, ok := videos[id]
		if !ok {
			continue
		}
		owner, ok := owners[video.OwnerID]
		if !ok {
			continue
		}
		comments, err := e.comments.ListByVideo(ctx, video.ID)
		if err != nil {
			return PlaylistView{}, fmt.Errorf("list member comments: %w", err)
		}
		members = append(members, PlaylistVideoView{
			VideoProjection: projectVideo(video),
			Owner:           owner,
			Likes:           counts[video.ID],
			Comments:        comments,
		})
	}

	view := PlaylistView{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		Videos:      members,
		Owner:       owners[playlist.OwnerID],
		CreatedAt:   playlist.CreatedAt,
		UpdatedAt:   playlist.UpdatedAt,
	}

	return view, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

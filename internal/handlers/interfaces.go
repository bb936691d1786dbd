package handlers

import (
	"context"
	"io"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/views"
)

// UserStore captures the persistence operations required by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
}

// SessionManager orchestrates the credential lifecycle for the auth handlers.
type SessionManager interface {
	Login(ctx context.Context, identifier, password string) (models.SessionTokens, models.User, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Logout(ctx context.Context, userID string) error
}

// TokenVerifier validates access tokens presented by clients.
type TokenVerifier interface {
	VerifyAccess(token string) (auth.Claims, error)
}

// VideoStore captures persistence for video workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	Get(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
}

// CommentStore captures persistence for comment workflows.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	Get(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
}

// LikeStore captures the toggle primitives for like workflows.
type LikeStore interface {
	ToggleVideoLike(ctx context.Context, userID, videoID string) (bool, error)
	ToggleCommentLike(ctx context.Context, userID, commentID string) (bool, error)
}

// PlaylistStore captures persistence for playlist workflows.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	Get(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
}

// ViewEngine builds the derived read views served by the read endpoints.
type ViewEngine interface {
	VideoComments(ctx context.Context, videoID string) ([]views.CommentView, error)
	LikedVideos(ctx context.Context, userID string) ([]views.VideoProjection, error)
	PlaylistDetail(ctx context.Context, playlistID string) (views.PlaylistView, error)
}

// BlobStore persists uploaded media assets and returns their public location.
type BlobStore interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// DurationProber resolves the playable duration of a local media file.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

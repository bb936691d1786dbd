package repositories

import (
	"context"

	"github.com/cliptube/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	RotateRefreshToken(ctx context.Context, userID, previous, next string) error
	ClearRefreshToken(ctx context.Context, userID string) error
	Profiles(ctx context.Context, ids []string) (map[string]models.Profile, error)
}

// VideoRepository defines the data access contract for videos. Delete removes
// the video together with its dependent comments, likes and playlist
// references in a single transaction.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	Get(ctx context.Context, id string) (models.Video, error)
	GetMany(ctx context.Context, ids []string) (map[string]models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
}

// CommentRepository defines the data access contract for comments. Delete also
// removes likes referencing the comment.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	Get(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
	ListByVideo(ctx context.Context, videoID string) ([]models.Comment, error)
}

// LikeRepository defines the data access contract for likes. The toggle
// operations rely on the store's unique (user, target) constraint rather than
// a prior existence read, so concurrent toggles resolve consistently.
type LikeRepository interface {
	ToggleVideoLike(ctx context.Context, userID, videoID string) (bool, error)
	ToggleCommentLike(ctx context.Context, userID, commentID string) (bool, error)
	CountByVideos(ctx context.Context, videoIDs []string) (map[string]int, error)
	CountByComments(ctx context.Context, commentIDs []string) (map[string]int, error)
	ListVideoLikesByUser(ctx context.Context, userID string) ([]models.Like, error)
}

// PlaylistRepository defines the data access contract for playlists and their
// video membership set.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	Get(ctx context.Context, id string) (models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
}

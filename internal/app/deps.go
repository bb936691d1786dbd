package app

import (
	"context"
	"log/slog"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/config"
	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/handlers"
	"github.com/cliptube/backend/internal/media"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
	"github.com/cliptube/backend/internal/views"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	likes := repositories.NewPostgresLikeRepository(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)

	issuer := auth.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	sessions := auth.NewSessionManager(users, issuer)
	engine := views.NewEngine(users, videos, comments, likes, playlists)

	deps := handlers.Dependencies{
		Users:     users,
		Sessions:  sessions,
		Verifier:  issuer,
		Videos:    videos,
		Comments:  comments,
		Likes:     likes,
		Playlists: playlists,
		Views:     engine,
		Prober:    media.NewFFProbe(cfg.FFProbePath, cfg.FFProbeTimeout),
	}

	if cfg.ObjectStore.Bucket != "" {
		blobs, err := storage.NewS3Store(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, err
		}
		deps.Blobs = blobs
	} else {
		slog.Warn("object store bucket not configured, media uploads disabled")
	}

	return deps, nil
}

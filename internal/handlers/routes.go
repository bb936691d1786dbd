package handlers

import "net/http"

// Dependencies aggregates collaborators required by the HTTP handlers.
type Dependencies struct {
	Users     UserStore
	Sessions  SessionManager
	Verifier  TokenVerifier
	Videos    VideoStore
	Comments  CommentStore
	Likes     LikeStore
	Playlists PlaylistStore
	Views     ViewEngine
	Blobs     BlobStore
	Prober    DurationProber
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	authH := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Blobs: deps.Blobs}
	videos := VideoHandler{Videos: deps.Videos, Blobs: deps.Blobs, Prober: deps.Prober}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos, Views: deps.Views}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos, Comments: deps.Comments, Views: deps.Views}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos, Views: deps.Views}

	guarded := func(next http.HandlerFunc) http.HandlerFunc {
		return RequireAuth(deps.Verifier, deps.Users, next)
	}

	mux.HandleFunc("GET /healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/register", authH.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authH.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authH.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", guarded(authH.Logout))

	mux.HandleFunc("POST /api/v1/videos", guarded(videos.Publish))
	mux.HandleFunc("GET /api/v1/videos/{videoId}", videos.Get)
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}", guarded(videos.Update))
	mux.HandleFunc("DELETE /api/v1/videos/{videoId}", guarded(videos.Delete))
	mux.HandleFunc("PATCH /api/v1/videos/{videoId}/publish", guarded(videos.TogglePublish))

	mux.HandleFunc("GET /api/v1/videos/{videoId}/comments", comments.ListForVideo)
	mux.HandleFunc("POST /api/v1/videos/{videoId}/comments", guarded(comments.Add))
	mux.HandleFunc("PATCH /api/v1/comments/{commentId}", guarded(comments.Update))
	mux.HandleFunc("DELETE /api/v1/comments/{commentId}", guarded(comments.Delete))

	mux.HandleFunc("POST /api/v1/likes/video/{videoId}", guarded(likes.ToggleVideo))
	mux.HandleFunc("POST /api/v1/likes/comment/{commentId}", guarded(likes.ToggleComment))
	mux.HandleFunc("GET /api/v1/likes/videos", guarded(likes.LikedVideos))

	mux.HandleFunc("POST /api/v1/playlists", guarded(playlists.Create))
	mux.HandleFunc("GET /api/v1/playlists/{playlistId}", playlists.Detail)
	mux.HandleFunc("PATCH /api/v1/playlists/{playlistId}", guarded(playlists.Update))
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistId}", guarded(playlists.Delete))
	mux.HandleFunc("POST /api/v1/playlists/{playlistId}/videos/{videoId}", guarded(playlists.AddVideo))
	mux.HandleFunc("DELETE /api/v1/playlists/{playlistId}/videos/{videoId}", guarded(playlists.RemoveVideo))
	mux.HandleFunc("GET /api/v1/users/{userId}/playlists", playlists.ListForUser)
}

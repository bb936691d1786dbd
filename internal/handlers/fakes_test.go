package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/views"
)

// envelope mirrors the response shape for decoding in tests; Data stays raw so
// each test can unmarshal it into the expected payload type.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func authenticated(r *http.Request, userID, username string) *http.Request {
	ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: userID, Username: username})
	return r.WithContext(ctx)
}

type memUserStore struct {
	users map[string]models.User
	// createErr forces Create to fail, e.g. with ErrConflict.
	createErr error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]models.User)}
}

func (s *memUserStore) Create(_ context.Context, user models.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.users[user.ID] = user
	return nil
}

func (s *memUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return u, nil
}

// fakeSessions scripts the session lifecycle outcomes for handler tests.
type fakeSessions struct {
	loginTokens models.SessionTokens
	loginUser   models.User
	loginErr    error

	refreshTokens models.SessionTokens
	refreshErr    error

	logoutErr     error
	loggedOutUser string
}

func (s *fakeSessions) Login(context.Context, string, string) (models.SessionTokens, models.User, error) {
	return s.loginTokens, s.loginUser, s.loginErr
}

func (s *fakeSessions) Refresh(context.Context, string) (models.SessionTokens, error) {
	return s.refreshTokens, s.refreshErr
}

func (s *fakeSessions) Logout(_ context.Context, userID string) error {
	s.loggedOutUser = userID
	return s.logoutErr
}

type memVideoStore struct {
	videos  map[string]models.Video
	deleted []string
}

func newMemVideoStore() *memVideoStore {
	return &memVideoStore{videos: make(map[string]models.Video)}
}

func (s *memVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *memVideoStore) Get(_ context.Context, id string) (models.Video, error) {
	v, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return v, nil
}

func (s *memVideoStore) Update(_ context.Context, video models.Video) error {
	if _, ok := s.videos[video.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.videos[video.ID] = video
	return nil
}

func (s *memVideoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type memCommentStore struct {
	comments map[string]models.Comment
}

func newMemCommentStore() *memCommentStore {
	return &memCommentStore{comments: make(map[string]models.Comment)}
}

func (s *memCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *memCommentStore) Get(_ context.Context, id string) (models.Comment, error) {
	c, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return c, nil
}

func (s *memCommentStore) Update(_ context.Context, comment models.Comment) error {
	if _, ok := s.comments[comment.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.comments[comment.ID] = comment
	return nil
}

func (s *memCommentStore) Delete(_ context.Context, id string) error {
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

// memLikeStore toggles in memory with set semantics per (user, target).
type memLikeStore struct {
	videoLikes   map[string]bool
	commentLikes map[string]bool
}

func newMemLikeStore() *memLikeStore {
	return &memLikeStore{videoLikes: make(map[string]bool), commentLikes: make(map[string]bool)}
}

func (s *memLikeStore) ToggleVideoLike(_ context.Context, userID, videoID string) (bool, error) {
	key := userID + "/" + videoID
	s.videoLikes[key] = !s.videoLikes[key]
	return s.videoLikes[key], nil
}

func (s *memLikeStore) ToggleCommentLike(_ context.Context, userID, commentID string) (bool, error) {
	key := userID + "/" + commentID
	s.commentLikes[key] = !s.commentLikes[key]
	return s.commentLikes[key], nil
}

type memPlaylistStore struct {
	playlists map[string]models.Playlist
}

func newMemPlaylistStore() *memPlaylistStore {
	return &memPlaylistStore{playlists: make(map[string]models.Playlist)}
}

func (s *memPlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *memPlaylistStore) Get(_ context.Context, id string) (models.Playlist, error) {
	p, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return p, nil
}

func (s *memPlaylistStore) Update(_ context.Context, playlist models.Playlist) error {
	if _, ok := s.playlists[playlist.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *memPlaylistStore) Delete(_ context.Context, id string) error {
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	return nil
}

func (s *memPlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	p, ok := s.playlists[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, id := range p.VideoIDs {
		if id == videoID {
			return nil
		}
	}
	p.VideoIDs = append(p.VideoIDs, videoID)
	s.playlists[playlistID] = p
	return nil
}

func (s *memPlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	p, ok := s.playlists[playlistID]
	if !ok {
		return repositories.ErrNotFound
	}
	kept := p.VideoIDs[:0]
	for _, id := range p.VideoIDs {
		if id != videoID {
			kept = append(kept, id)
		}
	}
	p.VideoIDs = kept
	s.playlists[playlistID] = p
	return nil
}

func (s *memPlaylistStore) ListByOwner(_ context.Context, ownerID string) ([]models.Playlist, error) {
	var out []models.Playlist
	for _, p := range s.playlists {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeViews scripts the read-view outcomes.
type fakeViews struct {
	comments    []views.CommentView
	commentsErr error

	liked    []views.VideoProjection
	likedErr error

	detail    views.PlaylistView
	detailErr error
}

func (v *fakeViews) VideoComments(context.Context, string) ([]views.CommentView, error) {
	return v.comments, v.commentsErr
}

func (v *fakeViews) LikedVideos(context.Context, string) ([]views.VideoProjection, error) {
	return v.liked, v.likedErr
}

func (v *fakeViews) PlaylistDetail(context.Context, string) (views.PlaylistView, error) {
	return v.detail, v.detailErr
}

// memBlobStore stores upload keys and returns deterministic URLs.
type memBlobStore struct {
	uploads []string
	deleted []string
	err     error
}

func (s *memBlobStore) Upload(_ context.Context, name string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.uploads = append(s.uploads, name)
	return fmt.Sprintf("https://cdn.test/%s", name), nil
}

func (s *memBlobStore) Delete(_ context.Context, url string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, url)
	return nil
}

type stubProber struct {
	duration float64
	err      error
}

func (p stubProber) Duration(context.Context, string) (float64, error) {
	return p.duration, p.err
}

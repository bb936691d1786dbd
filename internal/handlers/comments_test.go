package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/views"
)

func TestListForVideoReturnsViews(t *testing.T) {
	viewEngine := &fakeViews{comments: []views.CommentView{
		{ID: "c-1", Content: "newest", Likes: 2, Owner: models.Profile{ID: "user-2", Username: "bob"}},
		{ID: "c-2", Content: "older"},
	}}
	handler := CommentHandler{Views: viewEngine}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/vid-1/comments", nil)
	req.SetPathValue("videoId", "vid-1")
	rec := httptest.NewRecorder()

	handler.ListForVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var got []views.CommentView
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c-1" || got[0].Likes != 2 {
		t.Fatalf("unexpected comment views: %+v", got)
	}
}

func TestListForVideoMissingVideo(t *testing.T) {
	handler := CommentHandler{Views: &fakeViews{commentsErr: repositories.ErrNotFound}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/ghost/comments", nil)
	req.SetPathValue("videoId", "ghost")
	rec := httptest.NewRecorder()

	handler.ListForVideo(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestAddComment(t *testing.T) {
	videos := newMemVideoStore()
	videos.videos["vid-1"] = models.Video{ID: "vid-1", OwnerID: "user-2"}
	comments := newMemCommentStore()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	handler := CommentHandler{Comments: comments, Videos: videos, NowFunc: func() time.Time { return now }}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/vid-1/comments",
		strings.NewReader(`{"content":"  nice clip  "}`))
	req.SetPathValue("videoId", "vid-1")
	rec := httptest.NewRecorder()

	handler.Add(rec, authenticated(req, "user-1", "alice"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	if len(comments.comments) != 1 {
		t.Fatalf("expected 1 stored comment, got %d", len(comments.comments))
	}
	for _, c := range comments.comments {
		if c.OwnerID != "user-1" || c.VideoID != "vid-1" {
			t.Fatalf("unexpected ownership: %+v", c)
		}
		if c.Content != "nice clip" {
			t.Fatalf("expected trimmed content, got %q", c.Content)
		}
		if !c.CreatedAt.Equal(now) {
			t.Fatalf("expected injected timestamp, got %v", c.CreatedAt)
		}
	}
}

func TestAddCommentFailures(t *testing.T) {
	videos := newMemVideoStore()
	videos.videos["vid-1"] = models.Video{ID: "vid-1"}

	t.Run("missing video", func(t *testing.T) {
		handler := CommentHandler{Comments: newMemCommentStore(), Videos: videos}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/ghost/comments",
			strings.NewReader(`{"content":"hi"}`))
		req.SetPathValue("videoId", "ghost")
		rec := httptest.NewRecorder()

		handler.Add(rec, authenticated(req, "user-1", "alice"))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 got %d", rec.Code)
		}
	})

	t.Run("blank content", func(t *testing.T) {
		handler := CommentHandler{Comments: newMemCommentStore(), Videos: videos}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/vid-1/comments",
			strings.NewReader(`{"content":"   "}`))
		req.SetPathValue("videoId", "vid-1")
		rec := httptest.NewRecorder()

		handler.Add(rec, authenticated(req, "user-1", "alice"))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rec.Code)
		}
	})

	t.Run("no identity", func(t *testing.T) {
		handler := CommentHandler{Comments: newMemCommentStore(), Videos: videos}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/videos/vid-1/comments",
			strings.NewReader(`{"content":"hi"}`))
		req.SetPathValue("videoId", "vid-1")
		rec := httptest.NewRecorder()

		handler.Add(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 got %d", rec.Code)
		}
	})
}

func TestUpdateCommentOwnership(t *testing.T) {
	comments := newMemCommentStore()
	comments.comments["c-1"] = models.Comment{ID: "c-1", VideoID: "vid-1", OwnerID: "user-1", Content: "original"}

	handler := CommentHandler{Comments: comments}

	t.Run("owner may edit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/comments/c-1",
			strings.NewReader(`{"content":"edited"}`))
		req.SetPathValue("commentId", "c-1")
		rec := httptest.NewRecorder()

		handler.Update(rec, authenticated(req, "user-1", "alice"))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
		}
		if comments.comments["c-1"].Content != "edited" {
			t.Fatalf("comment was not updated: %+v", comments.comments["c-1"])
		}
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/comments/c-1",
			strings.NewReader(`{"content":"hijacked"}`))
		req.SetPathValue("commentId", "c-1")
		rec := httptest.NewRecorder()

		handler.Update(rec, authenticated(req, "user-2", "mallory"))

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 got %d", rec.Code)
		}
		if comments.comments["c-1"].Content == "hijacked" {
			t.Fatal("non-owner edit must not persist")
		}
	})

	t.Run("missing comment", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/comments/ghost",
			strings.NewReader(`{"content":"hi"}`))
		req.SetPathValue("commentId", "ghost")
		rec := httptest.NewRecorder()

		handler.Update(rec, authenticated(req, "user-1", "alice"))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 got %d", rec.Code)
		}
	})
}

func TestDeleteCommentOwnership(t *testing.T) {
	comments := newMemCommentStore()
	comments.comments["c-1"] = models.Comment{ID: "c-1", OwnerID: "user-1"}
	handler := CommentHandler{Comments: comments}

	t.Run("non-owner is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/comments/c-1", nil)
		req.SetPathValue("commentId", "c-1")
		rec := httptest.NewRecorder()

		handler.Delete(rec, authenticated(req, "user-2", "mallory"))

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403 got %d", rec.Code)
		}
		if _, ok := comments.comments["c-1"]; !ok {
			t.Fatal("comment must survive a forbidden delete")
		}
	})

	t.Run("owner may delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/comments/c-1", nil)
		req.SetPathValue("commentId", "c-1")
		rec := httptest.NewRecorder()

		handler.Delete(rec, authenticated(req, "user-1", "alice"))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
		}
		if _, ok := comments.comments["c-1"]; ok {
			t.Fatal("comment was not deleted")
		}
	})
}

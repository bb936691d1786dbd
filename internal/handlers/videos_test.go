package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cliptube/backend/internal/models"
)

func publishRequestBody(t *testing.T, title, description string, withVideo, withThumb bool) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if title != "" {
		writer.WriteField("title", title)
	}
	if description != "" {
		writer.WriteField("description", description)
	}
	if withVideo {
		part, err := writer.CreateFormFile("videoFile", "clip.mp4")
		if err != nil {
			t.Fatalf("create video part: %v", err)
		}
		part.Write([]byte("mp4-bytes"))
	}
	if withThumb {
		part, err := writer.CreateFormFile("thumbnail", "thumb.png")
		if err != nil {
			t.Fatalf("create thumbnail part: %v", err)
		}
		part.Write([]byte("png-bytes"))
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestPublishVideo(t *testing.T) {
	videos := newMemVideoStore()
	blobs := &memBlobStore{}
	handler := VideoHandler{Videos: videos, Blobs: blobs, Prober: stubProber{duration: 42.5}}

	body, contentType := publishRequestBody(t, "My Clip", "a description", true, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Publish(rec, authenticated(req, "user-1", "alice"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var got models.Video
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if got.OwnerID != "user-1" || got.Title != "My Clip" {
		t.Fatalf("unexpected video: %+v", got)
	}
	if got.Duration != 42.5 {
		t.Fatalf("expected probed duration 42.5, got %v", got.Duration)
	}
	if !got.IsPublished {
		t.Fatal("new videos publish immediately")
	}

	if len(blobs.uploads) != 2 {
		t.Fatalf("expected video and thumbnail uploads, got %v", blobs.uploads)
	}
	if !strings.HasPrefix(blobs.uploads[0], "videos/") || !strings.HasPrefix(blobs.uploads[1], "thumbnails/") {
		t.Fatalf("unexpected upload keys: %v", blobs.uploads)
	}

	if _, ok := videos.videos[got.ID]; !ok {
		t.Fatal("video was not persisted")
	}
}

func TestPublishVideoToleratesProbeFailure(t *testing.T) {
	videos := newMemVideoStore()
	handler := VideoHandler{
		Videos: videos,
		Blobs:  &memBlobStore{},
		Prober: stubProber{err: errors.New("ffprobe exploded")},
	}

	body, contentType := publishRequestBody(t, "My Clip", "a description", true, true)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.Publish(rec, authenticated(req, "user-1", "alice"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var got models.Video
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if got.Duration != 0 {
		t.Fatalf("expected zero duration on probe failure, got %v", got.Duration)
	}
}

func TestPublishVideoValidation(t *testing.T) {
	cases := []struct {
		name        string
		title       string
		description string
		withVideo   bool
		withThumb   bool
	}{
		{"missing title", "", "desc", true, true},
		{"missing description", "title", "", true, true},
		{"missing video file", "title", "desc", false, true},
		{"missing thumbnail", "title", "desc", true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := VideoHandler{Videos: newMemVideoStore(), Blobs: &memBlobStore{}, Prober: stubProber{}}

			body, contentType := publishRequestBody(t, tc.title, tc.description, tc.withVideo, tc.withThumb)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			handler.Publish(rec, authenticated(req, "user-1", "alice"))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", rec.Code)
			}
		})
	}
}

func TestGetVideo(t *testing.T) {
	videos := newMemVideoStore()
	videos.videos["vid-1"] = models.Video{ID: "vid-1", Title: "clip"}
	handler := VideoHandler{Videos: videos}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/vid-1", nil)
	req.SetPathValue("videoId", "vid-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/videos/ghost", nil)
	req.SetPathValue("videoId", "ghost")
	rec = httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestUpdateVideoSwapsThumbnail(t *testing.T) {
	videos := newMemVideoStore()
	videos.videos["vid-1"] = models.Video{
		ID:           "vid-1",
		OwnerID:      "user-1",
		Title:        "old title",
		Description:  "old description",
		ThumbnailURL: "https://cdn.test/thumbnails/old.png",
	}
	blobs := &memBlobStore{}
	handler := VideoHandler{Videos: videos, Blobs: blobs}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("title", "new title")
	writer.WriteField("description", "new description")
	part, err := writer.CreateFormFile("thumbnail", "fresh.png")
	if err != nil {
		t.Fatalf("create thumbnail part: %v", err)
	}
	part.Write([]byte("png-bytes"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/vid-1", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetPathValue("videoId", "vid-1")
	rec := httptest.NewRecorder()

	handler.Update(rec, authenticated(req, "user-1", "alice"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	updated := videos.videos["vid-1"]
	if updated.Title != "new title" || updated.Description != "new description" {
		t.Fatalf("video was not updated: %+v", updated)
	}
	if updated.ThumbnailURL == "https://cdn.test/thumbnails/old.png" {
		t.Fatal("thumbnail was not replaced")
	}
	if len(blobs.deleted) != 1 || blobs.deleted[0] != "https://cdn.test/thumbnails/old.png" {
		t.Fatalf("expected old thumbnail delete, got %v", blobs.deleted)
	}
}

func TestUpdateVideoOwnership(t *testing.T) {
	videos := newMemVideoStore()
	videos.videos["vid-1"] = models.Video{ID: "vid-1", OwnerID: "user-1", Title: "original"}
	handler := VideoHandler{Videos: videos, Blobs: &memBlobStore{}}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("title", "stolen")
	writer.WriteField("description", "stolen")
	writer.Close()

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/vid-1", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetPathValue("videoId", "vid-1")
	rec := httptest.NewRecorder()

	handler.Update(rec, authenticated(req, "user-2", "mallory"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
	if videos.videos["vid-1"].Title != "original" {
		t.Fatal("forbidden update must not persist")
	}
}

func TestDeleteVideoOwnership(t *testing.T) {
	videos := newMemVideoStore()
	videos.videos["vid-1"] = models.Video{ID: "vid-1", OwnerID: "user-1"}
	handler := VideoHandler{Videos: videos}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos/vid-1", nil)
	req.SetPathValue("videoId", "vid-1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, authenticated(req, "user-2", "mallory"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/videos/vid-1", nil)
	req.SetPathValue("videoId", "vid-1")
	rec = httptest.NewRecorder()

	handler.Delete(rec, authenticated(req, "user-1", "alice"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(videos.deleted) != 1 || videos.deleted[0] != "vid-1" {
		t.Fatalf("expected vid-1 delete, got %v", videos.deleted)
	}
}

func TestTogglePublish(t *testing.T) {
	videos := newMemVideoStore()
	videos.videos["vid-1"] = models.Video{ID: "vid-1", OwnerID: "user-1", IsPublished: true}
	handler := VideoHandler{Videos: videos}

	toggle := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/vid-1/publish", nil)
		req.SetPathValue("videoId", "vid-1")
		rec := httptest.NewRecorder()
		handler.TogglePublish(rec, authenticated(req, userID, "x"))
		return rec
	}

	if rec := toggle("user-2"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", rec.Code)
	}
	if !videos.videos["vid-1"].IsPublished {
		t.Fatal("forbidden toggle must not flip the flag")
	}

	if rec := toggle("user-1"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if videos.videos["vid-1"].IsPublished {
		t.Fatal("expected unpublished after toggle")
	}

	if rec := toggle("user-1"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !videos.videos["vid-1"].IsPublished {
		t.Fatal("expected published after second toggle")
	}
}

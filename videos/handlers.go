package videos

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/auth"
	"github.com/user/vidtube-go/media"
	"github.com/user/vidtube-go/models"
	"github.com/user/vidtube-go/pagination"
	"github.com/user/vidtube-go/response"
	"github.com/user/vidtube-go/upload"
)

// Service is what the handlers need from VideoService.
type Service interface {
	List(ctx context.Context, q ListQuery, p pagination.Params) (*pagination.Page[models.VideoCard], error)
	Create(ctx context.Context, v NewVideo) (*Video, error)
	Get(ctx context.Context, videoID uuid.UUID) (*Video, error)
	View(ctx context.Context, videoID uuid.UUID, viewer *uuid.UUID) (*VideoDetail, error)
	Update(ctx context.Context, videoID uuid.UUID, u VideoUpdate) (*Video, error)
	Delete(ctx context.Context, videoID uuid.UUID) error
	TogglePublish(ctx context.Context, videoID uuid.UUID) (*Video, error)
}

// MediaStore uploads scratch files to the media host and deletes stored ones.
type MediaStore interface {
	Upload(ctx context.Context, localPath, folder string) (string, error)
	Delete(ctx context.Context, url string)
}

// VideoHandlers provides HTTP handlers for videos.
type VideoHandlers struct {
	service Service
	media   MediaStore
}

// NewVideoHandlers creates new VideoHandlers.
func NewVideoHandlers(service Service, media MediaStore) *VideoHandlers {
	return &VideoHandlers{service: service, media: media}
}

// HandleListVideos godoc
// @Summary List published videos
// @Tags Videos
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param query query string false "Matches title or description"
// @Param sortBy query string false "createdAt, views, duration or title" default(createdAt)
// @Param sortType query string false "asc or desc" default(desc)
// @Param userId query string false "Only videos of this owner"
// @Success 200 {object} response.Envelope{data=pagination.Page[models.VideoCard]}
// @Failure 400 {object} apperror.ErrorResponse
// @Router /videos [get]
func (h *VideoHandlers) HandleListVideos() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		qs := r.URL.Query()
		q := ListQuery{
			Query:    qs.Get("query"),
			SortBy:   qs.Get("sortBy"),
			SortType: qs.Get("sortType"),
		}
		if raw := qs.Get("userId"); raw != "" {
			ownerID, err := uuid.Parse(raw)
			if err != nil {
				return apperror.NewBadRequestError("Invalid userId", err)
			}
			q.OwnerID = &ownerID
		}

		page, err := h.service.List(r.Context(), q, pagination.FromRequest(r))
		if err != nil {
			return err
		}
		response.OK(w, page, "Videos fetched successfully")
		return nil
	})
}

// HandlePublishVideo godoc
// @Summary Publish a video
// @Tags Videos
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param duration formData number false "Duration in seconds"
// @Param videoFile formData file true "Video file"
// @Param thumbnail formData file true "Thumbnail image"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=videos.Video}
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 502 {object} apperror.ErrorResponse
// @Router /videos [post]
func (h *VideoHandlers) HandlePublishVideo() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()
		id, err := auth.RequireIdentity(ctx)
		if err != nil {
			return err
		}

		req := PublishRequest{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
		}
		if err := response.Validate(&req); err != nil {
			return err
		}
		duration, err := parseDuration(r.FormValue("duration"))
		if err != nil {
			return err
		}

		videoPath := upload.Path(ctx, "videoFile")
		thumbnailPath := upload.Path(ctx, "thumbnail")
		if videoPath == "" || thumbnailPath == "" {
			return apperror.NewBadRequestError("Video file and thumbnail are required", nil)
		}

		videoURL, err := h.media.Upload(ctx, videoPath, media.FolderVideos)
		if err != nil {
			return err
		}
		thumbnailURL, err := h.media.Upload(ctx, thumbnailPath, media.FolderThumbnails)
		if err != nil {
			h.media.Delete(ctx, videoURL)
			return err
		}

		video, err := h.service.Create(ctx, NewVideo{
			Title:       req.Title,
			Description: req.Description,
			Duration:    duration,
			VideoFile:   videoURL,
			Thumbnail:   thumbnailURL,
			OwnerID:     id.UserID,
		})
		if err != nil {
			h.media.Delete(ctx, videoURL)
			h.media.Delete(ctx, thumbnailURL)
			return err
		}

		response.Created(w, video, "Video published successfully")
		return nil
	})
}

// HandleGetVideo godoc
// @Summary Watch a video
// @Description Counts a view and returns the video. Unpublished videos are only visible to their owner.
// @Tags Videos
// @Produce json
// @Param videoId path string true "Video ID"
// @Success 200 {object} response.Envelope{data=videos.VideoDetail}
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /videos/{videoId} [get]
func (h *VideoHandlers) HandleGetVideo() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		videoID, err := response.PathID(r, "videoId")
		if err != nil {
			return err
		}

		var viewer *uuid.UUID
		if id, ok := auth.IdentityFromContext(r.Context()); ok {
			viewer = &id.UserID
		}

		video, err := h.service.View(r.Context(), videoID, viewer)
		if err != nil {
			return err
		}
		response.OK(w, video, "Video fetched successfully")
		return nil
	})
}

// HandleUpdateVideo godoc
// @Summary Update a video
// @Description Changes title, description and optionally the thumbnail. Owner only.
// @Tags Videos
// @Accept multipart/form-data
// @Produce json
// @Param videoId path string true "Video ID"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param thumbnail formData file false "Thumbnail image"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=videos.Video}
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /videos/{videoId} [patch]
func (h *VideoHandlers) HandleUpdateVideo() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()
		video, err := h.ownedVideo(r, "You are not authorized to update this video")
		if err != nil {
			return err
		}

		u := VideoUpdate{
			Title:       strings.TrimSpace(r.FormValue("title")),
			Description: strings.TrimSpace(r.FormValue("description")),
		}
		thumbnailPath := upload.Path(ctx, "thumbnail")
		if u.Title == "" && u.Description == "" && thumbnailPath == "" {
			return apperror.NewBadRequestError("Nothing to update: provide a title, description or thumbnail", nil)
		}

		if thumbnailPath != "" {
			if u.Thumbnail, err = h.media.Upload(ctx, thumbnailPath, media.FolderThumbnails); err != nil {
				return err
			}
		}

		updated, err := h.service.Update(ctx, video.ID, u)
		if err != nil {
			h.media.Delete(ctx, u.Thumbnail)
			return err
		}
		if u.Thumbnail != "" {
			h.media.Delete(ctx, video.Thumbnail)
		}

		response.OK(w, updated, "Video updated successfully")
		return nil
	})
}

// HandleDeleteVideo godoc
// @Summary Delete a video
// @Tags Videos
// @Produce json
// @Param videoId path string true "Video ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /videos/{videoId} [delete]
func (h *VideoHandlers) HandleDeleteVideo() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()
		video, err := h.ownedVideo(r, "You are not authorized to delete this video")
		if err != nil {
			return err
		}

		h.media.Delete(ctx, video.VideoFile)
		h.media.Delete(ctx, video.Thumbnail)

		if err := h.service.Delete(ctx, video.ID); err != nil {
			return err
		}
		response.OK(w, nil, "Video deleted successfully")
		return nil
	})
}

// HandleTogglePublish godoc
// @Summary Publish or unpublish a video
// @Tags Videos
// @Produce json
// @Param videoId path string true "Video ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=videos.Video}
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /videos/toggle/publish/{videoId} [patch]
func (h *VideoHandlers) HandleTogglePublish() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		video, err := h.ownedVideo(r, "You are not authorized to change this video")
		if err != nil {
			return err
		}

		updated, err := h.service.TogglePublish(r.Context(), video.ID)
		if err != nil {
			return err
		}

		state := "unpublished"
		if updated.IsPublished {
			state = "published"
		}
		response.OK(w, updated, "Video has been "+state+" successfully")
		return nil
	})
}

// ownedVideo loads the video named by the path and checks that the caller owns it.
func (h *VideoHandlers) ownedVideo(r *http.Request, forbidden string) (*Video, error) {
	id, err := auth.RequireIdentity(r.Context())
	if err != nil {
		return nil, err
	}
	videoID, err := response.PathID(r, "videoId")
	if err != nil {
		return nil, err
	}
	video, err := h.service.Get(r.Context(), videoID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(video.OwnerID, id.UserID, forbidden); err != nil {
		return nil, err
	}
	return video, nil
}

func parseDuration(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil || d < 0 {
		return 0, apperror.NewBadRequestError("Invalid duration", err)
	}
	return d, nil
}

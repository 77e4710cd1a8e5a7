package playlists

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/vidtube-go/apperror"
	"github.com/user/vidtube-go/auth"
	"github.com/user/vidtube-go/response"
)

// Service is what the handlers need from PlaylistService.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, req CreatePlaylistRequest) (*Playlist, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Playlist, error)
	Get(ctx context.Context, playlistID uuid.UUID) (*Playlist, error)
	Detail(ctx context.Context, playlistID, viewerID uuid.UUID) (*PlaylistDetail, error)
	Update(ctx context.Context, playlistID uuid.UUID, req UpdatePlaylistRequest) (*Playlist, error)
	Delete(ctx context.Context, playlistID uuid.UUID) error
	AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error
	RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error
}

// PlaylistHandlers provides HTTP handlers for playlists.
type PlaylistHandlers struct {
	service Service
}

// NewPlaylistHandlers creates new PlaylistHandlers.
func NewPlaylistHandlers(service Service) *PlaylistHandlers {
	return &PlaylistHandlers{service: service}
}

// RegisterRoutes registers the playlist routes. Every route expects an authenticated caller.
func (h *PlaylistHandlers) RegisterRoutes(router chi.Router) {
	router.Post("/", h.HandleCreatePlaylist())
	router.Get("/user/{userId}", h.HandleGetUserPlaylists())
	router.Get("/{playlistId}", h.HandleGetPlaylist())
	router.Patch("/{playlistId}", h.HandleUpdatePlaylist())
	router.Delete("/{playlistId}", h.HandleDeletePlaylist())
	router.Patch("/add/{videoId}/{playlistId}", h.HandleAddVideo())
	router.Patch("/remove/{videoId}/{playlistId}", h.HandleRemoveVideo())
}

// HandleCreatePlaylist godoc
// @Summary Create a playlist
// @Tags Playlists
// @Accept json
// @Produce json
// @Param body body playlists.CreatePlaylistRequest true "Name and description"
// @Security BearerAuth
// @Success 201 {object} response.Envelope{data=playlists.Playlist}
// @Failure 400 {object} apperror.ErrorResponse
// @Router /playlist [post]
func (h *PlaylistHandlers) HandleCreatePlaylist() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		var req CreatePlaylistRequest
		if err := response.DecodeJSON(r, &req); err != nil {
			return err
		}
		playlist, err := h.service.Create(r.Context(), id.UserID, req)
		if err != nil {
			return err
		}
		response.Created(w, playlist, "Playlist created successfully")
		return nil
	})
}

// HandleGetUserPlaylists godoc
// @Summary Playlists of a user
// @Tags Playlists
// @Produce json
// @Param userId path string true "User ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=[]playlists.Playlist}
// @Failure 400 {object} apperror.ErrorResponse
// @Router /playlist/user/{userId} [get]
func (h *PlaylistHandlers) HandleGetUserPlaylists() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		userID, err := response.PathID(r, "userId")
		if err != nil {
			return err
		}
		playlists, err := h.service.ListByOwner(r.Context(), userID)
		if err != nil {
			return err
		}
		response.OK(w, playlists, "Playlists fetched successfully")
		return nil
	})
}

// HandleGetPlaylist godoc
// @Summary Playlist with its videos
// @Tags Playlists
// @Produce json
// @Param playlistId path string true "Playlist ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=playlists.PlaylistDetail}
// @Failure 404 {object} apperror.ErrorResponse
// @Router /playlist/{playlistId} [get]
func (h *PlaylistHandlers) HandleGetPlaylist() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			return err
		}
		playlistID, err := response.PathID(r, "playlistId")
		if err != nil {
			return err
		}
		detail, err := h.service.Detail(r.Context(), playlistID, id.UserID)
		if err != nil {
			return err
		}
		response.OK(w, detail, "Playlist fetched successfully")
		return nil
	})
}

// HandleUpdatePlaylist godoc
// @Summary Rename or redescribe a playlist
// @Tags Playlists
// @Accept json
// @Produce json
// @Param playlistId path string true "Playlist ID"
// @Param body body playlists.UpdatePlaylistRequest true "New name and/or description"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=playlists.Playlist}
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /playlist/{playlistId} [patch]
func (h *PlaylistHandlers) HandleUpdatePlaylist() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		var req UpdatePlaylistRequest
		if err := response.DecodeJSON(r, &req); err != nil {
			return err
		}
		if strings.TrimSpace(req.Name) == "" && strings.TrimSpace(req.Description) == "" {
			return apperror.NewBadRequestError("No valid fields provided for update", nil)
		}

		playlist, err := h.ownedPlaylist(r, "You are not authorized to update this playlist")
		if err != nil {
			return err
		}
		updated, err := h.service.Update(r.Context(), playlist.ID, req)
		if err != nil {
			return err
		}
		response.OK(w, updated, "Playlist updated successfully")
		return nil
	})
}

// HandleDeletePlaylist godoc
// @Summary Delete a playlist
// @Tags Playlists
// @Produce json
// @Param playlistId path string true "Playlist ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /playlist/{playlistId} [delete]
func (h *PlaylistHandlers) HandleDeletePlaylist() http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		playlist, err := h.ownedPlaylist(r, "You are not authorized to delete this playlist")
		if err != nil {
			return err
		}
		if err := h.service.Delete(r.Context(), playlist.ID); err != nil {
			return err
		}
		response.OK(w, nil, "Playlist deleted successfully")
		return nil
	})
}

// HandleAddVideo godoc
// @Summary Add a video to a playlist
// @Description Adding a video that is already in the playlist changes nothing.
// @Tags Playlists
// @Produce json
// @Param videoId path string true "Video ID"
// @Param playlistId path string true "Playlist ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=playlists.PlaylistDetail}
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /playlist/add/{videoId}/{playlistId} [patch]
func (h *PlaylistHandlers) HandleAddVideo() http.HandlerFunc {
	return h.changeVideos(Service.AddVideo, "Video added to playlist")
}

// HandleRemoveVideo godoc
// @Summary Remove a video from a playlist
// @Tags Playlists
// @Produce json
// @Param videoId path string true "Video ID"
// @Param playlistId path string true "Playlist ID"
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=playlists.PlaylistDetail}
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /playlist/remove/{videoId}/{playlistId} [patch]
func (h *PlaylistHandlers) HandleRemoveVideo() http.HandlerFunc {
	return h.changeVideos(Service.RemoveVideo, "Video removed from playlist")
}

func (h *PlaylistHandlers) changeVideos(change func(Service, context.Context, uuid.UUID, uuid.UUID) error, message string) http.HandlerFunc {
	return response.Handle(func(w http.ResponseWriter, r *http.Request) error {
		videoID, err := response.PathID(r, "videoId")
		if err != nil {
			return err
		}
		playlist, err := h.ownedPlaylist(r, "You are not authorized to modify this playlist")
		if err != nil {
			return err
		}

		if err := change(h.service, r.Context(), playlist.ID, videoID); err != nil {
			return err
		}
		detail, err := h.service.Detail(r.Context(), playlist.ID, playlist.OwnerID)
		if err != nil {
			return err
		}
		response.OK(w, detail, message)
		return nil
	})
}

func (h *PlaylistHandlers) ownedPlaylist(r *http.Request, forbidden string) (*Playlist, error) {
	id, err := auth.RequireIdentity(r.Context())
	if err != nil {
		return nil, err
	}
	playlistID, err := response.PathID(r, "playlistId")
	if err != nil {
		return nil, err
	}
	playlist, err := h.service.Get(r.Context(), playlistID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwner(playlist.OwnerID, id.UserID, forbidden); err != nil {
		return nil, err
	}
	return playlist, nil
}

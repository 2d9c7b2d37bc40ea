package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/smartexpenses/whiteboard/models"
	"github.com/smartexpenses/whiteboard/service"
)

type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{Service: svc}
}

// HandleBoards serves POST /boards and GET /boards.
func (h *Handler) HandleBoards(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req createBoardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		board, err := h.Service.CreateBoard(r.Context(), user, service.CreateBoardParams{
			Name:        req.Name,
			Description: req.Description,
			IsPublic:    req.IsPublic,
		})
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.sendResponse(w, board)

	case http.MethodGet:
		boards, err := h.Service.ListBoards(r.Context(), user)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if boards == nil {
			boards = []models.Board{}
		}
		h.sendResponse(w, boards)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

// HandlePublicBoards serves GET /boards/public.
func (h *Handler) HandlePublicBoards(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	boards, err := h.Service.ListPublicBoards(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if boards == nil {
		boards = []models.Board{}
	}
	h.sendResponse(w, boards)
}

type updateBoardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"isPublic"`
}

// HandleBoard serves GET, PUT and DELETE on /boards/{boardId}.
func (h *Handler) HandleBoard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	boardId := r.PathValue("boardId")

	switch r.Method {
	case http.MethodGet:
		board, err := h.Service.GetBoard(r.Context(), user, boardId)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.sendResponse(w, board)

	case http.MethodPut:
		var req updateBoardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		board, err := h.Service.UpdateBoard(r.Context(), user, boardId, service.UpdateBoardParams{
			Name:        req.Name,
			Description: req.Description,
			IsPublic:    req.IsPublic,
		})
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.sendResponse(w, board)

	case http.MethodDelete:
		if err := h.Service.DeleteBoard(r.Context(), user, boardId); err != nil {
			h.writeError(w, err)
			return
		}
		h.sendResponse(w, successResponse{Success: true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleBoardShapes serves GET /boards/{boardId}/shapes.
func (h *Handler) HandleBoardShapes(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	shapes, err := h.Service.GetBoardShapes(r.Context(), user, r.PathValue("boardId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if shapes == nil {
		shapes = []models.Shape{}
	}
	h.sendResponse(w, shapes)
}

// HandleActiveUsers serves GET /boards/{boardId}/active-users.
func (h *Handler) HandleActiveUsers(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	activeUsers, err := h.Service.GetActiveUsers(r.Context(), user, r.PathValue("boardId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if activeUsers == nil {
		activeUsers = map[string]string{}
	}
	h.sendResponse(w, activeUsers)
}

type addCollaboratorRequest struct {
	UserId string      `json:"userId"`
	Role   models.Role `json:"role"`
}

// HandleCollaborators serves GET and POST on /boards/{boardId}/collaborators.
func (h *Handler) HandleCollaborators(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	boardId := r.PathValue("boardId")

	switch r.Method {
	case http.MethodGet:
		collabs, err := h.Service.ListCollaborators(r.Context(), user, boardId)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if collabs == nil {
			collabs = []models.Collaborator{}
		}
		h.sendResponse(w, collabs)

	case http.MethodPost:
		var req addCollaboratorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		collab, err := h.Service.AddCollaborator(r.Context(), user, boardId, req.UserId, req.Role)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.sendResponse(w, collab)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type updateCollaboratorRequest struct {
	Role models.Role `json:"role"`
}

// HandleCollaborator serves PUT and DELETE on
// /boards/{boardId}/collaborators/{userId}.
func (h *Handler) HandleCollaborator(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	boardId := r.PathValue("boardId")
	collabUserId := r.PathValue("userId")

	switch r.Method {
	case http.MethodPut:
		var req updateCollaboratorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if err := h.Service.UpdateCollaboratorRole(r.Context(), user, boardId, collabUserId, req.Role); err != nil {
			h.writeError(w, err)
			return
		}
		h.sendResponse(w, successResponse{Success: true})

	case http.MethodDelete:
		if err := h.Service.RemoveCollaborator(r.Context(), user, boardId, collabUserId); err != nil {
			h.writeError(w, err)
			return
		}
		h.sendResponse(w, successResponse{Success: true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, err := h.Service.AuthenticateToken(h.getTokenFromAuthHeader(r))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return models.User{}, false
	}
	return user, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrUnauthorized):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrUnauthenticated):
		http.Error(w, "invalid token", http.StatusUnauthorized)
	default:
		log.Printf("Request failed: %v", err)
		http.Error(w, "operation failed", http.StatusInternalServerError)
	}
}

func (h *Handler) sendResponse(w http.ResponseWriter, resp any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handler) getTokenFromAuthHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return strings.TrimPrefix(authHeader, prefix)
}

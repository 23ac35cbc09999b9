package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
	"agrimarket/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	user, err := h.userService.CreateUser(req.Username, domain.Role(req.Role))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, appErr := parseUUID(mux.Vars(r)["user_id"], "user_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

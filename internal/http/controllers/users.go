package controllers

import (
	"net/http"

	"github.com/dropDatabas3/bookjohn/internal/domain/repository"
	api "github.com/dropDatabas3/bookjohn/internal/http"
	"github.com/dropDatabas3/bookjohn/internal/http/dto"
	"github.com/dropDatabas3/bookjohn/internal/observability/logger"
	"github.com/dropDatabas3/bookjohn/internal/service"
)

// UsersController maneja el directorio de usuarios.
type UsersController struct {
	users *service.UserService
}

// NewUsersController crea el controller.
func NewUsersController(users *service.UserService) *UsersController {
	return &UsersController{users: users}
}

// Create maneja POST /api/users
func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !api.ReadJSON(w, r, &req) {
		return
	}

	user, err := c.users.Register(r.Context(), service.RegisterUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}

	api.WriteSuccess(w, http.StatusCreated, "User created successfully", dto.ToUserResponse(user))
}

// List maneja GET /api/users
func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	users, err := c.users.List(r.Context())
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "Users retrieved successfully", dto.ToUserResponses(users))
}

// Get maneja GET /api/users/{id}
func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := c.users.Get(r.Context(), id)
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "User retrieved successfully", dto.ToUserResponse(user))
}

// Update maneja PUT /api/users/{id}
func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if !api.ReadJSON(w, r, &req) {
		return
	}

	user, err := c.users.Update(r.Context(), id, repository.UpdateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Active:      req.Active,
	})
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "User updated successfully", dto.ToUserResponse(user))
}

// Delete maneja DELETE /api/users/{id}
func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := c.users.Delete(r.Context(), id)
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	if !deleted {
		api.WriteError(w, http.StatusNotFound, "user not found")
		return
	}
	logger.From(r.Context()).Info("user deleted", logger.UserID(id))
	api.WriteSuccess(w, http.StatusOK, "User deleted successfully", nil)
}

// Stats maneja GET /api/users/stats
func (c *UsersController) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := c.users.Count(r.Context())
	if err != nil {
		api.WriteServiceError(w, err)
		return
	}
	api.WriteSuccess(w, http.StatusOK, "User stats retrieved successfully", map[string]int64{"totalUsers": total})
}

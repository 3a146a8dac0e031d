package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/scg/portal/internal/application/identity"
	"github.com/scg/portal/internal/interfaces/http/dto"
)

// UserService manages the users of a customer
type UserService interface {
	List(ctx context.Context, customerID uuid.UUID, filter identityapp.UserListFilter) ([]identityapp.UserResponse, int64, error)
	Get(ctx context.Context, customerID, userID uuid.UUID) (*identityapp.UserResponse, error)
	Create(ctx context.Context, customerID uuid.UUID, req identityapp.CreateUserRequest) (*identityapp.UserResponse, error)
	Update(ctx context.Context, customerID, userID uuid.UUID, req identityapp.UpdateUserRequest) (*identityapp.UserResponse, error)
	Delete(ctx context.Context, customerID, userID, actorID uuid.UUID) error
	Activate(ctx context.Context, customerID, userID uuid.UUID) (*identityapp.UserResponse, error)
	Deactivate(ctx context.Context, customerID, userID, actorID uuid.UUID) (*identityapp.UserResponse, error)
	SendResetLink(ctx context.Context, customerID, userID uuid.UUID) error
}

// UserHandler handles user management within a customer
type UserHandler struct {
	BaseHandler
	users UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List godoc
// @ID           listUsers
// @Summary      List the users of a customer
// @Tags         users
// @Produce      json
// @Param        customer_id path  string true  "Customer ID" format(uuid)
// @Param        search      query string false "Search on email and name"
// @Param        is_active   query bool   false "Active flag"
// @Param        sort_by     query string false "Sort field"
// @Param        sort_order  query string false "asc or desc"
// @Param        page        query int    false "Page"
// @Param        page_size   query int    false "Page size"
// @Success      200 {object} APIResponse[[]identityapp.UserResponse]
// @Security     BearerAuth
// @Router       /customers/{customer_id}/users [get]
func (h *UserHandler) List(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var filter identityapp.UserListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	users, total, err := h.users.List(c.Request.Context(), customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := dto.DefaultPage(filter.Page, filter.PageSize, 20)
	h.SuccessWithMeta(c, users, total, page, pageSize)
}

// Get godoc
// @ID           getUser
// @Summary      Get a user of a customer
// @Tags         users
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        user_id     path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identityapp.UserResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/users/{user_id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	customerID, userID, ok := h.userPath(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), customerID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Create godoc
// @ID           createUser
// @Summary      Create a user in a customer
// @Description  The user gets a welcome email with a link to set the password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        request     body identityapp.CreateUserRequest true "User"
// @Success      201 {object} APIResponse[identityapp.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	customerID, ok := h.customerID(c)
	if !ok {
		return
	}
	var req identityapp.CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.users.Create(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Update godoc
// @ID           updateUser
// @Summary      Update a user of a customer
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        user_id     path string true "User ID" format(uuid)
// @Param        request     body identityapp.UpdateUserRequest true "User"
// @Success      200 {object} APIResponse[identityapp.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/users/{user_id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	customerID, userID, ok := h.userPath(c)
	if !ok {
		return
	}
	var req identityapp.UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.users.Update(c.Request.Context(), customerID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Delete godoc
// @ID           deleteUser
// @Summary      Delete a user
// @Tags         users
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        user_id     path string true "User ID" format(uuid)
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/users/{user_id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	customerID, userID, ok := h.userPath(c)
	if !ok {
		return
	}
	actorID, ok := h.userID(c)
	if !ok {
		return
	}
	if err := h.users.Delete(c.Request.Context(), customerID, userID, actorID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Activate godoc
// @ID           activateUser
// @Summary      Activate a user
// @Tags         users
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        user_id     path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identityapp.UserResponse]
// @Security     BearerAuth
// @Router       /customers/{customer_id}/users/{user_id}/activate [post]
func (h *UserHandler) Activate(c *gin.Context) {
	customerID, userID, ok := h.userPath(c)
	if !ok {
		return
	}
	user, err := h.users.Activate(c.Request.Context(), customerID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Deactivate godoc
// @ID           deactivateUser
// @Summary      Deactivate a user
// @Description  Open sessions of the user are revoked
// @Tags         users
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        user_id     path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identityapp.UserResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/users/{user_id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	customerID, userID, ok := h.userPath(c)
	if !ok {
		return
	}
	actorID, ok := h.userID(c)
	if !ok {
		return
	}
	user, err := h.users.Deactivate(c.Request.Context(), customerID, userID, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// SendResetLink godoc
// @ID           sendUserResetLink
// @Summary      Email a password reset link to a user
// @Tags         users
// @Produce      json
// @Param        customer_id path string true "Customer ID" format(uuid)
// @Param        user_id     path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[MessageData]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /customers/{customer_id}/users/{user_id}/reset-password [post]
func (h *UserHandler) SendResetLink(c *gin.Context) {
	customerID, userID, ok := h.userPath(c)
	if !ok {
		return
	}
	if err := h.users.SendResetLink(c.Request.Context(), customerID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MessageData{Message: "Password reset link sent"})
}

func (h *UserHandler) userPath(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	customerID, ok := h.customerID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	userID, ok := h.uuidParam(c, "user_id", "user")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return customerID, userID, true
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-accounts/internal/application"
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/response"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/validation"
)

// DeleteUserError is the body message of a failed delete.
const DeleteUserError = "Couldn't delete user."

// UserService is the part of *application.UserService the handlers call.
type UserService interface {
	CreateUser(ctx context.Context, cmd application.CreateUserCommand) (int64, error)
	FindUser(ctx context.Context, id int64) (application.UserDTO, error)
	ListUsers(ctx context.Context) ([]application.UserDTO, error)
	UpdateUser(ctx context.Context, cmd application.UpdateUserCommand) error
	DeleteUser(ctx context.Context, id int64) error
	SearchUsers(ctx context.Context, q string, size int) ([]application.UserDTO, error)
}

type UserHandler struct {
	Svc    UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type userRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// ids below 1 are never assigned, so they fall through to not found
type userURI struct {
	ID int64 `uri:"id"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"required,max=256"`
	Size int    `form:"size" binding:"omitempty,pagesize"`
}

// Create handles POST /v1/user. Email and password problems are reported together.
func (h *UserHandler) Create(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	problems := validation.Problems{}
	email, err := valueobject.NewValidEmailAddress(req.Email)
	addProblem(problems, err)
	password, err := valueobject.NewValidPassword(req.Password)
	addProblem(problems, err)
	if !problems.Empty() {
		response.Error[any](c, http.StatusBadRequest, "validation failed", problems)
		return
	}

	id, err := h.Svc.CreateUser(c.Request.Context(), application.NewCreateUserCommand(email, password))
	if err != nil {
		problems.Add("", outcomeMessage(err))
		response.Error[any](c, http.StatusBadRequest, "validation failed", problems)
		return
	}

	c.Header("Location", fmt.Sprintf("/v1/user/%d", id))
	response.Success(c, http.StatusCreated, gin.H{"id": id}, "user created", nil)
}

// Update handles PUT /v1/user/:id. Absent fields are left unchanged.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	problems := validation.Problems{}
	var email *valueobject.ValidEmailAddress
	if req.Email != nil {
		e, err := valueobject.NewValidEmailAddress(req.Email)
		addProblem(problems, err)
		email = &e
	}
	var password *valueobject.ValidPassword
	if req.Password != nil {
		p, err := valueobject.NewValidPassword(req.Password)
		addProblem(problems, err)
		password = &p
	}
	if !problems.Empty() {
		response.Error[any](c, http.StatusBadRequest, "validation failed", problems)
		return
	}

	cmd, err := application.NewUpdateUserCommand(id, email, password)
	if err != nil {
		addProblem(problems, err)
		response.Error[any](c, http.StatusBadRequest, "validation failed", problems)
		return
	}

	if err := h.Svc.UpdateUser(c.Request.Context(), cmd); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "user updated", nil)
}

// Delete handles DELETE /v1/user/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	err := h.Svc.DeleteUser(c.Request.Context(), id)
	switch {
	case err == nil:
		response.Success[any](c, http.StatusOK, nil, "user deleted", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, outcomeMessage(err), nil)
	default:
		response.Error[any](c, http.StatusBadRequest, DeleteUserError, nil)
	}
}

// List handles GET /v1/user.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "users", map[string]any{"count": len(users)})
}

// Get handles GET /v1/user/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	user, err := h.Svc.FindUser(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, user, "user", nil)
}

// Search handles GET /v1/user/search?q=&size=.
func (h *UserHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	users, err := h.Svc.SearchUsers(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "search results", map[string]any{"count": len(users)})
}

func (h *UserHandler) bindID(c *gin.Context) (int64, bool) {
	var uri userURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid user id", validation.ToDetails(err))
		return 0, false
	}
	return uri.ID, true
}

// fail maps a service outcome to a status code.
func (h *UserHandler) fail(c *gin.Context, err error) {
	msg := outcomeMessage(err)
	switch {
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, msg, nil)
	case errors.Is(err, application.ErrEmailReserved),
		errors.Is(err, application.ErrUserUpdateFailed),
		errors.Is(err, application.ErrUserCreationFailed),
		errors.Is(err, application.ErrUserDeletionFailed):
		response.Error[any](c, http.StatusBadRequest, msg, validation.Problems{"": {msg}})
	default:
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		response.Error[any](c, http.StatusInternalServerError, msg, nil)
	}
}

func addProblem(p validation.Problems, err error) {
	var ve *valueobject.ValidationError
	if errors.As(err, &ve) {
		p.Add(ve.Field, ve.Message)
	}
}

var outcomes = []error{
	application.ErrEmailReserved,
	application.ErrUserNotFound,
	application.ErrUserCreationFailed,
	application.ErrUserUpdateFailed,
	application.ErrUserDeletionFailed,
	application.ErrLookupFailed,
}

// outcomeMessage returns the outcome's own message without the wrapped cause.
func outcomeMessage(err error) string {
	for _, o := range outcomes {
		if errors.Is(err, o) {
			return o.Error()
		}
	}
	return "internal error"
}

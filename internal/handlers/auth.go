package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ukydev/bus-maintenance/internal/apperr"
	"github.com/ukydev/bus-maintenance/internal/auth"
	"github.com/ukydev/bus-maintenance/internal/db"
	"github.com/ukydev/bus-maintenance/internal/middleware"
	"github.com/ukydev/bus-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
	}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if err := decodeJSON(r, &loginReq); err != nil {
		writeError(w, r, err)
		return
	}

	if strings.TrimSpace(loginReq.Email) == "" || loginReq.Password == "" {
		writeError(w, r, apperr.Validation("", "email and password are required"))
		return
	}

	user, err := h.userCollection.FindUserByEmail(r.Context(), loginReq.Email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			h.unauthorized(w, r)
			return
		}
		writeError(w, r, apperr.Unexpected("find user", err))
		return
	}

	// Verify password
	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		h.unauthorized(w, r)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		writeError(w, r, apperr.Unexpected("generate token", err))
		return
	}

	writeJSON(w, r, http.StatusOK, models.LoginResponse{Token: token, User: *user})
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var registerReq models.RegisterRequest
	if err := decodeJSON(r, &registerReq); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.createUser(r.Context(), registerReq)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		writeError(w, r, apperr.Unexpected("generate token", err))
		return
	}

	writeJSON(w, r, http.StatusCreated, models.LoginResponse{Token: token, User: *user})
}

// CreateVendor lets a service creator register a vendor account.
func (h *AuthHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.Role = models.RoleVendor

	user, err := h.createUser(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, user)
}

// GetProfile returns the current user's profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, apperr.NotFound("user"))
			return
		}
		writeError(w, r, apperr.Unexpected("find user", err))
		return
	}

	writeJSON(w, r, http.StatusOK, user)
}

func (h *AuthHandler) createUser(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Unexpected("hash password", err)
	}

	now := time.Now()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.userCollection.InsertUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, apperr.Conflict("email already exists")
		}
		return nil, apperr.Unexpected("insert user", err)
	}
	return &user, nil
}

func (h *AuthHandler) unauthorized(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, r, http.StatusUnauthorized, "unauthorized", auth.ErrInvalidCredentials.Error())
}

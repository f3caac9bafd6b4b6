package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/domain"
	"github.com/postboard-dev/postboard/shared/errors"
	"github.com/postboard-dev/postboard/shared/logger"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req api.RegisterRequest) (api.AuthResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (api.AuthResponse, error)
}

type Jwt interface {
	NewToken(user domain.User) (string, error)
}

type Auth struct {
	storage    UserStorage
	jwt        Jwt
	bcryptCost int
	now        func() time.Time
	newId      func() string
}

func NewAuth(storage UserStorage, jwt Jwt) *Auth {
	return &Auth{
		storage:    storage,
		jwt:        jwt,
		bcryptCost: bcrypt.DefaultCost,
		now:        now,
		newId:      uuid.NewString,
	}
}

func (a *Auth) Register(ctx context.Context, req api.RegisterRequest) (api.AuthResponse, error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.bcryptCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return api.AuthResponse{}, err
	}

	user := domain.User{
		Id:        a.newId(),
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		PassHash:  string(passHash),
		CreatedAt: a.now(),
	}
	if err := a.storage.SaveUser(ctx, user); err != nil {
		if errors.StatusCode(err) == http.StatusConflict {
			return api.AuthResponse{}, errors.Conflict("User already exists")
		}
		return api.AuthResponse{}, err
	}

	return a.issue(user)
}

// Login answers unknown emails and wrong passwords identically.
func (a *Auth) Login(ctx context.Context, req api.LoginRequest) (api.AuthResponse, error) {
	invalid := errors.BadRequest("Invalid credentials")

	user, err := a.storage.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.StatusCode(err) == http.StatusNotFound {
			return api.AuthResponse{}, invalid
		}
		return api.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(req.Password)); err != nil {
		return api.AuthResponse{}, invalid
	}

	return a.issue(user)
}

func (a *Auth) issue(user domain.User) (api.AuthResponse, error) {
	token, err := a.jwt.NewToken(user)
	if err != nil {
		return api.AuthResponse{}, err
	}
	user.PassHash = ""
	return api.AuthResponse{Token: token, User: user}, nil
}

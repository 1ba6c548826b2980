package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sergioamr/farm-management/internal/apperror"
	"github.com/sergioamr/farm-management/internal/events"
	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials covers unknown emails, wrong passwords and disabled accounts alike
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the storage the auth service needs
type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Insert(ctx context.Context, u *model.User) error
	UpdateByID(ctx context.Context, id string, fields map[string]interface{}) (*model.User, error)
	Taken(ctx context.Context, email, username string) (bool, error)
}

// TokenIssuer signs access tokens
type TokenIssuer interface {
	GenerateToken(userID, email, role string) (string, error)
}

// LoginInput is the body of a login
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the body of a user registration
type RegisterInput struct {
	Username  string     `json:"username" validate:"required,min=3,max=50"`
	Email     string     `json:"email" validate:"required,email,max=100"`
	Password  string     `json:"password" validate:"required,min=6,max=72"`
	FirstName string     `json:"firstName" validate:"max=50"`
	LastName  string     `json:"lastName" validate:"max=50"`
	Role      model.Role `json:"role" validate:"required,enum"`
}

func (in *RegisterInput) normalize() {
	trimAll(&in.Username, &in.Email, &in.FirstName, &in.LastName)
	in.Email = strings.ToLower(in.Email)
	if in.Role == "" {
		in.Role = model.RoleUser
	}
}

// LoginResult is a signed token and the user it was issued to
type LoginResult struct {
	Token string
	User  *model.User
}

// AuthService authenticates and registers users
type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	deps   Deps
}

// NewAuthService creates an AuthService
func NewAuthService(users UserStore, tokens TokenIssuer, deps Deps) *AuthService {
	return &AuthService{users: users, tokens: tokens, deps: deps.withDefaults()}
}

// Login checks the password of an active user, stamps the login time and issues a token
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	prometheus.RecordAuthAttempt()
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.deps.Validator.Struct(in); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return nil, err
	}
	log := s.deps.log(ctx).With(zap.String("email", in.Email))

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			log.Warn("User not found")
			prometheus.RecordAuthError("user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, s.deps.failed(ctx, EntityUser, "login", err)
	}
	if !user.IsActive {
		log.Warn("Inactive user tried to log in")
		prometheus.RecordAuthError("user_inactive")
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		log.Warn("Invalid password")
		prometheus.RecordAuthError("invalid_password")
		return nil, ErrInvalidCredentials
	}

	now := s.deps.Now().UTC()
	if updated, err := s.users.UpdateByID(ctx, user.ID, map[string]interface{}{"last_login": now}); err != nil {
		log.Warn("Failed to stamp last login", zap.Error(err))
	} else {
		user = updated
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return nil, err
	}

	prometheus.RecordAuthSuccess()
	log.Info("User logged in", zap.String("user_id", user.ID))
	return &LoginResult{Token: token, User: user}, nil
}

// Register creates an active user. Email and username must both be unused.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.normalize()
	if err := s.deps.Validator.Struct(in); err != nil {
		return nil, s.deps.reject(ctx, EntityUser, err)
	}

	taken, err := s.users.Taken(ctx, in.Email, in.Username)
	if err != nil {
		return nil, s.deps.failed(ctx, EntityUser, "register", err)
	}
	if taken {
		return nil, s.deps.reject(ctx, EntityUser, &apperror.DuplicateError{Message: "User already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.deps.log(ctx).Error("Failed to hash password", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      in.Role,
		IsActive:  true,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, s.deps.failed(ctx, EntityUser, "register", err)
	}

	s.deps.log(ctx).Info("User registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	s.deps.committed(ctx, EntityUser, events.ActionCreated, user.ID, nil)
	return user, nil
}

// Profile returns the user behind a token
func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.deps.failed(ctx, EntityUser, "profile", err)
	}
	return user, nil
}

// EnsureAdmin registers an admin unless the email or username is already
// taken. It reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, in RegisterInput) (*model.User, bool, error) {
	in.Role = model.RoleAdmin
	user, err := s.Register(ctx, in)
	var dup *apperror.DuplicateError
	if errors.As(err, &dup) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

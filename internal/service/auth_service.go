package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"portfolio-auth/internal/metrics"
	"portfolio-auth/internal/model"
	"portfolio-auth/internal/password"
	"portfolio-auth/internal/token"
	"portfolio-auth/pkg/apierror"
)

// UserStore is the credential store contract the service consumes.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, email string, passwordHash string) (model.User, error)
}

type AuthService struct {
	users    UserStore
	issuer   *token.Issuer
	recorder *metrics.Recorder
}

func NewAuthService(users UserStore, issuer *token.Issuer, recorder *metrics.Recorder) *AuthService {
	return &AuthService{users: users, issuer: issuer, recorder: recorder}
}

// Register creates an account and returns a token bound to it.
//
// Outcomes are recorded on exit keyed by the final classified status, so every
// path through the method, including panics unwound past the defer, records
// exactly once. The status starts as a generic error and is narrowed on each
// classified branch.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	start := time.Now()
	status := metrics.StatusError
	defer func() {
		s.recorder.RecordOutcome(metrics.OpRegister, status, time.Since(start))
	}()

	if req.Email == "" || req.Password == "" {
		status = metrics.StatusInvalidInput
		return model.AuthResponse{}, apierror.New("BAD_REQUEST", "Email and password are required", http.StatusBadRequest)
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("check user exists: %w", err)
	}
	if exists {
		status = metrics.StatusUserExists
		return model.AuthResponse{}, apierror.New("ALREADY_EXISTS", "User already exists", http.StatusBadRequest)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Email, hash)
	if err != nil {
		// The existence check and the insert are not one transaction. A
		// concurrent registration that slips between them is stopped by the
		// store's uniqueness constraint and lands here as a generic error.
		return model.AuthResponse{}, fmt.Errorf("create user: %v", err)
	}

	tok, err := s.issuer.Issue(user.ID)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}

	status = metrics.StatusSuccess
	return model.AuthResponse{
		Token: tok,
		User:  model.AuthUser{ID: user.ID, Email: user.Email},
	}, nil
}

// Login verifies credentials and returns a fresh token. Unknown email and
// wrong password share one external message to prevent account enumeration.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	start := time.Now()
	status := metrics.StatusError
	defer func() {
		s.recorder.RecordOutcome(metrics.OpLogin, status, time.Since(start))
	}()

	if req.Email == "" || req.Password == "" {
		status = metrics.StatusInvalidInput
		return model.AuthResponse{}, apierror.New("BAD_REQUEST", "Email and password are required", http.StatusBadRequest)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		status = metrics.StatusNoUser
		return model.AuthResponse{}, apierror.New("UNAUTHORIZED", "Invalid credentials", http.StatusUnauthorized)
	}
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("find user: %w", err)
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		status = metrics.StatusInvalidPassword
		return model.AuthResponse{}, apierror.New("UNAUTHORIZED", "Invalid credentials", http.StatusUnauthorized)
	}

	tok, err := s.issuer.Issue(user.ID)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}

	status = metrics.StatusSuccess
	return model.AuthResponse{
		Token: tok,
		User:  model.AuthUser{ID: user.ID, Email: user.Email},
	}, nil
}

// Profile returns the account behind a verified token's user id.
func (s *AuthService) Profile(ctx context.Context, userID int64) (model.AuthUser, error) {
	start := time.Now()
	status := metrics.StatusError
	defer func() {
		s.recorder.RecordOutcome(metrics.OpGetProfile, status, time.Since(start))
	}()

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		status = metrics.StatusNotFound
		return model.AuthUser{}, apierror.New("NOT_FOUND", "User not found", http.StatusNotFound)
	}
	if err != nil {
		return model.AuthUser{}, fmt.Errorf("find user: %w", err)
	}

	status = metrics.StatusSuccess
	return model.AuthUser{ID: user.ID, Email: user.Email}, nil
}

// VerifyToken validates a bearer token, recording one verify_token outcome per
// invocation regardless of what the protected handler does afterwards.
func (s *AuthService) VerifyToken(tokenString string) (int64, error) {
	start := time.Now()
	status := metrics.StatusError
	defer func() {
		s.recorder.RecordOutcome(metrics.OpVerifyToken, status, time.Since(start))
	}()

	if tokenString == "" {
		status = metrics.StatusNoToken
		return 0, apierror.New("UNAUTHORIZED", "Access denied", http.StatusUnauthorized)
	}

	userID, err := s.issuer.Verify(tokenString)
	if err != nil {
		status = metrics.StatusInvalidToken
		return 0, apierror.New("UNAUTHORIZED", "Invalid token", http.StatusUnauthorized)
	}

	status = metrics.StatusSuccess
	return userID, nil
}

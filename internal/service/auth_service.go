package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	usernameRegexp = regexp.MustCompile(`^\w+$`)
	emailRegexp    = regexp.MustCompile(`^([a-zA-Z0-9_\-.]+)@([a-zA-Z0-9_\-.]+)\.([a-zA-Z]{2,5})$`)
)

// ProfileCache caches resolved public profiles. Implementations must be safe
// for concurrent use; a nil cache disables caching.
type ProfileCache interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.UserPublic, bool)
	SetUser(ctx context.Context, profile model.UserPublic)
	Invalidate(ctx context.Context, id uuid.UUID)
}

// AuthService owns registration, login and the session lifecycle
type AuthService struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	cache       ProfileCache
	sessionTTL  time.Duration
}

func NewAuthService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	cache ProfileCache,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cache:       cache,
		sessionTTL:  sessionTTL,
	}
}

// ValidateRegistration checks the registration payload before any write
func ValidateRegistration(req model.RegisterRequest) error {
	if !usernameRegexp.MatchString(req.Username) || len(req.Username) < 3 || len(req.Username) > 16 {
		return fmt.Errorf("%w: username must be 3-16 word characters", ErrValidation)
	}
	if !emailRegexp.MatchString(req.Email) {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if req.Password == "" {
		return fmt.Errorf("%w: password must not be empty", ErrValidation)
	}
	return nil
}

// Register creates a new user account
func (s *AuthService) Register(req model.RegisterRequest) (*model.User, error) {
	if err := ValidateRegistration(req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, fmt.Errorf("%w: user with given username already exists", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, fmt.Errorf("%w: user with given email already exists", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:       uuid.New(),
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(user); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: user already exists", ErrConflict)
		}
		return nil, err
	}
	return user, nil
}

// Login authenticates credentials and returns the user with a session token.
// Email takes precedence; when the email lookup misses, the username is tried
// before failing. An existing live session is reused, never duplicated.
func (s *AuthService) Login(req model.LoginRequest) (*model.LoginResponse, error) {
	var user *model.User
	if req.Email != "" {
		found, err := s.userRepo.FindByEmail(req.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = found
	}
	if user == nil && req.Username != "" {
		found, err := s.userRepo.FindByUsername(req.Username)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = found
	}
	if user == nil {
		return nil, ErrWrongCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrWrongCredentials
	}

	existing, err := s.sessionRepo.FindByUserID(user.ID)
	if err == nil {
		return &model.LoginResponse{User: user.ToPublic(), SessionID: existing.ID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session := &model.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return &model.LoginResponse{User: user.ToPublic(), SessionID: session.ID}, nil
}

// Authenticate resolves a session token. An expired session is deleted as a
// side effect of the read before failing; a live one gets its expiry pushed
// forward by the configured TTL (sliding renewal).
func (s *AuthService) Authenticate(sessionID uuid.UUID) (*model.Session, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if session.Expired(now) {
		if err := s.sessionRepo.Delete(session.ID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: session expired", ErrUnauthorized)
	}

	session.ExpiresAt = now.Add(s.sessionTTL)
	if err := s.sessionRepo.UpdateExpiry(session.ID, session.ExpiresAt); err != nil {
		return nil, err
	}
	return session, nil
}

// Logout deletes the session unconditionally
func (s *AuthService) Logout(sessionID uuid.UUID) error {
	return s.sessionRepo.Delete(sessionID)
}

// GetUser fetches a user by id
func (s *AuthService) GetUser(id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: there is no user with user id %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateAvatar stores a new avatar object key and drops the cached profile
func (s *AuthService) UpdateAvatar(userID uuid.UUID, avatarKey string) (*model.User, error) {
	if avatarKey == "" {
		return nil, fmt.Errorf("%w: avatar_key must not be empty", ErrValidation)
	}
	if err := s.userRepo.UpdateAvatar(userID, avatarKey); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: avatar key already in use", ErrConflict)
		}
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(context.Background(), userID)
	}
	return s.GetUser(userID)
}

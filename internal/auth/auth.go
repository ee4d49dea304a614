package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/swelljoe/weatherpulse/internal/cache"
	"github.com/swelljoe/weatherpulse/internal/db"
)

const minPasswordLength = 8

var (
	ErrNoAccount          = errors.New("no account found with that email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDisabled           = errors.New("account is disabled")
	ErrInvalidToken       = errors.New("token is invalid or expired")
)

// ValidationError rejects one field of a registration
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// UserStore is the account persistence the service needs
type UserStore interface {
	CreateUser(ctx context.Context, u *db.User) error
	UserByID(ctx context.Context, id int64) (*db.User, error)
	UserByUsername(ctx context.Context, username string) (*db.User, error)
	UserByEmail(ctx context.Context, email string) (*db.User, error)
}

// Config sets token lifetimes and the bcrypt cost
type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	HashCost   int
}

// Service registers users and issues bearer tokens. Tokens are random ids
// kept in the cache store, so they work across processes sharing Redis.
type Service struct {
	users  UserStore
	tokens cache.Store
	cfg    Config
	log    hclog.Logger
}

// NewService creates an auth service
func NewService(users UserStore, tokens cache.Store, cfg Config, log hclog.Logger) *Service {
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Service{users: users, tokens: tokens, cfg: cfg, log: log}
}

// RegisterRequest is a new account
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// TokenPair is returned by Login
type TokenPair struct {
	Refresh string  `json:"refresh"`
	Access  string  `json:"access"`
	User    Summary `json:"user"`
}

// Summary is the public view of an account
type Summary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Register validates req and creates an active account
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*db.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" {
		return nil, &ValidationError{Field: "username", Message: "This field is required."}
	}
	if req.Email == "" {
		return nil, &ValidationError{Field: "email", Message: "This field is required."}
	}
	if !strings.Contains(req.Email, "@") {
		return nil, &ValidationError{Field: "email", Message: "Enter a valid email address."}
	}
	if len(req.Password) < minPasswordLength {
		return nil, &ValidationError{Field: "password", Message: "Ensure this field has at least 8 characters."}
	}

	if _, err := s.users.UserByEmail(ctx, req.Email); err == nil {
		return nil, &ValidationError{Field: "email", Message: "Email already in use"}
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.UserByUsername(ctx, req.Username); err == nil {
		return nil, &ValidationError{Field: "username", Message: "A user with that username already exists."}
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.HashCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	u := &db.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Active:       true,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, &ValidationError{Field: "username", Message: "A user with that username or email already exists."}
		}
		return nil, err
	}

	s.log.Info("Registered user", "id", u.ID, "username", u.Username)
	return u, nil
}

// Login checks credentials and issues a token pair. An identifier containing
// "@" is treated as an email address.
func (s *Service) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	var (
		u   *db.User
		err error
	)
	if strings.Contains(identifier, "@") {
		u, err = s.users.UserByEmail(ctx, identifier)
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNoAccount
		}
	} else {
		u, err = s.users.UserByUsername(ctx, identifier)
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrDisabled
	}

	refresh, err := s.issue(ctx, "refresh", u.ID, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	access, err := s.issue(ctx, "access", u.ID, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Refresh: refresh,
		Access:  access,
		User:    Summary{ID: u.ID, Username: u.Username, Email: u.Email},
	}, nil
}

// Refresh exchanges a refresh token for a new access token
func (s *Service) Refresh(ctx context.Context, refresh string) (string, error) {
	userID, err := s.lookup(ctx, "refresh", refresh)
	if err != nil {
		return "", err
	}
	return s.issue(ctx, "access", userID, s.cfg.AccessTTL)
}

// Authenticate resolves an access token to the active user it was issued to
func (s *Service) Authenticate(ctx context.Context, access string) (*db.User, error) {
	userID, err := s.lookup(ctx, "access", access)
	if err != nil {
		return nil, err
	}
	u, err := s.users.UserByID(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, ErrDisabled
	}
	return u, nil
}

func tokenKey(kind, token string) string {
	return "wp:token:" + kind + ":" + token
}

func (s *Service) issue(ctx context.Context, kind string, userID int64, ttl time.Duration) (string, error) {
	token := uuid.New().String()
	if err := s.tokens.Set(ctx, tokenKey(kind, token), []byte(strconv.FormatInt(userID, 10)), ttl); err != nil {
		return "", errors.Wrapf(err, "failed to store %s token", kind)
	}
	return token, nil
}

func (s *Service) lookup(ctx context.Context, kind, token string) (int64, error) {
	if _, err := uuid.Parse(token); err != nil {
		return 0, ErrInvalidToken
	}
	data, ok, err := s.tokens.Get(ctx, tokenKey(kind, token))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s token", kind)
	}
	if !ok {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

package app

import (
	"fmt"
	"strings"
	"time"

	"proposalai/internal/util"
	"proposalai/pkg/auth"
	"proposalai/pkg/domain"
	"proposalai/pkg/storage"
	"proposalai/pkg/store"
)

// Bootstrap credentials for the administrator account. The admin record is
// created on startup if absent; administrator capability itself is decided by
// domain.User.IsAdministrator, not by these values.
const (
	adminName     = "Admin User"
	adminPassword = "Aa3232107@"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	SessionStrategy string // memory | redis | jwt
	SessionTTL      time.Duration
	JWTSecret       string
	PublicBaseURL   string

	// Optional pre-built dependencies, used by tests and the redis/jwt wiring.
	Store    store.Store
	Sessions store.SessionStore
	Objects  storage.ObjectStore
}

// App is the core application service wiring storage, sessions, and the
// proposal logic together.
type App struct {
	store         store.Store
	sessions      store.SessionStore
	objects       storage.ObjectStore
	publicBaseURL string
}

// New constructs the application and runs the admin bootstrap.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL != "" {
			var err error
			dataStore, err = store.NewGormStore(cfg.DatabaseURL)
			if err != nil {
				return nil, fmt.Errorf("init postgres store: %w", err)
			}
		} else {
			dataStore = store.NewMemoryStore()
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch cfg.SessionStrategy {
		case "redis":
			if strings.TrimSpace(cfg.RedisAddr) == "" {
				return nil, fmt.Errorf("redisAddr is required for redis session strategy")
			}
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		case "jwt":
			jwtStore, err := store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
			if err != nil {
				return nil, fmt.Errorf("init jwt session store: %w", err)
			}
			sessionStore = jwtStore
		default:
			sessionStore = store.NewMemorySessionStore()
		}
	}

	objects := cfg.Objects
	if objects == nil {
		objects = storage.NewMemoryStore(strings.TrimRight(cfg.PublicBaseURL, "/") + "/exports")
	}

	a := &App{
		store:         dataStore,
		sessions:      sessionStore,
		objects:       objects,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
	if err := a.EnsureAdminBootstrap(); err != nil {
		return nil, fmt.Errorf("admin bootstrap: %w", err)
	}
	return a, nil
}

// EnsureAdminBootstrap creates the administrator account if it does not
// exist. Idempotent; safe to call on every start.
func (a *App) EnsureAdminBootstrap() error {
	exists, err := a.store.HasUserEmail(domain.AdminEmail)
	if err != nil {
		return fmt.Errorf("check admin email: %w", err)
	}
	if exists {
		return nil
	}
	admin := domain.User{
		ID:        "admin-" + util.NewID(),
		Name:      adminName,
		Email:     domain.AdminEmail,
		Password:  adminPassword,
		IsAdmin:   true,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveUser(admin); err != nil {
		return fmt.Errorf("save admin: %w", err)
	}
	return nil
}

// SignUp registers a new user and issues a session token. Passwords are
// stored verbatim; see DESIGN.md for why hashing is intentionally absent.
func (a *App) SignUp(name, email, password, confirmPassword string) (domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return domain.User{}, "", ErrMissingRequiredFields
	}
	if password != confirmPassword {
		return domain.User{}, "", ErrPasswordMismatch
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", err
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailAlreadyExists
	}
	user := domain.User{
		ID:        util.NewID(),
		Name:      name,
		Email:     email,
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// Login validates credentials by exact match and issues a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	if email == "" || password == "" {
		return domain.User{}, "", ErrMissingRequiredFields
	}
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || user.Password != password {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves the current user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// Logout invalidates a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// UpdateProfile updates name, email and company of the current user and
// returns the refreshed snapshot.
func (a *App) UpdateProfile(user domain.User, name, email, company string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return domain.User{}, ErrMissingRequiredFields
	}
	if email != user.Email {
		existing, ok, err := a.store.GetUserByEmail(email)
		if err != nil {
			return domain.User{}, fmt.Errorf("check email: %w", err)
		}
		if ok && existing.ID != user.ID {
			return domain.User{}, ErrEmailAlreadyExists
		}
	}
	user.Name = name
	user.Email = email
	user.Company = strings.TrimSpace(company)
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ChangePassword rewrites the password after verifying the current one.
func (a *App) ChangePassword(user domain.User, currentPassword, newPassword, confirmPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return ErrMissingRequiredFields
	}
	if currentPassword != user.Password {
		return ErrIncorrectPassword
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}
	user.Password = newPassword
	if err := a.store.SaveUser(user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// DeleteAccount removes the user and their sessions. Proposals owned by the
// user are intentionally left in place.
func (a *App) DeleteAccount(user domain.User, token string) error {
	if err := a.store.DeleteUser(user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := a.sessions.DeleteSession(token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if revoker, ok := a.sessions.(interface{ DeleteSessionsForUser(string) }); ok {
		revoker.DeleteSessionsForUser(user.ID)
	}
	return nil
}

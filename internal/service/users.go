package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shestoi/paymanager/internal/repository"
)

const minPasswordLength = 6

// UserInput поля пользователя; nil означает "не менять" при обновлении
type UserInput struct {
	FullName *string
	Email    *string
	Password *string
	Role     *repository.Role
}

// UserService пользователи панели и их сессии
type UserService struct {
	logger      *zap.Logger
	repo        repository.UserRepository
	sessionRepo repository.SessionRepository
	sessionTTL  time.Duration
}

func NewUserService(logger *zap.Logger, repo repository.UserRepository, sessionRepo repository.SessionRepository, sessionTTL time.Duration) *UserService {
	return &UserService{
		logger:      logger,
		repo:        repo,
		sessionRepo: sessionRepo,
		sessionTTL:  sessionTTL,
	}
}

func (s *UserService) List(ctx context.Context) ([]repository.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (repository.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.User{}, notFound(err, "user")
	}
	return u, nil
}

// Create email, password и role обязательны
func (s *UserService) Create(ctx context.Context, in UserInput) (repository.User, error) {
	var errs fieldErrors
	if in.FullName != nil {
		checkFullName(*in.FullName, &errs)
	}
	if in.Email == nil || !validEmail(*in.Email) {
		errs.add("email", "must be a valid email")
	}
	if in.Password == nil || utf8.RuneCountInString(*in.Password) < minPasswordLength {
		errs.add("password", fmt.Sprintf("must have at least %d characters", minPasswordLength))
	}
	if in.Role == nil {
		errs.add("role", "is required")
	} else {
		checkRole(*in.Role, &errs)
	}
	if err := errs.err(); err != nil {
		return repository.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return repository.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := repository.User{
		Email:        normalizeEmail(*in.Email),
		PasswordHash: string(hash),
		Role:         *in.Role,
	}
	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return repository.User{}, ErrEmailTaken
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return repository.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", zap.Int64("user_id", created.ID), zap.String("role", string(created.Role)))
	return created, nil
}

// Update частичное обновление; пароль перехэшируется только если передан
func (s *UserService) Update(ctx context.Context, id int64, in UserInput) (repository.User, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.User{}, notFound(err, "user")
	}

	var errs fieldErrors
	if in.FullName != nil {
		checkFullName(*in.FullName, &errs)
		current.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Email != nil {
		if !validEmail(*in.Email) {
			errs.add("email", "must be a valid email")
		}
		current.Email = normalizeEmail(*in.Email)
	}
	if in.Password != nil && utf8.RuneCountInString(*in.Password) < minPasswordLength {
		errs.add("password", fmt.Sprintf("must have at least %d characters", minPasswordLength))
	}
	if in.Role != nil {
		checkRole(*in.Role, &errs)
		current.Role = *in.Role
	}
	if err := errs.err(); err != nil {
		return repository.User{}, err
	}

	// пустой hash: репозиторий оставит прежний
	current.PasswordHash = ""
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return repository.User{}, fmt.Errorf("failed to hash password: %w", err)
		}
		current.PasswordHash = string(hash)
	}

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return repository.User{}, ErrEmailTaken
		}
		return repository.User{}, notFound(err, "user")
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, "user")
	}
	s.logger.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

// Login проверяет пароль и создаёт сессию
func (s *UserService) Login(ctx context.Context, email, password string) (repository.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return repository.Session{}, ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Session{}, ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by email", zap.Error(err))
		return repository.Session{}, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("invalid password attempt", zap.Int64("user_id", user.ID))
		return repository.Session{}, ErrInvalidCredentials
	}

	session, err := s.sessionRepo.CreateSession(ctx, user.ID, s.sessionTTL)
	if err != nil {
		s.logger.Error("failed to create session", zap.Error(err), zap.Int64("user_id", user.ID))
		return repository.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return session, nil
}

func (s *UserService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Authenticate проверяет сессию, продлевает её TTL и возвращает пользователя
func (s *UserService) Authenticate(ctx context.Context, sessionID string) (repository.User, error) {
	if sessionID == "" {
		return repository.User{}, ErrSessionNotFoundOrExpired
	}

	userID, err := s.sessionRepo.GetUserIDBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return repository.User{}, ErrSessionNotFoundOrExpired
		}
		s.logger.Error("failed to validate session", zap.Error(err))
		return repository.User{}, fmt.Errorf("failed to validate session: %w", err)
	}

	if err := s.sessionRepo.RefreshSession(ctx, sessionID, s.sessionTTL); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return repository.User{}, ErrSessionNotFoundOrExpired
		}
		s.logger.Error("failed to refresh session TTL", zap.Error(err))
		return repository.User{}, fmt.Errorf("failed to refresh session: %w", err)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		// пользователь удалён, а сессия осталась
		if errors.Is(err, repository.ErrNotFound) {
			return repository.User{}, ErrSessionNotFoundOrExpired
		}
		return repository.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// EnsureAdmin создаёт ADMIN с данным email, если такого пользователя ещё нет.
// Возвращает true, если пользователь был создан
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("failed to get user by email: %w", err)
	}

	role := repository.RoleAdmin
	fullName := "Administrator"
	_, err = s.Create(ctx, UserInput{FullName: &fullName, Email: &email, Password: &password, Role: &role})
	if errors.Is(err, ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func checkFullName(name string, errs *fieldErrors) {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < 3 {
		errs.add("fullName", "must have at least 3 characters")
	}
}

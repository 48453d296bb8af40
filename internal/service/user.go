package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/Skotchmaster/restaurant_pos/internal/models"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/pkg/hash"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

const minPasswordLen = 6

type UserService struct {
	Repo   UserStore
	Events Publisher
}

type UserInput struct {
	Username string
	Password string
	Name     string
	Role     models.Role
}

func (in UserInput) normalize(passwordRequired bool) (UserInput, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Username == "":
		return in, fmt.Errorf("%w: username required", ErrValidation)
	case utf8.RuneCountInString(in.Username) > 50:
		return in, fmt.Errorf("%w: username longer than 50 characters", ErrValidation)
	case strings.ContainsAny(in.Username, " \t\n"):
		return in, fmt.Errorf("%w: username cannot contain spaces", ErrValidation)
	case in.Name == "":
		return in, fmt.Errorf("%w: name required", ErrValidation)
	case utf8.RuneCountInString(in.Name) > 100:
		return in, fmt.Errorf("%w: name longer than 100 characters", ErrValidation)
	case !in.Role.Valid():
		return in, fmt.Errorf("%w: role must be %q or %q", ErrValidation, models.RoleAdmin, models.RoleServer)
	case passwordRequired && in.Password == "":
		return in, fmt.Errorf("%w: password required", ErrValidation)
	case in.Password != "" && utf8.RuneCountInString(in.Password) < minPasswordLen:
		return in, fmt.Errorf("%w: password must have at least %d characters", ErrValidation, minPasswordLen)
	case len(in.Password) > 72:
		return in, fmt.Errorf("%w: password longer than 72 bytes", ErrValidation)
	}
	return in, nil
}

func (s *UserService) ListUsers(ctx context.Context, f repo.UserFilter) ([]models.User, error) {
	return s.Repo.ListUsers(ctx, f)
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Repo.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return u, nil
}

func (s *UserService) ensureUnique(ctx context.Context, username string, excludeID uint) error {
	exists, err := s.Repo.UsernameExists(ctx, username, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: username %s already exists", ErrConflict, username)
	}
	return nil
}

func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	in, err := in.normalize(true)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, in.Username, 0); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{Username: in.Username, PasswordHash: pwHash, Name: in.Name, Role: in.Role, Active: true}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		if repo.IsDuplicate(err) {
			return nil, fmt.Errorf("%w: username %s already exists", ErrConflict, in.Username)
		}
		return nil, err
	}
	s.emit(ctx, "user_created", u)
	return u, nil
}

// UpdateUser changes the profile; the password only when in.Password is set.
func (s *UserService) UpdateUser(ctx context.Context, id uint, in UserInput) (*models.User, error) {
	in, err := in.normalize(false)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, in.Username, id); err != nil {
		return nil, err
	}

	u := &models.User{ID: id, Username: in.Username, Name: in.Name, Role: in.Role}
	if in.Password != "" {
		if u.PasswordHash, err = hash.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	if err := s.Repo.UpdateUser(ctx, u); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		case repo.IsDuplicate(err):
			return nil, fmt.Errorf("%w: username %s already exists", ErrConflict, in.Username)
		}
		return nil, err
	}
	updated, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, "user_updated", updated)
	return updated, nil
}

// DeactivateUser disables the account and revokes its refresh tokens. An
// admin cannot disable their own account.
func (s *UserService) DeactivateUser(ctx context.Context, actorID, id uint) error {
	if actorID == id {
		return fmt.Errorf("%w: cannot deactivate your own account", ErrValidation)
	}
	if err := s.setActive(ctx, id, false); err != nil {
		return err
	}
	if err := s.Repo.RevokeUserTokens(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("revoke_user_tokens_failed", "user_id", id, "error", err)
	}
	return nil
}

func (s *UserService) ActivateUser(ctx context.Context, id uint) error {
	return s.setActive(ctx, id, true)
}

func (s *UserService) setActive(ctx context.Context, id uint, active bool) error {
	if err := s.Repo.SetUserActive(ctx, id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return err
	}
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	typ := "user_deactivated"
	if active {
		typ = "user_activated"
	}
	s.emit(ctx, typ, u)
	return nil
}

func (s *UserService) emit(ctx context.Context, eventType string, u *models.User) {
	publish(ctx, s.Events, TopicUsers, fmt.Sprint(u.ID), map[string]any{
		"type":     eventType,
		"userID":   u.ID,
		"username": u.Username,
		"role":     u.Role,
		"active":   u.Active,
	})
}

package service

import (
	"context"
	"errors"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// UserService manages user accounts. Email uniqueness is enforced by the
// store and surfaced as a duplicate-email error.
type UserService struct {
	users  domain.UserRepository
	logger *zerolog.Logger
}

func NewUserService(users domain.UserRepository, logger *zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, translateUserErr(err, user.ID, user.Email)
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, translateNotFound(err, "user", userID)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]models.User, 0, len(users))
	for _, u := range users {
		result = append(result, *u)
	}
	return result, nil
}

func (s *UserService) Update(ctx context.Context, userID int64, patch models.UserPatch) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, translateNotFound(err, "user", userID)
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, translateUserErr(err, userID, user.Email)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, userID int64) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return translateNotFound(err, "user", userID)
	}
	s.logger.Info().Int64("user_id", userID).Msg("user deleted")
	return nil
}

func translateUserErr(err error, userID int64, email string) error {
	if errors.Is(err, database.ErrDuplicateEmail) {
		return &domain.DuplicateEmailError{Email: email}
	}
	return translateNotFound(err, "user", userID)
}

package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// AuthService maps identity-provider subjects to owner ids
type AuthService struct {
	userRepo domain.UserRepository

	mu     sync.RWMutex
	owners map[string]uuid.UUID
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		owners:   make(map[string]uuid.UUID),
	}
}

// ResolveOwner returns the owner id for an Auth0 subject, provisioning the user on first sight.
// Resolved ids are cached for the lifetime of the process since the mapping never changes.
func (s *AuthService) ResolveOwner(ctx context.Context, auth0ID, email string, name *string) (uuid.UUID, error) {
	if auth0ID == "" {
		return uuid.Nil, domain.ErrUnauthorized
	}

	s.mu.RLock()
	id, ok := s.owners[auth0ID]
	s.mu.RUnlock()
	if ok {
		return id, nil
	}

	user, err := s.userRepo.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to look up user")
			return uuid.Nil, err
		}
		user, err = s.userRepo.CreateOrGetByAuth0ID(ctx, auth0ID, email, name)
		if err != nil {
			log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to create or get user")
			return uuid.Nil, err
		}
		log.Info().Str("user_id", user.ID.String()).Msg("Provisioned new user")
	}

	s.mu.Lock()
	s.owners[auth0ID] = user.ID
	s.mu.Unlock()
	return user.ID, nil
}

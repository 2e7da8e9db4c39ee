package user

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"parlor/internal/app/db"
	"parlor/internal/pkg/errs"
	"parlor/internal/pkg/logx"
	"parlor/internal/pkg/randx"
)

// Service resolves login requests to stable user identities.
type Service struct {
	store Store

	logger zerolog.Logger
}

// NewService constructs a Service over the given store.
func NewService(store Store) *Service {
	return &Service{
		store:  store,
		logger: logx.Logger().With().Str("component", "UserService").Logger(),
	}
}

// Login derives or reuses a stable identity for the given username.
//
// An empty username is rejected before any side effect. Anonymous logins are
// given a generated placeholder name so they never collide with a chosen one;
// in the unlikely event the placeholder is already taken the generation is
// retried once. Known usernames keep their id and get a fresh last-active
// timestamp.
func (s *Service) Login(ctx context.Context, username string, isAnonymous bool) (User, *errs.CustomError) {
	if username == "" {
		return User{}, errs.NewError(errs.ErrUsernameRequired)
	}

	if isAnonymous {
		anonName, err := randx.AnonUsername()
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to generate anonymous username.")
			return User{}, errs.NewError(errs.ErrUnknown)
		}
		username = anonName
	}

	const maxAttempts = 2

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id, err := randx.UserID()
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to generate user id.")
			return User{}, errs.NewError(errs.ErrUnknown)
		}

		u, err := s.store.Upsert(ctx, User{
			ID:          id,
			Username:    username,
			IsAnonymous: isAnonymous,
		})
		if err == nil {
			s.logger.Info().
				Str("user_id", u.ID).
				Str("username", u.Username).
				Bool("is_anonymous", u.IsAnonymous).
				Msg("User logged in.")
			return u, nil
		}

		lastErr = err

		// Only an anonymous placeholder collision is worth retrying with a new
		// name; a registered username conflicting is the upsert path itself.
		if isAnonymous && db.IsUniqueViolation(err) {
			anonName, genErr := randx.AnonUsername()
			if genErr != nil {
				break
			}
			username = anonName
			continue
		}

		break
	}

	s.logger.Error().Err(lastErr).Str("username", username).Msg("Login upsert failed.")
	return User{}, errs.NewError(errs.ErrPersistence)
}

// Logout refreshes the user's last-active timestamp. Unknown ids are a silent
// no-op; the session model is too low-stakes to make them an error.
func (s *Service) Logout(ctx context.Context, userID string) {
	if userID == "" {
		return
	}

	found, err := s.store.TouchLastActive(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Logout touch failed.")
		return
	}

	if !found {
		s.logger.Debug().Str("user_id", userID).Msg("Logout for unknown user id ignored.")
	}
}

// ActiveUsers lists users active within the given window.
func (s *Service) ActiveUsers(ctx context.Context, within time.Duration) ([]User, error) {
	return s.store.ActiveSince(ctx, time.Now().Add(-within))
}

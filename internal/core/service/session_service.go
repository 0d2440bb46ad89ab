package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/providex/supplier-registry/internal/core/domain"
)

var ErrMissingAppID = errors.New("app id is required")

// SessionService performs the one-time sign-in that scopes the registry.
// With an initial token it trusts the token's subject; without one it signs
// in anonymously under a fresh user id.
type SessionService struct {
	appID        string
	initialToken string
	tokenSecret  string
	newUserID    func() string
	logger       zerolog.Logger
}

func NewSessionService(appID, initialToken, tokenSecret string, logger zerolog.Logger) *SessionService {
	return &SessionService{
		appID:        appID,
		initialToken: initialToken,
		tokenSecret:  tokenSecret,
		newUserID:    uuid.NewString,
		logger:       logger,
	}
}

func (s *SessionService) SignIn(ctx context.Context) (domain.Namespace, error) {
	if err := ctx.Err(); err != nil {
		return domain.Namespace{}, err
	}
	if s.appID == "" {
		return domain.Namespace{}, ErrMissingAppID
	}

	if s.initialToken == "" {
		ns := domain.Namespace{AppID: s.appID, UserID: s.newUserID()}
		s.logger.Info().Str("user_id", ns.UserID).Msg("signed in anonymously")
		return ns, nil
	}

	subject, err := s.verify(s.initialToken)
	if err != nil {
		return domain.Namespace{}, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
	}
	s.logger.Info().Str("user_id", subject).Msg("signed in with custom token")
	return domain.Namespace{AppID: s.appID, UserID: subject}, nil
}

func (s *SessionService) verify(raw string) (string, error) {
	if s.tokenSecret == "" {
		return "", errors.New("no secret configured to verify the initial token")
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return []byte(s.tokenSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", errors.New("token has no subject")
	}
	return subject, nil
}

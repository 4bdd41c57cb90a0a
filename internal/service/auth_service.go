package service

import (
	"context"
	"crypto/subtle"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService signs in the clinician account configured through the
// environment. Patients never log in; they receive a token at registration.
type AuthService struct {
	clinician  config.ClinicianConfig
	jwtManager *auth.JWTManager
	log        *zap.Logger
}

func NewAuthService(clinician config.ClinicianConfig, jwtManager *auth.JWTManager, log *zap.Logger) *AuthService {
	return &AuthService{clinician: clinician, jwtManager: jwtManager, log: log}
}

// dummyHash is compared against when the username is unknown so that both
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("medassist-dummy-password"), bcrypt.DefaultCost)

func (s *AuthService) Login(_ context.Context, username, password, ip string) (*domain.TokenPair, error) {
	known := s.clinician.Username != "" &&
		subtle.ConstantTimeCompare([]byte(username), []byte(s.clinician.Username)) == 1

	hash := dummyHash
	if known {
		hash = []byte(s.clinician.PasswordHash)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || !known {
		s.log.Warn("failed login attempt",
			zap.String("username", username),
			zap.String("ip", ip),
		)
		return nil, ErrInvalidCredentials
	}

	pair, err := s.jwtManager.GenerateTokenPair(&domain.Claims{Subject: s.clinician.Username, Role: domain.RoleClinician})
	if err != nil {
		return nil, err
	}

	s.log.Info("clinician logged in", zap.String("username", username), zap.String("ip", ip))
	return pair, nil
}

// Refresh exchanges a valid clinician refresh token for a new pair.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Role != domain.RoleClinician || claims.Subject != s.clinician.Username {
		return nil, auth.ErrTokenInvalid
	}
	return s.jwtManager.GenerateTokenPair(claims)
}

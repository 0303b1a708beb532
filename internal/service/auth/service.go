package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rusdhi-de/clinic-api/internal/email"
	"github.com/rusdhi-de/clinic-api/internal/model"
	"github.com/rusdhi-de/clinic-api/internal/repository"
	"github.com/rusdhi-de/clinic-api/pkg/auth"
	apperrors "github.com/rusdhi-de/clinic-api/pkg/errors"
	"github.com/rusdhi-de/clinic-api/pkg/metrics"
	"github.com/rusdhi-de/clinic-api/pkg/security"
	"github.com/rusdhi-de/clinic-api/pkg/session"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	patientRepo repository.PatientRepository
	adminRepo   repository.AdminRepository
	jwtSvc      auth.JWTService
	hasher      security.PasswordHasher
	revocations session.RevocationStore
	emailSvc    email.Service
	metrics     *metrics.Metrics
}

func NewService(patientRepo repository.PatientRepository, adminRepo repository.AdminRepository,
	jwtSvc auth.JWTService, hasher security.PasswordHasher, revocations session.RevocationStore,
	emailSvc email.Service, m *metrics.Metrics) *Service {
	return &Service{
		patientRepo: patientRepo,
		adminRepo:   adminRepo,
		jwtSvc:      jwtSvc,
		hasher:      hasher,
		revocations: revocations,
		emailSvc:    emailSvc,
		metrics:     m,
	}
}

// RegisterPatient creates a patient account. Email and phone collisions are
// both rejected before any row is written.
func (s *Service) RegisterPatient(ctx context.Context, req *model.RegisterRequest) (*model.Patient, error) {
	exists, err := s.patientRepo.ExistsByEmailOrPhone(ctx, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.BadRequest("user with this phone or email already exists", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.BadRequest("invalid password", err)
	}

	patient := &model.Patient{
		Base:         model.Base{ID: uuid.New()},
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, err
	}

	s.metrics.RegistrationsTotal.Inc()

	if err := s.emailSvc.SendWelcome(ctx, patient.Email); err != nil {
		log.Warn().Err(err).Str("email", patient.Email).Msg("failed to send welcome mail")
	}

	return patient, nil
}

// LoginPatient authenticates by email and issues a patient session token.
func (s *Service) LoginPatient(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	patient, err := s.patientRepo.GetByEmail(ctx, email)
	if err != nil {
		s.metrics.LoginsTotal.WithLabelValues(string(model.PrincipalKindPatient), "failure").Inc()
		return nil, apperrors.Unauthorized("invalid credentials", ErrInvalidCredentials)
	}

	if err := s.hasher.Compare(patient.PasswordHash, password); err != nil {
		s.metrics.LoginsTotal.WithLabelValues(string(model.PrincipalKindPatient), "failure").Inc()
		return nil, apperrors.Unauthorized("invalid credentials", ErrInvalidCredentials)
	}

	token, err := s.jwtSvc.GenerateToken(model.PrincipalKindPatient, patient.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.metrics.LoginsTotal.WithLabelValues(string(model.PrincipalKindPatient), "success").Inc()
	return &model.TokenResponse{AccessToken: token}, nil
}

// LoginAdmin authenticates against the admin table and issues an admin
// session token.
func (s *Service) LoginAdmin(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		s.metrics.LoginsTotal.WithLabelValues(string(model.PrincipalKindAdmin), "failure").Inc()
		return nil, apperrors.Unauthorized("invalid admin credentials", ErrInvalidCredentials)
	}

	if err := s.hasher.Compare(admin.PasswordHash, password); err != nil {
		s.metrics.LoginsTotal.WithLabelValues(string(model.PrincipalKindAdmin), "failure").Inc()
		return nil, apperrors.Unauthorized("invalid admin credentials", ErrInvalidCredentials)
	}

	token, err := s.jwtSvc.GenerateToken(model.PrincipalKindAdmin, admin.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.metrics.LoginsTotal.WithLabelValues(string(model.PrincipalKindAdmin), "success").Inc()
	return &model.TokenResponse{AccessToken: token}, nil
}

// Authenticate resolves a session token into a principal, rejecting
// revoked and malformed tokens.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized("unauthenticated", err)
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if revoked {
		return nil, apperrors.Unauthorized("unauthenticated", nil)
	}

	return &model.Principal{Kind: claims.Kind, ID: claims.PrincipalID}, nil
}

// TokenTTL is the lifetime of issued session tokens.
func (s *Service) TokenTTL() time.Duration {
	return s.jwtSvc.TTL()
}

// Logout revokes the session token until its natural expiry.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return apperrors.Unauthorized("unauthenticated", err)
	}
	return s.revocations.Revoke(ctx, claims.TokenID, s.jwtSvc.TTL())
}

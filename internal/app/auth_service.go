package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"displaydeck/internal/model"
	"displaydeck/internal/pkg/jwtutil"
	"displaydeck/internal/repository"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameExists    = errors.New("username already exists")
	ErrEmailExists       = errors.New("email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
)

type AuthService struct {
	operatorRepo  *repository.OperatorRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token    string
	Operator *model.Operator
}

func NewAuthService(operatorRepo *repository.OperatorRepository, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		operatorRepo:  operatorRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if username == "" || email == "" || password == "" || len(password) < 8 {
		return nil, ErrInvalidInput
	}

	existingByName, err := s.operatorRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existingByName != nil {
		return nil, ErrUsernameExists
	}

	existingByEmail, err := s.operatorRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existingByEmail != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	operator := &model.Operator{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleOperator,
	}
	if err := s.operatorRepo.Create(operator); err != nil {
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, operator.ID, operator.Username, operator.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Operator: operator}, nil
}

func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	operator, err := s.operatorRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if operator == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, operator.ID, operator.Username, operator.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Operator: operator}, nil
}

func (s *AuthService) GetOperatorByID(id uint) (*model.Operator, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.operatorRepo.GetByID(id)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"colabora/internal/models/db_models"
	"colabora/internal/models/request_models"
	"colabora/internal/models/response_models"
	"colabora/internal/repositories"
	"colabora/pkg/logger"
	"colabora/pkg/utils"
)

type AccountServiceInterface interface {
	Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AccountLoginResponse, error)
	CreateAdmin(ctx context.Context, request request_models.CreateAdminRequest) (*db_models.Account, error)
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	tokens      *utils.TokenIssuer
	logger      *logger.Logger
}

func NewAccountService(accountRepo repositories.AccountRepository, tokens *utils.TokenIssuer, log *logger.Logger) AccountServiceInterface {
	return &AccountService{
		accountRepo: accountRepo,
		tokens:      tokens,
		logger:      log.With("component", "accounts"),
	}
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AccountLoginResponse, error) {
	account, err := a.accountRepo.FindByEmail(ctx, normalizeEmail(request.Email))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		a.logger.Warn("login rejected", "email", account.Email)
		return nil, utils.ErrInvalidCredentials
	}

	token, err := a.tokens.CreateToken(account.ID, account.Role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	a.logger.Info("login", "account_id", account.ID)
	return &response_models.AccountLoginResponse{Token: token, Role: account.Role}, nil
}

func (a *AccountService) CreateAdmin(ctx context.Context, request request_models.CreateAdminRequest) (*db_models.Account, error) {
	email := normalizeEmail(request.Email)
	if email == "" || len(request.Password) < 8 {
		return nil, fmt.Errorf("admin needs an email and a password of at least 8 characters: %w", utils.ErrInvalidCredentials)
	}

	existingAccount, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingAccount != nil {
		return nil, utils.ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &db_models.Account{
		Name:         strings.TrimSpace(request.DisplayName),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         db_models.RoleAdmin,
	}
	if err := a.accountRepo.Insert(ctx, account); err != nil {
		if errors.Is(err, utils.ErrStoreConflict) {
			return nil, utils.ErrEmailAlreadyExists
		}
		return nil, err
	}

	a.logger.Info("admin account created", "account_id", account.ID, "email", email)
	return account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package account_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"colabora/internal/config"
	"colabora/internal/repositories"
	"colabora/internal/services"
	"colabora/pkg/logger"
	"colabora/pkg/utils"
)

var Module = fx.Provide(
	provideAccountService, provideAccountRepo, provideTokenIssuer)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideTokenIssuer(cfg config.Config) *utils.TokenIssuer {
	return utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
}

func provideAccountService(accountRepo repositories.AccountRepository, tokens *utils.TokenIssuer, log *logger.Logger) services.AccountServiceInterface {
	return services.NewAccountService(accountRepo, tokens, log)
}

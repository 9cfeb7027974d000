package dashboard

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"colabora/internal/config"
	"colabora/internal/repositories"
	"colabora/internal/services"
)

var Module = fx.Provide(
	provideDashboardRepo, provideDashboardService,
)

func provideDashboardRepo(db *gorm.DB) repositories.DashboardRepository {
	return repositories.NewDashboardRepository(db)
}

func provideDashboardService(dashboardRepo repositories.DashboardRepository, cfg config.Config) services.DashboardService {
	return services.NewDashboardService(dashboardRepo, cfg.Stripe.Currency)
}

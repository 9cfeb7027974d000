package controllers_fx

import (
	"go.uber.org/fx"

	"colabora/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewPaymentController),
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewDonationController),
	fx.Provide(controllers.NewDashboardController))

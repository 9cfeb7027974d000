package donation_fx

import (
	"go.uber.org/fx"

	"colabora/internal/repositories"
	"colabora/internal/services"
)

var Module = fx.Provide(provideDonationService)

func provideDonationService(donors repositories.DonorRepository, donations repositories.DonationRepository) services.DonationService {
	return services.NewDonationService(donors, donations)
}

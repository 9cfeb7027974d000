package payment_service_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"colabora/internal/config"
	"colabora/internal/repositories"
	"colabora/internal/services"
	"colabora/pkg/logger"
	mem "colabora/pkg/memcache"
)

var Module = fx.Provide(
	provideDonorRepo,
	provideDonationRepo,
	providePaymentProvider,
	provideNormalizer,
	provideReconciler,
	providePaymentService,
)

func provideDonorRepo(db *gorm.DB) repositories.DonorRepository {
	return repositories.NewDonorRepository(db)
}

func provideDonationRepo(db *gorm.DB) repositories.DonationRepository {
	return repositories.NewDonationRepository(db)
}

func providePaymentProvider(cfg config.Config) services.PaymentProvider {
	return services.NewStripeProvider(services.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Currency:      cfg.Stripe.Currency,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
	})
}

func provideNormalizer(provider services.PaymentProvider, cfg config.Config, log *logger.Logger) services.EventNormalizer {
	return services.NewEventNormalizer(provider, cfg.Stripe.WebhookSecret, log)
}

func provideReconciler(
	donors repositories.DonorRepository,
	donations repositories.DonationRepository,
	notifier services.Notifier,
	cfg config.Config,
	log *logger.Logger,
) services.ReconcilerService {
	return services.NewReconcilerService(donors, donations, notifier, services.ReconcilerConfig{
		Currency: cfg.Stripe.Currency,
		Timeout:  cfg.Reconcile.Timeout,
	}, log)
}

func providePaymentService(
	provider services.PaymentProvider,
	normalizer services.EventNormalizer,
	reconciler services.ReconcilerService,
	outcomes mem.OutcomeStore,
	cfg config.Config,
	log *logger.Logger,
) services.PaymentService {
	return services.NewPaymentService(provider, normalizer, reconciler, outcomes, cfg.Reconcile.ConfirmCacheTTL, log)
}

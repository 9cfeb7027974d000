package notifier_fx

import (
	"go.uber.org/fx"

	"colabora/internal/config"
	"colabora/internal/services"
	"colabora/pkg/logger"
)

var Module = fx.Options(
	fx.Provide(provideNotifier),
	fx.Provide(func(n *services.AsyncNotifier) services.Notifier { return n }),
)

func provideNotifier(lc fx.Lifecycle, cfg config.Config, mail services.IMailService, log *logger.Logger) *services.AsyncNotifier {
	notifier := services.NewAsyncNotifier(mail, log, cfg.Notifier.QueueSize, cfg.Notifier.Workers)
	lc.Append(fx.Hook{
		OnStart: notifier.Start,
		OnStop:  notifier.Stop,
	})
	return notifier
}

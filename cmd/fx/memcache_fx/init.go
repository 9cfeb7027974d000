package memcache_fx

import (
	"go.uber.org/fx"

	mem "colabora/pkg/memcache"
)

var Module = fx.Provide(provideOutcomeStore)

func provideOutcomeStore() mem.OutcomeStore {
	return mem.NewOutcomes()
}

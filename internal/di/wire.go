//go:build wireinject
// +build wireinject

package di

import (
	"RiskLens/pkg/config"
	"RiskLens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp builds the full application graph.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideHTTPClient,
		ProvideMetrics,
		ProvidePriceStore,
		ProvideResultCache,
		ProvideProviderChain,
		ProvideHistCache,
		ProvideFetcher,
		ProvideEngine,
		ProvidePublisher,
		ProvideAnalyzer,
		ProvideHandler,
		ProvideServer,
		ProvideApp,
	)
	return nil, nil
}

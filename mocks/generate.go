package mocks

//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/argo-flipper/internal/datasource PriceDataSource
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-flipper/pkg/marketdata/provider Provider
//go:generate mockgen -destination=./mock_store.go -package=mocks github.com/rxtech-lab/argo-flipper/internal/store DocumentStore

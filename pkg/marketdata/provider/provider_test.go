package provider

import (
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

type ProviderTestSuite struct {
	suite.Suite
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderTestSuite))
}

func (suite *ProviderTestSuite) TestNewMarketDataProvider() {
	tests := []struct {
		name         string
		providerType ProviderType
		apiKey       string
		expectedCode errors.ErrorCode
		expectError  bool
	}{
		{name: "binance", providerType: ProviderBinance},
		{name: "polygon", providerType: ProviderPolygon, apiKey: "key"},
		{name: "polygon without key", providerType: ProviderPolygon, expectError: true, expectedCode: errors.ErrCodeMissingParameter},
		{name: "unknown", providerType: "yahoo", expectError: true, expectedCode: errors.ErrCodeInvalidProvider},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			provider, err := NewMarketDataProvider(tc.providerType, tc.apiKey)
			if tc.expectError {
				suite.Error(err)
				suite.Nil(provider)
				suite.True(errors.HasCode(err, tc.expectedCode))

				return
			}

			suite.NoError(err)
			suite.NotNil(provider)
		})
	}
}

func (suite *ProviderTestSuite) TestBarFromAgg() {
	timestamp := time.Date(2023, 3, 14, 4, 0, 0, 0, time.UTC)

	//nolint:exhaustruct // third-party struct with many optional fields
	bar := barFromAgg(models.Agg{
		Open:      10.5,
		High:      11,
		Low:       10,
		Close:     10.75,
		Volume:    12345,
		Timestamp: models.Millis(timestamp),
	})

	suite.Equal(timestamp, bar.Date)
	suite.Equal("2023-03-14", bar.Key())
	suite.Equal(10.5, bar.Open)
	suite.Equal(11.0, bar.High)
	suite.Equal(10.0, bar.Low)
	suite.Equal(10.75, bar.Close)
	suite.Equal(12345.0, bar.Volume)
}

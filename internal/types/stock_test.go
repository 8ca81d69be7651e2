package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type StockTestSuite struct {
	suite.Suite
}

func TestStockSuite(t *testing.T) {
	suite.Run(t, new(StockTestSuite))
}

func (suite *StockTestSuite) TestDateKey() {
	suite.Equal("2020-02-19", DateKey(time.Date(2020, 2, 19, 0, 0, 0, 0, time.UTC)))
	suite.Equal("2020-02-19", DateKey(time.Date(2020, 2, 19, 23, 59, 0, 0, time.UTC)))

	stockholm := time.FixedZone("CET", 3600)
	suite.Equal("2020-02-18", DateKey(time.Date(2020, 2, 19, 0, 30, 0, 0, stockholm)))
}

func (suite *StockTestSuite) TestParseDateKey() {
	parsed, err := ParseDateKey("2021-02-19")
	suite.NoError(err)
	suite.Equal(time.Date(2021, 2, 19, 0, 0, 0, 0, time.UTC), parsed)

	_, err = ParseDateKey("19/02/2021")
	suite.Error(err)
}

func (suite *StockTestSuite) TestSummaryDropsPriceData() {
	stock := Stock{
		ID:   "ABB",
		Name: "ABB Ltd",
		List: "Large Cap Stockholm",
		PriceData: []Bar{
			{Date: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), Close: 210},
		},
	}

	summary := stock.Summary()
	suite.Equal("ABB", summary.ID)
	suite.Equal("ABB Ltd", summary.Name)
	suite.Equal("Large Cap Stockholm", summary.List)
	suite.Nil(summary.PriceData)
}

func (suite *StockTestSuite) TestLastBar() {
	_, ok := Stock{ID: "EMPTY"}.LastBar()
	suite.False(ok)

	last := Bar{Date: time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC), Close: 12}
	bar, ok := Stock{ID: "X", PriceData: []Bar{{Close: 11}, last}}.LastBar()
	suite.True(ok)
	suite.Equal(last, bar)
	suite.Equal("2020-01-03", bar.Key())
}

func (suite *StockTestSuite) TestInLists() {
	stock := Stock{ID: "HEXA-B", List: "Mid Cap Stockholm"}

	suite.True(stock.InLists(nil))
	suite.True(stock.InLists([]string{"Large Cap Stockholm", "Mid Cap Stockholm"}))
	suite.False(stock.InLists([]string{"Small Cap Stockholm"}))
}

func (suite *StockTestSuite) TestDefaultRules() {
	rules := DefaultRules()

	suite.InDelta(1.2, rules.EntryFactor, 1e-12)
	suite.InDelta(5.0/6.0, rules.ExitFactor, 1e-12)
	suite.InDelta(11.0/12.0, rules.BearishRegimeExitFactor, 1e-12)
	suite.False(rules.EntryInBearishRegime)
	suite.False(rules.UseHighAndLow)
}

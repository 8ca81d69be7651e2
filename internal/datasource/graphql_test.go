package datasource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-flipper/internal/types"
	"github.com/rxtech-lab/argo-flipper/pkg/errors"
)

type GraphQLDataSourceTestSuite struct {
	suite.Suite
	server   *httptest.Server
	queries  []string
	response string
	status   int
}

func TestGraphQLDataSourceSuite(t *testing.T) {
	suite.Run(t, new(GraphQLDataSourceTestSuite))
}

func (suite *GraphQLDataSourceTestSuite) SetupTest() {
	suite.queries = nil
	suite.status = http.StatusOK

	router := mux.NewRouter()
	router.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		var request graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		suite.queries = append(suite.queries, request.Query)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(suite.status)
		w.Write([]byte(suite.response))
	}).Methods(http.MethodPost)

	suite.server = httptest.NewServer(router)
}

func (suite *GraphQLDataSourceTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *GraphQLDataSourceTestSuite) source() *GraphQLDataSource {
	return NewGraphQLDataSource(suite.server.URL+"/graphql", time.Second, nil)
}

func (suite *GraphQLDataSourceTestSuite) TestFetchStock() {
	suite.response = `{"data":{"stock":{"id":"ABB","name":"ABB Ltd","list":"Large Cap Stockholm","priceData":[
		{"open":210,"high":214,"low":209,"close":213,"date":"2020-01-03T00:00:00.000Z"},
		{"open":208,"high":211,"low":207,"close":210,"date":1577923200000},
		{"open":213,"high":216,"low":212,"close":215,"date":"2020-01-07"}
	]}}}`

	stock, err := suite.source().FetchStock(context.Background(), "ABB", nil)
	suite.Require().NoError(err)

	suite.Equal([]string{`{stock(id: "ABB") {id, name, list, priceData{open, high, low, close, date}}}`}, suite.queries)
	suite.Equal("ABB", stock.ID)
	suite.Equal("ABB Ltd", stock.Name)
	suite.Equal("Large Cap Stockholm", stock.List)
	suite.Require().Len(stock.PriceData, 3)

	// sorted oldest first regardless of the response order
	suite.Equal("2020-01-02", stock.PriceData[0].Key())
	suite.Equal("2020-01-03", stock.PriceData[1].Key())
	suite.Equal("2020-01-07", stock.PriceData[2].Key())
	suite.Equal(210.0, stock.PriceData[0].Close)
}

func (suite *GraphQLDataSourceTestSuite) TestFetchStockCustomFields() {
	suite.response = `{"data":{"stock":{"id":"ABB","name":"ABB Ltd","list":"Large Cap Stockholm"}}}`

	stock, err := suite.source().FetchStock(context.Background(), "ABB", SummaryFields)
	suite.Require().NoError(err)

	suite.Equal([]string{`{stock(id: "ABB") {id, name, list}}`}, suite.queries)
	suite.Nil(stock.PriceData)
}

func (suite *GraphQLDataSourceTestSuite) TestFetchStockErrors() {
	tests := []struct {
		name     string
		status   int
		response string
		code     errors.ErrorCode
	}{
		{"missing stock", http.StatusOK, `{"data":{"stock":null}}`, errors.ErrCodeDataNotFound},
		{"graphql error", http.StatusOK, `{"data":null,"errors":[{"message":"boom"}]}`, errors.ErrCodeQueryFailed},
		{"server error", http.StatusInternalServerError, `{}`, errors.ErrCodeDataSourceUnavailable},
		{"invalid body", http.StatusOK, `not json`, errors.ErrCodeQueryFailed},
		{"invalid date", http.StatusOK, `{"data":{"stock":{"id":"X","priceData":[{"date":"yesterday"}]}}}`, errors.ErrCodeQueryFailed},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.status = tc.status
			suite.response = tc.response

			_, err := suite.source().FetchStock(context.Background(), "X", nil)
			suite.Error(err)
			suite.True(errors.HasCode(err, tc.code), "got %v", err)
		})
	}
}

func (suite *GraphQLDataSourceTestSuite) TestFetchStockUnreachable() {
	source := NewGraphQLDataSource("http://127.0.0.1:1/graphql", 200*time.Millisecond, nil)

	_, err := source.FetchStock(context.Background(), "ABB", nil)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataSourceUnavailable))
}

func (suite *GraphQLDataSourceTestSuite) TestFetchStocks() {
	suite.response = `{"data":{"stocks":[
		{"id":"ABB","name":"ABB Ltd","list":"Large Cap Stockholm"},
		{"id":"HEXA-B","name":"Hexagon B","list":"Large Cap Stockholm","priceData":[{"open":1,"high":1,"low":1,"close":1,"date":"2020-01-02"}]}
	]}}`

	stocks, err := suite.source().FetchStocks(context.Background(), nil)
	suite.Require().NoError(err)

	suite.Equal([]string{"{stocks {id, name, list}}"}, suite.queries)
	suite.Equal([]types.Stock{
		{ID: "ABB", Name: "ABB Ltd", List: "Large Cap Stockholm"},
		{ID: "HEXA-B", Name: "Hexagon B", List: "Large Cap Stockholm"},
	}, stocks)
}

func (suite *GraphQLDataSourceTestSuite) TestWantsPriceData() {
	suite.True(wantsPriceData(nil))
	suite.True(wantsPriceData(types.DefaultStockFields))
	suite.False(wantsPriceData(SummaryFields))
}

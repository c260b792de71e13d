//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/dealership-sync/test/pact"

	easycars "github.com/Apurer/dealership-sync/internal/clients/http/easycars"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

// TestEasyCarsClientContract records what the sync client expects from ECService.
func TestEasyCarsClientContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.EasyCarsConsumerName,
		Provider: pacttest.EasyCarsProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	bearer := matchers.Regex("Bearer tok-1", "^Bearer .+$")

	pact.AddInteraction().
		Given(pacttest.StateEasyCarsAccount).
		UponReceiving("a token request with the public id and secret key").
		WithRequest("POST", "/GetToken", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"PublicID":  matchers.S(pacttest.PublicID),
				"SecretKey": matchers.S(pacttest.SecretKey),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.JSONBody(matchers.Map{
				"Code":      matchers.Like(0),
				"Token":     matchers.Like("tok-1"),
				"ExpiresIn": matchers.Like(3600),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateEasyCarsAccount).
		UponReceiving("a request for advertised stock").
		WithRequest("GET", "/StockService/GetAdvertisementStocks", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
			b.Query("AccountNumber", matchers.S(pacttest.AccountNumber))
			b.Query("AccountSecret", matchers.S(pacttest.AccountSecret))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.JSONBody(matchers.Map{
				"Code":   matchers.Like(0),
				"Stocks": matchers.EachLike(pacttest.ExampleStockItem(), 1),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateEasyCarsAccount).
		UponReceiving("a request to create a lead").
		WithRequest("POST", "/LeadService/CreateLead", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{
				"AccountNumber": matchers.S(pacttest.AccountNumber),
				"AccountSecret": matchers.S(pacttest.AccountSecret),
				"CustomerName":  matchers.Like("Jane Doe"),
				"CustomerEmail": matchers.Like("jane@example.com"),
			})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.JSONBody(matchers.Map{
				"Code":       matchers.Like(0),
				"LeadNumber": matchers.Like("LN-1001"),
				"CustomerNo": matchers.Like("C-77"),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		host := config.Host
		if host == "" {
			host = "localhost"
		}
		client := easycars.NewClient(
			easycars.WithBaseURL(easycars.EnvironmentTest, fmt.Sprintf("http://%s:%d", host, config.Port)),
			easycars.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
		)
		creds := easycars.Credentials{
			ClientID:      pacttest.PublicID,
			ClientSecret:  pacttest.SecretKey,
			AccountNumber: pacttest.AccountNumber,
			AccountSecret: pacttest.AccountSecret,
			Environment:   easycars.EnvironmentTest,
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		items, err := client.GetAdvertisementStocks(ctx, creds)
		if err != nil {
			return fmt.Errorf("get stock: %w", err)
		}
		if len(items) == 0 || items[0].StockNumber == "" {
			return fmt.Errorf("expected at least one stock item, got %+v", items)
		}

		created, err := client.CreateLead(ctx, creds, easycars.CreateLeadRequest{
			LeadPayload: easycars.LeadPayload{CustomerName: "Jane Doe", CustomerEmail: "jane@example.com"},
		})
		if err != nil {
			return fmt.Errorf("create lead: %w", err)
		}
		if created.LeadNumber == "" {
			return fmt.Errorf("expected a lead number")
		}
		return nil
	})
	require.NoError(t, err)
}

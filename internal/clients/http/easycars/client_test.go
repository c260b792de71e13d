package easycars

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{
	ClientID:      "public-id",
	ClientSecret:  "secret-key",
	AccountNumber: "EC114575",
	AccountSecret: "acct-secret",
	Environment:   EnvironmentTest,
	YardCode:      "MAIN",
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var tokenCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/GetToken", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		var req tokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "public-id", req.PublicID)
		require.Equal(t, "secret-key", req.SecretKey)
		_ = json.NewEncoder(w).Encode(tokenResponse{Token: "tok-1", ExpiresIn: 3600})
	})
	mux.HandleFunc("/", handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(EnvironmentTest, srv.URL), WithHTTPClient(srv.Client())), &tokenCalls
}

func TestGetAdvertisementStocksSendsAccountQueryAndCachesToken(t *testing.T) {
	client, tokenCalls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/StockService/GetAdvertisementStocks", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		require.Equal(t, "EC114575", r.URL.Query().Get("AccountNumber"))
		require.Equal(t, "acct-secret", r.URL.Query().Get("AccountSecret"))
		require.Equal(t, "MAIN", r.URL.Query().Get("YardCode"))
		_, _ = w.Write([]byte(`{"Code":0,"Stocks":[{"StockNumber":"S1","VIN":"vin1","Make":"Toyota","AdvertisedPrice":"45990.50","Odometer":12000,"ImageURLs":["https://img/1.jpg"]}]}`))
	})

	ctx := context.Background()
	items, err := client.GetAdvertisementStocks(ctx, testCreds)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "S1", items[0].StockNumber)
	require.True(t, decimal.RequireFromString("45990.50").Equal(items[0].AdvertisedPrice))
	require.Equal(t, []string{"https://img/1.jpg"}, items[0].ImageURLs)

	_, err = client.GetAdvertisementStocks(ctx, testCreds)
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(tokenCalls))
}

func TestTokenIsRefreshedAfterExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	client, tokenCalls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Code":0,"Stocks":[]}`))
	})
	client.now = func() time.Time { return now }

	_, err := client.GetAdvertisementStocks(context.Background(), testCreds)
	require.NoError(t, err)
	now = now.Add(2 * time.Hour)
	_, err = client.GetAdvertisementStocks(context.Background(), testCreds)
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(tokenCalls))
}

func TestUnauthorizedResponseRetriesWithFreshToken(t *testing.T) {
	var calls int32
	client, tokenCalls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"Code":0,"Stocks":[]}`))
	})

	_, err := client.GetAdvertisementStocks(context.Background(), testCreds)
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(tokenCalls))
}

func TestCreateLeadReturnsIdentifiers(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/LeadService/CreateLead", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "EC114575", body["AccountNumber"])
		require.Equal(t, "Jane Doe", body["CustomerName"])
		require.NotContains(t, body, "VehicleMake")
		_, _ = w.Write([]byte(`{"Code":0,"LeadNumber":"LN-1","CustomerNo":"C-9"}`))
	})

	resp, err := client.CreateLead(context.Background(), testCreds, CreateLeadRequest{
		LeadPayload: LeadPayload{CustomerName: "Jane Doe", CustomerEmail: "jane@example.com"},
	})
	require.NoError(t, err)
	require.Equal(t, "LN-1", resp.LeadNumber)
	require.Equal(t, "C-9", resp.CustomerNo)
}

func TestGetLeadDetailKeepsRawBody(t *testing.T) {
	body := `{"Code":0,"LeadNumber":"LN-1","LeadStatus":30,"CustomerName":"Jane"}`
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "LN-1", r.URL.Query().Get("LeadNumber"))
		_, _ = w.Write([]byte(body))
	})

	resp, err := client.GetLeadDetail(context.Background(), testCreds, "LN-1")
	require.NoError(t, err)
	require.NotNil(t, resp.LeadStatus)
	require.Equal(t, 30, *resp.LeadStatus)
	require.JSONEq(t, body, string(resp.Raw))
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		body      string
		temporary bool
	}{
		{name: "envelope temporary code", status: http.StatusOK, body: `{"Code":7,"ResponseMessage":"busy"}`, temporary: true},
		{name: "envelope validation code", status: http.StatusOK, body: `{"Code":5,"ResponseMessage":"bad yard"}`},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `slow down`, temporary: true},
		{name: "gateway unavailable", status: http.StatusServiceUnavailable, temporary: true},
		{name: "server error", status: http.StatusInternalServerError, body: `boom`},
		{name: "bad request", status: http.StatusBadRequest, body: `{"Code":5,"ResponseMessage":"invalid"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.GetAdvertisementStocks(context.Background(), testCreds)
			require.Error(t, err)
			require.Equal(t, tc.temporary, IsTemporary(err))
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
		})
	}
}

func TestProductionEnvironmentUsesProductionHost(t *testing.T) {
	client := NewClient(WithBaseURL(EnvironmentProduction, "https://prod.example/ECService/"))
	require.Equal(t, "https://prod.example/ECService", client.baseURL("production"))
	require.Equal(t, DefaultTestBaseURL, client.baseURL("anything"))
}

package easycars

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Response codes carried in every EasyCars envelope.
const (
	CodeSuccess        = 0
	CodeAuthentication = 1
	CodeValidation     = 5
	CodeTemporary      = 7
	CodeFatal          = 9
)

// APIVersion tags raw payloads so stored snapshots can be re-interpreted later.
const APIVersion = "ECService-v1"

// Credentials is a decrypted, run-scoped snapshot of a dealership's EasyCars account.
type Credentials struct {
	ClientID      string
	ClientSecret  string
	AccountNumber string
	AccountSecret string
	Environment   string
	YardCode      string
}

// Envelope is the common header of EasyCars responses.
type Envelope struct {
	Code            int    `json:"Code"`
	ResponseMessage string `json:"ResponseMessage,omitempty"`
}

type tokenRequest struct {
	PublicID  string `json:"PublicID"`
	SecretKey string `json:"SecretKey"`
}

type tokenResponse struct {
	Envelope
	Token     string `json:"Token"`
	ExpiresIn int    `json:"ExpiresIn"`
}

// StockItem is one advertised vehicle returned by the stock service.
type StockItem struct {
	StockNumber     string          `json:"StockNumber"`
	VIN             string          `json:"VIN,omitempty"`
	Make            string          `json:"Make,omitempty"`
	Model           string          `json:"Model,omitempty"`
	Badge           string          `json:"Badge,omitempty"`
	YearGroup       int             `json:"YearGroup,omitempty"`
	Odometer        int             `json:"Odometer"`
	AdvertisedPrice decimal.Decimal `json:"AdvertisedPrice"`
	NewUsed         string          `json:"NewUsed,omitempty"`
	StockStatus     string          `json:"StockStatus,omitempty"`
	Comments        string          `json:"Comments,omitempty"`
	Body            string          `json:"Body,omitempty"`
	Colour          string          `json:"Colour,omitempty"`
	Transmission    string          `json:"Transmission,omitempty"`
	FuelType        string          `json:"FuelType,omitempty"`
	YardCode        string          `json:"YardCode,omitempty"`
	ImageURLs       []string        `json:"ImageURLs,omitempty"`
}

// StockListResponse wraps GetAdvertisementStocks.
type StockListResponse struct {
	Envelope
	Stocks []StockItem `json:"Stocks"`
}

// LeadPayload holds the customer and vehicle fields shared by create and update.
type LeadPayload struct {
	CustomerNo      *string          `json:"CustomerNo,omitempty"`
	CustomerName    string           `json:"CustomerName,omitempty"`
	CustomerEmail   string           `json:"CustomerEmail,omitempty"`
	CustomerPhone   string           `json:"CustomerPhone,omitempty"`
	Comments        string           `json:"Comments,omitempty"`
	VehicleMake     *string          `json:"VehicleMake,omitempty"`
	VehicleModel    *string          `json:"VehicleModel,omitempty"`
	VehicleYear     *int             `json:"VehicleYear,omitempty"`
	VehiclePrice    *decimal.Decimal `json:"VehiclePrice,omitempty"`
	StockNumber     *string          `json:"StockNumber,omitempty"`
	Rating          *int             `json:"Rating,omitempty"`
	FinanceStatus   *int             `json:"FinanceStatus,omitempty"`
	VehicleInterest *int             `json:"VehicleInterest,omitempty"`
}

// CreateLeadRequest is sent for leads EasyCars has not seen yet.
type CreateLeadRequest struct {
	AccountNumber string `json:"AccountNumber"`
	AccountSecret string `json:"AccountSecret"`
	LeadPayload
}

// CreateLeadResponse carries the identifiers EasyCars assigned.
type CreateLeadResponse struct {
	Envelope
	LeadNumber string `json:"LeadNumber"`
	CustomerNo string `json:"CustomerNo"`
}

// UpdateLeadRequest updates an existing remote lead.
type UpdateLeadRequest struct {
	AccountNumber string `json:"AccountNumber"`
	AccountSecret string `json:"AccountSecret"`
	LeadNumber    string `json:"LeadNumber"`
	LeadStatus    *int   `json:"LeadStatus,omitempty"`
	LeadPayload
}

// UpdateLeadResponse echoes the lead number.
type UpdateLeadResponse struct {
	Envelope
	LeadNumber string `json:"LeadNumber"`
}

// LeadDetailResponse describes a remote lead.
type LeadDetailResponse struct {
	Envelope
	LeadNumber      string `json:"LeadNumber"`
	CustomerNo      string `json:"CustomerNo,omitempty"`
	CustomerName    string `json:"CustomerName,omitempty"`
	CustomerEmail   string `json:"CustomerEmail,omitempty"`
	CustomerPhone   string `json:"CustomerPhone,omitempty"`
	CustomerMobile  string `json:"CustomerMobile,omitempty"`
	Comments        string `json:"Comments,omitempty"`
	LeadStatus      *int   `json:"LeadStatus,omitempty"`
	Rating          *int   `json:"Rating,omitempty"`
	FinanceStatus   *int   `json:"FinanceStatus,omitempty"`
	VehicleInterest *int   `json:"VehicleInterest,omitempty"`
	StockNumber     string `json:"StockNumber,omitempty"`

	// Raw is the verbatim response body.
	Raw json.RawMessage `json:"-"`
}

package application

import (
	"fmt"
	"strings"
	"time"

	client "github.com/Apurer/dealership-sync/internal/clients/http/easycars"
	inventory "github.com/Apurer/dealership-sync/internal/domains/inventory/domain"
	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
)

// EasyCars lead status codes.
const (
	LeadStatusCodeReceived   = 10
	LeadStatusCodeInProgress = 30
	LeadStatusCodeWon        = 50
	LeadStatusCodeLost       = 60
	LeadStatusCodeDeleted    = 90
)

const financeRequested = 1

// MapToCreateRequest builds the payload for a lead EasyCars has not seen yet.
func MapToCreateRequest(lead *leads.Lead, accountNumber, accountSecret string, vehicle *inventory.Vehicle) (client.CreateLeadRequest, error) {
	if lead == nil {
		return client.CreateLeadRequest{}, ErrNilLead
	}
	return client.CreateLeadRequest{
		AccountNumber: accountNumber,
		AccountSecret: accountSecret,
		LeadPayload:   leadPayload(lead, vehicle),
	}, nil
}

// MapToUpdateRequest builds a full update carrying the existing external lead number.
func MapToUpdateRequest(lead *leads.Lead, externalLeadNumber, accountNumber, accountSecret string, vehicle *inventory.Vehicle) (client.UpdateLeadRequest, error) {
	if lead == nil {
		return client.UpdateLeadRequest{}, ErrNilLead
	}
	externalLeadNumber = strings.TrimSpace(externalLeadNumber)
	if externalLeadNumber == "" {
		return client.UpdateLeadRequest{}, ErrMissingLeadNumber
	}
	code, err := MapLeadStatusToEasyCars(lead.Status)
	if err != nil {
		return client.UpdateLeadRequest{}, err
	}
	return client.UpdateLeadRequest{
		AccountNumber: accountNumber,
		AccountSecret: accountSecret,
		LeadNumber:    externalLeadNumber,
		LeadStatus:    &code,
		LeadPayload:   leadPayload(lead, vehicle),
	}, nil
}

// MapToStatusOnlyUpdateRequest builds a minimal update that only moves the remote status.
func MapToStatusOnlyUpdateRequest(lead *leads.Lead, accountNumber, accountSecret string) (client.UpdateLeadRequest, error) {
	if lead == nil {
		return client.UpdateLeadRequest{}, ErrNilLead
	}
	if !lead.HasExternalLeadNumber() {
		return client.UpdateLeadRequest{}, ErrMissingLeadNumber
	}
	code, err := MapLeadStatusToEasyCars(lead.Status)
	if err != nil {
		return client.UpdateLeadRequest{}, err
	}
	return client.UpdateLeadRequest{
		AccountNumber: accountNumber,
		AccountSecret: accountSecret,
		LeadNumber:    strings.TrimSpace(*lead.ExternalLeadNumber),
		LeadStatus:    &code,
	}, nil
}

// MapLeadStatusToEasyCars converts a local status to its remote code.
func MapLeadStatusToEasyCars(status leads.Status) (int, error) {
	switch status {
	case leads.StatusReceived:
		return LeadStatusCodeReceived, nil
	case leads.StatusInProgress:
		return LeadStatusCodeInProgress, nil
	case leads.StatusWon:
		return LeadStatusCodeWon, nil
	case leads.StatusLost:
		return LeadStatusCodeLost, nil
	case leads.StatusDeleted:
		return LeadStatusCodeDeleted, nil
	default:
		return 0, fmt.Errorf("%w: %q", leads.ErrUnknownStatus, status)
	}
}

// MapLeadStatusFromInt is the exact inverse used by status sync.
func MapLeadStatusFromInt(code int) (leads.Status, error) {
	switch code {
	case LeadStatusCodeReceived:
		return leads.StatusReceived, nil
	case LeadStatusCodeInProgress:
		return leads.StatusInProgress, nil
	case LeadStatusCodeWon:
		return leads.StatusWon, nil
	case LeadStatusCodeLost:
		return leads.StatusLost, nil
	case LeadStatusCodeDeleted:
		return leads.StatusDeleted, nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownLeadStatusCode, code)
	}
}

// BucketLeadStatusFromInt is the lenient mapping used when importing a remote lead.
// Every code from 50 up lands in the closed bucket, stored as won, so remote Lost (60) and
// Deleted (90) leads arrive as won until the next lead status sync applies the exact status.
func BucketLeadStatusFromInt(code *int) leads.Status {
	switch {
	case code == nil:
		return leads.StatusReceived
	case *code >= LeadStatusCodeWon:
		return leads.StatusWon
	case *code == LeadStatusCodeInProgress:
		return leads.StatusInProgress
	default:
		return leads.StatusReceived
	}
}

// MapFromExternalLead builds a new local lead from a remote detail response.
func MapFromExternalLead(resp *client.LeadDetailResponse, dealershipID int64, now time.Time) (*leads.Lead, error) {
	if resp == nil {
		return nil, ErrNilLeadDetail
	}
	if dealershipID <= 0 {
		return nil, inventory.ErrInvalidDealership
	}
	number := strings.TrimSpace(resp.LeadNumber)
	if number == "" {
		return nil, ErrMissingLeadNumber
	}
	phone := strings.TrimSpace(resp.CustomerPhone)
	if phone == "" {
		phone = strings.TrimSpace(resp.CustomerMobile)
	}
	stamp := now
	lead := &leads.Lead{
		DealershipID:         dealershipID,
		Name:                 strings.TrimSpace(resp.CustomerName),
		Email:                strings.TrimSpace(resp.CustomerEmail),
		Phone:                phone,
		Message:              resp.Comments,
		Status:               BucketLeadStatusFromInt(resp.LeadStatus),
		ExternalLeadNumber:   &number,
		Rating:               ratingFromCode(resp.Rating),
		FinanceInterest:      resp.FinanceStatus != nil && *resp.FinanceStatus == financeRequested,
		VehicleInterestType:  interestFromCode(resp.VehicleInterest),
		RawPayload:           append([]byte(nil), resp.Raw...),
		LastSyncedFromRemote: &stamp,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if customer := strings.TrimSpace(resp.CustomerNo); customer != "" {
		lead.ExternalCustomerNumber = &customer
	}
	return lead, nil
}

// UpdateLeadFromResponse refreshes only the EasyCars-derived fields of lead.
func UpdateLeadFromResponse(lead *leads.Lead, resp *client.LeadDetailResponse, now time.Time) error {
	if lead == nil {
		return ErrNilLead
	}
	if resp == nil {
		return ErrNilLeadDetail
	}
	if number := strings.TrimSpace(resp.LeadNumber); number != "" {
		lead.ExternalLeadNumber = &number
	}
	if customer := strings.TrimSpace(resp.CustomerNo); customer != "" {
		lead.ExternalCustomerNumber = &customer
	}
	if len(resp.Raw) > 0 {
		lead.RawPayload = append([]byte(nil), resp.Raw...)
	}
	stamp := now
	lead.LastSyncedFromRemote = &stamp
	return nil
}

// IsExistingLead reports whether lead is already linked to the remote lead in resp.
func IsExistingLead(lead *leads.Lead, resp *client.LeadDetailResponse) bool {
	if !lead.HasExternalLeadNumber() || resp == nil {
		return false
	}
	return strings.TrimSpace(*lead.ExternalLeadNumber) == strings.TrimSpace(resp.LeadNumber)
}

func leadPayload(lead *leads.Lead, vehicle *inventory.Vehicle) client.LeadPayload {
	payload := client.LeadPayload{
		CustomerNo:      cloneString(lead.ExternalCustomerNumber),
		CustomerName:    strings.TrimSpace(lead.Name),
		CustomerEmail:   strings.TrimSpace(lead.Email),
		CustomerPhone:   strings.TrimSpace(lead.Phone),
		Comments:        lead.Message,
		Rating:          ratingCode(lead.Rating),
		VehicleInterest: interestCode(lead.VehicleInterestType),
	}
	if lead.FinanceInterest {
		finance := financeRequested
		payload.FinanceStatus = &finance
	}
	if vehicle != nil {
		vmake, model, year, price := vehicle.Make, vehicle.Model, vehicle.Year, vehicle.Price
		payload.VehicleMake = &vmake
		payload.VehicleModel = &model
		payload.VehicleYear = &year
		payload.VehiclePrice = &price
		if stock := strings.TrimSpace(vehicle.ExternalStockNumber); stock != "" {
			payload.StockNumber = &stock
		}
	}
	return payload
}

func ratingCode(rating *leads.Rating) *int {
	if rating == nil {
		return nil
	}
	var code int
	switch *rating {
	case leads.RatingHot:
		code = 1
	case leads.RatingWarm:
		code = 2
	case leads.RatingCold:
		code = 3
	default:
		return nil
	}
	return &code
}

func ratingFromCode(code *int) *leads.Rating {
	if code == nil {
		return nil
	}
	var rating leads.Rating
	switch *code {
	case 1:
		rating = leads.RatingHot
	case 2:
		rating = leads.RatingWarm
	case 3:
		rating = leads.RatingCold
	default:
		return nil
	}
	return &rating
}

func interestCode(interest *leads.VehicleInterestType) *int {
	if interest == nil {
		return nil
	}
	var code int
	switch *interest {
	case leads.InterestPurchase:
		code = 1
	case leads.InterestFinance:
		code = 2
	case leads.InterestTradeIn:
		code = 3
	case leads.InterestServiceRepair:
		code = 4
	case leads.InterestOther:
		code = 5
	default:
		return nil
	}
	return &code
}

func interestFromCode(code *int) *leads.VehicleInterestType {
	if code == nil {
		return nil
	}
	var interest leads.VehicleInterestType
	switch *code {
	case 1:
		interest = leads.InterestPurchase
	case 2:
		interest = leads.InterestFinance
	case 3:
		interest = leads.InterestTradeIn
	case 4:
		interest = leads.InterestServiceRepair
	case 5:
		interest = leads.InterestOther
	default:
		return nil
	}
	return &interest
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}

package ports

import (
	"context"
	"errors"
	"io"

	client "github.com/Apurer/dealership-sync/internal/clients/http/easycars"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("easycars record not found")

// ImageSyncFlag toggles remote image import during stock sync.
const ImageSyncFlag = "easycars.image_sync_enabled"

// CredentialRepository loads the encrypted account for a dealership.
// It returns (nil, nil) when the dealership has no credential.
type CredentialRepository interface {
	GetByDealership(ctx context.Context, dealershipID int64) (*domain.Credential, error)
}

// CredentialWriter stores or replaces the credential for its dealership.
type CredentialWriter interface {
	Save(ctx context.Context, cred domain.Credential) (*domain.Credential, error)
}

// Decryptor turns stored ciphertext back into plaintext.
type Decryptor interface {
	Decrypt(ctx context.Context, ciphertext, iv string) (string, error)
}

// EasyCarsAPI is the outbound port to the remote dealer-management system.
type EasyCarsAPI interface {
	GetAdvertisementStocks(ctx context.Context, creds client.Credentials) ([]client.StockItem, error)
	CreateLead(ctx context.Context, creds client.Credentials, req client.CreateLeadRequest) (*client.CreateLeadResponse, error)
	UpdateLead(ctx context.Context, creds client.Credentials, req client.UpdateLeadRequest) (*client.UpdateLeadResponse, error)
	GetLeadDetail(ctx context.Context, creds client.Credentials, leadNumber string) (*client.LeadDetailResponse, error)
}

// ImageDownloader fetches remote image bytes.
type ImageDownloader interface {
	Download(ctx context.Context, url string) ([]byte, string, error)
}

// ImageUploader stores an image in object storage and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, r io.Reader, contentType, name string) (string, error)
}

// FeatureFlags answers boolean feature toggles.
type FeatureFlags interface {
	GetBool(ctx context.Context, key string, def bool) bool
}

// SyncLogRepository stores the audit trail of sync runs.
type SyncLogRepository interface {
	Save(ctx context.Context, log domain.SyncLog) error
	ListByDealership(ctx context.Context, dealershipID int64, limit int) ([]domain.SyncLog, error)
}

package application

import (
	"context"
	"fmt"
	"strings"

	client "github.com/Apurer/dealership-sync/internal/clients/http/easycars"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
	inventory "github.com/Apurer/dealership-sync/internal/domains/inventory/domain"
)

// CredentialProvider resolves a dealership's EasyCars account into a run-local plaintext snapshot.
type CredentialProvider struct {
	repo      ports.CredentialRepository
	decryptor ports.Decryptor
}

// NewCredentialProvider wires the provider with its dependencies.
func NewCredentialProvider(repo ports.CredentialRepository, decryptor ports.Decryptor) *CredentialProvider {
	return &CredentialProvider{repo: repo, decryptor: decryptor}
}

// Load returns ErrNoCredentials when the dealership has no active credential.
func (p *CredentialProvider) Load(ctx context.Context, dealershipID int64) (client.Credentials, error) {
	if dealershipID <= 0 {
		return client.Credentials{}, inventory.ErrInvalidDealership
	}
	cred, err := p.repo.GetByDealership(ctx, dealershipID)
	if err != nil {
		return client.Credentials{}, fmt.Errorf("load credentials: %w", err)
	}
	if cred == nil || !cred.Active {
		return client.Credentials{}, ErrNoCredentials
	}

	creds := client.Credentials{
		Environment: string(domain.ParseEnvironment(string(cred.Environment))),
		YardCode:    strings.TrimSpace(cred.YardCode),
	}
	fields := []struct {
		name string
		enc  string
		dst  *string
	}{
		{name: "client id", enc: cred.ClientIDEnc, dst: &creds.ClientID},
		{name: "client secret", enc: cred.ClientSecretEnc, dst: &creds.ClientSecret},
		{name: "account number", enc: cred.AccountNumberEnc, dst: &creds.AccountNumber},
		{name: "account secret", enc: cred.AccountSecretEnc, dst: &creds.AccountSecret},
	}
	for _, field := range fields {
		plain, err := p.decryptor.Decrypt(ctx, field.enc, cred.IV)
		if err != nil {
			return client.Credentials{}, fmt.Errorf("decrypt %s: %w", field.name, err)
		}
		*field.dst = plain
	}
	return creds, nil
}

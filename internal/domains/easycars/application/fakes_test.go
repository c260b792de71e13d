package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	client "github.com/Apurer/dealership-sync/internal/clients/http/easycars"
	ecmemory "github.com/Apurer/dealership-sync/internal/domains/easycars/adapters/memory"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
	invmemory "github.com/Apurer/dealership-sync/internal/domains/inventory/adapters/memory"
	leadmemory "github.com/Apurer/dealership-sync/internal/domains/leads/adapters/memory"
)

const testDealership int64 = 7

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

type plainDecryptor struct{}

func (plainDecryptor) Decrypt(_ context.Context, ciphertext, _ string) (string, error) {
	return ciphertext, nil
}

type fakeAPI struct {
	mu          sync.Mutex
	stock       []client.StockItem
	stockErr    error
	details     map[string]*client.LeadDetailResponse
	detailErrs  map[string]error
	createResp  *client.CreateLeadResponse
	createErr   error
	updateErr   error
	creates     []client.CreateLeadRequest
	updates     []client.UpdateLeadRequest
	detailCalls int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		details:    map[string]*client.LeadDetailResponse{},
		detailErrs: map[string]error{},
		createResp: &client.CreateLeadResponse{LeadNumber: "LN-100", CustomerNo: "C-100"},
	}
}

func (f *fakeAPI) GetAdvertisementStocks(_ context.Context, _ client.Credentials) ([]client.StockItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stockErr != nil {
		return nil, f.stockErr
	}
	return append([]client.StockItem(nil), f.stock...), nil
}

func (f *fakeAPI) CreateLead(_ context.Context, _ client.Credentials, req client.CreateLeadRequest) (*client.CreateLeadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	resp := *f.createResp
	return &resp, nil
}

func (f *fakeAPI) UpdateLead(_ context.Context, _ client.Credentials, req client.UpdateLeadRequest) (*client.UpdateLeadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, req)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &client.UpdateLeadResponse{LeadNumber: req.LeadNumber}, nil
}

func (f *fakeAPI) GetLeadDetail(_ context.Context, _ client.Credentials, leadNumber string) (*client.LeadDetailResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	if err := f.detailErrs[leadNumber]; err != nil {
		return nil, err
	}
	detail, ok := f.details[leadNumber]
	if !ok {
		return nil, &client.APIError{Operation: "GetLeadDetail", Code: client.CodeValidation, Message: "lead not found"}
	}
	clone := *detail
	return &clone, nil
}

func (f *fakeAPI) setRemoteStatus(leadNumber string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details[leadNumber] = &client.LeadDetailResponse{LeadNumber: leadNumber, LeadStatus: &code}
}

type fakeDownloader struct {
	mu     sync.Mutex
	images map[string][]byte
	calls  int
}

func (d *fakeDownloader) Download(_ context.Context, url string) ([]byte, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	data, ok := d.images[url]
	if !ok {
		return nil, "", fmt.Errorf("download image: unexpected status 404 Not Found")
	}
	return data, "image/jpeg", nil
}

type fakeUploader struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (u *fakeUploader) Upload(_ context.Context, r io.Reader, _ string, name string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	u.names = append(u.names, name)
	return "https://cdn.example/" + name, nil
}

type staticFlags map[string]bool

func (f staticFlags) GetBool(_ context.Context, key string, def bool) bool {
	if value, ok := f[key]; ok {
		return value
	}
	return def
}

type harness struct {
	svc        *Service
	api        *fakeAPI
	creds      *ecmemory.CredentialStore
	logs       *ecmemory.SyncLogStore
	vehicles   *invmemory.VehicleRepository
	payloads   *invmemory.StockPayloadRepository
	leads      *leadmemory.Repository
	conflicts  *leadmemory.ConflictStore
	downloader *fakeDownloader
	uploader   *fakeUploader
	flags      staticFlags
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	clock := func() time.Time { return testNow }
	h := &harness{
		api:        newFakeAPI(),
		creds:      ecmemory.NewCredentialStore(),
		logs:       ecmemory.NewSyncLogStore(),
		vehicles:   invmemory.NewVehicleRepository(invmemory.WithClock(clock)),
		payloads:   invmemory.NewStockPayloadRepository(),
		leads:      leadmemory.NewRepository(leadmemory.WithClock(clock)),
		conflicts:  leadmemory.NewConflictStore(),
		downloader: &fakeDownloader{images: map[string][]byte{}},
		uploader:   &fakeUploader{},
		flags:      staticFlags{},
	}
	h.creds.Put(domain.Credential{
		DealershipID:     testDealership,
		ClientIDEnc:      "public-id",
		ClientSecretEnc:  "secret-key",
		AccountNumberEnc: "EC114575",
		AccountSecretEnc: "acct-secret",
		IV:               "iv",
		Environment:      domain.EnvironmentTest,
		Active:           true,
	})
	var seq int
	base := []Option{
		WithClock(clock),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	}
	svc, err := NewService(Dependencies{
		Credentials:   h.creds,
		Decryptor:     plainDecryptor{},
		API:           h.api,
		Vehicles:      h.vehicles,
		StockPayloads: h.payloads,
		Leads:         h.leads,
		Conflicts:     h.conflicts,
		SyncLogs:      h.logs,
		Images:        NewImageImporter(h.downloader, h.uploader, h.flags, nil),
	}, append(base, opts...)...)
	require.NoError(t, err)
	h.svc = svc
	return h
}

var errBoom = errors.New("boom")

var _ ports.EasyCarsAPI = (*fakeAPI)(nil)

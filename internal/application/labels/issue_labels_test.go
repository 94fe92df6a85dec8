package labels_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/application/labels"
	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
	"github.com/labelhub/labelhub-api/internal/domain/repository"
	"github.com/labelhub/labelhub-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeAccountRepo struct {
	accounts map[string]*entity.Account
}

func (f *fakeAccountRepo) Create(a *entity.Account) error { f.accounts[a.ID] = a; return nil }
func (f *fakeAccountRepo) GetByID(id string) (*entity.Account, error) {
	if a, ok := f.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}
func (f *fakeAccountRepo) GetByEmail(email string) (*entity.Account, error) { return nil, nil }
func (f *fakeAccountRepo) GetByIDForUpdate(id string) (*entity.Account, error) {
	return f.GetByID(id)
}
func (f *fakeAccountRepo) List(limit, offset int) ([]*entity.Account, error) { return nil, nil }
func (f *fakeAccountRepo) UpdateLedger(a *entity.Account) error {
	stored, ok := f.accounts[a.ID]
	if !ok {
		return errors.New("cuenta inexistente")
	}
	stored.AvailableBalance = a.AvailableBalance
	stored.TotalDeposit = a.TotalDeposit
	stored.TotalGeneratedLabels = a.TotalGeneratedLabels
	stored.UpdatedAt = a.UpdatedAt
	return nil
}
func (f *fakeAccountRepo) SetBlocked(id string, blocked bool) error           { return nil }
func (f *fakeAccountRepo) SetDealer(id string, isDealer bool) error           { return nil }
func (f *fakeAccountRepo) SetRate(id string, rate decimal.Decimal) error      { return nil }
func (f *fakeAccountRepo) SetLoggedIn(id string, li bool, dev string) error   { return nil }
func (f *fakeAccountRepo) Delete(id string) error                             { return nil }

type fakeSubUserRepo struct {
	subUsers map[string]*entity.SubUser // key dealerID/subUserID
}

func subKey(dealerID, subUserID string) string { return dealerID + "/" + subUserID }

func (f *fakeSubUserRepo) Create(su *entity.SubUser) error {
	f.subUsers[subKey(su.DealerID, su.ID)] = su
	return nil
}
func (f *fakeSubUserRepo) GetByID(dealerID, subUserID string) (*entity.SubUser, error) {
	if su, ok := f.subUsers[subKey(dealerID, subUserID)]; ok {
		cp := *su
		return &cp, nil
	}
	return nil, nil
}
func (f *fakeSubUserRepo) GetByIDForUpdate(dealerID, subUserID string) (*entity.SubUser, error) {
	return f.GetByID(dealerID, subUserID)
}
func (f *fakeSubUserRepo) GetByEmail(dealerID, email string) (*entity.SubUser, error) {
	return nil, nil
}
func (f *fakeSubUserRepo) ListByDealer(dealerID string, limit, offset int) ([]*entity.SubUser, error) {
	return nil, nil
}
func (f *fakeSubUserRepo) UpdateLedger(su *entity.SubUser) error {
	stored, ok := f.subUsers[subKey(su.DealerID, su.ID)]
	if !ok {
		return errors.New("sub-usuario inexistente")
	}
	stored.AvailableBalance = su.AvailableBalance
	stored.TotalDeposit = su.TotalDeposit
	stored.TotalGeneratedLabels = su.TotalGeneratedLabels
	stored.UpdatedAt = su.UpdatedAt
	return nil
}
func (f *fakeSubUserRepo) SetRate(dealerID, subUserID string, rate decimal.Decimal) error {
	return nil
}
func (f *fakeSubUserRepo) Delete(dealerID, subUserID string) error { return nil }

type fakeHistoryRepo struct {
	balanceEntries []*entity.BalanceEntry
	bulkEvents     []*entity.BulkEvent
	labels         []*entity.Label
}

func (f *fakeHistoryRepo) AppendBalanceEntry(e *entity.BalanceEntry) error {
	f.balanceEntries = append(f.balanceEntries, e)
	return nil
}
func (f *fakeHistoryRepo) ListBalanceEntries(o entity.OwnerRef, l, off int) ([]*entity.BalanceEntry, error) {
	return f.balanceEntries, nil
}
func (f *fakeHistoryRepo) SetBalanceEntryStatus(accountID, entryID, status string) error { return nil }
func (f *fakeHistoryRepo) CreateBulkEvent(ev *entity.BulkEvent) error {
	f.bulkEvents = append(f.bulkEvents, ev)
	return nil
}
func (f *fakeHistoryRepo) AppendLabel(l *entity.Label) error {
	f.labels = append(f.labels, l)
	return nil
}
func (f *fakeHistoryRepo) ListLabels(o entity.OwnerRef) ([]*entity.Label, error) { return f.labels, nil }
func (f *fakeHistoryRepo) ListBulkEvents(o entity.OwnerRef) ([]*entity.BulkEvent, error) {
	return f.bulkEvents, nil
}
func (f *fakeHistoryRepo) GetBulkEvent(o entity.OwnerRef, id string) (*entity.BulkEvent, error) {
	for _, ev := range f.bulkEvents {
		if ev.ID == id {
			return ev, nil
		}
	}
	return nil, nil
}
func (f *fakeHistoryRepo) ListLabelsByBulkEvent(eventID string) ([]*entity.Label, error) {
	var out []*entity.Label
	for _, l := range f.labels {
		if l.BulkEventID == eventID {
			out = append(out, l)
		}
	}
	return out, nil
}

// fakeTxRunner pasa los mismos fakes al callback; la atomicidad real la
// cubren los tests de integración de postgres.
type fakeTxRunner struct {
	accounts *fakeAccountRepo
	subUsers *fakeSubUserRepo
	history  *fakeHistoryRepo
}

func (f *fakeTxRunner) RunLedger(ctx context.Context, fn func(
	repository.AccountRepository,
	repository.SubUserRepository,
	repository.HistoryRepository,
) error) error {
	return fn(f.accounts, f.subUsers, f.history)
}

// fakeProvider cuenta llamadas y permite forzar fallos.
type fakeProvider struct {
	trackingCalls int
	barcodeCalls  int
	trackings     []string
	trackingErr   error
	barcodeErr    error
	emptyBarcode  bool
}

func (f *fakeProvider) GenerateTracking(ctx context.Context, vendor, class string, count int) ([]string, error) {
	f.trackingCalls++
	if f.trackingErr != nil {
		return nil, f.trackingErr
	}
	if f.trackings != nil {
		return f.trackings, nil
	}
	out := make([]string, count)
	for i := range out {
		out[i] = fmt.Sprintf("TRK-%d", i+1)
	}
	return out, nil
}

func (f *fakeProvider) GenerateBarcode(ctx context.Context, zip, tracking string) (string, error) {
	f.barcodeCalls++
	if f.barcodeErr != nil {
		return "", f.barcodeErr
	}
	if f.emptyBarcode {
		return "", nil
	}
	return "data:image/png;base64," + tracking, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc       *labels.IssueUseCase
	accounts *fakeAccountRepo
	subUsers *fakeSubUserRepo
	history  *fakeHistoryRepo
	provider *fakeProvider
}

func newFixture() *fixture {
	accounts := &fakeAccountRepo{accounts: map[string]*entity.Account{}}
	subUsers := &fakeSubUserRepo{subUsers: map[string]*entity.SubUser{}}
	history := &fakeHistoryRepo{}
	provider := &fakeProvider{}
	tx := &fakeTxRunner{accounts: accounts, subUsers: subUsers, history: history}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	return &fixture{
		uc:       labels.NewIssueUseCase(accounts, subUsers, tx, provider, log),
		accounts: accounts,
		subUsers: subUsers,
		history:  history,
		provider: provider,
	}
}

func (fx *fixture) addAccount(id string, rate, balance float64) *entity.Account {
	a := &entity.Account{
		ID:               id,
		Name:             "Cuenta " + id,
		Email:            id + "@test.local",
		Rate:             decimal.NewFromFloat(rate),
		AvailableBalance: decimal.NewFromFloat(balance),
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	fx.accounts.accounts[id] = a
	return a
}

func (fx *fixture) addSubUser(dealerID, id string, rate, balance float64) *entity.SubUser {
	su := &entity.SubUser{
		ID:               id,
		DealerID:         dealerID,
		Name:             "Sub " + id,
		Email:            id + "@test.local",
		Rate:             decimal.NewFromFloat(rate),
		AvailableBalance: decimal.NewFromFloat(balance),
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	fx.subUsers.subUsers[subKey(dealerID, id)] = su
	return su
}

func shipRequests(n int) []dto.ShipRequest {
	out := make([]dto.ShipRequest, n)
	for i := range out {
		out[i] = dto.ShipRequest{
			Carrier:          "usps",
			Vendor:           "stamps",
			LabelType:        "priority",
			Weight:           "1 lb",
			SenderName:       "Remitente",
			SenderZip:        "10001",
			RecipientName:    fmt.Sprintf("Destinatario %d", i+1),
			RecipientAddress: "123 Main St",
			RecipientCity:    "Miami",
			RecipientState:   "FL",
			RecipientZip:     "33101",
		}
	}
	return out
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// ──────────────────────────────────────────────────────────────────────────────
// Emisión bulk
// ──────────────────────────────────────────────────────────────────────────────

// Débito y contador escalan por rate×count: rate 5, 3 etiquetas → saldo
// 100→85 y contador +15, todo en un único evento bulk.
func TestIssueLabelsDebitsRateTimesCount(t *testing.T) {
	fx := newFixture()
	fx.addAccount("acc-1", 5, 100)
	owner := entity.OwnerRef{AccountID: "acc-1"}

	out, err := fx.uc.IssueLabels(context.Background(), owner, shipRequests(3))
	require.NoError(t, err)

	assert.True(t, out.AvailableBalance.Equal(dec(85)), "saldo: %s", out.AvailableBalance)
	assert.True(t, out.TotalGeneratedLabels.Equal(dec(15)), "contador: %s", out.TotalGeneratedLabels)
	require.Len(t, out.Labels, 3)
	assert.Equal(t, "TRK-1", out.Labels[0].TrackingNumber)
	assert.NotEmpty(t, out.Labels[0].Barcode)

	stored := fx.accounts.accounts["acc-1"]
	assert.True(t, stored.AvailableBalance.Equal(dec(85)))
	assert.True(t, stored.TotalGeneratedLabels.Equal(dec(15)))

	require.Len(t, fx.history.bulkEvents, 1)
	assert.Equal(t, 3, fx.history.bulkEvents[0].LabelCount)
	require.Len(t, fx.history.labels, 3)
	for _, l := range fx.history.labels {
		assert.Equal(t, fx.history.bulkEvents[0].ID, l.BulkEventID)
	}

	require.Len(t, fx.history.balanceEntries, 1)
	e := fx.history.balanceEntries[0]
	assert.True(t, e.PreviousBalance.Equal(dec(100)))
	assert.True(t, e.NewBalance.Equal(dec(85)))
	assert.Equal(t, entity.BalanceStatusPaid, e.Status)

	assert.Equal(t, 1, fx.provider.trackingCalls, "un solo tracking call por batch")
	assert.Equal(t, 3, fx.provider.barcodeCalls, "un barcode por etiqueta")
}

// Cuentas top-level conservan el comportamiento legado: el saldo puede quedar
// negativo y la entrada se marca unpaid.
func TestIssueLabelsTopLevelMayGoNegative(t *testing.T) {
	fx := newFixture()
	fx.addAccount("acc-1", 5, 10)

	out, err := fx.uc.IssueLabels(context.Background(), entity.OwnerRef{AccountID: "acc-1"}, shipRequests(3))
	require.NoError(t, err)

	assert.True(t, out.AvailableBalance.Equal(dec(-5)))
	require.Len(t, fx.history.balanceEntries, 1)
	assert.Equal(t, entity.BalanceStatusUnpaid, fx.history.balanceEntries[0].Status)
}

// Sub-usuario sin saldo: rechazo antes de tocar al proveedor, estado intacto.
func TestIssueLabelsSubUserInsufficientBalanceNoProviderCalls(t *testing.T) {
	fx := newFixture()
	fx.addAccount("dealer-1", 0, 0)
	fx.addSubUser("dealer-1", "sub-1", 2, 1)
	owner := entity.OwnerRef{AccountID: "dealer-1", SubUserID: "sub-1"}

	_, err := fx.uc.IssueLabels(context.Background(), owner, shipRequests(1))
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	assert.Equal(t, 0, fx.provider.trackingCalls)
	assert.Equal(t, 0, fx.provider.barcodeCalls)
	assert.True(t, fx.subUsers.subUsers[subKey("dealer-1", "sub-1")].AvailableBalance.Equal(dec(1)))
	assert.Empty(t, fx.history.balanceEntries)
	assert.Empty(t, fx.history.labels)
}

// El débito de un sub-usuario toca su ledger, nunca el del dealer padre.
func TestIssueLabelsSubUserDebitsOwnLedger(t *testing.T) {
	fx := newFixture()
	fx.addAccount("dealer-1", 9, 500)
	fx.addSubUser("dealer-1", "sub-1", 2, 100)
	owner := entity.OwnerRef{AccountID: "dealer-1", SubUserID: "sub-1"}

	out, err := fx.uc.IssueLabels(context.Background(), owner, shipRequests(3))
	require.NoError(t, err)

	assert.True(t, out.AvailableBalance.Equal(dec(94)))
	assert.True(t, out.TotalGeneratedLabels.Equal(dec(6)))

	su := fx.subUsers.subUsers[subKey("dealer-1", "sub-1")]
	assert.True(t, su.AvailableBalance.Equal(dec(94)))

	dealer := fx.accounts.accounts["dealer-1"]
	assert.True(t, dealer.AvailableBalance.Equal(dec(500)), "el dealer no se toca")
	assert.True(t, dealer.TotalGeneratedLabels.Equal(dec(0)))
}

// Mismatch del proveedor (menos trackings que etiquetas): abortar sin mutar.
func TestIssueLabelsProviderMismatchLeavesStateUntouched(t *testing.T) {
	fx := newFixture()
	fx.addAccount("acc-1", 5, 100)
	fx.provider.trackings = []string{"TRK-1", "TRK-2"} // pedimos 3

	_, err := fx.uc.IssueLabels(context.Background(), entity.OwnerRef{AccountID: "acc-1"}, shipRequests(3))
	require.ErrorIs(t, err, domain.ErrProviderMismatch)

	assert.True(t, fx.accounts.accounts["acc-1"].AvailableBalance.Equal(dec(100)))
	assert.Empty(t, fx.history.balanceEntries)
	assert.Empty(t, fx.history.bulkEvents)
	assert.Empty(t, fx.history.labels)
	assert.Equal(t, 0, fx.provider.barcodeCalls, "sin barcodes tras un mismatch")
}

func TestIssueLabelsTrackingErrorLeavesStateUntouched(t *testing.T) {
	fx := newFixture()
	fx.addAccount("acc-1", 5, 100)
	fx.provider.trackingErr = errors.New("proveedor caído")

	_, err := fx.uc.IssueLabels(context.Background(), entity.OwnerRef{AccountID: "acc-1"}, shipRequests(2))
	require.ErrorIs(t, err, domain.ErrProviderMismatch)
	assert.True(t, fx.accounts.accounts["acc-1"].AvailableBalance.Equal(dec(100)))
	assert.Empty(t, fx.history.labels)
}

// Fallo (o vacío) de barcode: abortar todo el batch antes del débito.
func TestIssueLabelsBarcodeFailureAbortsBeforeDebit(t *testing.T) {
	fx := newFixture()
	fx.addAccount("acc-1", 5, 100)
	fx.provider.emptyBarcode = true

	_, err := fx.uc.IssueLabels(context.Background(), entity.OwnerRef{AccountID: "acc-1"}, shipRequests(3))
	require.ErrorIs(t, err, domain.ErrBarcodeGeneration)

	assert.True(t, fx.accounts.accounts["acc-1"].AvailableBalance.Equal(dec(100)))
	assert.Empty(t, fx.history.balanceEntries)
	assert.Empty(t, fx.history.labels)
	assert.Equal(t, 1, fx.provider.barcodeCalls, "se aborta en el primer barcode fallido")
}

// Batch con (vendor, labelType) mezclado: inválido, sin llamadas al proveedor.
func TestIssueLabelsMixedBatchRejected(t *testing.T) {
	fx := newFixture()
	fx.addAccount("acc-1", 5, 100)

	reqs := shipRequests(2)
	reqs[1].Vendor = "otro-vendor"
	_, err := fx.uc.IssueLabels(context.Background(), entity.OwnerRef{AccountID: "acc-1"}, reqs)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, fx.provider.trackingCalls)

	_, err = fx.uc.IssueLabels(context.Background(), entity.OwnerRef{AccountID: "acc-1"}, nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIssueLabelsBlockedAccountRejected(t *testing.T) {
	fx := newFixture()
	a := fx.addAccount("acc-1", 5, 100)
	a.IsBlocked = true

	_, err := fx.uc.IssueLabels(context.Background(), entity.OwnerRef{AccountID: "acc-1"}, shipRequests(1))
	require.ErrorIs(t, err, domain.ErrAccountBlocked)
	assert.Equal(t, 0, fx.provider.trackingCalls)
}

func TestIssueLabelsUnknownAccount(t *testing.T) {
	fx := newFixture()
	_, err := fx.uc.IssueLabels(context.Background(), entity.OwnerRef{AccountID: "nope"}, shipRequests(1))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Emisión individual
// ──────────────────────────────────────────────────────────────────────────────

// Forma pre-resuelta: tracking y barcode vienen del caller; el proveedor no
// se toca y el débito es de una tarifa.
func TestIssueOneLabelPreResolved(t *testing.T) {
	fx := newFixture()
	fx.addAccount("acc-1", 4, 50)

	req := shipRequests(1)[0]
	req.TrackingNumber = "TRK-EXT"
	req.Barcode = "data:image/png;base64,zzz"

	out, err := fx.uc.IssueOneLabel(context.Background(), entity.OwnerRef{AccountID: "acc-1"}, req)
	require.NoError(t, err)

	assert.Equal(t, 0, fx.provider.trackingCalls)
	assert.Equal(t, 0, fx.provider.barcodeCalls)
	assert.True(t, out.AvailableBalance.Equal(dec(46)))
	assert.True(t, out.TotalGeneratedLabels.Equal(dec(4)))
	require.Len(t, fx.history.labels, 1)
	assert.Equal(t, "TRK-EXT", fx.history.labels[0].TrackingNumber)
	assert.Empty(t, fx.history.labels[0].BulkEventID, "etiqueta individual sin evento bulk")
}

// Forma resuelta por el motor: sin tracking en el request, se piden tracking
// y barcode al proveedor.
func TestIssueOneLabelEngineResolved(t *testing.T) {
	fx := newFixture()
	fx.addAccount("acc-1", 4, 50)

	out, err := fx.uc.IssueOneLabel(context.Background(), entity.OwnerRef{AccountID: "acc-1"}, shipRequests(1)[0])
	require.NoError(t, err)

	assert.Equal(t, 1, fx.provider.trackingCalls)
	assert.Equal(t, 1, fx.provider.barcodeCalls)
	assert.Equal(t, "TRK-1", out.Labels[0].TrackingNumber)
	assert.True(t, out.AvailableBalance.Equal(dec(46)))
}

func TestIssueOneLabelSubUserInsufficientBalance(t *testing.T) {
	fx := newFixture()
	fx.addAccount("dealer-1", 0, 0)
	fx.addSubUser("dealer-1", "sub-1", 2, 1)

	_, err := fx.uc.IssueOneLabel(context.Background(),
		entity.OwnerRef{AccountID: "dealer-1", SubUserID: "sub-1"}, shipRequests(1)[0])
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, 0, fx.provider.trackingCalls)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial bulk sin débito
// ──────────────────────────────────────────────────────────────────────────────

func TestAddBulkHistoryRecordsWithoutDebit(t *testing.T) {
	fx := newFixture()
	fx.addAccount("acc-1", 5, 100)

	reqs := shipRequests(2)
	reqs[0].TrackingNumber = "TRK-A"
	reqs[1].TrackingNumber = "TRK-B"

	out, err := fx.uc.AddBulkHistory(context.Background(), entity.OwnerRef{AccountID: "acc-1"},
		dto.BulkHistoryRequest{Labels: reqs})
	require.NoError(t, err)
	require.Len(t, out.Labels, 2)

	assert.True(t, fx.accounts.accounts["acc-1"].AvailableBalance.Equal(dec(100)), "sin débito")
	assert.Empty(t, fx.history.balanceEntries, "sin entrada de saldo")
	require.Len(t, fx.history.bulkEvents, 1)
	assert.Equal(t, 2, fx.history.bulkEvents[0].LabelCount)
	assert.Equal(t, 0, fx.provider.trackingCalls)
}

func TestAddBulkHistoryEmptyRejected(t *testing.T) {
	fx := newFixture()
	fx.addAccount("acc-1", 5, 100)

	_, err := fx.uc.AddBulkHistory(context.Background(), entity.OwnerRef{AccountID: "acc-1"},
		dto.BulkHistoryRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

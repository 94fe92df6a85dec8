package carriers_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelhub/labelhub-api/internal/application/carriers"
	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
)

type fakeAccountRepo struct {
	accounts map[string]*entity.Account
}

func (f *fakeAccountRepo) Create(a *entity.Account) error { f.accounts[a.ID] = a; return nil }
func (f *fakeAccountRepo) GetByID(id string) (*entity.Account, error) {
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, nil
}
func (f *fakeAccountRepo) GetByEmail(email string) (*entity.Account, error)       { return nil, nil }
func (f *fakeAccountRepo) GetByIDForUpdate(id string) (*entity.Account, error)    { return f.GetByID(id) }
func (f *fakeAccountRepo) List(limit, offset int) ([]*entity.Account, error)      { return nil, nil }
func (f *fakeAccountRepo) UpdateLedger(a *entity.Account) error                   { return nil }
func (f *fakeAccountRepo) SetBlocked(id string, blocked bool) error               { return nil }
func (f *fakeAccountRepo) SetDealer(id string, isDealer bool) error               { return nil }
func (f *fakeAccountRepo) SetRate(id string, rate decimal.Decimal) error          { return nil }
func (f *fakeAccountRepo) SetLoggedIn(id string, li bool, dev string) error       { return nil }
func (f *fakeAccountRepo) Delete(id string) error                                 { return nil }

type fakeSubUserRepo struct {
	subUsers map[string]*entity.SubUser
}

func (f *fakeSubUserRepo) Create(su *entity.SubUser) error {
	f.subUsers[su.DealerID+"/"+su.ID] = su
	return nil
}
func (f *fakeSubUserRepo) GetByID(dealerID, subUserID string) (*entity.SubUser, error) {
	if su, ok := f.subUsers[dealerID+"/"+subUserID]; ok {
		return su, nil
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
func (f *fakeSubUserRepo) UpdateLedger(su *entity.SubUser) error                      { return nil }
func (f *fakeSubUserRepo) SetRate(dealerID, subUserID string, r decimal.Decimal) error { return nil }
func (f *fakeSubUserRepo) Delete(dealerID, subUserID string) error                    { return nil }

// fakeCarrierRepo guarda las entradas en un slice por dueño.
type fakeCarrierRepo struct {
	entries []*entity.CarrierEntry
}

func ownerKeyMatches(e *entity.CarrierEntry, o entity.OwnerRef) bool {
	return e.AccountID == o.AccountID && e.SubUserID == o.SubUserID
}

func (f *fakeCarrierRepo) ListByOwner(o entity.OwnerRef) ([]*entity.CarrierEntry, error) {
	var out []*entity.CarrierEntry
	for _, e := range f.entries {
		if ownerKeyMatches(e, o) {
			out = append(out, e)
		}
	}
	return out, nil
}
func (f *fakeCarrierRepo) GetByOwnerAndName(o entity.OwnerRef, carrier string) (*entity.CarrierEntry, error) {
	for _, e := range f.entries {
		if ownerKeyMatches(e, o) && e.Carrier == carrier {
			return e, nil
		}
	}
	return nil, nil
}
func (f *fakeCarrierRepo) AddCarrier(e *entity.CarrierEntry) error {
	f.entries = append(f.entries, e)
	return nil
}
func (f *fakeCarrierRepo) AddVendor(carrierEntryID string, v *entity.VendorEntry) error {
	for _, e := range f.entries {
		if e.ID == carrierEntryID {
			e.AllowedVendors = append(e.AllowedVendors, *v)
			return nil
		}
	}
	return domain.ErrCarrierNotFound
}
func (f *fakeCarrierRepo) SetCarrierStatus(carrierEntryID string, status bool) error {
	for _, e := range f.entries {
		if e.ID == carrierEntryID {
			e.Status = status
			return nil
		}
	}
	return domain.ErrCarrierNotFound
}
func (f *fakeCarrierRepo) SetVendorStatus(vendorEntryID string, status bool) error {
	for _, e := range f.entries {
		for i := range e.AllowedVendors {
			if e.AllowedVendors[i].ID == vendorEntryID {
				e.AllowedVendors[i].Status = status
				return nil
			}
		}
	}
	return domain.ErrVendorNotFound
}
func (f *fakeCarrierRepo) ReplaceForOwner(o entity.OwnerRef, entries []*entity.CarrierEntry) error {
	kept := f.entries[:0:0]
	for _, e := range f.entries {
		if !ownerKeyMatches(e, o) {
			kept = append(kept, e)
		}
	}
	f.entries = append(kept, entries...)
	return nil
}

func newCarrierFixture() (*carriers.CarrierUseCase, *fakeCarrierRepo) {
	accounts := &fakeAccountRepo{accounts: map[string]*entity.Account{
		"acc-1": {ID: "acc-1", Email: "acc@test.local", CreatedAt: time.Now()},
	}}
	subUsers := &fakeSubUserRepo{subUsers: map[string]*entity.SubUser{
		"acc-1/sub-1": {ID: "sub-1", DealerID: "acc-1", Email: "sub@test.local"},
	}}
	carrierRepo := &fakeCarrierRepo{}
	return carriers.NewCarrierUseCase(accounts, subUsers, carrierRepo), carrierRepo
}

var (
	ownerAcc = entity.OwnerRef{AccountID: "acc-1"}
	ownerSub = entity.OwnerRef{AccountID: "acc-1", SubUserID: "sub-1"}
)

func TestAddCarrier(t *testing.T) {
	uc, repo := newCarrierFixture()
	ctx := context.Background()

	require.NoError(t, uc.AddCarrier(ctx, ownerAcc, "usps"))
	require.Len(t, repo.entries, 1)
	assert.False(t, repo.entries[0].Status, "los carriers nuevos nacen deshabilitados")
	assert.Empty(t, repo.entries[0].AllowedVendors)

	// Duplicado exacto por dueño.
	assert.ErrorIs(t, uc.AddCarrier(ctx, ownerAcc, "usps"), domain.ErrConflict)
	// La comparación es exacta: otra capitalización es otro carrier.
	assert.NoError(t, uc.AddCarrier(ctx, ownerAcc, "USPS"))
	// El mismo nombre bajo otro dueño no colisiona.
	assert.NoError(t, uc.AddCarrier(ctx, ownerSub, "usps"))

	assert.ErrorIs(t, uc.AddCarrier(ctx, ownerAcc, ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, uc.AddCarrier(ctx, entity.OwnerRef{AccountID: "nope"}, "ups"), domain.ErrAccountNotFound)
}

func TestAddVendor(t *testing.T) {
	uc, repo := newCarrierFixture()
	ctx := context.Background()
	require.NoError(t, uc.AddCarrier(ctx, ownerAcc, "usps"))

	require.NoError(t, uc.AddVendor(ctx, ownerAcc, "usps", "stamps"))
	require.Len(t, repo.entries[0].AllowedVendors, 1)
	assert.False(t, repo.entries[0].AllowedVendors[0].Status)

	assert.ErrorIs(t, uc.AddVendor(ctx, ownerAcc, "usps", "stamps"), domain.ErrConflict)
	assert.ErrorIs(t, uc.AddVendor(ctx, ownerAcc, "fedex", "stamps"), domain.ErrCarrierNotFound)
	assert.ErrorIs(t, uc.AddVendor(ctx, ownerAcc, "usps", ""), domain.ErrInvalidInput)
}

func TestSetCarrierStatus(t *testing.T) {
	uc, repo := newCarrierFixture()
	ctx := context.Background()
	require.NoError(t, uc.AddCarrier(ctx, ownerAcc, "usps"))

	require.NoError(t, uc.SetCarrierStatus(ctx, ownerAcc, "usps", true))
	assert.True(t, repo.entries[0].Status)

	// Idempotente: repetir el mismo estado no falla.
	require.NoError(t, uc.SetCarrierStatus(ctx, ownerAcc, "usps", true))
	assert.True(t, repo.entries[0].Status)

	assert.ErrorIs(t, uc.SetCarrierStatus(ctx, ownerAcc, "fedex", true), domain.ErrCarrierNotFound)
}

func TestSetVendorStatus(t *testing.T) {
	uc, repo := newCarrierFixture()
	ctx := context.Background()
	require.NoError(t, uc.AddCarrier(ctx, ownerAcc, "usps"))
	require.NoError(t, uc.AddVendor(ctx, ownerAcc, "usps", "stamps"))

	require.NoError(t, uc.SetVendorStatus(ctx, ownerAcc, "usps", "stamps", true))
	assert.True(t, repo.entries[0].AllowedVendors[0].Status)

	assert.ErrorIs(t, uc.SetVendorStatus(ctx, ownerAcc, "usps", "endicia", true), domain.ErrVendorNotFound)
	assert.ErrorIs(t, uc.SetVendorStatus(ctx, ownerAcc, "fedex", "stamps", true), domain.ErrCarrierNotFound)
}

// EffectiveCarriers filtra por status=true; el toggle de vendors se devuelve
// tal cual para que la UI decida.
func TestEffectiveCarriersFiltersDisabled(t *testing.T) {
	uc, _ := newCarrierFixture()
	ctx := context.Background()
	require.NoError(t, uc.AddCarrier(ctx, ownerAcc, "usps"))
	require.NoError(t, uc.AddCarrier(ctx, ownerAcc, "fedex"))
	require.NoError(t, uc.SetCarrierStatus(ctx, ownerAcc, "usps", true))

	all, err := uc.ListCarriers(ctx, ownerAcc)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	enabled, err := uc.EffectiveCarriers(ctx, ownerAcc)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "usps", enabled[0].Carrier)
}

func TestReplaceCarriers(t *testing.T) {
	uc, _ := newCarrierFixture()
	ctx := context.Background()
	require.NoError(t, uc.AddCarrier(ctx, ownerAcc, "usps"))
	require.NoError(t, uc.AddCarrier(ctx, ownerSub, "dhl"))

	in := []dto.CarrierResponse{
		{Carrier: "fedex", Status: true, AllowedVendors: []dto.VendorResponse{
			{Vendor: "fedex-one", Status: true},
		}},
		{Carrier: "ups", Status: false},
	}
	require.NoError(t, uc.ReplaceCarriers(ctx, ownerAcc, in))

	mine, err := uc.ListCarriers(ctx, ownerAcc)
	require.NoError(t, err)
	require.Len(t, mine, 2, "la lista anterior se reemplaza completa")
	assert.Equal(t, "fedex", mine[0].Carrier)
	require.Len(t, mine[0].AllowedVendors, 1)
	assert.True(t, mine[0].AllowedVendors[0].Status)

	// La allowlist del sub-usuario no se toca.
	others, err := uc.ListCarriers(ctx, ownerSub)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestReplaceCarriersRejectsDuplicates(t *testing.T) {
	uc, _ := newCarrierFixture()
	ctx := context.Background()

	dup := []dto.CarrierResponse{{Carrier: "usps"}, {Carrier: "usps"}}
	assert.ErrorIs(t, uc.ReplaceCarriers(ctx, ownerAcc, dup), domain.ErrInvalidInput)

	dupVendors := []dto.CarrierResponse{{Carrier: "usps", AllowedVendors: []dto.VendorResponse{
		{Vendor: "stamps"}, {Vendor: "stamps"},
	}}}
	assert.ErrorIs(t, uc.ReplaceCarriers(ctx, ownerAcc, dupVendors), domain.ErrInvalidInput)

	assert.ErrorIs(t, uc.ReplaceCarriers(ctx, ownerAcc, []dto.CarrierResponse{{Carrier: ""}}), domain.ErrInvalidInput)
}

func TestCarrierOwnerScoping(t *testing.T) {
	uc, _ := newCarrierFixture()
	ctx := context.Background()
	require.NoError(t, uc.AddCarrier(ctx, ownerAcc, "usps"))

	// El carrier del dueño top-level no aparece bajo el sub-usuario.
	subList, err := uc.ListCarriers(ctx, ownerSub)
	require.NoError(t, err)
	assert.Empty(t, subList)

	_, err = uc.ListCarriers(ctx, entity.OwnerRef{AccountID: "acc-1", SubUserID: "nope"})
	assert.ErrorIs(t, err, domain.ErrSubUserNotFound)
}

package labels_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelhub/labelhub-api/internal/application/dto"
	"github.com/labelhub/labelhub-api/internal/application/labels"
	"github.com/labelhub/labelhub-api/internal/domain"
	"github.com/labelhub/labelhub-api/internal/domain/entity"
)

func newHistoryFixture() (*labels.HistoryUseCase, *fixture) {
	fx := newFixture()
	uc := labels.NewHistoryUseCase(fx.accounts, fx.subUsers, fx.history)
	return uc, fx
}

// El historial separa etiquetas individuales de eventos bulk: tras una
// emisión individual y una bulk, cada vista muestra lo suyo.
func TestGetLabelHistorySplitsSinglesAndBulk(t *testing.T) {
	uc, fx := newHistoryFixture()
	fx.addAccount("acc-1", 1, 100)
	owner := entity.OwnerRef{AccountID: "acc-1"}
	ctx := context.Background()

	_, err := fx.uc.IssueOneLabel(ctx, owner, shipRequests(1)[0])
	require.NoError(t, err)
	_, err = fx.uc.IssueLabels(ctx, owner, shipRequests(2))
	require.NoError(t, err)

	// El fake de ListLabels devuelve todo; el filtrado real (bulk_event_id
	// IS NULL) vive en SQL, acá verificamos la composición bulk.
	out, err := uc.GetLabelHistory(ctx, owner)
	require.NoError(t, err)
	require.Len(t, out.BulkLabelHistory, 1)
	assert.Len(t, out.BulkLabelHistory[0].Labels, 2)
}

func TestGetBalanceHistory(t *testing.T) {
	uc, fx := newHistoryFixture()
	fx.addAccount("acc-1", 5, 100)
	owner := entity.OwnerRef{AccountID: "acc-1"}
	ctx := context.Background()

	_, err := fx.uc.IssueLabels(ctx, owner, shipRequests(1))
	require.NoError(t, err)

	entries, err := uc.GetBalanceHistory(ctx, owner, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].PreviousBalance.Equal(dec(100)))
	assert.True(t, entries[0].NewBalance.Equal(dec(95)))
	assert.Equal(t, entity.BalanceStatusPaid, entries[0].Status)
}

func TestGetBulkEventLabels(t *testing.T) {
	uc, fx := newHistoryFixture()
	fx.addAccount("acc-1", 1, 100)
	owner := entity.OwnerRef{AccountID: "acc-1"}
	ctx := context.Background()

	issued, err := fx.uc.IssueLabels(ctx, owner, shipRequests(3))
	require.NoError(t, err)
	require.Len(t, fx.history.bulkEvents, 1)
	eventID := fx.history.bulkEvents[0].ID

	ev, list, err := uc.GetBulkEventLabels(ctx, owner, eventID)
	require.NoError(t, err)
	assert.Equal(t, 3, ev.LabelCount)
	require.Len(t, list, 3)
	assert.Equal(t, issued.Labels[0].TrackingNumber, list[0].TrackingNumber)

	_, _, err = uc.GetBulkEventLabels(ctx, owner, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryOwnerValidation(t *testing.T) {
	uc, fx := newHistoryFixture()
	fx.addAccount("dealer-1", 0, 0)

	_, err := uc.GetLabelHistory(context.Background(), entity.OwnerRef{AccountID: "nope"})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = uc.GetBalanceHistory(context.Background(),
		entity.OwnerRef{AccountID: "dealer-1", SubUserID: "nope"}, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrSubUserNotFound)
}

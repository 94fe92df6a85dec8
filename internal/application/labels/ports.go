package labels

import (
	"context"

	"github.com/labelhub/labelhub-api/internal/domain/repository"
)

// ProviderClient es el puerto del proveedor externo de etiquetas: una llamada
// de tracking por batch y una llamada de barcode por etiqueta.
type ProviderClient interface {
	// GenerateTracking pide count números de tracking para (vendor, class).
	// Los trackings emitidos consumen inventario del proveedor: el caller no
	// debe reintentar a ciegas ni descartar silenciosamente una respuesta.
	GenerateTracking(ctx context.Context, vendor, class string, count int) ([]string, error)
	// GenerateBarcode devuelve la imagen del código de barras (data URL)
	// para un (zip, tracking).
	GenerateBarcode(ctx context.Context, zip, tracking string) (string, error)
}

// LedgerTxRunner ejecuta fn con los repos contables atados a una misma
// transacción; Commit si fn retorna nil, Rollback en caso contrario.
type LedgerTxRunner interface {
	RunLedger(ctx context.Context, fn func(
		accountRepo repository.AccountRepository,
		subUserRepo repository.SubUserRepository,
		historyRepo repository.HistoryRepository,
	) error) error
}

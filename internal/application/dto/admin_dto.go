package dto

import "github.com/shopspring/decimal"

// UserStatusRequest bloqueo/desbloqueo de una cuenta.
type UserStatusRequest struct {
	Status bool `json:"status"` // true = bloqueada
}

// BalanceOverrideRequest override directo de admin: fija saldo y depósito.
type BalanceOverrideRequest struct {
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	TotalDeposit     decimal.Decimal `json:"totalDeposit"`
}

// RateRequest actualización del costo por etiqueta.
type RateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

// DealerFlagRequest marca/desmarca una cuenta como dealer.
type DealerFlagRequest struct {
	IsDealer *bool `json:"isDealer"`
}

// BalanceEntryStatusRequest cambia el status paid/unpaid de una entrada.
type BalanceEntryStatusRequest struct {
	Status string `json:"status"`
}

// ShipmentRow una fila del Excel de shipments pre-comprados.
type ShipmentRow struct {
	Carrier   string `json:"Carrier"`
	Tracking  string `json:"tracking"`
	LabelType string `json:"labelType"`
}

// UploadShipmentsRequest carga masiva del pool.
type UploadShipmentsRequest struct {
	Rows []ShipmentRow `json:"rows"`
}

// PullShipmentRequest consumo atómico de un shipment del pool.
type PullShipmentRequest struct {
	Carrier   string `json:"carrier"`
	LabelType string `json:"labelType"`
}

// ShipmentResponse un shipment del pool.
type ShipmentResponse struct {
	ID        string `json:"id"`
	Carrier   string `json:"carrier"`
	Tracking  string `json:"tracking"`
	LabelType string `json:"labelType"`
}

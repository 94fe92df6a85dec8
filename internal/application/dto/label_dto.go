package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipRequest datos de un envío a etiquetar. Tracking y Barcode solo vienen
// informados en el flujo pre-resuelto (el caller ya los obtuvo del proveedor).
type ShipRequest struct {
	Carrier          string `json:"carrier"`
	Vendor           string `json:"vendor"`
	LabelType        string `json:"labelType"`
	Weight           string `json:"weight"`
	SenderName       string `json:"senderName"`
	SenderAddress    string `json:"senderAddress"`
	SenderCity       string `json:"senderCity"`
	SenderState      string `json:"senderState"`
	SenderZip        string `json:"senderZip"`
	RecipientName    string `json:"recipientName"`
	RecipientAddress string `json:"recipientAddress"`
	RecipientCity    string `json:"recipientCity"`
	RecipientState   string `json:"recipientState"`
	RecipientZip     string `json:"recipientZip"`
	TrackingNumber   string `json:"trackingNumber,omitempty"`
	Barcode          string `json:"barcode,omitempty"`
}

// BulkIssueRequest batch de emisión: todos los requests deben compartir
// (vendor, labelType) porque el tracking se pide en una sola llamada.
type BulkIssueRequest struct {
	Requests []ShipRequest `json:"requests"`
}

// BulkHistoryRequest etiquetas ya formadas para registrar como evento bulk
// sin débito (POST /add-bulk-label-history).
type BulkHistoryRequest struct {
	Labels []ShipRequest `json:"labels"`
}

// LabelResponse una etiqueta emitida.
type LabelResponse struct {
	ID               string    `json:"id"`
	TrackingNumber   string    `json:"trackingNumber"`
	Carrier          string    `json:"carrier"`
	Vendor           string    `json:"vendor"`
	LabelType        string    `json:"labelType"`
	Weight           string    `json:"weight"`
	SenderName       string    `json:"senderName"`
	SenderAddress    string    `json:"senderAddress"`
	SenderCity       string    `json:"senderCity"`
	SenderState      string    `json:"senderState"`
	SenderZip        string    `json:"senderZip"`
	RecipientName    string    `json:"recipientName"`
	RecipientAddress string    `json:"recipientAddress"`
	RecipientCity    string    `json:"recipientCity"`
	RecipientState   string    `json:"recipientState"`
	RecipientZip     string    `json:"recipientZip"`
	Barcode          string    `json:"barcode,omitempty"`
	GeneratedAt      time.Time `json:"generatedAt"`
}

// IssueResponse resultado de una emisión: saldo y contador actualizados más
// las etiquetas formadas.
type IssueResponse struct {
	Message              string          `json:"msg"`
	AvailableBalance     decimal.Decimal `json:"availableBalance"`
	TotalGeneratedLabels decimal.Decimal `json:"totalGeneratedLabels"`
	Labels               []LabelResponse `json:"labels"`
}

// BulkEventResponse un evento bulk con sus etiquetas.
type BulkEventResponse struct {
	ID          string          `json:"id"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Labels      []LabelResponse `json:"labels"`
}

// LabelHistoryResponse ambas vistas del historial, como las espera la UI.
type LabelHistoryResponse struct {
	LabelHistory     []LabelResponse     `json:"labelHistory"`
	BulkLabelHistory []BulkEventResponse `json:"bulkLabelHistory"`
}

// BalanceEntryResponse una entrada del historial de saldo.
type BalanceEntryResponse struct {
	ID              string          `json:"id"`
	PreviousBalance decimal.Decimal `json:"previousBalance"`
	NewBalance      decimal.Decimal `json:"newBalance"`
	TotalDeposit    decimal.Decimal `json:"totalDeposit"`
	Status          string          `json:"status"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

package entity

import "time"

// Label es una etiqueta de envío: tracking asignado, carrier/vendor,
// direcciones y la imagen del código de barras (data URL del proveedor).
// BulkEventID vacío = historial individual; con valor = miembro de un bulk.
type Label struct {
	ID               string
	AccountID        string
	SubUserID        string // vacío para cuentas top-level
	BulkEventID      string
	TrackingNumber   string
	Carrier          string
	Vendor           string
	LabelType        string
	Weight           string
	SenderName       string
	SenderAddress    string
	SenderCity       string
	SenderState      string
	SenderZip        string
	RecipientName    string
	RecipientAddress string
	RecipientCity    string
	RecipientState   string
	RecipientZip     string
	Barcode          string
	GeneratedAt      time.Time
}

// BulkEvent agrupa las etiquetas producidas por una operación de emisión
// masiva; una entrada por batch, append-only.
type BulkEvent struct {
	ID          string
	AccountID   string
	SubUserID   string
	LabelCount  int
	GeneratedAt time.Time
}

package entity

// CarrierEntry es la configuración de un carrier dentro de la allowlist de
// una cuenta o sub-usuario. El nombre del carrier es único por dueño
// (comparación exacta, sensible a mayúsculas).
type CarrierEntry struct {
	ID             string
	AccountID      string
	SubUserID      string // vacío para cuentas top-level
	Carrier        string
	Status         bool // false al crearse; solo carriers en true son usables
	AllowedVendors []VendorEntry
}

// VendorEntry es un vendor permitido dentro de un carrier, con su propio
// toggle. Único por carrier.
type VendorEntry struct {
	ID     string
	Vendor string
	Status bool
}

package dto

// AddCarrierRequest alta de un carrier en la allowlist de una cuenta.
type AddCarrierRequest struct {
	UserID  string `json:"userId"`
	Carrier string `json:"carrier"`
}

// AddVendorRequest alta de un vendor dentro de un carrier existente.
type AddVendorRequest struct {
	UserID  string `json:"userId"`
	Carrier string `json:"carrier"`
	Vendor  string `json:"vendor"`
}

// CarrierStatusRequest toggle de un carrier.
type CarrierStatusRequest struct {
	UserID  string `json:"userId"`
	Carrier string `json:"carrier"`
	Status  bool   `json:"status"`
}

// VendorStatusRequest toggle de un vendor.
type VendorStatusRequest struct {
	UserID  string `json:"userId"`
	Carrier string `json:"carrier"`
	Vendor  string `json:"vendor"`
	Status  bool   `json:"status"`
}

// VendorResponse vendor con su estado.
type VendorResponse struct {
	Vendor string `json:"vendor"`
	Status bool   `json:"status"`
}

// CarrierResponse carrier de la allowlist con sus vendors.
type CarrierResponse struct {
	Carrier        string           `json:"carrier"`
	Status         bool             `json:"status"`
	AllowedVendors []VendorResponse `json:"allowedVendors"`
}

// ReplaceCarriersRequest reemplazo completo de la allowlist (PUT admin).
type ReplaceCarriersRequest struct {
	AllowedCarriers []CarrierResponse `json:"allowedCarriers"`
}

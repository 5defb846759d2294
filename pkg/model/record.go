// pkg/model/record.go
package model

import "time"

// Canonical column names for the raw housing sales schema
const (
	ColUniqueID        = "unique_id"
	ColParcelID        = "parcel_id"
	ColLandUse         = "land_use"
	ColPropertyAddress = "property_address"
	ColSaleDate        = "sale_date"
	ColSalePrice       = "sale_price"
	ColLegalReference  = "legal_reference"
	ColSoldAsVacant    = "sold_as_vacant"
	ColOwnerAddress    = "owner_address"
	ColTaxDistrict     = "tax_district"
)

// Derived column names written by the address parsing passes
const (
	ColPropertyStreet = "property_street"
	ColPropertyCity   = "property_city"
	ColOwnerStreet    = "owner_street"
	ColOwnerCity      = "owner_city"
	ColOwnerState     = "owner_state"
)

// SaleRecord is one property sale transaction in the raw schema.
// Optional fields are pointers; nil means the source value was missing.
type SaleRecord struct {
	UniqueID        int
	ParcelID        string
	LandUse         string
	PropertyAddress *string
	SaleDate        *time.Time
	SalePrice       *float64
	LegalReference  string
	SoldAsVacant    string
	OwnerAddress    *string
	TaxDistrict     string

	// Populated by the address parsing passes
	PropertyStreet *string
	PropertyCity   *string
	OwnerStreet    *string
	OwnerCity      *string
	OwnerState     *string
}

// CleanedSaleRecord is the projected schema produced by the column pruner.
// The composite address columns, the tax district and the time-bearing
// sale date are absent; the parsed components supersede them.
type CleanedSaleRecord struct {
	UniqueID       int
	ParcelID       string
	LandUse        string
	SaleDate       *time.Time
	SalePrice      *float64
	LegalReference string
	SoldAsVacant   string
	PropertyStreet *string
	PropertyCity   *string
	OwnerStreet    *string
	OwnerCity      *string
	OwnerState     *string
}

// HasPropertyAddress reports whether the raw property address is present
func (r *SaleRecord) HasPropertyAddress() bool {
	return r.PropertyAddress != nil && *r.PropertyAddress != ""
}

// HasOwnerAddress reports whether the raw owner address is present
func (r *SaleRecord) HasOwnerAddress() bool {
	return r.OwnerAddress != nil && *r.OwnerAddress != ""
}

// HasValidPrice reports whether the record qualifies for price analytics
func (r *CleanedSaleRecord) HasValidPrice() bool {
	return r.SalePrice != nil && *r.SalePrice > 0
}

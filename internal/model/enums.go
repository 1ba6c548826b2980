package model

// Enum is implemented by every closed value set stored on a record
type Enum interface {
	Valid() bool
}

// BusinessType classifies a supplier
type BusinessType string

const (
	BusinessTypeSeed       BusinessType = "Seed Supplier"
	BusinessTypeFertilizer BusinessType = "Fertilizer Supplier"
	BusinessTypeEquipment  BusinessType = "Equipment Supplier"
	BusinessTypeChemical   BusinessType = "Chemical Supplier"
	BusinessTypeGeneral    BusinessType = "General Supplier"
	BusinessTypeOther      BusinessType = "Other"
)

// BusinessTypes lists every BusinessType
var BusinessTypes = []BusinessType{
	BusinessTypeSeed, BusinessTypeFertilizer, BusinessTypeEquipment,
	BusinessTypeChemical, BusinessTypeGeneral, BusinessTypeOther,
}

func (b BusinessType) Valid() bool { return contains(BusinessTypes, b) }

// PaymentTerms is shared by suppliers and pricing agreements
type PaymentTerms string

const (
	PaymentNet30          PaymentTerms = "Net 30"
	PaymentNet60          PaymentTerms = "Net 60"
	PaymentNet90          PaymentTerms = "Net 90"
	PaymentCashOnDelivery PaymentTerms = "Cash on Delivery"
	PaymentAdvance        PaymentTerms = "Advance Payment"
)

// PaymentTermsValues lists every PaymentTerms value
var PaymentTermsValues = []PaymentTerms{
	PaymentNet30, PaymentNet60, PaymentNet90, PaymentCashOnDelivery, PaymentAdvance,
}

func (p PaymentTerms) Valid() bool { return contains(PaymentTermsValues, p) }

// Category of an inventory item
type Category string

const (
	CategorySeeds          Category = "Seeds"
	CategoryFertilizers    Category = "Fertilizers"
	CategoryPesticides     Category = "Pesticides"
	CategoryEquipment      Category = "Equipment"
	CategoryTools          Category = "Tools"
	CategoryMachineryParts Category = "Machinery Parts"
	CategoryIrrigation     Category = "Irrigation"
	CategoryPackaging      Category = "Packaging"
	CategoryOther          Category = "Other"
)

// Categories lists every Category
var Categories = []Category{
	CategorySeeds, CategoryFertilizers, CategoryPesticides, CategoryEquipment, CategoryTools,
	CategoryMachineryParts, CategoryIrrigation, CategoryPackaging, CategoryOther,
}

func (c Category) Valid() bool { return contains(Categories, c) }

// Unit of measure for stock quantities
type Unit string

const (
	UnitKg      Unit = "kg"
	UnitLbs     Unit = "lbs"
	UnitPieces  Unit = "pieces"
	UnitLiters  Unit = "liters"
	UnitGallons Unit = "gallons"
	UnitBags    Unit = "bags"
	UnitBoxes   Unit = "boxes"
	UnitUnits   Unit = "units"
)

// Units lists every Unit
var Units = []Unit{UnitKg, UnitLbs, UnitPieces, UnitLiters, UnitGallons, UnitBags, UnitBoxes, UnitUnits}

func (u Unit) Valid() bool { return contains(Units, u) }

// Currency of a pricing agreement
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
)

// Currencies lists every Currency
var Currencies = []Currency{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyCAD, CurrencyAUD}

func (c Currency) Valid() bool { return contains(Currencies, c) }

// StockStatus is derived from stock levels and never stored
type StockStatus string

const (
	StockOutOfStock  StockStatus = "out-of-stock"
	StockLow         StockStatus = "low-stock"
	StockOverstocked StockStatus = "overstocked"
	StockNormal      StockStatus = "normal"
)

// StockStatuses lists every StockStatus
var StockStatuses = []StockStatus{StockOutOfStock, StockLow, StockOverstocked, StockNormal}

func (s StockStatus) Valid() bool { return contains(StockStatuses, s) }

// Role of an application user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

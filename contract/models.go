package contract

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies one of the two contracting parties.
type Role string

const (
	RoleSupplier Role = "supplier"
	RoleReseller Role = "reseller"
)

func (r Role) Valid() bool {
	return r == RoleSupplier || r == RoleReseller
}

// Status is the authoritative lifecycle state of a contract. It is written
// only by the Controller; readers wanting the presentation state should use
// DisplayStatus instead.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPending Status = "pending"
	StatusFinal   Status = "final"
)

// Side selects one of the two identity-photo positions.
type Side string

const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

func (s Side) Valid() bool {
	return s == SideFront || s == SideBack
}

// SlotState tracks a single identity photo through the verification round
// trip: idle -> submitting -> verified|rejected, with re-upload returning the
// slot to submitting from any settled state.
type SlotState string

const (
	SlotIdle       SlotState = "idle"
	SlotSubmitting SlotState = "submitting"
	SlotVerified   SlotState = "verified"
	SlotRejected   SlotState = "rejected"
)

// PhotoSlot holds one uploaded identity-card photo and its verification
// outcome. Reason is non-empty exactly when State is SlotRejected; Payload is
// empty exactly when State is SlotIdle.
type PhotoSlot struct {
	Payload string
	State   SlotState
	Reason  string

	// seq tags the most recent submission so verdicts for superseded
	// submissions can be discarded.
	seq uint64
}

// IdentityPhotos is a party's pair of identity-card photos.
type IdentityPhotos struct {
	Front PhotoSlot
	Back  PhotoSlot
}

// Party is the record of one contracting party. It mirrors the form fields
// and carries no JSON annotations so it can be reused by different
// presentation layers.
type Party struct {
	FullName   string
	NationalID string
	Address    string
	Phone      string
	Photos     IdentityPhotos
}

// ResellerParty extends Party with the online storefront the reseller sells
// through; the storefront name is required for completeness.
type ResellerParty struct {
	Party
	StoreName string
}

// ProductSelection flags the garment categories covered by the contract.
// OtherDetail is meaningful only when Other is set.
type ProductSelection struct {
	Dresses     bool
	Skirts      bool
	Shirts      bool
	Outfits     bool
	Other       bool
	OtherDetail string
}

func (p ProductSelection) Any() bool {
	return p.Dresses || p.Skirts || p.Shirts || p.Outfits || p.Other
}

// PricingMode is a tagged choice between supplier-priced markup and a
// percentage commission for the reseller.
type PricingMode string

const (
	PricingMarkup     PricingMode = "markup"
	PricingCommission PricingMode = "commission"
)

func (m PricingMode) Valid() bool {
	return m == PricingMarkup || m == PricingCommission
}

// Pricing captures the commercial split. CommissionPercent is meaningful only
// in commission mode and must stay within [0,100].
type Pricing struct {
	Mode              PricingMode
	CommissionPercent int
}

// PaymentMethods flags the mobile-money channels accepted for settlement; at
// least one must be selected for the contract to be complete.
type PaymentMethods struct {
	MVola       bool
	OrangeMoney bool
	AirtelMoney bool
}

func (p PaymentMethods) Any() bool {
	return p.MVola || p.OrangeMoney || p.AirtelMoney
}

// DeliveryActor says which party performs delivery.
type DeliveryActor string

const (
	DeliveryBySupplier DeliveryActor = "supplier"
	DeliveryByReseller DeliveryActor = "reseller"
)

func (a DeliveryActor) Valid() bool {
	return a == DeliveryBySupplier || a == DeliveryByReseller
}

// CostBearer says who pays the delivery cost.
type CostBearer string

const (
	CostPaidByCustomer CostBearer = "customer"
	CostPaidByReseller CostBearer = "reseller"
	CostPaidBySupplier CostBearer = "supplier"
)

func (b CostBearer) Valid() bool {
	return b == CostPaidByCustomer || b == CostPaidByReseller || b == CostPaidBySupplier
}

// Delivery holds the two independent delivery choices.
type Delivery struct {
	HandledBy  DeliveryActor
	CostPaidBy CostBearer
}

// Contract aggregates everything the two parties agree on. Both party records
// exist from creation onward; fields are empty strings until populated, never
// absent. Once Status is StatusFinal the whole aggregate is immutable.
type Contract struct {
	ID       string
	Supplier Party
	Reseller ResellerParty

	Products ProductSelection
	Pricing  Pricing
	Payment  PaymentMethods
	Delivery Delivery

	Location      string
	EffectiveDate string // YYYY-MM-DD

	CreatedAt   time.Time
	FinalizedAt *time.Time

	SupplierConfirmed bool
	ResellerConfirmed bool

	Status Status
}

// New returns a draft contract with the same defaults the form starts from:
// markup pricing at a 10% commission fallback, supplier-handled delivery paid
// by the customer, today's date as the effective date, and all four photo
// slots idle.
func New(now time.Time) *Contract {
	c := &Contract{
		ID:            uuid.NewString(),
		Pricing:       Pricing{Mode: PricingMarkup, CommissionPercent: 10},
		Delivery:      Delivery{HandledBy: DeliveryBySupplier, CostPaidBy: CostPaidByCustomer},
		EffectiveDate: now.UTC().Format("2006-01-02"),
		CreatedAt:     now.UTC(),
		Status:        StatusDraft,
	}
	c.Supplier.Photos = newIdentityPhotos()
	c.Reseller.Photos = newIdentityPhotos()
	return c
}

func newIdentityPhotos() IdentityPhotos {
	return IdentityPhotos{
		Front: PhotoSlot{State: SlotIdle},
		Back:  PhotoSlot{State: SlotIdle},
	}
}

package contract

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Verdict is the outcome the external document-verification collaborator
// returns for one photo.
type Verdict struct {
	Valid  bool
	Reason string
}

// Verifier is the external identity-document collaborator. Implementations
// must be safe for concurrent use; up to one call per photo slot may be in
// flight at a time.
type Verifier interface {
	Verify(ctx context.Context, image string) (Verdict, error)
}

// Controller is the single owner of a contract. All mutation goes through it;
// an internal mutex serializes writers so the model's invariants hold even on
// a multi-threaded runtime.
type Controller struct {
	mu sync.Mutex
	c  *Contract

	verifier      Verifier
	sem           *semaphore.Weighted
	verifyTimeout time.Duration
	now           func() time.Time
}

// NewController creates a controller owning a fresh draft contract.
func NewController(verifier Verifier) *Controller {
	ctl := &Controller{
		verifier:      verifier,
		sem:           semaphore.NewWeighted(maxInFlightVerifications),
		verifyTimeout: defaultVerifyTimeout,
		now:           time.Now,
	}
	ctl.c = New(ctl.now())
	return ctl
}

// WithClock overrides the time source. It is a construction-time setter; the
// owned contract is still an untouched draft, so the creation timestamp and
// default effective date are restamped from the injected clock to keep them
// consistent with any later finalization timestamp.
func (ctl *Controller) WithClock(now func() time.Time) *Controller {
	ctl.now = now

	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	ctl.c.CreatedAt = now().UTC()
	ctl.c.EffectiveDate = ctl.c.CreatedAt.Format("2006-01-02")
	return ctl
}

// WithVerifyTimeout overrides the deadline applied to each verification round
// trip.
func (ctl *Controller) WithVerifyTimeout(d time.Duration) *Controller {
	ctl.verifyTimeout = d
	return ctl
}

// PartyPatch carries partial updates to one party's record. Nil fields are
// left untouched. StoreName applies only to the reseller.
type PartyPatch struct {
	FullName   *string
	NationalID *string
	Address    *string
	Phone      *string
	StoreName  *string
}

// TermsPatch carries partial updates to the fields both parties share.
type TermsPatch struct {
	Products      *ProductSelection
	Pricing       *Pricing
	Payment       *PaymentMethods
	Delivery      *Delivery
	Location      *string
	EffectiveDate *string
}

// UpdateParty applies a patch to the acting role's own party record. Writing
// the other party's record is rejected at this boundary, not just hidden in
// the presentation layer.
func (ctl *Controller) UpdateParty(as Role, patch PartyPatch) error {
	if !as.Valid() {
		return fmt.Errorf("contract: unknown role %q", as)
	}
	if patch.StoreName != nil && as != RoleReseller {
		return ErrRoleForbidden
	}

	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if ctl.c.Status == StatusFinal {
		return ErrContractFinal
	}

	var p *Party
	switch as {
	case RoleSupplier:
		p = &ctl.c.Supplier
	case RoleReseller:
		p = &ctl.c.Reseller.Party
		if patch.StoreName != nil {
			ctl.c.Reseller.StoreName = *patch.StoreName
		}
	}
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.NationalID != nil {
		p.NationalID = *patch.NationalID
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	return nil
}

// UpdateTerms applies a patch to the shared commercial terms. Either role may
// edit these while the contract is not final.
func (ctl *Controller) UpdateTerms(as Role, patch TermsPatch) error {
	if !as.Valid() {
		return fmt.Errorf("contract: unknown role %q", as)
	}
	if patch.Pricing != nil {
		if !patch.Pricing.Mode.Valid() {
			return fmt.Errorf("contract: unknown pricing mode %q", patch.Pricing.Mode)
		}
		if patch.Pricing.CommissionPercent < 0 || patch.Pricing.CommissionPercent > 100 {
			return fmt.Errorf("contract: commission percent %d out of range", patch.Pricing.CommissionPercent)
		}
	}
	if patch.Delivery != nil {
		if !patch.Delivery.HandledBy.Valid() {
			return fmt.Errorf("contract: unknown delivery actor %q", patch.Delivery.HandledBy)
		}
		if !patch.Delivery.CostPaidBy.Valid() {
			return fmt.Errorf("contract: unknown delivery cost bearer %q", patch.Delivery.CostPaidBy)
		}
	}

	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if ctl.c.Status == StatusFinal {
		return ErrContractFinal
	}

	if patch.Products != nil {
		ctl.c.Products = *patch.Products
		if !ctl.c.Products.Other {
			ctl.c.Products.OtherDetail = ""
		}
	}
	if patch.Pricing != nil {
		ctl.c.Pricing = *patch.Pricing
	}
	if patch.Payment != nil {
		ctl.c.Payment = *patch.Payment
	}
	if patch.Delivery != nil {
		ctl.c.Delivery = *patch.Delivery
	}
	if patch.Location != nil {
		ctl.c.Location = *patch.Location
	}
	if patch.EffectiveDate != nil {
		ctl.c.EffectiveDate = *patch.EffectiveDate
	}
	return nil
}

// SetConfirmation records the acting role's cross-confirmation of the other
// party's information. A role can only toggle its own flag. The authoritative
// status follows the flags between draft and pending; only Finalize moves it
// further.
func (ctl *Controller) SetConfirmation(as Role, confirmed bool) error {
	if !as.Valid() {
		return fmt.Errorf("contract: unknown role %q", as)
	}

	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if ctl.c.Status == StatusFinal {
		return ErrContractFinal
	}

	switch as {
	case RoleSupplier:
		ctl.c.SupplierConfirmed = confirmed
	case RoleReseller:
		ctl.c.ResellerConfirmed = confirmed
	}
	if ctl.c.SupplierConfirmed || ctl.c.ResellerConfirmed {
		ctl.c.Status = StatusPending
	} else {
		ctl.c.Status = StatusDraft
	}
	return nil
}

// Finalize performs the one-way transition to StatusFinal. It fails with a
// PreconditionError, leaving the contract untouched, unless CanFinalize holds;
// calling it again afterward fails the same way because a final contract can
// never satisfy CanFinalize.
func (ctl *Controller) Finalize() (time.Time, error) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	if unmet := unmetPreconditions(*ctl.c); len(unmet) > 0 {
		return time.Time{}, &PreconditionError{Unmet: unmet}
	}

	ts := ctl.now().UTC()
	ctl.c.Status = StatusFinal
	ctl.c.FinalizedAt = &ts
	return ts, nil
}

// Snapshot returns an independent copy of the contract for readers. Mutating
// the copy has no effect on the controller's state.
func (ctl *Controller) Snapshot() Contract {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	cp := *ctl.c
	if cp.FinalizedAt != nil {
		ts := *cp.FinalizedAt
		cp.FinalizedAt = &ts
	}
	return cp
}

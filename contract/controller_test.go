package contract

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

// verdictFunc adapts a function to the Verifier interface.
type verdictFunc func(ctx context.Context, image string) (Verdict, error)

func (f verdictFunc) Verify(ctx context.Context, image string) (Verdict, error) {
	return f(ctx, image)
}

func approveAll() Verifier {
	return verdictFunc(func(context.Context, string) (Verdict, error) {
		return Verdict{Valid: true}, nil
	})
}

func strPtr(s string) *string { return &s }

// waitFor polls until cond holds; verification verdicts arrive asynchronously.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestUpdateParty_ScopedToOwnRecord(t *testing.T) {
	ctl := NewController(approveAll())

	if err := ctl.UpdateParty(RoleSupplier, PartyPatch{FullName: strPtr("Clara Maker")}); err != nil {
		t.Fatalf("supplier update: unexpected error: %v", err)
	}
	if err := ctl.UpdateParty(RoleReseller, PartyPatch{
		FullName:  strPtr("Vola Seller"),
		StoreName: strPtr("Vola Fashion Online"),
	}); err != nil {
		t.Fatalf("reseller update: unexpected error: %v", err)
	}

	snap := ctl.Snapshot()
	if snap.Supplier.FullName != "Clara Maker" {
		t.Fatalf("expected supplier name set, got %q", snap.Supplier.FullName)
	}
	if snap.Reseller.FullName != "Vola Seller" || snap.Reseller.StoreName != "Vola Fashion Online" {
		t.Fatalf("expected reseller record set, got %+v", snap.Reseller)
	}

	// Only the reseller owns the storefront name.
	if err := ctl.UpdateParty(RoleSupplier, PartyPatch{StoreName: strPtr("sneaky")}); !errors.Is(err, ErrRoleForbidden) {
		t.Fatalf("expected ErrRoleForbidden, got %v", err)
	}
	if err := ctl.UpdateParty("auditor", PartyPatch{}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestUpdateTerms_Validation(t *testing.T) {
	ctl := NewController(approveAll())

	err := ctl.UpdateTerms(RoleSupplier, TermsPatch{Pricing: &Pricing{Mode: "barter"}})
	if err == nil {
		t.Fatal("expected error for unknown pricing mode")
	}

	err = ctl.UpdateTerms(RoleSupplier, TermsPatch{Pricing: &Pricing{Mode: PricingCommission, CommissionPercent: 101}})
	if err == nil {
		t.Fatal("expected error for out-of-range commission")
	}

	err = ctl.UpdateTerms(RoleReseller, TermsPatch{Delivery: &Delivery{HandledBy: "courier", CostPaidBy: CostPaidByCustomer}})
	if err == nil {
		t.Fatal("expected error for unknown delivery actor")
	}
}

func TestUpdateTerms_AppliesPatch(t *testing.T) {
	ctl := NewController(approveAll())

	err := ctl.UpdateTerms(RoleReseller, TermsPatch{
		Products: &ProductSelection{Other: true, OtherDetail: "scarves"},
		Pricing:  &Pricing{Mode: PricingCommission, CommissionPercent: 25},
		Payment:  &PaymentMethods{OrangeMoney: true},
		Delivery: &Delivery{HandledBy: DeliveryByReseller, CostPaidBy: CostPaidByReseller},
		Location: strPtr("Antananarivo"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := ctl.Snapshot()
	if !snap.Products.Other || snap.Products.OtherDetail != "scarves" {
		t.Fatalf("unexpected products: %+v", snap.Products)
	}
	if snap.Pricing.Mode != PricingCommission || snap.Pricing.CommissionPercent != 25 {
		t.Fatalf("unexpected pricing: %+v", snap.Pricing)
	}
	if snap.Location != "Antananarivo" {
		t.Fatalf("unexpected location: %q", snap.Location)
	}

	// Clearing the other flag drops its free-text detail.
	if err := ctl.UpdateTerms(RoleSupplier, TermsPatch{Products: &ProductSelection{Dresses: true, OtherDetail: "stale"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap = ctl.Snapshot(); snap.Products.OtherDetail != "" {
		t.Fatalf("expected other detail cleared, got %q", snap.Products.OtherDetail)
	}
}

func TestSetConfirmation_DrivesStatus(t *testing.T) {
	ctl := NewController(approveAll())

	if err := ctl.SetConfirmation(RoleSupplier, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap := ctl.Snapshot(); snap.Status != StatusPending || !snap.SupplierConfirmed {
		t.Fatalf("expected pending with supplier confirmed, got %+v", snap.Status)
	}

	if err := ctl.SetConfirmation(RoleSupplier, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap := ctl.Snapshot(); snap.Status != StatusDraft {
		t.Fatalf("expected draft after withdrawal, got %s", snap.Status)
	}
}

// driveToReady fills the contract through the public API until CanFinalize.
func driveToReady(t *testing.T, ctl *Controller) {
	t.Helper()

	if err := ctl.UpdateParty(RoleSupplier, PartyPatch{
		FullName:   strPtr("Clara Maker"),
		NationalID: strPtr("101031234567"),
	}); err != nil {
		t.Fatalf("fill supplier: %v", err)
	}
	if err := ctl.UpdateParty(RoleReseller, PartyPatch{
		FullName:   strPtr("Vola Seller"),
		NationalID: strPtr("101037654321"),
		StoreName:  strPtr("Vola Fashion Online"),
	}); err != nil {
		t.Fatalf("fill reseller: %v", err)
	}
	if err := ctl.UpdateTerms(RoleSupplier, TermsPatch{
		Products: &ProductSelection{Dresses: true},
		Payment:  &PaymentMethods{MVola: true},
		Location: strPtr("Antananarivo"),
	}); err != nil {
		t.Fatalf("fill terms: %v", err)
	}

	for _, role := range []Role{RoleSupplier, RoleReseller} {
		for _, side := range []Side{SideFront, SideBack} {
			if err := ctl.SubmitPhoto(role, side, "data:image/jpeg;base64,Zg=="); err != nil {
				t.Fatalf("submit %s/%s: %v", role, side, err)
			}
		}
	}
	waitFor(t, func() bool {
		snap := ctl.Snapshot()
		return IdentityVerified(snap.Supplier.Photos) && IdentityVerified(snap.Reseller.Photos)
	})

	if err := ctl.SetConfirmation(RoleSupplier, true); err != nil {
		t.Fatalf("supplier confirm: %v", err)
	}
	if err := ctl.SetConfirmation(RoleReseller, true); err != nil {
		t.Fatalf("reseller confirm: %v", err)
	}
}

func TestWithClock_AlignsCreationTimestamp(t *testing.T) {
	injected := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctl := NewController(approveAll()).WithClock(func() time.Time { return injected })

	snap := ctl.Snapshot()
	if !snap.CreatedAt.Equal(injected) {
		t.Fatalf("expected creation timestamp from injected clock, got %v", snap.CreatedAt)
	}
	if snap.EffectiveDate != "2026-03-01" {
		t.Fatalf("expected effective date from injected clock, got %q", snap.EffectiveDate)
	}
}

func TestFinalize_Succeeds(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	finalized := created.Add(45 * time.Minute)
	clock := created
	ctl := NewController(approveAll()).WithClock(func() time.Time { return clock })

	driveToReady(t, ctl)
	clock = finalized

	ts, err := ctl.Finalize()
	if err != nil {
		t.Fatalf("finalize: unexpected error: %v", err)
	}
	if !ts.Equal(finalized) {
		t.Fatalf("expected finalization timestamp %v, got %v", finalized, ts)
	}

	snap := ctl.Snapshot()
	if snap.Status != StatusFinal {
		t.Fatalf("expected status final, got %s", snap.Status)
	}
	if snap.FinalizedAt == nil || snap.FinalizedAt.Before(snap.CreatedAt) {
		t.Fatalf("expected finalization timestamp at or after creation, got %v (created %v)", snap.FinalizedAt, snap.CreatedAt)
	}
}

func TestFinalize_PreconditionLeavesContractUnchanged(t *testing.T) {
	ctl := NewController(approveAll())
	before := ctl.Snapshot()

	_, err := ctl.Finalize()
	if !errors.Is(err, ErrPreconditionNotMet) {
		t.Fatalf("expected ErrPreconditionNotMet, got %v", err)
	}

	var precond *PreconditionError
	if !errors.As(err, &precond) {
		t.Fatalf("expected *PreconditionError, got %T", err)
	}
	if len(precond.Unmet) == 0 {
		t.Fatal("expected unmet preconditions to be listed")
	}

	after := ctl.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("expected contract unchanged after failed finalize:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestFinalContractIsImmutable(t *testing.T) {
	ctl := NewController(approveAll())
	driveToReady(t, ctl)
	if _, err := ctl.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	before := ctl.Snapshot()

	mutations := map[string]error{
		"update party":     ctl.UpdateParty(RoleSupplier, PartyPatch{FullName: strPtr("Changed")}),
		"update terms":     ctl.UpdateTerms(RoleReseller, TermsPatch{Location: strPtr("Toamasina")}),
		"set confirmation": ctl.SetConfirmation(RoleSupplier, false),
		"submit photo":     ctl.SubmitPhoto(RoleSupplier, SideFront, "data:image/jpeg;base64,Zg=="),
		"remove photo":     ctl.RemovePhoto(RoleReseller, SideBack),
	}
	for name, err := range mutations {
		if !errors.Is(err, ErrContractFinal) {
			t.Fatalf("%s: expected ErrContractFinal, got %v", name, err)
		}
	}

	if _, err := ctl.Finalize(); !errors.Is(err, ErrPreconditionNotMet) {
		t.Fatalf("second finalize: expected ErrPreconditionNotMet, got %v", err)
	}

	after := ctl.Snapshot()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("expected final contract unchanged:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	ctl := NewController(approveAll())

	snap := ctl.Snapshot()
	snap.Location = "scribbled"
	snap.Supplier.FullName = "scribbled"

	fresh := ctl.Snapshot()
	if fresh.Location != "" || fresh.Supplier.FullName != "" {
		t.Fatalf("snapshot mutation leaked into controller state: %+v", fresh)
	}
}

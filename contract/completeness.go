package contract

// Completeness and readiness are pure derivations over a Contract value.
// Nothing here caches: every call recomputes from the fields it is given, so
// readers always see the state the controller last committed.

// PartyComplete reports whether a party has the minimum identifying fields.
func PartyComplete(p Party) bool {
	return p.FullName != "" && p.NationalID != ""
}

// ResellerComplete additionally requires the storefront name.
func ResellerComplete(p ResellerParty) bool {
	return PartyComplete(p.Party) && p.StoreName != ""
}

// IdentityVerified reports whether both photo slots passed verification.
func IdentityVerified(ph IdentityPhotos) bool {
	return ph.Front.State == SlotVerified && ph.Back.State == SlotVerified
}

// AllFieldsComplete reports whether every required field is populated. It
// deliberately ignores verification and confirmation state; those gate
// finalization separately.
func AllFieldsComplete(c Contract) bool {
	return PartyComplete(c.Supplier) &&
		ResellerComplete(c.Reseller) &&
		c.Location != "" &&
		c.EffectiveDate != "" &&
		c.Products.Any() &&
		c.Payment.Any()
}

// CanFinalize reports whether Finalize would succeed right now.
func CanFinalize(c Contract) bool {
	return AllFieldsComplete(c) &&
		IdentityVerified(c.Supplier.Photos) &&
		IdentityVerified(c.Reseller.Photos) &&
		c.SupplierConfirmed &&
		c.ResellerConfirmed &&
		c.Status != StatusFinal
}

// DisplayStatus derives the presentation status without touching the
// authoritative Status field: final stays final, any single confirmation
// shows pending, otherwise draft.
func DisplayStatus(c Contract) Status {
	if c.Status == StatusFinal {
		return StatusFinal
	}
	if c.SupplierConfirmed || c.ResellerConfirmed {
		return StatusPending
	}
	return StatusDraft
}

// unmetPreconditions lists, in a stable order, everything that currently
// blocks finalization. Empty means CanFinalize is true.
func unmetPreconditions(c Contract) []string {
	var unmet []string
	if c.Status == StatusFinal {
		return []string{"contract is already final"}
	}
	if !AllFieldsComplete(c) {
		unmet = append(unmet, "required fields are incomplete")
	}
	if !IdentityVerified(c.Supplier.Photos) {
		unmet = append(unmet, "supplier identity is not fully verified")
	}
	if !IdentityVerified(c.Reseller.Photos) {
		unmet = append(unmet, "reseller identity is not fully verified")
	}
	if !c.SupplierConfirmed {
		unmet = append(unmet, "supplier has not confirmed")
	}
	if !c.ResellerConfirmed {
		unmet = append(unmet, "reseller has not confirmed")
	}
	return unmet
}

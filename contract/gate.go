package contract

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// maxEncodedPhotoBytes caps the stored payload at roughly 5 MB of image
	// data once base64/data-URI encoded.
	maxEncodedPhotoBytes = 7 << 20

	// maxInFlightVerifications bounds concurrent collaborator calls; one per
	// slot is the most that is ever useful.
	maxInFlightVerifications = 4

	defaultVerifyTimeout = 30 * time.Second

	defaultInvalidReason = "the submitted photo is not a valid national identity card"
	retryReason          = "verification failed, please submit the photo again"
)

// SubmitPhoto stores a newly captured identity photo in the acting role's own
// slot, marks it submitting, and dispatches the external verification
// asynchronously. The verdict is folded back into the slot later; a newer
// submission supersedes any still in flight, so the slot always reflects the
// most recent intent.
func (ctl *Controller) SubmitPhoto(as Role, side Side, payload string) error {
	if !as.Valid() {
		return fmt.Errorf("contract: unknown role %q", as)
	}
	if !side.Valid() {
		return fmt.Errorf("contract: unknown photo side %q", side)
	}
	if payload == "" {
		return fmt.Errorf("contract: empty photo payload")
	}
	if len(payload) > maxEncodedPhotoBytes {
		return fmt.Errorf("contract: photo payload exceeds %d bytes", maxEncodedPhotoBytes)
	}

	ctl.mu.Lock()
	if ctl.c.Status == StatusFinal {
		ctl.mu.Unlock()
		return ErrContractFinal
	}
	slot := ctl.slot(as, side)
	slot.Payload = payload
	slot.Reason = ""
	slot.State = SlotSubmitting
	slot.seq++
	seq := slot.seq
	ctl.mu.Unlock()

	go ctl.runVerification(as, side, seq, payload)
	return nil
}

// RemovePhoto clears the acting role's photo slot back to idle. The sequence
// number advances so a verdict for the removed submission cannot resurrect
// the slot.
func (ctl *Controller) RemovePhoto(as Role, side Side) error {
	if !as.Valid() {
		return fmt.Errorf("contract: unknown role %q", as)
	}
	if !side.Valid() {
		return fmt.Errorf("contract: unknown photo side %q", side)
	}

	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if ctl.c.Status == StatusFinal {
		return ErrContractFinal
	}
	slot := ctl.slot(as, side)
	slot.Payload = ""
	slot.Reason = ""
	slot.State = SlotIdle
	slot.seq++
	return nil
}

func (ctl *Controller) runVerification(party Role, side Side, seq uint64, payload string) {
	ctx, cancel := context.WithTimeout(context.Background(), ctl.verifyTimeout)
	defer cancel()

	if err := ctl.sem.Acquire(ctx, 1); err != nil {
		ctl.completeVerification(party, side, seq, Verdict{}, err)
		return
	}
	verdict, err := ctl.verifier.Verify(ctx, payload)
	ctl.sem.Release(1)
	ctl.completeVerification(party, side, seq, verdict, err)
}

// completeVerification folds one verdict back into its slot. Verdicts whose
// sequence number no longer matches the slot's are from superseded
// submissions and are dropped. Collaborator failures become a rejected slot
// with a retry-prompting reason; they never propagate past this gate.
func (ctl *Controller) completeVerification(party Role, side Side, seq uint64, verdict Verdict, err error) {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	if ctl.c.Status == StatusFinal {
		return
	}
	slot := ctl.slot(party, side)
	if slot.seq != seq {
		return
	}

	switch {
	case err != nil:
		slot.State = SlotRejected
		slot.Reason = failureReason(err)
	case verdict.Valid:
		slot.State = SlotVerified
		slot.Reason = ""
	default:
		slot.State = SlotRejected
		if verdict.Reason != "" {
			slot.Reason = verdict.Reason
		} else {
			slot.Reason = defaultInvalidReason
		}
	}
}

func (ctl *Controller) slot(party Role, side Side) *PhotoSlot {
	var ph *IdentityPhotos
	switch party {
	case RoleSupplier:
		ph = &ctl.c.Supplier.Photos
	default:
		ph = &ctl.c.Reseller.Photos
	}
	if side == SideFront {
		return &ph.Front
	}
	return &ph.Back
}

// failureReason prefers a collaborator-provided user-facing reason (rate
// limits, exhausted quota) over the generic retry prompt.
func failureReason(err error) string {
	var ur interface{ UserReason() string }
	if errors.As(err, &ur) {
		if reason := ur.UserReason(); reason != "" {
			return reason
		}
	}
	return retryReason
}

// Package api exposes the contract workflow over HTTP. The process owns a
// single in-memory contract; every write is authorized against the role token
// presented by the caller, so field scoping holds even for programmatic
// clients that never see the form.
package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"contractflow/auth"
	"contractflow/contract"
	"contractflow/pdf"
)

type handler struct {
	ctrl   *contract.Controller
	tokens *auth.Service
}

// NewRouter wires the HTTP surface around one contract controller.
func NewRouter(ctrl *contract.Controller, tokens *auth.Service) http.Handler {
	h := &handler{ctrl: ctrl, tokens: tokens}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Post("/auth/role", h.selectRole)

	r.Route("/contract", func(r chi.Router) {
		r.Get("/", h.getContract)
		r.Patch("/party", h.patchParty)
		r.Patch("/terms", h.patchTerms)
		r.Put("/confirmation", h.putConfirmation)
		r.Post("/photos/{side}", h.submitPhoto)
		r.Delete("/photos/{side}", h.removePhoto)
		r.Post("/finalize", h.finalize)
	})
	r.Get("/contract.pdf", h.downloadPDF)

	return r
}

// selectRole is the role selector: pick a side, receive a token for it.
func (h *handler) selectRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error(), nil)
		return
	}
	role := contract.Role(req.Role)
	token, err := h.tokens.IssueRoleToken(role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_ROLE", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "role": role})
}

func (h *handler) getContract(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(h.ctrl.Snapshot()))
}

func (h *handler) patchParty(w http.ResponseWriter, r *http.Request) {
	role, ok := h.requireRole(w, r)
	if !ok {
		return
	}
	var req struct {
		FullName   *string `json:"full_name"`
		NationalID *string `json:"national_id"`
		Address    *string `json:"address"`
		Phone      *string `json:"phone"`
		StoreName  *string `json:"store_name"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error(), nil)
		return
	}
	err := h.ctrl.UpdateParty(role, contract.PartyPatch{
		FullName:   req.FullName,
		NationalID: req.NationalID,
		Address:    req.Address,
		Phone:      req.Phone,
		StoreName:  req.StoreName,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(h.ctrl.Snapshot()))
}

func (h *handler) patchTerms(w http.ResponseWriter, r *http.Request) {
	role, ok := h.requireRole(w, r)
	if !ok {
		return
	}
	var req struct {
		Products *productsView `json:"products"`
		Pricing  *struct {
			Mode              string `json:"mode"`
			CommissionPercent int    `json:"commission_percent"`
		} `json:"pricing"`
		Payment  *paymentView `json:"payment"`
		Delivery *struct {
			HandledBy  string `json:"handled_by"`
			CostPaidBy string `json:"cost_paid_by"`
		} `json:"delivery"`
		Location      *string `json:"location"`
		EffectiveDate *string `json:"effective_date"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error(), nil)
		return
	}

	patch := contract.TermsPatch{
		Location:      req.Location,
		EffectiveDate: req.EffectiveDate,
	}
	if req.Products != nil {
		products := req.Products.model()
		patch.Products = &products
	}
	if req.Payment != nil {
		payment := req.Payment.model()
		patch.Payment = &payment
	}
	if req.Pricing != nil {
		patch.Pricing = &contract.Pricing{
			Mode:              contract.PricingMode(req.Pricing.Mode),
			CommissionPercent: req.Pricing.CommissionPercent,
		}
	}
	if req.Delivery != nil {
		patch.Delivery = &contract.Delivery{
			HandledBy:  contract.DeliveryActor(req.Delivery.HandledBy),
			CostPaidBy: contract.CostBearer(req.Delivery.CostPaidBy),
		}
	}
	if err := h.ctrl.UpdateTerms(role, patch); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(h.ctrl.Snapshot()))
}

func (h *handler) putConfirmation(w http.ResponseWriter, r *http.Request) {
	role, ok := h.requireRole(w, r)
	if !ok {
		return
	}
	var req struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error(), nil)
		return
	}
	if err := h.ctrl.SetConfirmation(role, req.Confirmed); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(h.ctrl.Snapshot()))
}

func (h *handler) submitPhoto(w http.ResponseWriter, r *http.Request) {
	role, ok := h.requireRole(w, r)
	if !ok {
		return
	}
	side := contract.Side(chi.URLParam(r, "side"))
	var req struct {
		Image string `json:"image"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_JSON", err.Error(), nil)
		return
	}
	if err := h.ctrl.SubmitPhoto(role, side, req.Image); err != nil {
		h.writeDomainError(w, err)
		return
	}
	// Verification completes asynchronously; poll GET /contract for the verdict.
	writeJSON(w, http.StatusAccepted, viewOf(h.ctrl.Snapshot()))
}

func (h *handler) removePhoto(w http.ResponseWriter, r *http.Request) {
	role, ok := h.requireRole(w, r)
	if !ok {
		return
	}
	side := contract.Side(chi.URLParam(r, "side"))
	if err := h.ctrl.RemovePhoto(role, side); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(h.ctrl.Snapshot()))
}

func (h *handler) finalize(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireRole(w, r); !ok {
		return
	}
	ts, err := h.ctrl.Finalize()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	log.Printf("contract finalized at %s", ts.Format("2006-01-02T15:04:05Z07:00"))
	writeJSON(w, http.StatusOK, map[string]any{"finalized_at": ts})
}

func (h *handler) downloadPDF(w http.ResponseWriter, r *http.Request) {
	b, err := pdf.Render(h.ctrl.Snapshot())
	if err != nil {
		log.Printf("pdf render failed: %v", err)
		writeError(w, http.StatusInternalServerError, "PDF_RENDER_FAILED", "could not render contract document", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="sales-contract.pdf"`)
	_, _ = w.Write(b)
}

// requireRole extracts and verifies the bearer role token.
func (h *handler) requireRole(w http.ResponseWriter, r *http.Request) (contract.Role, bool) {
	header := r.Header.Get("Authorization")
	tokenStr, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenStr == "" {
		writeError(w, http.StatusUnauthorized, "MISSING_ROLE", "select a role and present its bearer token", nil)
		return "", false
	}
	role, err := h.tokens.VerifyRoleToken(tokenStr)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "INVALID_ROLE_TOKEN", "role token is invalid or expired", nil)
		return "", false
	}
	return role, true
}

func (h *handler) writeDomainError(w http.ResponseWriter, err error) {
	var precond *contract.PreconditionError
	switch {
	case errors.As(err, &precond):
		writeError(w, http.StatusConflict, "PRECONDITION_NOT_MET", "contract cannot be finalized yet", map[string]any{"unmet": precond.Unmet})
	case errors.Is(err, contract.ErrContractFinal):
		writeError(w, http.StatusConflict, "CONTRACT_FINAL", "the contract is final and can no longer change", nil)
	case errors.Is(err, contract.ErrRoleForbidden):
		writeError(w, http.StatusForbidden, "ROLE_FORBIDDEN", "your role may not modify this record", nil)
	default:
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	}
}

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medeasy/pos/domain"
	"medeasy/pos/internal/cart"
	"medeasy/pos/internal/checkout"
	"medeasy/pos/internal/draft"
	"medeasy/pos/internal/pricing"
	"medeasy/pos/internal/resolver"
)

// workflow returns the calling cashier's POS session, creating it on first use.
func (h *Handler) workflow(r *http.Request) *checkout.Workflow {
	uid := r.Context().Value(ctxUserID).(int64)
	h.mu.Lock()
	defer h.mu.Unlock()
	wf, ok := h.sessions[uid]
	if !ok {
		opts := []checkout.Option{
			checkout.WithSubmitTimeout(h.svc.SubmitTimeout),
			checkout.WithLogger(h.logger.With(zap.Int64("cashier_id", uid))),
		}
		if h.svc.Catalog != nil {
			opts = append(opts, checkout.WithStockAdjuster(h.svc.Catalog))
		}
		if h.svc.Drafts != nil {
			opts = append(opts, checkout.WithDraftStore(h.svc.Drafts))
		}
		wf = checkout.NewWorkflow(h.svc.Sales, opts...)
		h.sessions[uid] = wf
	}
	return wf
}

type cartView struct {
	State    checkout.State        `json:"state"`
	Customer *domain.Patient       `json:"customer"`
	Cart     cart.Cart             `json:"cart"`
	Totals   pricing.Totals        `json:"totals"`
	Payment  domain.PaymentDetails `json:"payment"`
	DraftID  string                `json:"draft_id,omitempty"`
}

func viewOf(wf *checkout.Workflow) cartView {
	sess := wf.Session()
	return cartView{
		State:    wf.State(),
		Customer: sess.Customer,
		Cart:     sess.Cart,
		Totals:   sess.Cart.Totals(),
		Payment:  sess.Payment,
		DraftID:  sess.DraftID,
	}
}

func (h *Handler) respondCart(w http.ResponseWriter, wf *checkout.Workflow) {
	respondJSON(w, http.StatusOK, viewOf(wf))
}

// Catalog and patient handlers

func (h *Handler) listCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Catalog.Items())
}

func (h *Handler) refreshCatalog(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, roleManager) {
		return
	}
	if err := h.svc.Catalog.Refresh(r.Context()); err != nil {
		h.logger.Error("catalog refresh failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to refresh catalog")
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Catalog.Items())
}

func (h *Handler) listPatients(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Patients.List(r.Context())
	if err != nil {
		h.logger.Error("list patients failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to list patients")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) listPrescriptions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	list, err := h.svc.Patients.Prescriptions(r.Context(), id)
	if err != nil {
		h.logger.Error("list prescriptions failed", zap.Int64("patient_id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to list prescriptions")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// Cart handlers

type customerRequest struct {
	PatientID int64 `json:"patient_id"`
	Discard   bool  `json:"discard"`
}

func (h *Handler) selectCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	patient, err := h.svc.Patients.Get(r.Context(), req.PatientID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	wf := h.workflow(r)
	err = wf.Update(func(s *cart.Session) error {
		dropped := len(s.Cart.Lines)
		previous := s.Customer
		if err := s.SelectCustomer(patient, req.Discard); err != nil {
			return err
		}
		if previous != nil && previous.ID != patient.ID && dropped > 0 {
			h.logger.Warn("customer switched, cart discarded",
				zap.Int64("from_patient_id", previous.ID),
				zap.Int64("to_patient_id", patient.ID),
				zap.Int("lines", dropped))
		}
		return nil
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, wf)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, h.workflow(r))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	wf := h.workflow(r)
	if err := wf.Update(func(s *cart.Session) error { _, err := s.Clear(); return err }); err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, wf)
}

type addLineRequest struct {
	CatalogItemID  int64 `json:"catalog_item_id"`
	VariationIndex int   `json:"variation_index"`
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, ok := h.svc.Catalog.Item(req.CatalogItemID)
	if !ok {
		respondError(w, http.StatusNotFound, "item not found")
		return
	}
	h.mutate(w, r, func(s *cart.Session) error {
		_, err := s.AddLine(item, req.VariationIndex)
		return err
	})
}

func (h *Handler) scanCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	match, err := resolver.New(h.svc.Catalog.Items()).ResolveCode(req.Code)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	h.mutate(w, r, func(s *cart.Session) error {
		_, err := s.AddLine(match.Item, match.VariationIndex)
		return err
	})
}

func (h *Handler) updateLine(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid line index")
		return
	}
	var req struct {
		Quantity int64 `json:"quantity"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.mutate(w, r, func(s *cart.Session) error {
		_, err := s.UpdateQuantity(index, req.Quantity)
		return err
	})
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid line index")
		return
	}
	h.mutate(w, r, func(s *cart.Session) error {
		_, err := s.RemoveLine(index)
		return err
	})
}

type pricingRequest struct {
	DiscountKind   domain.DiscountKind `json:"discount_kind"`
	DiscountValue  decimal.Decimal     `json:"discount_value"`
	DeliveryCharge decimal.Decimal     `json:"delivery_charge"`
	RoundOff       bool                `json:"round_off"`
}

// updatePricing applies discount, delivery and round-off together; nothing
// changes unless all of them are valid.
func (h *Handler) updatePricing(w http.ResponseWriter, r *http.Request) {
	var req pricingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.mutate(w, r, func(s *cart.Session) error {
		staged := s.Clone()
		if _, err := staged.SetDiscount(domain.Discount{Kind: req.DiscountKind, Value: req.DiscountValue}); err != nil {
			return err
		}
		if _, err := staged.SetDeliveryCharge(req.DeliveryCharge); err != nil {
			return err
		}
		if _, err := staged.SetRoundOff(req.RoundOff); err != nil {
			return err
		}
		*s = staged
		return nil
	})
}

func (h *Handler) updatePayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentDetails
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.mutate(w, r, func(s *cart.Session) error {
		return s.SetPayment(req)
	})
}

type importResponse struct {
	Report  resolver.ImportReport `json:"report"`
	Summary string                `json:"summary"`
	Cart    cartView              `json:"cart"`
}

func (h *Handler) importPrescription(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid prescription id")
		return
	}
	wf := h.workflow(r)
	customer := wf.Session().Customer
	if customer == nil {
		respondDomainError(w, cart.ErrNoCustomerSelected)
		return
	}
	prescription, err := h.svc.Patients.Prescription(r.Context(), customer.ID, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	res := resolver.New(h.svc.Catalog.Items())
	var report resolver.ImportReport
	err = wf.Update(func(s *cart.Session) error {
		var err error
		report, err = res.ImportPrescriptions(s, prescription)
		return err
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if len(report.Missing) > 0 {
		h.logger.Info("prescription partially imported",
			zap.Int64("prescription_id", id),
			zap.Strings("missing", report.Missing))
	}
	respondJSON(w, http.StatusOK, importResponse{Report: report, Summary: report.Summary(), Cart: viewOf(wf)})
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fn func(*cart.Session) error) {
	wf := h.workflow(r)
	if err := wf.Update(fn); err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, wf)
}

// Draft handlers

func (h *Handler) listDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.svc.Drafts.List()
	if err != nil {
		h.logger.Error("list drafts failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "unable to list drafts")
		return
	}
	respondJSON(w, http.StatusOK, drafts)
}

func (h *Handler) parkDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var id string
	err := h.workflow(r).Update(func(s *cart.Session) error {
		var err error
		id, err = draft.Park(h.svc.Drafts, s, req.Name)
		return err
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) resumeDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	discard, _ := strconv.ParseBool(r.URL.Query().Get("discard"))
	h.mutate(w, r, func(s *cart.Session) error {
		_, err := draft.Resume(h.svc.Drafts, s, id, discard)
		return err
	})
}

func (h *Handler) deleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Drafts.Remove(chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Checkout handlers

func (h *Handler) beginCheckout(w http.ResponseWriter, r *http.Request) {
	wf := h.workflow(r)
	if _, err := wf.Begin(); err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, wf)
}

func (h *Handler) confirmCheckout(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentDetails
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	// A started submission runs to completion even if the client goes away.
	receipt, err := h.workflow(r).Confirm(context.WithoutCancel(r.Context()), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) cancelCheckout(w http.ResponseWriter, r *http.Request) {
	wf := h.workflow(r)
	if err := wf.Cancel(); err != nil {
		respondDomainError(w, err)
		return
	}
	h.respondCart(w, wf)
}

func (h *Handler) takeCompletion(w http.ResponseWriter, r *http.Request) {
	receipt, ok := h.workflow(r).TakeCompletion()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, receipt)
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/namexuser/body-products/internal/checkout"
)

// OrderSubmitter runs the submission pipeline.
type OrderSubmitter interface {
	Submit(ctx context.Context, sessionID string, info checkout.CustomerInfo, items []checkout.SubmittedItem) (*checkout.SubmissionResult, error)
}

type CheckoutHandler struct {
	submitter OrderSubmitter
	timeout   time.Duration
}

func NewCheckoutHandler(submitter OrderSubmitter, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		submitter: submitter,
		timeout:   timeout,
	}
}

type SubmitOrderRequestDTO struct {
	CustomerInfo checkout.CustomerInfo    `json:"customer_info"`
	CartItems    []checkout.SubmittedItem `json:"cart_items"`
}

type SubmitOrderResponseDTO struct {
	Success  bool     `json:"success"`
	OrderID  string   `json:"order_id,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// POST /api/v1/orders
//
// Totals are always recomputed server-side from catalog prices; the request
// carries only product ids and quantities.
func (h *CheckoutHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionIDFromContext(r.Context())

	var req SubmitOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.submitter.Submit(ctx, sessionID, req.CustomerInfo, req.CartItems)
	if err != nil {
		h.respondSubmitError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, SubmitOrderResponseDTO{
		Success:  true,
		OrderID:  result.OrderID.String(),
		Warnings: result.Warnings,
	})
}

func (h *CheckoutHandler) respondSubmitError(w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, SubmitOrderResponseDTO{
			Success: false,
			Error:   verr.Error(),
		})
		return
	}

	var perr *checkout.PersistenceError
	if errors.As(err, &perr) {
		respondJSON(w, http.StatusServiceUnavailable, SubmitOrderResponseDTO{
			Success: false,
			Error:   "order could not be saved, please try again",
		})
		return
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		respondJSON(w, http.StatusGatewayTimeout, SubmitOrderResponseDTO{
			Success: false,
			Error:   "order submission timed out",
		})
		return
	}

	respondJSON(w, http.StatusInternalServerError, SubmitOrderResponseDTO{
		Success: false,
		Error:   "internal server error",
	})
}

package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/coexhq/coex-backend/api/middleware"
	"github.com/coexhq/coex-backend/api/responses"
	"github.com/coexhq/coex-backend/api/validators"
	"github.com/coexhq/coex-backend/internal/payments"
	pkgerrors "github.com/coexhq/coex-backend/pkg/errors"
	"github.com/coexhq/coex-backend/pkg/logger"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger file parts spill to temp files.
const maxMultipartMemory = 10 << 20

// CreatePayment records a check payment submitted as a multipart form with
// an optional scanned check image.
func CreatePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		req, err := paymentRequestFromForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := validators.ValidateStruct(req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var image *payments.CheckImage
		file, header, err := r.FormFile("checkImage")
		switch {
		case err == nil:
			defer file.Close()
			image = &payments.CheckImage{Filename: header.Filename, Reader: file}
		case errors.Is(err, http.ErrMissingFile):
			// check image is optional
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid check image"))
			return
		}

		payment, err := svc.Create(r.Context(), actor, *req, image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

func paymentRequestFromForm(r *http.Request) (*payments.CreatePaymentRequest, error) {
	req := &payments.CreatePaymentRequest{Notes: strings.TrimSpace(r.FormValue("notes"))}

	distributorID, err := strconv.ParseUint(r.FormValue("distributorId"), 10, 64)
	if err != nil || distributorID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid distributorId is required")
	}
	req.DistributorID = uint(distributorID)

	amount, err := decimal.NewFromString(strings.TrimSpace(r.FormValue("amount")))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid amount is required")
	}
	req.Amount = amount

	if raw := strings.TrimSpace(r.FormValue("orderId")); raw != "" {
		orderID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || orderID == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid orderId parameter")
		}
		id := uint(orderID)
		req.OrderID = &id
	}

	if raw := strings.TrimSpace(r.FormValue("dueDate")); raw != "" {
		due, err := parseFormDate(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "dueDate must be an RFC 3339 timestamp or YYYY-MM-DD date")
		}
		req.DueDate = &due
	}

	return req, nil
}

func parseFormDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// ListPayments returns the actor's payments, optionally narrowed by ?status=.
func ListPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		filter := payments.ListFilter{Status: r.URL.Query().Get("status")}
		rows, err := svc.List(r.Context(), actor, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func GetPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := idParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

// UpdatePaymentStatus advances a payment along its clearing lifecycle.
func UpdatePaymentStatus(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		id, err := idParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req payments.UpdatePaymentStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.UpdateStatus(r.Context(), actor, id, req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

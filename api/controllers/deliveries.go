package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/coexhq/coex-backend/api/middleware"
	"github.com/coexhq/coex-backend/api/responses"
	"github.com/coexhq/coex-backend/api/validators"
	"github.com/coexhq/coex-backend/internal/deliveries"
	pkgerrors "github.com/coexhq/coex-backend/pkg/errors"
	"github.com/coexhq/coex-backend/pkg/logger"
)

// CreateDelivery schedules a delivery for an accepted order.
func CreateDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var req deliveries.CreateDeliveryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.Create(r.Context(), actor, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, delivery)
	}
}

// ListDeliveries returns the actor's deliveries, optionally narrowed by ?status=.
func ListDeliveries(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		if actor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		filter := deliveries.ListFilter{Status: r.URL.Query().Get("status")}
		rows, err := svc.List(r.Context(), actor, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func GetDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
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

		delivery, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

// ConfirmDelivery settles a delivery as received. It accepts a multipart form
// carrying the confirmation type, the OTP code when applicable, and an
// optional proof-of-receipt image.
func ConfirmDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		req := deliveries.ConfirmDeliveryRequest{
			ConfirmationType: strings.TrimSpace(r.FormValue("confirmationType")),
			OTPCode:          strings.TrimSpace(r.FormValue("otpCode")),
			Notes:            strings.TrimSpace(r.FormValue("notes")),
		}
		if err := validators.ValidateStruct(&req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var image *deliveries.ConfirmationImage
		file, header, err := r.FormFile("confirmationImage")
		switch {
		case err == nil:
			defer file.Close()
			image = &deliveries.ConfirmationImage{Filename: header.Filename, Reader: file}
		case errors.Is(err, http.ErrMissingFile):
			// confirmation image is optional
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid confirmation image"))
			return
		}

		delivery, err := svc.Confirm(r.Context(), actor, id, req, image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/moralesdev/storeapi-backend/api/responses"
	"github.com/moralesdev/storeapi-backend/api/validators"
	"github.com/moralesdev/storeapi-backend/internal/analysis"
	"github.com/moralesdev/storeapi-backend/internal/invoices"
	pkgerrors "github.com/moralesdev/storeapi-backend/pkg/errors"
	"github.com/moralesdev/storeapi-backend/pkg/logger"
)

// InvoiceList returns invoices filtered by orderId and isPaid, newest issue
// date first.
func InvoiceList(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParseQueryIntPtr(r, "orderId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		isPaid, err := validators.ParseQueryBoolPtr(r, "isPaid")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.List(ctx, invoices.ListFilter{OrderID: orderID, IsPaid: isPaid})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// InvoiceDetail returns a single invoice with its orders.
func InvoiceDetail(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := urlParamInt(r, "id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		invoice, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

// InvoiceCreate creates a single invoice.
func InvoiceCreate(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var input invoices.CreateInvoiceInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		invoice, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		w.Header().Set("Location", fmt.Sprintf("/api/invoices/%d", invoice.ID))
		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

// InvoiceCreateBulk creates a batch of invoices all-or-nothing.
func InvoiceCreateBulk(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var inputs []invoices.CreateInvoiceInput
		if err := validators.DecodeJSONBodySlice(r, &inputs); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.CreateBulk(ctx, inputs)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// InvoiceAnalyze forwards the invoice dataset to the analysis service.
func InvoiceAnalyze(svc analysis.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		result, err := svc.AnalyzeInvoices(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func urlParamInt(r *http.Request, key string) (int, error) {
	raw := chi.URLParam(r, key)
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a positive integer").
			WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

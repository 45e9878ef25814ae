package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/orderrelay/orderrelay/internal/orders"
	"github.com/orderrelay/orderrelay/internal/services"
	"github.com/orderrelay/orderrelay/internal/shopify"
	"github.com/orderrelay/orderrelay/ui/views"
)

const dashboardOrderLimit = 50

func (h *Handlers) render(w http.ResponseWriter, ctx context.Context, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(ctx, w); err != nil {
		h.loggerFromContext(ctx).Error("failed to render page", "error", err)
	}
}

func (h *Handlers) renderNotFound(w http.ResponseWriter, ctx context.Context) {
	h.render(w, ctx, http.StatusNotFound, views.NotFoundPage())
}

// NotFound is the router fallback.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderNotFound(w, r.Context())
}

// Dashboard lists recent orders, or search results when q is set.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		list []shopify.Order
		err  error
	)
	if query != "" {
		list, err = h.printService.Search(ctx, query)
	} else {
		list, err = h.printService.Recent(ctx, dashboardOrderLimit)
	}

	props := views.DashboardProps{
		Query:             query,
		PrinterConfigured: h.printService.PrinterConfigured(),
	}
	if err != nil {
		logger.Error("failed to load orders", "query", query, "error", err)
		props.Flash = &views.Flash{Message: "Could not load orders from Shopify.", Error: true}
		h.render(w, ctx, http.StatusBadGateway, views.DashboardPage(props))
		return
	}

	props.Orders = make([]views.OrderRow, 0, len(list))
	for i := range list {
		props.Orders = append(props.Orders, orderRow(&list[i]))
	}
	h.render(w, ctx, http.StatusOK, views.DashboardPage(props))
}

func orderRow(order *shopify.Order) views.OrderRow {
	data := orders.Extract(order)
	customer := data.Recipient.Name
	if customer == "" {
		customer = data.Giver.Name
	}
	return views.OrderRow{
		ID:           order.IDString(),
		Name:         data.OrderNumber,
		Date:         data.OrderDate,
		Customer:     customer,
		DeliveryType: string(data.DeliveryType),
		DeliveryDate: data.DeliveryDate,
		HasGift:      data.HasGiftMessage(),
	}
}

// DashboardOrder shows the edit form and document previews for one order.
// Override fields in the query string are applied to the form and previews.
func (h *Handlers) DashboardOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := mux.Vars(r)["orderID"]
	form := r.URL.Query()

	_, data, err := h.printService.OrderData(ctx, orderID, services.OverridesFromForm(form))
	if err != nil {
		h.orderLoadFailed(w, r, orderID, err)
		return
	}

	h.render(w, ctx, http.StatusOK, views.OrderPage(views.OrderPageProps{
		ID:   orderID,
		Data: data,
		Form: form,
	}))
}

// DashboardPreview serves the raw HTML of doc for the preview frames.
func (h *Handlers) DashboardPreview(doc services.Document) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		orderID := mux.Vars(r)["orderID"]

		html, err := h.printService.Preview(ctx, orderID, doc, services.OverridesFromForm(r.URL.Query()))
		if err != nil {
			h.orderLoadFailed(w, r, orderID, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if _, err := w.Write([]byte(html)); err != nil {
			h.loggerFromContext(ctx).Error("failed to write preview", "document", doc, "error", err)
		}
	}
}

// DashboardPrint prints one document with the submitted overrides.
func (h *Handlers) DashboardPrint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := mux.Vars(r)["orderID"]
	logger := h.loggerFromContext(ctx).With("order_id", orderID)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Invalid form")
		return
	}

	doc, err := services.ParseDocument(r.PostForm.Get("document"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Unknown document")
		return
	}

	form := url.Values{}
	for key, values := range r.PostForm {
		if key != "document" {
			form[key] = values
		}
	}
	overrides := services.OverridesFromForm(form)

	result, printErr := h.printService.Reprint(ctx, orderID, doc, overrides)
	if errors.Is(printErr, services.ErrOrderNotFound) {
		h.renderNotFound(w, ctx)
		return
	}

	_, data, err := h.printService.OrderData(ctx, orderID, overrides)
	if err != nil {
		h.orderLoadFailed(w, r, orderID, err)
		return
	}

	props := views.OrderPageProps{ID: orderID, Data: data, Form: form}
	status := http.StatusOK
	switch {
	case printErr != nil:
		logger.Error("dashboard print failed", "document", doc, "error", printErr)
		props.Flash = &views.Flash{Message: fmt.Sprintf("Print failed: %v", printErr), Error: true}
		status = http.StatusBadGateway
	case len(result.Jobs) > 0 && result.Jobs[0].Skipped:
		props.Flash = &views.Flash{Message: fmt.Sprintf("No printer configured for %s.", doc), Error: true}
	default:
		logger.Info("dashboard print submitted", "document", doc)
		props.Flash = &views.Flash{Message: fmt.Sprintf("Sent %s for %s to the printer.", doc, data.OrderNumber)}
	}
	h.render(w, ctx, status, views.OrderPage(props))
}

func (h *Handlers) orderLoadFailed(w http.ResponseWriter, r *http.Request, orderID string, err error) {
	if errors.Is(err, services.ErrOrderNotFound) {
		h.renderNotFound(w, r.Context())
		return
	}
	h.loggerFromContext(r.Context()).Error("failed to load order", "order_id", orderID, "error", err)
	http.Error(w, "Failed to load order", http.StatusBadGateway)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/orderrelay/orderrelay/internal/services"
)

// PrintOrder fetches an order by id and prints it.
func (h *Handlers) PrintOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := strings.TrimSpace(mux.Vars(r)["orderID"])
	logger := h.loggerFromContext(ctx).With("order_id", orderID)

	if _, err := strconv.ParseInt(orderID, 10, 64); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Invalid order id")
		return
	}

	result, err := h.printService.PrintOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			h.writeError(w, r, http.StatusNotFound, "Order not found")
			return
		}
		logger.Error("failed to print order", "error", err)
		if result != nil {
			h.writeJSON(w, r, http.StatusBadGateway, result)
			return
		}
		h.writeError(w, r, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, r, http.StatusOK, result)
}

type printRecentResponse struct {
	Count   int                    `json:"count"`
	Results []services.PrintResult `json:"results"`
}

// PrintRecent prints the latest orders. The count path segment defaults to
// 5 and is capped at 50.
func (h *Handlers) PrintRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.loggerFromContext(ctx)

	count, err := parseCount(mux.Vars(r)["count"])
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "Invalid count")
		return
	}

	results, err := h.printService.PrintRecent(ctx, count)
	if err != nil {
		logger.Error("failed to print recent orders", "count", count, "error", err)
		h.writeError(w, r, http.StatusBadGateway, err.Error())
		return
	}

	h.writeJSON(w, r, http.StatusOK, printRecentResponse{Count: len(results), Results: results})
}

func parseCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return services.DefaultRecentPrintCount, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("count must be a positive integer")
	}
	if n > services.MaxRecentPrintCount {
		n = services.MaxRecentPrintCount
	}
	return n, nil
}

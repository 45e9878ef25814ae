package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orderrelay/orderrelay/internal/services"
)

func TestPrintOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantJobs   int
	}{
		{name: "known order", path: "/print/450789469", wantStatus: http.StatusOK, wantJobs: 2},
		{name: "missing order", path: "/print/42", wantStatus: http.StatusNotFound},
		{name: "non numeric id", path: "/print/abc", wantStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, services.Printers{Invoice: 11, GiftCard: 22})
			rec := env.do(httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus != http.StatusOK {
				return
			}

			var result services.PrintResult
			if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
				t.Fatalf("decode result: %v", err)
			}
			if result.OrderNumber != "#1001" || len(result.Jobs) != tc.wantJobs {
				t.Fatalf("result = %+v", result)
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "", want: 5},
		{in: "3", want: 3},
		{in: "500", want: 50},
		{in: "0", wantErr: true},
		{in: "-2", wantErr: true},
		{in: "many", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			got, err := parseCount(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("parseCount(%q) expected error", tc.in)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("parseCount(%q) = %d, %v, want %d", tc.in, got, err, tc.want)
			}
		})
	}
}

func TestPrintRecent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, services.Printers{Invoice: 11})
	rec := env.do(httptest.NewRequest(http.MethodGet, "/print-recent/2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body printRecentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Count != 1 || body.Results[0].Jobs[0].JobID != 1 {
		t.Fatalf("response = %+v", body)
	}

	if rec := env.do(httptest.NewRequest(http.MethodGet, "/print-recent/zero", nil)); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid count status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

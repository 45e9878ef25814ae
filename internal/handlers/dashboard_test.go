package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/orderrelay/orderrelay/internal/services"
)

func TestDashboard_ListsAndSearches(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, services.Printers{Invoice: 11})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{"#1001", "Ana Ruiz", `href="/dashboard/orders/450789469"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected dashboard to contain %q", want)
		}
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/dashboard?q=%239999", nil))
	if !strings.Contains(rec.Body.String(), "No orders match") {
		t.Fatal("expected empty search message")
	}
}

func TestDashboard_EscapesQuery(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, services.Printers{})
	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard?q="+url.QueryEscape(`<script>x</script>`), nil))
	if strings.Contains(rec.Body.String(), "<script>x</script>") {
		t.Fatal("expected search query to be escaped")
	}
	if !strings.Contains(rec.Body.String(), "Invoice printer is not configured") {
		t.Fatal("expected printer warning")
	}
}

func TestDashboardOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, services.Printers{Invoice: 11})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard/orders/450789469?recipient_name=Maria", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`value="Maria"`,
		`value="Miami, FL 33101"`,
		`src="/dashboard/orders/450789469/giftcard?recipient_name=Maria"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected order page to contain %q", want)
		}
	}

	if rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard/orders/42", nil)); rec.Code != http.StatusNotFound {
		t.Fatalf("missing order status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDashboardPreview_AppliesOverrides(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, services.Printers{})
	rec := env.do(httptest.NewRequest(http.MethodGet, "/dashboard/orders/450789469/giftcard?gift_message=Much+love", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Much love") {
		t.Fatal("expected overridden gift message in preview")
	}
}

func TestDashboardPrint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, services.Printers{Invoice: 11, GiftCard: 22})
	form := url.Values{"document": {"giftcard"}, "gift_receiver": {"Maria Lopez"}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard/orders/450789469/print", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := env.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Sent giftcard for #1001") {
		t.Fatal("expected success flash")
	}
	if titles := env.submitter.titles(); len(titles) != 1 || titles[0] != "Gift Card #1001" {
		t.Fatalf("jobs = %v", titles)
	}

	form.Set("document", "label")
	req = httptest.NewRequest(http.MethodPost, "/dashboard/orders/450789469/print", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if rec := env.do(req); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown document status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/api/properties/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/properties/{id}", "418"))
	for _, id := range []string{"1", "2", "3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/properties/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/properties/{id}", "418"))

	if after-before != 3 {
		t.Errorf("counted %v requests, want 3", after-before)
	}
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(premiumUpgrades)
	RecordPremiumUpgrade()
	if got := testutil.ToFloat64(premiumUpgrades) - before; got != 1 {
		t.Errorf("premium upgrades delta = %v, want 1", got)
	}

	before = testutil.ToFloat64(offers.WithLabelValues("accepted"))
	RecordOffer("accepted")
	if got := testutil.ToFloat64(offers.WithLabelValues("accepted")) - before; got != 1 {
		t.Errorf("accepted offers delta = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordSearch()
	RecordPropertyView()
	RecordMessage()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"fsbo_searches_total", "fsbo_property_views_total", "fsbo_messages_sent_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("exposition missing %s", name)
		}
	}
}

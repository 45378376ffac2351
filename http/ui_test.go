package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"claimcharge/claims"
)

func newTestUI(t *testing.T, fake *fakePredictor) *UI {
	t.Helper()
	ui, err := NewUI("templates", fake, claims.NewAssessor(claims.DefaultThresholds()), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ui
}

func TestFormPageRenders(t *testing.T) {
	mux := http.NewServeMux()
	newTestUI(t, &fakePredictor{}).Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, field := range []string{"valeur_vehicule_neuf", "age_vehicule_ans", "puissance_fiscale", "type_conducteur", "zone_circulation"} {
		if !strings.Contains(body, field) {
			t.Fatalf("form missing field %s", field)
		}
	}
}

func validForm() url.Values {
	return url.Values{
		"valeur_vehicule_neuf": {"250000"},
		"age_vehicule_ans":     {"5"},
		"puissance_fiscale":    {"7"},
		"type_conducteur":      {"Principal"},
		"zone_circulation":     {"Urbaine"},
	}
}

func postForm(mux *http.ServeMux, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestFormSubmitRendersResult(t *testing.T) {
	mux := http.NewServeMux()
	newTestUI(t, &fakePredictor{charge: 120000}).Register(mux)

	w := postForm(mux, validForm())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "120 000 DH") {
		t.Fatalf("result amount missing from page: %s", body)
	}
	if !strings.Contains(body, "Charge moyenne à surveiller.") {
		t.Fatal("band message missing from page")
	}
}

func TestFormSubmitRejectsBadValues(t *testing.T) {
	mux := http.NewServeMux()
	fake := &fakePredictor{charge: 120000}
	newTestUI(t, fake).Register(mux)

	form := validForm()
	form.Set("valeur_vehicule_neuf", "beaucoup")
	if w := postForm(mux, form); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	form = validForm()
	form.Set("zone_circulation", "Montagne")
	if w := postForm(mux, form); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if fake.calls != 0 {
		t.Fatal("predictor should not run on invalid input")
	}
}

package http

import (
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"claimcharge/claims"
)

// UI renders the claim form and its result panel.
type UI struct {
	templates *template.Template
	predictor PredictService
	assessor  *claims.Assessor
	logger    *zap.Logger
}

func NewUI(templateDir string, predictor PredictService, assessor *claims.Assessor, logger *zap.Logger) (*UI, error) {
	tpl, err := template.ParseFiles(
		filepath.Join(templateDir, "layout.html"),
		filepath.Join(templateDir, "predict.html"),
	)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UI{templates: tpl, predictor: predictor, assessor: assessor, logger: logger}, nil
}

func (u *UI) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", u.handleForm)
	mux.HandleFunc("POST /predict", u.handleSubmit)
}

type formView struct {
	Input     claims.ClaimInput
	Powers    []int
	MinValue  int
	MaxValue  int
	ValueStep int
	MinAge    int
	MaxAge    int
	Result    *claims.Assessment
	Error     string
}

func defaultFormView() formView {
	powers := make([]int, 0, claims.MaxFiscalPower-claims.MinFiscalPower+1)
	for p := claims.MinFiscalPower; p <= claims.MaxFiscalPower; p++ {
		powers = append(powers, p)
	}
	return formView{
		Input: claims.ClaimInput{
			VehicleValue: 250000,
			VehicleAge:   5,
			FiscalPower:  7,
			DriverType:   claims.DriverPrincipal,
			Zone:         claims.ZoneUrban,
		},
		Powers:    powers,
		MinValue:  claims.MinVehicleValue,
		MaxValue:  claims.MaxVehicleValue,
		ValueStep: 10000,
		MinAge:    claims.MinVehicleAge,
		MaxAge:    claims.MaxVehicleAge,
	}
}

func (u *UI) handleForm(w http.ResponseWriter, r *http.Request) {
	u.render(w, defaultFormView())
}

func (u *UI) handleSubmit(w http.ResponseWriter, r *http.Request) {
	view := defaultFormView()

	input, err := parseClaimForm(r)
	if err != nil {
		view.Error = "Paramètres invalides : " + err.Error()
		w.WriteHeader(http.StatusBadRequest)
		u.render(w, view)
		return
	}
	view.Input = input

	vector, err := input.Features()
	if err != nil {
		view.Error = "Paramètres invalides : " + err.Error()
		w.WriteHeader(http.StatusBadRequest)
		u.render(w, view)
		return
	}

	charge, err := u.predictor.Predict(vector)
	if err != nil {
		u.logger.Error("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
		view.Error = "La prédiction a échoué. Veuillez réessayer."
		w.WriteHeader(http.StatusInternalServerError)
		u.render(w, view)
		return
	}

	assessment := u.assessor.Assess(charge)
	view.Result = &assessment
	u.render(w, view)
}

func parseClaimForm(r *http.Request) (claims.ClaimInput, error) {
	if err := r.ParseForm(); err != nil {
		return claims.ClaimInput{}, err
	}

	value, err := strconv.ParseFloat(r.FormValue("valeur_vehicule_neuf"), 64)
	if err != nil {
		return claims.ClaimInput{}, err
	}
	age, err := strconv.Atoi(r.FormValue("age_vehicule_ans"))
	if err != nil {
		return claims.ClaimInput{}, err
	}
	power, err := strconv.Atoi(r.FormValue("puissance_fiscale"))
	if err != nil {
		return claims.ClaimInput{}, err
	}

	return claims.ClaimInput{
		VehicleValue: value,
		VehicleAge:   age,
		FiscalPower:  power,
		DriverType:   r.FormValue("type_conducteur"),
		Zone:         r.FormValue("zone_circulation"),
	}, nil
}

func (u *UI) render(w http.ResponseWriter, view formView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := u.templates.ExecuteTemplate(w, "layout.html", view); err != nil {
		u.logger.Error("template render failed", zap.Error(err))
	}
}

package handlers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"croppredict/internal/core"
	"croppredict/internal/predictor"
	"croppredict/internal/render"
	"croppredict/internal/types"
)

//go:embed templates/*.html static/style.css
var webFS embed.FS

// sidebarInfo is shown on every page.
const sidebarInfo = "This application predicts which crop is suitable for your land based on soil and climate conditions."

var homeParameters = []string{
	"Nitrogen (N)",
	"Phosphorus (P)",
	"Potassium (K)",
	"Air temperature",
	"Air humidity",
	"Soil pH",
}

// formField describes one numeric input of the prediction form.
type formField struct {
	Name  string
	Label string
	Min   string
	Max   string
	Value string
	Hint  string
	Error string

	required bool
}

// readingFields lists the inputs in feature order. Names match the JSON
// field names so validator errors map straight onto them.
func readingFields() []formField {
	pr := predictor.PlausibleRanges
	nutrientHint := "Typical values start at " + num(pr.NutrientFloor)
	return []formField{
		{Name: "nitrogen", Label: "Nitrogen (N)", Min: num(types.MinNutrient), Max: num(types.MaxNutrient), Hint: nutrientHint},
		{Name: "phosphorus", Label: "Phosphorus (P)", Min: num(types.MinNutrient), Max: num(types.MaxNutrient), Hint: nutrientHint},
		{Name: "potassium", Label: "Potassium (K)", Min: num(types.MinNutrient), Max: num(types.MaxNutrient), Hint: nutrientHint},
		{Name: "temperature", Label: "Temperature (°C)", Min: num(types.MinTemperature), Max: num(types.MaxTemperature),
			Hint: rangeHint(pr.Temperature), required: true},
		{Name: "humidity", Label: "Humidity (%)", Min: num(types.MinHumidity), Max: num(types.MaxHumidity),
			Hint: rangeHint(pr.Humidity), required: true},
		{Name: "ph", Label: "Soil pH", Min: num(types.MinPH), Max: num(types.MaxPH),
			Hint: rangeHint(pr.PH), required: true},
	}
}

func rangeHint(r predictor.Range) string {
	return "Typical range " + num(r.Min) + " to " + num(r.Max)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type pageData struct {
	Title      string
	Active     string
	Sidebar    string
	Version    string
	Banner     *render.View
	Parameters []string
	Fields     []formField
	Result     *render.View
}

// WebHandler serves the HTML pages and the embedded stylesheet.
type WebHandler struct {
	service   PredictionService
	validator *core.Validator
	logger    *slog.Logger
	banner    *render.View
	version   string
	pages     map[string]*template.Template
	static    http.Handler
}

// NewWebHandler parses the embedded templates. loadErr is the artifact load
// failure, if any; it is rendered as a banner on every page.
func NewWebHandler(svc PredictionService, loadErr error, v *core.Validator, l *slog.Logger, version string) (*WebHandler, error) {
	if l == nil {
		l = slog.Default()
	}

	pages := make(map[string]*template.Template, 2)
	for _, name := range []string{"home", "predict"} {
		t, err := template.ParseFS(webFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}

	staticFS, err := fs.Sub(webFS, "static")
	if err != nil {
		return nil, err
	}

	h := &WebHandler{
		service:   svc,
		validator: v,
		logger:    l,
		version:   version,
		pages:     pages,
		static:    http.StripPrefix("/static/", http.FileServerFS(staticFS)),
	}
	if loadErr != nil || !svc.Ready() {
		banner := render.LoadFailure(loadErr)
		h.banner = &banner
	}
	return h, nil
}

// RegisterRoutes mounts the pages at the root router.
func (h *WebHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleHome)
	r.Get("/predict", h.HandleForm)
	r.Post("/predict", h.HandleSubmit)
	r.Get("/static/*", h.handleStatic)
}

// HandleHome handles GET /.
func (h *WebHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", pageData{
		Title:      "Home",
		Active:     "home",
		Parameters: homeParameters,
	})
}

// HandleForm handles GET /predict with the default values filled in.
func (h *WebHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	fields := readingFields()
	defaults := types.DefaultReading().Features()
	for i := range fields {
		fields[i].Value = num(defaults[i])
	}
	h.render(w, r, http.StatusOK, "predict", pageData{
		Title:  "Crop prediction",
		Active: "predict",
		Fields: fields,
	})
}

// HandleSubmit handles POST /predict.
//
// Input outside the hard bounds is sent back with field errors and never
// reaches the dispatcher. Everything else is dispatched unmodified and the
// outcome rendered under the form.
func (h *WebHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Crop prediction", Active: "predict"}

	if err := r.ParseForm(); err != nil {
		data.Fields = readingFields()
		h.render(w, r, http.StatusBadRequest, "predict", data)
		return
	}

	reading, fields, ok := parseReading(r.PostForm)
	if ok {
		if err := h.validator.ValidateStruct(reading); err != nil {
			applyFieldErrors(fields, core.FieldErrors(err))
			ok = false
		}
	}
	data.Fields = fields
	if !ok {
		h.render(w, r, http.StatusBadRequest, "predict", data)
		return
	}

	outcome, err := h.service.Predict(r.Context(), reading)
	if err != nil {
		failure := render.PipelineFailure()
		data.Result = &failure
		h.render(w, r, errorStatus(err), "predict", data)
		return
	}

	view := render.Outcome(outcome)
	data.Result = &view
	h.render(w, r, http.StatusOK, "predict", data)
}

func (h *WebHandler) handleStatic(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	h.static.ServeHTTP(w, r)
}

// parseReading reads the six inputs from the form. An empty nutrient counts
// as zero (not filled in); an empty climate field is an error. The returned
// fields echo the submitted values.
func parseReading(form url.Values) (types.SoilReading, []formField, bool) {
	fields := readingFields()
	values := make([]float64, len(fields))
	ok := true

	for i := range fields {
		raw := strings.TrimSpace(form.Get(fields[i].Name))
		fields[i].Value = raw

		if raw == "" {
			if fields[i].required {
				fields[i].Error = "is required"
				ok = false
			}
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			fields[i].Error = "must be a number"
			ok = false
			continue
		}
		values[i] = v
	}

	reading := types.SoilReading{
		Nitrogen:    values[0],
		Phosphorus:  values[1],
		Potassium:   values[2],
		Temperature: values[3],
		Humidity:    values[4],
		PH:          values[5],
	}
	return reading, fields, ok
}

func applyFieldErrors(fields []formField, errs map[string]string) {
	for i := range fields {
		if msg, ok := errs[fields[i].Name]; ok {
			fields[i].Error = msg
		}
	}
}

func errorStatus(err error) int {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func (h *WebHandler) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	data.Sidebar = sidebarInfo
	data.Version = h.version
	data.Banner = h.banner

	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		types.LoggerFromContext(r.Context(), h.logger).Error("template execution failed", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

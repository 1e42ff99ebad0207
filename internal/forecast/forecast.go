// internal/forecast/forecast.go
//
// Weather-forecast API, the consumer of AppSettings.
//
/*
Context
--------
Each request asks the resolver for the current AppSettings.  Under the
singleton policy that is the value validated at boot; under snapshot it is a
fresh resolution cycle, so an operator edit to the settings file shows up on
the next call (or turns the endpoint into a 503 until it is fixed).

Routes
------
  GET  /weatherforecast   five random days plus config echo
  GET  /settings          status and itemized errors of the current value

Admin routes
------------
  POST /settings/reload   re-run the cycle (singleton policy)

The admin router is served on its own listener (`http.admin_addr`, loopback
by default) and never on the public one.

Notes
-----
  • Rejections are reported as 503 with one JSON object per failed rule.
  • Oxford commas, two spaces after periods.
*/
package forecast

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/forecast/internal/appsettings"
	"github.com/yanizio/forecast/internal/middleware"
	"github.com/yanizio/forecast/internal/validation"
)

// Summaries is the pool forecasts draw from.
var Summaries = []string{
	"Freezing", "Bracing", "Chilly", "Cool", "Mild",
	"Warm", "Balmy", "Hot", "Sweltering", "Scorching",
}

const days = 5

// Forecast is one day in the response.
type Forecast struct {
	Date              string `json:"date"`
	TemperatureC      int    `json:"temperatureC"`
	TemperatureF      int    `json:"temperatureF"`
	Summary           string `json:"summary"`
	Config            string `json:"config"`
	ConnectionStrings string `json:"connectionStrings"`
}

type ruleError struct {
	Stage   string `json:"stage"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type errorBody struct {
	Error  string      `json:"error"`
	Errors []ruleError `json:"errors,omitempty"`
}

type statusBody struct {
	Policy     string      `json:"policy"`
	Status     string      `json:"status"`
	ResolvedAt time.Time   `json:"resolvedAt"`
	Errors     []ruleError `json:"errors,omitempty"`
}

// Handler serves the routes above.  Zero value is invalid.
type Handler struct {
	res *appsettings.Resolver
	now func() time.Time
}

// New binds the handler to a resolver.
func New(res *appsettings.Resolver) *Handler {
	return &Handler{res: res, now: time.Now}
}

// Routes returns the public router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/weatherforecast", h.getForecast)
	r.Get("/settings", h.getSettings)
	return r
}

// AdminRoutes returns the operator router.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/settings/reload", h.postReload)
	return r
}

func (h *Handler) getForecast(w http.ResponseWriter, r *http.Request) {
	log := middleware.Logger(r.Context())

	cur, err := h.res.Current(r.Context())
	if err != nil {
		log.Warnw("forecast unavailable", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, failure(err))
		return
	}

	s := cur.Settings()
	log.Infow("smtp settings", "smtp_ip", s.SmtpIp, "smtp_port", s.SmtpPort)

	today := h.now()
	out := make([]Forecast, 0, days)
	for i := 1; i <= days; i++ {
		c := rand.Intn(75) - 20 // -20 ≤ c < 55
		out = append(out, Forecast{
			Date:              today.AddDate(0, 0, i).Format(time.DateOnly),
			TemperatureC:      c,
			TemperatureF:      32 + int(float64(c)/0.5556),
			Summary:           Summaries[rand.Intn(len(Summaries))],
			Config:            s.SomeKey,
			ConnectionStrings: s.ConnectionString(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	cur, err := h.res.Current(r.Context())
	body := statusBody{
		Policy:     h.res.Policy().String(),
		Status:     cur.Status().String(),
		ResolvedAt: cur.ResolvedAt(),
		Errors:     ruleErrors(cur.Errors()),
	}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) postReload(w http.ResponseWriter, r *http.Request) {
	if err := h.res.Reload(r.Context()); err != nil {
		middleware.Logger(r.Context()).Warnw("settings reload rejected", "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, failure(err))
		return
	}
	h.getSettings(w, r)
}

// failure converts a resolver error into a response body.  Validation
// errors are itemized; source and bind errors are passed as one message.
func failure(err error) errorBody {
	var ve validation.Errors
	if errors.As(err, &ve) {
		return errorBody{Error: "settings rejected", Errors: ruleErrors(ve)}
	}
	return errorBody{Error: err.Error()}
}

func ruleErrors(es validation.Errors) []ruleError {
	if len(es) == 0 {
		return nil
	}
	out := make([]ruleError, len(es))
	for i, e := range es {
		out[i] = ruleError{Stage: string(e.Stage), Field: e.Field, Message: e.Message}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

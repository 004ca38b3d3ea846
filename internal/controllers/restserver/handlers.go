package restserver

import (
	"net/http"
	"strings"

	"github.com/chrissnell/climateapi/internal/constants"
	"github.com/chrissnell/climateapi/internal/log"
	"github.com/chrissnell/climateapi/internal/types"
	"github.com/chrissnell/climateapi/pkg/responseformat"
	"github.com/gorilla/mux"
)

// Route describes an endpoint listed on the index page
type Route struct {
	Path        string
	Description string
}

// Linkable reports whether Path can be followed as is. Paths with <start> or
// <end> placeholders are shown as text.
func (r Route) Linkable() bool {
	return !strings.Contains(r.Path, "<")
}

// IndexRoutes are the endpoints advertised on the index page
var IndexRoutes = []Route{
	{constants.APIPrefix + "/precipitation", "Precipitation Analysis (Last 12 Months)"},
	{constants.APIPrefix + "/stations", "List of Stations"},
	{constants.APIPrefix + "/tobs", "Temperature Observations (Last 12 Months)"},
	{constants.APIPrefix + "/<start>", "Temperature Statistics (Start Date)"},
	{constants.APIPrefix + "/<start>/<end>", "Temperature Statistics (Date Range)"},
}

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// ServeIndex lists the available routes
func (h *Handlers) ServeIndex(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	templateData := struct {
		Routes []Route
	}{
		Routes: IndexRoutes,
	}

	if err := h.controller.indexView.Execute(w, templateData); err != nil {
		log.Error("error executing index template:", err)
	}
}

// GetPrecipitation returns the last year of precipitation keyed by date
func (h *Handlers) GetPrecipitation(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, h.controller.engine.PrecipitationLastYear())
}

// GetStations returns every station id
func (h *Handlers) GetStations(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, h.controller.engine.ListStations())
}

// GetTemperatureObservations returns the last year of temperature readings
// for the most active station
func (h *Handlers) GetTemperatureObservations(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, h.controller.engine.TemperatureObservationsMostActiveStation())
}

// GetTemperatureStats returns min/avg/max temperatures from {start} onward
func (h *Handlers) GetTemperatureStats(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	agg, err := h.controller.engine.TemperatureStats(vars["start"])
	h.writeAggregate(w, req, agg, err)
}

// GetTemperatureStatsRange returns min/avg/max temperatures between {start}
// and {end} inclusive
func (h *Handlers) GetTemperatureStatsRange(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	agg, err := h.controller.engine.TemperatureStatsRange(vars["start"], vars["end"])
	h.writeAggregate(w, req, agg, err)
}

func (h *Handlers) writeAggregate(w http.ResponseWriter, req *http.Request, agg types.TemperatureAggregate, err error) {
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.write(w, req, []types.TemperatureAggregate{agg})
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, http.StatusOK, data); err != nil {
		log.Errorw("error encoding response", "path", req.URL.Path, "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, err error) {
	kind, status := classifyError(err)
	log.Warnw("query failed", "path", req.URL.Path, "kind", kind, "status", status, "error", err)

	body := map[string]string{"error": err.Error()}
	if encErr := h.formatter.WriteResponse(w, req, status, body); encErr != nil {
		log.Errorw("error encoding error response", "path", req.URL.Path, "error", encErr)
	}
}

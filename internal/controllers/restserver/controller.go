// Package restserver serves the climate API over HTTP.
package restserver

import (
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"net/http"
	"sync"

	"github.com/chrissnell/climateapi/internal/constants"
	"github.com/chrissnell/climateapi/internal/log"
	"github.com/chrissnell/climateapi/internal/types"
	"github.com/chrissnell/climateapi/pkg/config"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Querier is the query engine as seen by the HTTP handlers
type Querier interface {
	PrecipitationLastYear() map[string]*float64
	ListStations() []string
	TemperatureObservationsMostActiveStation() []types.TemperatureObservation
	TemperatureStats(start string) (types.TemperatureAggregate, error)
	TemperatureStatsRange(start, end string) (types.TemperatureAggregate, error)
}

// Controller represents the REST server controller
type Controller struct {
	ctx          context.Context
	wg           *sync.WaitGroup
	serverConfig config.ServerData
	Server       http.Server
	engine       Querier
	indexView    *htmltemplate.Template
	logger       *zap.SugaredLogger
	handlers     *Handlers
	serveErr     chan error
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, sc config.ServerData, engine Querier, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:          ctx,
		wg:           wg,
		serverConfig: sc,
		engine:       engine,
		logger:       logger,
		serveErr:     make(chan error, 1),
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if ctrl.serverConfig.ListenAddr == "" {
		logger.Infof("server.listen_addr not provided; defaulting to %v (all interfaces)", config.DefaultListenAddr)
		ctrl.serverConfig.ListenAddr = config.DefaultListenAddr
	}

	// Set default HTTP port if not specified
	if ctrl.serverConfig.Port == 0 {
		logger.Infof("server.port not provided; defaulting to %v", config.DefaultHTTPPort)
		ctrl.serverConfig.Port = config.DefaultHTTPPort
	}

	view, err := htmltemplate.New("index.html.tmpl").ParseFS(GetAssets(), "index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("error parsing index template: %v", err)
	}
	ctrl.indexView = view

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = ctrl.serverConfig.Addr()
	ctrl.Server.Handler = requestLogMiddleware(ctrl.setupRouter())
	ctrl.Server.ErrorLog = zap.NewStdLog(log.GetZapLogger())

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server on %v...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		var err error
		if c.serverConfig.TLSEnabled() {
			err = c.Server.ListenAndServeTLS(c.serverConfig.Cert, c.serverConfig.Key)
		} else {
			err = c.Server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("REST server error: %v", err)
			c.serveErr <- err
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// Err delivers the error that stopped the server when it fails to listen or
// serve. Nothing is sent after a normal shutdown.
func (c *Controller) Err() <-chan error {
	return c.serveErr
}

// Handler returns the router serving every endpoint
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", c.handlers.ServeIndex).Methods(http.MethodGet)

	// Fixed routes are registered before the date routes so that they win
	api := router.PathPrefix(constants.APIPrefix).Subrouter()
	api.HandleFunc("/precipitation", c.handlers.GetPrecipitation).Methods(http.MethodGet)
	api.HandleFunc("/stations", c.handlers.GetStations).Methods(http.MethodGet)
	api.HandleFunc("/tobs", c.handlers.GetTemperatureObservations).Methods(http.MethodGet)
	api.HandleFunc("/{start}", c.handlers.GetTemperatureStats).Methods(http.MethodGet)
	api.HandleFunc("/{start}/{end}", c.handlers.GetTemperatureStatsRange).Methods(http.MethodGet)

	return router
}

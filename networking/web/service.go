package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fernandosanchezjr/goath9k/devices/base"
	"github.com/fernandosanchezjr/goath9k/networking/services"
	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"
)

const ShutdownTimeout = 5 * time.Second

// Service serves the status service as JSON over HTTP.
type Service struct {
	status *services.Status
	server *http.Server
}

func NewService(address string, status *services.Status) *Service {
	s := &Service{status: status}
	s.server = &http.Server{Addr: address, Handler: s.Router()}
	return s
}

func (s *Service) Router() *httprouter.Router {
	router := httprouter.New()
	router.GET("/controllers", s.GetControllers)
	router.GET("/controllers/:index", s.GetController)
	router.GET("/bindings", s.GetBindings)
	return router
}

func (s *Service) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithFields(log.Fields{
				"address": s.server.Addr,
				"error":   err,
			}).Errorln("HTTP status server stopped")
		}
	}()
}

func (s *Service) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, request *http.Request, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.WithFields(log.Fields{
			"path":  request.URL.Path,
			"error": err,
		}).Warnln("Error writing response")
	}
}

func writeError(w http.ResponseWriter, request *http.Request, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, base.ErrNotFound) {
		code = http.StatusNotFound
	} else if errors.Is(err, base.ErrNoDevice) {
		code = http.StatusServiceUnavailable
	}
	log.WithFields(log.Fields{
		"path":  request.URL.Path,
		"error": err,
	}).Debugln("Status request failed")
	http.Error(w, err.Error(), code)
}

func (s *Service) GetControllers(w http.ResponseWriter, request *http.Request, _ httprouter.Params) {
	statuses, err := s.status.Controllers()
	if err != nil {
		writeError(w, request, err)
		return
	}
	writeJSON(w, request, statuses)
}

func (s *Service) GetController(w http.ResponseWriter, request *http.Request, params httprouter.Params) {
	index, err := strconv.Atoi(params.ByName("index"))
	if err != nil {
		http.Error(w, "bad controller index", http.StatusBadRequest)
		return
	}
	status, err := s.status.Controller(index)
	if err != nil {
		writeError(w, request, err)
		return
	}
	writeJSON(w, request, status)
}

func (s *Service) GetBindings(w http.ResponseWriter, request *http.Request, _ httprouter.Params) {
	bindings, err := s.status.Bindings()
	if err != nil {
		writeError(w, request, err)
		return
	}
	writeJSON(w, request, bindings)
}

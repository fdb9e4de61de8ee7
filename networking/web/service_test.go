package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fernandosanchezjr/goath9k/bus"
	"github.com/fernandosanchezjr/goath9k/devices/atheros"
	"github.com/fernandosanchezjr/goath9k/devices/base"
	"github.com/fernandosanchezjr/goath9k/ether"
	"github.com/fernandosanchezjr/goath9k/networking/services"
)

func newTestService(t *testing.T) *Service {
	sim := bus.NewSimBus(bus.SimDevice{Address: "0000:03:00.0", Vendor: 0x168c, Device: 0x002b,
		Class: bus.ClassNetwork, Bar: 0xf7e00000, Size: 0x10000, IRQ: 17})
	mapper := bus.NewMapper(sim)
	binder := base.NewBinder(base.NewRegistry(), atheros.NewCatalog(sim, mapper), mapper)
	if _, err := binder.Acquire(ether.NewEther("ether0", atheros.CardName, 0)); err != nil {
		t.Fatal(err)
	}
	return NewService("127.0.0.1:0", services.NewStatus(binder, nil))
}

func get(t *testing.T, s *Service, path string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	s.Router().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
	return recorder
}

func TestService_Controllers(t *testing.T) {
	s := newTestService(t)
	recorder := get(t, s, "/controllers")
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected code %d", recorder.Code)
	}
	var statuses []base.Status
	if err := json.Unmarshal(recorder.Body.Bytes(), &statuses); err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 || statuses[0].Driver != "Atheros AR9285" || statuses[0].State != "enabled" {
		t.Fatalf("unexpected statuses %+v", statuses)
	}
}

func TestService_Controller(t *testing.T) {
	s := newTestService(t)
	tests := []struct {
		path string
		code int
	}{
		{"/controllers/0", http.StatusOK},
		{"/controllers/3", http.StatusNotFound},
		{"/controllers/x", http.StatusBadRequest},
	}
	for _, test := range tests {
		if recorder := get(t, s, test.path); recorder.Code != test.code {
			t.Errorf("%s: expected %d, got %d", test.path, test.code, recorder.Code)
		}
	}
}

func TestService_Bindings(t *testing.T) {
	s := newTestService(t)
	recorder := get(t, s, "/bindings")
	var bindings []services.Binding
	if err := json.Unmarshal(recorder.Body.Bytes(), &bindings); err != nil {
		t.Fatal(err)
	}
	if len(bindings) != 1 || bindings[0].Interface != "ether0" || bindings[0].Port != "0xf7e00000" {
		t.Fatalf("unexpected bindings %+v", bindings)
	}
}

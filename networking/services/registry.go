package services

import (
	"github.com/fernandosanchezjr/goath9k/devices/base"
	"github.com/valyala/gorpc"
)

func init() {
	var status base.Status
	var statuses []base.Status
	var binding Binding
	var bindings []Binding
	gorpc.RegisterType(status)
	gorpc.RegisterType(statuses)
	gorpc.RegisterType(binding)
	gorpc.RegisterType(bindings)
}

type Registry struct {
	Services map[string]interface{}
}

func NewRegistry() *Registry {
	return &Registry{Services: map[string]interface{}{}}
}

func (r *Registry) AddService(name string, service interface{}) {
	r.Services[name] = service
}

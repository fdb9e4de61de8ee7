package client

import (
	"errors"
	"github.com/fernandosanchezjr/goath9k/devices/base"
	"github.com/fernandosanchezjr/goath9k/networking/services"
	"github.com/valyala/gorpc"
	"strings"
	"time"
)

const ClientTimeout = time.Second

var ServiceNotFound = errors.New("Service not found")
var UnexpectedResponse = errors.New("Unexpected response")

func isTimeout(err error) bool {
	return strings.Contains(err.Error(), "timeout")
}

type Client struct {
	RpcClient   *gorpc.Client
	Dispatchers map[string]*gorpc.DispatcherClient
}

// NewClient builds a client for the services in registry. The registered
// values are only inspected for their method sets.
func NewClient(address string, registry *services.Registry) *Client {
	cl := &Client{
		RpcClient:   gorpc.NewTCPClient(address),
		Dispatchers: map[string]*gorpc.DispatcherClient{},
	}
	cl.RpcClient.RequestTimeout = ClientTimeout
	cl.RpcClient.LogError = gorpc.NilErrorLogger
	dispatcher := gorpc.NewDispatcher()
	for name, service := range registry.Services {
		dispatcher.AddService(name, service)
		cl.Dispatchers[name] = dispatcher.NewServiceClient(name, cl.RpcClient)
	}
	return cl
}

// NewStatusClient is a client for the status service only.
func NewStatusClient(address string) *Client {
	registry := services.NewRegistry()
	registry.AddService(services.StatusService, &services.Status{})
	return NewClient(address, registry)
}

func (cl *Client) Start() {
	cl.RpcClient.Start()
}

func (cl *Client) Stop() {
	cl.RpcClient.Stop()
}

func (cl *Client) Restart() {
	cl.Stop()
	cl.Start()
}

func (cl *Client) Call(service, funcName string, request interface{}) (interface{}, error) {
	if client, found := cl.Dispatchers[service]; !found {
		return nil, ServiceNotFound
	} else {
		var result interface{}
		var err error
		if result, err = client.Call(funcName, request); err != nil && isTimeout(err) {
			cl.Restart()
		}
		return result, err
	}
}

func (cl *Client) Controllers() ([]base.Status, error) {
	result, err := cl.Call(services.StatusService, "Controllers", nil)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	statuses, ok := result.([]base.Status)
	if !ok {
		return nil, UnexpectedResponse
	}
	return statuses, nil
}

func (cl *Client) Bindings() ([]services.Binding, error) {
	result, err := cl.Call(services.StatusService, "Bindings", nil)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	bindings, ok := result.([]services.Binding)
	if !ok {
		return nil, UnexpectedResponse
	}
	return bindings, nil
}

package main

import (
	"flag"
	"fmt"
	"github.com/fernandosanchezjr/goath9k/config"
	"github.com/fernandosanchezjr/goath9k/governor"
	"github.com/fernandosanchezjr/goath9k/logging"
	"github.com/fernandosanchezjr/goath9k/networking/client"
	"github.com/fernandosanchezjr/goath9k/utils"
	log "github.com/sirupsen/logrus"
	"os"
	"runtime/pprof"
	"runtime/trace"
)

var cpuProfile bool
var tracing bool
var query string

func init() {
	flag.BoolVar(&cpuProfile, "cpu-profile", cpuProfile, "enable cpu profiling")
	flag.BoolVar(&tracing, "trace", tracing, "enable tracing")
	flag.StringVar(&query, "query", query, "print status from the daemon at this address and exit")
}

func printStatus(address string) error {
	cl := client.NewStatusClient(address)
	cl.Start()
	defer cl.Stop()
	statuses, err := cl.Controllers()
	if err != nil {
		return err
	}
	for _, status := range statuses {
		fmt.Println(status)
	}
	bindings, err := cl.Bindings()
	if err != nil {
		return err
	}
	for _, b := range bindings {
		fmt.Printf("%s %s %s %s bound %s live=%v\n", b.ID, b.Interface, b.Controller, b.Port, b.BoundAt, b.Live)
	}
	return nil
}

func main() {
	flag.Parse()
	if query != "" {
		if err := printStatus(query); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if cpuProfile {
		f, err := os.Create("goath9k.prof")
		if err != nil {
			panic(err)
		}
		if err = pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer pprof.StopCPUProfile()
	}
	if tracing {
		f, err := os.Create("goath9k.trace")
		if err != nil {
			panic(err)
		}
		if err := trace.Start(f); err != nil {
			panic(err)
		}
		defer trace.Stop()
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithFields(log.Fields{"path": config.Path(), "error": err}).Fatal("Failed to load config")
	}
	logging.SetupLogger(cfg.LogLevel)
	defer logging.Close()
	gov, err := governor.NewGovernor(cfg, config.Path())
	if err != nil {
		log.WithError(err).Fatal("Failed to create governor")
	}
	if err := gov.Start(); err != nil {
		gov.Stop()
		log.WithError(err).Fatal("Failed to start governor")
	}
	log.Println("Governor started")
	utils.Wait()
	gov.Stop()
}

// Command zonecored runs one cluster node: it stands up the peer
// transport, the inbound dispatcher, the outbound relay, the
// repository beacon, the object-config HTTP surface, passive
// check-result ingestion, and the operator event stream, then blocks
// until signaled to shut down. Grounded on cmd/minitrue-server/main.go's
// flag-parse-then-wire-services shape.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/beaconhq/zonecore/internal/beacon"
	"github.com/beaconhq/zonecore/internal/config"
	"github.com/beaconhq/zonecore/internal/configsvc"
	"github.com/beaconhq/zonecore/internal/dispatch"
	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/eventstream"
	"github.com/beaconhq/zonecore/internal/mqttclient"
	"github.com/beaconhq/zonecore/internal/objtype"
	"github.com/beaconhq/zonecore/internal/passive"
	"github.com/beaconhq/zonecore/internal/relay"
	"github.com/beaconhq/zonecore/internal/serialprobe"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/snapshot"
	"github.com/beaconhq/zonecore/internal/transport"
	"github.com/beaconhq/zonecore/internal/zlog"
)

var log0 = zlog.Component("zonecored")

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	if cfg.EndpointName == "" || cfg.ZoneName == "" {
		log.Fatal("both -endpoint and -zone are required")
	}

	if err := os.MkdirAll(cfg.StateDir, 0700); err != nil {
		log.Fatalf("create state dir: %v", err)
	}

	bus := signalbus.New()

	zone := domain.NewZone(cfg.ZoneName, bus)
	if err := zone.Register(); err != nil {
		log.Fatalf("register local zone: %v", err)
	}
	endpoint := domain.NewEndpoint(cfg.EndpointName, cfg.ZoneName, bus)
	if err := endpoint.Register(); err != nil {
		log.Fatalf("register local endpoint: %v", err)
	}
	domain.SetZoneMembers(cfg.ZoneName, []string{cfg.EndpointName})

	dispatchCfg := dispatch.Config{
		SelfEndpoint:   cfg.EndpointName,
		LocalZone:      cfg.ZoneName,
		StateDir:       cfg.StateDir,
		Product:        "zonecore",
		AcceptCommands: cfg.AcceptCommands,
	}
	// No remote-check executor is passed in, so ExecuteCommand requests
	// are never run: each authorized one is answered with a synthetic
	// Unknown check result instead.
	d := dispatch.New(dispatchCfg, bus, nil, nil)

	listener := transport.NewListener(cfg.EndpointName, domain.Directory{}, d)
	d.SetPeer(listener)

	if err := listener.Listen(cfg.ListenAddr); err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer listener.Stop()

	relaySvc := relay.New(listener)
	relaySvc.Subscribe(bus)

	beaconSvc := beacon.New(cfg.EndpointName, cfg.ZoneName, "", listener)
	beaconSvc.Start()
	defer beaconSvc.Stop()

	eventHub := eventstream.NewHub()
	eventHub.Subscribe(bus)
	go eventHub.Run()

	configSvc := configsvc.New(cfg.ModuleDir, bus)
	registerConstructors(configSvc)
	configSvc.RegisterHTTPHandlers()
	http.HandleFunc("/v1/events/stream", eventHub.ServeWS)

	go func() {
		log0.Notice("http surface listening", zap.String("addr", cfg.HTTPAddr))
		if err := http.ListenAndServe(cfg.HTTPAddr, nil); err != nil {
			log0.Critical("http surface stopped", zap.Error(err))
		}
	}()

	snapshotPath := filepath.Join(cfg.StateDir, "lib", "zonecore", "zonecore.state")
	if _, err := os.Stat(snapshotPath); err == nil {
		if err := snapshot.RestoreObjects(snapshotPath, objtype.State, cfg.Concurrency); err != nil {
			log0.Warning("restore snapshot failed", zap.Error(err))
		}
	}

	if cfg.MQTTBroker != "" {
		mqttc, err := mqttclient.New(mqttclient.Options{
			BrokerURL: cfg.MQTTBroker,
			ClientID:  fmt.Sprintf("%s-passive", cfg.EndpointName),
		})
		if err != nil {
			log0.Warning("mqtt connect failed, passive ingestion disabled", zap.Error(err))
		} else {
			defer mqttc.Close()
			passiveSvc := passive.New(mqttc)
			if err := passiveSvc.Start(); err != nil {
				log0.Warning("passive subscribe failed", zap.Error(err))
			}
		}
	}

	if cfg.SerialSimulate || cfg.SerialPort != "" {
		if cfg.SerialHost == "" {
			log0.Warning("serial probe ingestion requires -serial_host, disabled")
		} else {
			probeSvc := serialprobe.New(serialprobe.Config{
				Port:     cfg.SerialPort,
				Baud:     cfg.SerialBaud,
				Host:     cfg.SerialHost,
				Service:  cfg.SerialService,
				Simulate: cfg.SerialSimulate,
			})
			if err := probeSvc.Start(); err != nil {
				log0.Warning("serial probe start failed", zap.Error(err))
			} else {
				defer probeSvc.Stop()
			}
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log0.Notice("shutting down, writing snapshot")
	if err := os.MkdirAll(filepath.Dir(snapshotPath), 0700); err != nil {
		log0.Warning("create snapshot dir failed", zap.Error(err))
		return
	}
	if err := snapshot.DumpObjects(snapshotPath, objtype.Config|objtype.State); err != nil {
		log0.Warning("dump snapshot failed", zap.Error(err))
	}
	_ = zlog.Sync()
}

// registerConstructors wires every domain type configsvc can
// materialize via the object-config HTTP surface. Service is composed
// from its "host!shortname" full name, so its constructor resolves the
// owning Host first.
func registerConstructors(s *configsvc.Service) {
	s.RegisterConstructor(domain.HostType.Name, func(fullName string, bus *signalbus.Bus) (configsvc.ManagedObject, error) {
		return domain.NewHost(fullName, bus), nil
	})
	s.RegisterConstructor(domain.ServiceType.Name, func(fullName string, bus *signalbus.Bus) (configsvc.ManagedObject, error) {
		hostName, shortName, ok := splitServiceName(fullName)
		if !ok {
			return nil, fmt.Errorf("zonecored: invalid service name %q", fullName)
		}
		host, ok := domain.ByNameHost(hostName)
		if !ok {
			return nil, fmt.Errorf("zonecored: unknown host %q for service %q", hostName, fullName)
		}
		return domain.NewService(host, shortName, bus), nil
	})
	s.RegisterConstructor(domain.UserType.Name, func(fullName string, bus *signalbus.Bus) (configsvc.ManagedObject, error) {
		return domain.NewUser(fullName, bus), nil
	})
	s.RegisterConstructor(domain.CheckCommandType.Name, func(fullName string, bus *signalbus.Bus) (configsvc.ManagedObject, error) {
		return domain.NewCheckCommand(fullName, bus), nil
	})
	s.RegisterConstructor(domain.EventCommandType.Name, func(fullName string, bus *signalbus.Bus) (configsvc.ManagedObject, error) {
		return domain.NewEventCommand(fullName, bus), nil
	})
	s.RegisterConstructor(domain.NotificationCommandType.Name, func(fullName string, bus *signalbus.Bus) (configsvc.ManagedObject, error) {
		return domain.NewNotificationCommand(fullName, bus), nil
	})
	s.RegisterConstructor(domain.NotificationType.Name, func(fullName string, bus *signalbus.Bus) (configsvc.ManagedObject, error) {
		return domain.NewNotification(fullName, bus), nil
	})
}

func splitServiceName(fullName string) (host, short string, ok bool) {
	for i := 0; i < len(fullName); i++ {
		if fullName[i] == '!' {
			return fullName[:i], fullName[i+1:], true
		}
	}
	return "", "", false
}

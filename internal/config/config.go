// Package config holds the process-level configuration zonecore is
// injected with: state and module directory roots, snapshot-restore
// concurrency, command-acceptance policy, and the peer identity needed
// to stand a node up. Parsed directly from flags in cmd/zonecored.
package config

import "flag"

// Config is the injected configuration every zonecore component receives
// at construction.
type Config struct {
	// StateDir is the root of runtime state: snapshot file, repository
	// files.
	StateDir string
	// ModuleDir is the root config-module tree the object-config service
	// stages files under (<ModuleDir>/_api/<stage>/conf.d/...).
	ModuleDir string
	// Concurrency bounds the snapshot-restore worker pool.
	Concurrency int
	// AcceptCommands gates whether ExecuteCommand requests are serviced
	// locally or refused with a synthetic Unknown result.
	AcceptCommands bool

	// EndpointName and ZoneName identify this process on the cluster,
	// required to construct the Endpoint/Zone this process runs as.
	EndpointName string
	ZoneName     string

	// ListenAddr is the local address the peer transport binds to.
	ListenAddr string
	// MQTTBroker is the broker URL for passive check-result ingestion.
	MQTTBroker string
	// HTTPAddr serves the object-config and event-stream HTTP surfaces.
	HTTPAddr string

	// SerialPort is the serial device to read probe readings from. Empty
	// disables serial-probe ingestion unless SerialSimulate is set.
	SerialPort string
	// SerialBaud is the serial port's baud rate.
	SerialBaud int
	// SerialHost and SerialService identify the checkable a serial
	// probe's readings are recorded against.
	SerialHost    string
	SerialService string
	// SerialSimulate synthesizes readings on a timer instead of reading
	// SerialPort, for running without attached hardware.
	SerialSimulate bool
}

// Parse parses zonecore's flags from args (os.Args[1:] in production).
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("zonecored", flag.ContinueOnError)

	cfg := &Config{}
	fs.StringVar(&cfg.StateDir, "state_dir", "var/lib/zonecore", "runtime state directory")
	fs.StringVar(&cfg.ModuleDir, "module_dir", "var/lib/zonecore/modules", "config module staging root")
	fs.IntVar(&cfg.Concurrency, "concurrency", 4, "snapshot restore worker count")
	fs.BoolVar(&cfg.AcceptCommands, "accept_commands", true, "service ExecuteCommand requests locally")
	fs.StringVar(&cfg.EndpointName, "endpoint", "", "this process's endpoint name (required)")
	fs.StringVar(&cfg.ZoneName, "zone", "", "this process's home zone name (required)")
	fs.StringVar(&cfg.ListenAddr, "listen", ":7777", "peer transport listen address")
	fs.StringVar(&cfg.MQTTBroker, "mqtt_broker", "", "MQTT broker URL for passive check-result ingestion (empty disables)")
	fs.StringVar(&cfg.HTTPAddr, "http", ":7778", "HTTP address for the object-config and event-stream surfaces")
	fs.StringVar(&cfg.SerialPort, "serial_port", "", "serial device for probe check-result ingestion (empty disables unless -serial_simulate is set)")
	fs.IntVar(&cfg.SerialBaud, "serial_baud", 9600, "serial probe baud rate")
	fs.StringVar(&cfg.SerialHost, "serial_host", "", "host to record serial probe check results against")
	fs.StringVar(&cfg.SerialService, "serial_service", "", "service short name to record serial probe check results against (empty targets the host)")
	fs.BoolVar(&cfg.SerialSimulate, "serial_simulate", false, "synthesize serial probe readings instead of reading serial_port")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

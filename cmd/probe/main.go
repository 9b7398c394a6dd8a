// Command probe is a standalone serial-probe forwarder: it reads an
// environmental sensor's serial stream (or simulates one) and publishes
// check results over MQTT to checkresults/<host>/<service>, where a
// zonecored node's internal/passive subscriber picks them up. Mirrors
// cmd/publisher/main.go's flags and simulated-vs-real read loop.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/tarm/serial"

	"github.com/beaconhq/zonecore/internal/mqttclient"
)

type submission struct {
	Host    string  `json:"host"`
	Service string  `json:"service"`
	State   int     `json:"state"`
	Output  string  `json:"output"`
}

func main() {
	port := flag.String("port", "/dev/ttyUSB0", "serial port for the probe")
	baud := flag.Int("baud", 9600, "serial baud rate")
	broker := flag.String("broker", "tcp://localhost:1883", "mqtt broker")
	host := flag.String("host", "", "host name to report check results against (required)")
	service := flag.String("service", "rack-temperature", "service short name to report against")
	sim := flag.Bool("sim", true, "simulate readings instead of reading serial")
	flag.Parse()

	if *host == "" {
		log.Fatal("-host is required")
	}

	mqttc, err := mqttclient.New(mqttclient.Options{
		BrokerURL: *broker,
		ClientID:  fmt.Sprintf("probe-%d", time.Now().UnixNano()),
	})
	if err != nil {
		log.Fatalf("mqtt connect: %v", err)
	}
	defer mqttc.Close()

	topic := fmt.Sprintf("checkresults/%s/%s", *host, *service)

	if *sim {
		for {
			temp := 18.0 + rand.Float64()*6.0
			publish(mqttc, topic, *host, *service, temp)
			time.Sleep(time.Second)
		}
	}

	sp, err := serial.OpenPort(&serial.Config{Name: *port, Baud: *baud})
	if err != nil {
		log.Fatalf("open serial: %v", err)
	}
	scanner := bufio.NewScanner(sp)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		var temp float64
		fmt.Sscanf(line, "%f", &temp)
		publish(mqttc, topic, *host, *service, temp)
	}
	if err := scanner.Err(); err != nil {
		log.Printf("serial read error: %v", err)
	}
}

func publish(mqttc *mqttclient.Client, topic, host, service string, temperature float64) {
	sub := submission{
		Host:    host,
		Service: service,
		State:   stateFor(temperature),
		Output:  fmt.Sprintf("temperature = %.1fC", temperature),
	}
	body, err := json.Marshal(sub)
	if err != nil {
		log.Printf("marshal: %v", err)
		return
	}
	if err := mqttc.Publish(topic, body, 0, false); err != nil {
		log.Printf("publish: %v", err)
		return
	}
	log.Printf("published %s", string(body))
}

// stateFor maps a rack temperature reading to Icinga-style check states:
// 0 OK, 1 Warning, 2 Critical.
func stateFor(temperature float64) int {
	switch {
	case temperature >= 30:
		return 2
	case temperature >= 26:
		return 1
	default:
		return 0
	}
}

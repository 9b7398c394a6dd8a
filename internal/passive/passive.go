// Package passive is the MQTT passive check-result submission channel:
// external plugins and NSCA-style agents publish JSON check results to
// checkresults/<host>/<service>, and the subscription callback feeds
// them through the same Checkable.ProcessCheckResult entry point a
// locally scheduled active check uses, grounded on
// internal/mqttclient's paho wrapper and internal/ingestion's
// subscribe-and-route shape.
package passive

import (
	"encoding/json"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/mqttclient"
	"github.com/beaconhq/zonecore/internal/transport"
	"github.com/beaconhq/zonecore/internal/zlog"
)

var log = zlog.Component("passive")

const topicFilter = "checkresults/+/+"

// submission is the wire shape a passive submitter publishes.
type submission struct {
	Host            string          `json:"host"`
	Service         string          `json:"service"`
	State           int             `json:"state"`
	Output          string          `json:"output"`
	CheckSource     string          `json:"check_source"`
	ScheduleStart   float64         `json:"schedule_start"`
	ScheduleEnd     float64         `json:"schedule_end"`
	ExecutionStart  float64         `json:"execution_start"`
	ExecutionEnd    float64         `json:"execution_end"`
	PerformanceData []perfdataEntry `json:"performance_data"`
}

type perfdataEntry struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Service struct {
	mqtt *mqttclient.Client
}

func New(m *mqttclient.Client) *Service {
	return &Service{mqtt: m}
}

func (s *Service) Start() error {
	log.Notice("subscribing to passive check results", zap.String("topic", topicFilter))
	return s.mqtt.Subscribe(topicFilter, 0, s.handle)
}

func (s *Service) handle(_ mqtt.Client, msg mqtt.Message) {
	var sub submission
	if err := json.Unmarshal(msg.Payload(), &sub); err != nil {
		log.Warning("malformed passive submission", zap.String("topic", msg.Topic()), zap.Error(err))
		return
	}

	if sub.Host == "" {
		sub.Host, sub.Service = hostServiceFromTopic(msg.Topic())
	}
	if sub.Host == "" {
		log.Warning("passive submission missing host", zap.String("topic", msg.Topic()))
		return
	}

	target, ok := resolveTarget(sub.Host, sub.Service)
	if !ok {
		log.Warning("passive submission for unknown target", zap.String("host", sub.Host), zap.String("service", sub.Service))
		return
	}

	cr := &domain.CheckResult{
		State:          domain.State(sub.State),
		Output:         sub.Output,
		CheckSource:    sub.CheckSource,
		ScheduleStart:  sub.ScheduleStart,
		ScheduleEnd:    sub.ScheduleEnd,
		ExecutionStart: sub.ExecutionStart,
		ExecutionEnd:   sub.ExecutionEnd,
	}
	for _, p := range sub.PerformanceData {
		cr.PerformanceData = append(cr.PerformanceData, domain.PerfdataValue{
			Label:             p.Label,
			Value:             p.Value,
			UnitOfMeasurement: p.Unit,
		})
	}

	// Submitted locally: nil origin lets the relay forward this mutation
	// onward exactly as any other local check result.
	if err := target.ProcessCheckResult(cr, nil); err != nil {
		log.Warning("process passive check result failed", zap.String("host", sub.Host), zap.Error(err))
	}
}

// hostServiceFromTopic falls back to the checkresults/<host>/<service>
// topic shape when the payload itself omits host/service.
func hostServiceFromTopic(topic string) (host, service string) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "checkresults" {
		return "", ""
	}
	return parts[1], parts[2]
}

type checkable interface {
	ProcessCheckResult(*domain.CheckResult, *transport.MessageOrigin) error
}

func resolveTarget(host, service string) (checkable, bool) {
	h, ok := domain.ByNameHost(host)
	if !ok {
		return nil, false
	}
	if service == "" {
		return h, true
	}
	svc, ok := h.ServiceByShortName(service)
	if !ok {
		return nil, false
	}
	return svc, true
}

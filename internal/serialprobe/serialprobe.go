// Package serialprobe reads a serial-attached environmental probe and
// turns its lines into synthetic CheckResults for a configured host,
// feeding them through the same ProcessCheckResult entry point the
// passive channel uses. Grounded on cmd/publisher/main.go's flags
// (port/baud/broker/sim) and its simulated-vs-real read loop, with the
// MQTT republish step replaced by a direct local check-result
// injection.
package serialprobe

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tarm/serial"
	"go.uber.org/zap"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/transport"
	"github.com/beaconhq/zonecore/internal/zlog"
)

var log = zlog.Component("serialprobe")

type Config struct {
	Port        string
	Baud        int
	Host        string
	Service     string
	Simulate    bool
	SimInterval time.Duration
}

type Service struct {
	cfg Config

	mu     sync.Mutex
	closer io.Closer

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func New(cfg Config) *Service {
	if cfg.SimInterval == 0 {
		cfg.SimInterval = 5 * time.Second
	}
	return &Service{cfg: cfg, stopCh: make(chan struct{})}
}

func (s *Service) Start() error {
	if s.cfg.Simulate {
		s.wg.Add(1)
		go s.runSimulated()
		return nil
	}

	port, err := serial.OpenPort(&serial.Config{Name: s.cfg.Port, Baud: s.cfg.Baud})
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", s.cfg.Port, err)
	}
	s.mu.Lock()
	s.closer = port
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runSerial(port)
	return nil
}

func (s *Service) Stop() {
	close(s.stopCh)
	s.mu.Lock()
	if s.closer != nil {
		s.closer.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Service) runSerial(port io.Reader) {
	defer s.wg.Done()
	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		select {
		case <-s.stopCh:
			return
		default:
		}
		s.apply(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		log.Warning("serial read failed", zap.Error(err))
	}
}

func (s *Service) runSimulated() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.SimInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			line := fmt.Sprintf("temperature=%.1f humidity=%.1f", 18.0+rand.Float64()*6.0, 30.0+rand.Float64()*20.0)
			s.apply(line)
		}
	}
}

// apply parses a newline-delimited key=value line and records it as a
// CheckResult against the configured host (or service, if set).
func (s *Service) apply(line string) {
	fields := parseLine(line)
	if len(fields) == 0 {
		return
	}

	target, ok := resolveTarget(s.cfg.Host, s.cfg.Service)
	if !ok {
		log.Warning("serial probe target not found", zap.String("host", s.cfg.Host))
		return
	}

	cr := &domain.CheckResult{
		State:       domain.StateOK,
		Output:      line,
		CheckSource: "serialprobe",
	}
	for key, raw := range fields {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		cr.PerformanceData = append(cr.PerformanceData, domain.PerfdataValue{Label: key, Value: v})
	}

	if err := target.ProcessCheckResult(cr, nil); err != nil {
		log.Warning("process serial check result failed", zap.Error(err))
	}
}

// parseLine splits "k1=v1 k2=v2" or "k1=v1,k2=v2" into a map.
func parseLine(line string) map[string]string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	sep := " "
	if strings.Contains(line, ",") {
		sep = ","
	}
	out := make(map[string]string)
	for _, tok := range strings.Split(line, sep) {
		tok = strings.TrimSpace(tok)
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return out
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

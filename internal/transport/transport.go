// Package transport provides the peer-link contract C6-C9 depend on
// (PeerListener, MessageOrigin) plus a concrete, non-TLS, length-prefixed
// TCP stand-in so the replication fabric is exercisable end to end. Real
// deployments TLS-wrap this framing; that layer is an external
// collaborator this package deliberately leaves as an interface only.
package transport

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/beaconhq/zonecore/internal/zlog"
)

// MessageOrigin describes the peer and zone that caused a mutation. A nil
// *MessageOrigin means the mutation originated locally.
type MessageOrigin struct {
	FromEndpoint string
	FromZone     string
}

// Message is the JSON-RPC 2.0 envelope exchanged between endpoints.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Scope identifies the routing scope a relayed message targets: either a
// single object's owning zone, or an explicit zone (the repository
// beacon's case).
type Scope interface {
	ZoneName() string
}

// ZoneDirectory resolves zone membership and parent/child relationships
// for RelayMessage's fan-out and for the authorization checks C7 and C9
// perform.
type ZoneDirectory interface {
	Endpoints(zoneName string) []string
	IsChildOf(childZone, ancestorZone string) bool
}

// PeerListener is the singleton C6 looks up to relay outbound messages and
// C9 uses for point-to-point replies. Absence (nil) means standalone mode:
// C6 silently does nothing.
type PeerListener interface {
	RelayMessage(origin *MessageOrigin, scope Scope, msg Message, logged bool)
	SyncSendMessage(destEndpoint string, msg Message) error
}

// Dispatcher handles an inbound Message, given the origin it arrived from.
type Dispatcher interface {
	Dispatch(origin *MessageOrigin, msg Message)
}

// Listener is the concrete framed-TCP PeerListener. Framing follows the
// teacher's pkg/network client/server shape, one message per frame: the
// sender's endpoint name, then the JSON payload, each behind its own
// 4-byte big-endian length prefix.
type Listener struct {
	log *zlog.Logger

	selfEndpoint string
	zones        ZoneDirectory
	dispatch     Dispatcher

	mu    sync.RWMutex
	peers map[string]string // endpoint name -> dial address

	listener net.Listener
	wg       sync.WaitGroup
	stopCh   chan struct{}
}

// NewListener constructs a Listener identified as selfEndpoint, resolving
// zone membership via zones and dispatching inbound messages to dispatch.
func NewListener(selfEndpoint string, zones ZoneDirectory, dispatch Dispatcher) *Listener {
	return &Listener{
		log:          zlog.Component("transport"),
		selfEndpoint: selfEndpoint,
		zones:        zones,
		dispatch:     dispatch,
		peers:        make(map[string]string),
		stopCh:       make(chan struct{}),
	}
}

// AddPeer registers the dial address for a named peer endpoint, used by
// RelayMessage/SyncSendMessage fan-out.
func (l *Listener) AddPeer(endpoint, addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.peers[endpoint] = addr
}

// Listen starts accepting inbound peer connections on addr.
func (l *Listener) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("transport: listen on %s: %w", addr, err)
	}
	l.listener = ln

	l.log.Notice("listening for peers", zap.String("addr", addr))

	l.wg.Add(1)
	go l.acceptLoop()
	return nil
}

// Stop closes the listener and waits for in-flight connections to drain.
// Incoming messages after Stop begins are dropped; there is no
// generalized cancellation protocol for in-flight handlers, only
// listener-level shutdown.
func (l *Listener) Stop() {
	close(l.stopCh)
	if l.listener != nil {
		l.listener.Close()
	}
	l.wg.Wait()
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			select {
			case <-l.stopCh:
				return
			default:
				l.log.Warning("accept failed", zap.Error(err))
				continue
			}
		}
		l.wg.Add(1)
		go l.handleConn(conn)
	}
}

func (l *Listener) handleConn(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()

	peerEndpoint := ""

	for {
		select {
		case <-l.stopCh:
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		frame, endpoint, err := readFrame(conn)
		if err != nil {
			if err != io.EOF {
				l.log.Warning("read frame failed", zap.Error(err))
			}
			return
		}
		if endpoint != "" {
			peerEndpoint = endpoint
		}

		var msg Message
		if err := json.Unmarshal(frame, &msg); err != nil {
			l.log.Warning("malformed frame", zap.Error(err))
			continue
		}

		origin := &MessageOrigin{FromEndpoint: peerEndpoint}
		if peerEndpoint != "" {
			origin.FromZone = l.endpointZone(peerEndpoint)
		}
		l.dispatch.Dispatch(origin, msg)
	}
}

// endpointZone is a placeholder: a real deployment resolves this from the
// endpoint directory. The stand-in zone directory interface only exposes
// membership in the other direction (zone -> endpoints), so callers that
// need FromZone populated should wrap ZoneDirectory with their own lookup;
// this returns "" when unknown, which callers must treat as "may be
// absent" for origin.zone.
func (l *Listener) endpointZone(endpoint string) string {
	return ""
}

// RelayMessage fans msg out to every endpoint the scope's zone covers,
// excluding the endpoint that originated the mutation (if any) — this
// exclusion is the concrete mechanism behind echo prevention: signals
// still fire and still relay, but never back to the peer that caused
// them.
func (l *Listener) RelayMessage(origin *MessageOrigin, scope Scope, msg Message, logged bool) {
	if scope == nil {
		return
	}
	targets := l.zones.Endpoints(scope.ZoneName())

	for _, ep := range targets {
		if ep == l.selfEndpoint {
			continue
		}
		if origin != nil && ep == origin.FromEndpoint {
			continue
		}
		if err := l.send(ep, msg); err != nil {
			l.log.Debug("relay send failed", zap.String("endpoint", ep), zap.Error(err))
		}
	}
}

// SyncSendMessage sends msg point-to-point to a single named endpoint,
// used by C9's synthetic command-refusal/failure replies.
func (l *Listener) SyncSendMessage(destEndpoint string, msg Message) error {
	return l.send(destEndpoint, msg)
}

func (l *Listener) send(endpoint string, msg Message) error {
	l.mu.RLock()
	addr, ok := l.peers[endpoint]
	l.mu.RUnlock()
	if !ok {
		return fmt.Errorf("transport: unknown peer endpoint %q", endpoint)
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("transport: marshal message: %w", err)
	}
	return writeFrame(conn, l.selfEndpoint, body)
}

// writeFrame writes a self-identifying frame: a 4-byte length prefix for
// the sender's endpoint name, the name itself, a 4-byte length prefix for
// the payload, then the payload — one handshake-free identification per
// frame since this stand-in has no persistent per-connection handshake.
func writeFrame(w io.Writer, fromEndpoint string, payload []byte) error {
	if err := writeLenPrefixed(w, []byte(fromEndpoint)); err != nil {
		return err
	}
	return writeLenPrefixed(w, payload)
}

func writeLenPrefixed(w io.Writer, b []byte) error {
	lenBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBytes, uint32(len(b)))
	if _, err := w.Write(lenBytes); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readFrame(r io.Reader) (payload []byte, fromEndpoint string, err error) {
	fromBytes, err := readLenPrefixed(r)
	if err != nil {
		return nil, "", err
	}
	payload, err = readLenPrefixed(r)
	if err != nil {
		return nil, "", err
	}
	return payload, string(fromBytes), nil
}

const maxFrameSize = 16 * 1024 * 1024

func readLenPrefixed(r io.Reader) ([]byte, error) {
	lenBytes := make([]byte, 4)
	if _, err := io.ReadFull(r, lenBytes); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBytes)
	if n > maxFrameSize {
		return nil, fmt.Errorf("transport: frame too large: %d bytes", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

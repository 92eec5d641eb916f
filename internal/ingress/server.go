// Package ingress is the TCP order-ingress listener: a tomb-supervised
// accept loop handing connections to a worker pool, reading framed
// wire.Message values and routing them into the core engine. None of this
// is part of the matching core itself.
package ingress

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/engine"
	"fenrir/internal/wire"
)

const (
	maxRecvSize        = 4 * 1024
	defaultNWorkers    = 10
	defaultConnTimeout = time.Second
)

// clientSession tracks one connected TCP client.
type clientSession struct {
	conn  net.Conn
	owner string
}

// Server accepts order-ingress connections, parses wire.Message frames, and
// routes NewOrder messages into the engine. It reports execution/error
// reports back to the owning connection via the engine's trade hook.
type Server struct {
	address string
	port    int
	eng     *engine.Engine

	nWorkers int
	tasks    chan net.Conn

	mu       sync.Mutex
	sessions map[string]*clientSession // client address -> session
	owners   map[uint64]string         // order id -> client address

	cancel context.CancelFunc
}

// New constructs a Server listening on address:port, routing orders into
// eng. Call Run to start it.
func New(address string, port int, eng *engine.Engine) *Server {
	s := &Server{
		address:  address,
		port:     port,
		eng:      eng,
		nWorkers: defaultNWorkers,
		tasks:    make(chan net.Conn, defaultNWorkers),
		sessions: make(map[string]*clientSession),
		owners:   make(map[uint64]string),
	}
	eng.SetOnTrade(s.reportTrade)
	return s
}

// Run starts the accept loop and worker pool, supervised by a tomb, until
// ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		return fmt.Errorf("ingress: listen: %w", err)
	}
	defer listener.Close()

	for i := 0; i < s.nWorkers; i++ {
		t.Go(func() error {
			return s.runWorker(t)
		})
	}

	log.Info().Str("address", listener.Addr().String()).Msg("ingress listening")
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error().Err(err).Msg("error accepting client")
				continue
			}
			s.addSession(conn)
			select {
			case s.tasks <- conn:
			case <-t.Dying():
				conn.Close()
				return nil
			}
		}
	}
}

// Shutdown signals the server to stop accepting and processing connections.
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Server) runWorker(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case conn := <-s.tasks:
			s.handleConnection(t, conn)
		}
	}
}

// handleConnection reads one framed message off conn, routes it, and
// re-queues the connection so its next message is picked up by whichever
// worker is free, rather than pinning one worker per connection.
func (s *Server) handleConnection(t *tomb.Tomb, conn net.Conn) {
	_ = conn.SetDeadline(time.Now().Add(defaultConnTimeout))

	buf := make([]byte, maxRecvSize)
	n, err := conn.Read(buf)
	if err != nil {
		s.removeSession(conn.RemoteAddr().String())
		return
	}

	msg, err := wire.ParseMessage(buf[:n])
	if err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error parsing message")
		s.sendReport(conn.RemoteAddr().String(), wire.ErrorReportFor(err))
		s.requeue(t, conn)
		return
	}

	if err := s.handleMessage(conn, msg); err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error handling message")
		s.sendReport(conn.RemoteAddr().String(), wire.ErrorReportFor(err))
	}

	s.requeue(t, conn)
}

func (s *Server) requeue(t *tomb.Tomb, conn net.Conn) {
	select {
	case s.tasks <- conn:
	case <-t.Dying():
		conn.Close()
	}
}

func (s *Server) handleMessage(conn net.Conn, msg wire.Message) error {
	switch m := msg.(type) {
	case wire.NewOrderMessage:
		ticks, err := m.Ticks()
		if err != nil {
			return err
		}
		id, err := s.eng.Route(m.Symbol, m.Side, ticks, m.Qty)
		if err != nil {
			return err
		}
		// Record the owning address under the order's assigned id so a
		// later trade report (taker or maker side) can be attributed back
		// to this connection, however long the order rests.
		s.mu.Lock()
		s.owners[id] = conn.RemoteAddr().String()
		s.mu.Unlock()
		return nil
	case wire.CancelOrderMessage:
		return m.Reject()
	case wire.LogBookMessage:
		// Diagnostic dumps are served over internal/diag's HTTP endpoint,
		// not this connection; acknowledge and move on.
		return nil
	default:
		return wire.ErrInvalidMessageType
	}
}

func (s *Server) reportTrade(tr engine.Trade) {
	taker, maker := wire.TradeToReports(tr, s.ownerAddress)
	s.sendReport(s.ownerAddress(tr.TakerID), taker)
	s.sendReport(s.ownerAddress(tr.MakerID), maker)
}

func (s *Server) ownerAddress(orderID uint64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owners[orderID]
}

func (s *Server) sendReport(clientAddress string, r wire.Report) {
	s.mu.Lock()
	session, ok := s.sessions[clientAddress]
	s.mu.Unlock()
	if !ok {
		return
	}
	if _, err := session.conn.Write(r.Serialize()); err != nil {
		s.removeSession(clientAddress)
	}
}

func (s *Server) addSession(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[conn.RemoteAddr().String()] = &clientSession{conn: conn}
}

func (s *Server) removeSession(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, address)
}

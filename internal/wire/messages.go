package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fenrir/internal/engine"
)

var (
	ErrInvalidMessageType = errors.New("wire: invalid message type")
	ErrMessageTooShort    = errors.New("wire: message too short")
	ErrNotImplemented     = errors.New("wire: operation not implemented by the core")
)

// MessageType identifies the kind of message framed on the wire: a 2-byte
// type header followed by fixed-width fields and a variable-length tail.
type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	LogBook
)

// ReportType identifies the kind of report sent back to a client.
type ReportType uint8

const (
	ExecutionReport ReportType = iota
	ErrorReport
)

const (
	headerLen = 2
	// symbol(4) + side(1) + price(8) + qty(8)
	newOrderBodyLen = 4 + 1 + 8 + 8
	// symbol(4) + orderID(8)
	cancelOrderBodyLen = 4 + 8
)

// Message is the parsed form of anything received on the order-ingress
// connection.
type Message interface {
	Type() MessageType
}

// NewOrderMessage is the wire form of a new limit order. Ticker is padded
// or truncated to 4 bytes, keeping every message at a fixed, predictable
// size for framing.
type NewOrderMessage struct {
	Symbol string
	Side   engine.Side
	Price  float64
	Qty    int64
}

func (NewOrderMessage) Type() MessageType { return NewOrder }

// Ticks converts the wire message's price into the core's integer tick
// representation -- the conversion point where decimal meets the
// integer-tick core representation.
func (m NewOrderMessage) Ticks() (engine.Price, error) {
	return ToTicks(decimal.NewFromFloat(m.Price))
}

// CancelOrderMessage is the wire form of a cancel request. The core
// matching engine has no cancel operation; this shape is retained as an
// external-interface stub and always resolves to ErrNotImplemented.
type CancelOrderMessage struct {
	Symbol  string
	OrderID uint64
}

func (CancelOrderMessage) Type() MessageType { return CancelOrder }

// LogBookMessage requests a diagnostic dump; handled at the driver level
// via internal/diag, not by the core.
type LogBookMessage struct{}

func (LogBookMessage) Type() MessageType { return LogBook }

// ParseMessage decodes a single framed message off the wire.
func ParseMessage(buf []byte) (Message, error) {
	if len(buf) < headerLen {
		return nil, ErrMessageTooShort
	}
	typ := MessageType(binary.BigEndian.Uint16(buf[0:2]))
	body := buf[headerLen:]
	switch typ {
	case NewOrder:
		return parseNewOrder(body)
	case CancelOrder:
		return parseCancelOrder(body)
	case LogBook:
		return LogBookMessage{}, nil
	default:
		return nil, ErrInvalidMessageType
	}
}

func parseNewOrder(body []byte) (NewOrderMessage, error) {
	if len(body) < newOrderBodyLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	symbol := trimTrailingZeros(body[0:4])
	side := engine.Side(body[4])
	price := math.Float64frombits(binary.BigEndian.Uint64(body[5:13]))
	qty := int64(binary.BigEndian.Uint64(body[13:21]))
	return NewOrderMessage{Symbol: symbol, Side: side, Price: price, Qty: qty}, nil
}

func parseCancelOrder(body []byte) (CancelOrderMessage, error) {
	if len(body) < cancelOrderBodyLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	symbol := trimTrailingZeros(body[0:4])
	orderID := binary.BigEndian.Uint64(body[4:12])
	return CancelOrderMessage{Symbol: symbol, OrderID: orderID}, nil
}

// EncodeNewOrder serializes a NewOrderMessage for transmission, used by the
// thin submission driver (cmd/fenrirsub).
func EncodeNewOrder(m NewOrderMessage) []byte {
	buf := make([]byte, headerLen+newOrderBodyLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(NewOrder))
	copy(buf[2:6], padSymbol(m.Symbol))
	buf[6] = byte(m.Side)
	binary.BigEndian.PutUint64(buf[7:15], math.Float64bits(m.Price))
	binary.BigEndian.PutUint64(buf[15:23], uint64(m.Qty))
	return buf
}

// EncodeCancelOrder serializes a CancelOrderMessage for transmission.
func EncodeCancelOrder(m CancelOrderMessage) []byte {
	buf := make([]byte, headerLen+cancelOrderBodyLen)
	binary.BigEndian.PutUint16(buf[0:2], uint16(CancelOrder))
	copy(buf[2:6], padSymbol(m.Symbol))
	binary.BigEndian.PutUint64(buf[6:14], m.OrderID)
	return buf
}

func padSymbol(sym string) []byte {
	out := make([]byte, 4)
	copy(out, sym)
	return out
}

func trimTrailingZeros(b []byte) string {
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}
	return string(b[:i])
}

// Report is a wire-serializable execution or error report, sent back to the
// client that owns an order.
type Report struct {
	Type         ReportType
	Symbol       string
	Side         engine.Side
	Timestamp    time.Time
	Qty          int64
	Price        float64
	CounterParty string
	Err          string
	RequestID    string
}

const reportFixedLen = 1 + 1 + 4 + 8 + 8 + 8 + 2 + 2

// Serialize packs a Report into its wire form.
func (r Report) Serialize() []byte {
	counterparty := []byte(r.CounterParty)
	errStr := []byte(r.Err)
	buf := make([]byte, reportFixedLen+len(counterparty)+len(errStr))

	buf[0] = byte(r.Type)
	buf[1] = byte(r.Side)
	copy(buf[2:6], padSymbol(r.Symbol))
	binary.BigEndian.PutUint64(buf[6:14], uint64(r.Timestamp.Unix()))
	binary.BigEndian.PutUint64(buf[14:22], uint64(r.Qty))
	binary.BigEndian.PutUint64(buf[22:30], math.Float64bits(r.Price))
	binary.BigEndian.PutUint16(buf[30:32], uint16(len(counterparty)))
	binary.BigEndian.PutUint16(buf[32:34], uint16(len(errStr)))

	offset := reportFixedLen
	copy(buf[offset:], counterparty)
	offset += len(counterparty)
	copy(buf[offset:], errStr)

	return buf
}

// NewUUID tags a driver-facing order/session with a fresh correlation
// identifier. The core's Order.ID remains a plain uint64 counter; this UUID
// exists purely for client correlation.
func NewUUID() string { return uuid.NewString() }

// TradeToReports converts a matched engine.Trade into the pair of Reports
// to send to the taker and maker owners, given an owner-lookup callback.
func TradeToReports(t engine.Trade, ownerOf func(orderID uint64) string) (taker, maker Report) {
	ts := t.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}
	taker = Report{
		Type:         ExecutionReport,
		Symbol:       t.Symbol,
		Side:         t.TakerSide,
		Timestamp:    ts,
		Qty:          t.Qty,
		Price:        FromTicks(t.Price).InexactFloat64(),
		CounterParty: ownerOf(t.MakerID),
	}
	maker = Report{
		Type:         ExecutionReport,
		Symbol:       t.Symbol,
		Side:         t.MakerSide,
		Timestamp:    ts,
		Qty:          t.Qty,
		Price:        FromTicks(t.Price).InexactFloat64(),
		CounterParty: ownerOf(t.TakerID),
	}
	return taker, maker
}

// ErrorReportFor builds a wire ErrorReport for an error surfaced to a
// client.
func ErrorReportFor(err error) Report {
	return Report{Type: ErrorReport, Timestamp: time.Now(), Err: fmt.Sprint(err)}
}

// Reject always returns an error wrapping ErrNotImplemented: the core has
// no cancel operation; see CancelOrderMessage's doc comment.
func (m CancelOrderMessage) Reject() error {
	return fmt.Errorf("%w: cancel %d/%s", ErrNotImplemented, m.OrderID, m.Symbol)
}

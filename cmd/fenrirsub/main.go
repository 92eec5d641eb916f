// Command fenrirsub is a thin order-submission driver: it connects to
// fenrirctl's TCP order-ingress listener and sends NewOrder/CancelOrder
// wire messages. It is a pure external collaborator, not part of the
// matching core.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"fenrir/internal/engine"
	"fenrir/internal/wire"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the fenrirctl order-ingress listener")
	action := flag.String("action", "place", "action to perform: 'place' or 'cancel'")
	symbol := flag.String("symbol", "AAPL", "symbol (max 4 chars)")
	sideStr := flag.String("side", "buy", "order side: 'buy' or 'sell'")
	price := flag.Float64("price", 100.0, "limit price")
	qtyStr := flag.String("qty", "10", "quantity, or a comma-separated list (e.g. 10,20,50)")
	orderID := flag.Uint64("order-id", 0, "order id to cancel")
	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s\n", *serverAddr)

	go readReports(conn)

	side := sideOf(*sideStr)

	switch strings.ToLower(*action) {
	case "place":
		for _, qty := range parseQuantities(*qtyStr) {
			buf := wire.EncodeNewOrder(wire.NewOrderMessage{Symbol: *symbol, Side: side, Price: *price, Qty: qty})
			if _, err := conn.Write(buf); err != nil {
				log.Printf("failed to place order (qty %d): %v", qty, err)
				continue
			}
			fmt.Printf("-> sent %s %s %d @ %.2f\n", strings.ToUpper(*sideStr), *symbol, qty, *price)
			time.Sleep(5 * time.Millisecond)
		}
	case "cancel":
		buf := wire.EncodeCancelOrder(wire.CancelOrderMessage{Symbol: *symbol, OrderID: *orderID})
		if _, err := conn.Write(buf); err != nil {
			log.Printf("failed to send cancel request: %v", err)
		} else {
			fmt.Printf("-> sent cancel request for order %d\n", *orderID)
		}
	default:
		log.Fatalf("unknown action: %s", *action)
	}

	fmt.Println("listening for reports... (press ctrl+c to exit)")
	select {}
}

func sideOf(s string) engine.Side {
	if strings.EqualFold(s, "sell") {
		return engine.Sell
	}
	return engine.Buy
}

func parseQuantities(input string) []int64 {
	var out []int64
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if v, err := strconv.ParseInt(p, 10, 64); err == nil {
			out = append(out, v)
		} else {
			log.Printf("warning: invalid quantity %q, skipping", p)
		}
	}
	return out
}

func readReports(conn net.Conn) {
	for {
		header := make([]byte, 34)
		if _, err := io.ReadFull(conn, header); err != nil {
			if err != io.EOF {
				log.Printf("connection lost: %v", err)
			}
			os.Exit(0)
		}

		typ := header[0]
		qty := binary.BigEndian.Uint64(header[14:22])
		price := math.Float64frombits(binary.BigEndian.Uint64(header[22:30]))
		counterpartyLen := binary.BigEndian.Uint16(header[30:32])
		errLen := binary.BigEndian.Uint16(header[32:34])

		tail := make([]byte, int(counterpartyLen)+int(errLen))
		if len(tail) > 0 {
			if _, err := io.ReadFull(conn, tail); err != nil {
				log.Printf("error reading report body: %v", err)
				return
			}
		}

		if wire.ReportType(typ) == wire.ErrorReport {
			fmt.Printf("\n[SERVER ERROR] %s\n", string(tail[:errLen]))
			continue
		}
		fmt.Printf("\n[EXECUTION] qty=%d price=%.2f vs=%s\n", qty, price, string(tail[:counterpartyLen]))
	}
}

// Package protocol implements the resolver wire protocol: ASCII text frames
// with a six-byte opcode, space-separated fields, and 0x-prefixed lowercase
// hex for hashes and secrets.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/manus-ai/fusion-coordinator/pkg/types"
)

const (
	// OpBroadcast announces a new order to resolvers.
	OpBroadcast = "BROADC"
	// OpSecret shares a maker-released secret with resolvers.
	OpSecret = "SECRET"
	// OpTxHash reports resolver escrow deployments back to the coordinator.
	OpTxHash = "TXHASH"
)

var (
	// ErrUnknownEvent marks an inbound frame with an unrecognized opcode.
	ErrUnknownEvent = errors.New("unknown wire event")
	// ErrMalformedFrame marks a recognized opcode with a bad field layout.
	ErrMalformedFrame = errors.New("malformed wire frame")
)

// TxHashEvent is a resolver's report that both escrows were deployed.
type TxHashEvent struct {
	OrderHash string
	SrcTxHash string
	DstTxHash string
}

// EncodeOrder renders a BROADC frame carrying the order as JSON.
func EncodeOrder(order types.Order) ([]byte, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}
	frame := make([]byte, 0, len(OpBroadcast)+1+len(body))
	frame = append(frame, OpBroadcast...)
	frame = append(frame, ' ')
	frame = append(frame, body...)
	return frame, nil
}

// DecodeOrder parses the JSON body of a BROADC frame.
func DecodeOrder(frame []byte) (types.Order, error) {
	var order types.Order
	payload, ok := strings.CutPrefix(string(frame), OpBroadcast+" ")
	if !ok {
		return order, ErrMalformedFrame
	}
	if err := json.Unmarshal([]byte(payload), &order); err != nil {
		return order, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return order, nil
}

// EncodeSecret renders a SECRET frame.
func EncodeSecret(orderHash, secret string) []byte {
	return []byte(OpSecret + " " + orderHash + " " + secret)
}

// EncodeTxHash renders a TXHASH frame. Resolvers use this; the coordinator
// only parses it, but the encoder keeps tests symmetric.
func EncodeTxHash(ev TxHashEvent) []byte {
	return []byte(OpTxHash + " " + ev.OrderHash + " " + ev.SrcTxHash + " " + ev.DstTxHash)
}

// ParseInbound decodes a frame received from a resolver. TXHASH is the only
// opcode resolvers may send.
func ParseInbound(frame []byte) (TxHashEvent, error) {
	text := string(frame)
	op, rest, _ := strings.Cut(text, " ")
	if op != OpTxHash {
		return TxHashEvent{}, fmt.Errorf("%w: opcode %q", ErrUnknownEvent, truncate(op, 16))
	}
	fields := strings.Fields(rest)
	if len(fields) != 3 {
		return TxHashEvent{}, fmt.Errorf("%w: TXHASH wants 3 fields, got %d", ErrMalformedFrame, len(fields))
	}
	for _, f := range fields {
		if !strings.HasPrefix(f, "0x") {
			return TxHashEvent{}, fmt.Errorf("%w: field %q lacks 0x prefix", ErrMalformedFrame, truncate(f, 16))
		}
	}
	return TxHashEvent{OrderHash: fields[0], SrcTxHash: fields[1], DstTxHash: fields[2]}, nil
}

// NormalizeHex lowercases a hex string and ensures the 0x prefix, the
// canonical form hashes and secrets take in frames and store keys.
func NormalizeHex(s string) string {
	s = strings.ToLower(s)
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

package bus

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Cot (cause of transmission) decides how a switch routes an envelope.
type Cot uint8

const (
	// CotReq is a new request. Broadcast by switches.
	CotReq Cot = iota
	// CotReqCon is a successful reply to a prior Req. Routed by key.
	CotReqCon
	// CotReqErr is a failed reply to a prior Req. Routed by key.
	CotReqErr
	// CotInf is an unsolicited notice. Broadcast.
	CotInf
	// CotAct is an unsolicited action. Broadcast.
	CotAct
	// CotDiag is diagnostic traffic. Never routed.
	CotDiag
)

var cotNames = [...]string{"Req", "ReqCon", "ReqErr", "Inf", "Act", "Diag"}

func (c Cot) String() string {
	if int(c) < len(cotNames) {
		return cotNames[c]
	}
	return fmt.Sprintf("Cot(%d)", uint8(c))
}

// IsReply reports whether the envelope answers a specific request.
func (c Cot) IsReply() bool { return c == CotReqCon || c == CotReqErr }

// IsBroadcast reports whether a switch fans the envelope out to all subscribers.
func (c Cot) IsBroadcast() bool { return c == CotReq || c == CotInf || c == CotAct }

func (c Cot) MarshalText() ([]byte, error) {
	if int(c) >= len(cotNames) {
		return nil, fmt.Errorf("bus: unknown cot %d", uint8(c))
	}
	return []byte(cotNames[c]), nil
}

func (c *Cot) UnmarshalText(text []byte) error {
	for i, name := range cotNames {
		if name == string(text) {
			*c = Cot(i)
			return nil
		}
	}
	return fmt.Errorf("bus: unknown cot %q", text)
}

// Status is diagnostic metadata. It takes no part in routing.
type Status string

const (
	StatusOk      Status = "Ok"
	StatusInvalid Status = "Invalid"
	StatusTimeout Status = "Timeout"
)

// Envelope is the unit carried between endpoints. Payload is an already
// serialized domain message; the bus only looks at Cot and RoutingKey.
type Envelope struct {
	ID            string    `json:"id"`
	CorrelationID uint64    `json:"correlation_id"`
	RoutingKey    string    `json:"routing_key"`
	Cot           Cot       `json:"cot"`
	Status        Status    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Payload       string    `json:"payload"`
}

// NewEnvelope stamps a fresh id and timestamp.
func NewEnvelope(correlationID uint64, routingKey string, cot Cot, payload string) Envelope {
	return Envelope{
		ID:            uuid.NewString(),
		CorrelationID: correlationID,
		RoutingKey:    routingKey,
		Cot:           cot,
		Status:        StatusOk,
		Timestamp:     time.Now().UTC(),
		Payload:       payload,
	}
}

func (e Envelope) String() string {
	return fmt.Sprintf("%s %s#%d %q", e.Cot, e.RoutingKey, e.CorrelationID, e.Payload)
}

package crane

import (
	"encoding/json"
	"fmt"
)

// ChooseUserHookQuery asks the operator to pick one of the filtered hooks.
type ChooseUserHookQuery struct {
	Variants []Hook `json:"variants"`
}

// ChooseUserHookReply carries the operator's hook.
type ChooseUserHookReply struct {
	Choosen Hook `json:"choosen"`
}

// ChooseUserBearingQuery asks the operator to pick one of the filtered bearings.
type ChooseUserBearingQuery struct {
	Variants []Bearing `json:"variants"`
}

// ChooseUserBearingReply carries the operator's bearing.
type ChooseUserBearingReply struct {
	Choosen Bearing `json:"choosen"`
}

// RestartEvalQuery asks the chain to run (again).
type RestartEvalQuery struct{}

// Query names of the externally tagged encoding.
const (
	QueryChooseUserHook    = "ChooseUserHook"
	QueryChooseUserBearing = "ChooseUserBearing"
	QueryRestartEval       = "RestartEval"
)

// Query is the set of messages exchanged with the operator. Exactly one
// field is set. It encodes as {"<Name>": {...}}.
type Query struct {
	ChooseUserHook    *ChooseUserHookQuery
	ChooseUserBearing *ChooseUserBearingQuery
	RestartEval       *RestartEvalQuery
}

// Kind returns the name of the set variant, or "" for an empty query.
func (q Query) Kind() string {
	switch {
	case q.ChooseUserHook != nil:
		return QueryChooseUserHook
	case q.ChooseUserBearing != nil:
		return QueryChooseUserBearing
	case q.RestartEval != nil:
		return QueryRestartEval
	}
	return ""
}

func (q Query) MarshalJSON() ([]byte, error) {
	var body any
	switch q.Kind() {
	case QueryChooseUserHook:
		body = q.ChooseUserHook
	case QueryChooseUserBearing:
		body = q.ChooseUserBearing
	case QueryRestartEval:
		body = q.RestartEval
	default:
		return nil, fmt.Errorf("crane: empty query")
	}
	return json.Marshal(map[string]any{q.Kind(): body})
}

func (q *Query) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("crane: query must have exactly one variant, got %d", len(raw))
	}

	*q = Query{}
	for name, body := range raw {
		switch name {
		case QueryChooseUserHook:
			q.ChooseUserHook = new(ChooseUserHookQuery)
			return json.Unmarshal(body, q.ChooseUserHook)
		case QueryChooseUserBearing:
			q.ChooseUserBearing = new(ChooseUserBearingQuery)
			return json.Unmarshal(body, q.ChooseUserBearing)
		case QueryRestartEval:
			q.RestartEval = new(RestartEvalQuery)
			return json.Unmarshal(body, q.RestartEval)
		default:
			return fmt.Errorf("crane: unknown query %q", name)
		}
	}
	return nil
}

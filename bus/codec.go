package bus

import (
	"encoding/json"

	"github.com/kbukum/liftkit/errors"
)

func encode(op string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Serialization(op, err)
	}
	return string(b), nil
}

func decode(op, payload string, out any) error {
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return errors.Serialization(op, err)
	}
	return nil
}

// Decode unmarshals an envelope payload into T.
func Decode[T any](e Envelope) (T, error) {
	var v T
	err := decode("decode "+e.Cot.String(), e.Payload, &v)
	return v, err
}

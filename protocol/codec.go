package protocol

import (
	"encoding/json"
	"fmt"
)

func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("trying to encode envelope with empty type")
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var e = Envelope{t, pb}

	return json.Marshal(e)
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("trying to decode envelope with byte size 0")
	}
	var e Envelope
	err := json.Unmarshal(b, &e)
	if err != nil {
		return Envelope{}, err
	}
	return e, nil
}

// DecodePayload unmarshals the raw payload of an envelope into T.
// Events without a payload (getrooms, leaveroom, toggleFreeze) decode
// into the zero value.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, nil
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}

package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var b64 = base64.RawURLEncoding

type bearerPayload struct {
	ID     string `json:"id"`
	Amount uint64 `json:"amount"`
}

// EncodeBearer renders a token value as a compact signed string so it can be
// handed to a holder and presented back later. The signature makes the bearer
// self-describing; the vault stays authoritative for whether it is still
// spendable.
func EncodeBearer(v *Value, secret []byte) (string, error) {
	payload, err := json.Marshal(bearerPayload{ID: v.id, Amount: v.amount})
	if err != nil {
		return "", err
	}
	body := b64.EncodeToString(payload)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(body))
	return body + "." + b64.EncodeToString(mac.Sum(nil)), nil
}

// DecodeBearer verifies the signature and reconstructs the value handle.
func DecodeBearer(bearer string, secret []byte) (*Value, error) {
	parts := strings.Split(bearer, ".")
	if len(parts) != 2 {
		return nil, errors.New("invalid bearer format")
	}
	sig, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, errors.New("invalid signature encoding")
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(parts[0]))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, errors.New("signature mismatch")
	}
	raw, err := b64.DecodeString(parts[0])
	if err != nil {
		return nil, errors.New("invalid payload encoding")
	}
	var payload bearerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.New("invalid payload json")
	}
	if payload.ID == "" {
		return nil, errors.New("missing value id")
	}
	return &Value{id: payload.ID, amount: payload.Amount}, nil
}

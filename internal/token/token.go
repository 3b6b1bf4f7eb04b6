// Package token implements the gift coin treasury: minting, burning and moving
// single-use bearer values against the balance ledger, plus administration of
// the manager set that gates supply changes.
package token

import "errors"

// Currency metadata, fixed at initialization and never updated.
const (
	Symbol      = "GIFT"
	Name        = "Gift Coin"
	Description = "A fungible token for sending gifts"
	Decimals    = 9
)

var (
	// ErrUnauthorized occurs when the presented credential is not the admin
	// capability, or the caller identity is not a registered manager.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValueSpent indicates the token value was already consumed, or was
	// never issued by this treasury.
	ErrValueSpent = errors.New("token value already spent")

	// ErrValueNotFound indicates the vault holds no outstanding value for the id.
	ErrValueNotFound = errors.New("token value not found")
)

// Metadata describes the currency. All fields are frozen constants.
type Metadata struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Decimals    uint8  `json:"decimals"`
}

// CurrencyMetadata returns the frozen display metadata.
func CurrencyMetadata() Metadata {
	return Metadata{Symbol: Symbol, Name: Name, Description: Description, Decimals: Decimals}
}

package types

import (
	"fmt"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// Timestamp serialises as "YYYY-MM-DD HH:MM:SS" in local time
type Timestamp time.Time

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.Truncate(time.Second))
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) String() string {
	return time.Time(t).Format(timestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := time.ParseInLocation(timestampLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	*t = Timestamp(parsed)
	return nil
}

// KeyRecord is one generated wallet as written to disk
type KeyRecord struct {
	WalletNumber int       `json:"wallet_number"`
	PublicKey    string    `json:"public_key"`
	PrivateKey   string    `json:"private_key"`
	Mnemonic     string    `json:"mnemonic"`
	CreatedAt    Timestamp `json:"created_at"`
}

// Words returns the mnemonic as its ordered word list
func (r KeyRecord) Words() []string {
	return strings.Fields(r.Mnemonic)
}

// AddressBook is the addresses-only file consumed by the distributor
type AddressBook struct {
	Addresses []string  `json:"addresses"`
	Count     int       `json:"count"`
	CreatedAt Timestamp `json:"created_at"`
}

func NewAddressBook(addresses []string, createdAt time.Time) AddressBook {
	return AddressBook{
		Addresses: addresses,
		Count:     len(addresses),
		CreatedAt: NewTimestamp(createdAt),
	}
}

package distributor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mezonai/poldrop/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checksummed = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRecipients_Aggregate(t *testing.T) {
	path := writeFile(t, "all_wallets.json", `[
		{"wallet_number": 1, "public_key": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "private_key": "0x01", "mnemonic": "x", "created_at": "2024-01-01 00:00:00"},
		{"wallet_number": 2, "public_key": "not-an-address", "private_key": "0x02", "mnemonic": "y", "created_at": "2024-01-01 00:00:00"}
	]`)

	got, err := LoadRecipients(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "not-an-address"}, got)
}

func TestLoadRecipients_AddressBook(t *testing.T) {
	path := writeFile(t, "public_addresses.json",
		`{"addresses": ["`+checksummed+`"], "count": 1, "created_at": "2024-01-01 00:00:00"}`)

	got, err := LoadRecipients(path)
	require.NoError(t, err)
	assert.Equal(t, []string{checksummed}, got)
}

func TestLoadRecipients_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"no path", func(t *testing.T) string { return "" }},
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") }},
		{"empty array", func(t *testing.T) string { return writeFile(t, "a.json", "[]") }},
		{"empty book", func(t *testing.T) string { return writeFile(t, "b.json", `{"addresses": [], "count": 0}`) }},
		{"garbage", func(t *testing.T) string { return writeFile(t, "c.json", "hello") }},
		{"broken json", func(t *testing.T) string { return writeFile(t, "d.json", "[{") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRecipients(tt.path(t))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeNoRecipientFile))
		})
	}
}

func TestParseRecipient(t *testing.T) {
	valid := []string{
		checksummed,
		strings.ToLower(checksummed),
		"0x" + strings.ToUpper(checksummed[2:]),
		" " + checksummed + " ",
	}
	for _, s := range valid {
		addr, err := ParseRecipient(s)
		require.NoError(t, err, s)
		assert.Equal(t, checksummed, addr.Hex())
	}
}

func TestParseRecipient_Invalid(t *testing.T) {
	badChecksum := "0x2C7536E3605D9C16a7a3D7b1898e529396a65c23"
	tests := []string{
		"",
		"0x1234",
		"not-an-address",
		"0xzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz",
		checksummed + "00",
		badChecksum,
	}

	for _, s := range tests {
		_, err := ParseRecipient(s)
		require.Error(t, err, s)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidAddress))
		assert.False(t, errors.IsFatal(err))
	}
}

package utils

import (
	"math"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int
		want     string
		wantErr  bool
	}{
		{name: "whole", amount: "2", decimals: 18, want: "2000000000000000000"},
		{name: "fraction", amount: "0.25", decimals: 18, want: "250000000000000000"},
		{name: "leading dot", amount: ".5", decimals: 18, want: "500000000000000000"},
		{name: "trailing dot", amount: "3.", decimals: 18, want: "3000000000000000000"},
		{name: "underscores", amount: "1_000", decimals: 0, want: "1000"},
		{name: "one wei", amount: "0.000000000000000001", decimals: 18, want: "1"},
		{name: "trailing zeros beyond scale", amount: "1.5000000000000000000000", decimals: 18, want: "1500000000000000000"},
		{name: "zero", amount: "0.0", decimals: 18, want: "0"},
		{name: "gwei", amount: "30.5", decimals: 9, want: "30500000000"},
		{name: "too precise", amount: "0.0000000000000000001", decimals: 18, wantErr: true},
		{name: "negative", amount: "-1", decimals: 18, wantErr: true},
		{name: "garbage", amount: "1e5", decimals: 18, wantErr: true},
		{name: "empty", amount: " ", decimals: 18, wantErr: true},
		{name: "only dot", amount: ".", decimals: 18, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUnits(tt.amount, tt.decimals)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Dec())
		})
	}
}

func TestFloatToWei(t *testing.T) {
	got, err := FloatToWei(0.25)
	require.NoError(t, err)
	assert.Equal(t, "250000000000000000", got.Dec())

	got, err = FloatToWei(0.1)
	require.NoError(t, err)
	assert.Equal(t, "100000000000000000", got.Dec())

	_, err = FloatToWei(math.NaN())
	assert.Error(t, err)
	_, err = FloatToWei(math.Inf(1))
	assert.Error(t, err)
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		value    uint64
		decimals int
		want     string
	}{
		{0, 18, "0"},
		{1, 18, "0.000000000000000001"},
		{250000000000000000, 18, "0.25"},
		{2000000000000000000, 18, "2"},
		{30500000000, 9, "30.5"},
		{21000, 0, "21000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUnits(uint256.NewInt(tt.value), tt.decimals))
	}
	assert.Equal(t, "0", FormatEther(nil))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"0.25", "1", "123.456789", "0.000000001"} {
		v, err := ParseUnits(s, EtherDecimals)
		require.NoError(t, err)
		assert.Equal(t, s, FormatEther(v))
	}
}

func TestToUint256(t *testing.T) {
	v, err := ToUint256(big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v.Uint64())

	_, err = ToUint256(big.NewInt(-1))
	assert.Error(t, err)

	_, err = ToUint256(new(big.Int).Lsh(big.NewInt(1), 256))
	assert.Error(t, err)

	_, err = ToUint256(nil)
	assert.Error(t, err)
}

func TestShortenLog(t *testing.T) {
	assert.Equal(t, "0xabc", ShortenLog("0xabc"))
	hash := "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"
	assert.Equal(t, "0x5c504ed4...a1b22060", ShortenLog(hash))
}

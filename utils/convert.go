package utils

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

const (
	// EtherDecimals is the number of decimals of the native token (wei scale)
	EtherDecimals = 18
	// GweiDecimals is the scale gas prices are usually quoted in
	GweiDecimals = 9
)

// ParseUnits converts a non-negative decimal string such as "0.25" into base units.
// It is exact: inputs with more fractional digits than decimals are rejected.
func ParseUnits(amount string, decimals int) (*uint256.Int, error) {
	s := strings.ReplaceAll(strings.TrimSpace(amount), "_", "")
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("negative amount %q", amount)
	}
	s = strings.TrimPrefix(s, "+")

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	frac = strings.TrimRight(frac, "0")
	if len(frac) > decimals {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", amount, decimals)
	}

	digits := strings.TrimLeft(whole+frac+strings.Repeat("0", decimals-len(frac)), "0")
	if digits == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", amount, err)
	}
	return v, nil
}

// FloatToWei converts a token amount given as a float (as typed on the CLI) into wei
func FloatToWei(amount float64) (*uint256.Int, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("amount %v is not a finite number", amount)
	}
	return ParseUnits(strconv.FormatFloat(amount, 'f', -1, 64), EtherDecimals)
}

// FormatUnits renders base units as a trimmed decimal string
func FormatUnits(v *uint256.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	digits := v.Dec()
	if decimals == 0 {
		return digits
	}
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	cut := len(digits) - decimals
	whole, frac := digits[:cut], strings.TrimRight(digits[cut:], "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

func FormatEther(v *uint256.Int) string {
	return FormatUnits(v, EtherDecimals)
}

func FormatGwei(v *uint256.Int) string {
	return FormatUnits(v, GweiDecimals)
}

// ToUint256 converts a node-provided big.Int; negative or >256-bit values are errors
func ToUint256(b *big.Int) (*uint256.Int, error) {
	if b == nil {
		return nil, fmt.Errorf("nil value")
	}
	if b.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s", b)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("value %s overflows 256 bits", b)
	}
	return v, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package mint

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

// WeiFromEther converts an advertised decimal price to wei. Only used for
// display estimates.
func WeiFromEther(eth float64) *big.Int {
	if eth <= 0 {
		return new(big.Int)
	}
	whole, frac, _ := strings.Cut(strconv.FormatFloat(eth, 'f', -1, 64), ".")
	if len(frac) > 18 {
		frac = frac[:18]
	}
	wei, ok := new(big.Int).SetString(whole+frac+strings.Repeat("0", 18-len(frac)), 10)
	if !ok {
		return new(big.Int)
	}
	return wei
}

// FormatEther renders wei as a decimal ether string without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	sign := ""
	if wei.Sign() < 0 {
		sign = "-"
	}
	ether := new(big.Int)
	rem := new(big.Int)
	ether.QuoRem(new(big.Int).Abs(wei), big.NewInt(params.Ether), rem)
	if rem.Sign() == 0 {
		return sign + ether.String()
	}
	frac := strings.TrimRight(leftPad(rem.String(), 18), "0")
	return sign + ether.String() + "." + frac
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

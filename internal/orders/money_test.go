package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestValidAmount(t *testing.T) {
	min, max := d("1"), d("1500")

	assert.True(t, ValidAmount(d("1"), min, max))
	assert.True(t, ValidAmount(d("100"), min, max))
	assert.True(t, ValidAmount(d("1500"), min, max))

	assert.False(t, ValidAmount(d("0"), min, max))
	assert.False(t, ValidAmount(d("-5"), min, max))
	assert.False(t, ValidAmount(d("0.99"), min, max))
	assert.False(t, ValidAmount(d("5000"), min, max))
}

func TestPayable(t *testing.T) {
	// 100 at 10% -> 90.00
	assert.True(t, d("90").Equal(Payable(d("100"), d("10"))))
	// rounding to 2 decimals
	assert.True(t, d("33.33").Equal(Payable(d("49.99"), d("33.33"))))
	// full discount
	assert.True(t, decimal.Zero.Equal(Payable(d("250"), d("100"))))
}

func TestPayableZeroDiscountExact(t *testing.T) {
	amt := d("123.45")
	got := Payable(amt, decimal.Zero)
	assert.Equal(t, amt.String(), got.String())
}

package orders

import (
	"fmt"
	"math/rand/v2"
)

const OrderNoPrefix = "FYS-"

// GenOrderNo returns a human-facing order number: fixed prefix plus a
// fixed-width random digit suffix (FYS-XXXXXXXX). Uniqueness is checked
// by the store on create, not here.
func GenOrderNo() string {
	return fmt.Sprintf("%s%08d", OrderNoPrefix, rand.IntN(100_000_000))
}

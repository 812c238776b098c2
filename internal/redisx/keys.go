package redisx

import "time"

const (
	// Cache satu order utuh: airtime:order:{order_no} -> JSON
	KeyOrder = "airtime:order:%s"
)

// Short TTL as a backstop: transitions drop the key eagerly, the TTL
// only covers a missed invalidation. The store stays the source of truth.
var TTLOrderCache = 10 * time.Second

package orders

const TopicLifecycle = "airtime.order.lifecycle"

// Partition key = order_no, supaya semua event 1 order maintain urutan.
func PartitionKey(orderNo string) []byte { return []byte(orderNo) }

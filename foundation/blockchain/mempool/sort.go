package mempool

import (
	"sort"

	"github.com/ebchain/blockchain/foundation/blockchain/database"
)

// sortByTimestamp puts the transactions in the order they were signed, with
// the id breaking ties so the order is stable across calls.
func sortByTimestamp(txs []database.Tx) {
	sort.Sort(byTimestamp(txs))
}

// byTimestamp provides sorting support by the transaction input timestamp.
type byTimestamp []database.Tx

// Len returns the number of transactions in the list.
func (bt byTimestamp) Len() int {
	return len(bt)
}

// Less helps to sort the list by timestamp in ascending order and then by id.
func (bt byTimestamp) Less(i, j int) bool {
	if bt[i].Input.Timestamp != bt[j].Input.Timestamp {
		return bt[i].Input.Timestamp < bt[j].Input.Timestamp
	}
	return bt[i].ID < bt[j].ID
}

// Swap moves transactions in the order of the timestamp value.
func (bt byTimestamp) Swap(i, j int) {
	bt[i], bt[j] = bt[j], bt[i]
}

package common

import (
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MempoolEntry is one unconfirmed transaction as reported by the node.
// Parents lists the txids this transaction spends from; entries that are
// not themselves in the mempool are confirmed parents and get filtered out
// by the mirror.
type MempoolEntry struct {
	Txid      string
	Fee       int64 // satoshi
	Weight    int64 // weight units
	VSize     int64 // virtual bytes
	Sigops    int64
	FirstSeen int64 // unix seconds, node's report; 0 when unknown
	Parents   []string
}

// NormalizeTxid validates a hex transaction id and returns it in the
// canonical lower-case form used as map key everywhere in this repo.
func NormalizeTxid(txid string) (string, error) {
	hash, err := chainhash.NewHashFromStr(strings.TrimSpace(txid))
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

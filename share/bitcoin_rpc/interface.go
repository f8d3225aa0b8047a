package bitcoin_rpc

import "github.com/OLProtocol/go-bitcoind"

type BitcoinRPC interface {
	GetBlockCount() (uint64, error)
	GetBestBlockHash() (string, error)

	GetMemPool() (txId []string, err error)

	EstimateSmartFeeWithMode(minconf int, mode string) (*bitcoind.EstimateSmartFeeResult, error)
}

var ShareBitconRpc BitcoinRPC

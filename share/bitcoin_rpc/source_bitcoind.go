package bitcoin_rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sat20-labs/projector/common"
)

// Past this many new ids one verbose listing beats per-tx lookups.
const verboseListingThreshold = 64

// NodeSource scrapes the mempool of a bitcoind node. Id listings go
// through the shared rpc client; entry detail needs the verbose
// getmempoolentry/getrawmempool forms, issued directly.
type NodeSource struct {
	url    string
	user   string
	passwd string
	client *http.Client
}

func NewNodeSource(host string, port int, user, passwd string, useSSL bool) *NodeSource {
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return &NodeSource{
		url:    fmt.Sprintf("%s://%s:%d", scheme, host, port),
		user:   user,
		passwd: passwd,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *NodeSource) MempoolTxids() ([]string, error) {
	if ShareBitconRpc != nil {
		return ShareBitconRpc.GetMemPool()
	}
	var txids []string
	err := p.call("getrawmempool", []any{false}, &txids)
	return txids, err
}

func (p *NodeSource) MempoolEntries(txids []string) ([]common.MempoolEntry, error) {
	if len(txids) > verboseListingThreshold {
		return p.verboseListing(txids)
	}

	entries := make([]common.MempoolEntry, 0, len(txids))
	for _, txid := range txids {
		var raw mempoolEntryResult
		if err := p.call("getmempoolentry", []any{txid}, &raw); err != nil {
			// Gone between the listing and now, confirmed or evicted.
			common.Log.Debugf("getmempoolentry %s: %v", txid, err)
			continue
		}
		entries = append(entries, raw.toEntry(txid))
	}
	return entries, nil
}

func (p *NodeSource) verboseListing(txids []string) ([]common.MempoolEntry, error) {
	var raw map[string]mempoolEntryResult
	if err := p.call("getrawmempool", []any{true}, &raw); err != nil {
		return nil, err
	}
	entries := make([]common.MempoolEntry, 0, len(txids))
	for _, txid := range txids {
		if e, ok := raw[txid]; ok {
			entries = append(entries, e.toEntry(txid))
		}
	}
	return entries, nil
}

type mempoolEntryResult struct {
	VSize   int64    `json:"vsize"`
	Weight  int64    `json:"weight"`
	Time    int64    `json:"time"`
	Sigops  int64    `json:"sigops"`
	Fees    feesInfo `json:"fees"`
	Depends []string `json:"depends"`
}

type feesInfo struct {
	Base float64 `json:"base"`
}

func (r *mempoolEntryResult) toEntry(txid string) common.MempoolEntry {
	return common.MempoolEntry{
		Txid:      txid,
		Fee:       int64(math.Round(r.Fees.Base * 1e8)),
		Weight:    r.Weight,
		VSize:     r.VSize,
		Sigops:    r.Sigops,
		FirstSeen: r.Time,
		Parents:   r.Depends,
	}
}

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	Id      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (p *NodeSource) call(method string, params []any, result any) error {
	body, err := json.Marshal(rpcRequest{
		Jsonrpc: "1.0",
		Id:      "projector",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.SetBasicAuth(p.user, p.passwd)
	req.Header.Set("Content-Type", "application/json")

	rsp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()

	data, err := io.ReadAll(rsp.Body)
	if err != nil {
		return err
	}

	var decoded rpcResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("%s: invalid response (http %d): %w", method, rsp.StatusCode, err)
	}
	if decoded.Error != nil {
		return fmt.Errorf("%s: rpc error %d: %s", method, decoded.Error.Code, decoded.Error.Message)
	}
	return json.Unmarshal(decoded.Result, result)
}

package bitcoin_rpc

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sat20-labs/projector/common"
)

// EsploraSource scrapes an esplora-compatible REST endpoint
// (mempool.space, blockstream.info). Parent links come from each
// transaction's inputs, filtered later against the mirror so confirmed
// parents drop out naturally.
type EsploraSource struct {
	baseURL string
	client  *http.Client
}

func NewEsploraSource(baseURL string) *EsploraSource {
	return &EsploraSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *EsploraSource) MempoolTxids() ([]string, error) {
	var txids []string
	if err := p.get("/mempool/txids", &txids); err != nil {
		return nil, err
	}
	return txids, nil
}

func (p *EsploraSource) MempoolEntries(txids []string) ([]common.MempoolEntry, error) {
	now := time.Now().Unix()
	entries := make([]common.MempoolEntry, 0, len(txids))
	for _, txid := range txids {
		var raw esploraTx
		if err := p.get("/tx/"+txid, &raw); err != nil {
			common.Log.Debugf("esplora tx %s: %v", txid, err)
			continue
		}
		entries = append(entries, common.MempoolEntry{
			Txid:      txid,
			Fee:       raw.Fee,
			Weight:    raw.Weight,
			VSize:     (raw.Weight + 3) / 4,
			Sigops:    raw.Sigops,
			FirstSeen: now,
			Parents:   raw.parentTxids(),
		})
	}
	return entries, nil
}

type esploraTx struct {
	Txid   string      `json:"txid"`
	Weight int64       `json:"weight"`
	Fee    int64       `json:"fee"`
	Sigops int64       `json:"sigops"`
	Vin    []esploraIn `json:"vin"`
}

type esploraIn struct {
	Txid string `json:"txid"`
}

func (t *esploraTx) parentTxids() []string {
	seen := make(map[string]struct{}, len(t.Vin))
	var parents []string
	for _, in := range t.Vin {
		if in.Txid == "" {
			continue
		}
		if _, ok := seen[in.Txid]; ok {
			continue
		}
		seen[in.Txid] = struct{}{}
		parents = append(parents, in.Txid)
	}
	return parents
}

func (p *EsploraSource) get(path string, result any) error {
	rsp, err := p.client.Get(p.baseURL + path)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()

	data, err := io.ReadAll(rsp.Body)
	if err != nil {
		return err
	}
	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: http %d: %s", path, rsp.StatusCode, string(data))
	}
	return json.Unmarshal(data, result)
}

package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
)

// HeaderSource returns the best block number of a chain.
type HeaderSource interface {
	BestBlockNumber(ctx context.Context) (uint64, error)
}

// RPCClient reads headers from a Substrate JSON-RPC endpoint over HTTP.
type RPCClient struct {
	url    string
	client *http.Client
	nextID atomic.Uint64
}

func NewRPCClient(url string, timeout time.Duration) *RPCClient {
	return &RPCClient{url: url, client: &http.Client{Timeout: timeout}}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// BestBlockNumber calls chain_getHeader and parses result.number.
func (c *RPCClient) BestBlockNumber(ctx context.Context) (uint64, error) {
	body, err := c.call(ctx, "chain_getHeader")
	if err != nil {
		return 0, err
	}
	return parseHeaderNumber(body)
}

func (c *RPCClient) call(ctx context.Context, method string, params ...any) ([]byte, error) {
	if params == nil {
		params = []any{}
	}
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: c.nextID.Add(1), Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}
	return body, nil
}

func parseHeaderNumber(body []byte) (uint64, error) {
	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("chain_getHeader: invalid json")
	}
	res := gjson.ParseBytes(body)
	if e := res.Get("error"); e.Exists() {
		return 0, fmt.Errorf("chain_getHeader: rpc error %d: %s", e.Get("code").Int(), e.Get("message").String())
	}
	number := res.Get("result.number")
	if !number.Exists() {
		return 0, fmt.Errorf("chain_getHeader: missing result.number")
	}
	raw, ok := strings.CutPrefix(number.String(), "0x")
	if !ok {
		return 0, fmt.Errorf("chain_getHeader: block number %q is not hex", number.String())
	}
	n, err := strconv.ParseUint(raw, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("chain_getHeader: %w", err)
	}
	return n, nil
}

package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gget/internal/ports"
	"gget/internal/shared"
	"gget/internal/types"
)

// RPCClientAdapter talks to a gno.land RPC endpoint via abci_query. It is
// stateless beyond the HTTP client: a request either yields complete decoded
// bytes or an error.
type RPCClientAdapter struct {
	Endpoint   string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration

	client *http.Client
}

type RPCConfig struct {
	Endpoint     string
	TimeoutSec   int
	Retries      int
	RetryDelayMs int
}

const DefaultRPCEndpoint = "https://rpc.gno.land:443"

const vmFileQueryPath = "vm/qfile"

const defaultRPCTimeout = 30 * time.Second
const defaultRPCRetries = 3
const defaultRPCRetryDelay = 500 * time.Millisecond
const maxRPCRetryDelay = 5 * time.Second

func NewRPCClientAdapter(cfg RPCConfig) RPCClientAdapter {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultRPCEndpoint
	}
	timeout := normalizeRPCTimeout(cfg.TimeoutSec)
	return RPCClientAdapter{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		Timeout:    timeout,
		Retries:    normalizeRPCRetries(cfg.Retries),
		RetryDelay: normalizeRPCRetryDelay(cfg.RetryDelayMs),
		client:     &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      int       `json:"id"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	Path string `json:"path"`
	Data string `json:"data"`
}

type rpcResponse struct {
	Result rpcResult `json:"result"`
}

type rpcResult struct {
	Response rpcQueryResponse `json:"response"`
}

type rpcQueryResponse struct {
	ResponseBase rpcResponseBase `json:"ResponseBase"`
}

type rpcResponseBase struct {
	Error json.RawMessage `json:"Error"`
	Data  string          `json:"Data"`
	Log   string          `json:"Log"`
}

// ListFiles queries the file list of a package. The decoded payload is
// newline-delimited filenames; server-returned order is preserved.
func (a RPCClientAdapter) ListFiles(ctx context.Context, pkg types.PackagePath) ([]string, error) {
	payload, err := a.query(ctx, pkg.String())
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(string(payload), "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		files = append(files, name)
	}
	if len(files) == 0 {
		// the VM answers unknown paths with an empty listing
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("package not found").
			WithCause(shared.RPCRemoteError(pkg.String(), "empty file list"))
	}
	return files, nil
}

// GetFile queries the raw content of a single file within a package.
func (a RPCClientAdapter) GetFile(ctx context.Context, pkg types.PackagePath, filename string) ([]byte, error) {
	return a.query(ctx, pkg.FilePath(filename))
}

// query runs one abci_query with bounded retries. Only transport-class
// failures are retried; NotFound and Decode indicate the request itself is
// invalid and surface immediately.
func (a RPCClientAdapter) query(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < a.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, canceledError(err)
		}
		payload, retry, err := a.queryOnce(ctx, path)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if !retry || attempt == a.Retries-1 {
			return nil, err
		}
		log.Debug().
			Str("path", path).
			Int("attempt", attempt+1).
			Err(err).
			Msg("rpc query failed, retrying")
		select {
		case <-time.After(a.retryDelay(attempt)):
		case <-ctx.Done():
			return nil, canceledError(ctx.Err())
		}
	}
	return nil, lastErr
}

func (a RPCClientAdapter) queryOnce(ctx context.Context, path string) ([]byte, bool, error) {
	request := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "abci_query",
		Params: rpcParams{
			Path: vmFileQueryPath,
			Data: shared.EncodeQueryPath(path),
		},
	}
	body, err := json.Marshal(request)
	if err != nil {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode rpc request").
			WithCause(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create rpc request").
			WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, canceledError(ctxErr)
		}
		return nil, true, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("rpc endpoint unreachable").
			WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retry := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
		return nil, retry, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("rpc endpoint returned an error status").
			WithCause(shared.HTTPStatusError(resp.StatusCode, a.Endpoint))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("failed to read rpc response").
			WithCause(err)
	}
	var decoded rpcResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode rpc response").
			WithCause(err)
	}
	base := decoded.Result.Response.ResponseBase
	if remoteError(base.Error) {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("remote rejected the query path").
			WithCause(shared.RPCRemoteError(path, string(base.Error)))
	}
	payload, err := shared.DecodePayload(base.Data)
	if err != nil {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode response payload").
			WithCause(err)
	}
	return payload, false, nil
}

func (a RPCClientAdapter) retryDelay(attempt int) time.Duration {
	delay := a.RetryDelay * time.Duration(1<<attempt)
	if delay > maxRPCRetryDelay {
		delay = maxRPCRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

func remoteError(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null"
}

func canceledError(cause error) error {
	code := errbuilder.CodeCanceled
	if errors.Is(cause, context.DeadlineExceeded) {
		code = errbuilder.CodeDeadlineExceeded
	}
	return errbuilder.New().
		WithCode(code).
		WithMsg("rpc query canceled").
		WithCause(cause)
}

func normalizeRPCTimeout(value int) time.Duration {
	timeout := time.Duration(value) * time.Second
	if timeout <= 0 {
		return defaultRPCTimeout
	}
	return timeout
}

func normalizeRPCRetries(value int) int {
	if value <= 0 {
		return defaultRPCRetries
	}
	return value
}

func normalizeRPCRetryDelay(value int) time.Duration {
	delay := time.Duration(value) * time.Millisecond
	if delay <= 0 {
		return defaultRPCRetryDelay
	}
	return delay
}

var _ ports.RPCPort = RPCClientAdapter{}

// Package shared provides common utility functions used across multiple
// packages in the gget codebase.
package shared

import (
	"encoding/base64"
	"fmt"
)

// EncodeQueryPath encodes a package or file path for the abci_query wire
// format using standard base64.
func EncodeQueryPath(path string) string {
	return base64.StdEncoding.EncodeToString([]byte(path))
}

// DecodePayload decodes a standard-base64 response payload.
func DecodePayload(data string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(data)
}

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// RPCRemoteError creates a formatted error for a non-null Error field in an
// abci_query response.
func RPCRemoteError(path string, remote string) error {
	return fmt.Errorf("path=%s remote_error=%s", path, remote)
}

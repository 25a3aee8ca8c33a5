package kgio

import (
	"context"
	"io"
	"os"
	"strings"

	"kgtab/internal/fetch"
)

// remoteClient fetches http(s) sources. Package-level so tests can swap in a
// client with a custom transport.
var remoteClient = fetch.NewClient(fetch.Config{})

// openSource resolves a path argument into a byte source: "-" is stdin, an
// http(s) URL is fetched with a streaming GET (with retry on transient
// failures), anything else is a local file.
func openSource(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return remoteClient.Get(context.Background(), path)
	}
	return os.Open(path)
}

package fetch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gaurav-prasanna/arxiv2md/core"
)

// FileFetcher reads a saved page from disk.
type FileFetcher struct{}

// Fetch reads the file at path. ctx is only checked before reading.
func (FileFetcher) Fetch(ctx context.Context, path string) (*core.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", core.ErrFetchFailed, path, err)
	}
	body := string(data)
	if strings.Contains(body, noHTMLMarker) {
		return nil, fmt.Errorf("%w: %s", core.ErrNoHTMLAvailable, path)
	}
	return &core.FetchResult{URL: path, HTML: body}, nil
}

// Auto sends local paths to Files and everything else to Remote.
type Auto struct {
	Remote core.Fetcher
	Files  core.Fetcher
}

// NewAuto wraps remote with local file support.
func NewAuto(remote core.Fetcher) *Auto {
	return &Auto{Remote: remote, Files: FileFetcher{}}
}

func (a *Auto) Fetch(ctx context.Context, source string) (*core.FetchResult, error) {
	if IsLocalPath(source) {
		return a.Files.Fetch(ctx, source)
	}
	return a.Remote.Fetch(ctx, source)
}

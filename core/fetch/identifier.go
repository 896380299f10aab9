package fetch

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/arxiv2md/core"
)

var (
	// 2401.00001, 2401.00001v2
	newStyleIDRe = regexp.MustCompile(`^\d{4}\.\d{4,5}(v\d+)?$`)
	// hep-th/9901001, math.GT/0309136v1
	oldStyleIDRe = regexp.MustCompile(`^[a-z][a-z\-]*(\.[A-Z]{2})?/\d{7}(v\d+)?$`)
)

// NormalizeID reduces an arXiv reference to its bare identifier. It accepts
// "arXiv:" prefixes and abs, html and pdf URLs on arxiv.org.
func NormalizeID(ref string) (string, error) {
	id := strings.TrimSpace(ref)
	if len(id) > 6 && strings.EqualFold(id[:6], "arxiv:") {
		id = id[6:]
	}

	if strings.Contains(id, "://") {
		u, err := url.Parse(id)
		if err != nil {
			return "", fmt.Errorf("%w: parsing %q: %w", core.ErrFetchFailed, ref, err)
		}
		if !strings.HasSuffix(u.Host, "arxiv.org") {
			return "", fmt.Errorf("%w: %q is not an arXiv URL", core.ErrFetchFailed, ref)
		}
		id = strings.Trim(u.Path, "/")
		for _, prefix := range []string{"abs/", "html/", "pdf/"} {
			if strings.HasPrefix(id, prefix) {
				id = strings.TrimPrefix(id, prefix)
				break
			}
		}
		id = strings.TrimSuffix(id, ".pdf")
	}

	if !newStyleIDRe.MatchString(id) && !oldStyleIDRe.MatchString(id) {
		return "", fmt.Errorf("%w: %q is not an arXiv identifier", core.ErrFetchFailed, ref)
	}
	return id, nil
}

// HTMLURL joins base and id into the address of the rendered paper.
func HTMLURL(base, id string) string {
	return strings.TrimRight(base, "/") + "/" + id
}

// IsLocalPath reports whether source names a file rather than an arXiv id.
// An existing file always wins.
func IsLocalPath(source string) bool {
	if fi, err := os.Stat(source); err == nil && !fi.IsDir() {
		return true
	}
	if strings.Contains(source, "://") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(source))
	return ext == ".html" || ext == ".htm" || strings.HasPrefix(source, ".") || filepath.IsAbs(source)
}

package registry

import "github.com/feral-file/ff-agent-registry/internal/providers/cardano"

// resumeWindow returns the assets of the resume page that come after last.
// found is false when last is set but missing from a non-empty page, in which
// case the whole page is returned and the caller applies the miss policy.
func resumeWindow(page []cardano.PolicyAsset, last *string) (window []cardano.PolicyAsset, found bool) {
	if last == nil || len(page) == 0 {
		return page, true
	}

	for i := range page {
		if page[i].Asset == *last {
			return page[i+1:], true
		}
	}

	return page, false
}

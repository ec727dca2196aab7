package audit

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/glimmerlabs/glimmer/internal/media"
	glimmererrors "github.com/glimmerlabs/glimmer/pkg/errors"
)

// Check names one post-enhancement document inspection.
type Check string

const (
	// CheckAltText requires non-empty alt text on every img.
	CheckAltText Check = "alt_text"
	// CheckDeferredLoading requires a loading strategy on every media element.
	CheckDeferredLoading Check = "deferred_loading"
	// CheckAnalyticsTokens requires the _a parameter on every delivery URL.
	CheckAnalyticsTokens Check = "analytics_token"
)

// Result captures the outcome of executing a single audit check.
type Result struct {
	Check   Check
	Passed  bool
	Message string
	Error   error
}

// Run parses an enhanced document and executes every audit check against it.
// The results cover all checks; the error combines the failing ones and is
// nil when the document is clean.
func Run(r io.Reader, cloud media.Cloud) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, glimmererrors.NewParseError("document", 0, err)
	}

	checks := []struct {
		name Check
		run  func() error
	}{
		{CheckAltText, func() error { return checkAltText(doc) }},
		{CheckDeferredLoading, func() error { return checkDeferredLoading(doc) }},
		{CheckAnalyticsTokens, func() error { return checkAnalyticsTokens(doc, cloud) }},
	}

	results := make([]Result, 0, len(checks))
	var failedMessages []string

	for _, check := range checks {
		result := Result{Check: check.name}
		if err := check.run(); err != nil {
			result.Message = err.Error()
			result.Error = err
			failedMessages = append(failedMessages, err.Error())
		} else {
			result.Passed = true
			result.Message = "passed"
		}
		results = append(results, result)
	}

	if len(failedMessages) > 0 {
		return results, fmt.Errorf("audit failed: %s", strings.Join(failedMessages, "; "))
	}
	return results, nil
}

// Clean reports whether every result passed.
func Clean(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

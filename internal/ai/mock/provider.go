// Package mock provides a canned completion provider for tests and for
// running the pipeline without a real backend.
package mock

import (
	"context"

	"github.com/bytefusion/loganalyzer/pkg/models"
)

// defaultResponse follows the four-section analysis format so the parser
// produces a fully populated result.
const defaultResponse = `ERROR DETECTION
Type: Simulated Error
Status Code: 500
Description: Simulated error description from mock provider
File Location: app/example/service.go

CODE ANALYSIS
Problematic Code: result := svc.Do(nil)
Suggested Fix: result := svc.Do(ctx)

ANALYSIS
Severity: MEDIUM
Impact: Simulated impact for testing
Root Cause: Simulated root cause from mock provider

RESOLUTION
Immediate Actions:
- Check application logs for more context
- Retry the failed operation

Long-term Solutions:
- Add retries with backoff
- Improve input validation
`

// Provider satisfies models.Provider for testing.
type Provider struct {
	Name_        string
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
}

func (p *Provider) Name() string { return p.Name_ }

func (p *Provider) Complete(ctx context.Context, prompt string) (string, error) {
	if p.CompleteFunc != nil {
		return p.CompleteFunc(ctx, prompt)
	}
	return defaultResponse, nil
}

// NewProvider returns a Provider with a canned four-section response.
func NewProvider() *Provider {
	return &Provider{Name_: "mock"}
}

// NewFailingProvider returns a Provider that always returns the given error.
func NewFailingProvider(err error) *Provider {
	return &Provider{
		Name_: "mock-failing",
		CompleteFunc: func(_ context.Context, _ string) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a Provider that blocks until context is cancelled.
func NewTimeoutProvider() *Provider {
	return &Provider{
		Name_: "mock-timeout",
		CompleteFunc: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}

// Compile-time check that Provider implements models.Provider.
var _ models.Provider = (*Provider)(nil)

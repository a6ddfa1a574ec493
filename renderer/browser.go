package renderer

import (
	"context"

	"github.com/chromedp/chromedp"
)

// Browser holds the launch options for the headless Chrome used by the
// browser based engines.
type Browser struct {
	// NoSandbox is needed in containers and other restricted environments.
	NoSandbox bool
	ExecPath  string
}

// Allocate returns a chromedp allocator context for the configured browser.
func (browser Browser) Allocate(ctx context.Context) (context.Context, context.CancelFunc) {
	options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if browser.NoSandbox {
		options = append(options, chromedp.NoSandbox)
	}
	if browser.ExecPath != "" {
		options = append(options, chromedp.ExecPath(browser.ExecPath))
	}

	return chromedp.NewExecAllocator(ctx, options...)
}

package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jgoulah/hashfuture/internal/config"
)

// NewBrowser starts a Chrome instance. The returned cancel stops it.
func NewBrowser(parent context.Context, visible bool, timeout time.Duration) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !visible),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)

	return ctx, func() {
		cancelTimeout()
		cancelCtx()
		cancelAlloc()
	}
}

// ExtractCookies returns the browser cookies belonging to domain.
// An empty domain returns every cookie.
func ExtractCookies(ctx context.Context, domain string) ([]config.Cookie, error) {
	var cookies []*network.Cookie

	if err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = network.GetCookies().Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("getting cookies: %w", err)
	}

	result := make([]config.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if domain != "" && !strings.HasSuffix(strings.TrimPrefix(c.Domain, "."), domain) {
			continue
		}
		result = append(result, config.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: c.SameSite.String(),
		})
	}

	return result, nil
}

// SetCookies loads saved cookies into the browser, skipping expired ones
func SetCookies(ctx context.Context, cookies []config.Cookie) error {
	now := float64(time.Now().Unix())

	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			if c.Expires > 0 && c.Expires < now {
				continue
			}

			expr := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithHTTPOnly(c.HTTPOnly).
				WithSecure(c.Secure)
			if c.Expires > 0 {
				expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				expr = expr.WithExpires(&expires)
			}

			if err := expr.Do(ctx); err != nil {
				return fmt.Errorf("setting cookie %s: %w", c.Name, err)
			}
		}
		return nil
	}))
}

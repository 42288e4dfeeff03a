// Package scraper drives a Chrome session to log in to Hashflare and save the
// account history page.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jgoulah/hashfuture/internal/config"
)

// ErrNotLoggedIn means the history page redirected to the login form
var ErrNotLoggedIn = errors.New("session expired or not logged in")

// historyReady is true once the page has rendered every table the parser reads
const historyReady = `document.querySelectorAll("table").length >= 4`

// Login opens loginURL and calls wait, which blocks until the user has signed
// in. It returns the cookies of the login host.
func Login(ctx context.Context, loginURL string, wait func()) ([]config.Cookie, error) {
	u, err := url.Parse(loginURL)
	if err != nil {
		return nil, fmt.Errorf("parsing login URL: %w", err)
	}

	if err := chromedp.Run(ctx,
		network.Enable(),
		chromedp.Navigate(loginURL),
	); err != nil {
		return nil, fmt.Errorf("navigating to login page: %w", err)
	}

	wait()

	cookies, err := ExtractCookies(ctx, u.Hostname())
	if err != nil {
		return nil, err
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("no cookies found - make sure you're logged in")
	}
	return cookies, nil
}

// CaptureHistory loads the history page with the saved session and returns its HTML
func CaptureHistory(ctx context.Context, historyURL string, cookies []config.Cookie) ([]byte, error) {
	if len(cookies) == 0 {
		return nil, ErrNotLoggedIn
	}

	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		return nil, fmt.Errorf("enabling network: %w", err)
	}
	if err := SetCookies(ctx, cookies); err != nil {
		return nil, err
	}

	var location string
	if err := chromedp.Run(ctx,
		chromedp.Navigate(historyURL),
		chromedp.Sleep(2*time.Second),
		chromedp.Location(&location),
	); err != nil {
		return nil, fmt.Errorf("navigating to history page: %w", err)
	}
	if strings.Contains(strings.ToLower(location), "login") {
		return nil, ErrNotLoggedIn
	}

	var (
		ready bool
		html  string
	)
	if err := chromedp.Run(ctx,
		chromedp.Poll(historyReady, &ready, chromedp.WithPollingTimeout(60*time.Second)),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("waiting for history tables: %w", err)
	}

	return []byte(html), nil
}

// Package core holds the trailforks session: app credentials, the http
// client, the login cookie and the request helpers shared by the region and
// user clients.
package core

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
	"trailforks-scraper/lib/restyutil"
	"trailforks-scraper/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseUrl   = "https://www.trailforks.com"
	DefaultTimeout   = time.Second * 30
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:104.0) Gecko/20100101 Firefox/104.0"
)

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl   string
	AppId     string
	AppSecret string
	// Username and Password are only needed for operations that scrape
	// pages behind a login.
	Username string
	Password string
	// Timeout of a single request, defaults to DefaultTimeout.
	Timeout time.Duration
	// PageConcurrency is the amount of pages a paginated fetch may request
	// at once, anything below 2 fetches sequentially.
	PageConcurrency int
	// Location is used to render ride dates, defaults to time.Local.
	Location *time.Location
	// DumpOutput receives raw http exchanges when debug logging is on.
	DumpOutput restyutil.InstrumentOutput
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	opts ClientOptions
	jar  http.CookieJar

	mu      sync.Mutex
	cookies []*http.Cookie
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	opts.BaseUrl = strings.TrimSuffix(opts.BaseUrl, "/")
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("User-Agent", DefaultUserAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "trailforks.lib.trailforks.http")
	restyutil.InstrumentClient(client, opts.DumpOutput)

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
		opts:    opts,
		jar:     jar,
	}, nil
}

func (c *Client) Username() string {
	return c.opts.Username
}

func (c *Client) Location() *time.Location {
	return c.opts.Location
}

func (c *Client) PageConcurrency() int {
	return c.opts.PageConcurrency
}

// appParams are the query parameters every api call is signed with.
func (c *Client) appParams() map[string]string {
	return map[string]string{
		"app_id":     c.opts.AppId,
		"app_secret": c.opts.AppSecret,
	}
}

// FilterExpr renders an api filter expression, the request encoder takes
// care of escaping it.
func FilterExpr(key, value string) string {
	return fmt.Sprintf("%s::%s", key, value)
}

// Fields renders the `fields` parameter of an api request.
func Fields(fields ...string) string {
	return strings.Join(fields, ",")
}

// UserPath renders a profile path of the configured user,
// UserPath("ridelog") -> "/profile/<username>/ridelog/".
func (c *Client) UserPath(sub ...string) string {
	parts := append([]string{"profile", url.PathEscape(c.opts.Username)}, sub...)
	return "/" + strings.Join(parts, "/") + "/"
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.Http.R().SetContext(ctx)
}

package core

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"trailforks-scraper/lib/trailforks/tferrors"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

const loginPath = "/login/"

// Login signs in with the username and password the client was created with.
func (c *Client) Login(ctx context.Context) error {
	return c.LoginUsernamePassword(ctx, c.opts.Username, c.opts.Password)
}

func (c *Client) LoginUsernamePassword(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:LoginUsernamePassword")
	defer span.End()

	if c.opts.AppId == "" || c.opts.AppSecret == "" {
		span.SetStatus(codes.Error, "missing app credentials")
		return &tferrors.AuthError{Op: "login", Err: tferrors.ErrMissingAppCredentials}
	}
	if username == "" || password == "" {
		span.SetStatus(codes.Error, "missing credentials")
		return &tferrors.AuthError{Op: "login", Err: tferrors.ErrMissingCredentials}
	}

	res, err := c.request(ctx).Get(loginPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch login page")
		return &tferrors.TransportError{Op: "login", URL: loginPath, Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse login page")
		return err
	}

	// the login form carries hidden inputs (csrf token, return path) that
	// have to be posted back with the credentials
	form := map[string]string{}
	doc.Find("form:has(input[name=password]) input[type=hidden]").Each(func(_ int, input *goquery.Selection) {
		name := input.AttrOr("name", "")
		if name == "" {
			return
		}
		form[name] = input.AttrOr("value", "")
	})
	form["username"] = username
	form["password"] = password

	_, err = c.request(ctx).
		SetFormData(form).
		Post(loginPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return &tferrors.TransportError{Op: "login", URL: loginPath, Err: err}
	}

	res, err = c.request(ctx).Get("/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to request home page after login")
		return &tferrors.TransportError{Op: "login", URL: "/", Err: err}
	}
	doc, err = goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse home page")
		return err
	}

	cookies := c.jar.Cookies(c.BaseUrl)
	if doc.Find(`a[href*="/logout"]`).Length() == 0 || len(cookies) == 0 {
		span.SetStatus(codes.Error, tferrors.ErrLoginFailed.Error())
		return &tferrors.AuthError{Op: "login", Err: tferrors.ErrLoginFailed}
	}

	c.mu.Lock()
	c.cookies = cookies
	c.mu.Unlock()

	slog.DebugContext(ctx, "logged in", "username", username, "cookies", len(cookies))
	return nil
}

// SetCookies installs an existing session (for example one copied out of a
// browser) instead of logging in.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.jar.SetCookies(c.BaseUrl, cookies)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cookies = c.jar.Cookies(c.BaseUrl)
}

// Cookies returns the authentication cookie set, nil before login.
func (c *Client) Cookies() []*http.Cookie {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cookies
}

func (c *Client) HasCookie() bool {
	return len(c.Cookies()) > 0
}

// CheckCookie fails when no login cookie is held.
func (c *Client) CheckCookie() error {
	if !c.HasCookie() {
		return &tferrors.AuthError{Op: "check-cookie", Err: tferrors.ErrNoCookie}
	}
	return nil
}

// RequireAuth is the precondition of every operation that needs
// authentication: app credentials have to be present, and when a username
// and password are configured the session is logged in lazily.
func (c *Client) RequireAuth(ctx context.Context) error {
	if c.opts.AppId == "" || c.opts.AppSecret == "" {
		return &tferrors.AuthError{Op: "require-auth", Err: tferrors.ErrMissingAppCredentials}
	}
	if c.opts.Username == "" || c.opts.Password == "" || c.HasCookie() {
		return nil
	}
	return c.Login(ctx)
}

package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"trailforks-scraper/lib/trailforks/tferrors"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// envelope is the shape of every /api/1 response.
type envelope[T any] struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// messageOf pulls the api message out of an error body, best effort.
func messageOf(body []byte) string {
	var parsed envelope[json.RawMessage]
	err := json.Unmarshal(body, &parsed)
	if err != nil {
		return ""
	}
	return parsed.Message
}

// checkStatus maps error statuses onto typed errors, a 401 is a locked api.
func checkStatus(op string, res *resty.Response) error {
	status := res.StatusCode()
	if status == http.StatusUnauthorized {
		return &tferrors.LockedAPIError{Op: op, Message: messageOf(res.Body())}
	}
	if status < 200 || status >= 300 {
		return &tferrors.APIError{Op: op, StatusCode: status, Message: messageOf(res.Body())}
	}
	return nil
}

// GetAPI requests an /api/1 endpoint signed with the app credentials and
// decodes the `data` member of the response into T.
func GetAPI[T any](ctx context.Context, c *Client, op, endpoint string, params map[string]string) (T, error) {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	var out T

	res, err := c.request(ctx).
		SetQueryParams(c.appParams()).
		SetQueryParams(params).
		Get(endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return out, &tferrors.TransportError{Op: op, URL: endpoint, Err: err}
	}
	span.SetAttributes(attribute.Int("http.status", res.StatusCode()))

	err = checkStatus(op, res)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}

	var parsed envelope[T]
	err = json.Unmarshal(res.Body(), &parsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		return out, fmt.Errorf("%s: decode response: %w", op, err)
	}
	if parsed.Error != 0 {
		slog.WarnContext(ctx, "api reported an error", "op", op, "error", parsed.Error, "message", parsed.Message)
	}
	return parsed.Data, nil
}

// GetDocument requests an html page of the site and parses it.
func (c *Client) GetDocument(ctx context.Context, op, path string, query map[string]string) (*goquery.Document, error) {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	res, err := c.request(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, &tferrors.TransportError{Op: op, URL: path, Err: err}
	}
	if res.StatusCode() >= 400 {
		err = &tferrors.APIError{Op: op, StatusCode: res.StatusCode()}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, fmt.Errorf("%s: parse html: %w", op, err)
	}
	return doc, nil
}

// Touch requests a page for its side effect only, the status is not
// inspected, only transport failures are returned.
func (c *Client) Touch(ctx context.Context, op, path string) error {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	_, err := c.request(ctx).Get(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return &tferrors.TransportError{Op: op, URL: path, Err: err}
	}
	return nil
}

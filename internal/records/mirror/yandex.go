package mirror

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"

	logx "github.com/subscription-bot/server/pkg/logger"
)

// YandexDisk talks to the Yandex Disk REST API.
type YandexDisk struct {
	client *resty.Client
}

type apiError struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

type uploadLink struct {
	Href   string `json:"href"`
	Method string `json:"method"`
}

func NewYandexDisk(cfg Config) *YandexDisk {
	c := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "OAuth "+cfg.Token).
		SetHeader("Accept", "application/json").
		SetError(&apiError{})
	return &YandexDisk{client: c}
}

// CheckToken reports whether the token is accepted.
func (y *YandexDisk) CheckToken(ctx context.Context) (bool, error) {
	resp, err := y.client.R().SetContext(ctx).Get("/")
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, nil
	default:
		return false, statusError("check token", "/", resp)
	}
}

func (y *YandexDisk) Exists(ctx context.Context, path string) (bool, error) {
	resp, err := y.client.R().SetContext(ctx).
		SetQueryParams(map[string]string{"path": path, "fields": "path"}).
		Get("/resources")
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, statusError("stat", path, resp)
	}
}

func (y *YandexDisk) Mkdir(ctx context.Context, path string) error {
	resp, err := y.client.R().SetContext(ctx).SetQueryParam("path", path).Put("/resources")
	if err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	switch resp.StatusCode() {
	case http.StatusCreated, http.StatusConflict:
		return nil
	default:
		return statusError("mkdir", path, resp)
	}
}

// Upload overwrites remotePath with the contents of localPath.
func (y *YandexDisk) Upload(ctx context.Context, localPath, remotePath string) error {
	var link uploadLink
	resp, err := y.client.R().SetContext(ctx).
		SetQueryParams(map[string]string{"path": remotePath, "overwrite": "true"}).
		SetResult(&link).
		Get("/resources/upload")
	if err != nil {
		return fmt.Errorf("request upload link: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return statusError("request upload link", remotePath, resp)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	method := link.Method
	if method == "" {
		method = http.MethodPut
	}
	resp, err = y.client.R().SetContext(ctx).SetBody(f).Execute(method, link.Href)
	if err != nil {
		return fmt.Errorf("upload %s: %w", remotePath, err)
	}
	switch resp.StatusCode() {
	case http.StatusCreated, http.StatusAccepted, http.StatusOK:
		logx.Debug().Str("path", remotePath).Msg("file uploaded")
		return nil
	default:
		return statusError("upload", remotePath, resp)
	}
}

func (y *YandexDisk) Remove(ctx context.Context, path string) error {
	resp, err := y.client.R().SetContext(ctx).
		SetQueryParams(map[string]string{"path": path, "permanently": "true"}).
		Delete("/resources")
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	switch resp.StatusCode() {
	case http.StatusNoContent, http.StatusAccepted, http.StatusNotFound:
		return nil
	default:
		return statusError("remove", path, resp)
	}
}

// statusError maps API failures onto ErrLocked and ErrTokenExpired where it can.
func statusError(op, path string, resp *resty.Response) error {
	var body apiError
	if e, ok := resp.Error().(*apiError); ok && e != nil {
		body = *e
	}
	msg := body.Description
	if msg == "" {
		msg = strings.TrimSpace(resp.String())
	}
	switch {
	case resp.StatusCode() == http.StatusLocked || strings.Contains(body.Error, "Locked"):
		return fmt.Errorf("%s %s: %w (%s)", op, path, ErrLocked, msg)
	case resp.StatusCode() == http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %w (%s)", op, path, ErrTokenExpired, msg)
	default:
		return fmt.Errorf("%s %s: status %d: %s", op, path, resp.StatusCode(), msg)
	}
}

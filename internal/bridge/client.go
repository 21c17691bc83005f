package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"jig_platform_backend/internal/body"
)

const (
	// DefaultSaveTimeout is the soft timeout on a draft save request.
	DefaultSaveTimeout = 15 * time.Second
)

var (
	ErrReauthRequired = errors.New("api token expired, re-login required")
	ErrNotFound       = errors.New("module not found")
)

// SaveError 保存草稿时的瞬态失败；由历史引擎在下一次变更时重试
type SaveError struct {
	Status int
	Err    error
}

func (e *SaveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("save draft: %v", e.Err)
	}
	return fmt.Sprintf("save draft: unexpected status %d", e.Status)
}

func (e *SaveError) Unwrap() error { return e.Err }

// PublishError 发布的持久失败；草稿保持不变
type PublishError struct {
	Status int
	Body   string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish: status %d: %s", e.Status, e.Body)
}

// LoadError 初始加载失败；编辑器进入可重试的错误态
type LoadError struct {
	Status int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load module: %v", e.Err)
	}
	return fmt.Sprintf("load module: unexpected status %d", e.Status)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Config comes from the host at construction time; the core never reads
// the environment directly.
type Config struct {
	APIURLBase   string
	PagesURLBase string
	Token        string
	SaveTimeout  time.Duration
}

// Client 持久化桥：通过 /v1 接口读写草稿与发布版本
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = DefaultSaveTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
	}
}

// ModuleResponse is the wire shape of a module fetch.
type ModuleResponse struct {
	Module struct {
		ID         string          `json:"id"`
		Kind       body.ModuleKind `json:"kind"`
		IsComplete bool            `json:"is_complete"`
		Body       *body.Body      `json:"body"`
	} `json:"module"`
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIURLBase+path, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, ErrReauthRequired
	}
	return resp, nil
}

func (c *Client) loadModule(ctx context.Context, slot, activityID, moduleID string) (*body.Body, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/module/%s/%s/%s", slot, activityID, moduleID), nil)
	if err != nil {
		if errors.Is(err, ErrReauthRequired) {
			return nil, err
		}
		return nil, &LoadError{Err: err}
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, &LoadError{Status: resp.StatusCode}
	}
	var out ModuleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &LoadError{Err: err}
	}
	return out.Module.Body, nil
}

// LoadDraft fetches the editable draft body.
func (c *Client) LoadDraft(ctx context.Context, activityID, moduleID string) (*body.Body, error) {
	return c.loadModule(ctx, "draft", activityID, moduleID)
}

// LoadLive fetches the published body learners play.
func (c *Client) LoadLive(ctx context.Context, activityID, moduleID string) (*body.Body, error) {
	return c.loadModule(ctx, "live", activityID, moduleID)
}

// SaveDraft persists the draft body. Idempotent; the history engine calls
// it repeatedly with the same body after debounce quiescence.
func (c *Client) SaveDraft(ctx context.Context, activityID, moduleID string, b *body.Body) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.SaveTimeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodPatch,
		fmt.Sprintf("/v1/module/draft/%s/%s", activityID, moduleID),
		map[string]interface{}{"body": b})
	if err != nil {
		if errors.Is(err, ErrReauthRequired) {
			return err
		}
		return &SaveError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return &SaveError{Status: resp.StatusCode}
	}
	return nil
}

// CreateModule creates a draft module under the parent activity and returns
// the new module id.
func (c *Client) CreateModule(ctx context.Context, parentID string, b *body.Body) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/module",
		map[string]interface{}{"parent_id": parentID, "body": b})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", &SaveError{Status: resp.StatusCode}
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// PublishDraft copies every module draft of the activity into its live slot
// in one transactional batch on the server.
func (c *Client) PublishDraft(ctx context.Context, assetKind, activityID string) error {
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/%s/%s/draft/publish", assetKind, activityID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &PublishError{Status: resp.StatusCode, Body: string(raw)}
	}
	return nil
}

// CloneModule server-side deep copies a module into the target activity and
// returns the new module id ("paste module").
func (c *Client) CloneModule(ctx context.Context, sourceActivity, sourceModule, targetActivity string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/module/clone",
		map[string]interface{}{
			"source_activity": sourceActivity,
			"source_module":   sourceModule,
			"target_activity": targetActivity,
		})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", &SaveError{Status: resp.StatusCode}
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Package bridge connects the editor core to its host: the JSON API for
// drafts and live bodies, and the iframe message channel to the outer page.
package bridge

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"jig_platform_backend/internal/body"
	"jig_platform_backend/pkg/logger"

	"go.uber.org/zap"
)

// IframeAction 单一信封：{"kind": ..., "data": ...}
type IframeAction struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// outbound (editor → host)
const (
	ActionEditorReady       = "editor-ready"
	ActionPublish           = "publish"
	ActionRequestPreview    = "request-preview"
	ActionDirtyStateChanged = "dirty-state-changed"
)

// inbound (host → editor)
const (
	ActionLoadBody = "load-body"
	ActionReload   = "reload"
	ActionPause    = "pause"
	ActionResume   = "resume"
)

// MessagePoster delivers envelopes to the host page, in order.
type MessagePoster interface {
	Post(action IframeAction) error
}

// Messenger wraps a poster with the typed outbound vocabulary.
type Messenger struct {
	poster MessagePoster
}

func NewMessenger(poster MessagePoster) *Messenger {
	return &Messenger{poster: poster}
}

func (m *Messenger) EditorReady() error {
	return m.poster.Post(IframeAction{Kind: ActionEditorReady})
}

func (m *Messenger) Publish() error {
	return m.poster.Post(IframeAction{Kind: ActionPublish})
}

func (m *Messenger) RequestPreview() error {
	return m.poster.Post(IframeAction{Kind: ActionRequestPreview})
}

func (m *Messenger) DirtyStateChanged(dirty bool) error {
	raw, _ := json.Marshal(dirty)
	return m.poster.Post(IframeAction{Kind: ActionDirtyStateChanged, Data: raw})
}

// InboundHandler 宿主发来的指令；按收到的顺序应用
type InboundHandler struct {
	OnLoadBody func(*body.Body)
	OnReload   func()
	OnPause    func()
	OnResume   func()
}

// Dispatch decodes and routes one inbound envelope. Unknown kinds are
// ignored at debug level; messages carry no identity, correlation is by
// frame origin.
func (h *InboundHandler) Dispatch(action IframeAction) error {
	switch action.Kind {
	case ActionLoadBody:
		var b body.Body
		if err := json.Unmarshal(action.Data, &b); err != nil {
			return fmt.Errorf("load-body payload: %w", err)
		}
		if h.OnLoadBody != nil {
			h.OnLoadBody(&b)
		}
	case ActionReload:
		if h.OnReload != nil {
			h.OnReload()
		}
	case ActionPause:
		if h.OnPause != nil {
			h.OnPause()
		}
	case ActionResume:
		if h.OnResume != nil {
			h.OnResume()
		}
	default:
		logger.Log.Debug("bridge: ignoring unknown iframe action", zap.String("kind", action.Kind))
	}
	return nil
}

// OriginAllowlist 校验消息来源帧
type OriginAllowlist struct {
	origins map[string]bool
}

func NewOriginAllowlist(origins []string) *OriginAllowlist {
	set := make(map[string]bool, len(origins))
	for _, o := range origins {
		set[normalizeOrigin(o)] = true
	}
	return &OriginAllowlist{origins: set}
}

// Allowed reports whether the frame origin may exchange envelopes with us.
func (a *OriginAllowlist) Allowed(origin string) bool {
	return a.origins[normalizeOrigin(origin)]
}

func normalizeOrigin(origin string) string {
	origin = strings.TrimSuffix(strings.TrimSpace(origin), "/")
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return strings.ToLower(origin)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

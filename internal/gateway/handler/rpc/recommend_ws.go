package rpc

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"schemefinder/internal/recommend"
	"schemefinder/internal/scheme"
)

const (
	recommendWSWriteWait = 10 * time.Second
	recommendWSPongWait  = 60 * time.Second
	recommendWSPingEvery = (recommendWSPongWait * 9) / 10
)

var recommendWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type recommendWSInbound struct {
	Type    string              `json:"type"`
	Profile *scheme.UserProfile `json:"profile,omitempty"`
}

type recommendWSOutbound struct {
	Type    string                 `json:"type"`
	Event   *recommend.Event       `json:"event,omitempty"`
	Result  *scheme.Recommendation `json:"result,omitempty"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// HandleRecommendWS streams the progress of one recommendation at a time over a websocket.
func (h *SchemeHandler) HandleRecommendWS(w http.ResponseWriter, r *http.Request) {
	conn, err := recommendWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(recommendWSPongWait)); err != nil {
		h.log.Warn("recommend ws set read deadline failed", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(recommendWSPongWait))
	})

	writeCh := make(chan recommendWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(recommendWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(recommendWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(recommendWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	var running atomic.Bool
	for {
		var in recommendWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "":
			pushRecommendWS(writeCh, recommendWSOutbound{Type: "error", Code: "invalid_argument", Message: "type is required"})
		case "ping":
			pushRecommendWS(writeCh, recommendWSOutbound{Type: "pong"})
		case "recommend":
			if in.Profile == nil {
				pushRecommendWS(writeCh, recommendWSOutbound{Type: "error", Code: "invalid_argument", Message: "profile is required"})
				continue
			}
			if !running.CompareAndSwap(false, true) {
				pushRecommendWS(writeCh, recommendWSOutbound{Type: "error", Code: "busy", Message: "a recommendation is already running"})
				continue
			}
			p := in.Profile.Normalized()
			go func() {
				defer running.Store(false)
				h.streamRecommendation(ctx, p, writeCh)
			}()
		default:
			pushRecommendWS(writeCh, recommendWSOutbound{Type: "error", Code: "invalid_argument", Message: "unsupported type: " + in.Type})
		}
	}
}

func (h *SchemeHandler) streamRecommendation(ctx context.Context, p scheme.UserProfile, writeCh chan recommendWSOutbound) {
	pctx := recommend.WithProgress(ctx, func(ev recommend.Event) {
		pushRecommendWS(writeCh, recommendWSOutbound{Type: "progress", Event: &ev})
	})
	rec, err := h.recommender.Recommend(pctx, p)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		code, msg := "internal", "Failed to generate recommendations"
		if errors.Is(err, recommend.ErrInvalidProfile) {
			code, msg = "invalid_argument", "Invalid profile"
		} else {
			h.log.Error("ws recommend failed", zap.Error(err))
		}
		sendRecommendWS(ctx, writeCh, recommendWSOutbound{Type: "error", Code: code, Message: msg})
		return
	}
	if h.recorder != nil {
		h.recorder.RecordRecommendation(p, rec)
	}
	out := rec.EnsureSlices()
	sendRecommendWS(ctx, writeCh, recommendWSOutbound{Type: "result", Result: &out})
}

// pushRecommendWS never blocks; when the buffer is full the oldest queued message is dropped.
func pushRecommendWS(writeCh chan recommendWSOutbound, out recommendWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}

// sendRecommendWS waits for buffer space so final messages are not dropped.
func sendRecommendWS(ctx context.Context, writeCh chan recommendWSOutbound, out recommendWSOutbound) {
	select {
	case writeCh <- out:
	case <-ctx.Done():
	}
}

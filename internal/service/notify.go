package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cuceimatch/matchcore/internal/model"
	tmpl "github.com/cuceimatch/matchcore/internal/template"
)

// NotificationRelay - match.surfaced 이벤트를 외부 webhook으로 전달
//
// 다른 이벤트 종류는 무시합니다.
// 전송 실패 시 로그만 남기고 다음 이벤트를 계속 처리합니다.
type NotificationRelay struct {
	url        string
	template   string
	httpClient *http.Client
}

func NewNotificationRelay(url, body string) *NotificationRelay {
	return &NotificationRelay{
		url:      url,
		template: body,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Run - events 채널이 닫히거나 ctx가 취소될 때까지 전달
func (r *NotificationRelay) Run(ctx context.Context, events <-chan model.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if evt.Type != model.EventMatchSurfaced || evt.Match == nil {
				continue
			}
			if err := r.Deliver(ctx, evt); err != nil {
				log.Printf("[NotificationRelay] Failed to deliver event %s: %v", evt.ID, err)
			} else {
				log.Printf("[NotificationRelay] Delivered match %d", evt.Match.ID)
			}
		}
	}
}

// Deliver - 이벤트 하나를 렌더링해서 POST
func (r *NotificationRelay) Deliver(ctx context.Context, evt model.Event) error {
	var matchData *tmpl.MatchData
	if evt.Match != nil {
		d := tmpl.MatchDataFromModel(*evt.Match)
		matchData = &d
	}
	eventData := tmpl.EventDataFromModel(evt)
	body := tmpl.RenderBody(r.template, matchData, &eventData)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewBufferString(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}

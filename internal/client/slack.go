// 외부 Slack API와 통신하는 클라이언트 정의
//
// 환경변수:
//   - SLACK_BOT_TOKEN: Slack Bot Token (xoxb-...)
//   - SLACK_CHANNEL_ID: Slack 채널 ID (C...)
//
// Webhook 대신 Bot Token을 사용하는 이유:
//   - attachment 포맷으로 심각도별 색상 표시 가능
//   - 추후 체크리스트 후속 업데이트를 같은 스레드로 전송 가능

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ops-checklist/backend/internal/config"
	"github.com/ops-checklist/backend/internal/model"
)

type SlackClient struct {
	botToken   string
	channelID  string
	httpClient *http.Client
}

type SlackMessage struct {
	Channel     string            `json:"channel"`
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

type SlackAttachment struct {
	// - CRITICAL: #dc3545 (빨강)
	// - WARNING: #ffc107 (노랑)
	// - INFO: #36a64f (초록)
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Footer string       `json:"footer,omitempty"`
	Ts     int64        `json:"ts,omitempty"`
	Fields []SlackField `json:"fields,omitempty"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	TS    string `json:"ts,omitempty"`
}

func NewSlackClient(cfg config.SlackConfig) *SlackClient {
	return &SlackClient{
		botToken:  cfg.BotToken,
		channelID: cfg.ChannelID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Bot Token과 Channel ID가 모두 설정되어 있는지 체크
func (c *SlackClient) IsConfigured() bool {
	return c.botToken != "" && c.channelID != ""
}

// SendChecklist - 생성된 체크리스트를 채널로 전송
func (c *SlackClient) SendChecklist(checklist model.DynamicChecklist, alert model.Alert) error {
	msg := SlackMessage{
		Channel: c.channelID,
		Attachments: []SlackAttachment{
			{
				Color:  severityColor(alert.Severity),
				Title:  fmt.Sprintf("Troubleshooting checklist: %s", alert.Title),
				Text:   toSlackMarkdown(checklist.Summary),
				Footer: fmt.Sprintf("alert_id=%s | checklist_id=%s", alert.ID, checklist.ID),
				Ts:     checklist.CreatedAt.Unix(),
				Fields: stepsToFields(checklist.Steps),
			},
		},
	}

	resp, err := c.send(msg)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("slack API error: %s", resp.Error)
	}
	return nil
}

// stepsToFields - 체크리스트 단계를 attachment 필드로 변환
func stepsToFields(steps []model.ChecklistStep) []SlackField {
	fields := make([]SlackField, 0, len(steps))
	for i, step := range steps {
		fields = append(fields, SlackField{
			Title: fmt.Sprintf("%d. [%s]", i+1, step.Priority),
			Value: toSlackMarkdown(step.Description),
			Short: false,
		})
	}
	return fields
}

func severityColor(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "#dc3545"
	case model.SeverityWarning:
		return "#ffc107"
	default:
		return "#36a64f"
	}
}

// Slack API 호출
func (c *SlackClient) send(msg SlackMessage) (*SlackResponse, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal slack message: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, "https://slack.com/api/chat.postMessage", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send slack request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read slack response: %w", err)
	}

	var slackResp SlackResponse
	if err := json.Unmarshal(body, &slackResp); err != nil {
		return nil, fmt.Errorf("failed to parse slack response: %w", err)
	}
	return &slackResp, nil
}

// toSlackMarkdown - 표준 마크다운을 Slack mrkdwn으로 변환
// 코드 블록/인라인 코드 내부는 보호
func toSlackMarkdown(text string) string {
	var out strings.Builder
	lines := strings.Split(text, "\n")
	inCodeBlock := false

	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCodeBlock = !inCodeBlock
			out.WriteString(line)
		} else if inCodeBlock {
			out.WriteString(line)
		} else {
			out.WriteString(convertLine(line))
		}
		if i < len(lines)-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}

// convertLine - 한 줄 단위 변환 (헤더 -> 볼드, **bold** -> *bold*)
func convertLine(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if strings.HasPrefix(trimmed, "#") {
		title := strings.TrimLeft(trimmed, "#")
		return "*" + strings.TrimSpace(title) + "*"
	}

	var out strings.Builder
	inCode := false
	i := 0
	for i < len(line) {
		if line[i] == '`' {
			inCode = !inCode
			out.WriteByte(line[i])
			i++
			continue
		}
		if !inCode && i+1 < len(line) && line[i] == '*' && line[i+1] == '*' {
			out.WriteByte('*')
			i += 2
			continue
		}
		out.WriteByte(line[i])
		i++
	}
	return out.String()
}

// Package chat proxies a health-assistant conversation to the model,
// absorbing transient upstream failures so the endpoint always answers.
package chat

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fittrack-backend/internal/llm"
	"fittrack-backend/internal/logger"
	"fittrack-backend/internal/models"
)

//go:embed chat_prompt.md
var systemPrompt string

const maxAttempts = 3

// historyWindow bounds how many prior turns are forwarded upstream.
const historyWindow = 10

const quotaReply = `Xin lỗi, hạn mức sử dụng AI hôm nay đã hết. 😔

Bạn vẫn có thể:
• Sử dụng các tính năng khác trong ứng dụng
• Quay lại vào ngày mai để tiếp tục chat
• Theo dõi tiến trình, thực đơn, và bài tập

Cảm ơn bạn đã sử dụng! 💪`

const unavailableReply = `Xin lỗi, hiện tại tôi đang gặp chút vấn đề kỹ thuật. 😔

Tuy nhiên, tôi vẫn sẵn sàng giúp bạn! Bạn có thể:
• Thử lại câu hỏi sau vài giây
• Hỏi tôi về dinh dưỡng, tập luyện, hoặc mục tiêu sức khỏe
• Sử dụng các tính năng khác trong ứng dụng

Cảm ơn bạn đã kiên nhẫn! 💪`

const emptyReply = "Xin lỗi, tôi không thể tạo phản hồi."

// Message is one prior conversation turn as the client stores it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProfileSummary is the client-supplied profile snippet appended to
// the system prompt.
type ProfileSummary struct {
	Age    int     `json:"age"`
	Gender string  `json:"gender"`
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
	Goal   string  `json:"goal"`
}

type ChatRequest struct {
	Message string
	History []Message
	Profile *ProfileSummary
}

// CallRecorder persists per-call telemetry.
type CallRecorder interface {
	Record(ctx context.Context, entry models.AICallLog)
}

type Service struct {
	textGen llm.TextGenerator
	calls   CallRecorder
	log     *logger.Logger
	sleep   func(time.Duration)
	now     func() time.Time
}

func NewService(textGen llm.TextGenerator, calls CallRecorder, log *logger.Logger) *Service {
	return &Service{
		textGen: textGen,
		calls:   calls,
		log:     log,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// Chat sends the message with recent history and returns the reply.
// A quota-exhausted upstream short-circuits to a canned reply, 503s
// retry with a linearly growing pause, and exhausted retries degrade
// to a canned apology. The error return is reserved for context
// cancellation.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (string, error) {
	contents := buildContents(req)
	genReq := llm.GenerateRequest{
		Contents: contents,
		Config:   llm.GenerationConfig{Temperature: 0.7, TopP: 0.9, MaxOutputTokens: 1500},
	}

	loopStart := s.now()
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		start := s.now()
		resp, err := s.textGen.GenerateContent(ctx, genReq)
		if err == nil {
			s.recordCall(ctx, resp.Usage, start, false)
			if strings.TrimSpace(resp.Content) == "" {
				return emptyReply, nil
			}
			return resp.Content, nil
		}
		lastErr = err

		if statusErr, ok := err.(*llm.StatusError); ok && statusErr.StatusCode == http.StatusTooManyRequests {
			s.log.Warn("Chat quota exhausted")
			s.recordCall(ctx, llm.TokenUsage{}, start, true)
			return quotaReply, nil
		}
		s.log.Warn("Chat attempt failed", "attempt", attempt+1, "error", err)
		if attempt < maxAttempts-1 {
			s.sleep(time.Duration(attempt+1) * time.Second)
		}
	}

	s.log.Error("Chat failed after retries", "error", lastErr)
	s.recordCall(ctx, llm.TokenUsage{}, loopStart, true)
	return unavailableReply, nil
}

// buildContents maps stored history onto the wire roles and appends
// the system prompt ahead of the new message.
func buildContents(req ChatRequest) []llm.Content {
	history := req.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	contents := make([]llm.Content, 0, len(history)+1)
	for _, msg := range history {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, llm.Content{
			Role:  role,
			Parts: []llm.Part{{Text: msg.Content}},
		})
	}

	prompt := systemPrompt
	if req.Profile != nil {
		prompt += profileAddendum(req.Profile)
	}
	contents = append(contents, llm.Content{
		Role:  "user",
		Parts: []llm.Part{{Text: prompt + "\n\n" + req.Message}},
	})
	return contents
}

func profileAddendum(p *ProfileSummary) string {
	gender := "chưa rõ"
	switch p.Gender {
	case "Male":
		gender = "Nam"
	case "Female":
		gender = "Nữ"
	}
	goal := "sức khỏe tổng quát"
	switch p.Goal {
	case "lose":
		goal = "giảm cân"
	case "gain":
		goal = "tăng cân"
	case "maintain":
		goal = "duy trì"
	}
	age := "chưa rõ"
	if p.Age > 0 {
		age = fmt.Sprintf("%d", p.Age)
	}
	weight := "chưa rõ"
	if p.Weight > 0 {
		weight = fmt.Sprintf("%g", p.Weight)
	}
	height := "chưa rõ"
	if p.Height > 0 {
		height = fmt.Sprintf("%g", p.Height)
	}

	return fmt.Sprintf(`

Thông tin người dùng:
- Tuổi: %s
- Giới tính: %s
- Cân nặng: %skg
- Chiều cao: %scm
- Mục tiêu: %s`, age, gender, weight, height, goal)
}

func (s *Service) recordCall(ctx context.Context, usage llm.TokenUsage, start time.Time, fallback bool) {
	if s.calls == nil {
		return
	}
	s.calls.Record(ctx, models.AICallLog{
		Endpoint:         "chat",
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        s.now().Sub(start).Milliseconds(),
		Fallback:         fallback,
	})
}

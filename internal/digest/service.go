package digest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bublenz/feedpulse/internal/config"
	"github.com/bublenz/feedpulse/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service sends a topic summary after a tagging run via the configured
// channels: a Teams-style webhook, email, or both.
type Service struct {
	config *config.Config
	client *resty.Client
}

// WebhookMessage is the MessageCard payload posted to the digest webhook.
type WebhookMessage struct {
	Type     string           `json:"@type"`
	Context  string           `json:"@context"`
	Title    string           `json:"title"`
	Text     string           `json:"text"`
	Sections []WebhookSection `json:"sections,omitempty"`
}

type WebhookSection struct {
	ActivityTitle string        `json:"activityTitle,omitempty"`
	Facts         []WebhookFact `json:"facts,omitempty"`
	Markdown      bool          `json:"markdown,omitempty"`
}

type WebhookFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new digest service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// Enabled reports whether any digest channel is configured.
func (s *Service) Enabled() bool {
	return s.config.DigestWebhookURL != "" || s.config.DigestEmail != ""
}

// SendSummary delivers the tagging run summary to all configured channels.
func (s *Service) SendSummary(run *models.TagRun) error {
	var errors []string

	if s.config.DigestWebhookURL != "" {
		if err := s.sendToWebhook(run); err != nil {
			logrus.Errorf("Failed to send webhook digest: %v", err)
			errors = append(errors, fmt.Sprintf("webhook: %v", err))
		} else {
			logrus.Info("Successfully sent topic digest to webhook")
		}
	}

	if s.config.DigestEmail != "" {
		if err := s.sendEmail(run); err != nil {
			logrus.Errorf("Failed to send email digest: %v", err)
			errors = append(errors, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Info("Successfully sent topic digest via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("digest errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToWebhook(run *models.TagRun) error {
	message := s.buildWebhookMessage(run)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.DigestWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send webhook message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("digest webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildWebhookMessage(run *models.TagRun) *WebhookMessage {
	message := &WebhookMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   "Feed Pulse Topic Digest",
		Text:    fmt.Sprintf("Tagged %d posts in the current window", run.TotalPosts),
	}

	facts := []WebhookFact{
		{Name: "Total Posts", Value: fmt.Sprintf("%d", run.TotalPosts)},
		{Name: "Generated", Value: run.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
	}

	for _, topic := range sortedTopics(run.Topics) {
		stat := run.Topics[topic]
		facts = append(facts, WebhookFact{
			Name:  topic,
			Value: fmt.Sprintf("%d (%.1f%%)", stat.Count, stat.Percent),
		})
	}

	message.Sections = append(message.Sections, WebhookSection{
		ActivityTitle: "Topics",
		Facts:         facts,
		Markdown:      true,
	})

	return message
}

func (s *Service) sendEmail(run *models.TagRun) error {
	subject := fmt.Sprintf("Feed Pulse Topic Digest (%d posts)", run.TotalPosts)

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.DigestEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildEmailText(run))

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *Service) buildEmailText(run *models.TagRun) string {
	var text strings.Builder

	text.WriteString("Feed Pulse Topic Digest\n")
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", run.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))
	text.WriteString(fmt.Sprintf("Total posts in window: %d\n\n", run.TotalPosts))

	text.WriteString("TOPICS\n")
	text.WriteString("======\n")
	for _, topic := range sortedTopics(run.Topics) {
		stat := run.Topics[topic]
		text.WriteString(fmt.Sprintf("%-15s %4d (%.1f%%)\n", topic, stat.Count, stat.Percent))
	}

	return text.String()
}

// sortedTopics orders topics by descending count, name as tie-break, so
// digests are stable across runs.
func sortedTopics(topics map[string]models.TopicStat) []string {
	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		if topics[names[i]].Count != topics[names[j]].Count {
			return topics[names[i]].Count > topics[names[j]].Count
		}
		return names[i] < names[j]
	})

	return names
}

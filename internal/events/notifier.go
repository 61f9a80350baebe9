// Package events consumes the article event stream. The only consumer today
// is the newsletter notifier, which mails active subscribers when an article
// is first published, whether at creation or when a draft is promoted.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"herald/internal/mail"
	"herald/internal/models"
	"herald/internal/workflow"
	"herald/pkg/bus"
)

const notifierDurable = "herald-newsletter"

// Notifier fans published-article events out to newsletter subscribers.
type Notifier struct {
	orm         *gorm.DB
	sender      *mail.Sender
	frontendURL string
	sub         io.Closer
}

func NewNotifier(orm *gorm.DB, sender *mail.Sender, frontendURL string) *Notifier {
	return &Notifier{orm: orm, sender: sender, frontendURL: frontendURL}
}

// Start subscribes to the published-article subject, which the workflow emits
// exactly once per article on its first transition to published. Draft events
// never reach this subject; the status check in handle is the backstop.
func (n *Notifier) Start(ctx context.Context, b *bus.Bus) error {
	sub, err := b.Subscribe(ctx, workflow.TopicArticlePublished, notifierDurable, n.handle)
	if err != nil {
		return err
	}
	n.sub = sub
	return nil
}

// Close detaches the subscription.
func (n *Notifier) Close() error {
	if n.sub == nil {
		return nil
	}
	return n.sub.Close()
}

func (n *Notifier) handle(ctx context.Context, data []byte) error {
	var article models.Article
	if err := json.Unmarshal(data, &article); err != nil {
		log.Warn().Err(err).Msg("newsletter: bad article event, dropping")
		return nil
	}
	if !article.Published() {
		return nil
	}

	var subscribers []models.Subscriber
	err := n.orm.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&subscribers).Error
	if err != nil {
		return err
	}
	if len(subscribers) == 0 || !n.sender.Enabled() {
		return nil
	}

	url := fmt.Sprintf("%s/articles/%s", n.frontendURL, article.Slug)
	for _, sub := range subscribers {
		msg := mail.ArticlePublished([]string{sub.Email}, article.Title, url)
		if err := n.sender.Send(msg); err != nil {
			log.Warn().Err(err).Str("email", sub.Email).Msg("newsletter: delivery failed")
		}
	}
	log.Info().Str("slug", article.Slug).Int("recipients", len(subscribers)).Msg("newsletter sent")
	return nil
}

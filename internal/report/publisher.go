package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/logger"
)

// Publisher delivers a report to every configured channel
type Publisher struct {
	channels []contracts.Channel
	logger   *logger.Logger
}

// NewPublisher creates a publisher over channels, attempted in order
func NewPublisher(log *logger.Logger, channels ...contracts.Channel) *Publisher {
	return &Publisher{
		channels: channels,
		logger:   log.WithField("module", "publisher"),
	}
}

// Channels returns the channel names in publish order
func (p *Publisher) Channels() []string {
	names := make([]string, 0, len(p.channels))
	for _, ch := range p.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Publish renders once and attempts every channel; failures are joined
func (p *Publisher) Publish(ctx context.Context, r *contracts.Report) error {
	markdown := Render(r)

	var errs []error
	for _, ch := range p.channels {
		if err := ch.Publish(ctx, r, markdown); err != nil {
			p.logger.WithError(err).WithField("channel", ch.Name()).Error("Publish failed")
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		p.logger.WithField("channel", ch.Name()).Info("Report published")
	}

	return errors.Join(errs...)
}

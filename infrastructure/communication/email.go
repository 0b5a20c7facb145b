package communication

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"shopcrew.com/shopcrew/core"
)

// ReviewMailer emails reviewers when a remote clock-in joins the review
// queue. Best-effort like the Slack notifier.
type ReviewMailer struct {
	Sender     string
	Recipients []string

	client *ses.Client
}

func NewReviewMailer(ctx context.Context, sender string, recipients []string) (*ReviewMailer, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &ReviewMailer{
		Sender:     sender,
		Recipients: recipients,
		client:     ses.NewFromConfig(cfg),
	}, nil
}

// ReviewRequested implements attendance.ReviewNotifier.
func (m *ReviewMailer) ReviewRequested(req *core.RemoteApprovalRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subject := fmt.Sprintf("Remote clock-in pending review (employee %d)", req.EmployeeId)
	body := fmt.Sprintf(
		"Employee %d clocked in %.0f m from shop %d at %s.\n\nOpen the review queue to approve or reject.",
		req.EmployeeId, req.DistanceFromShop, req.ShopId, req.RequestedAt.Format("2006-01-02 15:04"))

	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.Sender),
		Destination: &types.Destination{
			ToAddresses: m.Recipients,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send review email: %w", err)
	}
	return nil
}

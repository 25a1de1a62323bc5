package join

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	commonaws "murmax-onboarding/internal/common/aws"
	"murmax-onboarding/internal/common/errors"
)

const (
	DefaultFromEmail = "MurMax Express <no-reply@murmaxexpress.com>"
	DefaultTeamEmail = "onboarding@murmaxexpress.com"
	NotifySubject    = "New Join Application"
)

// SESNotifier mails each accepted form, pretty-printed, to the onboarding
// team.
type SESNotifier struct {
	client commonaws.SESAPI
	from   string
	to     []string
}

func NewSESNotifier(client commonaws.SESAPI, from string, to []string) *SESNotifier {
	if from == "" {
		from = DefaultFromEmail
	}
	if len(to) == 0 {
		to = []string{DefaultTeamEmail}
	}
	return &SESNotifier{client: client, from: from, to: to}
}

func (n *SESNotifier) Notify(ctx context.Context, sub Submission) error {
	body, err := json.MarshalIndent(sub.Form, "", "  ")
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}

	_, err = n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(n.from),
		Destination: &types.Destination{ToAddresses: n.to},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(NotifySubject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(string(body)), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return errors.NewNotificationError("ses", err)
	}
	return nil
}

package emailer

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ses"
)

const charset = "UTF-8"

// SESMailer sends templated HTML mail through SES.
type SESMailer struct {
	client *ses.SES
	sender string
}

func NewSESMailer(client *ses.SES) *SESMailer {
	return &SESMailer{client: client, sender: sensorError.Sender}
}

func (m *SESMailer) Send(to, subject, htmlBody string) error {
	_, err := m.client.SendEmail(&ses.SendEmailInput{
		Source: aws.String(m.sender),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(to)},
		},
		Message: &ses.Message{
			Subject: &ses.Content{
				Charset: aws.String(charset),
				Data:    aws.String(subject),
			},
			Body: &ses.Body{
				Html: &ses.Content{
					Charset: aws.String(charset),
					Data:    aws.String(htmlBody),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

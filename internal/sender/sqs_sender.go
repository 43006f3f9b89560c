package sender

import (
	"context"

	"payment-failure-service/internal/domain"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	log "github.com/sirupsen/logrus"
)

type SQSSender struct {
	client   sqsiface.SQSAPI
	queueURL string
}

func NewSQSSender(sess *session.Session, queueURL string) *SQSSender {
	return NewSQSSenderWithClient(sqs.New(sess), queueURL)
}

func NewSQSSenderWithClient(client sqsiface.SQSAPI, queueURL string) *SQSSender {
	return &SQSSender{client: client, queueURL: queueURL}
}

func (s *SQSSender) Send(ctx context.Context, msg domain.NotificationMessage) error {
	body, err := encode(msg)
	if err != nil {
		return publishError(msg, err)
	}

	out, err := s.client.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]*sqs.MessageAttributeValue{
			dataExtensionAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(msg.DataExtensionName)),
			},
		},
	})
	if err != nil {
		return publishError(msg, err)
	}
	log.WithField("message_id", aws.StringValue(out.MessageId)).Debug("SQS message accepted")
	return nil
}

func (s *SQSSender) Close() error { return nil }

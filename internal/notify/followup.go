package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/wolfman30/assessment-api/pkg/logging"
)

// Follow-up sequences a lead can be enrolled in.
const (
	SequencePriority  = "priority"
	SequenceQualified = "qualified"
	SequenceNurture   = "nurture"
)

// Enrollment is the message handed to the follow-up automation.
type Enrollment struct {
	RecordID   string    `json:"recordId"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Company    string    `json:"company"`
	Score      int       `json:"score"`
	Tier       string    `json:"tier"`
	Sequence   string    `json:"sequence"`
	NextAction string    `json:"nextAction,omitempty"`
	FollowUpAt string    `json:"followUpAt,omitempty"`
	Source     string    `json:"source,omitempty"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// FollowUpQueue enrolls every submitted lead into a follow-up sequence.
type FollowUpQueue interface {
	Enroll(ctx context.Context, e Enrollment) error
}

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSFollowUpQueue publishes enrollments to an SQS queue consumed by the
// sequence runner.
type SQSFollowUpQueue struct {
	client   sqsAPI
	queueURL string
}

// NewSQSFollowUpQueue wraps the provided SQS client.
func NewSQSFollowUpQueue(client sqsAPI, queueURL string) *SQSFollowUpQueue {
	if client == nil {
		panic("notify: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("notify: SQS queueURL cannot be empty")
	}
	return &SQSFollowUpQueue{client: client, queueURL: queueURL}
}

func (q *SQSFollowUpQueue) Enroll(ctx context.Context, e Enrollment) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("notify: encode enrollment: %w", err)
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"sequence": {DataType: aws.String("String"), StringValue: aws.String(e.Sequence)},
		},
	})
	if err != nil {
		return fmt.Errorf("notify: failed to send SQS message: %w", err)
	}
	return nil
}

// LogFollowUpQueue records enrollments in the log when no queue is configured.
type LogFollowUpQueue struct {
	logger *logging.Logger
}

func NewLogFollowUpQueue(logger *logging.Logger) *LogFollowUpQueue {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogFollowUpQueue{logger: logger}
}

func (q *LogFollowUpQueue) Enroll(_ context.Context, e Enrollment) error {
	q.logger.Info("follow-up enrollment", "record_id", e.RecordID, "sequence", e.Sequence, "score", e.Score)
	return nil
}

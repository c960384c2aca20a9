// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/tomtom215/mediamirror/internal/config"
)

// sqsMaxBatch is the SQS limit for ReceiveMessage and DeleteMessageBatch.
const sqsMaxBatch = 10

// SQSAPI is the subset of the SQS client used by SQSReceiver.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessageBatch(ctx context.Context, params *sqs.DeleteMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error)
}

// SQSReceiver long-polls an SQS queue.
type SQSReceiver struct {
	client      SQSAPI
	queueURL    string
	waitTime    time.Duration
	maxMessages int
}

// NewSQSReceiver wraps an existing client.
func NewSQSReceiver(client SQSAPI, queueURL string, waitTime time.Duration, maxMessages int) *SQSReceiver {
	if maxMessages <= 0 || maxMessages > sqsMaxBatch {
		maxMessages = sqsMaxBatch
	}
	return &SQSReceiver{
		client:      client,
		queueURL:    queueURL,
		waitTime:    waitTime,
		maxMessages: maxMessages,
	}
}

// NewSQSReceiverFromConfig builds an SQS client from the default AWS credential
// chain plus the queue configuration.
func NewSQSReceiverFromConfig(ctx context.Context, cfg config.QueueConfig, optFns ...func(*awsconfig.LoadOptions) error) (*SQSReceiver, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.SQS.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.SQS.Region))
	}
	opts = append(opts, optFns...)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var sqsOpts []func(*sqs.Options)
	if cfg.SQS.Endpoint != "" {
		sqsOpts = append(sqsOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(cfg.SQS.Endpoint)
		})
	}

	client := sqs.NewFromConfig(awsCfg, sqsOpts...)
	return NewSQSReceiver(client, cfg.SQS.QueueURL, cfg.WaitTime, cfg.MaxMessages), nil
}

// Receive issues one long-poll ReceiveMessage call.
func (r *SQSReceiver) Receive(ctx context.Context) ([]Message, error) {
	out, err := r.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(r.queueURL),
		MaxNumberOfMessages: int32(r.maxMessages),        //nolint:gosec // bounded to 10
		WaitTimeSeconds:     int32(r.waitTime.Seconds()), //nolint:gosec // validated <= 20
	})
	if err != nil {
		return nil, fmt.Errorf("sqs receive: %w", err)
	}

	msgs := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, Message{
			ID:     aws.ToString(m.MessageId),
			Body:   []byte(aws.ToString(m.Body)),
			handle: aws.ToString(m.ReceiptHandle),
		})
	}
	return msgs, nil
}

// Ack deletes the messages from the queue in batches of ten.
func (r *SQSReceiver) Ack(ctx context.Context, msgs []Message) error {
	var errs []error
	for start := 0; start < len(msgs); start += sqsMaxBatch {
		end := min(start+sqsMaxBatch, len(msgs))

		entries := make([]types.DeleteMessageBatchRequestEntry, 0, end-start)
		for i, m := range msgs[start:end] {
			handle, ok := m.handle.(string)
			if !ok || handle == "" {
				errs = append(errs, fmt.Errorf("message %s has no receipt handle", m.ID))
				continue
			}
			entries = append(entries, types.DeleteMessageBatchRequestEntry{
				Id:            aws.String(strconv.Itoa(start + i)),
				ReceiptHandle: aws.String(handle),
			})
		}
		if len(entries) == 0 {
			continue
		}

		out, err := r.client.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
			QueueUrl: aws.String(r.queueURL),
			Entries:  entries,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("sqs delete batch: %w", err))
			continue
		}
		for _, f := range out.Failed {
			errs = append(errs, fmt.Errorf("sqs delete entry %s: %s: %s",
				aws.ToString(f.Id), aws.ToString(f.Code), aws.ToString(f.Message)))
		}
	}
	return errors.Join(errs...)
}

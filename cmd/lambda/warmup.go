package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// WarmupSource identifies warmup events from CloudWatch
	WarmupSource = "warmup"

	// WarmupDelay ensures instances overlap to create true concurrency
	WarmupDelay = 75 * time.Millisecond
)

// WarmupEvent represents the CloudWatch Event payload for warmup. A scheduled
// rule sends it periodically so instances keep the model loaded.
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// WarmupResponse is the response returned by warmup operations
type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
	EngineLoaded    bool   `json:"engineLoaded"`
}

type invoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// IsWarmupEvent checks if the event is a warmup event
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var warmup WarmupEvent
	if err := json.Unmarshal(event, &warmup); err != nil {
		return nil, false
	}
	if warmup.Source != WarmupSource {
		return nil, false
	}
	return &warmup, true
}

// HandleWarmup loads the engine in this instance and optionally
// self-invokes to keep more instances warm.
func HandleWarmup(ctx context.Context, warmup *WarmupEvent, newInvoker func(context.Context) (invoker, error)) (interface{}, error) {
	instancesWarmed := 1 // This instance counts as 1

	_, loadErr := loadCorrector()
	if loadErr != nil {
		logger.Error("warmup failed to load correction engine", zap.Error(loadErr))
	}

	if warmup.Concurrency > 0 {
		client, err := newInvoker(ctx)
		if err == nil {
			err = selfInvoke(ctx, client, os.Getenv("AWS_LAMBDA_FUNCTION_NAME"), warmup.Concurrency)
		}
		if err != nil {
			logger.Warn("warmup self-invoke failed", zap.Error(err))
		} else {
			instancesWarmed += warmup.Concurrency
		}
	}

	// Brief delay to ensure instances overlap
	time.Sleep(WarmupDelay)

	return map[string]interface{}{
		"statusCode": 200,
		"body": WarmupResponse{
			Status:          "warm",
			InstancesWarmed: instancesWarmed,
			EngineLoaded:    loadErr == nil,
		},
	}, nil
}

func newSelfInvoker(ctx context.Context) (invoker, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return lambdasdk.NewFromConfig(cfg), nil
}

// selfInvoke invokes this Lambda function count times asynchronously to
// create additional warm instances.
func selfInvoke(ctx context.Context, client invoker, functionName string, count int) error {
	// Payload for child invocations (concurrency=0 to prevent infinite loop)
	payload, err := json.Marshal(WarmupEvent{
		Source:      WarmupSource,
		Concurrency: 0,
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(functionName),
				InvocationType: types.InvocationTypeEvent, // Async invocation
				Payload:        payload,
			})
			return err
		})
	}
	return g.Wait()
}

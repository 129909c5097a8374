package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// LambdaInvoker is the part of the Lambda client used by LambdaEngine.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaEngine invokes a Lambda function hosting the model. The function
// receives a Text2TextRequest and answers with a list of Text2TextOutput,
// or an object carrying an "error" field.
type LambdaEngine struct {
	client       LambdaInvoker
	functionName string
	timeout      time.Duration
}

// NewLambdaEngine creates an engine using the default AWS configuration.
func NewLambdaEngine(ctx context.Context, functionName string, timeout time.Duration) (*LambdaEngine, error) {
	if functionName == "" {
		return nil, errors.New("function name is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewLambdaEngineWithClient(lambda.NewFromConfig(cfg), functionName, timeout), nil
}

func NewLambdaEngineWithClient(client LambdaInvoker, functionName string, timeout time.Duration) *LambdaEngine {
	return &LambdaEngine{
		client:       client,
		functionName: functionName,
		timeout:      timeout,
	}
}

func (e *LambdaEngine) Generate(ctx context.Context, prompt string, p Params) ([]string, error) {
	ctx, cancel := withTimeout(ctx, e.timeout)
	defer cancel()

	payload, err := json.Marshal(newText2TextRequest(prompt, p, false))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := e.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(e.functionName),
		Payload:      payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", e.functionName, err)
	}

	if result.FunctionError != nil {
		return nil, fmt.Errorf("lambda error: %s: %s", *result.FunctionError, truncate(string(result.Payload), maxErrorBody))
	}

	return decodeText2TextOutputs(result.Payload)
}

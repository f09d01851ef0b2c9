//go:build bedrock

package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-ai/internal/domain"
)

type mockBedrockClient struct {
	converseFunc func(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

func (m *mockBedrockClient) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	if m.converseFunc != nil {
		return m.converseFunc(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("not implemented")
}

func textOutput(parts ...string) *bedrockruntime.ConverseOutput {
	blocks := make([]types.ContentBlock, 0, len(parts))
	for _, p := range parts {
		blocks = append(blocks, &types.ContentBlockMemberText{Value: p})
	}
	return &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{Role: types.ConversationRoleAssistant, Content: blocks},
		},
		Usage: &types.TokenUsage{
			InputTokens:  aws.Int32(30),
			OutputTokens: aws.Int32(10),
			TotalTokens:  aws.Int32(40),
		},
	}
}

func TestBedrockChat(t *testing.T) {
	var got *bedrockruntime.ConverseInput
	client := &mockBedrockClient{
		converseFunc: func(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
			got = params
			return textOutput(`{"canvas_objects":`, `[]}`), nil
		},
	}
	p := newBedrockProviderWithClient("aws", "anthropic.claude-3-sonnet", client, newTestLogger())

	resp, err := p.Chat(context.Background(), canvasRequest(true))
	require.NoError(t, err)
	assert.Equal(t, `{"canvas_objects":[]}`, resp.Message.Content)
	assert.Equal(t, 40, resp.Usage.TotalTokens)
	assert.Equal(t, "aws", p.Name())

	require.NotNil(t, got)
	assert.Equal(t, "anthropic.claude-3-sonnet", aws.ToString(got.ModelId))
	require.Len(t, got.System, 1)
	sys := got.System[0].(*types.SystemContentBlockMemberText).Value
	assert.Contains(t, sys, "You draw on a canvas.")
	assert.Contains(t, sys, jsonOnlyInstruction)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, types.ConversationRoleUser, got.Messages[0].Role)
	assert.Equal(t, int32(1024), aws.ToInt32(got.InferenceConfig.MaxTokens))
	assert.Nil(t, got.InferenceConfig.Temperature)
}

func TestBedrockConverseInputDefaults(t *testing.T) {
	input := toBedrockConverseInput(domain.ChatRequest{
		Model:       "m",
		Temperature: 0.5,
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "hi"},
			{Role: domain.RoleAssistant, Content: "hello"},
		},
	})
	assert.Empty(t, input.System)
	assert.Equal(t, int32(4096), aws.ToInt32(input.InferenceConfig.MaxTokens))
	assert.InDelta(t, 0.5, aws.ToFloat32(input.InferenceConfig.Temperature), 1e-6)
	require.Len(t, input.Messages, 2)
	assert.Equal(t, types.ConversationRoleAssistant, input.Messages[1].Role)
}

func TestBedrockChatError(t *testing.T) {
	client := &mockBedrockClient{
		converseFunc: func(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
			return nil, &mockAPIError{code: "ThrottlingException", message: "slow down"}
		},
	}
	p := newBedrockProviderWithClient("aws", "m", client, newTestLogger())
	_, err := p.Chat(context.Background(), canvasRequest(true))
	assert.ErrorIs(t, err, domain.ErrRateLimit)
}

type mockAPIError struct {
	code    string
	message string
}

func (e *mockAPIError) Error() string                 { return e.message }
func (e *mockAPIError) ErrorCode() string             { return e.code }
func (e *mockAPIError) ErrorMessage() string          { return e.message }
func (e *mockAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultServer }

func TestBedrockErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"throttling", &mockAPIError{code: "ThrottlingException", message: "rate limited"}, domain.ErrRateLimit},
		{"too many requests", &mockAPIError{code: "TooManyRequestsException", message: "too many"}, domain.ErrRateLimit},
		{"access denied", &mockAPIError{code: "AccessDeniedException", message: "no access"}, domain.ErrAuthInvalid},
		{"unrecognized client", &mockAPIError{code: "UnrecognizedClientException", message: "bad token"}, domain.ErrAuthInvalid},
		{"validation too long", &mockAPIError{code: "ValidationException", message: "input is too long"}, domain.ErrContextOverflow},
		{"internal server error", &mockAPIError{code: "InternalServerException", message: "server error"}, domain.ErrProviderUnavailable},
		{"service unavailable", &mockAPIError{code: "ServiceUnavailableException", message: "down"}, domain.ErrProviderUnavailable},
		{"model not ready", &mockAPIError{code: "ModelNotReadyException", message: "warming"}, domain.ErrProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapBedrockError(tt.err), tt.wantErr)
		})
	}
}

func TestBedrockErrorMappingPassthrough(t *testing.T) {
	assert.NoError(t, mapBedrockError(nil))

	base := errors.New("network blip")
	err := mapBedrockError(base)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "bedrock:")

	err = mapBedrockError(&mockAPIError{code: "ValidationException", message: "bad field"})
	assert.NotErrorIs(t, err, domain.ErrContextOverflow)
}

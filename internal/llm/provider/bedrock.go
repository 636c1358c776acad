package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockName is the Bedrock cloud adapter's backend name.
const BedrockName = "bedrock"

const bedrockDefaultModel = "anthropic.claude-3-haiku-20240307-v1:0"

// bedrockClient is the slice of the Bedrock runtime client the adapter needs.
type bedrockClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockConfig configures the Amazon Bedrock cloud adapter.
type BedrockConfig struct {
	// Region is the AWS region hosting the model.
	Region string
	// ModelID is the Bedrock model identifier.
	ModelID string
}

// BedrockAdapter wraps the Bedrock Converse API as the cloud backend.
// It is an alternative to the Groq adapter: exactly one cloud adapter is
// active per process, chosen by configuration. No retries beyond what the
// SDK does internally for credential resolution.
type BedrockAdapter struct {
	cfg       BedrockConfig
	client    bedrockClient
	available bool
}

// NewBedrockAdapter creates the Bedrock adapter. Credential resolution
// happens once here; an adapter without resolvable credentials reports
// itself unavailable rather than failing per call.
func NewBedrockAdapter(ctx context.Context, cfg BedrockConfig) (*BedrockAdapter, error) {
	if cfg.ModelID == "" {
		cfg.ModelID = bedrockDefaultModel
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		// No resolvable AWS environment. Unavailable, not fatal: auto
		// mode still has the other backend to fall through to.
		return &BedrockAdapter{cfg: cfg}, nil
	}

	credsCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, credsErr := awsCfg.Credentials.Retrieve(credsCtx)

	return &BedrockAdapter{
		cfg:       cfg,
		client:    bedrockruntime.NewFromConfig(awsCfg),
		available: credsErr == nil,
	}, nil
}

// newBedrockAdapterWithClient injects a Converse client; used by tests.
func newBedrockAdapterWithClient(cfg BedrockConfig, client bedrockClient) *BedrockAdapter {
	if cfg.ModelID == "" {
		cfg.ModelID = bedrockDefaultModel
	}
	return &BedrockAdapter{cfg: cfg, client: client, available: client != nil}
}

// Name returns "bedrock".
func (a *BedrockAdapter) Name() string {
	return BedrockName
}

// Available reports whether AWS credentials resolved at construction time.
func (a *BedrockAdapter) Available() bool {
	return a.available
}

// Generate sends the transcript through the Bedrock Converse API.
func (a *BedrockAdapter) Generate(ctx context.Context, req Request) (string, error) {
	if !a.Available() {
		return "", NewBackendError(BedrockName, KindUnavailable, "AWS credentials not configured", nil)
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(a.cfg.ModelID),
		Messages: bedrockMessages(req),
	}

	if req.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		}
	}

	infCfg := &types.InferenceConfiguration{}
	if req.MaxTokens > 0 {
		infCfg.MaxTokens = aws.Int32(int32(req.MaxTokens))
	}
	if req.Temperature > 0 {
		infCfg.Temperature = aws.Float32(req.Temperature)
	}
	input.InferenceConfig = infCfg

	out, err := a.client.Converse(ctx, input)
	if err != nil {
		return "", mapBedrockError(err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || len(msg.Value.Content) == 0 {
		return "", NewBackendError(BedrockName, KindMalformed, "no content in response", nil)
	}

	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", NewBackendError(BedrockName, KindMalformed, "empty completion", nil)
	}

	return content, nil
}

// bedrockMessages converts history plus the new prompt to Converse messages.
// The system message travels separately in Converse.
func bedrockMessages(req Request) []types.Message {
	msgs := make([]types.Message, 0, len(req.History)+1)
	for _, m := range req.History {
		role := types.ConversationRoleUser
		if m.Role == RoleAssistant {
			role = types.ConversationRoleAssistant
		}
		msgs = append(msgs, types.Message{
			Role:    role,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
		})
	}
	msgs = append(msgs, types.Message{
		Role:    types.ConversationRoleUser,
		Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: req.Prompt}},
	})
	return msgs
}

// mapBedrockError converts SDK errors to the backend error taxonomy.
func mapBedrockError(err error) error {
	var throttled *types.ThrottlingException
	if errors.As(err, &throttled) {
		return NewBackendError(BedrockName, KindRateLimited, aws.ToString(throttled.Message), err)
	}

	var timedOut *types.ModelTimeoutException
	if errors.As(err, &timedOut) {
		return NewBackendError(BedrockName, KindTimeout, aws.ToString(timedOut.Message), err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewBackendError(BedrockName, KindTimeout, "request deadline exceeded", err)
	}

	return NewBackendError(BedrockName, KindUnavailable, err.Error(), err)
}

package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuntime struct {
	lastInput *bedrockruntime.InvokeModelInput
	response  titanResponse
	err       error
}

func (f *fakeRuntime) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.lastInput = params
	if f.err != nil {
		return nil, f.err
	}
	body, err := json.Marshal(f.response)
	if err != nil {
		return nil, err
	}
	return &bedrockruntime.InvokeModelOutput{Body: body}, nil
}

func TestGenerateEmbedding(t *testing.T) {
	fake := &fakeRuntime{response: titanResponse{
		Embedding:           []float32{0.1, 0.2, 0.3},
		InputTextTokenCount: 4,
	}}
	c := NewClientWithAPI(fake, "")

	vector, err := c.GenerateEmbedding(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)

	require.NotNil(t, fake.lastInput)
	assert.Equal(t, defaultModelID, *fake.lastInput.ModelId)

	var req titanRequest
	require.NoError(t, json.Unmarshal(fake.lastInput.Body, &req))
	assert.Equal(t, "hello world", req.InputText)
	assert.True(t, req.Normalize)
	assert.Equal(t, 1024, req.Dimensions)
}

func TestGenerateEmbedding_EmptyText(t *testing.T) {
	c := NewClientWithAPI(&fakeRuntime{}, "")
	_, err := c.GenerateEmbedding(context.Background(), "")
	assert.Error(t, err)
}

func TestGenerateEmbedding_InvokeError(t *testing.T) {
	c := NewClientWithAPI(&fakeRuntime{err: fmt.Errorf("throttled")}, "")
	_, err := c.GenerateEmbedding(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestGenerateEmbedding_EmptyResponse(t *testing.T) {
	c := NewClientWithAPI(&fakeRuntime{response: titanResponse{InputTextTokenCount: 2}}, "")
	_, err := c.GenerateEmbedding(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no embedding data")
}

func TestGetSharedClient_ReusesByRegionAndModel(t *testing.T) {
	cfg := aws.Config{Region: "us-east-1"}

	a := GetSharedClient(cfg, "amazon.titan-embed-text-v2:0")
	b := GetSharedClient(cfg, "amazon.titan-embed-text-v2:0")
	assert.Same(t, a, b)

	other := GetSharedClient(cfg, "amazon.titan-embed-text-v1")
	assert.NotSame(t, a, other)

	west := GetSharedClient(aws.Config{Region: "us-west-2"}, "amazon.titan-embed-text-v2:0")
	assert.NotSame(t, a, west)
}

func TestDimensions(t *testing.T) {
	assert.Equal(t, 1024, NewClientWithAPI(&fakeRuntime{}, "").Dimensions())
	assert.Equal(t, 1536, NewClientWithAPI(&fakeRuntime{}, "amazon.titan-embed-text-v1").Dimensions())
	assert.Equal(t, 1024, NewClientWithAPI(&fakeRuntime{}, "unknown-model").Dimensions())
}

package config

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type mockSSMClient struct {
	values  map[string]string
	err     error
	batches [][]string
}

func (m *mockSSMClient) GetParameters(_ context.Context, in *ssm.GetParametersInput, _ ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.batches = append(m.batches, in.Names)

	out := &ssm.GetParametersOutput{}
	for _, name := range in.Names {
		if v, ok := m.values[name]; ok {
			out.Parameters = append(out.Parameters, ssmtypes.Parameter{Name: aws.String(name), Value: aws.String(v)})
		} else {
			out.InvalidParameters = append(out.InvalidParameters, name)
		}
	}
	return out, nil
}

func TestSSMProviderSatisfiesSecretProvider(t *testing.T) {
	var _ SecretProvider = (*SSMProvider)(nil)
	var _ SecretProvider = (*EnvVarProvider)(nil)
}

func TestSSMProvider_Batches(t *testing.T) {
	values := make(map[string]string)
	var keys []string
	for i := 0; i < 23; i++ {
		k := fmt.Sprintf("/dev/croppredict/p%d", i)
		keys = append(keys, k)
		values[k] = fmt.Sprintf("v%d", i)
	}
	client := &mockSSMClient{values: values}
	p := newSSMProviderWithClient("us-east-1", client)

	got, err := p.GetParametersBatch(context.Background(), keys)
	if err != nil {
		t.Fatalf("GetParametersBatch: %v", err)
	}
	if len(got) != 23 {
		t.Errorf("resolved %d parameters, want 23", len(got))
	}
	if len(client.batches) != 3 {
		t.Errorf("made %d calls, want 3", len(client.batches))
	}
	if len(client.batches[2]) != 3 {
		t.Errorf("last batch size = %d, want 3", len(client.batches[2]))
	}
}

func TestSSMProvider_InvalidParameter(t *testing.T) {
	p := newSSMProviderWithClient("us-east-1", &mockSSMClient{values: map[string]string{}})
	if _, err := p.GetParametersBatch(context.Background(), []string{"/missing"}); err == nil {
		t.Fatal("expected error for missing parameter")
	}
}

func TestSSMProvider_ClientError(t *testing.T) {
	boom := errors.New("access denied")
	p := newSSMProviderWithClient("us-east-1", &mockSSMClient{err: boom})
	_, err := p.GetParametersBatch(context.Background(), []string{"/k"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}

func TestSSMProvider_CancelledContext(t *testing.T) {
	p := newSSMProviderWithClient("us-east-1", &mockSSMClient{values: map[string]string{"/k": "v"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.GetParametersBatch(ctx, []string{"/k"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSSMProvider_EmptyKeys(t *testing.T) {
	p := NewSSMProvider("us-east-1", "")
	got, err := p.GetParametersBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestParamEnvName(t *testing.T) {
	tests := map[string]string{
		"/dev/croppredict/inference_key": "DEV_CROPPREDICT_INFERENCE_KEY",
		"prod/crop-predict/api.key":      "PROD_CROP_PREDICT_API_KEY",
		"/Staging/Key2/":                 "STAGING_KEY2",
	}
	for path, want := range tests {
		if got := ParamEnvName(path); got != want {
			t.Errorf("ParamEnvName(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestEnvVarProvider(t *testing.T) {
	t.Setenv("DEV_CROPPREDICT_INFERENCE_KEY", "s3cret")
	paths := []string{"/dev/croppredict/inference_key", "/dev/croppredict/unset_key"}
	got, err := NewEnvVarProvider().GetParametersBatch(context.Background(), paths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["/dev/croppredict/inference_key"] != "s3cret" {
		t.Errorf("got %v", got)
	}
	if _, ok := got["/dev/croppredict/unset_key"]; ok {
		t.Error("unset variable should be omitted")
	}
}

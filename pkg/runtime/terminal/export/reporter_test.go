package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/db-custodian/pkg/models/api"
	"github.com/de-tools/db-custodian/pkg/models/domain"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func TestExport_UploadsJSONReport(t *testing.T) {
	client := &mockS3{}
	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "reports" &&
			aws.ToString(in.Key) == "custodian/run-42.json" &&
			aws.ToString(in.ContentType) == "application/json"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	reporter := NewS3Reporter(client, "reports", "custodian")
	report := domain.RunReport{
		ID:      "run-42",
		Profile: "prod",
		Engine:  domain.EngineSQLServer,
		Outcomes: []domain.Outcome{
			{Database: "sales", CurrentSizeMB: 850, TargetSizeMB: 800, Status: domain.OutcomeRemediated},
		},
	}

	err := reporter.Export(context.Background(), report)
	require.NoError(t, err)
	client.AssertExpectations(t)

	body := client.Calls[0].Arguments.Get(1).(*s3.PutObjectInput).Body
	data, err := io.ReadAll(body)
	require.NoError(t, err)

	var decoded api.RunReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-42", decoded.Id)
	assert.Equal(t, 1, decoded.Remediated)
	require.Len(t, decoded.Outcomes, 1)
	assert.Equal(t, "remediated", decoded.Outcomes[0].Status)
}

func TestExport_WrapsUploadFailure(t *testing.T) {
	client := &mockS3{}
	client.On("PutObject", mock.Anything, mock.Anything).
		Return(nil, errors.New("access denied"))

	reporter := NewS3Reporter(client, "reports", "")
	err := reporter.Export(context.Background(), domain.RunReport{ID: "run-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://reports/run-1.json")
}

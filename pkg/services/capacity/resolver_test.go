package capacity

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/services/engine"
)

type mockDatabase struct {
	mock.Mock
}

func (m *mockDatabase) MaxSizeBytes(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockDatabase) ClearTable(ctx context.Context, table string) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

func (m *mockDatabase) Close() error {
	args := m.Called()
	return args.Error(0)
}

type mockDBInstancesAPI struct {
	mock.Mock
}

func (m *mockDBInstancesAPI) DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rds.DescribeDBInstancesOutput), args.Error(1)
}

func TestNative_DelegatesToEngine(t *testing.T) {
	db := &mockDatabase{}
	db.On("MaxSizeBytes", mock.Anything).Return(int64(1048576000), nil)

	size, err := Native().MaxSizeBytes(context.Background(), db, "orders")

	require.NoError(t, err)
	assert.Equal(t, int64(1048576000), size)
}

func TestStatic_ConvertsMBToBytes(t *testing.T) {
	size, err := Static(1000).MaxSizeBytes(context.Background(), nil, "orders")

	require.NoError(t, err)
	assert.Equal(t, int64(1000*1048576), size)
}

func TestChain_FallsBackWhenNoNativeLimit(t *testing.T) {
	db := &mockDatabase{}
	db.On("MaxSizeBytes", mock.Anything).Return(int64(0), engine.ErrNoNativeLimit)

	size, err := NewChain(Native(), Static(500)).MaxSizeBytes(context.Background(), db, "orders")

	require.NoError(t, err)
	assert.Equal(t, int64(500*1048576), size)
}

func TestChain_NativeLimitWins(t *testing.T) {
	db := &mockDatabase{}
	db.On("MaxSizeBytes", mock.Anything).Return(int64(42*1048576), nil)

	size, err := NewChain(Native(), Static(500)).MaxSizeBytes(context.Background(), db, "orders")

	require.NoError(t, err)
	assert.Equal(t, int64(42*1048576), size)
}

func TestChain_PropagatesQueryErrors(t *testing.T) {
	queryErr := errors.New("connection reset")
	db := &mockDatabase{}
	db.On("MaxSizeBytes", mock.Anything).Return(int64(0), queryErr)

	_, err := NewChain(Native(), Static(500)).MaxSizeBytes(context.Background(), db, "orders")

	require.Error(t, err)
	assert.ErrorIs(t, err, queryErr)
}

func TestChain_ExhaustedReturnsUnresolved(t *testing.T) {
	db := &mockDatabase{}
	db.On("MaxSizeBytes", mock.Anything).Return(int64(0), engine.ErrNoNativeLimit)

	_, err := NewChain(Native()).MaxSizeBytes(context.Background(), db, "orders")

	assert.ErrorIs(t, err, ErrUnresolved)
}

func TestRDS_ReadsAllocatedStorage(t *testing.T) {
	client := &mockDBInstancesAPI{}
	client.On("DescribeDBInstances", mock.Anything, mock.MatchedBy(func(in *rds.DescribeDBInstancesInput) bool {
		return aws.ToString(in.DBInstanceIdentifier) == "prod-db"
	})).Return(&rds.DescribeDBInstancesOutput{
		DBInstances: []types.DBInstance{
			{AllocatedStorage: aws.Int32(100)},
		},
	}, nil)

	size, err := RDS(client, "prod-db").MaxSizeBytes(context.Background(), nil, "orders")

	require.NoError(t, err)
	assert.Equal(t, int64(100)*bytesPerGiB, size)
	client.AssertExpectations(t)
}

func TestRDS_UnknownInstance(t *testing.T) {
	client := &mockDBInstancesAPI{}
	client.On("DescribeDBInstances", mock.Anything, mock.Anything).
		Return(&rds.DescribeDBInstancesOutput{}, nil)

	_, err := RDS(client, "gone").MaxSizeBytes(context.Background(), nil, "orders")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestForProfile_StaticChainWithoutRDS(t *testing.T) {
	db := &mockDatabase{}
	db.On("MaxSizeBytes", mock.Anything).Return(int64(0), engine.ErrNoNativeLimit)

	resolver, err := ForProfile(context.Background(), domain.Profile{
		Name:      "pg",
		Engine:    domain.EnginePostgres,
		MaxSizeMB: 250,
	})
	require.NoError(t, err)

	size, err := resolver.MaxSizeBytes(context.Background(), db, "app")
	require.NoError(t, err)
	assert.Equal(t, int64(250*1048576), size)
}

package capacity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/de-tools/db-custodian/pkg/services/engine"
)

const bytesPerGiB = 1073741824

// DBInstancesAPI is the slice of the RDS client used for capacity lookups.
type DBInstancesAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

type rdsResolver struct {
	client     DBInstancesAPI
	instanceID string
}

// RDS resolves the limit from the instance's allocated storage. The allocation
// is instance wide, so it acts as the shared cap for every hosted database.
func RDS(client DBInstancesAPI, instanceID string) Resolver {
	return &rdsResolver{client: client, instanceID: instanceID}
}

func (r *rdsResolver) MaxSizeBytes(ctx context.Context, db engine.Database, name string) (int64, error) {
	resp, err := r.client.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(r.instanceID),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to describe RDS instance %s: %w", r.instanceID, err)
	}
	if len(resp.DBInstances) == 0 {
		return 0, fmt.Errorf("RDS instance %s not found", r.instanceID)
	}

	instance := resp.DBInstances[0]
	if instance.AllocatedStorage == nil || *instance.AllocatedStorage <= 0 {
		return 0, fmt.Errorf("RDS instance %s reports no allocated storage", r.instanceID)
	}
	return int64(*instance.AllocatedStorage) * bytesPerGiB, nil
}

// NewRDSClient builds an RDS client from the shared AWS config, optionally
// pinned to a named profile.
func NewRDSClient(ctx context.Context, profile string) (*rds.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return rds.NewFromConfig(cfg), nil
}

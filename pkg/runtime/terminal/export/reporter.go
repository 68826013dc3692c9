// Package export uploads finished run reports to S3-compatible object storage.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/de-tools/db-custodian/pkg/adapters"
	"github.com/de-tools/db-custodian/pkg/models/domain"
	"github.com/de-tools/db-custodian/pkg/services/config"
)

// PutObjectAPI is the slice of the S3 client used by the reporter.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Reporter writes each report as a JSON object under
// s3://bucket/prefix/<runID>.json.
type S3Reporter struct {
	client PutObjectAPI
	bucket string
	prefix string
}

func NewS3Reporter(client PutObjectAPI, bucket, prefix string) *S3Reporter {
	return &S3Reporter{client: client, bucket: bucket, prefix: prefix}
}

// NewS3ReporterFromConfig builds the reporter from daemon export settings,
// resolving credentials through the shared AWS config chain.
func NewS3ReporterFromConfig(ctx context.Context, cfg config.S3Export) (*S3Reporter, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AWSProfile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.AWSProfile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.PathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return NewS3Reporter(s3.NewFromConfig(awsCfg, s3Opts...), cfg.Bucket, cfg.Prefix), nil
}

func (r *S3Reporter) Export(ctx context.Context, report domain.RunReport) error {
	body, err := json.Marshal(adapters.MapRunReportDomainToApi(report))
	if err != nil {
		return fmt.Errorf("encode report %s: %w", report.ID, err)
	}

	key := path.Join(r.prefix, report.ID+".json")
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload report to s3://%s/%s: %w", r.bucket, key, err)
	}
	return nil
}

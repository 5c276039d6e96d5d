package probe

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mittwald/mittcheck/internal/config"
	"github.com/mittwald/mittcheck/internal/helper"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type s3Probe struct {
	bucket          string
	region          string
	endpoint        string
	accessKeyID     string
	secretAccessKey string
}

func NewS3Probe(cfg *config.S3) (*s3Probe, error) {
	p := s3Probe{
		bucket:          helper.ResolveEnv(cfg.Bucket),
		region:          helper.SetDefaultStringIfEmpty(helper.ResolveEnv(cfg.Region), "us-east-1", "region", "s3"),
		endpoint:        helper.ResolveEnv(cfg.Endpoint),
		accessKeyID:     helper.ResolveEnv(cfg.AccessKeyID),
		secretAccessKey: helper.ResolveEnv(cfg.SecretAccessKey),
	}

	if p.bucket == "" {
		return nil, errors.New("s3 probe requires a bucket")
	}

	return &p, nil
}

func (p *s3Probe) client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(p.region),
	}
	if p.accessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(p.accessKeyID, p.secretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load aws configuration")
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if p.endpoint != "" {
			o.BaseEndpoint = aws.String(p.endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (p *s3Probe) Exec(ctx context.Context) error {
	client, err := p.client(ctx)
	if err != nil {
		return err
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.bucket)}); err != nil {
		return errors.Wrapf(err, "bucket %q is not accessible", p.bucket)
	}

	log.WithFields(log.Fields{"kind": "probe", "name": "s3", "status": "alive", "bucket": p.bucket}).Debug()

	return nil
}

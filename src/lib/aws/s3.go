package aws

import (
	"campusgate/src/lib"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignExpiry = time.Hour

// S3UploadAsset puts the file at path into S3_ASSETS_BUCKET under name and
// returns a presigned GET URL for it.
func S3UploadAsset(ctx context.Context, name string, path string, contentType string) (*string, error) {
	assetsBucket := os.Getenv("S3_ASSETS_BUCKET")
	if assetsBucket == "" {
		return nil, fmt.Errorf("S3_ASSETS_BUCKET is not set")
	}
	client := lib.AWSGetS3Client()
	if client == nil {
		return nil, fmt.Errorf("s3 client is not configured")
	}
	file, err := os.Open(path)
	if err != nil {
		log.Printf("[S3] Could not open file to upload: %s\n", err.Error())
		return nil, err
	}
	defer file.Close()
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(assetsBucket),
		Key:         aws.String(name),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("[S3] Could not put object to S3 bucket: %s\n", err.Error())
		return nil, err
	}
	err = s3.NewObjectExistsWaiter(client).Wait(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(assetsBucket),
		Key:    aws.String(name),
	}, time.Minute)
	if err != nil {
		log.Printf("[S3] Failed attempt to wait for object %s to exist: %s\n", name, err.Error())
		return nil, err
	}
	log.Printf("[S3] Added object '%s' to bucket '%s'", name, assetsBucket)
	pre := s3.NewPresignClient(client)
	r, err := pre.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(assetsBucket),
		Key:    aws.String(name),
	}, func(po *s3.PresignOptions) {
		po.Expires = presignExpiry
	})
	if err != nil {
		log.Printf("[S3] Could not generate presigned URL for object [%s]: %s\n", name, err.Error())
		return nil, err
	}
	return &r.URL, nil
}

package upload

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/routedesk/authrelay/lib/myerrors"
	"github.com/routedesk/authrelay/lib/mylog"
	"github.com/routedesk/authrelay/lib/myuuid"
)

type Config struct {
	Bucket           string
	ACL              string
	PicturesFolder   string
	SignaturesFolder string

	// PublicEndpoint is the externally reachable base the stored
	// objects are served from. Mapping it here keeps the public URL an
	// explicit configuration concern instead of string surgery on
	// whatever location the storage backend reports.
	PublicEndpoint string
}

// ObjectPutter is the slice of the S3 API the relay needs.
//
//go:generate mockgen -source=service.go -package upload -destination object_putter_mock.go ObjectPutter
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// File is one uploaded part, buffered in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadedAsset is immutable once stored.
type UploadedAsset struct {
	Key string
	URL string
}

type service struct {
	config   Config
	s3Client ObjectPutter
	uuider   myuuid.UUIDer
	logger   mylog.Logger
}

func newService(config Config, s3Client ObjectPutter, uuider myuuid.UUIDer) *service {
	return &service{
		config:   config,
		s3Client: s3Client,
		uuider:   uuider,
		logger:   mylog.New("upload"),
	}
}

// uploadPair stores the picture+signature pair and returns the public
// URLs, picture first. A failure on either file aborts the whole batch.
func (s *service) uploadPair(c context.Context, files []File) ([]UploadedAsset, error) {
	pictures := []UploadedAsset{}
	signatures := []UploadedAsset{}

	for _, file := range files {
		asset, err := s.upload(c, file)
		if err != nil {
			return nil, myerrors.NewInternalError(fmt.Errorf("error uploading %s: %s", file.Name, err))
		}

		if s.isPicture(file.Name) {
			pictures = append(pictures, asset)
		} else {
			signatures = append(signatures, asset)
		}
	}

	return append(pictures, signatures...), nil
}

func (s *service) upload(c context.Context, file File) (UploadedAsset, error) {
	key := s.folderFor(file.Name) + "/" + s.uuider.Create() + "-" + filepath.Base(file.Name)

	_, err := s.s3Client.PutObject(c, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Data),
		ACL:         types.ObjectCannedACL(s.config.ACL),
		ContentType: aws.String(file.ContentType),
	})
	if err != nil {
		return UploadedAsset{}, err
	}

	s.logger.Log(c, "", mylog.SeverityInfo, "Stored %s (%d bytes)", key, len(file.Data))

	return UploadedAsset{
		Key: key,
		URL: strings.TrimSuffix(s.config.PublicEndpoint, "/") + "/" + key,
	}, nil
}

func (s *service) folderFor(filename string) string {
	if s.isPicture(filename) {
		return s.config.PicturesFolder
	}

	return s.config.SignaturesFolder
}

func (s *service) isPicture(filename string) bool {
	return strings.Contains(strings.ToLower(filename), "picture")
}

package upload

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/routedesk/authrelay/lib/myuuid"
)

var testConfig = Config{
	Bucket:           "proof-of-delivery",
	ACL:              "public-read",
	PicturesFolder:   "pictures",
	SignaturesFolder: "signatures",
	PublicEndpoint:   "https://cdn.example.com/",
}

func setup(t *testing.T, ctrl *gomock.Controller) (*mux.Router, *MockObjectPutter) {
	t.Helper()

	router := mux.NewRouter()
	s3Client := NewMockObjectPutter(ctrl)
	NewService(testConfig, s3Client, myuuid.RealUUIDer{}).RegisterEndpoints(context.Background(), router)

	return router, s3Client
}

func multipartRequest(t *testing.T, filenames ...string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for i, filename := range filenames {
		field := "files"
		if i > 0 {
			field = "files2"
		}
		part, err := writer.CreateFormFile(field, filename)
		assert.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes for " + filename))
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())

	request := httptest.NewRequest(http.MethodPost, "/api/uploadToS3", body)
	request.Header.Set("Content-Type", writer.FormDataContentType())

	return request
}

func TestUpload(t *testing.T) {

	t.Run("Pair is stored and public urls returned, picture first", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		router, s3Client := setup(t, ctrl)

		var gotInputs []*s3.PutObjectInput
		s3Client.EXPECT().PutObject(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
				gotInputs = append(gotInputs, params)
				return &s3.PutObjectOutput{}, nil
			}).Times(2)

		response := httptest.NewRecorder()
		router.ServeHTTP(response, multipartRequest(t, "sig1.png", "picture1.png"))

		assert.Equal(t, http.StatusOK, response.Code)

		got := response.Body.String()
		assert.Contains(t, got, "Files uploaded successfully")

		// picture first, regardless of submission order
		pictureIndex := strings.Index(got, "https://cdn.example.com/pictures/")
		signatureIndex := strings.Index(got, "https://cdn.example.com/signatures/")
		assert.GreaterOrEqual(t, pictureIndex, 0)
		assert.GreaterOrEqual(t, signatureIndex, 0)
		assert.Less(t, pictureIndex, signatureIndex)
		assert.Contains(t, got, "-picture1.png")
		assert.Contains(t, got, "-sig1.png")
		assert.NotContains(t, got, "cdn.example.com//")

		assert.Len(t, gotInputs, 2)
		for _, input := range gotInputs {
			assert.Equal(t, "proof-of-delivery", *input.Bucket)
			assert.Equal(t, "public-read", string(input.ACL))
			assert.Equal(t, "application/octet-stream", *input.ContentType)
		}
	})

	t.Run("Single file is rejected without any storage call", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		router, _ := setup(t, ctrl)

		response := httptest.NewRecorder()
		router.ServeHTTP(response, multipartRequest(t, "picture1.png"))

		assert.Equal(t, http.StatusBadRequest, response.Code)
		assert.Contains(t, response.Body.String(), "Both picture and signature files are required.")
	})

	t.Run("Three files are rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		router, _ := setup(t, ctrl)

		response := httptest.NewRecorder()
		router.ServeHTTP(response, multipartRequest(t, "picture1.png", "sig1.png", "picture2.png"))

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Storage failure aborts the whole batch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		router, s3Client := setup(t, ctrl)

		s3Client.EXPECT().PutObject(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

		response := httptest.NewRecorder()
		router.ServeHTTP(response, multipartRequest(t, "picture1.png", "sig1.png"))

		assert.Equal(t, http.StatusInternalServerError, response.Code)
		assert.NotContains(t, response.Body.String(), assert.AnError.Error())
	})

	t.Run("Non-multipart request is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		router, _ := setup(t, ctrl)

		request := httptest.NewRequest(http.MethodPost, "/api/uploadToS3", strings.NewReader("not multipart"))
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, http.StatusBadRequest, response.Code)
	})
}

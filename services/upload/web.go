package upload

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/routedesk/authrelay/lib/mycontext"
	"github.com/routedesk/authrelay/lib/myerrors"
	"github.com/routedesk/authrelay/lib/myhttp"
	"github.com/routedesk/authrelay/lib/mylog"
	"github.com/routedesk/authrelay/lib/myuuid"
)

const maxUploadBytes = 32 << 20

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(config Config, s3Client ObjectPutter, uuider myuuid.UUIDer) *webService {
	return &webService{
		service: newService(config, s3Client, uuider),
		logger:  mylog.New("upload"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/uploadToS3", s.uploadPage()).Methods("POST")
}

type uploadResponse struct {
	Message string   `json:"message"`
	URLs    []string `json:"urls"`
}

func (s *webService) uploadPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseMultipartForm(maxUploadBytes)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("invalid multipart request")))
			return
		}

		files, err := bufferedFiles(r)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInternalError(fmt.Errorf("error reading upload: %s", err)))
			return
		}

		if len(files) != 2 {
			errorWriter.WriteError(c, w, 3, myerrors.NewInvalidInputError(fmt.Errorf("Both picture and signature files are required.")))
			return
		}

		assets, err := s.service.uploadPair(c, files)
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		urls := make([]string, 0, len(assets))
		for _, asset := range assets {
			urls = append(urls, asset.URL)
		}

		errorWriter.Write(c, w, http.StatusOK, uploadResponse{
			Message: "Files uploaded successfully",
			URLs:    urls,
		})
	}
}

// bufferedFiles flattens all multipart file parts, whatever field names
// the client used, into in-memory buffers.
func bufferedFiles(r *http.Request) ([]File, error) {
	files := []File{}

	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			part, err := header.Open()
			if err != nil {
				return nil, fmt.Errorf("error opening %s: %s", header.Filename, err)
			}

			data, err := io.ReadAll(part)
			_ = part.Close()
			if err != nil {
				return nil, fmt.Errorf("error reading %s: %s", header.Filename, err)
			}

			files = append(files, File{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}

	return files, nil
}

package minio

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/garnet-screening/internal/application/export"
	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/garnet-screening/pkg/errors"
)

// Object names written per run.
const (
	CSVObject  = "candidates.csv"
	JSONObject = "result.json"
)

// ExportStore writes run exports to the bucket.  It implements
// screening.Sink.
type ExportStore struct {
	client *MinIOClient
	logger logging.Logger
}

var _ screening.Sink = (*ExportStore)(nil)

func NewExportStore(client *MinIOClient, log logging.Logger) *ExportStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ExportStore{client: client, logger: log}
}

func (s *ExportStore) Name() string { return "minio" }

// ObjectKey returns the key of name for runID.
func (s *ExportStore) ObjectKey(runID, name string) string {
	return s.client.config.Prefix + path.Join(runID, name)
}

// Publish uploads the CSV and JSON exports of res.
func (s *ExportStore) Publish(ctx context.Context, res *screening.Result) error {
	api, err := s.client.api()
	if err != nil {
		return err
	}

	uploads := []struct {
		name   string
		format export.Format
	}{
		{CSVObject, export.FormatCSV},
		{JSONObject, export.FormatJSON},
	}
	for _, u := range uploads {
		var buf bytes.Buffer
		if err := export.Write(&buf, res, u.format); err != nil {
			return err
		}
		key := s.ObjectKey(res.RunID, u.name)
		opts := minio.PutObjectOptions{
			ContentType:  export.ContentType(u.format),
			UserMetadata: map[string]string{"run-id": res.RunID},
			UserTags:     map[string]string{"sites": strings.Join(res.Sites, "-")},
		}
		info, err := api.PutObject(ctx, s.client.Bucket(), key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), opts)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeExportFailed, "upload failed").WithDetail(key)
		}
		s.logger.Debug("Export uploaded",
			logging.String("bucket", info.Bucket),
			logging.String("key", info.Key),
			logging.Int64("size", info.Size))
	}
	return nil
}

// Exists reports whether the CSV export of runID is stored.
func (s *ExportStore) Exists(ctx context.Context, runID string) (bool, error) {
	api, err := s.client.api()
	if err != nil {
		return false, err
	}
	_, err = api.StatObject(ctx, s.client.Bucket(), s.ObjectKey(runID, CSVObject), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeInternal, "stat failed")
	}
	return true, nil
}

// PresignedURL returns a time-limited download link for name of runID.
func (s *ExportStore) PresignedURL(ctx context.Context, runID, name string, expiry time.Duration) (string, error) {
	api, err := s.client.api()
	if err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = time.Hour
	}
	params := url.Values{}
	params.Set("response-content-disposition", "attachment; filename=\""+runID+"-"+name+"\"")
	u, err := api.PresignedGetObject(ctx, s.client.Bucket(), s.ObjectKey(runID, name), expiry, params)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "presign failed")
	}
	return u.String(), nil
}

// ListRuns returns the ids of runs with stored exports, sorted.
func (s *ExportStore) ListRuns(ctx context.Context) ([]string, error) {
	api, err := s.client.api()
	if err != nil {
		return nil, err
	}
	prefix := s.client.config.Prefix
	var runs []string
	for obj := range api.ListObjects(ctx, s.client.Bucket(), minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeInternal, "list failed")
		}
		id := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
		if id != "" && !strings.Contains(id, "/") {
			runs = append(runs, id)
		}
	}
	sort.Strings(runs)
	return runs, nil
}

// Delete removes both exports of runID.
func (s *ExportStore) Delete(ctx context.Context, runID string) error {
	api, err := s.client.api()
	if err != nil {
		return err
	}
	for _, name := range []string{CSVObject, JSONObject} {
		if err := api.RemoveObject(ctx, s.client.Bucket(), s.ObjectKey(runID, name), minio.RemoveObjectOptions{}); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "delete failed")
		}
	}
	return nil
}

//Personal.AI order the ending

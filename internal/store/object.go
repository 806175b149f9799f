package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
)

// ObjectStore keeps the JSON document as one object in an S3-compatible
// bucket. PutObject replaces the object whole, so readers never see a
// partial document.
type ObjectStore struct {
	client *minio.Client
	bucket string
	object string
}

func NewObjectStore(client *minio.Client, bucket, object string) *ObjectStore {
	if object == "" {
		object = DefaultFileName
	}
	return &ObjectStore{client: client, bucket: bucket, object: object}
}

func (o *ObjectStore) Name() string { return "minio" }

func (o *ObjectStore) Load(ctx context.Context) (*patient.Document, error) {
	obj, err := o.client.GetObject(ctx, o.bucket, o.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, unavailable("minio get", err)
	}
	defer obj.Close()
	b, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return emptyDocument(), nil
		}
		return nil, unavailable("minio read", err)
	}
	if len(b) == 0 {
		return emptyDocument(), nil
	}
	var doc patient.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, unavailable("decode", err)
	}
	doc.Normalize()
	return &doc, nil
}

func (o *ObjectStore) Save(ctx context.Context, doc *patient.Document) error {
	out := *doc
	out.Normalize()
	b, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return unavailable("encode", err)
	}
	_, err = o.client.PutObject(ctx, o.bucket, o.object, bytes.NewReader(b), int64(len(b)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return unavailable("minio put", err)
	}
	return nil
}

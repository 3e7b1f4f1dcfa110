package dbmongo

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ObjectStorage is a key-addressed wrapper over a GridFS bucket. Keys come
// from upload sessions and are unique per session, so a Put for an existing
// key replaces the earlier object (a retried write, never a distinct one).
type ObjectStorage struct {
	gridFS *gridfs.Bucket
}

func NewObjectStorage(mongoClient *MongoClient) *ObjectStorage {
	return &ObjectStorage{
		gridFS: mongoClient.GridFS,
	}
}

type ObjectInfo struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	WrittenAt   time.Time `json:"written_at"`
}

func (os *ObjectStorage) Put(ctx context.Context, key, contentType string, content io.Reader) (*ObjectInfo, error) {
	// Drop any previous object under this key so a retried grant write
	// replaces rather than duplicates.
	if err := os.deleteByKey(ctx, key); err != nil {
		return nil, err
	}

	metadata := bson.M{
		"content_type": contentType,
		"written_at":   time.Now(),
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	stream, err := os.gridFS.OpenUploadStream(key, opts)
	if err != nil {
		return nil, fmt.Errorf("object write failed: %w", err)
	}
	defer stream.Close()

	size, err := io.Copy(stream, content)
	if err != nil {
		return nil, fmt.Errorf("object copy failed: %w", err)
	}

	return &ObjectInfo{
		Key:         key,
		Size:        size,
		ContentType: contentType,
		WrittenAt:   time.Now(),
	}, nil
}

func (os *ObjectStorage) Get(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	stream, err := os.gridFS.OpenDownloadStreamByName(key)
	if err != nil {
		return nil, nil, fmt.Errorf("object read failed: %w", err)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	info := &ObjectInfo{
		Key:         key,
		Size:        fileInfo.Length,
		ContentType: getStringFromMap(metadata, "content_type"),
		WrittenAt:   fileInfo.UploadDate,
	}

	return stream, info, nil
}

// Exists reports whether an object has been written under key.
func (os *ObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	cursor, err := os.gridFS.Find(bson.M{"filename": key}, options.GridFSFind().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("object lookup failed: %w", err)
	}
	defer cursor.Close(ctx)

	return cursor.Next(ctx), nil
}

func (os *ObjectStorage) Delete(ctx context.Context, key string) error {
	return os.deleteByKey(ctx, key)
}

func (os *ObjectStorage) deleteByKey(ctx context.Context, key string) error {
	cursor, err := os.gridFS.Find(bson.M{"filename": key})
	if err != nil {
		return fmt.Errorf("object lookup failed: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var file struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&file); err != nil {
			continue
		}
		if err := os.gridFS.Delete(file.ID); err != nil && err != gridfs.ErrFileNotFound && err != mongo.ErrNoDocuments {
			return fmt.Errorf("object delete failed: %w", err)
		}
	}
	return nil
}

// Helper function for metadata extraction
func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

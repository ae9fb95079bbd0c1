package artifact

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"platen/internal/logging"
	"platen/internal/services/objstore"
)

const (
	contentType = "image/png"
	// Keys are content-derived, so stored objects never change in place
	// and can be cached forever.
	cacheControl = "public, max-age=31536000, immutable"
)

// Stored describes a persisted artifact.
type Stored struct {
	Key         string
	PublicURL   string
	ContentHash string
}

// Store uploads encoded print images through an object storage client.
type Store struct {
	storage objstore.API
	logger  *slog.Logger
}

// NewStore constructs an artifact store.
func NewStore(storage objstore.API, logger *slog.Logger) *Store {
	return &Store{
		storage: storage,
		logger:  logging.NewComponentLogger(logger, "artifact"),
	}
}

// Put uploads the rendered image under its content-derived key and
// returns the retrievable reference. Upload failures are transient
// storage faults distinct from validation problems; the caller decides
// the retry policy.
func (s *Store) Put(ctx context.Context, data []byte, orderID, lineItemID int64) (Stored, error) {
	if len(data) == 0 {
		return Stored{}, errors.New("artifact: empty image")
	}

	hash := ContentHash(data)
	key := Key(orderID, lineItemID, hash)

	publicURL, err := s.storage.Put(ctx, objstore.PutRequest{
		Key:          key,
		Body:         data,
		ContentType:  contentType,
		CacheControl: cacheControl,
		Metadata: map[string]string{
			"order-id":     strconv.FormatInt(orderID, 10),
			"line-item-id": strconv.FormatInt(lineItemID, 10),
		},
	})
	if err != nil {
		return Stored{}, err
	}

	s.logger.Info("artifact stored",
		logging.String("key", key),
		logging.String("content_hash", hash),
		logging.Int("bytes", len(data)))
	return Stored{Key: key, PublicURL: publicURL, ContentHash: hash}, nil
}

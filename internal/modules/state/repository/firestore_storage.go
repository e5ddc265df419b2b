package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/reshetovitsme/keyword-share-bot/internal/modules/state/domain"
	"github.com/samber/oops"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStorage implements Store with one Firestore document
type FirestoreStorage struct {
	client *firestore.Client
	doc    *firestore.DocumentRef
}

// NewFirestoreStorage opens a Firestore client. An empty credentials file
// falls back to application default credentials.
func NewFirestoreStorage(ctx context.Context, projectID, credentialsFile, collection, documentID string) (*FirestoreStorage, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, oops.With("project_id", projectID, "context", "failed to create firestore client").Wrap(err)
	}

	return &FirestoreStorage{
		client: client,
		doc:    client.Collection(collection).Doc(documentID),
	}, nil
}

func (s *FirestoreStorage) Load(ctx context.Context) (*domain.BotState, error) {
	snap, err := s.doc.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.New(), nil
		}
		return nil, oops.With("document", s.doc.Path, "context", "failed to load state").Wrap(err)
	}

	var doc domain.Document
	if err := snap.DataTo(&doc); err != nil {
		return nil, oops.With("document", s.doc.Path, "context", "failed to decode state").Wrap(err)
	}

	return domain.FromDocument(&doc), nil
}

func (s *FirestoreStorage) Save(ctx context.Context, state *domain.BotState) error {
	if _, err := s.doc.Set(ctx, state.ToDocument()); err != nil {
		return oops.With("document", s.doc.Path, "context", "failed to save state").Wrap(err)
	}
	return nil
}

func (s *FirestoreStorage) Close(ctx context.Context) error {
	return s.client.Close()
}

package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// NewFirestoreClient connects to Firestore, or to the emulator when
// FIRESTORE_EMULATOR_HOST is set.
func NewFirestoreClient(ctx context.Context, projectID string, logger *slog.Logger) (*firestore.Client, error) {
	if projectID == "" {
		return nil, errors.New("firestore project id is required")
	}

	if host := os.Getenv("FIRESTORE_EMULATOR_HOST"); host != "" {
		client, err := firestore.NewClient(ctx, projectID, option.WithoutAuthentication())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to firestore emulator: %w", err)
		}
		logger.InfoContext(ctx, "Connected to Firestore emulator", slog.String("host", host))
		return client, nil
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to firestore: %w", err)
	}
	logger.InfoContext(ctx, "Connected to Firestore", slog.String("project_id", projectID))
	return client, nil
}

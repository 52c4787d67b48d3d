//go:build integration
// +build integration

package main

import (
	"context"
	"testing"

	"cognition-berries/pkg/database"
	"cognition-berries/pkg/logger"
	"cognition-berries/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func setupTestDB(t *testing.T) *database.MongoDB {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("Failed to start MongoDB container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := database.Connect(ctx, uri, "cognition_berries_migrate_test", logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })
	return db
}

func TestNormalizeAndCheckImages(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	log := logger.NewNop()
	images := db.Collection(database.CollectionImages)
	courses := db.Collection(database.CollectionCourses)

	bare := models.Image{ID: bson.NewObjectID(), MimeType: "image/png", Data: "iVBORw0KGgo=", Type: models.ImageKindCourse}
	_, err := images.InsertOne(ctx, bare)
	require.NoError(t, err)

	linked := bson.NewObjectID()
	dangling := bson.NewObjectID()
	legacy := bson.NewObjectID()
	_, err = courses.InsertMany(ctx, []interface{}{
		bson.M{"_id": linked, "title": "Linked", "image": bare.ID.Hex()},
		bson.M{"_id": dangling, "title": "Dangling", "image": bson.NewObjectID().Hex(), "imageType": models.ImageTypeBase64},
		bson.M{"_id": legacy, "title": "Legacy", "image": "/uploads/intro.png"},
	})
	require.NoError(t, err)

	stats, err := normalizeImages(ctx, db, false, log)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ImagesRewritten)
	assert.Equal(t, 1, stats.CoursesMarked)

	var stored models.Image
	require.NoError(t, images.FindOne(ctx, bson.M{"_id": bare.ID}).Decode(&stored))
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", stored.Data)

	var legacyCourse models.Course
	require.NoError(t, courses.FindOne(ctx, bson.M{"_id": legacy}).Decode(&legacyCourse))
	assert.Equal(t, "/uploads/intro.png", legacyCourse.Image)
	assert.Empty(t, legacyCourse.ImageType)

	broken, err := checkImages(ctx, db, true, log)
	require.NoError(t, err)
	require.Len(t, broken, 1)
	assert.Equal(t, dangling, broken[0].ID)

	var repaired models.Course
	require.NoError(t, courses.FindOne(ctx, bson.M{"_id": dangling}).Decode(&repaired))
	assert.Empty(t, repaired.Image)
	assert.Empty(t, repaired.ImageType)
}

package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openTestPostgres connects to SOCIALGRAPH_TEST_POSTGRES and empties the tables.
func openTestPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("SOCIALGRAPH_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("SOCIALGRAPH_TEST_POSTGRES not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Relationship{}, &models.Micropost{}, &models.Message{}))
	require.NoError(t, db.Exec("TRUNCATE users, relationships, microposts, messages RESTART IDENTITY CASCADE").Error)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// seedUsers inserts n users and returns their ids.
func seedUsers(t *testing.T, db *gorm.DB, n int) []uint {
	t.Helper()
	repo := NewPostgresUserRepository(db)
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		u := &models.User{
			Name:           "Example",
			Username:       "user" + string(rune('a'+i)),
			Email:          "user" + string(rune('a'+i)) + "@example.com",
			PasswordDigest: "x",
		}
		require.NoError(t, repo.CreateUser(context.Background(), u))
		ids = append(ids, u.ID)
	}
	return ids
}

func openTestMongo(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("SOCIALGRAPH_TEST_MONGO")
	if uri == "" {
		t.Skip("SOCIALGRAPH_TEST_MONGO not set")
	}
	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	db := client.Database("socialgraph_test")
	require.NoError(t, db.Drop(ctx))

	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func openTestNeo4j(t *testing.T) neo4j.DriverWithContext {
	t.Helper()
	uri := os.Getenv("SOCIALGRAPH_TEST_NEO4J")
	if uri == "" {
		t.Skip("SOCIALGRAPH_TEST_NEO4J not set")
	}
	ctx := context.Background()

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(
		os.Getenv("SOCIALGRAPH_TEST_NEO4J_USER"),
		os.Getenv("SOCIALGRAPH_TEST_NEO4J_PASSWORD"), ""))
	require.NoError(t, err)
	require.NoError(t, driver.VerifyConnectivity(ctx))

	_, err = neo4j.ExecuteQuery(ctx, driver, "MATCH (n) DETACH DELETE n", nil, neo4j.EagerResultTransformer)
	require.NoError(t, err)

	t.Cleanup(func() { _ = driver.Close(ctx) })
	return driver
}

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/nano-midea/socialgraph/internal/models"
	"github.com/anonto42/nano-midea/socialgraph/pkg/apperror"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jRelationshipStore implements RelationshipStore on a Neo4j graph:
//
//	(:User {id})-[:FOLLOWS {id, follower_id, followed_id, created_at}]->(:User {id})
//
// MERGE between two bound nodes locks both nodes, so concurrent creates of the
// same pair yield one relationship. Edge ids come from a (:Sequence) node
// incremented in the same write transaction.
type Neo4jRelationshipStore struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jRelationshipStore creates a new Neo4jRelationshipStore
func NewNeo4jRelationshipStore(driver neo4j.DriverWithContext) *Neo4jRelationshipStore {
	return &Neo4jRelationshipStore{driver: driver}
}

// JoinsTx is false: Neo4j writes commit independently of PostgreSQL.
func (r *Neo4jRelationshipStore) JoinsTx() bool { return false }

// EnsureSchema creates the user id uniqueness constraint and edge id index.
func (r *Neo4jRelationshipStore) EnsureSchema(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, stmt := range []string{
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
		`CREATE INDEX follows_id IF NOT EXISTS FOR ()-[r:FOLLOWS]-() ON (r.id)`,
	} {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return classifyNeo4j("relationships.schema", err)
		}
	}
	return nil
}

func (r *Neo4jRelationshipStore) Create(ctx context.Context, followerID, followedID uint) (*models.Relationship, error) {
	if followerID == followedID {
		return nil, apperror.Wrap("relationships.create", apperror.InvalidEdge, "follower and followed must differ", nil)
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		const mergeEdge = `
			MERGE (f:User {id: $followerID})
			MERGE (u:User {id: $followedID})
			MERGE (f)-[r:FOLLOWS]->(u)
			ON CREATE SET r.follower_id = $followerID, r.followed_id = $followedID,
			              r.created_at = $now, r.pending_id = true
			WITH r, coalesce(r.pending_id, false) AS created
			REMOVE r.pending_id
			RETURN created
		`
		res, err := tx.Run(ctx, mergeEdge, map[string]any{
			"followerID": int64(followerID),
			"followedID": int64(followedID),
			"now":        time.Now().UTC(),
		})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		if created, _ := record.Get("created"); created != true {
			return nil, apperror.Wrap("relationships.create", apperror.DuplicateEdge, "relationship already exists", nil)
		}

		const assignID = `
			MERGE (s:Sequence {name: 'follows'})
			ON CREATE SET s.value = 0
			SET s.value = s.value + 1
			WITH s
			MATCH (:User {id: $followerID})-[r:FOLLOWS]->(:User {id: $followedID})
			SET r.id = s.value
			RETURN r.id AS id, r.follower_id AS follower_id, r.followed_id AS followed_id, r.created_at AS created_at
		`
		res, err = tx.Run(ctx, assignID, map[string]any{
			"followerID": int64(followerID),
			"followedID": int64(followedID),
		})
		if err != nil {
			return nil, err
		}
		record, err = res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return relationshipFromRecord(record), nil
	})
	if err != nil {
		return nil, classifyNeo4j("relationships.create", err)
	}
	return result.(*models.Relationship), nil
}

func (r *Neo4jRelationshipStore) FindByFollowerAndFollowed(ctx context.Context, followerID, followedID uint) (*models.Relationship, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (:User {id: $followerID})-[r:FOLLOWS]->(:User {id: $followedID})
			RETURN r.id AS id, r.follower_id AS follower_id, r.followed_id AS followed_id, r.created_at AS created_at
		`, map[string]any{
			"followerID": int64(followerID),
			"followedID": int64(followedID),
		})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if res.Err() != nil {
				return nil, res.Err()
			}
			return nil, apperror.Wrap("relationships.find", apperror.NotFound, "relationship not found", nil)
		}
		return relationshipFromRecord(res.Record()), nil
	})
	if err != nil {
		return nil, classifyNeo4j("relationships.find", err)
	}
	return result.(*models.Relationship), nil
}

func (r *Neo4jRelationshipStore) ListFollowedBy(ctx context.Context, followerID uint) ([]uint, error) {
	return r.listIDs(ctx, "relationships.list_followed", `
		MATCH (:User {id: $userID})-[r:FOLLOWS]->(u:User)
		RETURN u.id AS id
		ORDER BY r.created_at ASC, r.id ASC
	`, followerID)
}

func (r *Neo4jRelationshipStore) ListFollowersOf(ctx context.Context, followedID uint) ([]uint, error) {
	return r.listIDs(ctx, "relationships.list_followers", `
		MATCH (f:User)-[r:FOLLOWS]->(:User {id: $userID})
		RETURN f.id AS id
		ORDER BY r.created_at ASC, r.id ASC
	`, followedID)
}

func (r *Neo4jRelationshipStore) CountFollowing(ctx context.Context, followerID uint) (int64, error) {
	return r.count(ctx, "relationships.count_following",
		`MATCH (:User {id: $userID})-[r:FOLLOWS]->() RETURN count(r) AS n`, followerID)
}

func (r *Neo4jRelationshipStore) CountFollowers(ctx context.Context, followedID uint) (int64, error) {
	return r.count(ctx, "relationships.count_followers",
		`MATCH ()-[r:FOLLOWS]->(:User {id: $userID}) RETURN count(r) AS n`, followedID)
}

func (r *Neo4jRelationshipStore) Delete(ctx context.Context, relationshipID uint) error {
	n, err := r.write(ctx, "relationships.delete",
		`MATCH ()-[r:FOLLOWS {id: $id}]->() DELETE r RETURN count(r) AS n`,
		map[string]any{"id": int64(relationshipID)})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.Wrap("relationships.delete", apperror.NotFound, "relationship not found", nil)
	}
	return nil
}

// DeleteByUser removes every FOLLOWS edge touching the user in one write
// transaction. The user node itself is left for the next MERGE to reuse.
func (r *Neo4jRelationshipStore) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	return r.write(ctx, "relationships.delete_by_user",
		`MATCH (:User {id: $userID})-[r:FOLLOWS]-() DELETE r RETURN count(r) AS n`,
		map[string]any{"userID": int64(userID)})
}

func (r *Neo4jRelationshipStore) listIDs(ctx context.Context, op, query string, userID uint) ([]uint, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"userID": int64(userID)})
		if err != nil {
			return nil, err
		}
		ids := []uint{}
		for res.Next(ctx) {
			ids = append(ids, uint(getInt64(res.Record(), "id")))
		}
		return ids, res.Err()
	})
	if err != nil {
		return nil, classifyNeo4j(op, err)
	}
	return result.([]uint), nil
}

func (r *Neo4jRelationshipStore) count(ctx context.Context, op, query string, userID uint) (int64, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"userID": int64(userID)})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return getInt64(record, "n"), nil
	})
	if err != nil {
		return 0, classifyNeo4j(op, err)
	}
	return result.(int64), nil
}

func (r *Neo4jRelationshipStore) write(ctx context.Context, op, query string, params map[string]any) (int64, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return getInt64(record, "n"), nil
	})
	if err != nil {
		return 0, classifyNeo4j(op, err)
	}
	return result.(int64), nil
}

func relationshipFromRecord(record *neo4j.Record) *models.Relationship {
	rel := &models.Relationship{
		ID:         uint(getInt64(record, "id")),
		FollowerID: uint(getInt64(record, "follower_id")),
		FollowedID: uint(getInt64(record, "followed_id")),
	}
	if v, ok := record.Get("created_at"); ok {
		if t, ok := v.(time.Time); ok {
			rel.CreatedAt = t
		}
	}
	return rel
}

func getInt64(record *neo4j.Record, key string) int64 {
	v, ok := record.Get(key)
	if !ok {
		return 0
	}
	n, _ := v.(int64)
	return n
}

const neo4jConstraintFailed = "Neo.ClientError.Schema.ConstraintValidationFailed"

func classifyNeo4j(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}

	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) && neoErr.Code == neo4jConstraintFailed {
		return apperror.Wrap(op, apperror.DuplicateEdge, "relationship already exists", err)
	}
	if neo4j.IsRetryable(err) || errors.Is(err, context.DeadlineExceeded) {
		return apperror.Wrap(op, apperror.TransientStore, "graph store unavailable", err)
	}
	return apperror.Wrap(op, apperror.Unknown, "graph store error", err)
}

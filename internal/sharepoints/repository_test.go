package sharepoints

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildWhere(t *testing.T) {
	status := StatusPending
	user := uuid.MustParse("2f1b7c3e-9a4d-4c53-8d1e-6b0f3a2c5e71")
	approved := false
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	where, args, err := buildWhere(Filter{
		Status:          &status,
		AssignedTo:      &user,
		ManagerApproved: &approved,
		Search:          "50%_off",
		OverdueAt:       &now,
	})
	require.NoError(t, err)

	assert.Equal(t, " WHERE 1=1 AND status = $1 AND users_to_sign @> $2::jsonb AND manager_approved = $3"+
		" AND (title ILIKE $4 OR comment ILIKE $4)"+
		" AND deadline < $5 AND status NOT IN ('completed', 'rejected', 'disapproved', 'cancelled')", where)
	require.Len(t, args, 5)
	assert.Equal(t, "pending", args[0])
	assert.Equal(t, `[{"user":"2f1b7c3e-9a4d-4c53-8d1e-6b0f3a2c5e71"}]`, args[1])
	assert.Equal(t, false, args[2])
	assert.Equal(t, `%50\%\_off%`, args[3])
	assert.Equal(t, now, args[4])
}

func TestBuildWhereEmpty(t *testing.T) {
	where, args, err := buildWhere(Filter{})
	require.NoError(t, err)
	assert.Equal(t, " WHERE 1=1", where)
	assert.Empty(t, args)
}

func TestMongoFilter(t *testing.T) {
	user := uuid.New()
	q := mongoFilter(Filter{ManagedBy: &user, Search: "a.b"})

	assert.Equal(t, user, q["managersToApprove"])
	or, ok := q["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Equal(t, bson.M{"title": bson.M{"$regex": `a\.b`, "$options": "i"}}, or[0])

	now := time.Now()
	q = mongoFilter(Filter{OverdueAt: &now})
	assert.Equal(t, bson.M{"$lt": now}, q["deadline"])
	assert.Equal(t, bson.M{"$nin": terminalStatuses}, q["status"])
}

func TestJSONColumnsRoundTripNil(t *testing.T) {
	var signers Signers
	v, err := signers.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	var ids IDList
	require.NoError(t, ids.Scan(nil))
	assert.Nil(t, ids)
	require.NoError(t, ids.Scan([]byte(`["2f1b7c3e-9a4d-4c53-8d1e-6b0f3a2c5e71"]`)))
	assert.Len(t, ids, 1)
	assert.Error(t, ids.Scan(42))
}

package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

func TestUpsertInsertsWithDefaults(t *testing.T) {
	s := NewStore()

	p := s.Upsert(PlayerPatch{ID: "p1", Name: strPtr("Ana")})

	assert.Equal(t, Player{ID: "p1", Name: "Ana", Score: 0, Active: true}, p)
	assert.Equal(t, 1, s.Len())
}

func TestUpsertMergesPartialFields(t *testing.T) {
	s := NewStore()
	s.Upsert(PlayerPatch{ID: "p1", Name: strPtr("Ana"), Score: intPtr(0)})

	// a later event carrying only the score must not erase the name
	p := s.Upsert(PlayerPatch{ID: "p1", Score: intPtr(5)})

	assert.Equal(t, Player{ID: "p1", Name: "Ana", Score: 5, Active: true}, p)
}

func TestUpsertIsIdempotent(t *testing.T) {
	s := NewStore()
	patch := PlayerPatch{ID: "p1", Name: strPtr("Ana"), Score: intPtr(3), Active: boolPtr(true)}

	first := s.Upsert(patch)
	second := s.Upsert(patch)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.Len())
}

func TestExitBeforeJoin(t *testing.T) {
	s := NewStore()

	// exit for an id we never saw is a no-op, not an error
	assert.False(t, s.MarkInactive("ghost"))
	assert.Equal(t, 0, s.Len())

	// a join arriving afterwards inserts the participant as active
	p := s.Upsert(PlayerPatch{ID: "ghost", Name: strPtr("Ghost")})
	assert.True(t, p.Active)
}

func TestMarkInactiveKeepsRecord(t *testing.T) {
	s := NewStore()
	s.Upsert(PlayerPatch{ID: "p1", Name: strPtr("Ana")})

	require.True(t, s.MarkInactive("p1"))

	p, ok := s.Get("p1")
	require.True(t, ok)
	assert.False(t, p.Active)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.OnlineCount())
}

func TestAverageScoreEmptyRoster(t *testing.T) {
	s := NewStore()
	assert.Equal(t, 0.0, s.AverageScore())
}

func TestAverageScore(t *testing.T) {
	s := NewStore()
	s.Upsert(PlayerPatch{ID: "p1", Score: intPtr(4)})
	s.Upsert(PlayerPatch{ID: "p2", Score: intPtr(8)})

	assert.InDelta(t, 6.0, s.AverageScore(), 1e-9)
}

func TestRankingStableOnTies(t *testing.T) {
	s := NewStore()
	s.Upsert(PlayerPatch{ID: "a", Score: intPtr(5)})
	s.Upsert(PlayerPatch{ID: "b", Score: intPtr(9)})
	s.Upsert(PlayerPatch{ID: "c", Score: intPtr(5)})

	ranked := s.Ranking()

	require.Len(t, ranked, 3)
	assert.Equal(t, "b", ranked[0].ID)
	// ties keep insertion order
	assert.Equal(t, "a", ranked[1].ID)
	assert.Equal(t, "c", ranked[2].ID)
}

func TestScenarioPartialRejoinMerge(t *testing.T) {
	s := NewStore()
	s.Upsert(PlayerPatch{ID: "p1", Name: strPtr("Ana"), Score: intPtr(0)})
	s.Upsert(PlayerPatch{ID: "p1", Score: intPtr(5)})

	p, ok := s.Get("p1")
	require.True(t, ok)
	assert.Equal(t, Player{ID: "p1", Name: "Ana", Score: 5, Active: true}, p)
}

func TestPlayersReturnsCopies(t *testing.T) {
	s := NewStore()
	s.Upsert(PlayerPatch{ID: "p1", Name: strPtr("Ana")})

	players := s.Players()
	players[0].Score = 99

	p, _ := s.Get("p1")
	assert.Equal(t, 0, p.Score)
}

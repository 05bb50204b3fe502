package roster

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Player is one known participant. Records are never removed during a
// session; an exited participant stays listed with Active false.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Active bool   `json:"active"`
}

// PlayerPatch is a partial update. Nil fields leave the existing value
// untouched so that sparse, duplicated or reordered events cannot erase
// previously known data.
type PlayerPatch struct {
	ID     string
	Name   *string
	Score  *int
	Active *bool
}

// Store holds the deduplicated participant set. Events may arrive
// out of order and more than once; Upsert and MarkInactive are the only
// mutation paths and both tolerate that.
type Store struct {
	mu      sync.RWMutex
	players map[string]*Player
	order   []string // insertion order, used as the stable tiebreak for ranking
}

func NewStore() *Store {
	return &Store{
		players: make(map[string]*Player),
	}
}

// Upsert inserts or merges a participant record and returns the resulting
// state. Unknown identifiers are inserted with defaults (score 0, active
// true); known ones get a shallow merge of the provided fields. Applying the
// same patch twice is a no-op the second time.
func (s *Store) Upsert(patch PlayerPatch) Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[patch.ID]
	if !ok {
		p = &Player{ID: patch.ID, Active: true}
		s.players[patch.ID] = p
		s.order = append(s.order, patch.ID)
		log.Debug().Str("player_id", patch.ID).Msg("roster: new participant")
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Score != nil {
		p.Score = *patch.Score
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}

	return *p
}

// MarkInactive flips a participant to inactive. An unknown identifier is a
// no-op, not an error: an exit may be observed before its join.
func (s *Store) MarkInactive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		log.Debug().Str("player_id", id).Msg("roster: exit for unknown participant ignored")
		return false
	}
	p.Active = false
	return true
}

// Get returns a copy of one participant record.
func (s *Store) Get(id string) (Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Players returns copies of all records in insertion order.
func (s *Store) Players() []Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Ranking returns all records sorted by score descending. Ties keep
// insertion order.
func (s *Store) Ranking() []Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := s.snapshotLocked()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// OnlineCount is the number of currently active participants.
func (s *Store) OnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, p := range s.players {
		if p.Active {
			count++
		}
	}
	return count
}

// AverageScore is the mean score across all known participants, 0 when the
// roster is empty.
func (s *Store) AverageScore() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.players) == 0 {
		return 0
	}
	total := 0
	for _, p := range s.players {
		total += p.Score
	}
	return float64(total) / float64(len(s.players))
}

// Len is the number of known participants, active or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

func (s *Store) snapshotLocked() []Player {
	out := make([]Player, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.players[id])
	}
	return out
}

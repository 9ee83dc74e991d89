package leaderboard

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/agentboard/internal/model"
)

func TestScore(t *testing.T) {
	// quick_starter + document_master at 60% progress.
	assert.Equal(t, 450, Score(50+100, 60))
	assert.Equal(t, 0, Score(0, 0))
	assert.Equal(t, 1950+500, Score(1950, 100))
}

func member(id string, points []int, completed, total int) Member {
	m := Member{Agent: model.Agent{ID: id, Name: "Agent " + id}}
	for i, p := range points {
		m.Badges = append(m.Badges, model.Badge{ID: id + "-b" + string(rune('0'+i)), AgentID: id, Points: p})
	}
	for i := 0; i < total; i++ {
		m.Items = append(m.Items, model.ChecklistItem{AgentID: id, IsCompleted: i < completed})
	}
	return m
}

func TestNewEntry(t *testing.T) {
	got := NewEntry(member("a1", []int{50, 100}, 6, 10))
	want := Entry{
		AgentID:         "a1",
		AgentName:       "Agent a1",
		BadgeCount:      2,
		Points:          150,
		ProgressPercent: 60,
		TotalScore:      450,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewEntry() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewEntry_Uninitialized(t *testing.T) {
	got := NewEntry(member("a1", nil, 0, 0))
	assert.Equal(t, 0, got.TotalScore)
	assert.Equal(t, 0, got.ProgressPercent)
}

func TestBuild_OrderAndTies(t *testing.T) {
	entries := Build([]Member{
		member("carol", []int{50}, 5, 10),      // 50 + 250 = 300
		member("alice", []int{100}, 4, 10),     // 100 + 200 = 300
		member("bob", []int{500, 250}, 10, 10), // 750 + 500 = 1250
		member("dave", nil, 0, 10),             // 0
	})

	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.AgentID
	}
	if diff := cmp.Diff([]string{"bob", "alice", "carol", "dave"}, got); diff != "" {
		t.Errorf("rank order mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1, RankOf("bob", entries))
	assert.Equal(t, 2, RankOf("alice", entries))
	assert.Equal(t, 3, RankOf("carol", entries))
	assert.Equal(t, 0, RankOf("erin", entries))
}

func TestRank_DeterministicUnderShuffle(t *testing.T) {
	base := Build([]Member{
		member("a", []int{50}, 1, 2),
		member("b", []int{50}, 1, 2),
		member("c", []int{75}, 0, 2),
		member("d", []int{25}, 2, 2),
		member("e", nil, 2, 2),
	})

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Entry(nil), base...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		Rank(shuffled)
		if diff := cmp.Diff(base, shuffled); diff != "" {
			t.Fatalf("shuffle %d ranked differently (-want +got):\n%s", i, diff)
		}
	}
}

func TestTop(t *testing.T) {
	entries := Build([]Member{member("a", nil, 0, 1), member("b", nil, 0, 1), member("c", nil, 0, 1)})

	assert.Len(t, Top(entries, 2), 2)
	assert.Len(t, Top(entries, 10), 3)
	assert.Len(t, Top(entries, 0), 3)
	assert.Equal(t, "a", Top(entries, 1)[0].AgentID)
}

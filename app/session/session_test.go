package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionAnswers(t *testing.T) {
	s := New("postnl")

	t.Run("answers keep insertion order", func(t *testing.T) {
		s.SetAnswer("bedrijf", "Amazon")
		s.SetAnswer("straat", "Herengracht 1")
		s.SetAnswer("postcode", "1022VX")

		var order []string
		for pair := s.Answers.Oldest(); pair != nil; pair = pair.Next() {
			order = append(order, pair.Key)
		}
		assert.Equal(t, []string{"bedrijf", "straat", "postcode"}, order)
	})

	t.Run("answered reflects stored fields", func(t *testing.T) {
		assert.True(t, s.Answered("bedrijf"))
		assert.False(t, s.Answered("land"))
	})

	t.Run("answer map flattens all values", func(t *testing.T) {
		m := s.AnswerMap()
		require.Len(t, m, 3)
		assert.Equal(t, "Amazon", m["bedrijf"])
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	t.Run("get on empty store misses", func(t *testing.T) {
		_, ok := store.Get(1)
		assert.False(t, ok)
	})

	t.Run("put then get round trips", func(t *testing.T) {
		store.Put(1, New("dhl"))
		s, ok := store.Get(1)
		require.True(t, ok)
		assert.Equal(t, "dhl", s.Carrier)
	})

	t.Run("remove clears the session", func(t *testing.T) {
		store.Remove(1)
		_, ok := store.Get(1)
		assert.False(t, ok)
	})

	t.Run("users are independent under concurrent access", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := int64(0); i < 50; i++ {
			wg.Add(1)
			go func(userID int64) {
				defer wg.Done()
				s := New("postnl")
				s.SetAnswer("bedrijf", fmt.Sprintf("bedrijf-%d", userID))
				store.Put(userID, s)
				got, ok := store.Get(userID)
				assert.True(t, ok)
				v, _ := got.Answer("bedrijf")
				assert.Equal(t, fmt.Sprintf("bedrijf-%d", userID), v)
				store.Remove(userID)
			}(i + 100)
		}
		wg.Wait()
	})
}

package fsrs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retentlabs/retent/internal/domain"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(DefaultParameters)
	require.NoError(t, err)
	return m
}

func TestNewModelRejectsInvalidParameters(t *testing.T) {
	t.Parallel()

	bad := DefaultParameters
	bad[0] = -5

	_, err := NewModel(bad)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestRetrievability(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	t.Run("zero elapsed time means certain recall", func(t *testing.T) {
		t.Parallel()
		for _, s := range []float64{0.1, 1, 10, 365} {
			r, err := m.Retrievability(0, s)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, r, 1e-12)
		}
	})

	t.Run("elapsed equal to stability yields 90 percent", func(t *testing.T) {
		t.Parallel()
		r, err := m.Retrievability(10, 10)
		require.NoError(t, err)
		assert.InDelta(t, 0.9, r, 1e-9)
	})

	t.Run("decreases monotonically with elapsed time", func(t *testing.T) {
		t.Parallel()
		prev := 1.1
		for _, elapsed := range []float64{0, 1, 5, 20, 100, 1000} {
			r, err := m.Retrievability(elapsed, 10)
			require.NoError(t, err)
			assert.Less(t, r, prev)
			assert.Greater(t, r, 0.0)
			prev = r
		}
	})

	t.Run("invalid inputs are rejected", func(t *testing.T) {
		t.Parallel()
		testCases := []struct {
			name      string
			elapsed   float64
			stability float64
		}{
			{"negative elapsed", -1, 10},
			{"NaN elapsed", math.NaN(), 10},
			{"zero stability", 5, 0},
			{"negative stability", 5, -1},
			{"NaN stability", 5, math.NaN()},
		}
		for _, tc := range testCases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				_, err := m.Retrievability(tc.elapsed, tc.stability)
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			})
		}
	})
}

func TestInitialStability(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	for _, rating := range []domain.Rating{domain.Again, domain.Hard, domain.Good, domain.Easy} {
		s, err := m.InitialStability(rating)
		require.NoError(t, err)
		assert.Equal(t, DefaultParameters[rating-1], s)
	}

	// Better first impressions seed longer-lived memories.
	sAgain, _ := m.InitialStability(domain.Again)
	sEasy, _ := m.InitialStability(domain.Easy)
	assert.Less(t, sAgain, sEasy)

	_, err := m.InitialStability(domain.Rating(0))
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
}

func TestInitialDifficulty(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	var prev float64 = 11
	for _, rating := range []domain.Rating{domain.Again, domain.Hard, domain.Good, domain.Easy} {
		d, err := m.InitialDifficulty(rating)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, d, 1.0)
		assert.LessOrEqual(t, d, 10.0)
		// Harder first impressions mean higher difficulty.
		assert.Less(t, d, prev)
		prev = d
	}

	_, err := m.InitialDifficulty(domain.Rating(5))
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
}

func TestNextStability(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	const (
		stability  = 10.0
		difficulty = 5.0
		retr       = 0.9
	)

	t.Run("success never shrinks stability", func(t *testing.T) {
		t.Parallel()
		for _, rating := range []domain.Rating{domain.Hard, domain.Good, domain.Easy} {
			next, err := m.NextStability(rating, stability, difficulty, retr)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, next, stability)
		}
	})

	t.Run("lapse never grows stability", func(t *testing.T) {
		t.Parallel()
		next, err := m.NextStability(domain.Again, stability, difficulty, retr)
		require.NoError(t, err)
		assert.LessOrEqual(t, next, stability)
		assert.Greater(t, next, 0.0)
	})

	t.Run("growth ordering follows rating quality", func(t *testing.T) {
		t.Parallel()
		hard, err := m.NextStability(domain.Hard, stability, difficulty, retr)
		require.NoError(t, err)
		good, err := m.NextStability(domain.Good, stability, difficulty, retr)
		require.NoError(t, err)
		easy, err := m.NextStability(domain.Easy, stability, difficulty, retr)
		require.NoError(t, err)
		assert.LessOrEqual(t, hard, good)
		assert.LessOrEqual(t, good, easy)
	})

	t.Run("lower retrievability grows stability faster", func(t *testing.T) {
		t.Parallel()
		atHigh, err := m.NextStability(domain.Good, stability, difficulty, 0.95)
		require.NoError(t, err)
		atLow, err := m.NextStability(domain.Good, stability, difficulty, 0.70)
		require.NoError(t, err)
		assert.Greater(t, atLow, atHigh)
	})

	t.Run("harder cards grow stability slower", func(t *testing.T) {
		t.Parallel()
		easyCard, err := m.NextStability(domain.Good, stability, 2.0, retr)
		require.NoError(t, err)
		hardCard, err := m.NextStability(domain.Good, stability, 9.0, retr)
		require.NoError(t, err)
		assert.Greater(t, easyCard, hardCard)
	})

	t.Run("invalid inputs are rejected", func(t *testing.T) {
		t.Parallel()
		testCases := []struct {
			name       string
			rating     domain.Rating
			stability  float64
			difficulty float64
			retr       float64
			want       error
		}{
			{"bad rating", domain.Rating(7), stability, difficulty, retr, domain.ErrInvalidRating},
			{"zero stability", domain.Good, 0, difficulty, retr, domain.ErrInvalidInput},
			{"NaN stability", domain.Good, math.NaN(), difficulty, retr, domain.ErrInvalidInput},
			{"difficulty below range", domain.Good, stability, 0.5, retr, domain.ErrInvalidInput},
			{"difficulty above range", domain.Good, stability, 10.5, retr, domain.ErrInvalidInput},
			{"retrievability above one", domain.Good, stability, difficulty, 1.5, domain.ErrInvalidInput},
			{"negative retrievability", domain.Good, stability, difficulty, -0.1, domain.ErrInvalidInput},
		}
		for _, tc := range testCases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				_, err := m.NextStability(tc.rating, tc.stability, tc.difficulty, tc.retr)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})
}

func TestNextDifficulty(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	t.Run("moves opposite to rating quality", func(t *testing.T) {
		t.Parallel()
		const d = 5.0
		again, err := m.NextDifficulty(domain.Again, d)
		require.NoError(t, err)
		good, err := m.NextDifficulty(domain.Good, d)
		require.NoError(t, err)
		easy, err := m.NextDifficulty(domain.Easy, d)
		require.NoError(t, err)

		assert.Greater(t, again, d)
		assert.Less(t, easy, good)
	})

	t.Run("stays within bounds under repeated lapses", func(t *testing.T) {
		t.Parallel()
		d := 5.0
		for i := 0; i < 100; i++ {
			next, err := m.NextDifficulty(domain.Again, d)
			require.NoError(t, err)
			d = next
		}
		assert.LessOrEqual(t, d, 10.0)
		assert.GreaterOrEqual(t, d, 1.0)
	})

	t.Run("repeated easy reviews revert toward baseline", func(t *testing.T) {
		t.Parallel()
		d := 9.0
		for i := 0; i < 100; i++ {
			next, err := m.NextDifficulty(domain.Easy, d)
			require.NoError(t, err)
			assert.LessOrEqual(t, next, d)
			d = next
		}
		assert.GreaterOrEqual(t, d, 1.0)
	})

	t.Run("invalid inputs are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := m.NextDifficulty(domain.Rating(0), 5)
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
		_, err = m.NextDifficulty(domain.Good, 0.5)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = m.NextDifficulty(domain.Good, math.NaN())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestNextInterval(t *testing.T) {
	t.Parallel()
	m := newTestModel(t)

	t.Run("interval equals stability at default retention", func(t *testing.T) {
		t.Parallel()
		// The curve is calibrated so R(S, S) = 0.9: scheduling at 0.9
		// retention targets exactly the stability horizon.
		for _, s := range []float64{1, 10, 100} {
			days, err := m.NextInterval(s, 0.9, 36500)
			require.NoError(t, err)
			assert.Equal(t, int(math.Round(s)), days)
		}
	})

	t.Run("higher retention shortens the interval", func(t *testing.T) {
		t.Parallel()
		strict, err := m.NextInterval(50, 0.95, 36500)
		require.NoError(t, err)
		loose, err := m.NextInterval(50, 0.80, 36500)
		require.NoError(t, err)
		assert.Less(t, strict, loose)
	})

	t.Run("clamped to at least one day", func(t *testing.T) {
		t.Parallel()
		days, err := m.NextInterval(0.01, 0.9, 36500)
		require.NoError(t, err)
		assert.Equal(t, 1, days)
	})

	t.Run("clamped to the maximum interval", func(t *testing.T) {
		t.Parallel()
		days, err := m.NextInterval(1e6, 0.9, 365)
		require.NoError(t, err)
		assert.Equal(t, 365, days)
	})

	t.Run("invalid inputs are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := m.NextInterval(0, 0.9, 365)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = m.NextInterval(10, 0, 365)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = m.NextInterval(10, 1, 365)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

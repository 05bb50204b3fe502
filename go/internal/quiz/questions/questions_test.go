package questions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTextField(t *testing.T) {
	raw := []byte(`{"id":3,"text":"Pick one","alternatives":["a","b","c","d"],"correctAnswer":1}`)

	q, err := Normalize(raw, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, q.ID)
	assert.Equal(t, "Pick one", q.Text)
	assert.Equal(t, []string{"a", "b", "c", "d"}, q.Alternatives)
	require.NotNil(t, q.CorrectAnswer)
	assert.Equal(t, 1, *q.CorrectAnswer)
}

func TestNormalizeQuestionFieldFallback(t *testing.T) {
	raw := []byte(`{"question":"Older shape?","alternatives":["x","y"]}`)

	q, err := Normalize(raw, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, q.ID)
	assert.Equal(t, "Older shape?", q.Text)
	assert.Nil(t, q.CorrectAnswer)
}

func TestNormalizeObjectAlternativesWithCorrectFlag(t *testing.T) {
	raw := []byte(`{"text":"Objects","alternatives":[{"text":"no"},{"text":"yes","correct":true},{"text":"no"}]}`)

	q, err := Normalize(raw, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"no", "yes", "no"}, q.Alternatives)
	require.NotNil(t, q.CorrectAnswer)
	assert.Equal(t, 1, *q.CorrectAnswer)
}

func TestNormalizeExplicitKeyWinsOverFlag(t *testing.T) {
	raw := []byte(`{"text":"Both","alternatives":[{"text":"a","correct":true},{"text":"b"}],"correctAnswer":1}`)

	q, err := Normalize(raw, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, *q.CorrectAnswer)
}

func TestNormalizeDropsOutOfRangeKey(t *testing.T) {
	q, err := Normalize([]byte(`{"text":"drifted","alternatives":["a","b","c","d"],"correctAnswer":7}`), 1)
	require.NoError(t, err)
	assert.Nil(t, q.CorrectAnswer)

	q, err = Normalize([]byte(`{"text":"drifted","alternatives":["a","b"],"correctAnswer":-1}`), 1)
	require.NoError(t, err)
	assert.Nil(t, q.CorrectAnswer)
}

func TestNormalizeOutOfRangeKeyFallsBackToFlag(t *testing.T) {
	raw := []byte(`{"text":"drifted","alternatives":[{"text":"a"},{"text":"b","correct":true}],"correctAnswer":9}`)

	q, err := Normalize(raw, 1)
	require.NoError(t, err)
	require.NotNil(t, q.CorrectAnswer)
	assert.Equal(t, 1, *q.CorrectAnswer)
}

func TestNormalizeMissingPromptSynthesizesText(t *testing.T) {
	q, err := Normalize([]byte(`{"alternatives":["a","b"]}`), 4)
	require.NoError(t, err)
	assert.Equal(t, "Question 4", q.Text)
}

func TestNormalizeMalformed(t *testing.T) {
	_, err := Normalize([]byte(`not json`), 1)
	assert.Error(t, err)
}

// fakeFetcher scripts the two fetch endpoints.
type fakeFetcher struct {
	one    []byte
	oneErr error
	all    []byte
	allErr error
}

func (f *fakeFetcher) Question(ctx context.Context, number int) ([]byte, error) {
	return f.one, f.oneErr
}

func (f *fakeFetcher) Questions(ctx context.Context) ([]byte, error) {
	return f.all, f.allErr
}

func TestResolvePrefersSingleEndpoint(t *testing.T) {
	r := NewResolver(&fakeFetcher{
		one: []byte(`{"text":"from single","alternatives":["a","b","c","d"]}`),
		all: []byte(`[{"text":"from list","alternatives":["a"]}]`),
	})

	q := r.Resolve(context.Background(), 1)
	assert.Equal(t, "from single", q.Text)
}

func TestResolveFallsBackToListArray(t *testing.T) {
	r := NewResolver(&fakeFetcher{
		oneErr: errors.New("boom"),
		all:    []byte(`[{"text":"q1"},{"text":"q2","alternatives":["a","b"]}]`),
	})

	q := r.Resolve(context.Background(), 2)
	assert.Equal(t, "q2", q.Text)
}

func TestResolveFallsBackToListMap(t *testing.T) {
	r := NewResolver(&fakeFetcher{
		oneErr: errors.New("boom"),
		all:    []byte(`{"3":{"text":"mapped","alternatives":["a"]}}`),
	})

	q := r.Resolve(context.Background(), 3)
	assert.Equal(t, "mapped", q.Text)
}

func TestResolveFallsBackToLocalTable(t *testing.T) {
	r := NewResolver(&fakeFetcher{
		oneErr: errors.New("boom"),
		allErr: errors.New("boom"),
	})

	q := r.Resolve(context.Background(), 1)
	assert.Equal(t, "Capital of France?", q.Text)
	require.NotNil(t, q.CorrectAnswer)
	assert.Equal(t, 0, *q.CorrectAnswer)
}

func TestResolveSynthesizesPlaceholder(t *testing.T) {
	r := NewResolver(&fakeFetcher{
		oneErr: errors.New("boom"),
		allErr: errors.New("boom"),
	})

	q := r.Resolve(context.Background(), 99)
	assert.Equal(t, 99, q.ID)
	assert.Equal(t, "Question 99", q.Text)
	assert.Equal(t, []string{"A", "B", "C", "D"}, q.Alternatives)
	assert.Nil(t, q.CorrectAnswer)
}

func TestResolveListOutOfRangeFallsThrough(t *testing.T) {
	r := NewResolver(&fakeFetcher{
		oneErr: errors.New("boom"),
		all:    []byte(`[{"text":"only one"}]`),
	})

	q := r.Resolve(context.Background(), 5)
	assert.Equal(t, "Question 5", q.Text)
}

func TestResolveMalformedSingleFallsThrough(t *testing.T) {
	r := NewResolver(&fakeFetcher{
		one: []byte(`garbage`),
		all: []byte(`[{"text":"clean","alternatives":["a"]}]`),
	})

	q := r.Resolve(context.Background(), 1)
	assert.Equal(t, "clean", q.Text)
}

package location

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	answers map[string]string
	err     error
	calls   int
}

func (f *fakeExtractor) ExtractLocation(_ context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if name, ok := f.answers[text]; ok {
		return name, nil
	}
	return domain.UnknownLocation, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolver_RecognizedPlace(t *testing.T) {
	ext := &fakeExtractor{answers: map[string]string{"Flooding in downtown Boston": "Boston, MA"}}
	r := NewResolver(ext, "Manhattan, NYC", discardLogger())

	name, err := r.Resolve(context.Background(), "Flooding in downtown Boston")
	require.NoError(t, err)
	assert.Equal(t, "Boston, MA", name)
	assert.False(t, IsUnknown(name))
}

func TestResolver_NoPlace(t *testing.T) {
	r := NewResolver(&fakeExtractor{}, "Manhattan, NYC", discardLogger())

	name, err := r.Resolve(context.Background(), "Something terrible happened")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", name)
	assert.True(t, IsUnknown(name))
}

func TestResolver_PlaceholderWithoutCapability(t *testing.T) {
	r := NewResolver(nil, "Manhattan, NYC", discardLogger())

	name, err := r.Resolve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "Manhattan, NYC", name)
}

func TestResolver_CallFailureIsResolutionError(t *testing.T) {
	ext := &fakeExtractor{err: errors.New("gemini API error: status 500")}
	r := NewResolver(ext, "Manhattan, NYC", discardLogger())

	_, err := r.Resolve(context.Background(), "Flooding in Boston")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrResolution))
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, 1, ext.calls, "no retry")
}

func TestIsUnknown_Empty(t *testing.T) {
	assert.True(t, IsUnknown(""))
}

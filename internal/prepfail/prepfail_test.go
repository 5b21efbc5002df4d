package prepfail

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinels_MatchByKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", NotFound("/tmp/x"), ErrNotFound},
		{"validation", Validation("bad %s", "pattern"), ErrValidation},
		{"size", SizeLimit("big.txt", 20, 10), ErrSizeLimit},
		{"io", IO("reading", "a.txt", os.ErrPermission), ErrIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.ErrorIs(t, fmt.Errorf("outer: %w", tt.err), tt.sentinel, "wrapped error keeps its kind")
		})
	}
}

func TestSentinels_DoNotCrossMatch(t *testing.T) {
	assert.NotErrorIs(t, NotFound("x"), ErrValidation)
	assert.NotErrorIs(t, errors.New("plain"), ErrIO)
}

func TestIO_UnwrapsCause(t *testing.T) {
	assert.ErrorIs(t, IO("writing", "out.md", os.ErrPermission), os.ErrPermission)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindSizeLimit, KindOf(SizeLimit("f", 2, 1)))
	assert.Equal(t, Kind(""), KindOf(errors.New("x")))
}

func TestError_Message(t *testing.T) {
	assert.EqualError(t, SizeLimit("big.txt", 20, 10), "size 20 exceeds limit 10: big.txt")
}

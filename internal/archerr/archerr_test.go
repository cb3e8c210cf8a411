package archerr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapsAndUnwraps(t *testing.T) {
	underlying := fs.ErrNotExist
	err := Wrap(KindIo, "read config", underlying)

	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "io: read config")
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(KindIo, "x", nil))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConfig, KindOf(New(KindConfig, "bad yaml")))
	assert.Equal(t, KindSnapshot, KindOf(fmt.Errorf("outer: %w", New(KindSnapshot, "dup id"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCodeFor(nil))
	assert.Equal(t, ExitInvalid, ExitCodeFor(New(KindConfig, "x")))
	assert.Equal(t, ExitInvalid, ExitCodeFor(New(KindSnapshot, "x")))
	assert.Equal(t, ExitInternal, ExitCodeFor(New(KindInternal, "x")))
	assert.Equal(t, ExitInternal, ExitCodeFor(errors.New("plain")))
}

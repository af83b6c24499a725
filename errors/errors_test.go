package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelWrapping(t *testing.T) {
	t.Run("wrapped sentinel remains detectable", func(t *testing.T) {
		err := Wrap(ErrSheetMissing, "open workbook polls.xlsx")
		assert.True(t, Is(err, ErrSheetMissing))
		assert.True(t, IsFatalForFile(err))
	})

	t.Run("unrelated error is not fatal", func(t *testing.T) {
		err := New("column 14 skipped")
		assert.False(t, IsFatalForFile(err))
	})

	t.Run("not found helper", func(t *testing.T) {
		require.False(t, IsNotFoundError(nil))
		assert.True(t, IsNotFoundError(Wrap(ErrNotFound, "question Q9")))
		assert.False(t, IsNotFoundError(New("something else")))
	})
}

func TestStackTraces(t *testing.T) {
	err := Wrap(New("inner"), "outer")
	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go", "verbose format should carry a stack trace")
}

package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonBlockingReader_ReadLine(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedValue string
		expectError   bool
	}{
		{
			name:          "successful read",
			input:         "20458\n",
			expectedValue: "20458",
		},
		{
			name:          "read with extra whitespace",
			input:         "  sam  \n",
			expectedValue: "sam",
		},
		{
			name:          "final line without newline",
			input:         "secret1",
			expectedValue: "secret1",
		},
		{
			name:        "empty input",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nbr := NewNonBlockingReader(strings.NewReader(tt.input))

			result, err := nbr.ReadLine(context.Background())

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedValue, result)
		})
	}
}

func TestNonBlockingReader_SecretFromPipe(t *testing.T) {
	nbr := NewNonBlockingReader(strings.NewReader("user\nhunter22\n"))

	user, err := nbr.ReadLine(context.Background())
	require.NoError(t, err)
	secret, err := nbr.ReadSecret(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "user", user)
	assert.Equal(t, "hunter22", secret)
}

func TestNonBlockingReader_ContextCancellation(t *testing.T) {
	t.Run("already canceled", func(t *testing.T) {
		nbr := NewNonBlockingReader(strings.NewReader("never read\n"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := nbr.ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})

	t.Run("canceled while waiting", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer func() { _ = pr.Close() }()
		defer func() { _ = pw.Close() }()
		nbr := NewNonBlockingReader(pr)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := nbr.ReadLine(ctx)

		assert.ErrorIs(t, err, ErrInputCancelled)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestNewNonBlockingReader_NilPanics(t *testing.T) {
	assert.Panics(t, func() { NewNonBlockingReader(nil) })
}

func TestInterruptHandler(t *testing.T) {
	var out bytes.Buffer
	h := NewInterruptHandler(&out, "Cache install interrupted")

	ctx, stop := h.HandleInterrupts(context.Background())
	defer stop()
	assert.NoError(t, ctx.Err())
	assert.False(t, h.WasInterrupted())

	h.interrupt()
	h.interrupt()

	assert.True(t, h.WasInterrupted())
	assert.Equal(t, 1, strings.Count(out.String(), "Cache install interrupted"))
}

func TestInterruptHandler_StopCancels(t *testing.T) {
	h := NewInterruptHandler(nil, "")
	ctx, stop := h.HandleInterrupts(context.Background())

	stop()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, h.WasInterrupted())
}

func TestFraction(t *testing.T) {
	var out bytes.Buffer
	bar := NewProgressBar(&out, 100, "Reading docket")
	update := Fraction(bar)

	update(0.25)
	assert.EqualValues(t, 25, bar.State().CurrentNum)

	update(0.1)
	assert.EqualValues(t, 25, bar.State().CurrentNum, "progress never goes backwards")

	update(1.5)
	assert.EqualValues(t, 100, bar.State().CurrentNum)
}

func TestFormatting(t *testing.T) {
	assert.Contains(t, FormatSuccess("Allocated"), "Allocated")
	assert.Contains(t, FormatError("Failed"), "✗")
	assert.Contains(t, FormatTitle("Allocation logs"), "Allocation logs")
	assert.Contains(t, RenderBox("PO 20458", "Acme Supply"), "Acme Supply")
}

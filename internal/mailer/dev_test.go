package mailer

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevMailer(t *testing.T) {
	var buf bytes.Buffer
	m := &DevMailer{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	require.NoError(t, m.SendOTP("user@example.com", "123456", 15*time.Minute))
	require.NoError(t, m.SendApproval("user@example.com", "AAA-001", "A1-1", "Zone A"))
	require.NoError(t, m.SendRejection("user@example.com", "AAA-001", "Zone A", "lot full"))

	out := buf.String()
	assert.Contains(t, out, "123456")
	assert.Contains(t, out, "A1-1")
	assert.Contains(t, out, "lot full")
}

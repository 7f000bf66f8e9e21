package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Raunaq22/ChessMate-sub001/internal/testutil"
)

func TestDurationEnv(t *testing.T) {
	logger := testutil.NopLogger()

	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset", "", 0},
		{"bare seconds", "45", 45 * time.Second},
		{"zero seconds", "0", 0},
		{"duration seconds", "45s", 45 * time.Second},
		{"duration minutes", "2m", 2 * time.Minute},
		{"negative", "-10", 0},
		{"garbage", "soon", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CHESSMATE_GRACE_WINDOW", tt.value)
			assert.Equal(t, tt.want, durationEnv(logger, "CHESSMATE_GRACE_WINDOW"))
		})
	}
}

func TestMillisEnv(t *testing.T) {
	logger := testutil.NopLogger()

	t.Setenv("CHESSMATE_EXTERNAL_TIMEOUT_MS", "1500")
	assert.Equal(t, 1500*time.Millisecond, millisEnv(logger, "CHESSMATE_EXTERNAL_TIMEOUT_MS"))

	t.Setenv("CHESSMATE_EXTERNAL_TIMEOUT_MS", "not-a-number")
	assert.Equal(t, time.Duration(0), millisEnv(logger, "CHESSMATE_EXTERNAL_TIMEOUT_MS"))
}

func TestSplitEnv(t *testing.T) {
	t.Setenv("CHESSMATE_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitEnv("CHESSMATE_ALLOWED_ORIGINS"))

	t.Setenv("CHESSMATE_ALLOWED_ORIGINS", "")
	assert.Nil(t, splitEnv("CHESSMATE_ALLOWED_ORIGINS"))
}

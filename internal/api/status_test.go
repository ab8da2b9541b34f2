package api

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"skin-tracker/internal/steam"
)

func TestStatus_ProgressAndData(t *testing.T) {
	t.Parallel()

	s := NewStatus()
	s.OnProgress("manual update: a", 1, 3)
	s.OnData("a", steam.Quote{LowestPrice: 24.5, Volume: 120})

	snap := s.snapshot(true)
	require.Equal(t, true, snap["running"])
	require.Equal(t, "manual update: a", snap["progress"])
	require.Equal(t, 1, snap["current"])
	require.Equal(t, 3, snap["total"])
	require.Equal(t, "a", snap["last_skin"])
	require.InDelta(t, 24.5, snap["last_price"].(float64), 1e-9)
}

func TestStatus_CompletionResetsProgress(t *testing.T) {
	t.Parallel()

	s := NewStatus()
	s.OnProgress("manual update: a", 1, 1)
	s.OnFailed("previous failure")
	s.OnCompleted(1, 1, 1500*time.Millisecond)

	snap := s.snapshot(false)
	require.Equal(t, "", snap["progress"])
	require.Equal(t, 0, snap["current"])
	require.Equal(t, 1, snap["successful"])
	require.Equal(t, 1, snap["cycle_total"])
	require.Equal(t, "1.5s", snap["elapsed"])
	require.NotContains(t, snap, "failure", "a clean completion clears the failure")
}

func TestStatus_FailureSurfaces(t *testing.T) {
	t.Parallel()

	s := NewStatus()
	s.OnFailed("lookup panicked")

	snap := s.snapshot(false)
	require.Equal(t, "lookup panicked", snap["failure"])
}

func TestStatus_AlertsCapped(t *testing.T) {
	t.Parallel()

	s := NewStatus()
	for i := 0; i < 60; i++ {
		s.OnAlert(fmt.Sprintf("skin-%d", i), float64(i), steam.Quote{})
	}

	snap := s.snapshot(false)
	alerts := snap["alerts"].([]AlertEvent)
	require.Len(t, alerts, 50)
	require.Equal(t, "skin-10", alerts[0].Skin, "oldest events fall off")
	require.Equal(t, "skin-59", alerts[49].Skin)
}

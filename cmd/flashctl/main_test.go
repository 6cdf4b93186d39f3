package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/ranking"

	"github.com/stretchr/testify/require"
)

func TestWriteLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	err := writeLeaderboard(&buf, ranking.ByStudyTime, []domain.LeaderboardEntry{
		{Rank: 1, UserID: "u1", Username: "ana", Score: 3600},
		{Rank: 2, UserID: "u2", Username: "bo", Score: 60},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, []string{"RANK", "USER", "ID", "STUDYTIME"}, strings.Fields(lines[0]))
	require.Equal(t, []string{"1", "ana", "u1", "3600"}, strings.Fields(lines[1]))
}

func TestPurgeUserRequiresAnID(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"purge-user"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	err := root.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "accepts 1 arg")
}

func TestRootListsCommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.Subset(t, names, []string{"purge-user", "leaderboard", "seed", "user", "migrate"})
}

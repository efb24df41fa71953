package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sniffer.dev/regression-sniffer/internal/pattern"
)

func TestExpand(t *testing.T) {
	t.Run("substitutes every placeholder", func(t *testing.T) {
		expr := pattern.CherryPick.Expand("abc1234")
		require.Equal(t, `^\(cherry picked from commit (abc1234)\) *$`, expr)
		require.NotContains(t, expr, pattern.Placeholder)
	})

	t.Run("joins alternatives with a pipe", func(t *testing.T) {
		search := pattern.FollowUpSearch()
		require.Len(t, search, len(pattern.Mention)+len(pattern.FollowUp))
		require.Equal(t, pattern.Mention[0], search[0])

		expr := search.Expand("abc1234")
		require.Contains(t, expr, "|follow-?up")
	})
}

func TestCherryPickedSHAs(t *testing.T) {
	t.Run("returns nothing for a plain message", func(t *testing.T) {
		require.Empty(t, pattern.CherryPickedSHAs("fix bug\n\nNo trailer here.\n"))
	})

	t.Run("extracts a single trailer", func(t *testing.T) {
		shas := pattern.CherryPickedSHAs("fix bug\n(cherry picked from commit aaaa111)\n")
		require.Equal(t, []string{"aaaa111"}, shas)
	})

	t.Run("extracts squashed trailers in order", func(t *testing.T) {
		msg := "message\n" +
			"(cherry picked from commit 941a12dcba57f6673230a9c413738c51374d2998)\n" +
			"(cherry picked from commit 123456dcba57f6673230a9c413738c51374d2998)\n"
		shas := pattern.CherryPickedSHAs(msg)
		require.Equal(t, []string{
			"941a12dcba57f6673230a9c413738c51374d2998",
			"123456dcba57f6673230a9c413738c51374d2998",
		}, shas)
	})

	t.Run("extracts indented trailers from squashed bodies", func(t *testing.T) {
		msg := "Squashed commit of the following:\n\n" +
			"(cherry picked from commit aaaa111)\n\n" +
			"commit 2\n" +
			"    core: fix\n\n" +
			"    (cherry picked from commit bbbb222)\n"
		require.Equal(t, []string{"aaaa111", "bbbb222"}, pattern.CherryPickedSHAs(msg))
	})

	t.Run("extracts trailers with CRLF line endings", func(t *testing.T) {
		shas := pattern.CherryPickedSHAs("fix\r\n(cherry picked from commit aaaa111)\r\n")
		require.Equal(t, []string{"aaaa111"}, shas)
	})

	t.Run("extracts trailers followed by punctuation", func(t *testing.T) {
		shas := pattern.CherryPickedSHAs("fix\n(cherry picked from commit aaaa111).\n")
		require.Equal(t, []string{"aaaa111"}, shas)
	})

	t.Run("ignores identifiers that are not hexadecimal", func(t *testing.T) {
		require.Empty(t, pattern.CherryPickedSHAs("(cherry picked from commit main)\n"))
	})

	t.Run("tolerates trailing spaces and upper case", func(t *testing.T) {
		shas := pattern.CherryPickedSHAs("x\n(Cherry picked from commit AAAA111)  \n")
		require.Equal(t, []string{"aaaa111"}, shas)
	})
}

func TestCompile(t *testing.T) {
	t.Run("revert phrasing", func(t *testing.T) {
		re, err := pattern.Revert.Compile("aaaa111")
		require.NoError(t, err)
		require.True(t, re.MatchString("Revert \"fix bug\"\n\nThis reverts commit aaaa111.\n"))
		require.True(t, re.MatchString("reverts: https://github.com/systemd/systemd/commit/aaaa111"))
		require.False(t, re.MatchString("This reverts commit bbbb222."))
	})

	t.Run("follow-up phrasing", func(t *testing.T) {
		re, err := pattern.FollowUp.Compile("aaaa111")
		require.NoError(t, err)
		require.True(t, re.MatchString("core: fix leak\n\nFollow-up for aaaa111"))
		require.True(t, re.MatchString("followup to https://github.com/org/repo/commit/aaaa111"))
		require.False(t, re.MatchString("mentions aaaa111 only"))
	})

	t.Run("mention is part of the follow-up search", func(t *testing.T) {
		re, err := pattern.FollowUpSearch().Compile("aaaa111")
		require.NoError(t, err)
		require.True(t, re.MatchString("mentions aaaa111 only"))
		require.True(t, re.MatchString("see https://github.com/org/repo/commit/aaaa111"))
	})
}

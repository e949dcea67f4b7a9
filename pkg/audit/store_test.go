package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strp(s string) *string { return &s }

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	base := time.Unix(1_700_000_000, 0)
	require.NoError(t, s.Record(ctx, Entry{
		ReceivedAt: base,
		Command:    "showAccountInfo",
		RecordID:   strp("001A"),
		Outcome:    Applied,
		StackSize:  1,
	}))
	require.NoError(t, s.Record(ctx, Entry{
		ReceivedAt: base.Add(time.Second),
		Command:    "setMaxDisplayCount",
		Parameters: strp("abc"),
		Outcome:    Applied,
		Reason:     "count from default",
		StackSize:  1,
	}))
	require.NoError(t, s.Record(ctx, Entry{
		ReceivedAt: base.Add(2 * time.Second),
		Command:    "reboot",
		Outcome:    Dropped,
		Reason:     `unknown command "reboot"`,
	}))

	all, err := s.Recent(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "reboot", all[0].Command, "newest first")
	require.NotEmpty(t, all[0].ID)
	require.Nil(t, all[0].Parameters)
	require.Equal(t, "abc", *all[1].Parameters)
	require.Equal(t, "001A", *all[2].RecordID)
	require.True(t, all[2].ReceivedAt.Equal(base))

	dropped, err := s.Recent(ctx, Filter{Outcome: Dropped})
	require.NoError(t, err)
	require.Len(t, dropped, 1)

	since, err := s.Recent(ctx, Filter{Since: base.Add(time.Second), Limit: 1})
	require.NoError(t, err)
	require.Len(t, since, 1)
	require.Equal(t, "reboot", since[0].Command)

	byCmd, err := s.Recent(ctx, Filter{Command: "showAccountInfo"})
	require.NoError(t, err)
	require.Len(t, byCmd, 1)
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	for _, o := range []Outcome{Applied, Applied, Ignored} {
		require.NoError(t, s.Record(ctx, Entry{Command: "clearDisplay", Outcome: o}))
	}
	n, err := s.Count(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	n, err = s.Count(ctx, Ignored)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestDuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	e := Entry{ID: "fixed", Command: "clearDisplay", Outcome: Applied}
	require.NoError(t, s.Record(ctx, e))
	require.Error(t, s.Record(ctx, e))
}

func TestNopRecorder(t *testing.T) {
	require.NoError(t, Nop{}.Record(context.Background(), Entry{Command: "x"}))
}

package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/easytoast/internal/toast"
	"github.com/jmylchreest/easytoast/internal/toast/toasttest"
)

func TestStore_AddAndGet(t *testing.T) {
	s := NewStore(nil, 0)
	now := time.Now()

	require.NoError(t, s.Add(testRecord("a", now)))
	require.NoError(t, s.Add(testRecord("a", now)))
	assert.Equal(t, 1, s.Count())

	r, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "message a", r.Text)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

// flakyPersistence fails appends until healed.
type flakyPersistence struct {
	appended []Record
	failing  bool
}

func (f *flakyPersistence) Load() ([]Record, error) { return nil, nil }
func (f *flakyPersistence) Rewrite([]Record) error  { return nil }
func (f *flakyPersistence) Clear() error            { return nil }
func (f *flakyPersistence) Close() error            { return nil }

func (f *flakyPersistence) Append(r Record) error {
	if f.failing {
		return errors.New("disk full")
	}
	f.appended = append(f.appended, r)
	return nil
}

func TestStore_AddFailedAppendCanBeRetried(t *testing.T) {
	p := &flakyPersistence{failing: true}
	s := NewStore(p, 0)
	r := testRecord("a", time.Now())

	require.Error(t, s.Add(r))
	assert.Zero(t, s.Count())
	_, ok := s.Get("a")
	assert.False(t, ok)

	p.failing = false
	require.NoError(t, s.Add(r))
	assert.Equal(t, 1, s.Count())
	require.Len(t, p.appended, 1)
	assert.Equal(t, "a", p.appended[0].ID)
}

func TestStore_TrimsOldest(t *testing.T) {
	s := NewStore(nil, 2)
	base := time.Now()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Add(testRecord(id, base.Add(time.Duration(i)*time.Second))))
	}

	assert.Equal(t, 2, s.Count())
	_, ok := s.Get("a")
	assert.False(t, ok)
	r, ok := s.Get("c")
	assert.True(t, ok)
	assert.Equal(t, "c", r.ID)
}

func TestStore_Filter(t *testing.T) {
	s := NewStore(nil, 0)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	old := testRecord("old", now.Add(-2*time.Hour))
	recent := testRecord("recent", now.Add(-time.Minute))
	errRec := testRecord("err", now.Add(-30*time.Second))
	errRec.Preset = "error"

	for _, r := range []Record{old, recent, errRec} {
		require.NoError(t, s.Add(r))
	}

	ids := func(rs []Record) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}

	assert.Equal(t, []string{"err", "recent", "old"}, ids(s.Filter(FilterOptions{})))
	assert.Equal(t, []string{"err", "recent"}, ids(s.Filter(FilterOptions{Since: time.Hour})))
	assert.Equal(t, []string{"recent", "old"}, ids(s.Filter(FilterOptions{Preset: "info"})))
	assert.Equal(t, []string{"err"}, ids(s.Filter(FilterOptions{Limit: 1})))
}

func TestStore_HydrateAndCompact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	base := time.Now()

	p, err := NewJSONLPersistence(path)
	require.NoError(t, err)
	s := NewStore(p, 2)
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.Add(testRecord(id, base.Add(time.Duration(i)*time.Second))))
	}
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Add(testRecord("e", base)), ErrStoreClosed)

	// The fourth add reached twice the limit and compacted the file.
	p, err = NewJSONLPersistence(path)
	require.NoError(t, err)
	onDisk, err := p.Load()
	require.NoError(t, err)
	assert.Len(t, onDisk, 2)

	s = NewStore(p, 10)
	require.NoError(t, s.Hydrate())
	assert.Equal(t, 2, s.Count())
	_, ok := s.Get("d")
	assert.True(t, ok)

	require.NoError(t, s.Clear())
	assert.Zero(t, s.Count())
	require.NoError(t, s.Close())
}

func TestNewRecord(t *testing.T) {
	b := toasttest.NewBackend()
	n := toast.NewPreset(b, toast.PresetSuccess, nil).SetText("saved")
	shown := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	r := NewRecord(n, toast.PresetSuccess, shown, shown.Add(3*time.Second))
	assert.Equal(t, n.ID(), r.ID)
	assert.Equal(t, "success", r.Preset)
	assert.Equal(t, "Success!", r.Title)
	assert.Equal(t, "saved", r.Text)
	assert.Equal(t, "bottom-right", r.Position)
	assert.Equal(t, 3*time.Second, r.Duration())

	plain := NewRecord(toast.New(b, nil), toast.PresetNone, shown, shown.Add(-time.Second))
	assert.Empty(t, plain.Preset)
	assert.Zero(t, plain.Duration())
}

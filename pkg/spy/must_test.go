package spy

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/getmockd/httpspy/pkg/exchange"
	"github.com/getmockd/httpspy/pkg/expect"
	"github.com/getmockd/httpspy/pkg/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeT struct {
	errors []string
	failed bool
}

func (f *fakeT) Helper() {}

func (f *fakeT) Errorf(format string, args ...any) {
	f.errors = append(f.errors, fmt.Sprintf(format, args...))
}

func (f *fakeT) FailNow() { f.failed = true }

type recorder struct {
	header http.Header
	status int
	body   []byte
}

func newRecorder() *recorder { return &recorder{header: http.Header{}} }

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(status int) { r.status = status }

func (r *recorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body = append(r.body, p...)
	return len(p), nil
}

func TestMustVerify(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	seq := mustSequence(t, plan.NewSequenceBuilder().
		Expect(expect.AnyRequest().Method(expect.Equal("POST")), exchange.WithStatus(202)))
	require.NoError(t, s.Install(seq))

	t.Run("no traffic fails", func(t *testing.T) {
		ft := &fakeT{}
		MustVerify(ft, s)
		assert.True(t, ft.failed)
		require.Len(t, ft.errors, 1)
		assert.Contains(t, ft.errors[0], "count mismatch: expected 1 requests, received 0")
	})

	t.Run("matching traffic passes", func(t *testing.T) {
		r, err := http.NewRequest("POST", "/", nil)
		require.NoError(t, err)
		rec := newRecorder()
		s.ServeHTTP(rec, r)
		require.Equal(t, 202, rec.status)

		ft := &fakeT{}
		MustVerify(ft, s)
		assert.False(t, ft.failed)
		assert.Empty(t, ft.errors)
	})
}

func TestMustVerify_NoPlan(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)

	ft := &fakeT{}
	MustVerify(ft, s)
	assert.True(t, ft.failed)
	assert.Contains(t, ft.errors[0], "test plan is not set")
}

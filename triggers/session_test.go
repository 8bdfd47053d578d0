package triggers_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsneverhax/nhxinfobot/triggers"
)

func TestStoreCreateAndGet(t *testing.T) {
	t.Parallel()

	st := triggers.NewStore(time.Minute, nil)
	defer st.Close()

	s := st.Create("owner", "chan", triggers.NewPaginator(names(3), nil))
	assert.Len(t, s.ID, 8)
	assert.Equal(t, "owner", s.OwnerID)

	st.Bind(s.ID, "msg")
	got, ok := st.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, "msg", got.MessageID)

	got.View(func(p *triggers.Paginator) {
		assert.Equal(t, 1, p.Pages())
	})

	_, ok = st.Get("missing")
	assert.False(t, ok)
}

func TestStoreExpiry(t *testing.T) {
	t.Parallel()

	expired := make(chan *triggers.Session, 1)
	st := triggers.NewStore(20*time.Millisecond, func(s *triggers.Session) { expired <- s })
	defer st.Close()

	s := st.Create("owner", "chan", triggers.NewPaginator(nil, nil))

	select {
	case got := <-expired:
		assert.Equal(t, s.ID, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not expire")
	}

	_, ok := st.Get(s.ID)
	assert.False(t, ok)
	assert.Zero(t, st.Len())
}

func TestStoreClose(t *testing.T) {
	t.Parallel()

	called := make(chan struct{}, 1)
	st := triggers.NewStore(50*time.Millisecond, func(*triggers.Session) { called <- struct{}{} })
	st.Create("owner", "chan", triggers.NewPaginator(nil, nil))
	st.Close()

	select {
	case <-called:
		t.Fatal("closed store ran an expiry callback")
	case <-time.After(150 * time.Millisecond):
	}
	assert.Zero(t, st.Len())
}

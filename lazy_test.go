package nasc

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Lazy cycle: LazyA -> LazyB -lazy-> LazyA
type LazyA struct {
	B *LazyB `inject:""`
}

type LazyB struct {
	A *Lazy[*LazyA] `inject:"lazy"`
}

type LazyTransportUser struct {
	Transport *Lazy[Transport] `inject:"lazy"`
}

type LazyGreeting struct {
	Greeting *Lazy[string] `inject:"lazy,name=greeting"`
}

type MalformedLazy struct {
	A *LazyA `inject:"lazy"`
}

// LazyWarmup resolves its lazy dependency from its own Initialize hook.
type LazyWarmup struct {
	Peer *Lazy[*WarmupPeer] `inject:"lazy"`
	peer *WarmupPeer
}

func (w *LazyWarmup) Initialize() error {
	p, err := w.Peer.Get()
	if err != nil {
		return err
	}
	w.peer = p
	return nil
}

type WarmupPeer struct {
	Owner *LazyWarmup `inject:""`
}

// LateReader reads, from its Initialize, a handle that an earlier call
// created and left unresolved.
type LateReader struct {
	B *LazyB `inject:""`
	a *LazyA
}

func (r *LateReader) Initialize() error {
	a, err := r.B.A.Get()
	if err != nil {
		return err
	}
	r.a = a
	return nil
}

type FailingLateReader struct {
	B *LazyB `inject:""`
}

func (r *FailingLateReader) Initialize() error {
	if _, err := r.B.A.Get(); err != nil {
		return err
	}
	return errInitFailed
}

// SelfReader reaches itself through its peer's lazy handle on Initialize.
type SelfReader struct {
	Peer *SelfReaderPeer `inject:""`
	self *SelfReader
}

func (r *SelfReader) Initialize() error {
	self, err := r.Peer.Owner.Get()
	if err != nil {
		return err
	}
	r.self = self
	return nil
}

type SelfReaderPeer struct {
	Owner *Lazy[*SelfReader] `inject:"lazy"`
}

// Bootstrapper resolves from the container inside its own Initialize.
type Bootstrapper struct {
	Container *Nasc `inject:"name=container"`
	audit     *AuditLog
}

func (b *Bootstrapper) Initialize() error {
	audit, err := Resolve[*AuditLog](b.Container)
	if err != nil {
		return err
	}
	b.audit = audit
	return nil
}

type OptionalMalformedLazy struct {
	A *LazyA `inject:"lazy,optional"`
}

// within fails the test if fn does not return in time.
func within(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("resolution did not return; the container is blocked")
	}
}

func TestLazy_BreaksCycle(t *testing.T) {
	container := New()

	a, err := Resolve[*LazyA](container)
	require.NoError(t, err)
	require.NotNil(t, a.B)
	require.NotNil(t, a.B.A)
	assert.False(t, a.B.A.Resolved(), "lazy edges are not resolved eagerly")

	resolved, err := a.B.A.Get()
	require.NoError(t, err)
	assert.Same(t, a, resolved)
	assert.Same(t, a.B, resolved.B, "identity is preserved across the handle")
	assert.True(t, a.B.A.Resolved())
}

func TestLazy_EnteredFromLazySide(t *testing.T) {
	container := New()

	b, err := Resolve[*LazyB](container)
	require.NoError(t, err)
	assert.False(t, b.A.Resolved())

	a := b.A.MustGet()
	assert.Same(t, b, a.B)

	canonical, err := Resolve[*LazyA](container)
	require.NoError(t, err)
	assert.Same(t, canonical, a)
}

func TestLazy_InterfaceTarget(t *testing.T) {
	container := New(WithDefault((*Transport)(nil), (*QueueTransport)(nil)))

	user, err := Resolve[*LazyTransportUser](container)
	require.NoError(t, err)

	transport, err := user.Transport.Get()
	require.NoError(t, err)

	canonical, err := Resolve[Transport](container)
	require.NoError(t, err)
	assert.Same(t, canonical, transport)
}

func TestLazy_KeyedBinding(t *testing.T) {
	container := New()
	require.NoError(t, container.RegisterKeyed("greeting", "hello"))

	g, err := Resolve[*LazyGreeting](container)
	require.NoError(t, err)
	assert.True(t, g.Greeting.Resolved())
	assert.Equal(t, "hello", g.Greeting.MustGet())
}

func TestLazy_KeyedBindingTypeMismatch(t *testing.T) {
	container := New()
	require.NoError(t, container.RegisterKeyed("greeting", 1))

	_, err := container.GetInstance((*LazyGreeting)(nil))
	var assignment *AssignmentError
	assert.ErrorAs(t, err, &assignment)
}

func TestLazy_MalformedField(t *testing.T) {
	container := New()

	_, err := container.GetInstance((*MalformedLazy)(nil))
	var resolution *ResolutionError
	require.ErrorAs(t, err, &resolution)
	assert.Equal(t, "A", resolution.Name)
}

func TestLazy_FailureIsNotRemembered(t *testing.T) {
	container := New()

	user, err := Resolve[*LazyTransportUser](container)
	require.NoError(t, err)

	_, err = user.Transport.Get()
	var unbound *UnboundInterfaceError
	require.ErrorAs(t, err, &unbound)
	assert.False(t, user.Transport.Resolved())

	require.NoError(t, container.RegisterImplementation((*Transport)(nil), (*SMTPTransport)(nil)))
	transport, err := user.Transport.Get()
	require.NoError(t, err)
	assert.IsType(t, &SMTPTransport{}, transport)
}

func TestLazy_GetFromInitializeDuringResolution(t *testing.T) {
	container := New()

	w, err := Resolve[*LazyWarmup](container)
	require.NoError(t, err)
	require.NotNil(t, w.peer)
	assert.Same(t, w, w.peer.Owner)
	assert.True(t, w.Peer.Resolved())

	peer, err := Resolve[*WarmupPeer](container)
	require.NoError(t, err)
	assert.Same(t, peer, w.peer)
}

func TestLazy_EachOwnerHasItsOwnHandle(t *testing.T) {
	container := New()

	first := &LazyB{}
	second := &LazyB{}
	require.NoError(t, container.DecorateInstance(first))
	require.NoError(t, container.DecorateInstance(second))
	assert.NotSame(t, first.A, second.A)

	a1 := first.A.MustGet()
	assert.False(t, second.A.Resolved())
	assert.Same(t, a1, second.A.MustGet())
}

func TestLazy_Of(t *testing.T) {
	l := Of(42)
	assert.True(t, l.Resolved())

	v, err := l.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestLazy_Unbound(t *testing.T) {
	var l Lazy[*LazyA]

	_, err := l.Get()
	assert.ErrorIs(t, err, ErrUnboundLazy)
	assert.Panics(t, func() { l.MustGet() })
}

func TestLazy_ResolvedCounter(t *testing.T) {
	container := New()

	b, err := Resolve[*LazyB](container)
	require.NoError(t, err)
	b.A.MustGet()
	b.A.MustGet()

	assert.Equal(t, int64(1), container.stats.lazy.Count())
}

func TestLazy_GetFromLaterCallInitialize(t *testing.T) {
	container := New()

	b, err := Resolve[*LazyB](container)
	require.NoError(t, err)
	require.False(t, b.A.Resolved())

	var (
		reader *LateReader
		rerr   error
	)
	within(t, func() {
		reader, rerr = Resolve[*LateReader](container)
	})
	require.NoError(t, rerr)
	require.NotNil(t, reader.a)
	assert.Same(t, b, reader.B)
	assert.Same(t, b, reader.a.B)
	assert.True(t, b.A.Resolved())

	canonical, err := Resolve[*LazyA](container)
	require.NoError(t, err)
	assert.Same(t, canonical, reader.a)
}

func TestLazy_GetFromLaterCallRolledBackWithIt(t *testing.T) {
	container := New()

	_, err := Resolve[*LazyB](container)
	require.NoError(t, err)

	within(t, func() {
		_, err = container.GetInstance((*FailingLateReader)(nil))
	})
	assert.ErrorIs(t, err, errInitFailed)

	_, cached := container.singletons.get(reflect.TypeOf(&LazyA{}))
	assert.False(t, cached, "instances built for the failed call are evicted")
	_, cached = container.singletons.get(reflect.TypeOf(&LazyB{}))
	assert.True(t, cached, "instances of earlier calls survive")
}

func TestLazy_TargetInitializeReadsSameHandle(t *testing.T) {
	container := New()

	peer, err := Resolve[*SelfReaderPeer](container)
	require.NoError(t, err)

	within(t, func() {
		_, err = peer.Owner.Get()
	})
	var cycle *CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.False(t, peer.Owner.Resolved())

	_, cached := container.singletons.get(reflect.TypeOf(&SelfReader{}))
	assert.False(t, cached)
}

func TestLazy_OwnerInitializeReadsPeerHandle(t *testing.T) {
	container := New()

	var (
		r   *SelfReader
		err error
	)
	within(t, func() {
		r, err = Resolve[*SelfReader](container)
	})
	require.NoError(t, err)
	assert.Same(t, r, r.self)
	assert.Same(t, r, r.Peer.Owner.MustGet())
}

func TestResolve_FromInitializeJoinsRunningCall(t *testing.T) {
	container := New()
	require.NoError(t, container.RegisterKeyed("container", container))

	var (
		b   *Bootstrapper
		err error
	)
	within(t, func() {
		b, err = Resolve[*Bootstrapper](container)
	})
	require.NoError(t, err)

	audit, err := Resolve[*AuditLog](container)
	require.NoError(t, err)
	assert.Same(t, audit, b.audit)
}

func TestLazy_ConcurrentGet(t *testing.T) {
	container := New()

	b, err := Resolve[*LazyB](container)
	require.NoError(t, err)

	const goroutines = 8
	results := make([]*LazyA, goroutines)
	errs := make([]error, goroutines)
	within(t, func() {
		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = b.A.Get()
			}(i)
		}
		wg.Wait()
	})

	for i := range results {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
}

func TestLazy_MalformedOptionalFieldIsReported(t *testing.T) {
	container := New()

	_, err := container.GetInstance((*OptionalMalformedLazy)(nil))
	var resolution *ResolutionError
	require.ErrorAs(t, err, &resolution)
	assert.Equal(t, "A", resolution.Name)
	assert.ErrorIs(t, err, errMalformedLazy)
}

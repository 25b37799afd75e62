//go:build linux || darwin

package alloc

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// testReservation keeps test heaps small so a leaked allocator costs little.
const testReservation = 64 << 20

// newTestAllocator returns an allocator on the system provider that is
// reset when the test ends.
func newTestAllocator(t testing.TB) *Allocator {
	t.Helper()
	a := New(&Options{Reservation: testReservation})
	t.Cleanup(func() { _ = a.Reset() })
	return a
}

// assertInvariants fails the test when the directory is inconsistent.
func assertInvariants(t testing.TB, a *Allocator) {
	t.Helper()
	require.NoError(t, a.Verify())
}

// fill writes b over the first n bytes of ptr.
func fill(ptr unsafe.Pointer, n uintptr, b byte) {
	buf := Bytes(ptr, n)
	for i := range buf {
		buf[i] = b
	}
}

// requireFilled fails unless the first n bytes of ptr all equal b.
func requireFilled(t testing.TB, ptr unsafe.Pointer, n uintptr, b byte) {
	t.Helper()
	for i, got := range Bytes(ptr, n) {
		if got != b {
			t.Fatalf("byte %d at %p: got %#x, want %#x", i, ptr, got, b)
		}
	}
}

// blockAt returns the snapshot entry whose payload is ptr.
func blockAt(t testing.TB, a *Allocator, ptr unsafe.Pointer) BlockInfo {
	t.Helper()
	for _, bi := range a.Blocks() {
		if bi.Payload == uintptr(ptr) {
			return bi
		}
	}
	t.Fatalf("no block with payload %p", ptr)
	return BlockInfo{}
}

// primedRemainder is the size of the free block left behind when the first
// heap request of size bytes primes a heap with the given threshold.
func primedRemainder(threshold, size uintptr) uintptr {
	return threshold - 2*HeaderSize - size
}

var errInjected = errors.New("injected failure")

// faultyProvider wraps a real provider and fails selected primitives on
// demand.
type faultyProvider struct {
	Provider
	failExtend bool
	failMap    bool
	failUnmap  bool
	releases   int
}

func (p *faultyProvider) ExtendHeap(delta uintptr) (uintptr, error) {
	if p.failExtend {
		return 0, errInjected
	}
	return p.Provider.ExtendHeap(delta)
}

func (p *faultyProvider) MapAnonymous(size uintptr) (uintptr, error) {
	if p.failMap {
		return 0, errInjected
	}
	return p.Provider.MapAnonymous(size)
}

func (p *faultyProvider) Unmap(base, size uintptr) error {
	if p.failUnmap {
		return errInjected
	}
	return p.Provider.Unmap(base, size)
}

func (p *faultyProvider) Release() error {
	p.releases++
	return p.Provider.Release()
}

// newFaultyAllocator returns an allocator whose provider can be told to
// fail, along with that provider.
func newFaultyAllocator(t testing.TB, opts *Options) (*Allocator, *faultyProvider) {
	t.Helper()
	real, err := NewSystemProvider(testReservation)
	require.NoError(t, err)
	fp := &faultyProvider{Provider: real}

	var o Options
	if opts != nil {
		o = *opts
	}
	o.NewProvider = func() (Provider, error) { return fp, nil }
	a := New(&o)
	t.Cleanup(func() {
		fp.failUnmap = false
		_ = a.Reset()
	})
	return a, fp
}

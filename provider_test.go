package sheetgrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phroun/sheetgrid/software"
)

type subscribableProvider struct {
	mapProvider
	subs []func(ProviderUpdate)
}

func (p *subscribableProvider) Subscribe(fn func(ProviderUpdate)) Unsubscribe {
	p.subs = append(p.subs, fn)
	idx := len(p.subs) - 1
	return func() { p.subs[idx] = nil }
}

func (p *subscribableProvider) publish(u ProviderUpdate) {
	for _, fn := range p.subs {
		if fn != nil {
			fn(u)
		}
	}
}

func TestGridRendererSubscribesToProviderUpdates(t *testing.T) {
	provider := &subscribableProvider{mapProvider: *newMapProvider()}
	rows, _ := NewVariableSizeAxis(20, 50)
	cols, _ := NewVariableSizeAxis(80, 50)
	r := NewGridRenderer(provider, rows, cols, software.Engine{}, DefaultRendererOptions())

	surfaces, err := software.Factory{}.CreateSurfaces(400, 300, 1)
	require.NoError(t, err)
	require.NoError(t, r.Attach(surfaces, stubScheduler{}))
	r.Resize(400, 300, 1)

	require.Len(t, provider.subs, 1)
	provider.publish(ProviderUpdate{Kind: UpdateInvalidateRange, Range: CellRange{StartRow: 0, EndRow: 2, StartCol: 0, EndCol: 2}})
	assert.False(t, r.dirtyFg.IsEmpty())
}

func TestGridRendererDestroyUnsubscribesFromProvider(t *testing.T) {
	provider := &subscribableProvider{mapProvider: *newMapProvider()}
	rows, _ := NewVariableSizeAxis(20, 50)
	cols, _ := NewVariableSizeAxis(80, 50)
	r := NewGridRenderer(provider, rows, cols, software.Engine{}, DefaultRendererOptions())
	r.Destroy()

	for _, fn := range provider.subs {
		assert.Nil(t, fn)
	}
}

func TestSubscribeViewportFiresOnLayoutChangeNotScroll(t *testing.T) {
	rows, _ := NewVariableSizeAxis(20, 50)
	cols, _ := NewVariableSizeAxis(80, 50)
	r := NewGridRenderer(newMapProvider(), rows, cols, software.Engine{}, DefaultRendererOptions())
	surfaces, err := software.Factory{}.CreateSurfaces(400, 300, 1)
	require.NoError(t, err)
	require.NoError(t, r.Attach(surfaces, stubScheduler{}))

	calls := 0
	unsub := r.SubscribeViewport(func(ViewportState) { calls++ }, SubscribeViewportOptions{})
	defer unsub()

	r.Resize(400, 300, 1)
	assert.Equal(t, 1, calls)

	r.SetScroll(10, 10)
	assert.Equal(t, 1, calls, "scroll alone must not fire a viewport subscription")
}

package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingPool(backends map[string]*stubBackend, dials *int) *Pool {
	return NewPool(map[uint64]string{1: "mainnet", 137: "polygon", 5: "liar"}, func(_ context.Context, url string) (Backend, error) {
		*dials++
		b, ok := backends[url]
		if !ok {
			return nil, errors.New("connection refused")
		}
		return b, nil
	})
}

func TestPool_GetReusesConnection(t *testing.T) {
	polygon := &stubBackend{chainID: big.NewInt(137)}
	var dials int
	p := countingPool(map[string]*stubBackend{"polygon": polygon}, &dials)

	first, err := p.Get(context.Background(), 137)
	require.NoError(t, err)
	second, err := p.Get(context.Background(), 137)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, dials)
	assert.True(t, p.Has(137))
	assert.False(t, p.Has(10))
}

func TestPool_RejectsUnknownAndMislabelledChains(t *testing.T) {
	liar := &stubBackend{chainID: big.NewInt(11155111)}
	var dials int
	p := countingPool(map[string]*stubBackend{"liar": liar}, &dials)

	_, err := p.Get(context.Background(), 10)
	assert.Equal(t, KindWrongChain, Classify(err))
	assert.Equal(t, 0, dials)

	_, err = p.Get(context.Background(), 5)
	assert.Equal(t, KindWrongChain, Classify(err))
	assert.True(t, liar.closed)

	_, err = p.Get(context.Background(), 1)
	assert.ErrorContains(t, err, "connection refused")
}

func TestPool_Close(t *testing.T) {
	polygon := &stubBackend{chainID: big.NewInt(137)}
	mainnet := &stubBackend{chainID: big.NewInt(1)}
	var dials int
	p := countingPool(map[string]*stubBackend{"polygon": polygon, "mainnet": mainnet}, &dials)

	_, err := p.Get(context.Background(), 137)
	require.NoError(t, err)
	_, err = p.Get(context.Background(), 1)
	require.NoError(t, err)

	p.Close()
	p.Close()
	assert.True(t, polygon.closed)
	assert.True(t, mainnet.closed)

	_, err = p.Get(context.Background(), 137)
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPool_Ping(t *testing.T) {
	mainnet := &stubBackend{chainID: big.NewInt(1)}
	var dials int
	p := countingPool(map[string]*stubBackend{"mainnet": mainnet}, &dials)
	assert.NoError(t, p.Ping(context.Background()))

	empty := NewPool(nil, nil)
	assert.Error(t, empty.Ping(context.Background()))
}

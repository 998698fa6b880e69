/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package pool

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"dirpx.dev/osreason/oserr"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNew_RejectsEmpty(t *testing.T) {
	_, err := New(0)
	require.ErrorIs(t, err, oserr.ErrInvalidArgument)
}

func TestAcquireRelease(t *testing.T) {
	p, err := New(2)
	require.NoError(t, err)

	a, ok := p.TryAcquire()
	require.True(t, ok)
	b, err := p.Acquire(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.Equal(t, 2, p.InUse())

	_, ok = p.TryAcquire()
	require.False(t, ok, "exhausted pool must fail fast")

	p.Release(a)
	require.Equal(t, 1, p.InUse())
	c, ok := p.TryAcquire()
	require.True(t, ok)
	require.Equal(t, a, c)
}

func TestAcquire_TimesOutAsOutOfMemory(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)
	_, ok := p.TryAcquire()
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = p.Acquire(ctx)
	require.ErrorIs(t, err, oserr.ErrOutOfMemory)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestAcquire_WakesOnRelease(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)
	held, _ := p.TryAcquire()

	var wg sync.WaitGroup
	got := make(chan int, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		i, err := p.Acquire(context.Background())
		if err == nil {
			got <- i
		}
	}()

	time.Sleep(5 * time.Millisecond)
	p.Release(held)
	wg.Wait()
	require.Equal(t, held, <-got)
}

func TestRelease_PanicsOnMisuse(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)
	require.Panics(t, func() { p.Release(0) }, "releasing a free index")
	require.Panics(t, func() { p.Release(5) }, "releasing an out-of-range index")
}

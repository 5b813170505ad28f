package so

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	loader := newFakeLoader()
	loader.add("init.maq", InitLoadAddress, []byte{1, 2, 3})
	k, bus, _, _ := newTestKernel(testConfig(), loader)

	k.HandleInterrupt(IRQReset)
	cur := k.current
	cur.Metrics.ReadyTime = 7
	cur.Priority = 0.42
	k.metrics.TotalRuntime = 123
	k.metrics.IRQCounts[IRQReset] = 1

	data, err := k.Snapshot()
	require.NoError(t, err)

	k2, _, _, _ := newTestKernel(testConfig(), loader)
	// Point k2 at the original kernel's bus: Restore replaces scheduling
	// state only and never reads or writes the bus.
	k2.bus = bus

	require.NoError(t, k2.Restore(data))

	require.NotNil(t, k2.current)
	assert.Equal(t, cur.PID, k2.current.PID)
	assert.Equal(t, cur.PC, k2.current.PC)
	assert.InDelta(t, 0.42, k2.current.Priority, 1e-9)
	assert.Equal(t, 7, k2.current.Metrics.ReadyTime)
	assert.Equal(t, 123, k2.metrics.TotalRuntime)
	assert.Equal(t, 1, k2.metrics.IRQCounts[IRQReset])
	assert.Equal(t, 2, k2.table.nextPID)
}

func TestRestoreRejectsBadVersion(t *testing.T) {
	k := &Kernel{config: testConfig()}
	err := k.Restore([]byte{99})
	assert.Error(t, err)
}

func TestSnapshotPreservesReadyQueueMembership(t *testing.T) {
	k := &Kernel{
		config: testConfig(),
		table:  newProcessTable(4),
		ready:  newReadyQueue(),
	}
	d, err := k.table.create(10)
	require.NoError(t, err)
	k.ready.Enqueue(d)

	data, err := k.Snapshot()
	require.NoError(t, err)

	k2 := &Kernel{config: testConfig()}
	require.NoError(t, k2.Restore(data))

	assert.Equal(t, 1, k2.ready.Len())
	assert.Equal(t, d.PID, k2.ready.items[0].PID)
}

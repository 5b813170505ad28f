package so

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

// snapshotVersion is incremented whenever the binary layout changes.
// Grounded on the teacher's cpuSerializeVersion byte-versioning scheme.
const snapshotVersion = 1

// Snapshot captures the kernel's mutable scheduling state — current
// descriptor, quantum, clock reading, fatal flag, global metrics, and every
// process descriptor — as a single binary blob. It does not capture the
// Bus/IOBus/Clock/Loader collaborators; Restore applies a snapshot onto a
// Kernel already wired to the collaborators it should keep using. This
// exists for regression tests and offline diagnostics, the same role the
// teacher's CPU.Serialize/Deserialize pair served for stepping the CPU
// through a recorded instruction trace.
func (k *Kernel) Snapshot() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(snapshotVersion)

	currentPID := int32(0)
	if k.current != nil {
		currentPID = int32(k.current.PID)
	}
	for _, v := range []int32{currentPID, int32(k.quantum), int32(k.prevClock)} {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(boolByte(k.fatal))

	if err := binary.Write(&buf, binary.BigEndian, int32(k.metrics.TotalRuntime)); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, int32(k.metrics.TotalIdleTime)); err != nil {
		return nil, err
	}
	for _, c := range k.metrics.IRQCounts {
		if err := binary.Write(&buf, binary.BigEndian, int32(c)); err != nil {
			return nil, err
		}
	}

	descriptors := k.table.All()
	if err := binary.Write(&buf, binary.BigEndian, int32(len(descriptors))); err != nil {
		return nil, err
	}
	for _, d := range descriptors {
		if err := writeDescriptor(&buf, d); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func writeDescriptor(buf *bytes.Buffer, d *ProcessDescriptor) error {
	fields := []int32{
		int32(d.PID), int32(d.PC), int32(d.A), int32(d.X),
		int32(d.TargetPID), int32(d.Terminal),
	}
	for _, v := range fields {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			return err
		}
	}
	buf.WriteByte(byte(d.Mode))
	buf.WriteByte(byte(d.State))
	buf.WriteByte(byte(d.Reason))
	if err := binary.Write(buf, binary.BigEndian, math.Float64bits(d.Priority)); err != nil {
		return err
	}

	metrics := []int32{
		int32(d.Metrics.ReturnTime), int32(d.Metrics.Preemptions),
		int32(d.Metrics.ReadyCount), int32(d.Metrics.ReadyTime),
		int32(d.Metrics.RunningCount), int32(d.Metrics.RunningTime),
		int32(d.Metrics.BlockedCount), int32(d.Metrics.BlockedTime),
	}
	for _, v := range metrics {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			return err
		}
	}
	return nil
}

// Restore applies a snapshot produced by Snapshot onto k, replacing its
// process table, ready queue, current descriptor, quantum, clock reading,
// fatal flag, and metrics. The ready queue is rebuilt from scratch:
// everything READY is re-enqueued in table order, since FIFO position
// itself isn't captured by the snapshot.
func (k *Kernel) Restore(data []byte) error {
	r := bytes.NewReader(data)
	version, err := r.ReadByte()
	if err != nil {
		return err
	}
	if version != snapshotVersion {
		return errors.New("so: unsupported snapshot version")
	}

	var currentPID, quantum, prevClock int32
	for _, v := range []*int32{&currentPID, &quantum, &prevClock} {
		if err := binary.Read(r, binary.BigEndian, v); err != nil {
			return err
		}
	}
	fatalByte, err := r.ReadByte()
	if err != nil {
		return err
	}

	var totalRuntime, totalIdle int32
	if err := binary.Read(r, binary.BigEndian, &totalRuntime); err != nil {
		return err
	}
	if err := binary.Read(r, binary.BigEndian, &totalIdle); err != nil {
		return err
	}
	var irqCounts [irqKindCount]int32
	for i := range irqCounts {
		if err := binary.Read(r, binary.BigEndian, &irqCounts[i]); err != nil {
			return err
		}
	}

	var count int32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return err
	}

	table := newProcessTable(k.config.MaxProcesses)
	ready := newReadyQueue()
	var current *ProcessDescriptor
	maxPID := 0

	for i := int32(0); i < count; i++ {
		d, err := readDescriptor(r)
		if err != nil {
			return err
		}
		table.slots = append(table.slots, d)
		if d.PID > maxPID {
			maxPID = d.PID
		}
		if d.State == Ready {
			ready.Enqueue(d)
		}
		if d.PID == int(currentPID) {
			current = d
		}
	}
	table.nextPID = maxPID + 1

	k.table = table
	k.ready = ready
	k.current = current
	k.quantum = int(quantum)
	k.prevClock = int(prevClock)
	k.fatal = fatalByte != 0
	k.metrics = GlobalMetrics{
		TotalRuntime:  int(totalRuntime),
		TotalIdleTime: int(totalIdle),
	}
	for i := range irqCounts {
		k.metrics.IRQCounts[i] = int(irqCounts[i])
	}
	return nil
}

func readDescriptor(r *bytes.Reader) (*ProcessDescriptor, error) {
	var pid, pc, a, x, targetPID, terminal int32
	for _, v := range []*int32{&pid, &pc, &a, &x, &targetPID, &terminal} {
		if err := binary.Read(r, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}
	mode, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	state, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	reason, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	var priorityBits uint64
	if err := binary.Read(r, binary.BigEndian, &priorityBits); err != nil {
		return nil, err
	}

	d := &ProcessDescriptor{
		PID:       int(pid),
		PC:        int(pc),
		A:         int(a),
		X:         int(x),
		Mode:      Mode(mode),
		State:     ProcessState(state),
		Reason:    BlockReason(reason),
		TargetPID: int(targetPID),
		Terminal:  int(terminal),
		Priority:  math.Float64frombits(priorityBits),
	}

	metrics := make([]*int32, 8)
	values := make([]int32, 8)
	for i := range values {
		metrics[i] = &values[i]
	}
	for _, v := range metrics {
		if err := binary.Read(r, binary.BigEndian, v); err != nil {
			return nil, err
		}
	}
	d.Metrics = ProcessMetrics{
		ReturnTime:   int(values[0]),
		Preemptions:  int(values[1]),
		ReadyCount:   int(values[2]),
		ReadyTime:    int(values[3]),
		RunningCount: int(values[4]),
		RunningTime:  int(values[5]),
		BlockedCount: int(values[6]),
		BlockedTime:  int(values[7]),
	}
	return d, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

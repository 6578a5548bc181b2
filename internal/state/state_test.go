package state

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMachine(t *testing.T) {
	errFailed := errors.New("failed")
	tests := []struct {
		name           string
		steps          func(m *Machine)
		expectedStatus Status
		expectedErr    error
	}{
		{
			name:           "given new machine should be idle",
			steps:          func(m *Machine) {},
			expectedStatus: StatusIdle,
		},
		{
			name:           "given in flight request should be mutating",
			steps:          func(m *Machine) { m.Begin() },
			expectedStatus: StatusMutating,
		},
		{
			name: "given successful request should be synced",
			steps: func(m *Machine) {
				m.Begin()
				m.Succeed()
			},
			expectedStatus: StatusSynced,
		},
		{
			name: "given failed request should be error",
			steps: func(m *Machine) {
				m.Begin()
				m.Fail(errFailed)
			},
			expectedStatus: StatusError,
			expectedErr:    errFailed,
		},
		{
			name: "given overlapping requests should stay mutating until both settle",
			steps: func(m *Machine) {
				m.Begin()
				m.Begin()
				m.Fail(errFailed)
			},
			expectedStatus: StatusMutating,
			expectedErr:    errFailed,
		},
		{
			name: "given last response succeeds should clear error",
			steps: func(m *Machine) {
				m.Begin()
				m.Begin()
				m.Fail(errFailed)
				m.Succeed()
			},
			expectedStatus: StatusSynced,
		},
		{
			name: "given abandoned request should keep previous outcome",
			steps: func(m *Machine) {
				m.Begin()
				m.Fail(errFailed)
				m.Begin()
				m.Abandon()
			},
			expectedStatus: StatusError,
			expectedErr:    errFailed,
		},
		{
			name: "given abandoned first request should return to idle",
			steps: func(m *Machine) {
				m.Begin()
				m.Abandon()
			},
			expectedStatus: StatusIdle,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := NewMachine()
			test.steps(&m)

			assert.Equal(t, test.expectedStatus, m.Status())
			assert.Equal(t, test.expectedErr, m.Err())
		})
	}
}

func TestMachineSettleWithoutBeginPanics(t *testing.T) {
	m := NewMachine()
	assert.Panics(t, func() { m.Succeed() })
}

func TestBroadcaster(t *testing.T) {
	b := Broadcaster[int]{}
	got := []int{}
	unsubscribe := b.Subscribe(func(v int) { got = append(got, v) })
	b.Subscribe(func(v int) { got = append(got, v*10) })

	b.Publish(1)
	unsubscribe()
	unsubscribe()
	b.Publish(2)

	assert.Equal(t, []int{1, 10, 20}, got)
	assert.Equal(t, 1, b.Len())
}

func TestBroadcasterPublishVersion(t *testing.T) {
	tests := []struct {
		name     string
		versions []uint64
		expected []int
	}{
		{name: "given increasing versions should deliver all", versions: []uint64{1, 2, 3}, expected: []int{1, 2, 3}},
		{name: "given stale version should skip it", versions: []uint64{1, 3, 2}, expected: []int{1, 3}},
		{name: "given repeated version should deliver once", versions: []uint64{4, 4}, expected: []int{4}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := Broadcaster[int]{}
			got := []int{}
			b.Subscribe(func(v int) { got = append(got, v) })

			for _, v := range test.versions {
				b.PublishVersion(v, int(v))
			}

			assert.Equal(t, test.expected, got)
		})
	}
}

func TestBroadcasterPublishVersionConcurrent(t *testing.T) {
	b := Broadcaster[uint64]{}
	entered := make(chan struct{})
	release := make(chan struct{})
	b.Subscribe(func(v uint64) {
		if v == 1 {
			close(entered)
			<-release
		}
	})
	var last uint64
	b.Subscribe(func(v uint64) { last = v })

	wg := sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.PublishVersion(1, 1)
	}()
	<-entered
	go func() {
		defer wg.Done()
		b.PublishVersion(2, 2)
	}()
	close(release)
	wg.Wait()

	assert.Equal(t, uint64(2), last)
}

func TestMachineHasSynced(t *testing.T) {
	m := NewMachine()
	m.Begin()
	m.Fail(errors.New("failed"))
	assert.False(t, m.HasSynced())

	m.Begin()
	m.Succeed()
	m.Begin()
	m.Fail(errors.New("failed"))
	assert.True(t, m.HasSynced())
}

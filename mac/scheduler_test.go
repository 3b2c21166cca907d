package mac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerBroadcastFIFO(t *testing.T) {
	var s Scheduler
	s.ScheduleBroadcast(ScheduledMessage{Data: []byte{1}})
	s.ScheduleBroadcast(ScheduledMessage{Data: []byte{2}})

	assert.True(t, s.HasBroadcastScheduled())
	first, ok := s.TakeScheduledBroadcast()
	require.True(t, ok)
	assert.Equal(t, []byte{1}, first.Data)

	second, ok := s.TakeScheduledBroadcast()
	require.True(t, ok)
	assert.Equal(t, []byte{2}, second.Data)

	assert.False(t, s.HasBroadcastScheduled())
}

func TestSchedulerBroadcastPriorityPreempts(t *testing.T) {
	var s Scheduler
	s.ScheduleBroadcast(ScheduledMessage{Data: []byte{1}})
	s.ScheduleBroadcastPriority(ScheduledMessage{Data: []byte{99}})

	first, ok := s.TakeScheduledBroadcast()
	require.True(t, ok)
	assert.Equal(t, []byte{99}, first.Data)
}

func TestSchedulerBroadcastCapacityPanics(t *testing.T) {
	var s Scheduler
	for i := 0; i < BroadcastQueueCapacity; i++ {
		s.ScheduleBroadcast(ScheduledMessage{})
	}
	assert.Panics(t, func() {
		s.ScheduleBroadcast(ScheduledMessage{})
	})
}

func TestSchedulerDataRequestModeSeparation(t *testing.T) {
	var s Scheduler
	s.ScheduleDataRequest(ScheduledDataRequest{Mode: DataRequestInSuperframe})
	s.ScheduleDataRequest(ScheduledDataRequest{Mode: DataRequestIndependent})

	_, ok := s.TakeSuperframeDataRequest()
	require.True(t, ok)
	_, ok = s.TakeSuperframeDataRequest()
	assert.False(t, ok)

	_, ok = s.TakeIndependentDataRequest()
	require.True(t, ok)
	_, ok = s.TakeIndependentDataRequest()
	assert.False(t, ok)
}

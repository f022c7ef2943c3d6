package rabbit

import (
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

func TestRetryCount(t *testing.T) {
	assert.Equal(t, 0, retryCount(nil))
	assert.Equal(t, 0, retryCount(amqp.Table{}))
	assert.Equal(t, 0, retryCount(amqp.Table{retryHeader: "3"}))
	assert.Equal(t, 3, retryCount(amqp.Table{retryHeader: int32(3)}))
	assert.Equal(t, 4, retryCount(amqp.Table{retryHeader: int64(4)}))
}

func TestRetryDelay_BacksOffAndCaps(t *testing.T) {
	assert.Equal(t, time.Second, retryDelay(0))
	assert.Equal(t, 2*time.Second, retryDelay(1))
	assert.Equal(t, 8*time.Second, retryDelay(3))
	assert.Equal(t, 30*time.Second, retryDelay(MaxDeliveryRetries))
	assert.Equal(t, 30*time.Second, retryDelay(50))

	for n := range MaxDeliveryRetries {
		assert.Positive(t, retryDelay(n), "attempt %d must wait before requeueing", n)
	}
}

func TestTopology_ParksDeadJobsOutsideTheLiveBinding(t *testing.T) {
	top := Topology()

	queues := map[string]string{}
	for _, b := range top.Bindings {
		queues[b.Queue] = b.Key
	}
	assert.Equal(t, types.BindingNotifyAll, queues[types.QueueContactNotifications])
	assert.Equal(t, types.RoutingDeadNotification, queues[types.QueueDeadNotifications])
	assert.NotContains(t, types.RoutingDeadNotification, "notify.", "dead jobs must not route back to the live queue")
}

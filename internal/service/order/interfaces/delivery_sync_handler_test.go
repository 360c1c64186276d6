package interfaces

import (
	"context"
	"testing"
	"time"

	"bazaar/internal/pkg/mq"
)

// Stop 与消费循环并发访问停止标志,用例在 -race 下验证收敛与无竞态。
// reader 指向不可达的 broker: 循环只会在取消息失败和检查停止标志之间打转。
func TestDeliverySyncConsumer_StopTerminatesLoop(t *testing.T) {
	reader := mq.NewKafkaReader([]string{"127.0.0.1:1"}, "delivery-status-sync", "test-group")
	consumer := NewDeliverySyncConsumerAdapter(reader, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("start consumer: %v", err)
	}

	done := make(chan struct{})
	go func() {
		consumer.Stop(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop after Stop()")
	}
}

package notif

import (
	"context"
	"log"
	"sync"

	"artfolio/internal/common"
)

// FanoutManager is the observer registry every notification event passes
// through. Observer failures are logged and swallowed: the state change that
// triggered the event has already committed and must not be rolled back.
type FanoutManager struct {
	observers    map[string]common.Observer
	eventChannel chan common.NotificationEvent
	workerPool   int
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
	wg           sync.WaitGroup
}

func NewFanoutManager(workerPoolSize, bufferSize int) *FanoutManager {
	ctx, cancel := context.WithCancel(context.Background())

	fm := &FanoutManager{
		observers:    make(map[string]common.Observer),
		eventChannel: make(chan common.NotificationEvent, bufferSize),
		workerPool:   workerPoolSize,
		ctx:          ctx,
		cancel:       cancel,
	}

	for i := 0; i < workerPoolSize; i++ {
		fm.wg.Add(1)
		go fm.processEvents()
	}

	return fm
}

func (fm *FanoutManager) Subscribe(observer common.Observer) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.observers[observer.Name()] = observer
	log.Printf("Observer %s subscribed", observer.Name())
}

func (fm *FanoutManager) Unsubscribe(observer common.Observer) {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	delete(fm.observers, observer.Name())
	log.Printf("Observer %s unsubscribed", observer.Name())
}

func (fm *FanoutManager) Notify(event common.NotificationEvent) {
	fm.mu.RLock()
	observers := make([]common.Observer, 0, len(fm.observers))
	for _, obs := range fm.observers {
		observers = append(observers, obs)
	}
	fm.mu.RUnlock()

	for _, observer := range observers {
		if err := observer.Update(event); err != nil {
			log.Printf("Observer %s update failed: %v", observer.Name(), err)
		}
	}
}

func (fm *FanoutManager) NotifyAsync(event common.NotificationEvent) {
	select {
	case fm.eventChannel <- event:

	case <-fm.ctx.Done():
		return
	default:
		log.Printf("Notification channel full, dropping event: %s", event.Type)
	}
}

func (fm *FanoutManager) processEvents() {
	defer fm.wg.Done()

	for {
		select {
		case event := <-fm.eventChannel:
			fm.Notify(event)
		case <-fm.ctx.Done():
			return
		}
	}
}

func (fm *FanoutManager) Shutdown() {
	fm.cancel()
	fm.wg.Wait()
	log.Println("FanoutManager shutdown complete")
}

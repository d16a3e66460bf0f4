package service

import (
	"log"
	"sync"
	"time"

	"github.com/cuceimatch/matchcore/internal/model"
	"github.com/google/uuid"
)

const defaultSubscriberBuffer = 16

// Hub - 코어 이벤트를 프레젠테이션 레이어로 전달하는 pub/sub
//
// Publish는 블로킹하지 않음: 버퍼가 찬 구독자에게는 이벤트를 버리고 로그만 남김
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan model.Event
	nextID int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan model.Event)}
}

// Subscribe - 구독 채널과 해제 함수 반환 (해제 함수는 여러 번 호출해도 안전)
func (h *Hub) Subscribe(buffer int) (<-chan model.Event, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	ch := make(chan model.Event, buffer)
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) Publish(evt model.Event) {
	if h == nil {
		return
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			log.Printf("[Hub] dropping %s event for slow subscriber %d", evt.Type, id)
		}
	}
}

// Package notify fans full Room snapshots out to subscribed clients.
// Subscribers render from the snapshot alone; no deltas are delivered.
package notify

import (
	"sync"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/model"
)

const subscriberBuffer = 16

// Subscription is one client's handle on a room's snapshot stream.
type Subscription struct {
	C chan *model.Room

	notifier *Notifier
	roomID   string
	once     sync.Once
}

// Close cancels the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.notifier.unsubscribe(s)
	})
}

// Notifier is the broadcast hub: a per-room subscriber registry. Publish
// never blocks a writer; a subscriber that cannot keep up loses
// intermediate snapshots but always ends on the latest one.
type Notifier struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers a new subscriber for the room. The caller is
// responsible for delivering the current snapshot first; every subsequent
// mutation arrives on C.
func (n *Notifier) Subscribe(roomID string) *Subscription {
	sub := &Subscription{
		C:        make(chan *model.Room, subscriberBuffer),
		notifier: n,
		roomID:   roomID,
	}
	n.mu.Lock()
	if n.subs[roomID] == nil {
		n.subs[roomID] = make(map[*Subscription]struct{})
	}
	n.subs[roomID][sub] = struct{}{}
	n.mu.Unlock()
	return sub
}

func (n *Notifier) unsubscribe(sub *Subscription) {
	n.mu.Lock()
	if subs, ok := n.subs[sub.roomID]; ok {
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			close(sub.C)
		}
		if len(subs) == 0 {
			delete(n.subs, sub.roomID)
		}
	}
	n.mu.Unlock()
}

// Publish delivers the snapshot to every subscriber of the room. Each
// subscriber gets its own deep copy.
func (n *Notifier) Publish(roomID string, room *model.Room) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for sub := range n.subs[roomID] {
		snap := room.Clone()
		select {
		case sub.C <- snap:
		default:
			// Buffer full: drop the oldest queued snapshot so the
			// subscriber converges on the latest state.
			select {
			case <-sub.C:
			default:
			}
			select {
			case sub.C <- snap:
			default:
			}
		}
	}
}

// CloseRoom drops every subscriber of a deleted room.
func (n *Notifier) CloseRoom(roomID string) {
	n.mu.Lock()
	for sub := range n.subs[roomID] {
		delete(n.subs[roomID], sub)
		close(sub.C)
	}
	delete(n.subs, roomID)
	n.mu.Unlock()
}

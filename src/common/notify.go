package common

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
	"vms/src/db"
	"vms/src/lib"
	"vms/src/models"
	"vms/src/types"
)

// Subscriber receives every lifecycle event the engine publishes. Fan-out to
// specific roles or transports is the subscriber's concern, not the engine's.
type Subscriber func(event types.VisitorEvent)

var (
	subMu       sync.RWMutex
	subscribers []Subscriber
)

func Subscribe(s Subscriber) {
	subMu.Lock()
	defer subMu.Unlock()
	subscribers = append(subscribers, s)
}

// Publish delivers the event to every subscriber in registration order.
// Called only after the originating transaction has committed.
func Publish(event types.VisitorEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	subMu.RLock()
	subs := make([]Subscriber, len(subscribers))
	copy(subs, subscribers)
	subMu.RUnlock()
	for _, s := range subs {
		s(event)
	}
}

// NotificationWriter persists the event as a Notification row for the
// dashboard feed.
func NotificationWriter(event types.VisitorEvent) {
	body := types.JSONB{
		"visitor_id": event.VisitorID,
		"token_id":   event.TokenID,
		"timestamp":  event.Timestamp,
	}
	if event.LocationID != nil {
		body["location_id"] = *event.LocationID
	}
	notification := models.Notification{
		ReferenceSource: "tokens",
		ReferenceType:   "token",
		ReferenceValue:  fmt.Sprint(event.TokenID),
		Title:           string(event.Name),
		ReferenceBody:   &body,
		Type:            string(event.Name),
	}
	db := db.GetDb()
	if err := db.Create(&notification).Error; err != nil {
		log.Printf("Error persisting notification for %s: %s\n", event.Name, err.Error())
	}
}

// PusherFanout pushes the event to the staff channel.
func PusherFanout(event types.VisitorEvent) {
	pc := lib.GetPusherClient()
	if err := pc.Trigger("staff", string(event.Name), event); err != nil {
		log.Printf("Error triggering pusher event %s: %s\n", event.Name, err.Error())
	}
}

// KafkaFanout produces the event to the visitor-events topic.
func KafkaFanout(event types.VisitorEvent) {
	payload := map[string]any{
		"name":       event.Name,
		"visitor_id": event.VisitorID,
		"token_id":   event.TokenID,
		"timestamp":  event.Timestamp,
	}
	if event.LocationID != nil {
		payload["location_id"] = *event.LocationID
	}
	if err := lib.KafkaProduceMessage("visitor-events", payload); err != nil {
		log.Printf("Error producing event %s: %s\n", event.Name, err.Error())
	}
}

// markOverstayNotified claims the one overstay notification allowed per
// presence window. Without redis every read of an overstayed visit would
// republish, so callers fall back to always-notify when redis is absent.
func markOverstayNotified(checkinID uint) bool {
	rd := lib.GetRedisClient()
	if rd == nil {
		return true
	}
	key := fmt.Sprintf("overstay:%d", checkinID)
	ok, err := rd.SetNX(context.Background(), key, time.Now().Unix(), 0).Result()
	if err != nil {
		log.Printf("Error claiming overstay key %s: %s\n", key, err.Error())
		return true
	}
	return ok
}

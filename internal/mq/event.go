package mq

import "buildhub/internal/model"

// Routing keys published on the events exchange.
const (
	EventNotificationCreated = "notification.created"
	EventOverdueScanFinished = "overdue.scan.finished"
)

// NotificationCreatedPayload is published once per persisted notification
// record. Feed subscribers match it against their own identity and role.
type NotificationCreatedPayload struct {
	Notification model.Notification `json:"notification"`
}

// OverdueScanFinishedPayload summarizes one scanner run.
type OverdueScanFinishedPayload struct {
	Projects  int    `json:"projects"`
	Notified  int    `json:"notified"`
	Failed    int    `json:"failed"`
	StartedAt string `json:"started_at"`
}

package types

// Exchanges and routing keys on the broker.
const (
	NotificationExchange = "notification_topic"
	EmergencyExchange    = "emergency_topic"

	QueueContactNotifications = "contact_notifications"

	// jobs that kept failing are parked here for inspection
	QueueDeadNotifications  = "contact_notifications.dead"
	RoutingDeadNotification = "dead.notify"

	// notify.<contact_type>
	RoutingNotifyFmt = "notify.%s"
	BindingNotifyAll = "notify.#"

	// booking.status.<status>, sos.status.<status>
	RoutingBookingStatusFmt = "booking.status.%s"
	RoutingSOSStatusFmt     = "sos.status.%s"
	RoutingAlertPublished   = "alert.published"
)

type FeedEvent string

func (e FeedEvent) String() string {
	return string(e)
}

// websocket live feed message types
const (
	FeedAlertPublished FeedEvent = "ALERT_PUBLISHED"
	FeedSOSStatus      FeedEvent = "SOS_STATUS"
	FeedBookingStatus  FeedEvent = "BOOKING_STATUS"
	FeedConnected      FeedEvent = "CONNECTED"
)

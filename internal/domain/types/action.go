package types

const (
	ActionServiceStart = "service_start"

	ActionDatabaseTransactionFailed = "database_transaction_failed"
	ActionExternalServiceFailed     = "external_service_failed"

	ActionRequestBooking  = "request_booking"
	ActionCancelBooking   = "cancel_booking"
	ActionCompleteBooking = "complete_booking"
	ActionRestoreHolds    = "restore_reservation_holds"
	ActionReserve         = "reserve_ambulance"
	ActionRegistrySync    = "registry_sync"
	ActionSweepHolds      = "sweep_reservation_holds"
	ActionTriggerSOS      = "trigger_sos"
	ActionResumeSOS       = "resume_sos"
	ActionResolveSOS      = "resolve_sos"
	ActionNotifyContacts  = "notify_contacts"
	ActionDeliverContact  = "deliver_contact"
	ActionPublishAlert    = "publish_alert"
	ActionQueryAlerts     = "query_active_alerts"
	ActionGatewayDelivery = "gateway_delivery"
)

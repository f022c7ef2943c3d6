package types

type ServiceMode string

func (m ServiceMode) String() string {
	return string(m)
}

// Emergency Service - HTTP API: registry, matcher, SOS dispatcher, alerts, directory
// Notifier Service - consumes delivery jobs and hands them to the SMS/webhook gateway
const (
	EmergencyService ServiceMode = "emergency-service"
	NotifierService  ServiceMode = "notifier-service"
)

type StorageDriver string

const (
	StoragePostgres StorageDriver = "postgres"
	StorageMemory   StorageDriver = "memory"
)

type AmbulanceType string

const (
	AmbulancePublic  AmbulanceType = "public"
	AmbulancePrivate AmbulanceType = "private"
)

type BookingStatus string

func (s BookingStatus) String() string {
	return string(s)
}

const (
	BookingPending   BookingStatus = "Pending"
	BookingMatched   BookingStatus = "Matched"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingFailed    BookingStatus = "Failed"
	BookingCancelled BookingStatus = "Cancelled"
	// BookingCompleted closes a Confirmed booking once the crew is done and frees the ambulance.
	BookingCompleted BookingStatus = "Completed"
)

// IsTerminal reports whether no transition leaves s.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingFailed || s == BookingCancelled || s == BookingCompleted
}

// CanTransition encodes Pending -> Matched -> Confirmed -> Completed, plus Failed/Cancelled from any live state.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	switch s {
	case BookingPending:
		return to == BookingMatched || to == BookingFailed || to == BookingCancelled
	case BookingMatched:
		return to == BookingConfirmed || to == BookingFailed || to == BookingCancelled
	case BookingConfirmed:
		return to == BookingCancelled || to == BookingCompleted
	default:
		return false
	}
}

type SOSStatus string

func (s SOSStatus) String() string {
	return string(s)
}

const (
	SOSTriggered          SOSStatus = "Triggered"
	SOSContactsNotified   SOSStatus = "ContactsNotified"
	SOSServicesDispatched SOSStatus = "ServicesDispatched"
	SOSResolved           SOSStatus = "Resolved"
	SOSFailed             SOSStatus = "Failed"
)

func (s SOSStatus) IsTerminal() bool {
	return s == SOSResolved || s == SOSFailed
}

func (s SOSStatus) CanTransition(to SOSStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch to {
	case SOSFailed, SOSResolved:
		return true
	case SOSContactsNotified:
		return s == SOSTriggered
	case SOSServicesDispatched:
		return s == SOSContactsNotified
	default:
		return false
	}
}

type EmergencyType string

const (
	EmergencyGeneral  EmergencyType = "general"
	EmergencyMedical  EmergencyType = "medical"
	EmergencyFire     EmergencyType = "fire"
	EmergencyPolice   EmergencyType = "police"
	EmergencyAccident EmergencyType = "accident"
)

func (e EmergencyType) Valid() bool {
	switch e {
	case EmergencyGeneral, EmergencyMedical, EmergencyFire, EmergencyPolice, EmergencyAccident:
		return true
	}
	return false
}

// NeedsTransport reports whether the emergency implies sending an ambulance.
func (e EmergencyType) NeedsTransport() bool {
	return e == EmergencyMedical || e == EmergencyAccident
}

type ContactType string

const (
	ContactFamily  ContactType = "family"
	ContactFriend  ContactType = "friend"
	ContactMedical ContactType = "medical"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type DeliveryOutcome string

const (
	OutcomeDispatched DeliveryOutcome = "Dispatched"
	OutcomeFailed     DeliveryOutcome = "Failed"
)

type NewsPriority string

const (
	PriorityUrgent NewsPriority = "urgent"
	PriorityHigh   NewsPriority = "high"
	PriorityNormal NewsPriority = "normal"
	PriorityLow    NewsPriority = "low"
)

// Rank orders priorities, lower first.
func (p NewsPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

const (
	NewsEmergencyResponse = "emergency_response"
	NewsDisasterRelief    = "disaster_relief"
	NewsSafetyUpdate      = "safety_update"
	NewsCommunityAlert    = "community_alert"
)

type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	RoleCitizen    UserRole = "citizen"
	RoleDispatcher UserRole = "dispatcher"
	RoleAdmin      UserRole = "admin"
)

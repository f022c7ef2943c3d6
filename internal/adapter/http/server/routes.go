package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Psychoriddler/Emergilink-prototype/docs"
	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	mux, routes := a.mux, a.routes

	// System Health
	mux.HandleFunc("GET /health", routes.Health.HealthCheck)
	mux.HandleFunc("GET /api/health", routes.Health.HealthCheck)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler(httpSwagger.InstanceName("emergilink")))

	if routes.Directory != nil {
		mux.HandleFunc("GET /api/hospitals/nearby", routes.Directory.NearbyHospitals)
		mux.HandleFunc("GET /api/hospitals/{id}", routes.Directory.Hospital)
		mux.HandleFunc("GET /api/news", routes.Directory.News)
		mux.HandleFunc("GET /api/news/categories", routes.Directory.NewsCategories)
		mux.HandleFunc("GET /api/news/{id}", routes.Directory.NewsItem)
	}

	if routes.Ambulance != nil {
		mux.HandleFunc("GET /api/ambulances/nearby", routes.Ambulance.Nearby)
		mux.HandleFunc("POST /api/ambulances/book", routes.Ambulance.Book)
		mux.HandleFunc("GET /api/bookings/{id}", routes.Ambulance.GetBooking)
		mux.HandleFunc("POST /api/bookings/{id}/cancel", routes.Ambulance.CancelBooking)
		mux.HandleFunc("POST /api/bookings/{id}/complete", routes.Ambulance.CompleteBooking)
	}

	if routes.Emergency != nil {
		mux.HandleFunc("POST /api/emergency/sos", routes.Emergency.TriggerSOS)
		mux.HandleFunc("GET /api/emergency/history/{user_id}", routes.Emergency.History)
		mux.HandleFunc("GET /api/emergency/{id}", routes.Emergency.GetSOS)
		mux.HandleFunc("POST /api/emergency/{id}/resolve", routes.Emergency.ResolveSOS)
	}

	if routes.Alert != nil {
		mux.HandleFunc("GET /api/alerts/active", routes.Alert.Active)
		mux.HandleFunc("GET /api/alerts/{id}", routes.Alert.Get)
		mux.Handle("POST /api/alerts", a.m.RequireRoles(routes.Alert.Publish, types.RoleDispatcher, types.RoleAdmin))
	}

	if routes.Contacts != nil {
		mux.HandleFunc("GET /api/users/{id}/emergency-contacts", routes.Contacts.List)
		mux.HandleFunc("POST /api/users/{id}/emergency-contacts", routes.Contacts.Add)
		mux.HandleFunc("DELETE /api/users/{id}/emergency-contacts/{contact_id}", routes.Contacts.Delete)
	}

	if routes.Navigation != nil {
		mux.HandleFunc("GET /api/navigation/safe-route", routes.Navigation.SafeRoute)
	}

	if routes.Feed != nil {
		mux.HandleFunc("GET /ws/alerts", routes.Feed.ServeAlerts)
	}
}

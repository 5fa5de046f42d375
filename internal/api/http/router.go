package http

import (
	"net/http"

	"atv-rental-backend/internal/security"
	"atv-rental-backend/internal/service"
	"atv-rental-backend/internal/storage"

	"github.com/gorilla/mux"
)

// NewRouter assembles the full API surface. Public routes cover
// registration, login and vehicle browsing; everything else requires a
// Bearer access token, with fleet and transition management limited to
// staff and user administration limited to admins.
func NewRouter(
	tokens security.TokenManager,
	authSvc service.AuthService,
	vehicleSvc service.VehicleService,
	rentalSvc service.RentalService,
	userSvc service.UserService,
	blobs storage.BlobStorage,
) *mux.Router {
	authHandler := NewAuthHandler(authSvc)
	vehicleHandler := NewVehicleHandler(vehicleSvc, blobs)
	rentalHandler := NewRentalHandler(rentalSvc)
	userHandler := NewUserHandler(userSvc)
	storageHandler := NewStorageHandler(blobs)

	router := mux.NewRouter()
	router.Use(requestLogger)

	// Stored images.
	router.HandleFunc("/storage/{key:.+}", storageHandler.Serve).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// Public.
	api.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/refresh", authHandler.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/verify-email", authHandler.VerifyEmail).Methods(http.MethodPost)
	api.HandleFunc("/forgot-password", authHandler.ForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/reset-password", authHandler.ResetPassword).Methods(http.MethodPost)

	api.HandleFunc("/vehicles", vehicleHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/types", vehicleHandler.ListTypes).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id:[0-9]+}", vehicleHandler.Get).Methods(http.MethodGet)

	// Authenticated.
	auth := api.NewRoute().Subrouter()
	auth.Use(authMiddleware(tokens))

	auth.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	auth.HandleFunc("/change-password", authHandler.ChangePassword).Methods(http.MethodPost)
	auth.HandleFunc("/profile", authHandler.GetProfile).Methods(http.MethodGet)
	auth.HandleFunc("/profile", authHandler.UpdateProfile).Methods(http.MethodPost, http.MethodPut)

	auth.HandleFunc("/rentals", rentalHandler.Create).Methods(http.MethodPost)
	auth.HandleFunc("/rentals", rentalHandler.List).Methods(http.MethodGet)
	auth.HandleFunc("/rentals/{id:[0-9]+}", rentalHandler.Get).Methods(http.MethodGet)
	auth.HandleFunc("/rentals/{id:[0-9]+}/cancel", rentalHandler.Cancel).Methods(http.MethodPost)
	auth.HandleFunc("/rentals/{id:[0-9]+}/request-pickup", rentalHandler.RequestPickup).Methods(http.MethodPost)
	auth.HandleFunc("/rentals/{id:[0-9]+}/request-return", rentalHandler.RequestReturn).Methods(http.MethodPost)

	// Staff.
	staff := auth.NewRoute().Subrouter()
	staff.Use(requireStaff)

	staff.HandleFunc("/vehicles", vehicleHandler.Create).Methods(http.MethodPost)
	staff.HandleFunc("/vehicles/{id:[0-9]+}", vehicleHandler.Update).Methods(http.MethodPut)
	staff.HandleFunc("/vehicles/{id:[0-9]+}", vehicleHandler.Delete).Methods(http.MethodDelete)
	staff.HandleFunc("/vehicles/{id:[0-9]+}/image", vehicleHandler.UploadImage).Methods(http.MethodPost)
	staff.HandleFunc("/rentals/{id:[0-9]+}/status", rentalHandler.UpdateStatus).Methods(http.MethodPut)

	// Admin.
	admin := auth.NewRoute().Subrouter()
	admin.Use(requireAdmin)

	admin.HandleFunc("/users", userHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/users", userHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id:[0-9]+}", userHandler.Get).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id:[0-9]+}", userHandler.Update).Methods(http.MethodPut)

	return router
}

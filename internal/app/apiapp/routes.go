package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nrattyp233/create-a-date/internal/config"
	authsvc "github.com/nrattyp233/create-a-date/internal/services/auth"
	dateideassvc "github.com/nrattyp233/create-a-date/internal/services/dateideas"
	datessvc "github.com/nrattyp233/create-a-date/internal/services/dates"
	entsvc "github.com/nrattyp233/create-a-date/internal/services/entitlements"
	matchessvc "github.com/nrattyp233/create-a-date/internal/services/matches"
	messagessvc "github.com/nrattyp233/create-a-date/internal/services/messages"
	paymentsvc "github.com/nrattyp233/create-a-date/internal/services/payments"
	swipesvc "github.com/nrattyp233/create-a-date/internal/services/swipes"
	userssvc "github.com/nrattyp233/create-a-date/internal/services/users"
	"github.com/nrattyp233/create-a-date/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService        *authsvc.Service
	UserService        *userssvc.Service
	SwipeService       *swipesvc.Service
	MatchService       *matchessvc.Service
	MessageService     *messagessvc.Service
	DateService        *datessvc.Service
	DateIdeaService    *dateideassvc.Service
	PaymentService     *paymentsvc.Service
	EntitlementService *entsvc.Service
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	profileHandler := handlers.NewProfileHandler(deps.UserService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	recallHandler := handlers.NewRecallHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	messagesHandler := handlers.NewMessagesHandler(deps.MessageService)
	datesHandler := handlers.NewDatesHandler(deps.DateService)
	aiHandler := handlers.NewAIHandler(deps.DateIdeaService)
	purchaseHandler := handlers.NewPurchaseHandler(deps.PaymentService, deps.EntitlementService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.With(authMW).Post("/logout", authHandler.Logout)
			r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
		})

		r.With(authMW).Get("/me", profileHandler.Me)
		r.With(authMW).Put("/profile", profileHandler.Update)
		r.With(authMW).Get("/deck", profileHandler.Deck)
		r.With(authMW).Get("/users/{user_id}", profileHandler.Candidate)

		r.With(authMW).Post("/swipes", swipeHandler.Handle)
		r.With(authMW).Post("/recall", recallHandler.Handle)

		r.With(authMW).Get("/matches", matchesHandler.Handle)
		r.With(authMW).Post("/unmatch", matchesHandler.Unmatch)

		r.With(authMW).Post("/messages", messagesHandler.Send)
		r.With(authMW).Get("/messages/{user_id}", messagesHandler.Conversation)
		r.With(authMW).Post("/messages/read", messagesHandler.MarkRead)

		r.Route("/dates", func(r chi.Router) {
			r.With(authMW).Post("/", datesHandler.Create)
			r.Get("/", datesHandler.List)
			r.Get("/{id}", datesHandler.Get)
			r.With(authMW).Put("/{id}", datesHandler.Update)
			r.With(authMW).Delete("/{id}", datesHandler.Delete)
			r.With(authMW).Post("/{id}/apply", datesHandler.Apply)
			r.With(authMW).Post("/{id}/choose", datesHandler.Choose)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Use(authMW)
			r.Post("/date-idea", aiHandler.DateIdea)
			r.Post("/icebreakers", aiHandler.Icebreakers)
			r.Post("/locations", aiHandler.Locations)
			r.Post("/enhance", aiHandler.Enhance)
			r.Post("/photo-order", aiHandler.PhotoOrder)
		})

		r.With(authMW).Post("/purchase/create", purchaseHandler.Create)
		r.With(authMW).Post("/purchase/capture", purchaseHandler.Capture)
		r.Post("/purchase/webhook", purchaseHandler.Webhook)
		r.With(authMW).Get("/entitlements", purchaseHandler.Entitlements)
	})
}

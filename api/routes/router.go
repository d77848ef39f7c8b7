package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/autolenis/autolenis-backend/api/controllers"
	"github.com/autolenis/autolenis-backend/api/middleware"
	"github.com/autolenis/autolenis-backend/internal/auctions"
	"github.com/autolenis/autolenis-backend/internal/bestprice"
	"github.com/autolenis/autolenis-backend/internal/deals"
	"github.com/autolenis/autolenis-backend/internal/offers"
	"github.com/autolenis/autolenis-backend/pkg/config"
	"github.com/autolenis/autolenis-backend/pkg/db"
	"github.com/autolenis/autolenis-backend/pkg/enums"
	"github.com/autolenis/autolenis-backend/pkg/logger"
	pkgredis "github.com/autolenis/autolenis-backend/pkg/redis"
)

// redisBackend is what the router needs from redis: idempotency storage,
// rate limit counters and a readiness ping. *pkgredis.Client satisfies it.
type redisBackend interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redisBackend,
	auctionsService auctions.Service,
	offersService offers.Service,
	bestPriceService bestprice.Service,
	dealsService deals.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RateLimit(cfg.RateLimit, redisClient, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		adminOnly := middleware.RequireRole(string(enums.RoleAdmin), logg)

		r.Route("/v1/auctions/{auctionId}", func(r chi.Router) {
			r.Get("/", controllers.GetAuction(auctionsService, logg))
			r.With(adminOnly).Post("/close", controllers.CloseAuction(auctionsService, logg))

			r.Route("/offers", func(r chi.Router) {
				r.Get("/", controllers.ListOffers(offersService, logg))
				r.Post("/", controllers.SubmitOffer(offersService, logg))
				r.Post("/{offerId}/withdraw", controllers.WithdrawOffer(offersService, logg))
				r.Post("/{offerId}/decline", controllers.DeclineOffer(bestPriceService, logg))
				r.With(adminOnly).Post("/{offerId}/override-validity", controllers.OverrideOfferValidity(offersService, logg))
			})

			r.Route("/best-price", func(r chi.Router) {
				r.Get("/", controllers.GetBestPrice(bestPriceService, logg))
				r.With(adminOnly).Post("/compute", controllers.ComputeBestPrice(bestPriceService, logg))
				r.Post("/{optionId}/decline", controllers.DeclineOption(bestPriceService, logg))
			})

			r.Post("/select", controllers.SelectDeal(bestPriceService, logg))
		})

		r.Get("/v1/offers/{offerId}", controllers.GetOffer(offersService, logg))

		r.Route("/v1/deals", func(r chi.Router) {
			r.Get("/", controllers.ListDeals(dealsService, logg))
			r.Route("/{dealId}", func(r chi.Router) {
				r.Get("/", controllers.GetDeal(dealsService, logg))
				r.Post("/payment", controllers.ChoosePayment(dealsService, logg))
				r.Post("/concierge-fee", controllers.UpdateConciergeFee(dealsService, logg))
				r.Post("/insurance", controllers.UpdateInsurance(dealsService, logg))
				r.Post("/contract-passed", controllers.MarkContractPassed(dealsService, logg))
				r.Post("/sign", controllers.MarkSigned(dealsService, logg))
				r.Post("/schedule-pickup", controllers.SchedulePickup(dealsService, logg))
				r.Post("/complete", controllers.CompleteDeal(dealsService, logg))
				r.Post("/cancel", controllers.CancelDeal(dealsService, logg))
				r.With(adminOnly).Post("/override-status", controllers.OverrideDealStatus(dealsService, logg))
			})
		})
	})

	return r
}

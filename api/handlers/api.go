package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mocagate/gating-api/api"
	"github.com/mocagate/gating-api/api/scheduler"
	"github.com/mocagate/gating-api/cache"
	"github.com/mocagate/gating-api/chain"
	"github.com/mocagate/gating-api/config"
	"github.com/mocagate/gating-api/databases"
	"github.com/mocagate/gating-api/models"
	"github.com/mocagate/gating-api/nft"
	"github.com/mocagate/gating-api/services/mail"
)

// App stores the router and collaborator connections, so it can be reused
type App struct {
	Router    http.Handler
	Config    config.Config
	dbHelper  databases.DatabaseHelper
	cache     cache.Store
	chain     chain.StakingClient
	mailer    *mail.Mailer
	scheduler *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() http.Handler {
	r := mux.NewRouter()

	icDB := databases.NewInviteCodeDatabase(a.dbHelper)
	regDB := databases.NewRegistrationDatabase(a.dbHelper)

	ic := InviteCode{DB: icDB}
	reg := Registration{DB: regDB, ICDB: icDB}
	res := Reserve{
		RDB:             regDB,
		ICDB:            icDB,
		Limiter:         cache.NewRateLimiter(a.cache),
		Eligibility:     nft.NewChecker(a.chain, a.cache),
		VerifySignature: chain.VerifySignature,
		MinStake:        time.Duration(a.Config.MinStakeSeconds) * time.Second,
	}
	if a.mailer != nil {
		res.Mailer = a.mailer
	}
	admin := Admin{ICDB: icDB, RDB: regDB}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api").Subrouter()

	apiCreate.Handle("/verify-code", http.HandlerFunc(ic.VerifyCodeHandler)).Methods("GET")
	apiCreate.Handle("/check-email", http.HandlerFunc(reg.CheckEmailHandler)).Methods("GET")
	apiCreate.Handle("/check-wallet", http.HandlerFunc(reg.CheckWalletHandler)).Methods("GET")
	apiCreate.Handle("/vip-status", http.HandlerFunc(reg.VIPStatusHandler)).Methods("GET")
	apiCreate.Handle("/reserve", http.HandlerFunc(res.ReserveHandler)).Methods("POST")

	adminRouter := apiCreate.PathPrefix("/admin").Subrouter()
	adminRouter.Use(api.AdminKeyMiddleware(a.Config.AdminAPIKey))
	adminRouter.Handle("/generate-code", http.HandlerFunc(admin.GenerateCodeHandler)).Methods("POST")
	adminRouter.Handle("/stats", http.HandlerFunc(admin.StatsHandler)).Methods("GET")
	adminRouter.Handle("/invite-codes", http.HandlerFunc(admin.InviteCodesHandler)).Methods("GET")

	r.Use(api.RequestLogger)
	r.Use(api.TimeoutMiddleware(30 * time.Second))
	r.Use(ghandlers.RecoveryHandler(ghandlers.PrintRecoveryStack(false)))

	// CORS wraps the router itself rather than running as mux middleware:
	// mux middleware only fires on a route match, and the method-restricted
	// routes would 405 a preflight OPTIONS before CORS ever saw it.
	return ghandlers.CORS(
		ghandlers.AllowedOrigins([]string{"*"}),
		ghandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		ghandlers.AllowedHeaders([]string{"Content-Type", "X-API-Key"}),
		ghandlers.MaxAge(86400),
	)(r)
}

// Initialize is invoked by main to connect with the collaborators and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("gating-api has connected to the database")

	a.cache = cache.NewStore(cache.NewPool(a.Config.RedisURL))

	chainClient, err := chain.NewClient(a.Config.RPCURL, a.Config.StakingContract)
	if err != nil {
		zap.S().With(err).Error("failed to create staking chain client")
		return err
	}
	a.chain = chainClient

	a.mailer = mail.New(a.Config.SendgridAPIKey)

	a.scheduler = scheduler.New(
		databases.NewInviteCodeDatabase(a.dbHelper),
		databases.NewRegistrationDatabase(a.dbHelper),
	)
	a.scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

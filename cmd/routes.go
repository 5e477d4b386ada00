package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders)
	apiMiddleware := alice.New(makeResponseJSON)

	mux := pat.New()

	// Signup → payment → license glue
	mux.Post("/api/signup", apiMiddleware.ThenFunc(app.signupHandler.Submit))
	mux.Get("/api/checkout", http.HandlerFunc(app.checkoutHandler.Redirect))
	mux.Post("/api/webhook/polar", apiMiddleware.ThenFunc(app.webhookHandler.Receive))

	// Auth
	mux.Post("/api/auth/magic-link", apiMiddleware.ThenFunc(app.authHandler.SendMagicLink))
	mux.Post("/api/auth/verify", apiMiddleware.ThenFunc(app.authHandler.VerifyCode))
	mux.Post("/api/auth/logout", apiMiddleware.ThenFunc(app.authHandler.Logout))

	// Account
	mux.Get("/api/me", apiMiddleware.ThenFunc(app.accountHandler.Profile))
	mux.Get("/api/license/wait", apiMiddleware.ThenFunc(app.accountHandler.WaitLicense))

	// Pages
	mux.Get("/install.sh", http.HandlerFunc(serveInstallScript))
	mux.Get("/signup", http.HandlerFunc(app.pagesHandler.Signup))
	mux.Get("/login", http.HandlerFunc(app.pagesHandler.Login))
	mux.Get("/account", http.HandlerFunc(app.pagesHandler.Account))
	mux.Get("/thanks", http.HandlerFunc(app.pagesHandler.Thanks))
	mux.Get("/download", http.HandlerFunc(app.pagesHandler.Download))
	mux.Get("/", http.HandlerFunc(app.pagesHandler.Landing))

	// CLI installers hit "/" without Accept: text/html; they get the script.
	return standardMiddleware.Then(app.installNegotiation(mux))
}

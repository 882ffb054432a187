package main

import (
	"net/http"
)

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				commonContext(app.timeout(next)))))
		}
		noAuth = func(next http.Handler) http.Handler {
			return app.recoverPanic(shared(next))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.webAuthnHandler.AuthenticateMiddleware(language(shared(next))))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
	)

	mux.Handle("GET /creator", mustSession(http.HandlerFunc(app.creatorGET)))
	mux.Handle("POST /creator/days", mustSession(http.HandlerFunc(app.creatorDaysPOST)))
	mux.Handle("POST /creator/commit", mustSession(http.HandlerFunc(app.creatorCommitPOST)))

	mux.Handle("GET /plan", mustSession(http.HandlerFunc(app.planGET)))
	mux.Handle("POST /plan/config", mustSession(http.HandlerFunc(app.planConfigPOST)))
	mux.Handle("POST /plan/days/{day}/selection", mustSession(http.HandlerFunc(app.planSelectionPOST)))
	mux.Handle("POST /plan/days/{day}/exercises/{exerciseID}/series/{series}/weight",
		mustSession(http.HandlerFunc(app.seriesWeightPOST)))
	mux.Handle("POST /plan/days/{day}/exercises/{exerciseID}/series/{series}/increase",
		mustSession(http.HandlerFunc(app.seriesIncreasePOST)))
	mux.Handle("POST /plan/days/{day}/exercises/{exerciseID}/series/{series}/decrease",
		mustSession(http.HandlerFunc(app.seriesDecreasePOST)))

	// The editor path segment selects the plan the exercise form works on: creator edits the draft, plan the saved
	// plan.
	mux.Handle("GET /{editor}/days/{day}/exercises/new", mustSession(http.HandlerFunc(app.exerciseNewGET)))
	mux.Handle("POST /{editor}/days/{day}/exercises/new", mustSession(http.HandlerFunc(app.exerciseNewPOST)))
	mux.Handle("GET /{editor}/days/{day}/exercises/{exerciseID}/edit",
		mustSession(http.HandlerFunc(app.exerciseEditGET)))
	mux.Handle("POST /{editor}/days/{day}/exercises/{exerciseID}/edit",
		mustSession(http.HandlerFunc(app.exerciseEditPOST)))
	mux.Handle("POST /{editor}/days/{day}/exercises/{exerciseID}/delete",
		mustSession(http.HandlerFunc(app.exerciseDeletePOST)))

	mux.Handle("GET /catalogue", session(http.HandlerFunc(app.catalogueGET)))
	mux.Handle("GET /catalogue/{id}", session(http.HandlerFunc(app.catalogueExerciseGET)))

	mux.Handle("POST /language", session(http.HandlerFunc(app.setLanguagePOST)))

	mux.Handle("POST /api/registration/start", session(http.HandlerFunc(app.beginRegistration)))
	mux.Handle("POST /api/registration/finish", session(http.HandlerFunc(app.finishRegistration)))
	mux.Handle("POST /api/login/start", session(http.HandlerFunc(app.beginLogin)))
	mux.Handle("POST /api/login/finish", session(http.HandlerFunc(app.finishLogin)))
	mux.Handle("POST /api/logout", session(http.HandlerFunc(app.logout)))
	mux.Handle("GET /api/healthy", session(http.HandlerFunc(app.healthy)))
	mux.Handle("POST "+cspReportPath, noAuth(http.HandlerFunc(app.cspViolation)))
	mux.Handle("GET /api/test/timeout", noAuth(http.HandlerFunc(app.testTimeout)))

	mux.Handle("GET /{$}", session(http.HandlerFunc(app.home)))

	mux.Handle("/", app.staticFiles(noAuth, session(http.HandlerFunc(app.notFound))))

	return mux
}

package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/factday/fivefacts/internal/trivia"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "FiveFacts API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Verification oracle for the FiveFacts daily trivia game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/challenge/today
	getToday, _ := r.NewOperationContext(http.MethodGet, "/api/challenge/today")
	getToday.SetSummary("Today's challenge")
	getToday.SetDescription("Returns today's challenge: the five facts, never the answer.")
	getToday.AddRespStructure(trivia.Challenge{}, openapi.WithHTTPStatus(http.StatusOK))
	getToday.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getToday)

	// POST /api/challenge/{id}/verify
	postVerify, _ := r.NewOperationContext(http.MethodPost, "/api/challenge/{id}/verify")
	postVerify.SetSummary("Verify guess")
	postVerify.SetDescription("Checks a guess against the answer. Idempotent and side-effect-free.")
	postVerify.AddReqStructure(VerifyRequest{})
	postVerify.AddRespStructure(VerifyResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postVerify.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postVerify.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postVerify)

	// POST /api/challenge/{id}/final-five/options
	postOptions, _ := r.NewOperationContext(http.MethodPost, "/api/challenge/{id}/final-five/options")
	postOptions.SetSummary("Final Five options")
	postOptions.SetDescription("Returns exactly 5 multiple-choice options including the true answer, excluding prior wrong guesses.")
	postOptions.AddReqStructure(FinalFiveOptionsRequest{})
	postOptions.AddRespStructure(FinalFiveOptionsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postOptions.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postOptions)

	// GET /api/challenge/{id}/final-five/answer
	getAnswer, _ := r.NewOperationContext(http.MethodGet, "/api/challenge/{id}/final-five/answer")
	getAnswer.SetSummary("Authoritative answer")
	getAnswer.SetDescription("Returns the correct answer. Used only after the round is decided.")
	getAnswer.AddRespStructure(FinalFiveAnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getAnswer)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears admin session and cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/admin/challenges
	listChallenges, _ := r.NewOperationContext(http.MethodGet, "/api/admin/challenges")
	listChallenges.SetSummary("List challenges")
	listChallenges.SetDescription("Returns all challenges with fact counts. Requires admin_session cookie.")
	listChallenges.AddRespStructure([]AdminChallengeSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	listChallenges.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listChallenges)

	// POST /api/admin/challenges
	createChallenge, _ := r.NewOperationContext(http.MethodPost, "/api/admin/challenges")
	createChallenge.SetSummary("Create challenge")
	createChallenge.SetDescription("Creates a challenge for a day and language. Requires admin_session cookie.")
	createChallenge.AddReqStructure(AdminChallengeRequest{})
	createChallenge.AddRespStructure(AdminChallengeDetail{}, openapi.WithHTTPStatus(http.StatusCreated))
	createChallenge.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(createChallenge)

	// PUT /api/admin/challenges/{id}
	updateChallenge, _ := r.NewOperationContext(http.MethodPut, "/api/admin/challenges/{id}")
	updateChallenge.SetSummary("Update challenge")
	updateChallenge.AddReqStructure(AdminChallengeRequest{})
	updateChallenge.AddRespStructure(AdminChallengeDetail{}, openapi.WithHTTPStatus(http.StatusOK))
	updateChallenge.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(updateChallenge)

	// DELETE /api/admin/challenges/{id}
	deleteChallenge, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/challenges/{id}")
	deleteChallenge.SetSummary("Delete challenge")
	deleteChallenge.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteChallenge.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteChallenge)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(spec)
	}
}

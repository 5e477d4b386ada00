package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"tellweb/internal/models"
	"tellweb/internal/services"
)

// SignupPlatform is the slice of the platform client the signup flow uses.
type SignupPlatform interface {
	Signup(ctx context.Context, sub models.SignupSubmission) (*services.SignupAck, error)
}

type SignupHandler struct {
	Platform     SignupPlatform
	ProProductID string
	Logger       *slog.Logger
}

// Submit handles POST /api/signup. The tier is recomputed here from the
// revenue band on every request; the decoded form has no field a client could
// use to claim a price, so a tampered or replayed request cannot buy a
// cheaper tier than the band warrants.
func (h *SignupHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub models.SignupSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sub.Email = strings.TrimSpace(sub.Email)
	sub.CompanyName = strings.TrimSpace(sub.CompanyName)
	if sub.Email == "" || sub.CompanyName == "" {
		jsonError(w, "email and company_name are required", http.StatusBadRequest)
		return
	}

	tier, err := services.ClassifyTier(sub.CompanyType, sub.RevenueBand)
	if err != nil {
		jsonError(w, "unknown revenue band", http.StatusBadRequest)
		return
	}

	ack, err := h.Platform.Signup(r.Context(), sub)
	if err != nil {
		h.logger().Error("platform signup failed", "email", sub.Email, "err", err)
		jsonError(w, "signup failed", http.StatusBadGateway)
		return
	}

	result := models.SignupResult{CustomerID: ack.CustomerID}
	switch tier {
	case models.TierFree:
		result.NextStep = "free"
		result.CustomerID = ""
	case models.TierPro:
		result.NextStep = models.PaidStep{
			MonthlyPrice: services.ProMonthlyPriceUSD,
			ProductID:    h.ProProductID,
		}
	default:
		result.NextStep = "contact"
		result.CustomerID = ""
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *SignupHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

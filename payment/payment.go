// Package payment shapes the insufficient-balance failure path. When
// the backend reports that an account cannot cover an action, the
// gateway answers with a machine-actionable descriptor (an x402-style
// payment-required response) instead of an opaque error, so the calling
// agent can settle out of band and re-invoke the original tool call.
// This package only builds data; it never contacts a settlement service
// and never retries anything.
package payment

import (
	"math"

	"github.com/craftstudio/craftstudio-mcp/backend"
)

// Config holds the fixed constants of the recovery protocol.
type Config struct {
	// MinimumFloor is the smallest top-up the settlement endpoint accepts.
	MinimumFloor float64
	// RecommendedFloor is the smallest top-up worth recommending.
	RecommendedFloor float64
	// Multiplier pads the recommended top-up above the bare shortfall.
	Multiplier float64

	Networks       []string
	Asset          string
	SettleEndpoint string
	TopUpURL       string
}

// DefaultConfig returns the production protocol constants.
func DefaultConfig() Config {
	return Config{
		MinimumFloor:     10,
		RecommendedFloor: 25,
		Multiplier:       1.2,
		Networks:         []string{"base", "base-sepolia"},
		Asset:            "USDC",
		SettleEndpoint:   "https://api.craftstudio.dev/v1/payments/settle",
		TopUpURL:         "https://craftstudio.dev/account/billing",
	}
}

// Descriptor describes an insufficient-balance condition in a form the
// calling agent can act on.
type Descriptor struct {
	Status           string   `json:"status"`
	ResourceType     string   `json:"resourceType"`
	CurrentBalance   float64  `json:"currentBalance"`
	RequiredAmount   float64  `json:"requiredAmount"`
	Shortfall        float64  `json:"shortfall"`
	MinimumTopUp     float64  `json:"minimumTopUp"`
	RecommendedTopUp float64  `json:"recommendedTopUp"`
	Networks         []string `json:"networks"`
	Asset            string   `json:"asset"`
	SettleEndpoint   string   `json:"settleEndpoint"`
	TopUpURL         string   `json:"topUpUrl"`
	Instructions     string   `json:"instructions"`
}

// StatusPaymentRequired marks a Descriptor as awaiting settlement.
const StatusPaymentRequired = "payment_required"

// Build derives a Descriptor from the backend failure data. A missing
// required amount falls back to the shortfall, and a missing shortfall
// falls back to the configured minimum floor.
func Build(data *backend.ErrorData, cfg Config) Descriptor {
	var shortfall, current, required float64
	resourceType := "general"

	if data != nil {
		shortfall = data.Shortfall
		current = data.Current
		required = data.Required
		if data.ResourceType != "" {
			resourceType = data.ResourceType
		}
	}
	if shortfall <= 0 {
		shortfall = cfg.MinimumFloor
	}
	if required <= 0 {
		required = shortfall
	}

	minimum := math.Max(cfg.MinimumFloor, math.Ceil(shortfall))
	recommended := math.Max(cfg.RecommendedFloor, math.Ceil(shortfall*cfg.Multiplier))

	return Descriptor{
		Status:           StatusPaymentRequired,
		ResourceType:     resourceType,
		CurrentBalance:   current,
		RequiredAmount:   required,
		Shortfall:        shortfall,
		MinimumTopUp:     minimum,
		RecommendedTopUp: recommended,
		Networks:         cfg.Networks,
		Asset:            cfg.Asset,
		SettleEndpoint:   cfg.SettleEndpoint,
		TopUpURL:         cfg.TopUpURL,
		Instructions: "Account balance is too low to run this action. Top up at least the minimum " +
			"amount via the settlement endpoint (or the top-up URL for manual payment), then retry " +
			"the original tool call.",
	}
}

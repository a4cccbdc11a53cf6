package node

import (
	"context"
	"strings"
)

// registerBusinessHandlers — действия business node: формирование,
// стратегия, финансирование и регистрация бизнеса.
func registerBusinessHandlers(r *Registry) {
	r.Register("validate-business-idea", validateBusinessIdea)
	r.Register("create-business-plan", createBusinessPlan)
	r.Register("analyze-market", analyzeMarket)
	r.Register("find-funding", findFunding)
	r.Register("register-business", registerBusiness)
}

// accessibilityKeywords — маркеры фокуса на доступности в описании идеи.
var accessibilityKeywords = []string{"deaf", "asl", "accessibility", "inclusive"}

// validateBusinessIdea оценивает бизнес-идею по полноте описания,
// определённости целевого рынка и фокусу на доступности.
func validateBusinessIdea(_ context.Context, payload map[string]any) (map[string]any, error) {
	idea := getString(payload, "idea")
	targetMarket := getString(payload, "target_market")

	score := 0.0
	var feedback []string

	if len(idea) > 50 {
		score += 0.3
		feedback = append(feedback, "Idea is well-described")
	} else {
		feedback = append(feedback, "Idea needs more detail")
	}

	if targetMarket != "" {
		score += 0.3
		feedback = append(feedback, "Target market identified")
	} else {
		feedback = append(feedback, "Target market needs definition")
	}

	lower := strings.ToLower(idea)
	for _, kw := range accessibilityKeywords {
		if strings.Contains(lower, kw) {
			score += 0.4
			feedback = append(feedback, "Excellent focus on accessibility and Deaf community")
			break
		}
	}

	if score > 1.0 {
		score = 1.0
	}

	return map[string]any{
		"validation_score": score,
		"feedback":         feedback,
		"recommended_next_steps": []string{
			"Create detailed business plan",
			"Conduct market research",
			"Identify funding sources",
		},
	}, nil
}

func createBusinessPlan(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"plan_outline": map[string]any{
			"executive_summary": "Generated summary",
			"market_analysis":   "Market research findings",
			"financial_projections": map[string]any{
				"year_1_revenue":   100000,
				"year_1_expenses":  80000,
				"break_even_month": 8,
			},
			"marketing_strategy": "Target Deaf community first",
			"operations_plan":    "ASL-first customer service",
		},
	}, nil
}

func analyzeMarket(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"market_size":       "Growing",
		"competition_level": "Moderate",
		"opportunities": []string{
			"Untapped Deaf market segment",
			"ASL-native services gap",
			"Accessibility consulting demand",
		},
		"threats": []string{
			"Limited awareness",
			"Funding challenges",
		},
		"recommendations": []string{
			"Focus on Deaf-first approach",
			"Build community partnerships",
			"Leverage accessibility standards",
		},
	}, nil
}

func findFunding(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"funding_options": []map[string]any{
			{
				"source":          "SBA Microloan Program",
				"amount_range":    "0-50000",
				"type":            "loan",
				"application_url": "https://sba.gov",
			},
			{
				"source":          "Access Ventures Deaf Entrepreneur Grant",
				"amount_range":    "10000-25000",
				"type":            "grant",
				"application_url": "https://example.com/deaf-grants",
			},
			{
				"source":          "Community Development Financial Institutions",
				"amount_range":    "5000-100000",
				"type":            "loan",
				"application_url": "https://example.com/cdfi",
			},
		},
		"total_available": 175000,
	}, nil
}

func registerBusiness(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"registration_steps": []string{
			"Choose business structure (LLC, Corporation, etc.)",
			"Register with state",
			"Obtain EIN from IRS",
			"Register for state taxes",
			"Obtain necessary licenses and permits",
		},
		"estimated_cost":      500,
		"estimated_time_days": 14,
		"next_action":         "Complete business structure selection",
	}, nil
}

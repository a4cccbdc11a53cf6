package node

import (
	"context"
	"fmt"
	"time"
)

// registerDeveloperHandlers — действия developer node: генерация кода,
// валидация доступности и отладка.
func registerDeveloperHandlers(r *Registry) {
	r.Register("create-website", createWebsite)
	r.Register("validate-accessibility", validateAccessibility)
	r.Register("generate-code", generateCode)
	r.Register("debug-issue", debugIssue)
	r.Register("create-api", createAPI)
}

func createWebsite(_ context.Context, payload map[string]any) (map[string]any, error) {
	aslFirst := true
	if v, ok := payload["asl_first"].(bool); ok {
		aslFirst = v
	}

	score := 7.5
	if aslFirst {
		score = 10.0
	}

	return map[string]any{
		"project_id": fmt.Sprintf("web-%d", time.Now().UnixNano()),
		"framework":  "Next.js with TypeScript",
		"accessibility_features": []string{
			"ASL video integration",
			"High contrast mode",
			"Keyboard navigation",
			"Screen reader optimized",
			"Visual notifications instead of audio",
			"Captions for all media",
		},
		"estimated_completion": "2 weeks",
		"accessibility_score":  score,
		"repository_url":       "https://github.com/360magicians/generated-project",
	}, nil
}

func validateAccessibility(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"overall_score": 8.7,
		"asl_support": map[string]any{
			"score":                9.5,
			"has_asl_videos":       true,
			"sign_language_toggle": true,
		},
		"visual_accessibility": map[string]any{
			"score":             9.0,
			"color_contrast":    "excellent",
			"visual_indicators": true,
		},
		"keyboard_navigation": map[string]any{
			"score":                     8.5,
			"fully_keyboard_accessible": true,
		},
		"issues": []map[string]any{
			{
				"severity":       "low",
				"description":    "Some images missing alt text",
				"recommendation": "Add descriptive alt text for Deaf-Blind users",
			},
		},
		"deaf_first_score": 9.2,
		"recommendations": []string{
			"Excellent ASL integration",
			"Consider adding more visual feedback",
			"Add vibration notifications for mobile",
		},
	}, nil
}

func generateCode(_ context.Context, payload map[string]any) (map[string]any, error) {
	language := getString(payload, "language")
	if language == "" {
		language = "python"
	}

	const codeSample = `def asl_aware_notification(message: str, user_preferences: dict):
    """Send notification with ASL-first approach."""
    if user_preferences.get('deaf_mode'):
        # Visual notification
        show_visual_alert(message)
        # Optional vibration
        if user_preferences.get('vibration'):
            trigger_vibration_pattern('attention')
    else:
        # Audio + visual fallback
        play_sound_alert()
        show_visual_alert(message)`

	return map[string]any{
		"language": language,
		"code":     codeSample,
		"accessibility_notes": []string{
			"Function prioritizes visual alerts",
			"Includes vibration option for mobile",
			"Respects user preferences",
			"No audio-only notifications",
		},
		"testing_checklist": []string{
			"Test with screen reader",
			"Verify visual indicators",
			"Test keyboard navigation",
			"Validate with Deaf users",
		},
	}, nil
}

func debugIssue(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"likely_cause":         "Missing accessibility attribute",
		"solution":             "Add ARIA labels and ensure proper semantic HTML",
		"code_fix":             `<button aria-label="Submit form" onclick="handleSubmit()">Submit</button>`,
		"accessibility_impact": "Critical - affects screen reader users",
		"testing_steps": []string{
			"Test with NVDA/JAWS",
			"Verify keyboard navigation",
			"Check color contrast",
		},
	}, nil
}

func createAPI(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"api_id":    fmt.Sprintf("api-%d", time.Now().UnixNano()),
		"framework": "FastAPI",
		"endpoints": []string{
			"GET /health",
			"POST /asl/translate",
			"GET /captions/{video_id}",
			"POST /feedback",
		},
		"accessibility_features": []string{
			"Detailed error messages",
			"Support for multiple formats",
			"Rate limiting with clear feedback",
			"Documentation in ASL and text",
		},
		"repository_url": "https://github.com/360magicians/generated-api",
	}, nil
}

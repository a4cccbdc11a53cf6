package node

import (
	"context"
	"fmt"
	"time"
)

// registerJobHandlers — действия job node: найм, подбор кандидатов
// и карьерные сервисы.
func registerJobHandlers(r *Registry) {
	r.Register("setup-hiring-pipeline", setupHiringPipeline)
	r.Register("post-job", postJob)
	r.Register("match-candidates", matchCandidates)
	r.Register("assess-skills", assessSkills)
	r.Register("schedule-interview", scheduleInterview)
}

func setupHiringPipeline(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"pipeline_stages": []string{
			"Application Review",
			"ASL Video Interview",
			"Skills Assessment",
			"Team Interview",
			"Offer Stage",
		},
		"accessibility_features": []string{
			"ASL interpreter available",
			"Video interview platform with captions",
			"Flexible communication methods",
			"Deaf-friendly interview process",
		},
		"estimated_time_to_hire": 21,
	}, nil
}

func postJob(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"job_id":              fmt.Sprintf("job-%d", time.Now().UnixNano()),
		"status":              "posted",
		"visibility":          "public",
		"platforms":           []string{"mbtq.dev/jobs", "deaf-job-boards", "linkedin"},
		"accessibility_score": 9.5,
	}, nil
}

func matchCandidates(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"matched_candidates": []map[string]any{
			{
				"candidate_id":   "candidate-001",
				"match_score":    0.92,
				"asl_proficient": true,
				"key_skills":     []string{"Python", "FastAPI", "Accessibility"},
			},
			{
				"candidate_id":   "candidate-002",
				"match_score":    0.87,
				"asl_proficient": true,
				"key_skills":     []string{"JavaScript", "React", "Design"},
			},
		},
		"total_matches": 15,
	}, nil
}

func assessSkills(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"overall_score":        8.5,
		"technical_skills":     9.0,
		"communication_skills": 9.5,
		"asl_proficiency":      "native",
		"recommendations": []string{
			"Strong technical background",
			"Excellent ASL communication",
		},
	}, nil
}

func scheduleInterview(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"interview_id":          fmt.Sprintf("interview-%d", time.Now().UnixNano()),
		"scheduled_time":        time.Now().UTC().Format(time.RFC3339),
		"format":                "Video (ASL)",
		"interpreter_available": true,
		"meeting_link":          "https://meet.mbtq.dev/interview-123",
	}, nil
}

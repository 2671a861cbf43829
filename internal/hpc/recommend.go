package hpc

// Canned guidance keyed by parameter name. The lookup is deliberately
// name-based: parameters are school-configured but the well-known ones ship
// with the platform seed data.
var strengthRecommendations = map[string]string{
	"Mathematics":               "Consider advanced mathematics programs or competitions",
	"Creativity & Innovation":   "Explore art exhibitions or creative writing opportunities",
	"Physical Fitness & Health": "Consider sports leadership roles or fitness mentoring",
}

var growthRecommendations = map[string]string{
	"Teamwork & Collaboration": "Participate in more group projects and collaborative activities",
	"Empathy & Compassion":     "Engage in community service or peer support programs",
}

var growthNextSteps = map[string]string{
	"Mathematics":               "Schedule additional math practice sessions",
	"Physical Fitness & Health": "Develop a personalized fitness plan",
	"Teamwork & Collaboration":  "Join collaborative extracurricular activities",
}

// Recommendations derives guidance from which parameter names landed in
// strengths and growth areas.
func Recommendations(strengths, growthAreas []string) []string {
	var out []string
	for _, name := range strengths {
		if rec, ok := strengthRecommendations[name]; ok {
			out = append(out, rec)
		}
	}
	for _, name := range growthAreas {
		if rec, ok := growthRecommendations[name]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// NextSteps unions the goals students recorded in their term reflections
// with canned suggestions triggered by growth areas, de-duplicated in first
// appearance order.
func NextSteps(growthAreas []string, reflections []Reflection) []string {
	var out []string
	seen := map[string]bool{}
	add := func(step string) {
		if step == "" || seen[step] {
			return
		}
		seen[step] = true
		out = append(out, step)
	}
	for _, r := range reflections {
		for _, g := range r.Goals {
			add(g)
		}
	}
	for _, area := range growthAreas {
		if step, ok := growthNextSteps[area]; ok {
			add(step)
		}
	}
	return out
}

// Package mockdata generates deterministic demo profile and activity
// records for dashboards and agent exercises that need realistic input
// without calling external services.
package mockdata

import (
	"fmt"
	"math/rand"
	"time"
)

// Profile is one synthetic professional profile.
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Headline    string `json:"headline"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Connections int    `json:"connections"`
}

// Activity is one synthetic feed item tied to a profile.
type Activity struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	Timestamp time.Time `json:"timestamp"`
}

// Generator produces repeatable records for a given seed.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

var (
	firstNames = []string{"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Jamie", "Avery", "Quinn", "Dana"}
	lastNames  = []string{"Chen", "Patel", "Garcia", "Kim", "Okafor", "Novak", "Silva", "Haddad", "Larsen", "Tanaka"}
	roles      = []string{"Software Engineer", "Data Scientist", "Product Manager", "SRE", "ML Engineer", "Solutions Architect"}
	companies  = []string{"Northwind Labs", "Acme Cloud", "Vector Dynamics", "Blue Harbor", "Quantify AI", "Orbit Systems"}
	locations  = []string{"San Francisco, CA", "Austin, TX", "Seattle, WA", "New York, NY", "Denver, CO", "Remote"}
	verbs      = []string{"shipped", "published a post about", "gave a talk on", "open-sourced", "wrote a deep dive on"}
	topics     = []string{"vector search", "agent monitoring", "LLM evaluation", "cost optimization", "incident response", "RAG pipelines"}

	activityTypes = []string{"post", "share", "comment", "reaction"}
)

// NewGenerator creates a generator seeded for reproducible output. The same
// seed always yields the same sequence of records.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Unix(1735689600, 0).UTC(), // fixed reference time keeps output reproducible
	}
}

// Profiles returns n synthetic profiles.
func (g *Generator) Profiles(n int) []Profile {
	profiles := make([]Profile, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %s", g.pick(firstNames), g.pick(lastNames))
		role := g.pick(roles)
		company := g.pick(companies)
		profiles = append(profiles, Profile{
			ID:          fmt.Sprintf("profile-%04d", i+1),
			Name:        name,
			Headline:    fmt.Sprintf("%s at %s", role, company),
			Company:     company,
			Location:    g.pick(locations),
			Connections: 50 + g.rng.Intn(4950),
		})
	}
	return profiles
}

// Activities returns n synthetic activities spread across the given
// profiles, newest first.
func (g *Generator) Activities(profiles []Profile, n int) []Activity {
	if len(profiles) == 0 {
		return nil
	}

	activities := make([]Activity, 0, n)
	var age time.Duration
	for i := 0; i < n; i++ {
		profile := profiles[g.rng.Intn(len(profiles))]
		age += time.Duration(1+g.rng.Intn(12)) * time.Hour
		activities = append(activities, Activity{
			ID:        fmt.Sprintf("activity-%04d", i+1),
			ProfileID: profile.ID,
			Type:      g.pick(activityTypes),
			Content:   fmt.Sprintf("%s %s %s", profile.Name, g.pick(verbs), g.pick(topics)),
			Likes:     g.rng.Intn(500),
			Comments:  g.rng.Intn(80),
			Timestamp: g.now.Add(-age),
		})
	}
	return activities
}

func (g *Generator) pick(values []string) string {
	return values[g.rng.Intn(len(values))]
}

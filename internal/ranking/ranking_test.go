package ranking

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/models"
	"jobboard/internal/search"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newJob(title string, age time.Duration) models.Job {
	return models.Job{
		ID:        uuid.New(),
		Title:     title,
		Location:  "Berlin",
		IsActive:  true,
		CreatedAt: base.Add(-age),
	}
}

func titles(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Job.Title
	}
	return out
}

func assertTitles(t *testing.T, results []Result, want ...string) {
	t.Helper()
	got := titles(results)
	if len(got) != len(want) {
		t.Fatalf("got %d results %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result order = %v, want %v", got, want)
		}
	}
}

func TestSearchTitleOutranksSkillOnlyMatch(t *testing.T) {
	e := New(search.New())

	dev := newJob("Senior Python Developer", 48*time.Hour)
	dev.Description = "Build backend services."
	dev.RequiredSkills = []string{"Python", "Django"}

	ds := newJob("Data Scientist", time.Hour)
	ds.Description = "Build models."
	ds.RequiredSkills = []string{"Python", "Pandas"}

	results := e.Search("Python developer", []models.Job{ds, dev})
	assertTitles(t, results, "Senior Python Developer", "Data Scientist")
	if results[0].Score <= results[1].Score {
		t.Errorf("scores = %v, %v; want first strictly higher", results[0].Score, results[1].Score)
	}
}

func TestSearchDropsBelowFloor(t *testing.T) {
	e := New(search.New())

	match := newJob("Python Developer", time.Hour)
	miss := newJob("Accountant", time.Hour)
	miss.RequiredSkills = []string{"Excel"}

	results := e.Search("python developer", []models.Job{match, miss})
	assertTitles(t, results, "Python Developer")
}

func TestSearchToleratesMisspelling(t *testing.T) {
	e := New(search.New())

	results := e.Search("Pyhton Developr", []models.Job{newJob("Python Developer", time.Hour)})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score < MinSimilarity {
		t.Errorf("score = %v, want >= %v", results[0].Score, MinSimilarity)
	}
}

func TestSearchMatchesLocation(t *testing.T) {
	e := New(search.New())

	j := newJob("Accountant", time.Hour)
	j.Location = "Munich"

	results := e.Search("munich", []models.Job{j})
	assertTitles(t, results, "Accountant")
}

func TestSearchTieBreaksByRecency(t *testing.T) {
	e := New(search.New())

	older := newJob("Go Engineer", 72*time.Hour)
	older.Description = "older"
	newer := newJob("Go Engineer", time.Hour)
	newer.Description = "newer"

	results := e.Search("go engineer", []models.Job{older, newer})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Job.Description != "newer" {
		t.Errorf("first result = %q, want the newer job", results[0].Job.Description)
	}
}

func TestSearchEmptyQueryOrdersByRecency(t *testing.T) {
	e := New(search.New())

	results := e.Search("  ", []models.Job{
		newJob("Old", 72*time.Hour),
		newJob("New", time.Hour),
		newJob("Mid", 24*time.Hour),
	})
	assertTitles(t, results, "New", "Mid", "Old")
}

func TestMultiFieldOrdersByRequestedFields(t *testing.T) {
	e := New(search.New())

	a := newJob("Go Engineer", time.Hour)
	a.Location = "Berlin, Germany"
	b := newJob("Senior Go Engineer", time.Hour)
	b.Location = "Berlin"
	c := newJob("Go Engineer", time.Hour)
	c.Location = "Munich"
	jobs := []models.Job{a, b, c}

	tests := []struct {
		name   string
		fields []FieldQuery
		want   []string
	}{
		{
			name:   "title first",
			fields: []FieldQuery{{FieldTitle, "engineer"}, {FieldLocation, "berlin"}},
			want:   []string{"Go Engineer", "Senior Go Engineer"},
		},
		{
			name:   "location first",
			fields: []FieldQuery{{FieldLocation, "berlin"}, {FieldTitle, "engineer"}},
			want:   []string{"Senior Go Engineer", "Go Engineer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := e.MultiField(tt.fields, jobs)
			if err != nil {
				t.Fatalf("MultiField: %v", err)
			}
			assertTitles(t, results, tt.want...)
			for _, r := range results {
				if r.Job.Location == "Munich" {
					t.Error("job outside Berlin should be excluded")
				}
				if len(r.Scores) != len(tt.fields) {
					t.Errorf("len(Scores) = %d, want %d", len(r.Scores), len(tt.fields))
				}
			}
		})
	}
}

func TestMultiFieldCompanyAndSkills(t *testing.T) {
	e := New(search.New())

	a := newJob("Backend Engineer", time.Hour)
	a.CompanyName = "Acme Corp"
	a.RequiredSkills = []string{"Go", "PostgreSQL"}
	b := newJob("Frontend Engineer", time.Hour)
	b.CompanyName = "Acme Corp"
	b.RequiredSkills = []string{"TypeScript"}

	results, err := e.MultiField([]FieldQuery{
		{FieldCompany, "acme"},
		{FieldSkills, "postgresql"},
	}, []models.Job{a, b})
	if err != nil {
		t.Fatalf("MultiField: %v", err)
	}
	assertTitles(t, results, "Backend Engineer")
}

func TestMultiFieldUnknownField(t *testing.T) {
	e := New(search.New())
	if _, err := e.MultiField([]FieldQuery{{"salary", "100"}}, nil); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestMultiFieldBlankTermsIgnored(t *testing.T) {
	e := New(search.New())

	results, err := e.MultiField([]FieldQuery{{FieldTitle, " "}}, []models.Job{
		newJob("Old", 48*time.Hour),
		newJob("New", time.Hour),
	})
	if err != nil {
		t.Fatalf("MultiField: %v", err)
	}
	assertTitles(t, results, "New", "Old")
}

func TestBySkills(t *testing.T) {
	e := New(search.New())

	both := newJob("both required", 72*time.Hour)
	both.RequiredSkills = []string{"Go", "Postgres"}

	mixed := newJob("mixed", 48*time.Hour)
	mixed.RequiredSkills = []string{"go"}
	mixed.PreferredSkills = []string{" Postgres "}

	preferred := newJob("preferred only", 24*time.Hour)
	preferred.PreferredSkills = []string{"Go"}

	none := newJob("none", time.Hour)
	none.RequiredSkills = []string{"Rust"}

	results := e.BySkills([]string{"Go", "postgres", ""}, []models.Job{none, preferred, mixed, both})
	assertTitles(t, results, "both required", "mixed", "preferred only")

	wantScores := []float64{4, 3, 1}
	for i, r := range results {
		if r.Score != wantScores[i] {
			t.Errorf("%s: score = %v, want %v", r.Job.Title, r.Score, wantScores[i])
		}
	}
}

func TestBySkillsRequiredBeatsPreferred(t *testing.T) {
	e := New(search.New())

	// Listed in both: counts once, as required.
	j := newJob("dup", time.Hour)
	j.RequiredSkills = []string{"Go"}
	j.PreferredSkills = []string{"Go"}

	results := e.BySkills([]string{"go"}, []models.Job{j})
	if len(results) != 1 || results[0].Score != requiredSkillWeight {
		t.Fatalf("results = %+v, want one result scoring %v", results, requiredSkillWeight)
	}
}

func TestSimilar(t *testing.T) {
	e := New(search.New())
	cat := uuid.New()
	other := uuid.New()

	target := newJob("target", time.Hour)
	target.CategoryIDs = []uuid.UUID{cat}
	target.ExperienceLevel = models.ExperienceSenior
	target.RequiredSkills = []string{"Go", "Redis"}
	target.PreferredSkills = []string{"Postgres"}

	sameCat := newJob("same category", 2*time.Hour)
	sameCat.CategoryIDs = []uuid.UUID{cat}
	sameCat.ExperienceLevel = models.ExperienceJunior
	sameCat.RequiredSkills = []string{"go"}

	sameLevel := newJob("same level", 3*time.Hour)
	sameLevel.CategoryIDs = []uuid.UUID{other}
	sameLevel.ExperienceLevel = models.ExperienceSenior
	sameLevel.RequiredSkills = []string{"Go"}
	sameLevel.PreferredSkills = []string{"Redis"}

	unrelated := newJob("unrelated", time.Hour)
	unrelated.CategoryIDs = []uuid.UUID{other}
	unrelated.ExperienceLevel = models.ExperienceJunior
	unrelated.RequiredSkills = []string{"Go", "Redis", "Postgres"}

	candidates := []models.Job{target, sameCat, sameLevel, unrelated}

	assertTitles(t, e.Similar(&target, candidates, 0), "same level", "same category")
	assertTitles(t, e.Similar(&target, candidates, 1), "same level")
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ranking orders candidate jobs by relevance. Candidates come from
// the job index already filtered; ranking only scores, drops below-floor
// jobs and sorts.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"jobboard/internal/models"
	"jobboard/internal/search"
)

const (
	// MinRank is the full-text rank a job needs to be kept on rank alone.
	MinRank = 0.1
	// MinSimilarity is the fuzzy similarity a job needs to be kept on
	// similarity alone.
	MinSimilarity = 0.3

	requiredSkillWeight  = 2.0
	preferredSkillWeight = 1.0
)

// Document field weights for the full-text rank, strongest first.
var fieldWeights = struct {
	title, skills, description, location float64
}{title: 1.0, skills: 0.6, description: 0.4, location: 0.4}

// Field names accepted by MultiField.
const (
	FieldTitle    = "title"
	FieldLocation = "location"
	FieldCompany  = "company"
	FieldSkills   = "skills"
)

// Result is a ranked job with the scores that placed it.
type Result struct {
	Job    models.Job `json:"job"`
	Score  float64    `json:"score"`
	Scores []float64  `json:"scores,omitempty"`
}

// FieldQuery is one term of a targeted multi-field search.
type FieldQuery struct {
	Field string
	Term  string
}

// Engine scores jobs with a TextIndex.
type Engine struct {
	index search.TextIndex
}

// New returns an Engine backed by index.
func New(index search.TextIndex) *Engine {
	return &Engine{index: index}
}

// FullTextRank returns the weighted full-text rank of query against j.
func (e *Engine) FullTextRank(query string, j *models.Job) float64 {
	best := 0.0
	for _, f := range []struct {
		text   string
		weight float64
	}{
		{j.Title, fieldWeights.title},
		{models.SkillsText(allSkills(j)), fieldWeights.skills},
		{j.Description, fieldWeights.description},
		{j.Location, fieldWeights.location},
	} {
		if r := e.index.Rank(query, f.text) * f.weight; r > best {
			best = r
		}
	}
	return best
}

// Search scores every job against a free-text query. The score is the
// largest of the full-text rank, title similarity and location similarity.
// Jobs with no signal above its floor are dropped.
func (e *Engine) Search(query string, jobs []models.Job) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return byRecency(jobs)
	}

	results := make([]Result, 0, len(jobs))
	for _, j := range jobs {
		rank := e.FullTextRank(query, &j)
		titleSim := e.index.Similarity(query, j.Title)
		locSim := e.index.Similarity(query, j.Location)

		if rank < MinRank && titleSim < MinSimilarity && locSim < MinSimilarity {
			continue
		}
		results = append(results, Result{Job: j, Score: max(rank, titleSim, locSim)})
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].Job.CreatedAt.After(results[b].Job.CreatedAt)
	})
	return results
}

// MultiField runs a targeted search. Every supplied field must match on its
// own (AND), and results sort by the per-field scores in the order the
// fields were given, then by recency.
func (e *Engine) MultiField(fields []FieldQuery, jobs []models.Job) ([]Result, error) {
	active := make([]FieldQuery, 0, len(fields))
	for _, f := range fields {
		f.Term = strings.TrimSpace(f.Term)
		if f.Term == "" {
			continue
		}
		switch f.Field {
		case FieldTitle, FieldLocation, FieldCompany, FieldSkills:
		default:
			return nil, fmt.Errorf("unknown search field %q", f.Field)
		}
		active = append(active, f)
	}
	if len(active) == 0 {
		return byRecency(jobs), nil
	}

	results := make([]Result, 0, len(jobs))
	for _, j := range jobs {
		scores := make([]float64, 0, len(active))
		keep := true
		for _, f := range active {
			score, ok := e.fieldScore(f, &j)
			if !ok {
				keep = false
				break
			}
			scores = append(scores, score)
		}
		if !keep {
			continue
		}
		results = append(results, Result{Job: j, Score: scores[0], Scores: scores})
	}

	sort.SliceStable(results, func(a, b int) bool {
		for i := range results[a].Scores {
			if results[a].Scores[i] != results[b].Scores[i] {
				return results[a].Scores[i] > results[b].Scores[i]
			}
		}
		return results[a].Job.CreatedAt.After(results[b].Job.CreatedAt)
	})
	return results, nil
}

// fieldScore returns the score of one field term and whether the job
// passes that field's inclusion test: a substring hit, or a score above
// the field's floor.
func (e *Engine) fieldScore(f FieldQuery, j *models.Job) (float64, bool) {
	switch f.Field {
	case FieldSkills:
		text := models.SkillsText(allSkills(j))
		rank := e.index.Rank(f.Term, text)
		return rank, rank >= MinRank || containsFold(text, f.Term)
	default:
		text := j.Title
		switch f.Field {
		case FieldLocation:
			text = j.Location
		case FieldCompany:
			text = j.CompanyName
		}
		sim := e.index.Similarity(f.Term, text)
		return sim, sim >= MinSimilarity || containsFold(text, f.Term)
	}
}

// BySkills scores each job by the requested skills: 2 per skill found in
// its required skills, 1 per skill found only in its preferred skills.
// Jobs scoring 0 are dropped.
func (e *Engine) BySkills(skills []string, jobs []models.Job) []Result {
	wanted := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			wanted = append(wanted, s)
		}
	}

	results := make([]Result, 0, len(jobs))
	for _, j := range jobs {
		var total float64
		for _, s := range wanted {
			switch {
			case hasSkill(j.RequiredSkills, s):
				total += requiredSkillWeight
			case hasSkill(j.PreferredSkills, s):
				total += preferredSkillWeight
			}
		}
		if total == 0 {
			continue
		}
		results = append(results, Result{Job: j, Score: total})
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].Job.CreatedAt.After(results[b].Job.CreatedAt)
	})
	return results
}

// Similar ranks candidates against target by shared skills. Candidates
// must share a category or the experience level with target; target itself
// is skipped.
func (e *Engine) Similar(target *models.Job, candidates []models.Job, limit int) []Result {
	targetCats := make(map[uuid.UUID]struct{}, len(target.CategoryIDs))
	for _, id := range target.CategoryIDs {
		targetCats[id] = struct{}{}
	}
	targetSkills := allSkills(target)

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == target.ID {
			continue
		}
		if c.ExperienceLevel != target.ExperienceLevel && !c.InCategory(targetCats) {
			continue
		}
		shared := 0
		for _, s := range targetSkills {
			s = strings.ToLower(strings.TrimSpace(s))
			if hasSkill(c.RequiredSkills, s) || hasSkill(c.PreferredSkills, s) {
				shared++
			}
		}
		results = append(results, Result{Job: c, Score: float64(shared)})
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].Job.CreatedAt.After(results[b].Job.CreatedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// byRecency wraps jobs as unscored results, newest first.
func byRecency(jobs []models.Job) []Result {
	results := make([]Result, len(jobs))
	for i, j := range jobs {
		results[i] = Result{Job: j}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Job.CreatedAt.After(results[b].Job.CreatedAt)
	})
	return results
}

func allSkills(j *models.Job) []string {
	out := make([]string, 0, len(j.RequiredSkills)+len(j.PreferredSkills))
	out = append(out, j.RequiredSkills...)
	return append(out, j.PreferredSkills...)
}

// hasSkill reports whether skill (already lower-cased) is in list,
// ignoring case and surrounding whitespace.
func hasSkill(list []string, skill string) bool {
	for _, s := range list {
		if strings.ToLower(strings.TrimSpace(s)) == skill {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/category"
	"jobboard/internal/models"
)

// JobWriter is the job store write path used by Seed.
type JobWriter interface {
	CreateJob(ctx context.Context, j *models.Job) (*models.Job, error)
}

type seedCategory struct {
	name     string
	children []seedCategory
}

var seedTree = []seedCategory{
	{name: "Technology", children: []seedCategory{
		{name: "Software Development", children: []seedCategory{
			{name: "Web Development"},
			{name: "Mobile Development"},
		}},
		{name: "Data Science"},
	}},
	{name: "Business", children: []seedCategory{
		{name: "Marketing"},
	}},
	{name: "Hospitality"},
}

type seedJob struct {
	title, location, company string
	remote                   bool
	salaryMin, salaryMax     float64
	level                    models.ExperienceLevel
	required, preferred      []string
	categories               []string
	age                      time.Duration
}

var seedJobs = []seedJob{
	{"Senior Python Developer", "Berlin", "Acme GmbH", false, 90000, 130000, models.ExperienceSenior,
		[]string{"Python", "Django"}, []string{"PostgreSQL"}, []string{"Web Development"}, 2 * time.Hour},
	{"Data Scientist", "Munich (Hybrid)", "Numbers AG", false, 70000, 95000, models.ExperienceMid,
		[]string{"Python", "Pandas"}, []string{"SQL"}, []string{"Data Science"}, 26 * time.Hour},
	{"Go Backend Engineer", "Remote", "Gopher Labs", true, 85000, 120000, models.ExperienceSenior,
		[]string{"Go", "PostgreSQL"}, []string{"Kubernetes"}, []string{"Software Development"}, 72 * time.Hour},
	{"iOS Developer", "Hamburg", "Appwerk", false, 60000, 85000, models.ExperienceJunior,
		[]string{"Swift"}, []string{"Objective-C"}, []string{"Mobile Development"}, 10 * 24 * time.Hour},
	{"Growth Marketer", "Vienna", "Acme GmbH", false, 50000, 70000, models.ExperienceMid,
		[]string{"SEO"}, []string{"Analytics"}, []string{"Marketing"}, 40 * 24 * time.Hour},
	{"Head Chef", "Lisbon", "Casa Boa", false, 40000, 55000, models.ExperienceLead,
		nil, nil, []string{"Hospitality"}, 5 * 24 * time.Hour},
}

// Seed populates an empty store with a small category forest and a handful
// of jobs for development. It does nothing once any root category exists.
func Seed(ctx context.Context, tree *category.Tree, jobs JobWriter) error {
	roots, err := tree.Roots(ctx)
	if err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if len(roots) > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	ids := make(map[string]uuid.UUID)
	var create func(nodes []seedCategory, parent *uuid.UUID) error
	create = func(nodes []seedCategory, parent *uuid.UUID) error {
		for _, n := range nodes {
			c, err := tree.Create(ctx, n.name, parent)
			if err != nil {
				return fmt.Errorf("seed category %q: %w", n.name, err)
			}
			ids[n.name] = c.ID
			if err := create(n.children, &c.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := create(seedTree, nil); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, s := range seedJobs {
		j := &models.Job{
			Title:           s.title,
			Description:     s.title + " at " + s.company + ".",
			Location:        s.location,
			IsRemote:        s.remote,
			SalaryMin:       &s.salaryMin,
			SalaryMax:       &s.salaryMax,
			SalaryType:      models.SalaryYearly,
			Currency:        "EUR",
			ExperienceLevel: s.level,
			RequiredSkills:  s.required,
			PreferredSkills: s.preferred,
			CompanyID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(s.company)),
			CompanyName:     s.company,
			IsActive:        true,
			CreatedAt:       now.Add(-s.age),
		}
		for _, name := range s.categories {
			j.CategoryIDs = append(j.CategoryIDs, ids[name])
		}
		if _, err := jobs.CreateJob(ctx, j); err != nil {
			return fmt.Errorf("seed job %q: %w", s.title, err)
		}
	}

	slog.Info("database seeded", "categories", len(ids), "jobs", len(seedJobs))
	return nil
}

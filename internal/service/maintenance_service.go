package service

import (
	"context"
	"sort"
	"strings"

	"capsort/internal/models"
	"capsort/internal/repository"
)

// MaintenanceService backs the operator cleanup commands.
type MaintenanceService struct {
	repo repository.MaintenanceRepository
}

func NewMaintenanceService(repo repository.MaintenanceRepository) *MaintenanceService {
	return &MaintenanceService{repo: repo}
}

type dupKey struct {
	title  string
	author string
	year   int
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Duplicates reports active projects that look like the same paper. Groups
// sharing title, author and year are flagged SameWork; groups sharing only
// title and year list the differing authors.
func (s *MaintenanceService) Duplicates(ctx context.Context) ([]models.DuplicateGroup, error) {
	projects, err := s.repo.ActiveProjects(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	exact := map[dupKey][]models.Project{}
	byTitleYear := map[dupKey][]models.Project{}
	var exactOrder, titleYearOrder []dupKey

	for _, p := range projects {
		k := dupKey{title: normalizeText(p.Title), author: normalizeText(p.Author), year: p.Year}
		if _, ok := exact[k]; !ok {
			exactOrder = append(exactOrder, k)
		}
		exact[k] = append(exact[k], p)

		tk := dupKey{title: k.title, year: k.year}
		if _, ok := byTitleYear[tk]; !ok {
			titleYearOrder = append(titleYearOrder, tk)
		}
		byTitleYear[tk] = append(byTitleYear[tk], p)
	}

	groups := []models.DuplicateGroup{}
	for _, k := range exactOrder {
		if len(exact[k]) > 1 {
			groups = append(groups, newDuplicateGroup(exact[k], true))
		}
	}
	for _, k := range titleYearOrder {
		members := byTitleYear[k]
		if len(members) > 1 && distinctAuthors(members) > 1 {
			groups = append(groups, newDuplicateGroup(members, false))
		}
	}
	return groups, nil
}

func newDuplicateGroup(members []models.Project, sameWork bool) models.DuplicateGroup {
	g := models.DuplicateGroup{
		Title:    members[0].Title,
		Year:     members[0].Year,
		SameWork: sameWork,
	}
	seen := map[string]bool{}
	for _, p := range members {
		g.IDs = append(g.IDs, p.ID)
		if !seen[p.Author] {
			seen[p.Author] = true
			g.Authors = append(g.Authors, p.Author)
		}
	}
	sort.Strings(g.Authors)
	return g
}

func distinctAuthors(members []models.Project) int {
	seen := map[string]struct{}{}
	for _, p := range members {
		seen[normalizeText(p.Author)] = struct{}{}
	}
	return len(seen)
}

// PruneFields hard-deletes projects outside keep together with their saves.
// An empty keep list is refused so a typo cannot wipe the archive.
func (s *MaintenanceService) PruneFields(ctx context.Context, keep []string, dryRun bool) (*models.PruneResult, error) {
	cleaned := make([]string, 0, len(keep))
	for _, f := range keep {
		if f = strings.TrimSpace(f); f != "" {
			cleaned = append(cleaned, f)
		}
	}
	if len(cleaned) == 0 {
		return nil, models.NewValidationError("at least one field to keep is required")
	}

	before, err := s.repo.FieldDistribution(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	projects, saves, err := s.repo.PruneFields(ctx, cleaned, dryRun)
	if err != nil {
		return nil, storeError(err)
	}

	result := &models.PruneResult{Projects: projects, Saves: saves, Before: before, DryRun: dryRun}
	if dryRun {
		result.After = keptFields(before, cleaned)
		return result, nil
	}

	after, err := s.repo.FieldDistribution(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	result.After = after
	return result, nil
}

func keptFields(dist []models.FieldCount, keep []string) []models.FieldCount {
	set := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		set[k] = struct{}{}
	}
	out := []models.FieldCount{}
	for _, fc := range dist {
		if _, ok := set[fc.Field]; ok {
			out = append(out, fc)
		}
	}
	return out
}
